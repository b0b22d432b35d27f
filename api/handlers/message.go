package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/schoolhub/school-messaging-api/api"
	"github.com/schoolhub/school-messaging-api/config"
	"github.com/schoolhub/school-messaging-api/directory"
	"github.com/schoolhub/school-messaging-api/messaging"
	"github.com/schoolhub/school-messaging-api/models"
)

var validate = validator.New()

// Message exported for testing purposes
type Message struct {
	Store    *messaging.Store
	Counter  *messaging.Counter
	Resolver *directory.Resolver
}

// SendMessageHandler creates a new message
func (m Message) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	req := models.SendMessageRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid send message request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	msg, err := m.Store.Send(ctx, req)
	if err != nil {
		m.writeStoreError("failed to send message", w, err)
		return
	}

	b, err := json.Marshal(m.toResponse(ctx, *msg))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// MessageByIDHandler returns a message by ID. Fetching as the recipient marks
// the message read as part of this call.
func (m Message) MessageByIDHandler(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["message_id"]

	zap.S().Debugf("message_id: %v", messageID)

	mID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	requester, err := requesterRef(r)
	if err != nil {
		config.ErrorStatus("invalid requester", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	msg, err := m.Store.GetByID(ctx, mID, requester)
	if err != nil {
		m.writeStoreError("failed to get message by ID", w, err)
		return
	}

	b, err := json.Marshal(m.toResponse(ctx, *msg))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteMessageHandler removes a message for both parties
func (m Message) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["message_id"]

	mID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	requester, err := requesterRef(r)
	if err != nil {
		config.ErrorStatus("invalid requester", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.Store.Delete(ctx, mID, requester); err != nil {
		m.writeStoreError("failed to delete message", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "message deleted successfully"}`))
}

// InboxHandler returns the messages addressed to a participant, newest first
func (m Message) InboxHandler(w http.ResponseWriter, r *http.Request) {
	user, err := pathRef(r)
	if err != nil {
		config.ErrorStatus("invalid participant", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	msgs, err := m.Store.ListInbox(ctx, user, listLimit(r))
	if err != nil {
		m.writeStoreError("failed to get inbox", w, err)
		return
	}
	m.writeList(ctx, w, msgs)
}

// SentHandler returns the messages sent by a participant, newest first
func (m Message) SentHandler(w http.ResponseWriter, r *http.Request) {
	user, err := pathRef(r)
	if err != nil {
		config.ErrorStatus("invalid participant", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	msgs, err := m.Store.ListSent(ctx, user, listLimit(r))
	if err != nil {
		m.writeStoreError("failed to get sent messages", w, err)
		return
	}
	m.writeList(ctx, w, msgs)
}

// UnreadCountHandler returns the unread message count for a participant
func (m Message) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	user, err := pathRef(r)
	if err != nil {
		config.ErrorStatus("invalid participant", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	n, err := m.Counter.UnreadCount(ctx, user)
	if err != nil {
		m.writeStoreError("failed to get unread count", w, err)
		return
	}

	b, err := json.Marshal(models.UnreadCountResponse{Count: n})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RefreshUnreadCountHandler invalidates the cached unread count for a participant
func (m Message) RefreshUnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	user, err := pathRef(r)
	if err != nil {
		config.ErrorStatus("invalid participant", http.StatusBadRequest, w, err)
		return
	}

	m.Counter.Refresh(user)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "unread count refreshed"}`))
}

func (m Message) writeList(ctx context.Context, w http.ResponseWriter, msgs []models.Message) {
	resp := make([]models.MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		resp = append(resp, m.toResponse(ctx, msg))
	}
	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// toResponse resolves display names best-effort; a dangling reference degrades
// to the resolver's placeholder instead of failing the read
func (m Message) toResponse(ctx context.Context, msg models.Message) models.MessageResponse {
	sender := m.Resolver.Resolve(ctx, msg.Sender)
	recipient := m.Resolver.Resolve(ctx, msg.Recipient)
	return models.MessageResponse{
		ID: msg.ID,
		Sender: models.ParticipantSummary{
			Kind:        msg.Sender.Kind,
			ID:          msg.Sender.ID,
			DisplayName: sender.DisplayName,
			Exists:      sender.Exists,
		},
		Recipient: models.ParticipantSummary{
			Kind:        msg.Recipient.Kind,
			ID:          msg.Recipient.ID,
			DisplayName: recipient.DisplayName,
			Exists:      recipient.Exists,
		},
		Subject:   msg.Subject,
		Content:   msg.Content,
		ThreadRef: msg.ThreadRef,
		IsRead:    msg.IsRead,
		CreatedAt: msg.CreatedAt,
		ReadAt:    msg.ReadAt,
	}
}

func (m Message) writeStoreError(message string, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, messaging.ErrNotFound):
		config.ErrorStatus(message, http.StatusNotFound, w, err)
	case errors.Is(err, messaging.ErrForbidden):
		config.ErrorStatus(message, http.StatusForbidden, w, err)
	case errors.Is(err, messaging.ErrInvalidRecipient),
		errors.Is(err, messaging.ErrEmptyContent),
		errors.Is(err, messaging.ErrSelfMessage):
		config.ErrorStatus(message, http.StatusBadRequest, w, err)
	case errors.Is(err, messaging.ErrUnavailable):
		config.ErrorStatus(message, http.StatusServiceUnavailable, w, err)
	default:
		config.ErrorStatus(message, http.StatusInternalServerError, w, err)
	}
}

// requesterRef builds the acting participant from query params. Identity is
// always explicit on the request, never read from ambient state.
func requesterRef(r *http.Request) (models.ParticipantRef, error) {
	kind := models.ParticipantKind(r.URL.Query().Get("requester_kind"))
	id := r.URL.Query().Get("requester_id")
	if !kind.Valid() {
		return models.ParticipantRef{}, fmt.Errorf("unknown requester_kind %q", kind)
	}
	if id == "" {
		return models.ParticipantRef{}, fmt.Errorf("requester_id is required")
	}
	return models.ParticipantRef{Kind: kind, ID: id}, nil
}

// pathRef builds a participant from the kind/participant_id path segments
func pathRef(r *http.Request) (models.ParticipantRef, error) {
	vars := mux.Vars(r)
	kind := models.ParticipantKind(vars["kind"])
	id := vars["participant_id"]
	if !kind.Valid() {
		return models.ParticipantRef{}, fmt.Errorf("unknown participant kind %q", kind)
	}
	if id == "" {
		return models.ParticipantRef{}, fmt.Errorf("participant_id is required")
	}
	return models.ParticipantRef{Kind: kind, ID: id}, nil
}

func listLimit(r *http.Request) int64 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit < 0 {
		zap.S().Warnf("limit %q not usable, listing without limit, err: %v", raw, err)
		return 0
	}
	return limit
}
