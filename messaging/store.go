// Package messaging owns durable message persistence and the unread-count
// invariant: a message belongs to exactly one sender and one recipient, is
// mutated only by its recipient's first read, and is removed for both parties
// by a single hard delete.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/schoolhub/school-messaging-api/databases"
	"github.com/schoolhub/school-messaging-api/directory"
	"github.com/schoolhub/school-messaging-api/models"
)

const replyPrefix = "Re: "

// Store is the single source of truth for messages and their read state
type Store struct {
	MDB      databases.MessageDatabase
	Resolver *directory.Resolver
	Counter  *Counter
}

// NewStore initializes a message store over the given message database
func NewStore(mdb databases.MessageDatabase, resolver *directory.Resolver, counter *Counter) *Store {
	return &Store{MDB: mdb, Resolver: resolver, Counter: counter}
}

// Send validates and persists a new message. The recipient must resolve to an
// existing participant before anything is written; a message never exists
// without a prior successful recipient resolution.
func (s *Store) Send(ctx context.Context, req models.SendMessageRequest) (*models.Message, error) {
	if req.Subject == "" || req.Content == "" {
		return nil, ErrEmptyContent
	}
	if directory.Same(req.Sender, req.Recipient) {
		return nil, ErrSelfMessage
	}

	recipient := s.Resolver.Resolve(ctx, req.Recipient)
	if !recipient.Exists {
		return nil, ErrInvalidRecipient
	}

	subject := req.Subject
	var threadRef *primitive.ObjectID
	if req.ThreadRef != "" {
		ref, err := primitive.ObjectIDFromHex(req.ThreadRef)
		if err != nil {
			// the thread reference is only a subject-prefix hint, a malformed
			// one is dropped rather than failing the send
			zap.S().Warnf("ignoring malformed threadRef %q: %v", req.ThreadRef, err)
		} else {
			threadRef = &ref
			if !strings.HasPrefix(subject, replyPrefix) {
				subject = replyPrefix + subject
			}
		}
	}

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		Sender:    s.normalize(ctx, req.Sender),
		Recipient: s.normalize(ctx, req.Recipient),
		Subject:   subject,
		Content:   req.Content,
		ThreadRef: threadRef,
		IsRead:    false,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now().UTC()),
	}

	if _, err := s.MDB.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if s.Counter != nil {
		s.Counter.Refresh(msg.Recipient)
	}
	return &msg, nil
}

// GetByID fetches a message on behalf of a requester. Fetching as the
// recipient marks the message read as part of the same call; this is the sole
// mutation path for a message after creation. The mark is idempotent under
// concurrent reads: the filter only matches while isRead is still false.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID, requester models.ParticipantRef) (*models.Message, error) {
	msg, err := s.find(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if directory.Same(requester, msg.Recipient) && !msg.IsRead {
		readAt := primitive.NewDateTimeFromTime(time.Now().UTC())
		filter := bson.M{"_id": id, "isRead": false}
		update := bson.M{"$set": bson.M{"isRead": true, "readAt": readAt}}
		if _, err := s.MDB.UpdateOne(ctx, filter, update); err != nil {
			// the fetch and the mark are one unit, a failed mark fails the call
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		msg.IsRead = true
		msg.ReadAt = &readAt
		if s.Counter != nil {
			s.Counter.Refresh(msg.Recipient)
		}
	}
	return msg, nil
}

// ListInbox returns the messages addressed to user, newest first. A limit of
// zero means no limit.
func (s *Store) ListInbox(ctx context.Context, user models.ParticipantRef, limit int64) ([]models.Message, error) {
	return s.list(ctx, bson.M{"recipient.kind": user.Kind, "recipient.id": user.ID}, limit)
}

// ListSent returns the messages sent by user, newest first. A limit of zero
// means no limit.
func (s *Store) ListSent(ctx context.Context, user models.ParticipantRef, limit int64) ([]models.Message, error) {
	return s.list(ctx, bson.M{"sender.kind": user.Kind, "sender.id": user.ID}, limit)
}

// Delete removes a message for both parties. Either the sender or the
// recipient may delete; there is no per-side soft delete.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, requester models.ParticipantRef) error {
	msg, err := s.find(ctx, id, requester)
	if err != nil {
		return err
	}

	deleted, err := s.MDB.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	if s.Counter != nil {
		s.Counter.Refresh(msg.Recipient)
	}
	return nil
}

// find fetches a message and authorizes the requester against it
func (s *Store) find(ctx context.Context, id primitive.ObjectID, requester models.ParticipantRef) (*models.Message, error) {
	msg, err := s.MDB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !directory.Same(requester, msg.Sender) && !directory.Same(requester, msg.Recipient) {
		return nil, ErrForbidden
	}
	return msg, nil
}

func (s *Store) list(ctx context.Context, filter bson.M, limit int64) ([]models.Message, error) {
	// ties on createdAt fall back to _id so repeated listings are deterministic
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	msgs, err := s.MDB.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return msgs, nil
}

// normalize rewrites a reference to the canonical persisted shape: kind plus
// profile id. References that arrived populated or account-only are pinned to
// the profile id found by resolution; an unresolvable sender reference is
// persisted as received.
func (s *Store) normalize(ctx context.Context, ref models.ParticipantRef) models.ParticipantRef {
	out := models.ParticipantRef{Kind: ref.Kind, ID: ref.ID}
	if ref.ID == "" && ref.Account != "" {
		ident := s.Resolver.Resolve(ctx, ref)
		if ident.Exists && !ident.ProfileID.IsZero() {
			out.ID = ident.ProfileID.Hex()
		} else {
			out.ID = ref.Account
		}
	}
	return out
}
