package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message holds the structure for the messages collection in mongo
type Message struct {
	ID        primitive.ObjectID  `json:"_id" bson:"_id"`
	Sender    ParticipantRef      `json:"sender" bson:"sender"`
	Recipient ParticipantRef      `json:"recipient" bson:"recipient"`
	Subject   string              `json:"subject" bson:"subject"`
	Content   string              `json:"content" bson:"content"`
	ThreadRef *primitive.ObjectID `json:"threadRef,omitempty" bson:"threadRef,omitempty"`
	IsRead    bool                `json:"isRead" bson:"isRead"`
	CreatedAt primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	ReadAt    *primitive.DateTime `json:"readAt,omitempty" bson:"readAt,omitempty"`
}

// SendMessageRequest holds the structure for creating a new message
type SendMessageRequest struct {
	Sender    ParticipantRef `json:"sender" validate:"required"`
	Recipient ParticipantRef `json:"recipient" validate:"required"`
	Subject   string         `json:"subject" validate:"required,min=1,max=200"`
	Content   string         `json:"content" validate:"required,min=1"`
	ThreadRef string         `json:"threadRef,omitempty"`
}

// ParticipantSummary holds a resolved display identity for responses
type ParticipantSummary struct {
	Kind        ParticipantKind `json:"kind"`
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	Exists      bool            `json:"exists"`
}

// MessageResponse holds the structure for message responses with resolved
// sender/recipient display names
type MessageResponse struct {
	ID        primitive.ObjectID  `json:"_id"`
	Sender    ParticipantSummary  `json:"sender"`
	Recipient ParticipantSummary  `json:"recipient"`
	Subject   string              `json:"subject"`
	Content   string              `json:"content"`
	ThreadRef *primitive.ObjectID `json:"threadRef,omitempty"`
	IsRead    bool                `json:"isRead"`
	CreatedAt primitive.DateTime  `json:"createdAt"`
	ReadAt    *primitive.DateTime `json:"readAt,omitempty"`
}

// UnreadCountResponse holds the structure for the unread count response
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
