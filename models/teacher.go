package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Teacher holds the structure for the teachers collection in mongo
type Teacher struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Account   primitive.ObjectID `json:"account" bson:"account"`
	Subjects  []string           `json:"subjects" bson:"subjects"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
