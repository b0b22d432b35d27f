package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin holds the structure for the admins collection in mongo
type Admin struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Account   primitive.ObjectID `json:"account" bson:"account"`
	Title     string             `json:"title" bson:"title"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
