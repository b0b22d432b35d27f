package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student holds the structure for the students collection in mongo
type Student struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Account   primitive.ObjectID `json:"account" bson:"account"`
	Grade     string             `json:"grade" bson:"grade"`
	Section   string             `json:"section" bson:"section"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
