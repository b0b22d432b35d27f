package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account holds the structure for the accounts collection in mongo. Profiles
// (students, teachers, admins) reference their account by id; the account owns
// credentials and notification preferences.
type Account struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Email        string             `json:"email" bson:"email"`
	Password     string             `json:"-" bson:"password"`
	Role         string             `json:"role" bson:"role"`
	DigestOptOut bool               `json:"digestOptOut" bson:"digestOptOut"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
