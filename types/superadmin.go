package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuperAdmin is the single privileged operator account kind. Its tokens
// are trusted without a live re-fetch during resolution.
type SuperAdmin struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
	Email     string `json:"email" bson:"email"`

	// PasswordHash is never exposed in API responses.
	PasswordHash string `json:"-" bson:"password"`

	Role string `json:"role" bson:"role"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
