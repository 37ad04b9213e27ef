package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vendor represents a service-vendor account.
type Vendor struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
	Email     string `json:"email" bson:"email"`
	Mobile    string `json:"mobile" bson:"mobile"`

	// PasswordHash is never exposed in API responses.
	PasswordHash string `json:"-" bson:"password"`

	Gender string    `json:"gender" bson:"gender"`
	DOB    time.Time `json:"dob" bson:"dob"`

	OTP       string    `json:"-" bson:"otp,omitempty"`
	OTPExpire time.Time `json:"-" bson:"otpExpire,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
