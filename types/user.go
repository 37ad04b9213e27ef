package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a job-seeker account.
// It contains identity, profile, and password-reset metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`

	// Email is unique within the users collection.
	Email string `json:"email" bson:"email"`

	// Mobile is unique within the users collection.
	Mobile string `json:"mobile" bson:"mobile"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" bson:"password"`

	Gender string    `json:"gender" bson:"gender"`
	DOB    time.Time `json:"dob" bson:"dob"`

	Latitude  float64 `json:"lati" bson:"lati"`
	Longitude float64 `json:"longi" bson:"longi"`

	// Image and Resume hold the public URLs of uploaded files.
	Image  string `json:"image,omitempty" bson:"image,omitempty"`
	Resume string `json:"resume,omitempty" bson:"resume,omitempty"`

	ExperienceRange string   `json:"experienceRange" bson:"experienceRange"`
	KeySkills       []string `json:"keySkills" bson:"keySkills"`

	// Role is the user's job role (e.g. "Nurse", "Plumber"). It doubles as
	// the principal role for resolved tokens, defaulting to "user".
	Role string `json:"role" bson:"role"`

	CurrentDesignation string `json:"currentDesignation" bson:"currentDesignation"`

	// Device metadata reported by the client at signup.
	Platform  string `json:"platform,omitempty" bson:"platform,omitempty"`
	Model     string `json:"model,omitempty" bson:"model,omitempty"`
	OSVersion string `json:"os_version,omitempty" bson:"os_version,omitempty"`

	// OTP and OTPExpire hold the active password-reset challenge, if any.
	// Both are cleared when the challenge is consumed.
	OTP       string    `json:"-" bson:"otp,omitempty"`
	OTPExpire time.Time `json:"-" bson:"otpExpire,omitempty"`

	// IsDeleted marks the account as soft-deleted; such accounts are
	// excluded from normal queries but retained in storage.
	IsDeleted bool `json:"-" bson:"isDeleted"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
