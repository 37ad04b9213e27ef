package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Approval states for an employer account. An employer cannot obtain a
// login token until a superadmin moves it to ApprovalApproved.
const (
	ApprovalPending  = "Pending"
	ApprovalApproved = "Approved"
	ApprovalRejected = "Rejected"
)

// CompanyAddress is the employer's registered company location.
type CompanyAddress struct {
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Country string `json:"country" bson:"country"`
	Pincode string `json:"pincode" bson:"pincode"`
}

// Employer represents a hiring-company account.
type Employer struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
	Email     string `json:"email" bson:"email"`
	Mobile    string `json:"mobile" bson:"mobile"`

	// PasswordHash is never exposed in API responses.
	PasswordHash string `json:"-" bson:"password"`

	Gender string    `json:"gender,omitempty" bson:"gender,omitempty"`
	DOB    time.Time `json:"dob,omitempty" bson:"dob,omitempty"`

	CompanyName    string         `json:"companyName" bson:"companyName"`
	CompanyAddress CompanyAddress `json:"companyAddress" bson:"companyAddress"`

	// IsApproved is one of Pending, Approved, Rejected.
	IsApproved string `json:"isApproved" bson:"isApproved"`

	OTP       string    `json:"-" bson:"otp,omitempty"`
	OTPExpire time.Time `json:"-" bson:"otpExpire,omitempty"`

	IsDeleted bool `json:"-" bson:"isDeleted"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
