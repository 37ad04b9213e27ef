package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application lifecycle states.
const (
	ApplicationApplied     = "Applied"
	ApplicationUnderReview = "Under Review"
	ApplicationSelected    = "Selected"
	ApplicationRejected    = "Rejected"
)

// ApplicationStatuses lists every accepted status value.
var ApplicationStatuses = []string{
	ApplicationApplied,
	ApplicationUnderReview,
	ApplicationSelected,
	ApplicationRejected,
}

// Application records a user applying to a job. The (user, job) pair is
// unique: a user may apply to a given job at most once.
type Application struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	UserID primitive.ObjectID `json:"user" bson:"user"`
	JobID  primitive.ObjectID `json:"job" bson:"job"`

	AppliedAt time.Time `json:"appliedAt" bson:"appliedAt"`

	// Status is one of Applied, Under Review, Selected, Rejected.
	Status string `json:"status" bson:"status"`
}

// ApplicantDetail is an application joined with applicant and job summaries.
type ApplicantDetail struct {
	Application Application `json:"application"`
	User        User        `json:"user"`
	Job         Job         `json:"job"`
}

// AppliedJob is an application joined with the full job document.
type AppliedJob struct {
	AppliedAt time.Time `json:"appliedAt"`
	Status    string    `json:"status"`
	Job       Job       `json:"job"`
}
