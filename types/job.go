package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Employment types accepted for a job posting.
var EmploymentTypes = []string{"Full-time", "Part-time", "Contract", "Internship", "Freelance"}

// Apply modes accepted for a job posting.
var ApplyModes = []string{"Portal", "Email", "ExternalLink"}

// Work modes accepted for a job posting.
var WorkModes = []string{"On-site", "Remote", "Hybrid"}

// Job represents a job posting created by an employer.
type Job struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	JobTitle    string `json:"jobTitle" bson:"jobTitle"`
	CompanyName string `json:"companyName" bson:"companyName"`
	Location    string `json:"location" bson:"location"`

	EmploymentType string `json:"employmentType" bson:"employmentType"`
	JobDescription string `json:"jobDescription" bson:"jobDescription"`

	Skills             []string `json:"skills" bson:"skills"`
	ExperienceRequired string   `json:"experienceRequired" bson:"experienceRequired"`
	Education          string   `json:"education" bson:"education"`

	SalaryRange         string    `json:"salaryRange,omitempty" bson:"salaryRange,omitempty"`
	ApplicationDeadline time.Time `json:"applicationDeadline,omitempty" bson:"applicationDeadline,omitempty"`

	NumberOfOpenings int    `json:"numberOfOpenings" bson:"numberOfOpenings"`
	ApplyMode        string `json:"applyMode" bson:"applyMode"`
	WorkMode         string `json:"workMode" bson:"workMode"`

	Benefits []string `json:"benefits,omitempty" bson:"benefits,omitempty"`

	// CreatedBy is the id of the employer (or superadmin) that posted the job.
	CreatedBy primitive.ObjectID `json:"createdBy" bson:"createdBy"`

	IsDeleted bool `json:"-" bson:"isDeleted"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// JobUpdate is a partial update of a posting; nil fields are untouched.
type JobUpdate struct {
	JobTitle            *string    `json:"jobTitle,omitempty"`
	CompanyName         *string    `json:"companyName,omitempty"`
	Location            *string    `json:"location,omitempty"`
	EmploymentType      *string    `json:"employmentType,omitempty"`
	JobDescription      *string    `json:"jobDescription,omitempty"`
	Skills              *[]string  `json:"skills,omitempty"`
	ExperienceRequired  *string    `json:"experienceRequired,omitempty"`
	Education           *string    `json:"education,omitempty"`
	SalaryRange         *string    `json:"salaryRange,omitempty"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	NumberOfOpenings    *int       `json:"numberOfOpenings,omitempty"`
	ApplyMode           *string    `json:"applyMode,omitempty"`
	WorkMode            *string    `json:"workMode,omitempty"`
	Benefits            *[]string  `json:"benefits,omitempty"`
}
