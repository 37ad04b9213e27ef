package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jobpilot/apiserver/internal/auth"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/internal/validation"
	"github.com/jobpilot/apiserver/types"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobHandler provides job-posting and application endpoints.
type JobHandler struct {
	jobs         *services.JobService
	applications *services.ApplicationService
}

// NewJobHandler constructs a JobHandler with the provided dependencies.
func NewJobHandler(jobs *services.JobService, applications *services.ApplicationService) *JobHandler {
	return &JobHandler{jobs: jobs, applications: applications}
}

// JobRouter registers job and application routes on the given router.
func JobRouter(r chi.Router, resolver *auth.Resolver, jobs *services.JobService, applications *services.ApplicationService) {
	handler := NewJobHandler(jobs, applications)

	employerOnly := resolver.Require(auth.RoleEmployer, auth.RoleSuperAdmin)
	userOnly := resolver.Require(auth.RoleUser, auth.RoleSuperAdmin)

	r.With(employerOnly).Post("/post-job", handler.Create)
	r.With(employerOnly).Put("/update-job/{id}", handler.Update)
	r.With(employerOnly).Delete("/delete-job/{id}", handler.Delete)
	r.With(employerOnly).Get("/get-jobs-by-employer/{employerId}", handler.ListByEmployer)
	r.With(employerOnly).Put("/application-status/{id}", handler.UpdateApplicationStatus)

	r.With(userOnly).Post("/apply-job", handler.Apply)
	r.With(userOnly).Get("/applied-jobs/{userId}", handler.AppliedJobs)
	r.With(userOnly).Post("/check-applied/{jobId}", handler.CheckApplied)

	r.Get("/get-all-jobs", handler.List)
	r.Get("/applicants/{jobId}", handler.Applicants)
}

// Create posts a new job. The creator id is taken from the resolved
// principal, never from the request body.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid or missing creator identity")
		return
	}
	createdBy, err := primitive.ObjectIDFromHex(principal.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing creator identity")
		return
	}

	job, err := h.jobs.Create(r.Context(), types.Job{
		JobTitle:            req.JobTitle,
		CompanyName:         req.CompanyName,
		Location:            req.Location,
		EmploymentType:      req.EmploymentType,
		JobDescription:      req.JobDescription,
		Skills:              req.Skills,
		ExperienceRequired:  req.ExperienceRequired,
		Education:           req.Education,
		SalaryRange:         req.SalaryRange,
		ApplicationDeadline: parseDate(req.ApplicationDeadline),
		NumberOfOpenings:    req.NumberOfOpenings,
		ApplyMode:           req.ApplyMode,
		WorkMode:            req.WorkMode,
		Benefits:            req.Benefits,
		CreatedBy:           createdBy,
	})
	if err != nil {
		logrus.WithError(err).Error("job creation failed")
		writeError(w, http.StatusInternalServerError, "Failed to post job")
		return
	}

	writeJSON(w, http.StatusCreated, JobResponse{Message: "Job posted successfully", Job: job})
}

// List returns every active job, newest first.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// ListByEmployer returns the jobs posted by one employer.
func (h *JobHandler) ListByEmployer(w http.ResponseWriter, r *http.Request) {
	employerID, err := objectIDParam(r, "employerId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Employer ID format")
		return
	}

	jobs, err := h.jobs.ListByEmployer(r.Context(), employerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Update applies a partial update to a posting.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Job ID format")
		return
	}

	var update types.JobUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.jobs.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update job")
		return
	}

	writeJSON(w, http.StatusOK, JobResponse{Message: "Job updated successfully", Job: job})
}

// Delete soft-deletes a posting.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Job ID format")
		return
	}

	if err := h.jobs.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete job")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Job deleted successfully"})
}

// Apply records the authenticated user's application to a job.
func (h *JobHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	jobID, err := primitive.ObjectIDFromHex(req.JobID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Job ID format")
		return
	}

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access Denied: No token provided")
		return
	}
	userID, err := primitive.ObjectIDFromHex(principal.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid User ID format")
		return
	}

	application, err := h.applications.Apply(r.Context(), userID, jobID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Job not found")
		case errors.Is(err, services.ErrAlreadyApplied):
			writeError(w, http.StatusBadRequest, "You have already applied to this job")
		default:
			writeError(w, http.StatusInternalServerError, "Error applying to job")
		}
		return
	}

	writeJSON(w, http.StatusCreated, ApplicationResponse{Message: "Applied to job successfully", Application: application})
}

// Applicants returns every application for a job joined with applicant details.
func (h *JobHandler) Applicants(w http.ResponseWriter, r *http.Request) {
	jobID, err := objectIDParam(r, "jobId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Job ID format")
		return
	}

	details, err := h.applications.ApplicantsForJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch applicants for this job")
		return
	}

	writeJSON(w, http.StatusOK, ApplicantsResponse{
		Message:      fmt.Sprintf("Found %d applicants", len(details)),
		Applications: details,
	})
}

// AppliedJobs returns the jobs a user applied to.
func (h *JobHandler) AppliedJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := objectIDParam(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid User ID format")
		return
	}

	jobs, err := h.applications.JobsAppliedByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch jobs applied by user")
		return
	}

	writeJSON(w, http.StatusOK, AppliedJobsResponse{
		Message: fmt.Sprintf("Found %d jobs applied by user", len(jobs)),
		Jobs:    jobs,
	})
}

// CheckApplied reports whether a user already applied to a job.
func (h *JobHandler) CheckApplied(w http.ResponseWriter, r *http.Request) {
	jobID, err := objectIDParam(r, "jobId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Job ID and User ID are required")
		return
	}

	var req CheckAppliedRequest
	if err := decodeJSON(r, &req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "Job ID and User ID are required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid User ID format")
		return
	}

	applied, err := h.applications.HasApplied(r.Context(), userID, jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error while checking job application status")
		return
	}

	message := "User has not applied for this job yet"
	if applied {
		message = "User has already applied for this job"
	}
	writeJSON(w, http.StatusOK, CheckAppliedResponse{Applied: applied, Message: message})
}

// UpdateApplicationStatus moves an application to a new state and notifies
// the applicant.
func (h *JobHandler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Application ID format")
		return
	}

	var req UpdateApplicationStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	application, err := h.applications.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "Invalid application status")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Application not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update application status")
		}
		return
	}

	writeJSON(w, http.StatusOK, ApplicationResponse{Message: "Application status updated successfully", Application: application})
}

type CreateJobRequest struct {
	JobTitle            string   `json:"jobTitle" validate:"required"`
	CompanyName         string   `json:"companyName" validate:"required"`
	Location            string   `json:"location" validate:"required"`
	EmploymentType      string   `json:"employmentType" validate:"required,oneof=Full-time Part-time Contract Internship Freelance"`
	JobDescription      string   `json:"jobDescription" validate:"required"`
	Skills              []string `json:"skills" validate:"required,min=1"`
	ExperienceRequired  string   `json:"experienceRequired" validate:"required"`
	Education           string   `json:"education" validate:"required"`
	SalaryRange         string   `json:"salaryRange"`
	ApplicationDeadline string   `json:"applicationDeadline"`
	NumberOfOpenings    int      `json:"numberOfOpenings" validate:"required,gt=0"`
	ApplyMode           string   `json:"applyMode" validate:"required,oneof=Portal Email ExternalLink"`
	WorkMode            string   `json:"workMode" validate:"required,oneof=On-site Remote Hybrid"`
	Benefits            []string `json:"benefits"`
}

type ApplyJobRequest struct {
	JobID string `json:"jobId"`
}

type CheckAppliedRequest struct {
	UserID string `json:"userId"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status"`
}

type JobResponse struct {
	Message string    `json:"message"`
	Job     types.Job `json:"job"`
}

type ApplicationResponse struct {
	Message     string            `json:"message"`
	Application types.Application `json:"application"`
}

type ApplicantsResponse struct {
	Message      string                  `json:"message"`
	Applications []types.ApplicantDetail `json:"applications"`
}

type AppliedJobsResponse struct {
	Message string             `json:"message"`
	Jobs    []types.AppliedJob `json:"jobs"`
}

type CheckAppliedResponse struct {
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}
