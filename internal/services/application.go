package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrAlreadyApplied is returned when the user has an existing application
// for the job.
var ErrAlreadyApplied = errors.New("already applied to this job")

// ErrInvalidStatus is returned when a status update names an unknown state.
var ErrInvalidStatus = errors.New("invalid application status")

// ApplicationRepository defines persistence operations for applications.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (types.Application, error)
	GetByUserAndJob(ctx context.Context, userID, jobID primitive.ObjectID) (types.Application, error)
	ListByJob(ctx context.Context, jobID primitive.ObjectID) ([]types.Application, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]types.Application, error)
	Create(ctx context.Context, app types.Application) (types.Application, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (types.Application, error)
}

// ApplicationService encapsulates job-application use-cases.
type ApplicationService struct {
	repo     ApplicationRepository
	jobs     JobRepository
	users    UserRepository
	notifier Notifier
}

func NewApplicationService(repo ApplicationRepository, jobs JobRepository, users UserRepository, notifier Notifier) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, users: users, notifier: notifier}
}

// Apply records a user's application to a job. The job must exist and the
// user may apply at most once.
func (s *ApplicationService) Apply(ctx context.Context, userID, jobID primitive.ObjectID) (types.Application, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return types.Application{}, err
	}

	if _, err := s.repo.GetByUserAndJob(ctx, userID, jobID); err == nil {
		return types.Application{}, ErrAlreadyApplied
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Application{}, err
	}

	return s.repo.Create(ctx, types.Application{UserID: userID, JobID: jobID})
}

// ApplicantsForJob returns every application for a job joined with the
// applicant's contact details.
func (s *ApplicationService) ApplicantsForJob(ctx context.Context, jobID primitive.ObjectID) ([]types.ApplicantDetail, error) {
	apps, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	details := []types.ApplicantDetail{}
	for _, app := range apps {
		detail := types.ApplicantDetail{Application: app, Job: job}
		if user, err := s.users.GetByID(ctx, app.UserID); err == nil {
			detail.User = user
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// JobsAppliedByUser returns the jobs a user applied to, joined with each
// application's status.
func (s *ApplicationService) JobsAppliedByUser(ctx context.Context, userID primitive.ObjectID) ([]types.AppliedJob, error) {
	apps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	applied := []types.AppliedJob{}
	for _, app := range apps {
		entry := types.AppliedJob{AppliedAt: app.AppliedAt, Status: app.Status}
		if job, err := s.jobs.GetByID(ctx, app.JobID); err == nil {
			entry.Job = job
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		applied = append(applied, entry)
	}
	return applied, nil
}

// HasApplied reports whether the user already applied to the job.
func (s *ApplicationService) HasApplied(ctx context.Context, userID, jobID primitive.ObjectID) (bool, error) {
	if _, err := s.repo.GetByUserAndJob(ctx, userID, jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpdateStatus moves an application to a new state and dispatches a
// status notice to the applicant.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (types.Application, error) {
	valid := false
	for _, known := range types.ApplicationStatuses {
		if status == known {
			valid = true
			break
		}
	}
	if !valid {
		return types.Application{}, ErrInvalidStatus
	}

	app, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return types.Application{}, err
	}

	if user, err := s.users.GetByID(ctx, app.UserID); err == nil {
		job, _ := s.jobs.GetByID(ctx, app.JobID)
		subject := "Application Status Update"
		body := fmt.Sprintf("Hello %s, your application for %s is now: %s.", user.FirstName, job.JobTitle, status)
		if err := s.notifier.Send(ctx, user.Email, subject, body); err != nil {
			logrus.WithField("email", user.Email).WithError(err).Error("status notice dispatch failed")
		}
	}
	return app, nil
}
