package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidApprovalAction is returned when an approval decision is
// neither "Approved" nor "Rejected".
var ErrInvalidApprovalAction = errors.New("invalid approval action")

// EmployerRepository defines persistence operations for employer accounts.
type EmployerRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (types.Employer, error)
	GetByEmail(ctx context.Context, email string) (types.Employer, error)
	GetByMobile(ctx context.Context, mobile string) (types.Employer, error)
	List(ctx context.Context) ([]types.Employer, error)
	Create(ctx context.Context, employer types.Employer) (types.Employer, error)
	SetApproval(ctx context.Context, id primitive.ObjectID, status string) (types.Employer, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.Employer, error)
	ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// EmployerService encapsulates employer use-cases.
type EmployerService struct {
	repo     EmployerRepository
	notifier Notifier
}

func NewEmployerService(repo EmployerRepository, notifier Notifier) *EmployerService {
	return &EmployerService{repo: repo, notifier: notifier}
}

func (s *EmployerService) GetByID(ctx context.Context, id primitive.ObjectID) (types.Employer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EmployerService) List(ctx context.Context) ([]types.Employer, error) {
	return s.repo.List(ctx)
}

// Create inserts a new employer in the Pending approval state after
// per-collection uniqueness pre-checks.
func (s *EmployerService) Create(ctx context.Context, employer types.Employer) (types.Employer, error) {
	if _, err := s.repo.GetByEmail(ctx, employer.Email); err == nil {
		return types.Employer{}, ErrEmailExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Employer{}, err
	}

	if _, err := s.repo.GetByMobile(ctx, employer.Mobile); err == nil {
		return types.Employer{}, ErrMobileExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Employer{}, err
	}

	employer.IsApproved = types.ApprovalPending
	return s.repo.Create(ctx, employer)
}

// Approve moves the employer to Approved or Rejected and dispatches a
// status notice to the account's email.
func (s *EmployerService) Approve(ctx context.Context, id primitive.ObjectID, action string) (types.Employer, error) {
	if action != types.ApprovalApproved && action != types.ApprovalRejected {
		return types.Employer{}, ErrInvalidApprovalAction
	}

	employer, err := s.repo.SetApproval(ctx, id, action)
	if err != nil {
		return types.Employer{}, err
	}

	subject := "Employer Account Status"
	body := fmt.Sprintf("Hello %s, your employer account has been %s.", employer.FirstName, action)
	if err := s.notifier.Send(ctx, employer.Email, subject, body); err != nil {
		logrus.WithField("email", employer.Email).WithError(err).Error("approval notice dispatch failed")
	}
	return employer, nil
}

func (s *EmployerService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.SoftDelete(ctx, id)
}
