package services

import (
	"context"
	"errors"
	"time"

	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrEmailExists is returned when the email is already registered in the
// target collection.
var ErrEmailExists = errors.New("email already exists")

// ErrMobileExists is returned when the mobile number is already registered
// in the target collection.
var ErrMobileExists = errors.New("mobile number already exists")

// UserRepository defines persistence operations for job-seeker accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByMobile(ctx context.Context, mobile string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	ListByRole(ctx context.Context, role string) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.User, error)
	ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// UserService encapsulates job-seeker use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) ListByRole(ctx context.Context, role string) ([]types.User, error) {
	return s.repo.ListByRole(ctx, role)
}

// Create inserts a new user after per-collection email and mobile
// uniqueness pre-checks.
func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	if _, err := s.repo.GetByEmail(ctx, user.Email); err == nil {
		return types.User{}, ErrEmailExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	if _, err := s.repo.GetByMobile(ctx, user.Mobile); err == nil {
		return types.User{}, ErrMobileExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	return s.repo.Create(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.SoftDelete(ctx, id)
}
