package services

import (
	"context"
	"errors"

	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// SuperAdminRepository defines persistence operations for superadmins.
type SuperAdminRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (types.SuperAdmin, error)
	GetByEmail(ctx context.Context, email string) (types.SuperAdmin, error)
	Create(ctx context.Context, admin types.SuperAdmin) (types.SuperAdmin, error)
}

// SuperAdminService encapsulates superadmin use-cases.
type SuperAdminService struct {
	repo SuperAdminRepository
}

func NewSuperAdminService(repo SuperAdminRepository) *SuperAdminService {
	return &SuperAdminService{repo: repo}
}

func (s *SuperAdminService) GetByEmail(ctx context.Context, email string) (types.SuperAdmin, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Bootstrap creates the superadmin account if it does not already exist.
// Used by the createsuperadmin CLI command.
func (s *SuperAdminService) Bootstrap(ctx context.Context, firstName, lastName, email, password string) (types.SuperAdmin, error) {
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.SuperAdmin{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.SuperAdmin{}, err
	}

	return s.repo.Create(ctx, types.SuperAdmin{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "superadmin",
	})
}
