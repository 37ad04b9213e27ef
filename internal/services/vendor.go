package services

import (
	"context"
	"errors"
	"time"

	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VendorRepository defines persistence operations for vendor accounts.
type VendorRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (types.Vendor, error)
	GetByEmail(ctx context.Context, email string) (types.Vendor, error)
	GetByMobile(ctx context.Context, mobile string) (types.Vendor, error)
	List(ctx context.Context) ([]types.Vendor, error)
	Create(ctx context.Context, vendor types.Vendor) (types.Vendor, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.Vendor, error)
	ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// VendorService encapsulates vendor use-cases.
type VendorService struct {
	repo VendorRepository
}

func NewVendorService(repo VendorRepository) *VendorService {
	return &VendorService{repo: repo}
}

func (s *VendorService) GetByID(ctx context.Context, id primitive.ObjectID) (types.Vendor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *VendorService) List(ctx context.Context) ([]types.Vendor, error) {
	return s.repo.List(ctx)
}

// Create inserts a new vendor after per-collection uniqueness pre-checks.
func (s *VendorService) Create(ctx context.Context, vendor types.Vendor) (types.Vendor, error) {
	if _, err := s.repo.GetByEmail(ctx, vendor.Email); err == nil {
		return types.Vendor{}, ErrEmailExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Vendor{}, err
	}

	if _, err := s.repo.GetByMobile(ctx, vendor.Mobile); err == nil {
		return types.Vendor{}, ErrMobileExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Vendor{}, err
	}

	return s.repo.Create(ctx, vendor)
}
