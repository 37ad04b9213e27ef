package services

import (
	"context"

	"github.com/jobpilot/apiserver/internal/store"
	"github.com/jobpilot/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Directory adapts the account repositories to the identity resolver's
// string-keyed lookups. A malformed subject id maps to not-found rather
// than a decode error, so stale tokens fail the same way as deleted
// accounts.
type Directory struct {
	users     UserRepository
	employers EmployerRepository
	vendors   VendorRepository
}

func NewDirectory(users UserRepository, employers EmployerRepository, vendors VendorRepository) *Directory {
	return &Directory{users: users, employers: employers, vendors: vendors}
}

func (d *Directory) UserByID(ctx context.Context, id string) (types.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.User{}, store.ErrNotFound
	}
	return d.users.GetByID(ctx, oid)
}

func (d *Directory) EmployerByID(ctx context.Context, id string) (types.Employer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Employer{}, store.ErrNotFound
	}
	return d.employers.GetByID(ctx, oid)
}

func (d *Directory) VendorByID(ctx context.Context, id string) (types.Vendor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Vendor{}, store.ErrNotFound
	}
	return d.vendors.GetByID(ctx, oid)
}
