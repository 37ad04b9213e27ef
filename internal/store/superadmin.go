package store

import (
	"context"
	"errors"
	"time"

	"github.com/jobpilot/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SuperAdminRepository handles persistence for superadmin accounts.
type SuperAdminRepository struct {
	coll *mongo.Collection
}

func NewSuperAdminRepository(database *mongo.Database) *SuperAdminRepository {
	return &SuperAdminRepository{coll: database.Collection("superadmins")}
}

func (r *SuperAdminRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.SuperAdmin, error) {
	var admin types.SuperAdmin
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.SuperAdmin{}, ErrNotFound
		}
		return types.SuperAdmin{}, err
	}
	return admin, nil
}

func (r *SuperAdminRepository) GetByEmail(ctx context.Context, email string) (types.SuperAdmin, error) {
	var admin types.SuperAdmin
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.SuperAdmin{}, ErrNotFound
		}
		return types.SuperAdmin{}, err
	}
	return admin, nil
}

func (r *SuperAdminRepository) Create(ctx context.Context, admin types.SuperAdmin) (types.SuperAdmin, error) {
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	if admin.Role == "" {
		admin.Role = "superadmin"
	}

	res, err := r.coll.InsertOne(ctx, admin)
	if err != nil {
		return types.SuperAdmin{}, err
	}
	admin.ID = res.InsertedID.(primitive.ObjectID)
	return admin, nil
}
