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

// VendorRepository handles persistence for vendor accounts.
type VendorRepository struct {
	coll *mongo.Collection
}

func NewVendorRepository(database *mongo.Database) *VendorRepository {
	return &VendorRepository{coll: database.Collection("vendors")}
}

func (r *VendorRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.Vendor, error) {
	var vendor types.Vendor
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&vendor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Vendor{}, ErrNotFound
		}
		return types.Vendor{}, err
	}
	return vendor, nil
}

func (r *VendorRepository) GetByEmail(ctx context.Context, email string) (types.Vendor, error) {
	var vendor types.Vendor
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&vendor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Vendor{}, ErrNotFound
		}
		return types.Vendor{}, err
	}
	return vendor, nil
}

func (r *VendorRepository) GetByMobile(ctx context.Context, mobile string) (types.Vendor, error) {
	var vendor types.Vendor
	err := r.coll.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&vendor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Vendor{}, ErrNotFound
		}
		return types.Vendor{}, err
	}
	return vendor, nil
}

func (r *VendorRepository) List(ctx context.Context) ([]types.Vendor, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	vendors := []types.Vendor{}
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *VendorRepository) Create(ctx context.Context, vendor types.Vendor) (types.Vendor, error) {
	now := time.Now()
	vendor.CreatedAt = now
	vendor.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, vendor)
	if err != nil {
		return types.Vendor{}, err
	}
	vendor.ID = res.InsertedID.(primitive.ObjectID)
	return vendor, nil
}

func (r *VendorRepository) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"otp": code, "otpExpire": expiresAt, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VendorRepository) GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.Vendor, error) {
	var vendor types.Vendor
	err := r.coll.FindOne(ctx, bson.M{
		"email":     email,
		"otp":       code,
		"otpExpire": bson.M{"$gt": now},
	}).Decode(&vendor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Vendor{}, ErrNotFound
		}
		return types.Vendor{}, err
	}
	return vendor, nil
}

func (r *VendorRepository) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": time.Now()},
		"$unset": bson.M{"otp": "", "otpExpire": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
