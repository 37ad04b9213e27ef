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

// EmployerRepository handles persistence for employer accounts.
type EmployerRepository struct {
	coll *mongo.Collection
}

func NewEmployerRepository(database *mongo.Database) *EmployerRepository {
	return &EmployerRepository{coll: database.Collection("employers")}
}

func (r *EmployerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.Employer, error) {
	var employer types.Employer
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}}).Decode(&employer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Employer{}, ErrNotFound
		}
		return types.Employer{}, err
	}
	return employer, nil
}

func (r *EmployerRepository) GetByEmail(ctx context.Context, email string) (types.Employer, error) {
	var employer types.Employer
	err := r.coll.FindOne(ctx, bson.M{"email": email, "isDeleted": bson.M{"$ne": true}}).Decode(&employer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Employer{}, ErrNotFound
		}
		return types.Employer{}, err
	}
	return employer, nil
}

func (r *EmployerRepository) GetByMobile(ctx context.Context, mobile string) (types.Employer, error) {
	var employer types.Employer
	err := r.coll.FindOne(ctx, bson.M{"mobile": mobile, "isDeleted": bson.M{"$ne": true}}).Decode(&employer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Employer{}, ErrNotFound
		}
		return types.Employer{}, err
	}
	return employer, nil
}

func (r *EmployerRepository) List(ctx context.Context) ([]types.Employer, error) {
	cursor, err := r.coll.Find(ctx, notDeleted)
	if err != nil {
		return nil, err
	}
	employers := []types.Employer{}
	if err := cursor.All(ctx, &employers); err != nil {
		return nil, err
	}
	return employers, nil
}

func (r *EmployerRepository) Create(ctx context.Context, employer types.Employer) (types.Employer, error) {
	now := time.Now()
	employer.CreatedAt = now
	employer.UpdatedAt = now
	if employer.IsApproved == "" {
		employer.IsApproved = types.ApprovalPending
	}

	res, err := r.coll.InsertOne(ctx, employer)
	if err != nil {
		return types.Employer{}, err
	}
	employer.ID = res.InsertedID.(primitive.ObjectID)
	return employer, nil
}

// SetApproval moves the employer to the given approval state.
func (r *EmployerRepository) SetApproval(ctx context.Context, id primitive.ObjectID, status string) (types.Employer, error) {
	var employer types.Employer
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"isApproved": status, "updatedAt": time.Now()}},
		findOneAndUpdateAfter(),
	).Decode(&employer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Employer{}, ErrNotFound
		}
		return types.Employer{}, err
	}
	return employer, nil
}

func (r *EmployerRepository) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
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

func (r *EmployerRepository) GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.Employer, error) {
	var employer types.Employer
	err := r.coll.FindOne(ctx, bson.M{
		"email":     email,
		"otp":       code,
		"otpExpire": bson.M{"$gt": now},
	}).Decode(&employer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Employer{}, ErrNotFound
		}
		return types.Employer{}, err
	}
	return employer, nil
}

func (r *EmployerRepository) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
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

func (r *EmployerRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"isDeleted": true, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
