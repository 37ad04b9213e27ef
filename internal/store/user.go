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

// UserRepository handles persistence for job-seeker accounts.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{coll: database.Collection("users")}
}

// notDeleted excludes soft-deleted documents from normal queries.
var notDeleted = bson.M{"isDeleted": bson.M{"$ne": true}}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error) {
	var user types.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	var user types.User
	err := r.coll.FindOne(ctx, bson.M{"email": email, "isDeleted": bson.M{"$ne": true}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByMobile(ctx context.Context, mobile string) (types.User, error) {
	var user types.User
	err := r.coll.FindOne(ctx, bson.M{"mobile": mobile, "isDeleted": bson.M{"$ne": true}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	cursor, err := r.coll.Find(ctx, notDeleted)
	if err != nil {
		return nil, err
	}
	users := []types.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByRole returns users whose job role matches the given category.
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]types.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"role": role, "isDeleted": bson.M{"$ne": true}})
	if err != nil {
		return nil, err
	}
	users := []types.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

// SetOTP stores a fresh password-reset challenge, overwriting any prior one.
func (r *UserRepository) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
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

// GetByEmailAndOTP finds the account holding an unexpired challenge that
// matches both email and code.
func (r *UserRepository) GetByEmailAndOTP(ctx context.Context, email, code string, now time.Time) (types.User, error) {
	var user types.User
	err := r.coll.FindOne(ctx, bson.M{
		"email":     email,
		"otp":       code,
		"otpExpire": bson.M{"$gt": now},
	}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// ResetPassword sets the new password hash and clears the OTP challenge in
// a single write, so a consumed code can never be replayed.
func (r *UserRepository) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
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

func (r *UserRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
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
