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

// ApplicationRepository handles persistence for job applications.
type ApplicationRepository struct {
	coll *mongo.Collection
}

func NewApplicationRepository(database *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{coll: database.Collection("applications")}
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.Application, error) {
	var app types.Application
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

// GetByUserAndJob is the duplicate-application probe.
func (r *ApplicationRepository) GetByUserAndJob(ctx context.Context, userID, jobID primitive.ObjectID) (types.Application, error) {
	var app types.Application
	err := r.coll.FindOne(ctx, bson.M{"user": userID, "job": jobID}).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID primitive.ObjectID) ([]types.Application, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"job": jobID})
	if err != nil {
		return nil, err
	}
	apps := []types.Application{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]types.Application, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	apps := []types.Application{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now()
	}
	if app.Status == "" {
		app.Status = types.ApplicationApplied
	}

	res, err := r.coll.InsertOne(ctx, app)
	if err != nil {
		return types.Application{}, err
	}
	app.ID = res.InsertedID.(primitive.ObjectID)
	return app, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (types.Application, error) {
	var app types.Application
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		findOneAndUpdateAfter(),
	).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, err
	}
	return app, nil
}
