package store

import (
	"context"
	"errors"
	"time"

	"github.com/jobpilot/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JobRepository handles persistence for job postings.
type JobRepository struct {
	coll *mongo.Collection
}

func NewJobRepository(database *mongo.Database) *JobRepository {
	return &JobRepository{coll: database.Collection("jobs")}
}

func (r *JobRepository) GetByID(ctx context.Context, id primitive.ObjectID) (types.Job, error) {
	var job types.Job
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	return job, nil
}

// List returns all live postings, newest first.
func (r *JobRepository) List(ctx context.Context) ([]types.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, notDeleted, opts)
	if err != nil {
		return nil, err
	}
	jobs := []types.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) ListByEmployer(ctx context.Context, employerID primitive.ObjectID) ([]types.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"createdBy": employerID, "isDeleted": bson.M{"$ne": true}}, opts)
	if err != nil {
		return nil, err
	}
	jobs := []types.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, job)
	if err != nil {
		return types.Job{}, err
	}
	job.ID = res.InsertedID.(primitive.ObjectID)
	return job, nil
}

// Update applies a partial $set and returns the updated posting.
func (r *JobRepository) Update(ctx context.Context, id primitive.ObjectID, update types.JobUpdate) (types.Job, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.JobTitle != nil {
		set["jobTitle"] = *update.JobTitle
	}
	if update.CompanyName != nil {
		set["companyName"] = *update.CompanyName
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.EmploymentType != nil {
		set["employmentType"] = *update.EmploymentType
	}
	if update.JobDescription != nil {
		set["jobDescription"] = *update.JobDescription
	}
	if update.Skills != nil {
		set["skills"] = *update.Skills
	}
	if update.ExperienceRequired != nil {
		set["experienceRequired"] = *update.ExperienceRequired
	}
	if update.Education != nil {
		set["education"] = *update.Education
	}
	if update.SalaryRange != nil {
		set["salaryRange"] = *update.SalaryRange
	}
	if update.ApplicationDeadline != nil {
		set["applicationDeadline"] = *update.ApplicationDeadline
	}
	if update.NumberOfOpenings != nil {
		set["numberOfOpenings"] = *update.NumberOfOpenings
	}
	if update.ApplyMode != nil {
		set["applyMode"] = *update.ApplyMode
	}
	if update.WorkMode != nil {
		set["workMode"] = *update.WorkMode
	}
	if update.Benefits != nil {
		set["benefits"] = *update.Benefits
	}

	var job types.Job
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
		bson.M{"$set": set},
		findOneAndUpdateAfter(),
	).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
