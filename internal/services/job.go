package services

import (
	"context"

	"github.com/jobpilot/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (types.Job, error)
	List(ctx context.Context) ([]types.Job, error)
	ListByEmployer(ctx context.Context, employerID primitive.ObjectID) ([]types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	Update(ctx context.Context, id primitive.ObjectID, update types.JobUpdate) (types.Job, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// JobService encapsulates job-posting use-cases.
type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

func (s *JobService) GetByID(ctx context.Context, id primitive.ObjectID) (types.Job, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *JobService) List(ctx context.Context) ([]types.Job, error) {
	return s.repo.List(ctx)
}

func (s *JobService) ListByEmployer(ctx context.Context, employerID primitive.ObjectID) ([]types.Job, error) {
	return s.repo.ListByEmployer(ctx, employerID)
}

func (s *JobService) Create(ctx context.Context, job types.Job) (types.Job, error) {
	return s.repo.Create(ctx, job)
}

func (s *JobService) Update(ctx context.Context, id primitive.ObjectID, update types.JobUpdate) (types.Job, error) {
	return s.repo.Update(ctx, id, update)
}

func (s *JobService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.SoftDelete(ctx, id)
}
