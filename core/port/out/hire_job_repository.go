package out

import (
	"context"

	"hire_server/core/domain"
)

// JobRepository defines the interface for job persistence
type JobRepository interface {
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	GetJobsByIDs(ctx context.Context, ids []string) ([]*domain.Job, error)
	ListJobs(ctx context.Context, filter *domain.JobFilter, skip, limit int) ([]*domain.Job, int, error)
	CreateJob(ctx context.Context, job *domain.Job) error
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, id string) error
	DeleteJobsByCompany(ctx context.Context, companyID string) ([]string, error)

	// Application bookkeeping (atomic single-document updates).
	// RemoveApplication pulls one id and decrements the counter;
	// PruneApplications pulls ids without touching the counter, leaving
	// the adjustment to the caller.
	AppendApplication(ctx context.Context, jobID, applicationID string) error
	RemoveApplication(ctx context.Context, jobID, applicationID string) error
	IncrementApplications(ctx context.Context, jobID string) error
	DecrementApplications(ctx context.Context, jobID string) error
	PruneApplications(ctx context.Context, jobID string, applicationIDs []string) error
}
