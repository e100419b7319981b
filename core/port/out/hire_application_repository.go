package out

import (
	"context"

	"hire_server/core/domain"
)

// ApplicationRepository defines the interface for application persistence
type ApplicationRepository interface {
	GetApplication(ctx context.Context, id string) (*domain.Application, error)
	GetByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*domain.Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error)
	CreateApplication(ctx context.Context, app *domain.Application) error
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error
	DeleteApplication(ctx context.Context, id string) error
	DeleteByJob(ctx context.Context, jobID string) (int, error)
	DeleteByJobs(ctx context.Context, jobIDs []string) (int, error)
	DeleteByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error)
}
