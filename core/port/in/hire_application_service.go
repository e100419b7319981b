package in

import (
	"context"

	"hire_server/core/domain"
)

// ApplicationService defines the interface for application lifecycle operations
type ApplicationService interface {
	Apply(ctx context.Context, actor domain.Actor, jobID string) (*domain.Application, error)
	Withdraw(ctx context.Context, actor domain.Actor, applicationID string) error
	ListMyApplications(ctx context.Context, actor domain.Actor) ([]*ApplicationWithJob, error)
	ListJobApplicants(ctx context.Context, actor domain.Actor, jobID string) ([]*ApplicationWithApplicant, error)
	SetStatus(ctx context.Context, actor domain.Actor, applicationID string, status string) (*domain.Application, error)
}

// ApplicationWithJob is an application joined with its job for the
// applicant's own listing.
type ApplicationWithJob struct {
	Application *domain.Application `json:"application"`
	Job         *domain.Job         `json:"job,omitempty"`
}

// ApplicationWithApplicant is an application joined with the applicant's
// public profile for the recruiter's view.
type ApplicationWithApplicant struct {
	Application *domain.Application `json:"application"`
	Applicant   *domain.User        `json:"applicant,omitempty"`
}
