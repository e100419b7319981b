// Package application implements the application lifecycle and keeps
// each job's application id list and counter consistent with it.
package application

import (
	"context"
	"fmt"
	"time"

	"hire_server/core/domain"
	"hire_server/core/port/in"
	"hire_server/core/port/out"
	"hire_server/core/service/common"
	"hire_server/pkg/apperr"

	"github.com/google/uuid"
)

// Service implements in.ApplicationService
type Service struct {
	appRepo  out.ApplicationRepository
	jobRepo  out.JobRepository
	userRepo out.UserRepository
	audit    *common.AuditRecorder
}

// NewService creates a new ApplicationService
func NewService(
	appRepo out.ApplicationRepository,
	jobRepo out.JobRepository,
	userRepo out.UserRepository,
	audit *common.AuditRecorder,
) in.ApplicationService {
	return &Service{
		appRepo:  appRepo,
		jobRepo:  jobRepo,
		userRepo: userRepo,
		audit:    audit,
	}
}

// Apply creates a pending application and links it into the job. A user
// applies to a job at most once; the unique (job, applicant) index in
// the store backs this up under concurrent requests.
func (s *Service) Apply(ctx context.Context, actor domain.Actor, jobID string) (*domain.Application, error) {
	if jobID == "" {
		return nil, apperr.MissingField("job id")
	}

	job, err := s.jobRepo.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job")
	}

	existing, err := s.appRepo.GetByJobAndApplicant(ctx, jobID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup application: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("already applied to this job")
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		ApplicantID: actor.UserID,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.appRepo.CreateApplication(ctx, app); err != nil {
		// A concurrent duplicate surfaces here as a unique index
		// violation; report it the same way as the pre-check.
		if apperr.IsCode(err, apperr.CodeAlreadyExists) {
			return nil, apperr.Conflict("already applied to this job")
		}
		return nil, err
	}

	if err := s.jobRepo.AppendApplication(ctx, jobID, app.ID); err != nil {
		return nil, fmt.Errorf("link application to job: %w", err)
	}

	s.audit.Record(ctx, actor, "application.apply", "application", app.ID, jobID)
	return app, nil
}

// Withdraw deletes a pending application and unlinks it from the job. A
// decided application cannot be withdrawn.
func (s *Service) Withdraw(ctx context.Context, actor domain.Actor, applicationID string) error {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.ApplicantID != actor.UserID && !actor.IsAdmin() {
		return apperr.Forbidden("not the owner of this application")
	}
	if app.Status.Terminal() {
		return apperr.InvalidState(fmt.Sprintf("application is already %s", app.Status))
	}

	// Unlink from the job before deleting the record: a failure in
	// between leaves an extra application, never a dangling id.
	if err := s.jobRepo.RemoveApplication(ctx, app.JobID, app.ID); err != nil {
		return fmt.Errorf("unlink application from job: %w", err)
	}
	if err := s.appRepo.DeleteApplication(ctx, applicationID); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, "application.withdraw", "application", applicationID, app.JobID)
	return nil
}

func (s *Service) ListMyApplications(ctx context.Context, actor domain.Actor) ([]*in.ApplicationWithJob, error) {
	apps, err := s.appRepo.ListByApplicant(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if len(apps) == 0 {
		return []*in.ApplicationWithJob{}, nil
	}

	jobIDs := make([]string, 0, len(apps))
	for _, app := range apps {
		jobIDs = append(jobIDs, app.JobID)
	}
	jobs, err := s.jobRepo.GetJobsByIDs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("get jobs: %w", err)
	}
	byID := make(map[string]*domain.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	result := make([]*in.ApplicationWithJob, 0, len(apps))
	for _, app := range apps {
		result = append(result, &in.ApplicationWithJob{
			Application: app,
			Job:         byID[app.JobID],
		})
	}
	return result, nil
}

func (s *Service) ListJobApplicants(ctx context.Context, actor domain.Actor, jobID string) ([]*in.ApplicationWithApplicant, error) {
	job, err := s.jobRepo.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job")
	}
	if job.PostedByUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not the poster of this job")
	}

	apps, err := s.appRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	result := make([]*in.ApplicationWithApplicant, 0, len(apps))
	for _, app := range apps {
		applicant, err := s.userRepo.GetUser(ctx, app.ApplicantID)
		if err != nil {
			return nil, fmt.Errorf("get applicant: %w", err)
		}
		result = append(result, &in.ApplicationWithApplicant{
			Application: app,
			Applicant:   applicant,
		})
	}
	return result, nil
}

// SetStatus moves an application between states. The job's counter
// tracks undecided applications: the first move into a terminal status
// decrements it, moving back to pending increments it, and moves between
// terminal statuses leave it alone.
func (s *Service) SetStatus(ctx context.Context, actor domain.Actor, applicationID string, status string) (*domain.Application, error) {
	newStatus, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return nil, apperr.ValidationFailed("status must be one of pending, accepted, rejected")
	}

	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job")
	}
	if job.PostedByUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not the poster of this job")
	}

	// Snapshot the old status first: a repository may hand back a live
	// record that UpdateStatus mutates in place.
	prev := app.Status
	if prev == newStatus {
		return app, nil
	}

	if err := s.appRepo.UpdateStatus(ctx, applicationID, newStatus); err != nil {
		return nil, err
	}

	switch {
	case !prev.Terminal() && newStatus.Terminal():
		if err := s.jobRepo.DecrementApplications(ctx, app.JobID); err != nil {
			return nil, fmt.Errorf("decrement counter: %w", err)
		}
	case prev.Terminal() && !newStatus.Terminal():
		if err := s.jobRepo.IncrementApplications(ctx, app.JobID); err != nil {
			return nil, fmt.Errorf("increment counter: %w", err)
		}
	}

	app.Status = newStatus
	app.UpdatedAt = time.Now().UTC()

	s.audit.Record(ctx, actor, "application.set_status", "application", applicationID, string(newStatus))
	return app, nil
}

func (s *Service) getApplication(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.appRepo.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, apperr.NotFound("application")
	}
	return app, nil
}
