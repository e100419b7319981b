// Package job implements job posting management and the cached public
// listing.
package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hire_server/core/domain"
	"hire_server/core/port/in"
	"hire_server/core/port/out"
	"hire_server/core/service/common"
	"hire_server/pkg/apperr"

	"github.com/google/uuid"
)

// ListVersionKey is the listing cache namespace version counter. Any
// write that changes what the public listing would return bumps it.
const ListVersionKey = "jobs:list:version"

// Service implements in.JobService
type Service struct {
	jobRepo     out.JobRepository
	companyRepo out.CompanyRepository
	appRepo     out.ApplicationRepository
	listings    out.ListingCache
	listingTTL  time.Duration
	audit       *common.AuditRecorder
}

// NewService creates a new JobService
func NewService(
	jobRepo out.JobRepository,
	companyRepo out.CompanyRepository,
	appRepo out.ApplicationRepository,
	listings out.ListingCache,
	listingTTL time.Duration,
	audit *common.AuditRecorder,
) in.JobService {
	return &Service{
		jobRepo:     jobRepo,
		companyRepo: companyRepo,
		appRepo:     appRepo,
		listings:    listings,
		listingTTL:  listingTTL,
		audit:       audit,
	}
}

func (s *Service) PostJob(ctx context.Context, actor domain.Actor, req *in.PostJobRequest) (*domain.Job, error) {
	if err := validatePosting(req); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetCompany(ctx, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	if company == nil {
		return nil, apperr.NotFound("company")
	}
	if company.OwnerUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not the owner of this company")
	}

	now := time.Now().UTC()
	job := &domain.Job{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Requirements:    splitRequirements(req.Requirements),
		Salary:          req.Salary,
		Location:        strings.TrimSpace(req.Location),
		JobType:         strings.TrimSpace(req.JobType),
		ExperienceLevel: req.ExperienceLevel,
		Positions:       req.Positions,
		CompanyID:       company.ID,
		PostedByUserID:  actor.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	s.audit.Record(ctx, actor, "job.post", "job", job.ID, job.Title)
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobRepo.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return nil, apperr.NotFound("job")
	}
	return job, nil
}

// ListJobs serves the public searchable listing through the
// version-stamped cache: a stale version in the key makes invalidated
// entries unreachable without deleting them.
func (s *Service) ListJobs(ctx context.Context, query *in.JobListQuery, page, limit int) (*in.JobListResponse, error) {
	if query == nil {
		query = &in.JobListQuery{}
	}
	filter := &domain.JobFilter{
		Keyword:   strings.TrimSpace(query.Keyword),
		Location:  strings.TrimSpace(query.Location),
		Title:     strings.TrimSpace(query.Title),
		CompanyID: strings.TrimSpace(query.CompanyID),
	}
	skip := (page - 1) * limit

	var key string
	if s.listings != nil {
		version, err := s.listings.Version(ctx, ListVersionKey)
		if err == nil {
			key = fmt.Sprintf("jobs:list:v%d:kw=%s:loc=%s:t=%s:c=%s:p%d:l%d",
				version, filter.Keyword, filter.Location, filter.Title, filter.CompanyID, page, limit)
			var cached in.JobListResponse
			if hit, err := s.listings.GetJSON(ctx, key, &cached); err == nil && hit {
				return &cached, nil
			}
		}
	}

	jobs, total, err := s.jobRepo.ListJobs(ctx, filter, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	resp := &in.JobListResponse{Jobs: jobs, Total: total}

	if s.listings != nil && key != "" {
		_ = s.listings.SetJSON(ctx, key, resp, s.listingTTL)
	}
	return resp, nil
}

func (s *Service) ListMyJobs(ctx context.Context, actor domain.Actor) ([]*domain.Job, error) {
	jobs, _, err := s.jobRepo.ListJobs(ctx, &domain.JobFilter{PostedByUserID: actor.UserID}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *Service) UpdateJob(ctx context.Context, actor domain.Actor, id string, req *in.UpdateJobRequest) (*domain.Job, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.PostedByUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not the poster of this job")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.ValidationFailed("title cannot be empty")
		}
		job.Title = title
	}
	if req.Description != nil {
		job.Description = strings.TrimSpace(*req.Description)
	}
	if req.Requirements != nil {
		job.Requirements = splitRequirements(*req.Requirements)
	}
	if req.Salary != nil {
		job.Salary = *req.Salary
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.JobType != nil {
		job.JobType = strings.TrimSpace(*req.JobType)
	}
	if req.ExperienceLevel != nil {
		job.ExperienceLevel = *req.ExperienceLevel
	}
	if req.Positions != nil {
		if *req.Positions < 1 {
			return nil, apperr.ValidationFailed("positions must be at least 1")
		}
		job.Positions = *req.Positions
	}

	job.UpdatedAt = time.Now().UTC()
	if err := s.jobRepo.UpdateJob(ctx, job); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	s.audit.Record(ctx, actor, "job.update", "job", job.ID, "")
	return job, nil
}

// DeleteJob removes a job and every application to it, so no application
// can reference a job that no longer exists.
func (s *Service) DeleteJob(ctx context.Context, actor domain.Actor, id string) (*in.DeleteJobResult, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.PostedByUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not the poster of this job")
	}

	deleted, err := s.appRepo.DeleteByJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete applications: %w", err)
	}
	if err := s.jobRepo.DeleteJob(ctx, id); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	s.audit.Record(ctx, actor, "job.delete", "job", id, fmt.Sprintf("applications=%d", deleted))
	return &in.DeleteJobResult{DeletedApplications: deleted}, nil
}

func (s *Service) invalidateListings(ctx context.Context) {
	if s.listings != nil {
		_ = s.listings.BumpVersion(ctx, ListVersionKey)
	}
}

func validatePosting(req *in.PostJobRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperr.MissingField("title")
	}
	if strings.TrimSpace(req.Description) == "" {
		return apperr.MissingField("description")
	}
	if req.CompanyID == "" {
		return apperr.MissingField("company_id")
	}
	if req.Salary < 0 {
		return apperr.ValidationFailed("salary cannot be negative")
	}
	if req.Positions < 1 {
		return apperr.ValidationFailed("positions must be at least 1")
	}
	return nil
}

func splitRequirements(raw string) []string {
	parts := strings.Split(raw, ",")
	reqs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			reqs = append(reqs, p)
		}
	}
	return reqs
}
