// Package company implements company management, including the
// transitive cascade that removes a company's jobs and their
// applications together with the company.
package company

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hire_server/core/domain"
	"hire_server/core/port/in"
	"hire_server/core/port/out"
	"hire_server/core/service/common"
	"hire_server/core/service/job"
	"hire_server/pkg/apperr"

	"github.com/google/uuid"
)

// Service implements in.CompanyService
type Service struct {
	companyRepo out.CompanyRepository
	jobRepo     out.JobRepository
	appRepo     out.ApplicationRepository
	blobStore   out.BlobStore
	listings    out.ListingCache
	audit       *common.AuditRecorder
}

// NewService creates a new CompanyService
func NewService(
	companyRepo out.CompanyRepository,
	jobRepo out.JobRepository,
	appRepo out.ApplicationRepository,
	blobStore out.BlobStore,
	listings out.ListingCache,
	audit *common.AuditRecorder,
) in.CompanyService {
	return &Service{
		companyRepo: companyRepo,
		jobRepo:     jobRepo,
		appRepo:     appRepo,
		blobStore:   blobStore,
		listings:    listings,
		audit:       audit,
	}
}

func (s *Service) CreateCompany(ctx context.Context, actor domain.Actor, req *in.CreateCompanyRequest) (*domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.MissingField("name")
	}

	existing, err := s.companyRepo.GetCompanyByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup company name: %w", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("company with this name")
	}

	now := time.Now().UTC()
	company := &domain.Company{
		ID:          uuid.NewString(),
		Name:        name,
		OwnerUserID: actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.companyRepo.CreateCompany(ctx, company); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "company.create", "company", company.ID, name)
	return company, nil
}

func (s *Service) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.companyRepo.GetCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	if company == nil {
		return nil, apperr.NotFound("company")
	}
	return company, nil
}

func (s *Service) ListMyCompanies(ctx context.Context, actor domain.Actor) ([]*domain.Company, error) {
	companies, err := s.companyRepo.ListCompaniesByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// ListCompanies is the admin listing; search narrows by name substring.
func (s *Service) ListCompanies(ctx context.Context, search string, page, limit int) (*in.CompanyListResponse, error) {
	skip := (page - 1) * limit
	companies, total, err := s.companyRepo.ListCompanies(ctx, strings.TrimSpace(search), skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return &in.CompanyListResponse{Companies: companies, Total: total}, nil
}

func (s *Service) UpdateCompany(ctx context.Context, actor domain.Actor, id string, req *in.UpdateCompanyRequest) (*domain.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.OwnerUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not the owner of this company")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.ValidationFailed("company name cannot be empty")
		}
		if name != company.Name {
			other, err := s.companyRepo.GetCompanyByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("lookup company name: %w", err)
			}
			if other != nil {
				return nil, apperr.AlreadyExists("company with this name")
			}
			company.Name = name
		}
	}
	if req.Description != nil {
		company.Description = *req.Description
	}
	if req.Website != nil {
		company.Website = *req.Website
	}
	if req.Location != nil {
		company.Location = *req.Location
	}
	if req.Logo != nil {
		url, err := s.blobStore.Upload(ctx, req.Logo.Filename, req.Logo.Content)
		if err != nil {
			return nil, err
		}
		company.LogoURL = url
	}

	company.UpdatedAt = time.Now().UTC()
	if err := s.companyRepo.UpdateCompany(ctx, company); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "company.update", "company", company.ID, "")
	return company, nil
}

// DeleteCompany removes a company, every job posted under it, and every
// application to those jobs. The tallies in the result let callers see
// how far the cascade reached.
func (s *Service) DeleteCompany(ctx context.Context, actor domain.Actor, id string) (*in.DeleteCompanyResult, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.OwnerUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not the owner of this company")
	}

	jobIDs, err := s.jobRepo.DeleteJobsByCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete jobs: %w", err)
	}
	deletedApps, err := s.appRepo.DeleteByJobs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("delete applications: %w", err)
	}
	if err := s.companyRepo.DeleteCompany(ctx, id); err != nil {
		return nil, err
	}

	if s.listings != nil && len(jobIDs) > 0 {
		_ = s.listings.BumpVersion(ctx, job.ListVersionKey)
	}

	s.audit.Record(ctx, actor, "company.delete", "company", id,
		fmt.Sprintf("jobs=%d applications=%d", len(jobIDs), deletedApps))
	return &in.DeleteCompanyResult{DeletedJobs: len(jobIDs), DeletedApplications: deletedApps}, nil
}
