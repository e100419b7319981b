package in

import (
	"context"

	"hire_server/core/domain"
)

// CompanyService defines the interface for company operations
type CompanyService interface {
	CreateCompany(ctx context.Context, actor domain.Actor, req *CreateCompanyRequest) (*domain.Company, error)
	GetCompany(ctx context.Context, id string) (*domain.Company, error)
	ListMyCompanies(ctx context.Context, actor domain.Actor) ([]*domain.Company, error)
	ListCompanies(ctx context.Context, search string, page, limit int) (*CompanyListResponse, error)
	UpdateCompany(ctx context.Context, actor domain.Actor, id string, req *UpdateCompanyRequest) (*domain.Company, error)
	DeleteCompany(ctx context.Context, actor domain.Actor, id string) (*DeleteCompanyResult, error)
}

type CreateCompanyRequest struct {
	Name string `json:"name"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
	Location    *string `json:"location,omitempty"`
	Logo        *FileUpload
}

type CompanyListResponse struct {
	Companies []*domain.Company `json:"companies"`
	Total     int               `json:"total"`
}

// DeleteCompanyResult tallies the transitive cascade of a company delete.
type DeleteCompanyResult struct {
	DeletedJobs         int `json:"deleted_jobs"`
	DeletedApplications int `json:"deleted_applications"`
}
