package out

import (
	"context"

	"hire_server/core/domain"
)

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	GetCompany(ctx context.Context, id string) (*domain.Company, error)
	GetCompanyByName(ctx context.Context, name string) (*domain.Company, error)
	ListCompaniesByOwner(ctx context.Context, ownerUserID string) ([]*domain.Company, error)
	ListCompanies(ctx context.Context, search string, skip, limit int) ([]*domain.Company, int, error)
	CreateCompany(ctx context.Context, company *domain.Company) error
	UpdateCompany(ctx context.Context, company *domain.Company) error
	DeleteCompany(ctx context.Context, id string) error
	DeleteCompaniesByOwner(ctx context.Context, ownerUserID string) ([]string, error)
}
