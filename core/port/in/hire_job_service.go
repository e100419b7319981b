package in

import (
	"context"

	"hire_server/core/domain"
)

// JobService defines the interface for job posting operations
type JobService interface {
	PostJob(ctx context.Context, actor domain.Actor, req *PostJobRequest) (*domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	ListJobs(ctx context.Context, query *JobListQuery, page, limit int) (*JobListResponse, error)
	ListMyJobs(ctx context.Context, actor domain.Actor) ([]*domain.Job, error)
	UpdateJob(ctx context.Context, actor domain.Actor, id string, req *UpdateJobRequest) (*domain.Job, error)
	DeleteJob(ctx context.Context, actor domain.Actor, id string) (*DeleteJobResult, error)
}

// PostJobRequest carries a new posting. Requirements is a single
// comma-separated string, split server side.
type PostJobRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Requirements    string `json:"requirements"`
	Salary          int64  `json:"salary"`
	Location        string `json:"location"`
	JobType         string `json:"job_type"`
	ExperienceLevel int    `json:"experience_level"`
	Positions       int    `json:"positions"`
	CompanyID       string `json:"company_id"`
}

type UpdateJobRequest struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Requirements    *string `json:"requirements,omitempty"`
	Salary          *int64  `json:"salary,omitempty"`
	Location        *string `json:"location,omitempty"`
	JobType         *string `json:"job_type,omitempty"`
	ExperienceLevel *int    `json:"experience_level,omitempty"`
	Positions       *int    `json:"positions,omitempty"`
}

// JobListQuery narrows the public job listing. Keyword matches whole
// words in title or description; Location and Title are substring
// matches; CompanyID is exact.
type JobListQuery struct {
	Keyword   string
	Location  string
	Title     string
	CompanyID string
}

type JobListResponse struct {
	Jobs  []*domain.Job `json:"jobs"`
	Total int           `json:"total"`
}

// DeleteJobResult tallies the cascade of a job delete.
type DeleteJobResult struct {
	DeletedApplications int `json:"deleted_applications"`
}
