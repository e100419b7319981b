package out

import (
	"context"

	"hire_server/core/domain"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, filter *domain.UserFilter, skip, limit int) ([]*domain.User, int, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error

	// Saved jobs (atomic array updates)
	AddSavedJob(ctx context.Context, userID, jobID string) error
	RemoveSavedJob(ctx context.Context, userID, jobID string) error
	SetSavedJobs(ctx context.Context, userID string, jobIDs []string) error
}
