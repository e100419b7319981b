package in

import (
	"context"

	"hire_server/core/domain"
)

// UserService defines the interface for account operations
type UserService interface {
	// === Auth ===
	Register(ctx context.Context, req *RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	CreateAdmin(ctx context.Context, req *CreateAdminRequest) (*domain.User, error)

	// === Profile ===
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, req *UpdateProfileRequest) (*domain.User, error)

	// === Saved jobs ===
	SaveJob(ctx context.Context, actor domain.Actor, jobID string) error
	UnsaveJob(ctx context.Context, actor domain.Actor, jobID string) error
	ListSavedJobs(ctx context.Context, actor domain.Actor) ([]*domain.Job, error)
	CleanupSavedJobs(ctx context.Context, actor domain.Actor) (*CleanupResult, error)

	// === Admin ===
	ListUsers(ctx context.Context, role, search string, page, limit int) (*UserListResponse, error)
	DeleteUser(ctx context.Context, actor domain.Actor, userID string) (*DeleteUserResult, error)
}

type RegisterRequest struct {
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type CreateAdminRequest struct {
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	SecretKey   string `json:"secret_key"`
}

// UpdateProfileRequest carries partial profile edits. File holds an
// uploaded document: a profile photo for admins, a resume for everyone
// else.
type UpdateProfileRequest struct {
	Fullname    *string  `json:"fullname,omitempty"`
	Email       *string  `json:"email,omitempty"`
	PhoneNumber *string  `json:"phone_number,omitempty"`
	Bio         *string  `json:"bio,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	File        *FileUpload
}

// FileUpload is an in-memory uploaded file.
type FileUpload struct {
	Filename string
	Content  []byte
}

// CleanupResult reports how many stale saved-job references were removed.
type CleanupResult struct {
	Removed   int      `json:"removed"`
	Remaining []string `json:"remaining"`
}

type UserListResponse struct {
	Users []*domain.User `json:"users"`
	Total int            `json:"total"`
}

// DeleteUserResult tallies everything removed by a cascading user delete.
type DeleteUserResult struct {
	Companies    int `json:"companies"`
	Jobs         int `json:"jobs"`
	Applications int `json:"applications"`
}
