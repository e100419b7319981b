package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles. Every role-conditional rule
// switches over this type so new roles cannot slip through unchecked.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ParseRole validates and normalizes a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleApplicant, RoleRecruiter, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Profile holds the free-form profile section of a user account.
type Profile struct {
	Bio                string   `json:"bio,omitempty"`
	Skills             []string `json:"skills,omitempty"`
	ResumeURL          string   `json:"resume_url,omitempty"`
	ResumeOriginalName string   `json:"resume_original_name,omitempty"`
	ProfilePhotoURL    string   `json:"profile_photo_url,omitempty"`
}

// User is an account in the marketplace. SavedJobs holds job ids the user
// bookmarked; entries may go stale when jobs are deleted independently and
// are only reconciled by an explicit cleanup request.
type User struct {
	ID           string    `json:"id"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"profile"`
	SavedJobs    []string  `json:"saved_jobs,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasSaved reports whether the user already bookmarked the given job.
func (u *User) HasSaved(jobID string) bool {
	for _, id := range u.SavedJobs {
		if id == jobID {
			return true
		}
	}
	return false
}

// UserFilter narrows account listings. An empty Role matches applicants
// and recruiters; admin accounts never appear in listings. Search is a
// case-insensitive substring match on the full name.
type UserFilter struct {
	Role   Role
	Search string
}
