package domain

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus is the closed set of application states.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// ParseApplicationStatus validates a status string. Input is
// case-insensitive; the stored form is always lower case.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch status := ApplicationStatus(strings.ToLower(s)); status {
	case StatusPending, StatusAccepted, StatusRejected:
		return status, nil
	default:
		return "", fmt.Errorf("unknown application status: %q", s)
	}
}

// Terminal reports whether the status closes the application. A job's
// applications counter is decremented exactly once, on the first
// transition into a terminal status.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Application links one applicant to one job. The (JobID, ApplicantID)
// pair is unique: a user applies to a job at most once.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	ApplicantID string            `json:"applicant_id"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
