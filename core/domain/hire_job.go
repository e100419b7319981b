package domain

import "time"

// Job is a posting attached to a company. ApplicationIDs and
// ApplicationsCount are maintained together: applying appends the id and
// increments the counter, withdrawing removes the id and decrements, and
// a first transition into a terminal status decrements the counter while
// keeping the id so the received application stays visible.
type Job struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Requirements      []string  `json:"requirements,omitempty"`
	Salary            int64     `json:"salary"`
	Location          string    `json:"location"`
	JobType           string    `json:"job_type"`
	ExperienceLevel   int       `json:"experience_level"`
	Positions         int       `json:"positions"`
	CompanyID         string    `json:"company_id"`
	PostedByUserID    string    `json:"posted_by_user_id"`
	ApplicationIDs    []string  `json:"application_ids,omitempty"`
	ApplicationsCount int       `json:"applications_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// JobFilter narrows job listings. Keyword is a whole-word match against
// title or description; Location and Title are substring matches; the id
// fields are exact. Categories combine with AND.
type JobFilter struct {
	Keyword        string
	Location       string
	Title          string
	CompanyID      string
	PostedByUserID string
}
