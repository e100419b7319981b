// Package servicetest provides in-memory implementations of the
// outbound ports for service tests.
package servicetest

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"hire_server/core/domain"
	"hire_server/pkg/apperr"

	"github.com/goccy/go-json"
)

// MemStore implements the user, company, job and application
// repositories over plain maps. It enforces the same uniqueness rules
// as the real store: user email, company name, and (job, applicant).
type MemStore struct {
	mu        sync.Mutex
	Users     map[string]*domain.User
	Companies map[string]*domain.Company
	Jobs      map[string]*domain.Job
	Apps      map[string]*domain.Application
}

func NewMemStore() *MemStore {
	return &MemStore{
		Users:     make(map[string]*domain.User),
		Companies: make(map[string]*domain.Company),
		Jobs:      make(map[string]*domain.Job),
		Apps:      make(map[string]*domain.Application),
	}
}

// =============================================================================
// UserRepository
// =============================================================================

func (m *MemStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Users[id], nil
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ListUsers(ctx context.Context, filter *domain.UserFilter, skip, limit int) ([]*domain.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []*domain.User
	for _, u := range m.Users {
		if u.Role == domain.RoleAdmin {
			continue
		}
		if filter != nil {
			if filter.Role != "" && u.Role != filter.Role {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(u.Fullname), strings.ToLower(filter.Search)) {
				continue
			}
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	total := len(users)
	return paginate(users, skip, limit), total, nil
}

func (m *MemStore) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == user.Email {
			return apperr.AlreadyExists("user with this email")
		}
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MemStore) UpdateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[user.ID]; !ok {
		return apperr.NotFound("user")
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MemStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Users, id)
	return nil
}

func (m *MemStore) AddSavedJob(ctx context.Context, userID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return apperr.NotFound("user")
	}
	for _, id := range u.SavedJobs {
		if id == jobID {
			return nil
		}
	}
	u.SavedJobs = append(u.SavedJobs, jobID)
	return nil
}

func (m *MemStore) RemoveSavedJob(ctx context.Context, userID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return apperr.NotFound("user")
	}
	kept := u.SavedJobs[:0]
	for _, id := range u.SavedJobs {
		if id != jobID {
			kept = append(kept, id)
		}
	}
	u.SavedJobs = kept
	return nil
}

func (m *MemStore) SetSavedJobs(ctx context.Context, userID string, jobIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return apperr.NotFound("user")
	}
	u.SavedJobs = jobIDs
	return nil
}

// =============================================================================
// CompanyRepository
// =============================================================================

func (m *MemStore) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Companies[id], nil
}

func (m *MemStore) GetCompanyByName(ctx context.Context, name string) (*domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Companies {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ListCompaniesByOwner(ctx context.Context, ownerUserID string) ([]*domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var companies []*domain.Company
	for _, c := range m.Companies {
		if c.OwnerUserID == ownerUserID {
			companies = append(companies, c)
		}
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].ID < companies[j].ID })
	return companies, nil
}

func (m *MemStore) ListCompanies(ctx context.Context, search string, skip, limit int) ([]*domain.Company, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var companies []*domain.Company
	for _, c := range m.Companies {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		companies = append(companies, c)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].ID < companies[j].ID })
	total := len(companies)
	return paginate(companies, skip, limit), total, nil
}

func (m *MemStore) CreateCompany(ctx context.Context, company *domain.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Companies {
		if c.Name == company.Name {
			return apperr.AlreadyExists("company with this name")
		}
	}
	m.Companies[company.ID] = company
	return nil
}

func (m *MemStore) UpdateCompany(ctx context.Context, company *domain.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Companies[company.ID]; !ok {
		return apperr.NotFound("company")
	}
	m.Companies[company.ID] = company
	return nil
}

func (m *MemStore) DeleteCompany(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Companies, id)
	return nil
}

func (m *MemStore) DeleteCompaniesByOwner(ctx context.Context, ownerUserID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, c := range m.Companies {
		if c.OwnerUserID == ownerUserID {
			ids = append(ids, id)
			delete(m.Companies, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// =============================================================================
// JobRepository
// =============================================================================

func (m *MemStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Jobs[id], nil
}

func (m *MemStore) GetJobsByIDs(ctx context.Context, ids []string) ([]*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*domain.Job
	for _, id := range ids {
		if j, ok := m.Jobs[id]; ok {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

func (m *MemStore) ListJobs(ctx context.Context, filter *domain.JobFilter, skip, limit int) ([]*domain.Job, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keywordRe *regexp.Regexp
	if filter != nil && filter.Keyword != "" {
		keywordRe = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(filter.Keyword) + `\b`)
	}

	var jobs []*domain.Job
	for _, j := range m.Jobs {
		if filter != nil {
			if filter.CompanyID != "" && j.CompanyID != filter.CompanyID {
				continue
			}
			if filter.PostedByUserID != "" && j.PostedByUserID != filter.PostedByUserID {
				continue
			}
			if filter.Location != "" && !strings.Contains(strings.ToLower(j.Location), strings.ToLower(filter.Location)) {
				continue
			}
			if filter.Title != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(filter.Title)) {
				continue
			}
			if keywordRe != nil && !keywordRe.MatchString(j.Title) && !keywordRe.MatchString(j.Description) {
				continue
			}
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	total := len(jobs)
	return paginate(jobs, skip, limit), total, nil
}

func (m *MemStore) CreateJob(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Jobs[job.ID] = job
	return nil
}

func (m *MemStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Jobs[job.ID]; !ok {
		return apperr.NotFound("job")
	}
	m.Jobs[job.ID] = job
	return nil
}

func (m *MemStore) DeleteJob(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Jobs, id)
	return nil
}

func (m *MemStore) DeleteJobsByCompany(ctx context.Context, companyID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, j := range m.Jobs {
		if j.CompanyID == companyID {
			ids = append(ids, id)
			delete(m.Jobs, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemStore) AppendApplication(ctx context.Context, jobID, applicationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Jobs[jobID]
	if !ok {
		return apperr.NotFound("job")
	}
	j.ApplicationIDs = append(j.ApplicationIDs, applicationID)
	j.ApplicationsCount++
	return nil
}

func (m *MemStore) RemoveApplication(ctx context.Context, jobID, applicationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Jobs[jobID]
	if !ok {
		return apperr.NotFound("job")
	}
	kept := j.ApplicationIDs[:0]
	for _, id := range j.ApplicationIDs {
		if id != applicationID {
			kept = append(kept, id)
		}
	}
	j.ApplicationIDs = kept
	if j.ApplicationsCount > 0 {
		j.ApplicationsCount--
	}
	return nil
}

func (m *MemStore) IncrementApplications(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Jobs[jobID]
	if !ok {
		return apperr.NotFound("job")
	}
	j.ApplicationsCount++
	return nil
}

func (m *MemStore) DecrementApplications(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Jobs[jobID]
	if !ok {
		return apperr.NotFound("job")
	}
	if j.ApplicationsCount > 0 {
		j.ApplicationsCount--
	}
	return nil
}

// PruneApplications pulls ids without touching the counter, matching
// the repository contract.
func (m *MemStore) PruneApplications(ctx context.Context, jobID string, applicationIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Jobs[jobID]
	if !ok {
		return apperr.NotFound("job")
	}
	drop := make(map[string]bool, len(applicationIDs))
	for _, id := range applicationIDs {
		drop[id] = true
	}
	kept := j.ApplicationIDs[:0]
	for _, id := range j.ApplicationIDs {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	j.ApplicationIDs = kept
	return nil
}

// =============================================================================
// ApplicationRepository
// =============================================================================

// GetApplication returns a copy, as decoding from the real store does.
func (m *MemStore) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Apps[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *MemStore) GetByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return a, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ListByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var apps []*domain.Application
	for _, a := range m.Apps {
		if a.ApplicantID == applicantID {
			apps = append(apps, a)
		}
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (m *MemStore) ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var apps []*domain.Application
	for _, a := range m.Apps {
		if a.JobID == jobID {
			apps = append(apps, a)
		}
	}
	sortNewestFirst(apps)
	return apps, nil
}

func sortNewestFirst(apps []*domain.Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
}

func (m *MemStore) CreateApplication(ctx context.Context, app *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Apps {
		if a.JobID == app.JobID && a.ApplicantID == app.ApplicantID {
			return apperr.AlreadyExists("application")
		}
	}
	m.Apps[app.ID] = app
	return nil
}

func (m *MemStore) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Apps[id]
	if !ok {
		return apperr.NotFound("application")
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemStore) DeleteApplication(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Apps, id)
	return nil
}

func (m *MemStore) DeleteByJob(ctx context.Context, jobID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, a := range m.Apps {
		if a.JobID == jobID {
			delete(m.Apps, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemStore) DeleteByJobs(ctx context.Context, jobIDs []string) (int, error) {
	deleted := 0
	for _, id := range jobIDs {
		n, err := m.DeleteByJob(ctx, id)
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, nil
}

func (m *MemStore) DeleteByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted []*domain.Application
	for id, a := range m.Apps {
		if a.ApplicantID == applicantID {
			deleted = append(deleted, a)
			delete(m.Apps, id)
		}
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i].ID < deleted[j].ID })
	return deleted, nil
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// =============================================================================
// Blob store, token store, listing cache
// =============================================================================

// MemBlob records uploads and returns deterministic URLs.
type MemBlob struct {
	mu      sync.Mutex
	Uploads []string
}

func (b *MemBlob) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Uploads = append(b.Uploads, filename)
	return "https://blobs.test/" + filename, nil
}

// MemTokenStore tracks revoked tokens without expiry handling.
type MemTokenStore struct {
	mu      sync.Mutex
	Revoked map[string]bool
}

func NewMemTokenStore() *MemTokenStore {
	return &MemTokenStore{Revoked: make(map[string]bool)}
}

func (s *MemTokenStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Revoked[token] = true
	return nil
}

func (s *MemTokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Revoked[token], nil
}

// MemListingCache is a version-aware cache over maps.
type MemListingCache struct {
	mu       sync.Mutex
	values   map[string][]byte
	versions map[string]int64
	Sets     int
	Hits     int
}

func NewMemListingCache() *MemListingCache {
	return &MemListingCache{
		values:   make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func (c *MemListingCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	c.Hits++
	return true, nil
}

func (c *MemListingCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	c.Sets++
	return nil
}

func (c *MemListingCache) Version(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key], nil
}

func (c *MemListingCache) BumpVersion(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	return nil
}
