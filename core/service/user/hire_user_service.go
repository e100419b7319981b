// Package user implements account management: registration, login,
// profiles, saved jobs, and the cascading delete that keeps the rest of
// the marketplace consistent when an account goes away.
package user

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hire_server/core/domain"
	"hire_server/core/port/in"
	"hire_server/core/port/out"
	"hire_server/core/service/auth"
	"hire_server/core/service/common"
	"hire_server/pkg/apperr"
	"hire_server/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service implements in.UserService
type Service struct {
	userRepo    out.UserRepository
	companyRepo out.CompanyRepository
	jobRepo     out.JobRepository
	appRepo     out.ApplicationRepository
	blobStore   out.BlobStore
	tokenStore  out.TokenStore
	tokens      *auth.TokenManager
	audit       *common.AuditRecorder

	adminSecretKey string
	bcryptCost     int
}

// NewService creates a new UserService
func NewService(
	userRepo out.UserRepository,
	companyRepo out.CompanyRepository,
	jobRepo out.JobRepository,
	appRepo out.ApplicationRepository,
	blobStore out.BlobStore,
	tokenStore out.TokenStore,
	tokens *auth.TokenManager,
	audit *common.AuditRecorder,
	adminSecretKey string,
	bcryptCost int,
) in.UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		companyRepo:    companyRepo,
		jobRepo:        jobRepo,
		appRepo:        appRepo,
		blobStore:      blobStore,
		tokenStore:     tokenStore,
		tokens:         tokens,
		audit:          audit,
		adminSecretKey: adminSecretKey,
		bcryptCost:     bcryptCost,
	}
}

// =============================================================================
// Auth
// =============================================================================

func (s *Service) Register(ctx context.Context, req *in.RegisterRequest) (*domain.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, apperr.ValidationFailed("role must be one of applicant, recruiter, admin")
	}
	if role == domain.RoleAdmin {
		return nil, apperr.Forbidden("admin accounts are created through the admin endpoint")
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("user with this email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Fullname:     strings.TrimSpace(req.Fullname),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.Actor{UserID: user.ID, Role: user.Role}, "user.register", "user", user.ID, string(role))
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *in.LoginRequest) (*in.LoginResponse, error) {
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return nil, apperr.BadRequest("email, password and role are required")
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, apperr.ValidationFailed("role must be one of applicant, recruiter, admin")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if user == nil {
		return nil, apperr.Unauthorized("incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("incorrect email or password")
	}
	if user.Role != role {
		return nil, apperr.Unauthorized("account does not exist with the requested role")
	}

	token, _, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.audit.Record(ctx, domain.Actor{UserID: user.ID, Role: user.Role}, "user.login", "user", user.ID, "")
	return &in.LoginResponse{Token: token, User: user}, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperr.BadRequest("no token to revoke")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		// An unparseable token cannot authenticate anything anyway.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 || s.tokenStore == nil {
		return nil
	}
	if err := s.tokenStore.Revoke(ctx, token, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Service) CreateAdmin(ctx context.Context, req *in.CreateAdminRequest) (*domain.User, error) {
	if s.adminSecretKey == "" || req.SecretKey != s.adminSecretKey {
		return nil, apperr.Forbidden("invalid admin secret key")
	}
	if err := validateRegistration(&in.RegisterRequest{
		Fullname:    req.Fullname,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        string(domain.RoleAdmin),
	}); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("user with this email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	admin := &domain.User{
		ID:           uuid.NewString(),
		Fullname:     strings.TrimSpace(req.Fullname),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.CreateUser(ctx, admin); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.Actor{UserID: admin.ID, Role: domain.RoleAdmin}, "user.create_admin", "user", admin.ID, "")
	return admin, nil
}

// =============================================================================
// Profile
// =============================================================================

func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor domain.Actor, req *in.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.Fullname != nil {
		user.Fullname = strings.TrimSpace(*req.Fullname)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailPattern.MatchString(email) {
			return nil, apperr.ValidationFailed("invalid email address")
		}
		if email != user.Email {
			other, err := s.userRepo.GetUserByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("lookup email: %w", err)
			}
			if other != nil {
				return nil, apperr.AlreadyExists("user with this email")
			}
			user.Email = email
		}
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Bio != nil {
		user.Profile.Bio = *req.Bio
	}
	if req.Skills != nil {
		user.Profile.Skills = req.Skills
	}

	if req.File != nil {
		url, err := s.blobStore.Upload(ctx, req.File.Filename, req.File.Content)
		if err != nil {
			return nil, err
		}
		// Admins upload a profile photo, everyone else a resume.
		if user.Role == domain.RoleAdmin {
			user.Profile.ProfilePhotoURL = url
		} else {
			user.Profile.ResumeURL = url
			user.Profile.ResumeOriginalName = req.File.Filename
		}
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "user.update_profile", "user", user.ID, "")
	return user, nil
}

// =============================================================================
// Saved jobs
// =============================================================================

// SaveJob bookmarks a job. The job's existence is deliberately not
// checked here; bookmarks tolerate staleness and CleanupSavedJobs is
// the one place they get reconciled.
func (s *Service) SaveJob(ctx context.Context, actor domain.Actor, jobID string) error {
	if jobID == "" {
		return apperr.MissingField("job id")
	}
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if user.HasSaved(jobID) {
		return apperr.Conflict("job already saved")
	}
	if err := s.userRepo.AddSavedJob(ctx, actor.UserID, jobID); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "user.save_job", "job", jobID, "")
	return nil
}

func (s *Service) UnsaveJob(ctx context.Context, actor domain.Actor, jobID string) error {
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !user.HasSaved(jobID) {
		return apperr.NotFound("saved job")
	}
	if err := s.userRepo.RemoveSavedJob(ctx, actor.UserID, jobID); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "user.unsave_job", "job", jobID, "")
	return nil
}

// ListSavedJobs returns the jobs behind the user's bookmarks. References
// to deleted jobs are silently skipped; CleanupSavedJobs removes them.
func (s *Service) ListSavedJobs(ctx context.Context, actor domain.Actor) ([]*domain.Job, error) {
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(user.SavedJobs) == 0 {
		return []*domain.Job{}, nil
	}
	jobs, err := s.jobRepo.GetJobsByIDs(ctx, user.SavedJobs)
	if err != nil {
		return nil, fmt.Errorf("get saved jobs: %w", err)
	}
	return jobs, nil
}

// CleanupSavedJobs drops bookmarks whose job no longer exists. The
// operation is idempotent: a second run removes nothing.
func (s *Service) CleanupSavedJobs(ctx context.Context, actor domain.Actor) (*in.CleanupResult, error) {
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(user.SavedJobs) == 0 {
		return &in.CleanupResult{Removed: 0, Remaining: []string{}}, nil
	}

	jobs, err := s.jobRepo.GetJobsByIDs(ctx, user.SavedJobs)
	if err != nil {
		return nil, fmt.Errorf("get saved jobs: %w", err)
	}
	alive := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		alive[j.ID] = true
	}

	remaining := make([]string, 0, len(user.SavedJobs))
	for _, id := range user.SavedJobs {
		if alive[id] {
			remaining = append(remaining, id)
		}
	}
	removed := len(user.SavedJobs) - len(remaining)
	if removed > 0 {
		if err := s.userRepo.SetSavedJobs(ctx, actor.UserID, remaining); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, actor, "user.cleanup_saved_jobs", "user", actor.UserID, fmt.Sprintf("removed=%d", removed))
	return &in.CleanupResult{Removed: removed, Remaining: remaining}, nil
}

// =============================================================================
// Admin
// =============================================================================

// ListUsers is the admin account listing. Admin accounts are excluded;
// an empty role matches applicants and recruiters alike.
func (s *Service) ListUsers(ctx context.Context, role, search string, page, limit int) (*in.UserListResponse, error) {
	filter := &domain.UserFilter{Search: strings.TrimSpace(search)}
	if role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil || parsed == domain.RoleAdmin {
			return nil, apperr.ValidationFailed("role must be applicant or recruiter")
		}
		filter.Role = parsed
	}
	skip := (page - 1) * limit
	users, total, err := s.userRepo.ListUsers(ctx, filter, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &in.UserListResponse{Users: users, Total: total}, nil
}

// DeleteUser removes an account and everything hanging off it. For a
// recruiter that means every owned company, those companies' jobs, and
// those jobs' applications. For an applicant it means their
// applications, with each affected job's counter and id list pruned.
func (s *Service) DeleteUser(ctx context.Context, actor domain.Actor, userID string) (*in.DeleteUserResult, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("only admins can delete accounts")
	}

	target, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleAdmin {
		return nil, apperr.Forbidden("cannot delete admin accounts")
	}

	result := &in.DeleteUserResult{}
	switch target.Role {
	case domain.RoleRecruiter:
		companyIDs, err := s.companyRepo.DeleteCompaniesByOwner(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("delete companies: %w", err)
		}
		result.Companies = len(companyIDs)

		for _, companyID := range companyIDs {
			jobIDs, err := s.jobRepo.DeleteJobsByCompany(ctx, companyID)
			if err != nil {
				return nil, fmt.Errorf("delete jobs of company %s: %w", companyID, err)
			}
			result.Jobs += len(jobIDs)

			deleted, err := s.appRepo.DeleteByJobs(ctx, jobIDs)
			if err != nil {
				return nil, fmt.Errorf("delete applications of company %s: %w", companyID, err)
			}
			result.Applications += deleted
		}

	case domain.RoleApplicant:
		apps, err := s.appRepo.DeleteByApplicant(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("delete applications: %w", err)
		}
		result.Applications = len(apps)

		byJob := make(map[string][]*domain.Application)
		for _, app := range apps {
			byJob[app.JobID] = append(byJob[app.JobID], app)
		}
		for jobID, jobApps := range byJob {
			ids := make([]string, 0, len(jobApps))
			for _, app := range jobApps {
				ids = append(ids, app.ID)
			}
			if err := s.jobRepo.PruneApplications(ctx, jobID, ids); err != nil {
				// The applications are already gone; log and keep pruning.
				logger.WithError(err).WithField("job_id", jobID).Warn("prune application references failed")
				continue
			}
			// The counter tracks undecided applications: only the
			// still-pending ones are subtracted. Decided applications
			// were settled at accept or reject time.
			for _, app := range jobApps {
				if app.Status != domain.StatusPending {
					continue
				}
				if err := s.jobRepo.DecrementApplications(ctx, jobID); err != nil {
					logger.WithError(err).WithField("job_id", jobID).Warn("decrement counter failed")
				}
			}
		}
	}

	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "user.delete", "user", userID,
		fmt.Sprintf("companies=%d jobs=%d applications=%d", result.Companies, result.Jobs, result.Applications))
	return result, nil
}

func validateRegistration(req *in.RegisterRequest) error {
	if strings.TrimSpace(req.Fullname) == "" {
		return apperr.MissingField("fullname")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return apperr.MissingField("email")
	}
	if !emailPattern.MatchString(email) {
		return apperr.ValidationFailed("invalid email address")
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return apperr.MissingField("phone_number")
	}
	if len(req.Password) < 6 {
		return apperr.ValidationFailed("password must be at least 6 characters")
	}
	if req.Role == "" {
		return apperr.MissingField("role")
	}
	return nil
}
