package user

import (
	"context"
	"testing"
	"time"

	"hire_server/core/domain"
	"hire_server/core/port/in"
	"hire_server/core/service/auth"
	"hire_server/core/service/servicetest"
	"hire_server/pkg/apperr"
)

const adminKey = "admin-test-key"

func newEnv(t *testing.T) (*servicetest.MemStore, in.UserService, *servicetest.MemTokenStore) {
	t.Helper()
	store := servicetest.NewMemStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	tokenStore := servicetest.NewMemTokenStore()
	svc := NewService(store, store, store, store, &servicetest.MemBlob{}, tokenStore, tokens, nil, adminKey, 4)
	return store, svc, tokenStore
}

func register(t *testing.T, svc in.UserService, email, role string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), &in.RegisterRequest{
		Fullname:    "Test User",
		Email:       email,
		PhoneNumber: "555-0101",
		Password:    "secret1",
		Role:        role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc, _ := newEnv(t)
	ctx := context.Background()

	u := register(t, svc, "Dev@Mail.Test", "applicant")
	if u.Email != "dev@mail.test" {
		t.Errorf("email should be normalized, got %q", u.Email)
	}
	if u.PasswordHash == "secret1" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	resp, err := svc.Login(ctx, &in.LoginRequest{Email: "dev@mail.test", Password: "secret1", Role: "applicant"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}

	if _, err := svc.Login(ctx, &in.LoginRequest{Email: "dev@mail.test", Password: "wrong", Role: "applicant"}); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("expected unauthorized for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, &in.LoginRequest{Email: "dev@mail.test", Password: "secret1", Role: "recruiter"}); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("expected unauthorized for role mismatch, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc, _ := newEnv(t)
	register(t, svc, "dev@mail.test", "applicant")

	_, err := svc.Register(context.Background(), &in.RegisterRequest{
		Fullname:    "Other",
		Email:       "dev@mail.test",
		PhoneNumber: "555-0102",
		Password:    "secret2",
		Role:        "recruiter",
	})
	if !apperr.IsCode(err, apperr.CodeAlreadyExists) {
		t.Fatalf("expected duplicate email rejection, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	_, svc, _ := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *in.RegisterRequest
	}{
		{"missing fullname", &in.RegisterRequest{Email: "a@b.co", PhoneNumber: "1", Password: "secret1", Role: "applicant"}},
		{"bad email", &in.RegisterRequest{Fullname: "A", Email: "nope", PhoneNumber: "1", Password: "secret1", Role: "applicant"}},
		{"short password", &in.RegisterRequest{Fullname: "A", Email: "a@b.co", PhoneNumber: "1", Password: "abc", Role: "applicant"}},
		{"bad role", &in.RegisterRequest{Fullname: "A", Email: "a@b.co", PhoneNumber: "1", Password: "secret1", Role: "boss"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.req); err == nil {
				t.Error("expected error")
			} else if apperr.GetHTTPStatus(err) != 400 {
				t.Errorf("expected 400, got %d (%v)", apperr.GetHTTPStatus(err), err)
			}
		})
	}

	// Self-service admin registration is blocked outright.
	_, err := svc.Register(ctx, &in.RegisterRequest{Fullname: "A", Email: "a@b.co", PhoneNumber: "1", Password: "secret1", Role: "admin"})
	if !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Errorf("expected forbidden for admin self-registration, got %v", err)
	}
}

func TestCreateAdminRequiresSecretKey(t *testing.T) {
	_, svc, _ := newEnv(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, &in.CreateAdminRequest{
		Fullname: "Boss", Email: "boss@corp.test", PhoneNumber: "1", Password: "secret1", SecretKey: "wrong",
	})
	if !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for wrong key, got %v", err)
	}

	admin, err := svc.CreateAdmin(ctx, &in.CreateAdminRequest{
		Fullname: "Boss", Email: "boss@corp.test", PhoneNumber: "1", Password: "secret1", SecretKey: adminKey,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %s", admin.Role)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	_, svc, tokenStore := newEnv(t)
	ctx := context.Background()

	register(t, svc, "dev@mail.test", "applicant")
	resp, err := svc.Login(ctx, &in.LoginRequest{Email: "dev@mail.test", Password: "secret1", Role: "applicant"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	revoked, _ := tokenStore.IsRevoked(ctx, resp.Token)
	if !revoked {
		t.Error("token should be revoked after logout")
	}
}

func TestUpdateProfileUploadBranching(t *testing.T) {
	_, svc, _ := newEnv(t)
	ctx := context.Background()

	applicant := register(t, svc, "dev@mail.test", "applicant")
	admin, err := svc.CreateAdmin(ctx, &in.CreateAdminRequest{
		Fullname: "Boss", Email: "boss@corp.test", PhoneNumber: "1", Password: "secret1", SecretKey: adminKey,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	file := &in.FileUpload{Filename: "cv.pdf", Content: []byte("pdf")}
	updated, err := svc.UpdateProfile(ctx, domain.Actor{UserID: applicant.ID, Role: applicant.Role}, &in.UpdateProfileRequest{File: file})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Profile.ResumeURL != "https://blobs.test/cv.pdf" {
		t.Errorf("applicant upload should land in resume, got %q", updated.Profile.ResumeURL)
	}
	if updated.Profile.ResumeOriginalName != "cv.pdf" {
		t.Errorf("original name not kept: %q", updated.Profile.ResumeOriginalName)
	}
	if updated.Profile.ProfilePhotoURL != "" {
		t.Error("applicant upload must not set the profile photo")
	}

	photo := &in.FileUpload{Filename: "me.png", Content: []byte("png")}
	updated, err = svc.UpdateProfile(ctx, domain.Actor{UserID: admin.ID, Role: admin.Role}, &in.UpdateProfileRequest{File: photo})
	if err != nil {
		t.Fatalf("update admin profile: %v", err)
	}
	if updated.Profile.ProfilePhotoURL != "https://blobs.test/me.png" {
		t.Errorf("admin upload should land in profile photo, got %q", updated.Profile.ProfilePhotoURL)
	}
	if updated.Profile.ResumeURL != "" {
		t.Error("admin upload must not set the resume")
	}
}

func TestSavedJobsCleanup(t *testing.T) {
	store, svc, _ := newEnv(t)
	ctx := context.Background()

	applicant := register(t, svc, "dev@mail.test", "applicant")
	actor := domain.Actor{UserID: applicant.ID, Role: applicant.Role}

	for _, id := range []string{"job-1", "job-2"} {
		if err := store.CreateJob(ctx, &domain.Job{ID: id, Title: id}); err != nil {
			t.Fatalf("seed job: %v", err)
		}
		if err := svc.SaveJob(ctx, actor, id); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	// Saving the same job twice is a conflict, not a silent no-op.
	if err := svc.SaveJob(ctx, actor, "job-1"); !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict on duplicate save, got %v", err)
	}
	// Bookmarks are not validated against job existence at save time.
	if err := svc.SaveJob(ctx, actor, "job-ghost"); err != nil {
		t.Fatalf("saving an unknown job id should be accepted: %v", err)
	}
	if err := svc.UnsaveJob(ctx, actor, "job-ghost"); err != nil {
		t.Fatalf("unsave: %v", err)
	}
	if err := svc.UnsaveJob(ctx, actor, "job-ghost"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found unsaving an absent bookmark, got %v", err)
	}
	jobs, err := svc.ListSavedJobs(ctx, actor)
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 saved jobs, got %d", len(jobs))
	}

	// One job disappears behind the user's back.
	if err := store.DeleteJob(ctx, "job-1"); err != nil {
		t.Fatalf("delete job: %v", err)
	}

	result, err := svc.CleanupSavedJobs(ctx, actor)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if result.Removed != 1 {
		t.Errorf("expected 1 removed reference, got %d", result.Removed)
	}
	if len(result.Remaining) != 1 || result.Remaining[0] != "job-2" {
		t.Errorf("expected [job-2] remaining, got %v", result.Remaining)
	}

	// Idempotent: a second run removes nothing.
	result, err = svc.CleanupSavedJobs(ctx, actor)
	if err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
	if result.Removed != 0 {
		t.Errorf("second cleanup must remove nothing, got %d", result.Removed)
	}
}

func TestDeleteUserRequiresAdmin(t *testing.T) {
	_, svc, _ := newEnv(t)
	applicant := register(t, svc, "dev@mail.test", "applicant")

	actor := domain.Actor{UserID: applicant.ID, Role: applicant.Role}
	if _, err := svc.DeleteUser(context.Background(), actor, applicant.ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
}

func TestDeleteAdminAccountForbidden(t *testing.T) {
	_, svc, _ := newEnv(t)
	ctx := context.Background()

	boss, err := svc.CreateAdmin(ctx, &in.CreateAdminRequest{
		Fullname: "Boss", Email: "boss@corp.test", PhoneNumber: "1", Password: "secret1", SecretKey: adminKey,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	admin := domain.Actor{UserID: "adm-other", Role: domain.RoleAdmin}
	if _, err := svc.DeleteUser(ctx, admin, boss.ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden deleting an admin account, got %v", err)
	}
}

func TestListUsersExcludesAdmins(t *testing.T) {
	_, svc, _ := newEnv(t)
	ctx := context.Background()

	register(t, svc, "dev@mail.test", "applicant")
	register(t, svc, "rec@corp.test", "recruiter")
	if _, err := svc.CreateAdmin(ctx, &in.CreateAdminRequest{
		Fullname: "Boss", Email: "boss@corp.test", PhoneNumber: "1", Password: "secret1", SecretKey: adminKey,
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	list, err := svc.ListUsers(ctx, "", "", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected 2 non-admin users, got %d", list.Total)
	}
	for _, u := range list.Users {
		if u.Role == domain.RoleAdmin {
			t.Error("admin accounts must not appear in the listing")
		}
	}

	list, err = svc.ListUsers(ctx, "recruiter", "", 1, 10)
	if err != nil {
		t.Fatalf("list by role: %v", err)
	}
	if list.Total != 1 || list.Users[0].Role != domain.RoleRecruiter {
		t.Errorf("role filter mismatch: total %d", list.Total)
	}

	if _, err := svc.ListUsers(ctx, "admin", "", 1, 10); err == nil {
		t.Error("listing by admin role should be rejected")
	}
}

func TestDeleteRecruiterCascades(t *testing.T) {
	store, svc, _ := newEnv(t)
	ctx := context.Background()
	admin := domain.Actor{UserID: "adm-1", Role: domain.RoleAdmin}

	recruiter := register(t, svc, "rec@corp.test", "recruiter")
	for _, c := range []string{"comp-1", "comp-2"} {
		if err := store.CreateCompany(ctx, &domain.Company{ID: c, Name: c, OwnerUserID: recruiter.ID}); err != nil {
			t.Fatalf("seed company: %v", err)
		}
	}
	jobByCompany := map[string]string{"job-1": "comp-1", "job-2": "comp-1", "job-3": "comp-2"}
	for jobID, compID := range jobByCompany {
		if err := store.CreateJob(ctx, &domain.Job{ID: jobID, Title: jobID, CompanyID: compID, PostedByUserID: recruiter.ID}); err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}
	for i, jobID := range []string{"job-1", "job-1", "job-3"} {
		app := &domain.Application{ID: string(rune('a'+i)) + "-app", JobID: jobID, ApplicantID: "user-" + string(rune('a'+i)), Status: domain.StatusPending}
		if err := store.CreateApplication(ctx, app); err != nil {
			t.Fatalf("seed application: %v", err)
		}
	}

	result, err := svc.DeleteUser(ctx, admin, recruiter.ID)
	if err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if result.Companies != 2 || result.Jobs != 3 || result.Applications != 3 {
		t.Errorf("expected tallies {2 3 3}, got {%d %d %d}", result.Companies, result.Jobs, result.Applications)
	}

	if got, _ := store.GetUser(ctx, recruiter.ID); got != nil {
		t.Error("recruiter should be gone")
	}
	if companies, _ := store.ListCompaniesByOwner(ctx, recruiter.ID); len(companies) != 0 {
		t.Error("companies should be gone")
	}
	for jobID := range jobByCompany {
		if got, _ := store.GetJob(ctx, jobID); got != nil {
			t.Errorf("job %s should be gone", jobID)
		}
	}
}

func TestDeleteApplicantPrunesJobs(t *testing.T) {
	store, svc, _ := newEnv(t)
	ctx := context.Background()
	admin := domain.Actor{UserID: "adm-1", Role: domain.RoleAdmin}

	applicant := register(t, svc, "dev@mail.test", "applicant")
	if err := store.CreateJob(ctx, &domain.Job{ID: "job-1", Title: "Backend"}); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	app := &domain.Application{ID: "a1", JobID: "job-1", ApplicantID: applicant.ID, Status: domain.StatusPending}
	if err := store.CreateApplication(ctx, app); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	if err := store.AppendApplication(ctx, "job-1", app.ID); err != nil {
		t.Fatalf("link application: %v", err)
	}

	result, err := svc.DeleteUser(ctx, admin, applicant.ID)
	if err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if result.Applications != 1 || result.Companies != 0 || result.Jobs != 0 {
		t.Errorf("expected tallies {0 0 1}, got {%d %d %d}", result.Companies, result.Jobs, result.Applications)
	}

	job, _ := store.GetJob(ctx, "job-1")
	if job.ApplicationsCount != 0 {
		t.Errorf("job counter should be pruned to 0, got %d", job.ApplicationsCount)
	}
	if len(job.ApplicationIDs) != 0 {
		t.Errorf("job should not reference deleted applications, got %v", job.ApplicationIDs)
	}
}

func TestDeleteApplicantKeepsDecidedCounters(t *testing.T) {
	store, svc, _ := newEnv(t)
	ctx := context.Background()
	admin := domain.Actor{UserID: "adm-1", Role: domain.RoleAdmin}

	target := register(t, svc, "dev@mail.test", "applicant")
	other := register(t, svc, "other@mail.test", "applicant")
	if err := store.CreateJob(ctx, &domain.Job{ID: "job-1", Title: "Backend"}); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	// The target's application was already accepted, so its counter
	// decrement happened at decision time. The other user's pending
	// application is the only undecided one left.
	apps := []*domain.Application{
		{ID: "a1", JobID: "job-1", ApplicantID: target.ID, Status: domain.StatusAccepted},
		{ID: "a2", JobID: "job-1", ApplicantID: other.ID, Status: domain.StatusPending},
	}
	for _, app := range apps {
		if err := store.CreateApplication(ctx, app); err != nil {
			t.Fatalf("seed application: %v", err)
		}
		if err := store.AppendApplication(ctx, "job-1", app.ID); err != nil {
			t.Fatalf("link application: %v", err)
		}
	}
	if err := store.DecrementApplications(ctx, "job-1"); err != nil {
		t.Fatalf("settle accepted application: %v", err)
	}

	if _, err := svc.DeleteUser(ctx, admin, target.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	job, _ := store.GetJob(ctx, "job-1")
	if job.ApplicationsCount != 1 {
		t.Errorf("pending count for the remaining applicant must survive, got %d", job.ApplicationsCount)
	}
	if len(job.ApplicationIDs) != 1 || job.ApplicationIDs[0] != "a2" {
		t.Errorf("expected only a2 to stay linked, got %v", job.ApplicationIDs)
	}
	if got, _ := store.GetApplication(ctx, "a2"); got == nil {
		t.Error("the other user's application must survive")
	}
}
