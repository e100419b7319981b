package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"hire_server/core/domain"
	"hire_server/core/port/in"
	"hire_server/core/service/servicetest"
	"hire_server/pkg/apperr"
)

type env struct {
	store     *servicetest.MemStore
	svc       in.ApplicationService
	recruiter domain.Actor
	applicant domain.Actor
	admin     domain.Actor
	jobID     string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := servicetest.NewMemStore()
	now := time.Now().UTC()

	recruiter := &domain.User{ID: "rec-1", Email: "rec@corp.test", Role: domain.RoleRecruiter, CreatedAt: now}
	applicant := &domain.User{ID: "app-1", Email: "dev@mail.test", Role: domain.RoleApplicant, CreatedAt: now}
	admin := &domain.User{ID: "adm-1", Email: "admin@corp.test", Role: domain.RoleAdmin, CreatedAt: now}
	for _, u := range []*domain.User{recruiter, applicant, admin} {
		if err := store.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	company := &domain.Company{ID: "comp-1", Name: "Acme", OwnerUserID: recruiter.ID}
	if err := store.CreateCompany(context.Background(), company); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	job := &domain.Job{ID: "job-1", Title: "Backend Engineer", CompanyID: company.ID, PostedByUserID: recruiter.ID, Positions: 2}
	if err := store.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	return &env{
		store:     store,
		svc:       NewService(store, store, store, nil),
		recruiter: domain.Actor{UserID: recruiter.ID, Role: domain.RoleRecruiter},
		applicant: domain.Actor{UserID: applicant.ID, Role: domain.RoleApplicant},
		admin:     domain.Actor{UserID: admin.ID, Role: domain.RoleAdmin},
		jobID:     job.ID,
	}
}

func (e *env) addApplicant(t *testing.T, id string) domain.Actor {
	t.Helper()
	u := &domain.User{ID: id, Email: id + "@mail.test", Role: domain.RoleApplicant}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return domain.Actor{UserID: id, Role: domain.RoleApplicant}
}

func TestApplyLinksApplicationToJob(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	app, err := e.svc.Apply(ctx, e.applicant, e.jobID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.Status != domain.StatusPending {
		t.Errorf("expected pending status, got %s", app.Status)
	}

	job, _ := e.store.GetJob(ctx, e.jobID)
	if job.ApplicationsCount != 1 {
		t.Errorf("expected count 1, got %d", job.ApplicationsCount)
	}
	if len(job.ApplicationIDs) != 1 || job.ApplicationIDs[0] != app.ID {
		t.Errorf("expected job to reference application %s, got %v", app.ID, job.ApplicationIDs)
	}
}

func TestApplyTwiceConflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.Apply(ctx, e.applicant, e.jobID); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	_, err := e.svc.Apply(ctx, e.applicant, e.jobID)
	if !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	job, _ := e.store.GetJob(ctx, e.jobID)
	if job.ApplicationsCount != 1 {
		t.Errorf("duplicate apply must not bump counter, got %d", job.ApplicationsCount)
	}
}

func TestApplyUnknownJob(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Apply(context.Background(), e.applicant, "nope")
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplyMissingJobID(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Apply(context.Background(), e.applicant, "")
	if !apperr.IsCode(err, apperr.CodeMissingField) {
		t.Fatalf("expected missing field, got %v", err)
	}
	if apperr.GetHTTPStatus(err) != 400 {
		t.Errorf("expected 400, got %d", apperr.GetHTTPStatus(err))
	}
}

func TestWithdrawUnlinksApplication(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	app, err := e.svc.Apply(ctx, e.applicant, e.jobID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := e.svc.Withdraw(ctx, e.applicant, app.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	if got, _ := e.store.GetApplication(ctx, app.ID); got != nil {
		t.Error("application should be deleted after withdraw")
	}
	job, _ := e.store.GetJob(ctx, e.jobID)
	if job.ApplicationsCount != 0 {
		t.Errorf("expected count 0 after withdraw, got %d", job.ApplicationsCount)
	}
	if len(job.ApplicationIDs) != 0 {
		t.Errorf("expected no application refs, got %v", job.ApplicationIDs)
	}
}

func TestWithdrawDecidedApplication(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	app, _ := e.svc.Apply(ctx, e.applicant, e.jobID)
	if _, err := e.svc.SetStatus(ctx, e.recruiter, app.ID, "accepted"); err != nil {
		t.Fatalf("set status: %v", err)
	}

	err := e.svc.Withdraw(ctx, e.applicant, app.ID)
	if !apperr.IsCode(err, apperr.CodeInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if got, _ := e.store.GetApplication(ctx, app.ID); got == nil {
		t.Error("decided application must survive a withdraw attempt")
	}
}

func TestWithdrawOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	other := e.addApplicant(t, "app-2")

	app, _ := e.svc.Apply(ctx, e.applicant, e.jobID)

	if err := e.svc.Withdraw(ctx, other, app.ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if err := e.svc.Withdraw(ctx, e.admin, app.ID); err != nil {
		t.Fatalf("admin should bypass ownership, got %v", err)
	}
}

func TestSetStatusCounter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	second := e.addApplicant(t, "app-2")

	first, _ := e.svc.Apply(ctx, e.applicant, e.jobID)
	if _, err := e.svc.Apply(ctx, second, e.jobID); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	count := func() int {
		job, _ := e.store.GetJob(ctx, e.jobID)
		return job.ApplicationsCount
	}
	if count() != 2 {
		t.Fatalf("expected count 2, got %d", count())
	}

	// First decision decrements.
	if _, err := e.svc.SetStatus(ctx, e.recruiter, first.ID, "accepted"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if count() != 1 {
		t.Errorf("expected count 1 after accept, got %d", count())
	}

	// Same status again is a no-op.
	if _, err := e.svc.SetStatus(ctx, e.recruiter, first.ID, "accepted"); err != nil {
		t.Fatalf("re-accept: %v", err)
	}
	if count() != 1 {
		t.Errorf("re-accepting must not decrement again, got %d", count())
	}

	// Terminal to terminal keeps the counter.
	if _, err := e.svc.SetStatus(ctx, e.recruiter, first.ID, "rejected"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if count() != 1 {
		t.Errorf("accepted to rejected must keep counter, got %d", count())
	}

	// Reopening restores the counter.
	if _, err := e.svc.SetStatus(ctx, e.recruiter, first.ID, "pending"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if count() != 2 {
		t.Errorf("reopening must increment, got %d", count())
	}
}

func TestSetStatusMixedCase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	app, _ := e.svc.Apply(ctx, e.applicant, e.jobID)

	// Status input is case-insensitive and stored lower case.
	updated, err := e.svc.SetStatus(ctx, e.recruiter, app.ID, "Accepted")
	if err != nil {
		t.Fatalf("mixed-case accept: %v", err)
	}
	if updated.Status != domain.StatusAccepted {
		t.Errorf("expected %q, got %q", domain.StatusAccepted, updated.Status)
	}
	stored, _ := e.store.GetApplication(ctx, app.ID)
	if stored.Status != domain.StatusAccepted {
		t.Errorf("stored status not normalized: %q", stored.Status)
	}
	job, _ := e.store.GetJob(ctx, e.jobID)
	if job.ApplicationsCount != 0 {
		t.Errorf("expected counter 0 after the decision, got %d", job.ApplicationsCount)
	}
}

type unlinkFailJobs struct {
	*servicetest.MemStore
}

func (s *unlinkFailJobs) RemoveApplication(ctx context.Context, jobID, applicationID string) error {
	return apperr.DatabaseError("remove application", errors.New("connection reset"))
}

func TestWithdrawKeepsRecordWhenUnlinkFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	app, _ := e.svc.Apply(ctx, e.applicant, e.jobID)

	svc := NewService(e.store, &unlinkFailJobs{e.store}, e.store, nil)
	if err := svc.Withdraw(ctx, e.applicant, app.ID); err == nil {
		t.Fatal("expected unlink failure to surface")
	}

	// The job update runs first, so a failure there must leave the
	// record in place with the job still referencing it.
	if got, _ := e.store.GetApplication(ctx, app.ID); got == nil {
		t.Error("application must survive a failed unlink")
	}
	job, _ := e.store.GetJob(ctx, e.jobID)
	if len(job.ApplicationIDs) != 1 || job.ApplicationIDs[0] != app.ID {
		t.Errorf("expected job to keep the reference, got %v", job.ApplicationIDs)
	}
}

func TestSetStatusOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	app, _ := e.svc.Apply(ctx, e.applicant, e.jobID)

	if _, err := e.svc.SetStatus(ctx, e.applicant, app.ID, "accepted"); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for applicant, got %v", err)
	}
	if _, err := e.svc.SetStatus(ctx, e.admin, app.ID, "accepted"); err != nil {
		t.Fatalf("admin should bypass ownership, got %v", err)
	}
}

func TestSetStatusValidation(t *testing.T) {
	e := newEnv(t)
	app, _ := e.svc.Apply(context.Background(), e.applicant, e.jobID)

	_, err := e.svc.SetStatus(context.Background(), e.recruiter, app.ID, "maybe")
	if !apperr.IsCode(err, apperr.CodeValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListMyApplicationsJoinsJobs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	app, _ := e.svc.Apply(ctx, e.applicant, e.jobID)

	list, err := e.svc.ListMyApplications(ctx, e.applicant)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 application, got %d", len(list))
	}
	if list[0].Application.ID != app.ID {
		t.Errorf("unexpected application %s", list[0].Application.ID)
	}
	if list[0].Job == nil || list[0].Job.ID != e.jobID {
		t.Error("expected joined job")
	}
}

func TestListMyApplicationsNewestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, jobID := range []string{"job-a", "job-b", "job-c"} {
		if err := e.store.CreateJob(ctx, &domain.Job{ID: jobID, Title: jobID, CompanyID: "comp-1", PostedByUserID: e.recruiter.UserID, Positions: 1}); err != nil {
			t.Fatalf("seed job: %v", err)
		}
		app := &domain.Application{
			ID:          "appl-" + jobID,
			JobID:       jobID,
			ApplicantID: e.applicant.UserID,
			Status:      domain.StatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := e.store.CreateApplication(ctx, app); err != nil {
			t.Fatalf("seed application: %v", err)
		}
	}

	list, err := e.svc.ListMyApplications(ctx, e.applicant)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"appl-job-c", "appl-job-b", "appl-job-a"}
	if len(list) != len(want) {
		t.Fatalf("expected %d applications, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].Application.ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, list[i].Application.ID)
		}
	}
}

func TestListJobApplicantsNewestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"app-a", "app-b", "app-c"} {
		e.addApplicant(t, id)
		app := &domain.Application{
			ID:          "appl-" + id,
			JobID:       e.jobID,
			ApplicantID: id,
			Status:      domain.StatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := e.store.CreateApplication(ctx, app); err != nil {
			t.Fatalf("seed application: %v", err)
		}
	}

	list, err := e.svc.ListJobApplicants(ctx, e.recruiter, e.jobID)
	if err != nil {
		t.Fatalf("list applicants: %v", err)
	}
	want := []string{"app-c", "app-b", "app-a"}
	if len(list) != len(want) {
		t.Fatalf("expected %d applicants, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].Application.ApplicantID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, list[i].Application.ApplicantID)
		}
	}
}

func TestListJobApplicants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.Apply(ctx, e.applicant, e.jobID); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := e.svc.ListJobApplicants(ctx, e.applicant, e.jobID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for non-poster, got %v", err)
	}

	list, err := e.svc.ListJobApplicants(ctx, e.recruiter, e.jobID)
	if err != nil {
		t.Fatalf("list applicants: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 applicant, got %d", len(list))
	}
	if list[0].Applicant == nil || list[0].Applicant.ID != e.applicant.UserID {
		t.Error("expected joined applicant profile")
	}
}
