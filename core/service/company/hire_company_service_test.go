package company

import (
	"context"
	"testing"

	"hire_server/core/domain"
	"hire_server/core/port/in"
	"hire_server/core/service/servicetest"
	"hire_server/pkg/apperr"
)

func newEnv(t *testing.T) (*servicetest.MemStore, in.CompanyService, domain.Actor) {
	t.Helper()
	store := servicetest.NewMemStore()
	if err := store.CreateUser(context.Background(), &domain.User{ID: "rec-1", Email: "rec@corp.test", Role: domain.RoleRecruiter}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc := NewService(store, store, store, &servicetest.MemBlob{}, servicetest.NewMemListingCache(), nil)
	return store, svc, domain.Actor{UserID: "rec-1", Role: domain.RoleRecruiter}
}

func TestCreateCompanyUniqueName(t *testing.T) {
	_, svc, recruiter := newEnv(t)
	ctx := context.Background()

	company, err := svc.CreateCompany(ctx, recruiter, &in.CreateCompanyRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if company.OwnerUserID != recruiter.UserID {
		t.Errorf("expected owner %s, got %s", recruiter.UserID, company.OwnerUserID)
	}

	other := domain.Actor{UserID: "rec-2", Role: domain.RoleRecruiter}
	if _, err := svc.CreateCompany(ctx, other, &in.CreateCompanyRequest{Name: "Acme"}); !apperr.IsCode(err, apperr.CodeAlreadyExists) {
		t.Fatalf("expected duplicate name rejection, got %v", err)
	}

	if _, err := svc.CreateCompany(ctx, recruiter, &in.CreateCompanyRequest{Name: "  "}); apperr.GetHTTPStatus(err) != 400 {
		t.Errorf("expected 400 for blank name, got %v", err)
	}
}

func TestUpdateCompanyOwnershipAndLogo(t *testing.T) {
	_, svc, recruiter := newEnv(t)
	ctx := context.Background()

	company, _ := svc.CreateCompany(ctx, recruiter, &in.CreateCompanyRequest{Name: "Acme"})

	desc := "We make everything"
	other := domain.Actor{UserID: "rec-2", Role: domain.RoleRecruiter}
	if _, err := svc.UpdateCompany(ctx, other, company.ID, &in.UpdateCompanyRequest{Description: &desc}); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := svc.UpdateCompany(ctx, recruiter, company.ID, &in.UpdateCompanyRequest{
		Description: &desc,
		Logo:        &in.FileUpload{Filename: "logo.png", Content: []byte{1, 2, 3}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != desc {
		t.Errorf("description not applied: %q", updated.Description)
	}
	if updated.LogoURL != "https://blobs.test/logo.png" {
		t.Errorf("unexpected logo url %q", updated.LogoURL)
	}

	admin := domain.Actor{UserID: "adm-1", Role: domain.RoleAdmin}
	if _, err := svc.UpdateCompany(ctx, admin, company.ID, &in.UpdateCompanyRequest{Description: &desc}); err != nil {
		t.Fatalf("admin should bypass ownership, got %v", err)
	}
}

func TestUpdateCompanyRenameCollision(t *testing.T) {
	_, svc, recruiter := newEnv(t)
	ctx := context.Background()

	a, _ := svc.CreateCompany(ctx, recruiter, &in.CreateCompanyRequest{Name: "Acme"})
	if _, err := svc.CreateCompany(ctx, recruiter, &in.CreateCompanyRequest{Name: "Globex"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Globex"
	if _, err := svc.UpdateCompany(ctx, recruiter, a.ID, &in.UpdateCompanyRequest{Name: &name}); !apperr.IsCode(err, apperr.CodeAlreadyExists) {
		t.Fatalf("expected duplicate name rejection, got %v", err)
	}

	// Renaming to the current name is a no-op, not a collision.
	same := "Acme"
	if _, err := svc.UpdateCompany(ctx, recruiter, a.ID, &in.UpdateCompanyRequest{Name: &same}); err != nil {
		t.Fatalf("self-rename: %v", err)
	}
}

func TestDeleteCompanyTransitiveCascade(t *testing.T) {
	store, svc, recruiter := newEnv(t)
	ctx := context.Background()

	company, _ := svc.CreateCompany(ctx, recruiter, &in.CreateCompanyRequest{Name: "Acme"})

	jobs := []string{"job-1", "job-2"}
	for _, id := range jobs {
		if err := store.CreateJob(ctx, &domain.Job{ID: id, Title: id, CompanyID: company.ID, PostedByUserID: recruiter.UserID}); err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}
	apps := []struct{ id, jobID string }{
		{"a1", "job-1"}, {"a2", "job-1"}, {"a3", "job-2"},
	}
	for _, a := range apps {
		if err := store.CreateApplication(ctx, &domain.Application{ID: a.id, JobID: a.jobID, ApplicantID: "user-" + a.id, Status: domain.StatusPending}); err != nil {
			t.Fatalf("seed application: %v", err)
		}
	}

	result, err := svc.DeleteCompany(ctx, recruiter, company.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.DeletedJobs != 2 {
		t.Errorf("expected 2 deleted jobs, got %d", result.DeletedJobs)
	}
	if result.DeletedApplications != 3 {
		t.Errorf("expected 3 deleted applications, got %d", result.DeletedApplications)
	}

	if got, _ := store.GetCompany(ctx, company.ID); got != nil {
		t.Error("company should be gone")
	}
	for _, id := range jobs {
		if got, _ := store.GetJob(ctx, id); got != nil {
			t.Errorf("job %s should be gone", id)
		}
		if left, _ := store.ListByJob(ctx, id); len(left) != 0 {
			t.Errorf("applications of job %s should be gone", id)
		}
	}
}

func TestDeleteCompanyOwnership(t *testing.T) {
	_, svc, recruiter := newEnv(t)
	ctx := context.Background()

	company, _ := svc.CreateCompany(ctx, recruiter, &in.CreateCompanyRequest{Name: "Acme"})

	other := domain.Actor{UserID: "rec-2", Role: domain.RoleRecruiter}
	if _, err := svc.DeleteCompany(ctx, other, company.ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	admin := domain.Actor{UserID: "adm-1", Role: domain.RoleAdmin}
	if _, err := svc.DeleteCompany(ctx, admin, company.ID); err != nil {
		t.Fatalf("admin should bypass ownership, got %v", err)
	}
}
