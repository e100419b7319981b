package job

import (
	"context"
	"testing"
	"time"

	"hire_server/core/domain"
	"hire_server/core/port/in"
	"hire_server/core/service/servicetest"
	"hire_server/pkg/apperr"
)

func newEnv(t *testing.T) (*servicetest.MemStore, *servicetest.MemListingCache, in.JobService, domain.Actor) {
	t.Helper()
	store := servicetest.NewMemStore()
	cache := servicetest.NewMemListingCache()
	ctx := context.Background()

	recruiter := &domain.User{ID: "rec-1", Email: "rec@corp.test", Role: domain.RoleRecruiter}
	if err := store.CreateUser(ctx, recruiter); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := store.CreateCompany(ctx, &domain.Company{ID: "comp-1", Name: "Acme", OwnerUserID: recruiter.ID}); err != nil {
		t.Fatalf("seed company: %v", err)
	}

	svc := NewService(store, store, store, cache, 0, nil)
	return store, cache, svc, domain.Actor{UserID: recruiter.ID, Role: domain.RoleRecruiter}
}

func postReq(title, desc string) *in.PostJobRequest {
	return &in.PostJobRequest{
		Title:       title,
		Description: desc,
		CompanyID:   "comp-1",
		Salary:      90000,
		Positions:   1,
	}
}

func TestPostJobOwnership(t *testing.T) {
	_, _, svc, recruiter := newEnv(t)
	ctx := context.Background()

	if _, err := svc.PostJob(ctx, recruiter, postReq("Backend Engineer", "APIs")); err != nil {
		t.Fatalf("owner post: %v", err)
	}

	other := domain.Actor{UserID: "rec-2", Role: domain.RoleRecruiter}
	if _, err := svc.PostJob(ctx, other, postReq("Intruder", "nope")); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	admin := domain.Actor{UserID: "adm-1", Role: domain.RoleAdmin}
	if _, err := svc.PostJob(ctx, admin, postReq("Admin Posted", "ok")); err != nil {
		t.Fatalf("admin should bypass ownership, got %v", err)
	}
}

func TestPostJobValidation(t *testing.T) {
	_, _, svc, recruiter := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *in.PostJobRequest
	}{
		{"missing title", &in.PostJobRequest{Description: "d", CompanyID: "comp-1", Positions: 1}},
		{"missing description", &in.PostJobRequest{Title: "t", CompanyID: "comp-1", Positions: 1}},
		{"missing company", &in.PostJobRequest{Title: "t", Description: "d", Positions: 1}},
		{"zero positions", &in.PostJobRequest{Title: "t", Description: "d", CompanyID: "comp-1"}},
		{"negative salary", &in.PostJobRequest{Title: "t", Description: "d", CompanyID: "comp-1", Positions: 1, Salary: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.PostJob(ctx, recruiter, tc.req); err == nil {
				t.Error("expected validation error")
			} else if apperr.GetHTTPStatus(err) != 400 {
				t.Errorf("expected 400, got %d (%v)", apperr.GetHTTPStatus(err), err)
			}
		})
	}

	if _, err := svc.PostJob(ctx, recruiter, &in.PostJobRequest{Title: "t", Description: "d", CompanyID: "missing", Positions: 1}); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Errorf("expected not found for unknown company, got %v", err)
	}
}

func TestPostJobSplitsRequirements(t *testing.T) {
	_, _, svc, recruiter := newEnv(t)

	req := postReq("Backend Engineer", "APIs")
	req.Requirements = " Go , SQL ,, Docker "
	job, err := svc.PostJob(context.Background(), recruiter, req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	want := []string{"Go", "SQL", "Docker"}
	if len(job.Requirements) != len(want) {
		t.Fatalf("expected %v, got %v", want, job.Requirements)
	}
	for i := range want {
		if job.Requirements[i] != want[i] {
			t.Errorf("requirement %d: expected %q, got %q", i, want[i], job.Requirements[i])
		}
	}
}

func TestListJobsWholeWordKeyword(t *testing.T) {
	_, _, svc, recruiter := newEnv(t)
	ctx := context.Background()

	if _, err := svc.PostJob(ctx, recruiter, postReq("Go Developer", "Build services")); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := svc.PostJob(ctx, recruiter, postReq("Golang Engineer", "Build things")); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := svc.PostJob(ctx, recruiter, postReq("Data Analyst", "SQL and go tooling")); err != nil {
		t.Fatalf("post: %v", err)
	}

	// Whole-word match: "Go" must not match inside "Golang", and the
	// search is case-insensitive over title and description.
	resp, err := svc.ListJobs(ctx, &in.JobListQuery{Keyword: "go"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 2 {
		titles := make([]string, 0, len(resp.Jobs))
		for _, j := range resp.Jobs {
			titles = append(titles, j.Title)
		}
		t.Fatalf("expected 2 matches, got %d: %v", resp.Total, titles)
	}
	for _, j := range resp.Jobs {
		if j.Title == "Golang Engineer" {
			t.Error("keyword 'go' must not match 'Golang'")
		}
	}
}

func TestListJobsFieldFilters(t *testing.T) {
	_, _, svc, recruiter := newEnv(t)
	ctx := context.Background()

	berlin := postReq("Backend Engineer", "APIs")
	berlin.Location = "Berlin"
	if _, err := svc.PostJob(ctx, recruiter, berlin); err != nil {
		t.Fatalf("post: %v", err)
	}
	remote := postReq("Frontend Engineer", "UIs")
	remote.Location = "Remote"
	if _, err := svc.PostJob(ctx, recruiter, remote); err != nil {
		t.Fatalf("post: %v", err)
	}

	resp, err := svc.ListJobs(ctx, &in.JobListQuery{Location: "berl"}, 1, 10)
	if err != nil {
		t.Fatalf("list by location: %v", err)
	}
	if resp.Total != 1 || resp.Jobs[0].Location != "Berlin" {
		t.Errorf("location filter: expected the Berlin job, got total %d", resp.Total)
	}

	resp, err = svc.ListJobs(ctx, &in.JobListQuery{Title: "front"}, 1, 10)
	if err != nil {
		t.Fatalf("list by title: %v", err)
	}
	if resp.Total != 1 || resp.Jobs[0].Title != "Frontend Engineer" {
		t.Errorf("title filter: expected the frontend job, got total %d", resp.Total)
	}

	resp, err = svc.ListJobs(ctx, &in.JobListQuery{CompanyID: "comp-1"}, 1, 10)
	if err != nil {
		t.Fatalf("list by company: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("company filter: expected both jobs, got total %d", resp.Total)
	}
	if resp, _ = svc.ListJobs(ctx, &in.JobListQuery{CompanyID: "comp-2"}, 1, 10); resp.Total != 0 {
		t.Errorf("unknown company should match nothing, got %d", resp.Total)
	}
}

func TestListJobsNewestFirst(t *testing.T) {
	store, _, svc, _ := newEnv(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"job-a", "job-b", "job-c"} {
		j := &domain.Job{
			ID:             id,
			Title:          id,
			CompanyID:      "comp-1",
			PostedByUserID: "rec-1",
			Positions:      1,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateJob(ctx, j); err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}

	resp, err := svc.ListJobs(ctx, nil, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"job-c", "job-b", "job-a"}
	if len(resp.Jobs) != len(want) {
		t.Fatalf("expected %d jobs, got %d", len(want), len(resp.Jobs))
	}
	for i, id := range want {
		if resp.Jobs[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, resp.Jobs[i].ID)
		}
	}
}

func TestListJobsCaching(t *testing.T) {
	_, cache, svc, recruiter := newEnv(t)
	ctx := context.Background()

	if _, err := svc.PostJob(ctx, recruiter, postReq("Backend Engineer", "APIs")); err != nil {
		t.Fatalf("post: %v", err)
	}

	if _, err := svc.ListJobs(ctx, nil, 1, 10); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if cache.Sets != 1 {
		t.Fatalf("expected 1 cache fill, got %d", cache.Sets)
	}

	resp, err := svc.ListJobs(ctx, nil, 1, 10)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if cache.Hits != 1 {
		t.Errorf("expected cache hit on repeat query, got %d hits", cache.Hits)
	}
	if resp.Total != 1 {
		t.Errorf("cached listing total mismatch: %d", resp.Total)
	}

	// Posting invalidates through the version bump: the next read misses.
	if _, err := svc.PostJob(ctx, recruiter, postReq("Second Role", "More APIs")); err != nil {
		t.Fatalf("post: %v", err)
	}
	resp, err = svc.ListJobs(ctx, nil, 1, 10)
	if err != nil {
		t.Fatalf("third list: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected fresh listing after post, got total %d", resp.Total)
	}
	if cache.Sets != 2 {
		t.Errorf("expected second cache fill after invalidation, got %d", cache.Sets)
	}
}

func TestUpdateJobOwnership(t *testing.T) {
	_, _, svc, recruiter := newEnv(t)
	ctx := context.Background()

	job, _ := svc.PostJob(ctx, recruiter, postReq("Backend Engineer", "APIs"))

	title := "Senior Backend Engineer"
	other := domain.Actor{UserID: "rec-2", Role: domain.RoleRecruiter}
	if _, err := svc.UpdateJob(ctx, other, job.ID, &in.UpdateJobRequest{Title: &title}); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := svc.UpdateJob(ctx, recruiter, job.ID, &in.UpdateJobRequest{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Errorf("expected title %q, got %q", title, updated.Title)
	}
}

func TestDeleteJobCascadesApplications(t *testing.T) {
	store, _, svc, recruiter := newEnv(t)
	ctx := context.Background()

	job, _ := svc.PostJob(ctx, recruiter, postReq("Backend Engineer", "APIs"))
	for _, id := range []string{"a1", "a2"} {
		if err := store.CreateApplication(ctx, &domain.Application{ID: id, JobID: job.ID, ApplicantID: "user-" + id, Status: domain.StatusPending}); err != nil {
			t.Fatalf("seed application: %v", err)
		}
	}

	result, err := svc.DeleteJob(ctx, recruiter, job.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.DeletedApplications != 2 {
		t.Errorf("expected 2 cascaded applications, got %d", result.DeletedApplications)
	}
	if got, _ := store.GetJob(ctx, job.ID); got != nil {
		t.Error("job should be gone")
	}
	if apps, _ := store.ListByJob(ctx, job.ID); len(apps) != 0 {
		t.Errorf("expected no applications left, got %d", len(apps))
	}
}
