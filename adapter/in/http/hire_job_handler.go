package http

import (
	"hire_server/core/domain"
	in "hire_server/core/port/in"
	"hire_server/infra/middleware"
	"hire_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// JobHandler handles HTTP requests for job postings
type JobHandler struct {
	service in.JobService
	auth    fiber.Handler
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(service in.JobService, auth fiber.Handler) *JobHandler {
	return &JobHandler{service: service, auth: auth}
}

// Register registers job routes. Browsing is public, everything else
// needs a recruiter (or admin for deletes).
func (h *JobHandler) Register(router fiber.Router) {
	jobs := router.Group("/jobs")

	jobs.Get("/", h.ListJobs)
	jobs.Post("/", h.auth, middleware.RequireRole(domain.RoleRecruiter), h.PostJob)
	jobs.Get("/my", h.auth, middleware.RequireRole(domain.RoleRecruiter), h.ListMyJobs)
	jobs.Get("/:id", h.GetJob)
	jobs.Patch("/:id", h.auth, middleware.RequireRole(domain.RoleRecruiter, domain.RoleAdmin), h.UpdateJob)
	jobs.Delete("/:id", h.auth, middleware.RequireRole(domain.RoleRecruiter, domain.RoleAdmin), h.DeleteJob)

	admin := router.Group("/admin", h.auth, middleware.RequireRole(domain.RoleAdmin))
	admin.Get("/jobs", h.ListJobs)
}

func (h *JobHandler) PostJob(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	var req in.PostJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	job, err := h.service.PostJob(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Created(c, "job posted", job)
}

func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.service.GetJob(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, job)
}

func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	p := response.GetPagination(c, 20, 100)
	query := &in.JobListQuery{
		Keyword:   c.Query("keyword"),
		Location:  c.Query("location"),
		Title:     c.Query("title"),
		CompanyID: c.Query("company_id"),
	}
	list, err := h.service.ListJobs(c.Context(), query, p.Page, p.Limit)
	if err != nil {
		return err
	}
	return response.OKWithMeta(c, list.Jobs, response.NewMeta(list.Total, p.Page, p.Limit))
}

func (h *JobHandler) ListMyJobs(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	jobs, err := h.service.ListMyJobs(c.Context(), actor)
	if err != nil {
		return err
	}
	return response.OK(c, jobs)
}

func (h *JobHandler) UpdateJob(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	var req in.UpdateJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	job, err := h.service.UpdateJob(c.Context(), actor, c.Params("id"), &req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, "job updated", job)
}

func (h *JobHandler) DeleteJob(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	result, err := h.service.DeleteJob(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OKMessage(c, "job deleted", result)
}
