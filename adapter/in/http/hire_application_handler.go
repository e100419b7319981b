package http

import (
	"hire_server/core/domain"
	in "hire_server/core/port/in"
	"hire_server/infra/middleware"
	"hire_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles HTTP requests for the application lifecycle
type ApplicationHandler struct {
	service in.ApplicationService
	auth    fiber.Handler
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(service in.ApplicationService, auth fiber.Handler) *ApplicationHandler {
	return &ApplicationHandler{service: service, auth: auth}
}

// Register registers application routes
func (h *ApplicationHandler) Register(router fiber.Router) {
	router.Post("/jobs/:jobID/apply", h.auth, middleware.RequireRole(domain.RoleApplicant), h.Apply)
	router.Get("/jobs/:jobID/applicants", h.auth, middleware.RequireRole(domain.RoleRecruiter, domain.RoleAdmin), h.ListJobApplicants)

	apps := router.Group("/applications", h.auth)
	apps.Get("/my", middleware.RequireRole(domain.RoleApplicant), h.ListMyApplications)
	apps.Delete("/:id", h.Withdraw)
	apps.Patch("/:id/status", middleware.RequireRole(domain.RoleRecruiter, domain.RoleAdmin), h.SetStatus)
}

func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	app, err := h.service.Apply(c.Context(), actor, c.Params("jobID"))
	if err != nil {
		return err
	}
	return response.Created(c, "application submitted", app)
}

func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	if err := h.service.Withdraw(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return response.OKMessage(c, "application withdrawn", nil)
}

func (h *ApplicationHandler) ListMyApplications(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	apps, err := h.service.ListMyApplications(c.Context(), actor)
	if err != nil {
		return err
	}
	return response.OK(c, apps)
}

func (h *ApplicationHandler) ListJobApplicants(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	apps, err := h.service.ListJobApplicants(c.Context(), actor, c.Params("jobID"))
	if err != nil {
		return err
	}
	return response.OK(c, apps)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *ApplicationHandler) SetStatus(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	var req setStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	app, err := h.service.SetStatus(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return response.OKMessage(c, "application status updated", app)
}
