package http

import (
	"hire_server/core/domain"
	in "hire_server/core/port/in"
	"hire_server/infra/middleware"
	"hire_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for accounts
type UserHandler struct {
	service in.UserService
	auth    fiber.Handler
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service in.UserService, auth fiber.Handler) *UserHandler {
	return &UserHandler{service: service, auth: auth}
}

// Register registers account routes
func (h *UserHandler) Register(router fiber.Router) {
	users := router.Group("/users")

	// Public
	users.Post("/register", h.RegisterUser)
	users.Post("/login", h.Login)
	users.Post("/create-admin", h.CreateAdmin)

	// Authenticated
	users.Post("/logout", h.auth, h.Logout)
	users.Get("/me", h.auth, h.Me)
	users.Patch("/profile", h.auth, h.UpdateProfile)

	// Saved jobs
	saved := users.Group("/saved-jobs", h.auth, middleware.RequireRole(domain.RoleApplicant))
	saved.Get("/", h.ListSavedJobs)
	saved.Post("/cleanup", h.CleanupSavedJobs)
	saved.Post("/:jobID", h.SaveJob)
	saved.Delete("/:jobID", h.UnsaveJob)

	// Admin
	admin := router.Group("/admin", h.auth, middleware.RequireRole(domain.RoleAdmin))
	admin.Get("/users", h.ListUsers)
	admin.Delete("/users/:id", h.DeleteUser)
}

func (h *UserHandler) RegisterUser(c *fiber.Ctx) error {
	var req in.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.Register(c.Context(), &req)
	if err != nil {
		return err
	}
	return response.Created(c, "account created", user)
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req in.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.service.Login(c.Context(), &req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, "welcome back "+resp.User.Fullname, resp)
}

func (h *UserHandler) CreateAdmin(c *fiber.Ctx) error {
	var req in.CreateAdminRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	admin, err := h.service.CreateAdmin(c.Context(), &req)
	if err != nil {
		return err
	}
	return response.Created(c, "admin account created", admin)
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.Context(), middleware.TokenFromCtx(c)); err != nil {
		return err
	}
	return response.OKMessage(c, "logged out", nil)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Context(), actor.UserID)
	if err != nil {
		return err
	}
	return response.OK(c, user)
}

// UpdateProfile accepts multipart form data. Text fields are optional;
// the "file" field carries a resume (or a profile photo for admins).
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}

	req := &in.UpdateProfileRequest{}
	if v, ok := formValue(c, "fullname"); ok {
		req.Fullname = &v
	}
	if v, ok := formValue(c, "email"); ok {
		req.Email = &v
	}
	if v, ok := formValue(c, "phone_number"); ok {
		req.PhoneNumber = &v
	}
	if v, ok := formValue(c, "bio"); ok {
		req.Bio = &v
	}
	if v, ok := formValue(c, "skills"); ok {
		req.Skills = splitCommaList(v)
	}
	file, err := formFile(c, "file")
	if err != nil {
		return err
	}
	req.File = file

	user, err := h.service.UpdateProfile(c.Context(), actor, req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, "profile updated", user)
}

func (h *UserHandler) SaveJob(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	if err := h.service.SaveJob(c.Context(), actor, c.Params("jobID")); err != nil {
		return err
	}
	return response.OKMessage(c, "job saved", nil)
}

func (h *UserHandler) UnsaveJob(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	if err := h.service.UnsaveJob(c.Context(), actor, c.Params("jobID")); err != nil {
		return err
	}
	return response.OKMessage(c, "job removed from saved", nil)
}

func (h *UserHandler) ListSavedJobs(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	jobs, err := h.service.ListSavedJobs(c.Context(), actor)
	if err != nil {
		return err
	}
	return response.OK(c, jobs)
}

func (h *UserHandler) CleanupSavedJobs(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	result, err := h.service.CleanupSavedJobs(c.Context(), actor)
	if err != nil {
		return err
	}
	return response.OKMessage(c, "saved jobs cleaned up", result)
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	p := response.GetPagination(c, 20, 100)
	list, err := h.service.ListUsers(c.Context(), c.Query("role"), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		return err
	}
	return response.OKWithMeta(c, list.Users, response.NewMeta(list.Total, p.Page, p.Limit))
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	result, err := h.service.DeleteUser(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OKMessage(c, "account deleted", result)
}
