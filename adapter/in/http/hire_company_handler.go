package http

import (
	"hire_server/core/domain"
	in "hire_server/core/port/in"
	"hire_server/infra/middleware"
	"hire_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CompanyHandler handles HTTP requests for companies
type CompanyHandler struct {
	service in.CompanyService
	auth    fiber.Handler
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(service in.CompanyService, auth fiber.Handler) *CompanyHandler {
	return &CompanyHandler{service: service, auth: auth}
}

// Register registers company routes
func (h *CompanyHandler) Register(router fiber.Router) {
	companies := router.Group("/companies", h.auth)

	companies.Post("/", middleware.RequireRole(domain.RoleRecruiter), h.CreateCompany)
	companies.Get("/my", middleware.RequireRole(domain.RoleRecruiter), h.ListMyCompanies)
	companies.Get("/:id", h.GetCompany)
	companies.Put("/:id", middleware.RequireRole(domain.RoleRecruiter, domain.RoleAdmin), h.UpdateCompany)
	companies.Delete("/:id", middleware.RequireRole(domain.RoleRecruiter, domain.RoleAdmin), h.DeleteCompany)

	admin := router.Group("/admin", h.auth, middleware.RequireRole(domain.RoleAdmin))
	admin.Get("/companies", h.ListCompanies)
}

func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	var req in.CreateCompanyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	company, err := h.service.CreateCompany(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Created(c, "company registered", company)
}

func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	company, err := h.service.GetCompany(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, company)
}

func (h *CompanyHandler) ListMyCompanies(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	companies, err := h.service.ListMyCompanies(c.Context(), actor)
	if err != nil {
		return err
	}
	return response.OK(c, companies)
}

func (h *CompanyHandler) ListCompanies(c *fiber.Ctx) error {
	p := response.GetPagination(c, 20, 100)
	list, err := h.service.ListCompanies(c.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		return err
	}
	return response.OKWithMeta(c, list.Companies, response.NewMeta(list.Total, p.Page, p.Limit))
}

// UpdateCompany accepts multipart form data so a logo can ride along
// with the text fields.
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}

	req := &in.UpdateCompanyRequest{}
	if v, ok := formValue(c, "name"); ok {
		req.Name = &v
	}
	if v, ok := formValue(c, "description"); ok {
		req.Description = &v
	}
	if v, ok := formValue(c, "website"); ok {
		req.Website = &v
	}
	if v, ok := formValue(c, "location"); ok {
		req.Location = &v
	}
	logo, err := formFile(c, "logo")
	if err != nil {
		return err
	}
	req.Logo = logo

	company, err := h.service.UpdateCompany(c.Context(), actor, c.Params("id"), req)
	if err != nil {
		return err
	}
	return response.OKMessage(c, "company updated", company)
}

func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	actor, err := middleware.ActorFromCtx(c)
	if err != nil {
		return err
	}
	result, err := h.service.DeleteCompany(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OKMessage(c, "company deleted", result)
}
