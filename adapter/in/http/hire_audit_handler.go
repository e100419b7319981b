package http

import (
	"hire_server/core/domain"
	out "hire_server/core/port/out"
	"hire_server/infra/middleware"
	"hire_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuditHandler exposes the audit trail to admins.
type AuditHandler struct {
	repo out.AuditRepository
	auth fiber.Handler
}

func NewAuditHandler(repo out.AuditRepository, auth fiber.Handler) *AuditHandler {
	return &AuditHandler{repo: repo, auth: auth}
}

func (h *AuditHandler) Register(router fiber.Router) {
	admin := router.Group("/admin", h.auth, middleware.RequireRole(domain.RoleAdmin))
	admin.Get("/audit", h.ListAudit)
}

// ListAudit returns recent events, optionally narrowed to one entity via
// ?entity_type=job&entity_id=....
func (h *AuditHandler) ListAudit(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")

	var (
		events []*domain.AuditEvent
		err    error
	)
	if entityType != "" && entityID != "" {
		events, err = h.repo.ListByEntity(c.Context(), entityType, entityID, limit)
	} else {
		events, err = h.repo.ListRecent(c.Context(), limit)
	}
	if err != nil {
		return err
	}
	return response.OK(c, events)
}
