package out

import (
	"context"

	"hire_server/core/domain"
)

// AuditRepository appends to and reads the append-only audit log.
type AuditRepository interface {
	Append(ctx context.Context, event *domain.AuditEvent) error
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditEvent, error)
	ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*domain.AuditEvent, error)
}
