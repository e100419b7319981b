// Package common holds helpers shared across services.
package common

import (
	"context"
	"time"

	"hire_server/core/domain"
	"hire_server/core/port/out"
	"hire_server/pkg/logger"
)

// AuditRecorder appends audit events best effort: a failed append is
// logged and never fails the operation it describes.
type AuditRecorder struct {
	repo out.AuditRepository
}

func NewAuditRecorder(repo out.AuditRepository) *AuditRecorder {
	return &AuditRecorder{repo: repo}
}

// Record appends one audit event. Safe to call on a nil recorder or when
// no audit repository is wired.
func (r *AuditRecorder) Record(ctx context.Context, actor domain.Actor, action, entityType, entityID, detail string) {
	if r == nil || r.repo == nil {
		return
	}
	event := &domain.AuditEvent{
		ActorID:    actor.UserID,
		ActorRole:  string(actor.Role),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.repo.Append(ctx, event); err != nil {
		logger.WithError(err).WithField("action", action).Warn("audit append failed")
	}
}
