// Package persistence provides the PostgreSQL adapter for the
// append-only audit log.
package persistence

import (
	"context"
	"fmt"
	"time"

	"hire_server/core/domain"

	"github.com/jmoiron/sqlx"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          BIGSERIAL PRIMARY KEY,
	actor_id    TEXT NOT NULL,
	actor_role  TEXT NOT NULL,
	action      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_audit_events_entity ON audit_events (entity_type, entity_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_audit_events_created ON audit_events (created_at DESC);
`

// AuditAdapter implements out.AuditRepository using PostgreSQL.
type AuditAdapter struct {
	db *sqlx.DB
}

// NewAuditAdapter creates a new AuditAdapter.
func NewAuditAdapter(db *sqlx.DB) *AuditAdapter {
	return &AuditAdapter{db: db}
}

// EnsureSchema creates the audit table and its indexes.
func (a *AuditAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// auditRow represents the database row for audit events.
type auditRow struct {
	ID         int64     `db:"id"`
	ActorID    string    `db:"actor_id"`
	ActorRole  string    `db:"actor_role"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Detail     string    `db:"detail"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *auditRow) toEntity() *domain.AuditEvent {
	return &domain.AuditEvent{
		ID:         r.ID,
		ActorID:    r.ActorID,
		ActorRole:  r.ActorRole,
		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Detail:     r.Detail,
		CreatedAt:  r.CreatedAt,
	}
}

// Append inserts one audit event. The log is append only; there is no
// update or delete path.
func (a *AuditAdapter) Append(ctx context.Context, event *domain.AuditEvent) error {
	query := `
		INSERT INTO audit_events (actor_id, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	err := a.db.QueryRowContext(ctx, query,
		event.ActorID, event.ActorRole, event.Action,
		event.EntityType, event.EntityID, event.Detail, createdAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// ListRecent returns the newest events first.
func (a *AuditAdapter) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []auditRow
	query := `SELECT * FROM audit_events ORDER BY created_at DESC, id DESC LIMIT $1`
	if err := a.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return toEntities(rows), nil
}

// ListByEntity returns the newest events for one entity first.
func (a *AuditAdapter) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []auditRow
	query := `
		SELECT * FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`
	if err := a.db.SelectContext(ctx, &rows, query, entityType, entityID, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return toEntities(rows), nil
}

func toEntities(rows []auditRow) []*domain.AuditEvent {
	events := make([]*domain.AuditEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toEntity())
	}
	return events
}
