// Package messaging publishes audit events to a Redis Stream for live
// consumers.
package messaging

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"hire_server/core/domain"
	"hire_server/core/port/out"
	"hire_server/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// StreamAudit is the audit event stream.
const StreamAudit = "audit:events"

// Stream length cap, trimmed approximately on every publish.
const streamMaxLen = 10000

// AuditStream publishes audit events to Redis Streams.
type AuditStream struct {
	client *redis.Client
}

// NewAuditStream creates a new AuditStream.
func NewAuditStream(client *redis.Client) *AuditStream {
	return &AuditStream{client: client}
}

// Publish appends one event to the stream.
func (s *AuditStream) Publish(ctx context.Context, event *domain.AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamAudit,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"event": data},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}
	return nil
}

// AuditFanout is an out.AuditRepository that writes to the durable log
// and then publishes to the stream. Stream failures are logged, never
// surfaced: the Postgres row is the source of truth.
type AuditFanout struct {
	repo   out.AuditRepository
	stream *AuditStream
}

// NewAuditFanout wraps a repository with stream publication.
func NewAuditFanout(repo out.AuditRepository, stream *AuditStream) *AuditFanout {
	return &AuditFanout{repo: repo, stream: stream}
}

func (f *AuditFanout) Append(ctx context.Context, event *domain.AuditEvent) error {
	if err := f.repo.Append(ctx, event); err != nil {
		return err
	}
	if f.stream != nil {
		if err := f.stream.Publish(ctx, event); err != nil {
			logger.WithError(err).WithField("action", event.Action).Warn("audit stream publish failed")
		}
	}
	return nil
}

func (f *AuditFanout) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEvent, error) {
	return f.repo.ListRecent(ctx, limit)
}

func (f *AuditFanout) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*domain.AuditEvent, error) {
	return f.repo.ListByEntity(ctx, entityType, entityID, limit)
}
