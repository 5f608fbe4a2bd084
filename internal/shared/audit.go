package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	TenantID int64
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditLogger writes records into audit_logs. It runs on the pool, never
// inside a posting transaction: a failed audit write must not affect the
// outcome of the primary operation.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	var at any
	if !log.At.IsZero() {
		at = log.At
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (tenant_id, actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`,
		log.TenantID, log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, at)
	return err
}

// Cleanup removes audit entries older than the retention window.
func (l *AuditLogger) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if l == nil {
		return nil
	}
	cutoff := time.Now().Add(-olderThan)
	_, err := l.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	return err
}
