package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-suite/meridian/internal/inventory"
	"github.com/meridian-suite/meridian/internal/posting"
	"github.com/meridian-suite/meridian/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSalePosting posts one queued sale.
	TaskTypeSalePosting = "posting:sale"
	// TaskTypeAuditRetention prunes expired audit records.
	TaskTypeAuditRetention = "audit:retention"
)

// SalePostingPayload identifies the sale to post.
type SalePostingPayload struct {
	TenantID int64 `json:"tenant_id"`
	SaleID   int64 `json:"sale_id"`
	ActorID  int64 `json:"actor_id"`
}

// NewSalePostingTask constructs an Asynq task for batch sale posting.
func NewSalePostingTask(payload SalePostingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSalePosting, data, asynq.Queue(QueueDefault)), nil
}

// SalePoster is the posting contract the worker invokes.
type SalePoster interface {
	PostSalesInvoice(ctx context.Context, tenantID, saleID int64) error
}

// SalePostingHandler processes TaskTypeSalePosting tasks.
type SalePostingHandler struct {
	service SalePoster
	logger  *slog.Logger
}

// NewSalePostingHandler constructs SalePostingHandler.
func NewSalePostingHandler(service SalePoster, logger *slog.Logger) *SalePostingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalePostingHandler{service: service, logger: logger}
}

// ProcessTask posts the sale. Business rejections are final; only transient
// storage failures are handed back to Asynq for retry.
func (h *SalePostingHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload SalePostingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	ctx = shared.ContextWithActor(ctx, payload.ActorID)

	err := h.service.PostSalesInvoice(ctx, payload.TenantID, payload.SaleID)
	if err == nil {
		return nil
	}

	var stockErr *inventory.InsufficientStockError
	switch {
	case posting.IsTransient(err):
		return err
	case errors.As(err, &stockErr):
		h.logger.Warn("sale posting rejected",
			slog.Int64("sale_id", payload.SaleID),
			slog.String("on_hand", stockErr.OnHand.String()),
			slog.String("requested", stockErr.Requested.String()),
		)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		h.logger.Warn("sale posting rejected", slog.Int64("sale_id", payload.SaleID), slog.Any("error", err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
}

// AuditRetentionPayload carries the retention window.
type AuditRetentionPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditRetentionTask constructs the nightly audit pruning task.
func NewAuditRetentionTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(AuditRetentionPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRetention, data, asynq.Queue(QueueDefault)), nil
}

// AuditRetentionHandler prunes old audit_logs rows.
type AuditRetentionHandler struct {
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewAuditRetentionHandler constructs AuditRetentionHandler.
func NewAuditRetentionHandler(audit *shared.AuditLogger, logger *slog.Logger) *AuditRetentionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditRetentionHandler{audit: audit, logger: logger}
}

// ProcessTask removes audit entries past the retention window.
func (h *AuditRetentionHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload AuditRetentionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Retention <= 0 {
		return asynq.SkipRetry
	}
	if err := h.audit.Cleanup(ctx, payload.Retention); err != nil {
		return err
	}
	h.logger.Info("audit retention pruned", slog.Duration("retention", payload.Retention))
	return nil
}
