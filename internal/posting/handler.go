package posting

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-suite/meridian/internal/inventory"
	"github.com/meridian-suite/meridian/internal/platform/httpx"
	"github.com/meridian-suite/meridian/internal/shared"
)

// PostingService is the business contract the handler invokes.
type PostingService interface {
	PostSalesInvoice(ctx context.Context, tenantID, saleID int64) error
}

// Handler exposes the posting trigger over HTTP.
type Handler struct {
	logger        *slog.Logger
	service       PostingService
	retryAttempts int
	retryDelay    time.Duration
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service PostingService, retryAttempts int, retryDelay time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &Handler{logger: logger, service: service, retryAttempts: retryAttempts, retryDelay: retryDelay}
}

// MountRoutes registers posting endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Post("/sales/{saleID}/post", h.handlePostSale)
}

func (h *Handler) handlePostSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := shared.TenantFromContext(ctx)
	if tenantID == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "X-Tenant-ID header is required")
		return
	}
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil || saleID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Sale", "sale id must be a positive integer")
		return
	}

	err = Retry(ctx, h.retryAttempts, h.retryDelay, func(ctx context.Context) error {
		return h.service.PostSalesInvoice(ctx, tenantID, saleID)
	})
	if err != nil {
		h.respondError(w, r, saleID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, saleID int64, err error) {
	var stockErr *inventory.InsufficientStockError
	switch {
	case errors.Is(err, ErrSaleNotFound):
		httpx.Problem(w, http.StatusNotFound, "Sale Not Found", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, ErrConfigurationIncomplete):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Configuration Incomplete", err.Error())
	case errors.Is(err, ErrEmptyDocument):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Empty Document", err.Error())
	case errors.As(err, &stockErr):
		httpx.JSON(w, http.StatusConflict, map[string]any{
			"title":      "Insufficient Stock",
			"status":     http.StatusConflict,
			"detail":     stockErr.Error(),
			"product_id": stockErr.ProductID,
			"on_hand":    stockErr.OnHand.String(),
			"requested":  stockErr.Requested.String(),
		})
	case IsTransient(err):
		httpx.Problem(w, http.StatusServiceUnavailable, "Temporarily Unavailable", "storage failure, retry later")
	default:
		h.logger.Error("post sale failed", slog.Int64("sale_id", saleID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
