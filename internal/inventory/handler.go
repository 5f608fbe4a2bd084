package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-suite/meridian/internal/platform/httpx"
	"github.com/meridian-suite/meridian/internal/shared"
)

// Handler serves advisory inventory reads.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers inventory endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/inventory/{productID}/on-hand", h.handleOnHand)
}

func (h *Handler) handleOnHand(w http.ResponseWriter, r *http.Request) {
	tenantID := shared.TenantFromContext(r.Context())
	if tenantID == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "X-Tenant-ID header is required")
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Product", "product id must be a positive integer")
		return
	}
	qty, err := h.repo.OnHand(r.Context(), tenantID, productID)
	if err != nil {
		h.logger.Error("on hand lookup failed", slog.Int64("product_id", productID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"on_hand":    qty.String(),
	})
}
