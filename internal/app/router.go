package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-suite/meridian/internal/inventory"
	"github.com/meridian-suite/meridian/internal/platform/httpx"
	"github.com/meridian-suite/meridian/internal/posting"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	PostingHandler   *posting.Handler
	InventoryHandler *inventory.Handler
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	params.PostingHandler.MountRoutes(r)
	params.InventoryHandler.MountRoutes(r)

	return r
}
