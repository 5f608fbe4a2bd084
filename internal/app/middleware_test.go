package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-suite/meridian/internal/shared"
)

func TestTenantMiddleware(t *testing.T) {
	var gotTenant, gotActor int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = shared.TenantFromContext(r.Context())
		gotActor = shared.ActorFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-ID", "42")
	req.Header.Set("X-Actor-ID", "7")
	TenantMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, int64(42), gotTenant)
	require.Equal(t, int64(7), gotActor)
}

func TestTenantMiddlewareIgnoresInvalidHeaders(t *testing.T) {
	var gotTenant int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = shared.TenantFromContext(r.Context())
	})

	for _, header := range []string{"", "abc", "-5", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", header)
		TenantMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)
		require.Zero(t, gotTenant, "header %q", header)
	}
}
