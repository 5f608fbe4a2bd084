package posting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-suite/meridian/internal/inventory"
	"github.com/meridian-suite/meridian/internal/shared"
)

type stubService struct {
	err   error
	calls int
}

func (s *stubService) PostSalesInvoice(_ context.Context, tenantID, saleID int64) error {
	s.calls++
	return s.err
}

func postSale(t *testing.T, svc PostingService, path string, tenantID int64) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(nil, svc, 2, time.Millisecond)
	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodPost, path, nil)
	if tenantID != 0 {
		req = req.WithContext(shared.ContextWithTenant(req.Context(), tenantID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlePostSaleSuccess(t *testing.T) {
	svc := &stubService{}
	rec := postSale(t, svc, "/sales/10/post", 1)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 1, svc.calls)
}

func TestHandlePostSaleRequiresTenant(t *testing.T) {
	svc := &stubService{}
	rec := postSale(t, svc, "/sales/10/post", 0)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, svc.calls)
}

func TestHandlePostSaleRejectsBadSaleID(t *testing.T) {
	rec := postSale(t, &stubService{}, "/sales/nope/post", 1)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePostSaleErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", ErrSaleNotFound, http.StatusNotFound},
		{"invalid state", ErrInvalidState, http.StatusConflict},
		{"configuration incomplete", ErrConfigurationIncomplete, http.StatusUnprocessableEntity},
		{"empty document", ErrEmptyDocument, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postSale(t, &stubService{err: tc.err}, "/sales/10/post", 1)
			require.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestHandlePostSaleInsufficientStock(t *testing.T) {
	svc := &stubService{err: &inventory.InsufficientStockError{
		ProductID: 7,
		OnHand:    decimal.NewFromInt(4),
		Requested: decimal.NewFromInt(10),
	}}
	rec := postSale(t, svc, "/sales/10/post", 1)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, float64(7), body["product_id"])
	require.Equal(t, "4", body["on_hand"])
	require.Equal(t, "10", body["requested"])
}

func TestHandlePostSaleRetriesTransientFailures(t *testing.T) {
	svc := &stubService{err: serializationFailure()}
	rec := postSale(t, svc, "/sales/10/post", 1)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 2, svc.calls)
}
