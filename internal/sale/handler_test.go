package sale

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/stock"
)

func newTestRouter(repo *memoryRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, newTestService(repo))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateSaleEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedStock(1, stock.DefaultLocation, 10)
	router := newTestRouter(repo)

	rec := postJSON(t, router, "/sales", CreateSaleRequest{
		Items:           []CreateSaleItemRequest{{ProductID: 1, Quantity: 2}},
		PaymentMethodID: 1,
		PaymentStatusID: 1,
		SaleStatusID:    statusIDCompleted,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, StatusCompleted, created.Status)
	require.True(t, strings.HasPrefix(created.ReceiptNo, "POS-"))
	require.InDelta(t, 55, created.TotalAmount, 0.0001)
}

func TestCreateSaleEndpointValidation(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	// No items.
	rec := postJSON(t, router, "/sales", CreateSaleRequest{
		PaymentMethodID: 1,
		PaymentStatusID: 1,
		SaleStatusID:    statusIDCompleted,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCreateSaleEndpointOversellConflict(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedStock(1, stock.DefaultLocation, 1)
	router := newTestRouter(repo)

	rec := postJSON(t, router, "/sales", CreateSaleRequest{
		Items:           []CreateSaleItemRequest{{ProductID: 1, Quantity: 5}},
		PaymentMethodID: 1,
		PaymentStatusID: 1,
		SaleStatusID:    statusIDCompleted,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestShowSaleEndpointNotFound(t *testing.T) {
	router := newTestRouter(newMemoryRepo())
	req := httptest.NewRequest(http.MethodGet, "/sales/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShowSaleEndpointBadID(t *testing.T) {
	router := newTestRouter(newMemoryRepo())
	req := httptest.NewRequest(http.MethodGet, "/sales/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransitionEndpointIllegalEdge(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedStock(1, stock.DefaultLocation, 10)
	router := newTestRouter(repo)

	created := postJSON(t, router, "/sales", CreateSaleRequest{
		Items:           []CreateSaleItemRequest{{ProductID: 1, Quantity: 1}},
		PaymentMethodID: 1,
		PaymentStatusID: 1,
		SaleStatusID:    statusIDCompleted,
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var sl Sale
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &sl))

	rec := postJSON(t, router, "/sales/1/status", TransitionStatusRequest{SaleStatusID: statusIDCancelled})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/sales/1/status", TransitionStatusRequest{SaleStatusID: statusIDCompleted})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestReceiptEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedStock(1, stock.DefaultLocation, 10)
	router := newTestRouter(repo)

	created := postJSON(t, router, "/sales", CreateSaleRequest{
		Items:           []CreateSaleItemRequest{{ProductID: 1, Quantity: 2}},
		PaymentMethodID: 1,
		PaymentStatusID: 1,
		SaleStatusID:    statusIDCompleted,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	req := httptest.NewRequest(http.MethodGet, "/sales/1/receipt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, rec.Body.String(), "Total     55.00")
}
