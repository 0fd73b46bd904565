package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memengine "github.com/mirindaq/EcomStore-sub002/internal/engine/memory"
	"github.com/mirindaq/EcomStore-sub002/internal/event"
	"github.com/mirindaq/EcomStore-sub002/internal/promotion"
	repomemory "github.com/mirindaq/EcomStore-sub002/internal/repository/memory"
	"github.com/mirindaq/EcomStore-sub002/internal/service"
	"github.com/mirindaq/EcomStore-sub002/internal/vector"
	memvector "github.com/mirindaq/EcomStore-sub002/internal/vector/memory"
	"github.com/mirindaq/EcomStore-sub002/pkg/health"
	"github.com/mirindaq/EcomStore-sub002/pkg/middleware"
)

type nopPublisher struct{}

func (nopPublisher) PublishProductCreated(context.Context, event.ProductCreatedEvent) error {
	return nil
}

func (nopPublisher) PublishProductDeleted(context.Context, event.ProductDeletedEvent) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := repomemory.NewProductRepository()
	eng := memengine.New()
	vectors := memvector.NewStore(vector.NewHashingEmbedder(16))

	catalogSvc := service.NewCatalogService(repo, nopPublisher{}, logger)
	searchSvc := service.NewSearchService(eng, promotion.NewNoopEngine(), logger)
	indexerSvc := service.NewIndexerService(repo, eng, vectors, logger)

	return NewRouter(catalogSvc, searchSvc, indexerSvc, health.NewHandler(), middleware.DefaultCORSConfig(), logger)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearch_EmptyIndexReturnsEmptyResult(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/search?q=mouse", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Items []json.RawMessage `json:"items"`
			Total int               `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Zero(t, resp.Data.Total)
	assert.Empty(t, resp.Data.Items)
}

func TestSearch_InvalidSortRejected(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/search?sort=cheapest", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_InvalidPriceRange(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/search?min_price=50&max_price=10", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_NonNumericBrandID(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/search?brand_id=acme", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProduct_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"Wireless Mouse","variants":[{"sku":"WM-BLK","price":29.99}]}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/products/", body,
		map[string]string{"Content-Type": "application/json"})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID   int64  `json:"id"`
			Slug string `json:"slug"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotZero(t, resp.Data.ID)
	assert.Equal(t, "wireless-mouse", resp.Data.Slug)

	// The product is readable back.
	w = doRequest(t, router, http.MethodGet, "/api/v1/products/1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteProduct_RequiresStaff(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"Wireless Mouse","variants":[{"sku":"WM-BLK","price":29.99}]}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/products/", body,
		map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Customers cannot delete products.
	w = doRequest(t, router, http.MethodDelete, "/api/v1/products/1", "", map[string]string{
		"X-User-ID":   "2",
		"X-User-Role": "customer",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/v1/products/1", "", map[string]string{
		"X-User-ID":   "1",
		"X-User-Role": "staff",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/products/1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProduct_ValidationErrorsReturnFieldViolations(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"x","variants":[]}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/products/", body,
		map[string]string{"Content-Type": "application/json"})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Name")
}

func TestCreateProduct_RequiresJSONContentType(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/products/", `{}`,
		map[string]string{"Content-Type": "text/plain"})

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestAdmin_ReindexRequiresStaff(t *testing.T) {
	router := newTestRouter(t)

	// Anonymous.
	w := doRequest(t, router, http.MethodPost, "/api/v1/admin/reindex", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Customer.
	w = doRequest(t, router, http.MethodPost, "/api/v1/admin/reindex", "", map[string]string{
		"X-User-ID":   "2",
		"X-User-Role": "customer",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Staff.
	w = doRequest(t, router, http.MethodPost, "/api/v1/admin/reindex", "", map[string]string{
		"X-User-ID":   "1",
		"X-User-Role": "staff",
	})
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestAdmin_DeleteDocumentRequiresStaff(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodDelete, "/api/v1/admin/documents/42", "", map[string]string{
		"X-User-ID":   "2",
		"X-User-Role": "customer",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/v1/admin/documents/42", "", map[string]string{
		"X-User-ID":   "1",
		"X-User-Role": "staff",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_IndexProductMissingAggregate(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/admin/index/999", "", map[string]string{
		"X-User-ID":   "1",
		"X-User-Role": "staff",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth_Liveness(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
