package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirindaq/EcomStore-sub002/internal/service"
	"github.com/mirindaq/EcomStore-sub002/pkg/httputil"
)

// AdminHandler handles staff-only index maintenance endpoints. The manual
// full reindex is the recovery path for product.created messages lost after
// commit.
type AdminHandler struct {
	indexer *service.IndexerService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(indexer *service.IndexerService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		indexer: indexer,
		logger:  logger,
	}
}

// Reindex handles POST /api/v1/admin/reindex
//
// The rebuild runs in the background; the request returns immediately with
// 202 Accepted.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		count, err := h.indexer.ReindexAll(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "background reindex failed",
				slog.Int("reindexed", count),
				slog.String("error", err.Error()),
			)
			return
		}
		h.logger.InfoContext(ctx, "background reindex complete", slog.Int("reindexed", count))
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "reindex started"}})
}

// IndexProduct handles POST /api/v1/admin/index/{id}, a targeted re-project
// of one product from its current relational state.
func (h *AdminHandler) IndexProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.indexer.IndexProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"product_id": id, "status": "indexed"}})
}

// DeleteDocument handles DELETE /api/v1/admin/documents/{id}
func (h *AdminHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.indexer.DeleteDocument(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"product_id": id, "status": "deleted"}})
}
