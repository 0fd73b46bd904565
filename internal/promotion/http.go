package promotion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	"github.com/mirindaq/EcomStore-sub002/pkg/httpclient"
)

// resolveResponse is the wire shape returned by the promotion service.
type resolveResponse struct {
	FinalPrice float64 `json:"final_price"`
}

// HTTPEngine resolves display prices by calling the promotion service over
// HTTP through a circuit breaker. When the circuit is open the original
// price is returned unchanged so search keeps working while the promotion
// service is down.
type HTTPEngine struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewHTTPEngine creates a promotion engine backed by the service at baseURL.
func NewHTTPEngine(client *httpclient.CircuitBreakerClient, baseURL string, logger *slog.Logger) *HTTPEngine {
	return &HTTPEngine{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

// ResolvePrice calls the promotion service's resolve-price endpoint with the
// search product context and returns the resolved display price.
func (e *HTTPEngine) ResolvePrice(ctx context.Context, pctx domain.SearchProductContext) (float64, error) {
	body, err := json.Marshal(pctx)
	if err != nil {
		return 0, fmt.Errorf("promotion resolve: marshal context: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/internal/promotions/resolve-price", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("promotion resolve: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(ctx, req)
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			e.logger.Warn("promotion circuit open, returning original price",
				"product_id", pctx.ProductID,
				"variant_id", pctx.VariantID,
			)
			return pctx.OriginalPrice, nil
		}
		return 0, fmt.Errorf("promotion resolve: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("promotion resolve: unexpected status %d", resp.StatusCode)
	}

	var out resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("promotion resolve: decode response: %w", err)
	}

	if out.FinalPrice < 0 || out.FinalPrice > pctx.OriginalPrice {
		// A promotion can only lower the price. Discard nonsense responses.
		e.logger.Warn("promotion service returned out-of-range price",
			"product_id", pctx.ProductID,
			"variant_id", pctx.VariantID,
			"original", pctx.OriginalPrice,
			"resolved", out.FinalPrice,
		)
		return pctx.OriginalPrice, nil
	}

	return out.FinalPrice, nil
}
