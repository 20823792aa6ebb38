package vtex

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/roach88/ordersync/internal/config"
	"github.com/roach88/ordersync/internal/ir"
)

// Source fetches orders for any configured tenant, building a Client per
// call from the tenant's credentials and the shared upstream settings.
type Source struct {
	upstream   config.Upstream
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSource creates a Source. A nil httpClient gets one with the configured
// timeout.
func NewSource(upstream config.Upstream, httpClient *http.Client, logger *slog.Logger) *Source {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: upstream.Timeout.Std()}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{upstream: upstream, httpClient: httpClient, logger: logger}
}

// Client returns the client for tenant t.
func (s *Source) Client(t config.Tenant) *Client {
	u := s.upstream
	return NewClient(u.AccountURL(t.VtexAccountName), t.VtexAppKey, t.VtexAppToken, s.httpClient,
		WithLogger(s.logger.With("tenant", t.Name)),
		WithConcurrency(u.Concurrency),
		WithRateLimit(u.RateLimit()),
		WithRetries(u.RetryCount()),
		WithMaxPages(u.MaxPages),
		WithStatus(u.Status),
		WithPerPage(u.PerPage),
	)
}

// FetchOrders fetches the orders of tenant t.
func (s *Source) FetchOrders(ctx context.Context, t config.Tenant) ([]ir.IRValue, error) {
	return s.Client(t).FetchOrders(ctx)
}
