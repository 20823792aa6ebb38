// Package vtex fetches invoiced orders from the VTEX order management API.
//
// A Client talks to one account. Listing is paged; order details are fetched
// with bounded concurrency under a shared rate limit, and the result keeps
// the listing order. A detail that cannot be fetched is skipped. Transient
// failures (429 and 5xx) are retried with exponential backoff.
package vtex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/roach88/ordersync/internal/ir"
	"github.com/roach88/ordersync/internal/syncerr"
)

const (
	defaultConcurrency = 4
	defaultRetries     = 2
	defaultBackoff     = 500 * time.Millisecond
	defaultStatus      = "invoiced"
	defaultPerPage     = 50
)

// StatusError is a non-200 response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vtex %s http status=%d body=%q", e.Op, e.Status, e.Body)
}

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// OrderSummary is one entry of the order listing.
type OrderSummary struct {
	OrderID      string `json:"orderId"`
	Status       string `json:"status"`
	CreationDate string `json:"creationDate"`
}

// Paging is the listing's page metadata.
type Paging struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
}

// OrderList is one page of the listing. A response without a list decodes
// to an empty page.
type OrderList struct {
	List   []OrderSummary `json:"list"`
	Paging Paging         `json:"paging"`
}

// Filter selects one page of the listing.
type Filter struct {
	Status  string
	Page    int
	PerPage int
}

// Client calls the order API of one account.
type Client struct {
	BaseURL    string
	AppKey     string
	AppToken   string
	HTTPClient *http.Client

	logger      *slog.Logger
	limiter     *rate.Limiter
	concurrency int
	retries     int
	backoff     time.Duration
	maxPages    int
	status      string
	perPage     int
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConcurrency bounds concurrent detail fetches. Default: 4.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRateLimit caps requests per second. Zero or less disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetries sets how many times a transient failure is retried. Default: 2.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the first retry delay. Default: 500ms.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithMaxPages sets how many listing pages FetchOrders reads. Default: 1.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithStatus sets the order status filter. Default: invoiced.
func WithStatus(s string) Option {
	return func(c *Client) {
		if s != "" {
			c.status = s
		}
	}
}

// WithPerPage sets the listing page size. Default: 50.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// NewClient creates a client for the order endpoint at baseURL
// (".../api/oms/pvt/orders").
func NewClient(baseURL, appKey, appToken string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		BaseURL:     baseURL,
		AppKey:      appKey,
		AppToken:    appToken,
		HTTPClient:  httpClient,
		logger:      slog.Default(),
		limiter:     rate.NewLimiter(rate.Inf, 1),
		concurrency: defaultConcurrency,
		retries:     defaultRetries,
		backoff:     defaultBackoff,
		maxPages:    1,
		status:      defaultStatus,
		perPage:     defaultPerPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListOrders reads one page of the listing, newest first.
func (c *Client) ListOrders(ctx context.Context, f Filter) (OrderList, error) {
	if f.Status == "" {
		f.Status = c.status
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = c.perPage
	}

	base, err := c.baseURL()
	if err != nil {
		return OrderList{}, err
	}
	u, err := url.Parse(base)
	if err != nil {
		return OrderList{}, err
	}
	q := u.Query()
	q.Set("orderBy", "creationDate,desc")
	q.Set("f_status", f.Status)
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("per_page", strconv.Itoa(f.PerPage))
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, "list orders", u.String())
	if err != nil {
		return OrderList{}, err
	}

	var out OrderList
	if err := json.Unmarshal(body, &out); err != nil {
		return OrderList{}, fmt.Errorf("vtex list orders: decode: %w", err)
	}
	return out, nil
}

// GetOrder reads the full order document.
func (c *Client) GetOrder(ctx context.Context, orderID string) (ir.IRValue, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("vtex get order: order id is required")
	}
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "get order", base+"/"+url.PathEscape(orderID))
	if err != nil {
		return nil, err
	}
	v, err := ir.UnmarshalValue(body)
	if err != nil {
		return nil, fmt.Errorf("vtex get order %s: decode: %w", orderID, err)
	}
	return v, nil
}

// FetchOrders lists up to the configured number of pages and returns the
// details of every listed order in listing order. Orders whose detail fetch
// fails are left out. A failed listing is an UPSTREAM_UNAVAILABLE error.
func (c *Client) FetchOrders(ctx context.Context) ([]ir.IRValue, error) {
	var summaries []OrderSummary
	for page := 1; page <= c.maxPages; page++ {
		list, err := c.ListOrders(ctx, Filter{Page: page})
		if err != nil {
			return nil, syncerr.Wrap(syncerr.CodeUpstreamUnavailable, "list orders", err)
		}
		summaries = append(summaries, list.List...)
		if len(list.List) == 0 || page >= list.Paging.Pages {
			break
		}
	}

	details := make([]ir.IRValue, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, s := range summaries {
		g.Go(func() error {
			order, err := c.GetOrder(gctx, s.OrderID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.logger.Warn("order detail fetch failed, skipping", "order_id", s.OrderID, "error", err)
				return nil
			}
			details[i] = order
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, syncerr.Wrap(syncerr.CodeUpstreamUnavailable, "get orders", err)
	}

	orders := make([]ir.IRValue, 0, len(details))
	for _, d := range details {
		if d != nil {
			orders = append(orders, d)
		}
	}
	c.logger.Debug("orders fetched", "listed", len(summaries), "fetched", len(orders))
	return orders, nil
}

func (c *Client) baseURL() (string, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return "", fmt.Errorf("vtex base_url is required")
	}
	return base, nil
}

// get performs one rate-limited GET, retrying transient failures.
func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	var body []byte
	backoff := retry.WithMaxRetries(uint64(c.retries), retry.NewExponential(c.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-VTEX-API-AppKey", c.AppKey)
		req.Header.Set("X-VTEX-API-AppToken", c.AppToken)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode != http.StatusOK {
			serr := &StatusError{Op: op, Status: resp.StatusCode, Body: string(data)}
			if serr.Temporary() {
				c.logger.Debug("vtex request failed, retrying", "op", op, "status", resp.StatusCode)
				return retry.RetryableError(serr)
			}
			return serr
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
