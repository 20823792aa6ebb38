package vtex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordersync/internal/config"
	"github.com/roach88/ordersync/internal/ir"
	"github.com/roach88/ordersync/internal/syncerr"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// fakeOMS serves a listing of ids split into pages of perPage and a detail
// document per id. Ids listed in failing return 404 on detail.
type fakeOMS struct {
	ids     []string
	perPage int
	failing map[string]bool
	delay   map[string]time.Duration

	mu       sync.Mutex
	accounts []string

	listCalls   atomic.Int32
	detailCalls atomic.Int32
}

func (f *fakeOMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-VTEX-API-AppKey") != "key" || r.Header.Get("X-VTEX-API-AppToken") != "token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	prefix, path, _ := strings.Cut(r.URL.Path, "/orders")
	f.mu.Lock()
	f.accounts = append(f.accounts, prefix)
	f.mu.Unlock()
	if path == "" {
		f.listCalls.Add(1)
		q := r.URL.Query()
		page := 1
		fmt.Sscanf(q.Get("page"), "%d", &page)
		start := (page - 1) * f.perPage
		end := min(start+f.perPage, len(f.ids))
		var entries []string
		for _, id := range f.ids[start:end] {
			entries = append(entries, fmt.Sprintf(`{"orderId":%q,"status":"invoiced"}`, id))
		}
		pages := (len(f.ids) + f.perPage - 1) / f.perPage
		fmt.Fprintf(w, `{"list":[%s],"paging":{"total":%d,"pages":%d,"currentPage":%d,"perPage":%d}}`,
			strings.Join(entries, ","), len(f.ids), pages, page, f.perPage)
		return
	}

	f.detailCalls.Add(1)
	id := strings.TrimPrefix(path, "/")
	if f.failing[id] {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if d := f.delay[id]; d > 0 {
		time.Sleep(d)
	}
	fmt.Fprintf(w, `{"orderId":%q,"value":1000,"items":[{"name":"item-%s"}]}`, id, id)
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBackoff(time.Millisecond)}, opts...)
	return NewClient(srv.URL+"/api/oms/pvt/orders", "key", "token", srv.Client(), opts...)
}

func orderIDs(orders []ir.IRValue) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = ir.GetString(o, "orderId")
	}
	return out
}

func TestListOrders_Query(t *testing.T) {
	var got *http.Request
	c := NewClient("https://acme.example.com/api/oms/pvt/orders/", "key", "token", &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			got = r
			rec := httptest.NewRecorder()
			rec.WriteString(`{"paging":{"pages":0}}`)
			return rec.Result(), nil
		}),
	})

	list, err := c.ListOrders(context.Background(), Filter{Page: 2})
	require.NoError(t, err)
	assert.Empty(t, list.List)

	require.NotNil(t, got)
	assert.Equal(t, "/api/oms/pvt/orders", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "creationDate,desc", q.Get("orderBy"))
	assert.Equal(t, "invoiced", q.Get("f_status"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "50", q.Get("per_page"))
	assert.Equal(t, "key", got.Header.Get("X-VTEX-API-AppKey"))
	assert.Equal(t, "token", got.Header.Get("X-VTEX-API-AppToken"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
}

func TestGetOrder_DecodesDocument(t *testing.T) {
	c := newTestClient(t, &fakeOMS{ids: []string{"A"}, perPage: 50})

	order, err := c.GetOrder(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "A", ir.GetString(order, "orderId"))
	assert.Equal(t, ir.IRInt(1000), ir.Get(order, "value", ir.IRNull{}))
	assert.Equal(t, "item-A", ir.GetString(order, "items.0.name"))
}

func TestFetchOrders_KeepsListingOrder(t *testing.T) {
	oms := &fakeOMS{
		ids:     []string{"A", "B", "C", "D"},
		perPage: 50,
		delay:   map[string]time.Duration{"A": 20 * time.Millisecond},
	}
	c := newTestClient(t, oms, WithConcurrency(4))

	orders, err := c.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, orderIDs(orders))
	assert.EqualValues(t, 4, oms.detailCalls.Load())
}

func TestFetchOrders_SkipsFailedDetail(t *testing.T) {
	oms := &fakeOMS{ids: []string{"A", "B", "C"}, perPage: 50, failing: map[string]bool{"B": true}}
	c := newTestClient(t, oms)

	orders, err := c.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, orderIDs(orders))
}

func TestFetchOrders_Pages(t *testing.T) {
	oms := &fakeOMS{ids: []string{"A", "B", "C", "D", "E"}, perPage: 2}

	c := newTestClient(t, oms, WithPerPage(2))
	orders, err := c.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, orderIDs(orders), "one page by default")

	oms.listCalls.Store(0)
	c = newTestClient(t, oms, WithPerPage(2), WithMaxPages(10))
	orders, err = c.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, orderIDs(orders))
	assert.EqualValues(t, 3, oms.listCalls.Load(), "stops at paging.pages")
}

func TestFetchOrders_EmptyListing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	orders, err := c.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestFetchOrders_RetriesTransientListFailure(t *testing.T) {
	var calls atomic.Int32
	inner := &fakeOMS{ids: []string{"A"}, perPage: 50}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		inner.ServeHTTP(w, r)
	}), WithRetries(2))

	orders, err := c.FetchOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, orderIDs(orders))
}

func TestFetchOrders_ListFailureIsUpstreamUnavailable(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad credentials", http.StatusForbidden)
	}), WithRetries(3))

	_, err := c.FetchOrders(context.Background())
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.CodeUpstreamUnavailable))
	assert.Contains(t, err.Error(), "http status=403")
	assert.EqualValues(t, 1, calls.Load(), "4xx is not retried")
}

func TestFetchOrders_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}), WithRetries(2))

	_, err := c.FetchOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, syncerr.CodeUpstreamUnavailable, syncerr.CodeOf(err))
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchOrders_ZeroRetriesMakesOneAttempt(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), WithRetries(0), WithRateLimit(0))

	_, err := c.FetchOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, syncerr.CodeUpstreamUnavailable, syncerr.CodeOf(err))
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchOrders_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestClient(t, &fakeOMS{ids: []string{"A"}, perPage: 50})

	_, err := c.FetchOrders(ctx)
	require.Error(t, err)
	assert.Equal(t, syncerr.CodeCancelled, syncerr.CodeOf(err))
}

func TestSource_UsesTenantCredentials(t *testing.T) {
	oms := &fakeOMS{ids: []string{"A"}, perPage: 50}
	srv := httptest.NewServer(oms)
	defer srv.Close()

	up := config.Upstream{
		BaseURL:     srv.URL + "/{account}/orders",
		Concurrency: 2,
		MaxPages:    1,
		PerPage:     50,
	}
	src := NewSource(up, srv.Client(), nil)

	orders, err := src.FetchOrders(context.Background(), config.Tenant{
		Name:            "acme",
		VtexAccountName: "acme",
		VtexAppKey:      "key",
		VtexAppToken:    "token",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, orderIDs(orders))
	assert.Equal(t, []string{"/acme", "/acme"}, oms.accounts)

	_, err = src.FetchOrders(context.Background(), config.Tenant{Name: "bad", VtexAppKey: "wrong", VtexAppToken: "token"})
	assert.True(t, syncerr.Is(err, syncerr.CodeUpstreamUnavailable))
}

func TestStatusError(t *testing.T) {
	assert.True(t, (&StatusError{Status: 429}).Temporary())
	assert.True(t, (&StatusError{Status: 502}).Temporary())
	assert.False(t, (&StatusError{Status: 404}).Temporary())
	assert.Equal(t, `vtex get order http status=404 body="nope"`, (&StatusError{Op: "get order", Status: 404, Body: "nope"}).Error())
}
