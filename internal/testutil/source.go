package testutil

import (
	"context"
	"sync"

	"github.com/roach88/ordersync/internal/config"
	"github.com/roach88/ordersync/internal/ir"
)

// StubOrderSource serves canned orders per tenant name.
type StubOrderSource struct {
	mu     sync.Mutex
	orders map[string][]ir.IRValue
	errs   map[string]error
	calls  []string
}

// NewStubOrderSource returns a source with no tenants; unknown tenants
// return an empty list.
func NewStubOrderSource() *StubOrderSource {
	return &StubOrderSource{
		orders: make(map[string][]ir.IRValue),
		errs:   make(map[string]error),
	}
}

// SetOrders sets the orders returned for tenant.
func (s *StubOrderSource) SetOrders(tenant string, orders ...ir.IRValue) *StubOrderSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[tenant] = orders
	return s
}

// SetError makes every fetch for tenant fail with err.
func (s *StubOrderSource) SetError(tenant string, err error) *StubOrderSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[tenant] = err
	return s
}

// FetchOrders returns the canned orders for t.
func (s *StubOrderSource) FetchOrders(ctx context.Context, t config.Tenant) ([]ir.IRValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, t.Name)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.errs[t.Name]; err != nil {
		return nil, err
	}
	return append([]ir.IRValue(nil), s.orders[t.Name]...), nil
}

// Calls returns the tenant names fetched, in order.
func (s *StubOrderSource) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
