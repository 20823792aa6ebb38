package ledger

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Ledger.
type Memory struct {
	mu      sync.Mutex
	entries []RunSummary // newest first
}

var _ Ledger = (*Memory)(nil)

// NewMemory creates an empty ledger.
func NewMemory() *Memory {
	return &Memory{}
}

// Append records s as the newest entry, evicting the oldest beyond Capacity.
func (m *Memory) Append(ctx context.Context, s RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Results = slices.Clone(s.Results)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]RunSummary{s}, m.entries...)
	if len(m.entries) > Capacity {
		m.entries = m.entries[:Capacity]
	}
	return nil
}

// List returns up to limit entries, most recent first.
func (m *Memory) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	return slices.Clone(m.entries[:n]), nil
}
