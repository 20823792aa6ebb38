// Package ledger records the outcome of every sync pass.
//
// A RunSummary is built once per pass by the orchestrator, is immutable once
// returned, and is appended to a Ledger exactly once. Ledgers keep only the
// Capacity most recent summaries and list them newest first.
package ledger

import (
	"context"
	"time"
)

// Capacity is the number of summaries a ledger retains.
const Capacity = 50

// Outcome is the result of one tenant's run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// RunResult is the outcome of one tenant within a pass.
type RunResult struct {
	TenantName  string  `json:"tenant_name"`
	Outcome     Outcome `json:"outcome"`
	RowsWritten int     `json:"rows_written"`

	// Strategy is the reconcile branch taken; empty when the run failed.
	Strategy string `json:"strategy,omitempty"`

	// Duplicates counts batch rows collapsed on a repeated key.
	Duplicates int `json:"duplicates,omitempty"`

	// Error is a human-readable failure detail; empty on success.
	Error string `json:"error,omitempty"`

	// ErrorCode is the failure category; empty on success.
	ErrorCode string `json:"error_code,omitempty"`
}

// RunSummary is the record of one pass across all tenants.
type RunSummary struct {
	ID             string        `json:"id"`
	OverallSuccess bool          `json:"overall_success"`
	Message        string        `json:"message"`
	Results        []RunResult   `json:"results"`
	TotalRows      int           `json:"total_rows"`
	RunDate        string        `json:"run_date"`
	Timestamp      time.Time     `json:"timestamp"`
	Duration       time.Duration `json:"duration_ns"`
}

// Failed returns the number of failed results.
func (s RunSummary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// Ledger is an append-only, capacity-bounded history of run summaries.
type Ledger interface {
	Append(ctx context.Context, s RunSummary) error

	// List returns up to limit summaries, most recent first. A limit of
	// zero or less returns everything retained.
	List(ctx context.Context, limit int) ([]RunSummary, error)
}
