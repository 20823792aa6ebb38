// Package orchestrator runs one sync pass across every tenant.
//
// Tenants run strictly in order; tenant N+1 starts only after tenant N has
// resolved. A tenant's failure is captured in its RunResult and never stops
// the pass. The pass produces exactly one RunSummary, which is appended to
// the ledger once.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/ordersync/internal/config"
	"github.com/roach88/ordersync/internal/engine"
	"github.com/roach88/ordersync/internal/ir"
	"github.com/roach88/ordersync/internal/ledger"
	"github.com/roach88/ordersync/internal/metrics"
	"github.com/roach88/ordersync/internal/normalize"
	"github.com/roach88/ordersync/internal/syncerr"
	"github.com/roach88/ordersync/internal/table"
)

// OrderSource fetches a tenant's raw orders.
type OrderSource interface {
	FetchOrders(ctx context.Context, t config.Tenant) ([]ir.IRValue, error)
}

// Reconciler writes a normalized batch into a destination sheet.
type Reconciler interface {
	Reconcile(ctx context.Context, destinationID, sheet string, batch table.Batch, runDate string) (engine.Result, error)
}

// Orchestrator runs passes. It holds no per-pass state and may be reused.
type Orchestrator struct {
	source     OrderSource
	reconciler Reconciler
	ledger     ledger.Ledger
	clock      engine.Clock
	ids        IDGenerator
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLedger sets where summaries are appended. Default: none.
func WithLedger(l ledger.Ledger) Option {
	return func(o *Orchestrator) {
		o.ledger = l
	}
}

// WithClock sets the clock the run date is derived from. Default: system.
func WithClock(c engine.Clock) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithIDGenerator sets the run id generator. Default: UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *Orchestrator) {
		if g != nil {
			o.ids = g
		}
	}
}

// WithMetrics sets the metrics to record. Default: none.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Orchestrator.
func New(source OrderSource, reconciler Reconciler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:     source,
		reconciler: reconciler,
		clock:      engine.SystemClock{},
		ids:        UUIDv7Generator{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunAll runs one pass over tenants in order and returns its summary.
//
// The run date is read from the clock once, before the first tenant.
// Cancellation is checked between tenants; tenants not started are recorded
// as failed with code CANCELLED. A reconcile that has started always runs to
// completion.
func (o *Orchestrator) RunAll(ctx context.Context, tenants []config.Tenant) ledger.RunSummary {
	start := o.clock.Now()
	sum := ledger.RunSummary{
		ID:        o.ids.Generate(),
		RunDate:   engine.RunDate(start),
		Timestamp: start.UTC(),
		Results:   make([]ledger.RunResult, 0, len(tenants)),
	}
	log := o.logger.With("run_id", sum.ID)
	log.Info("sync pass started", "tenants", len(tenants), "run_date", sum.RunDate)

	for _, t := range tenants {
		var res ledger.RunResult
		if err := ctx.Err(); err != nil {
			res = failed(t, syncerr.Wrap(syncerr.CodeCancelled, "run tenant", err))
		} else {
			res = o.runTenant(ctx, log.With("tenant", t.Name), t, sum.RunDate)
		}
		sum.Results = append(sum.Results, res)
		sum.TotalRows += res.RowsWritten
		o.metrics.RecordTenant(t.Name, string(res.Outcome), res.Strategy, res.RowsWritten)
	}

	failures := sum.Failed()
	sum.OverallSuccess = failures == 0
	sum.Message = message(sum.TotalRows, failures, len(tenants))

	end := o.clock.Now()
	sum.Duration = end.Sub(start)
	o.metrics.RecordPass(sum.OverallSuccess, sum.Duration, end)

	if o.ledger != nil {
		// A cancelled pass is still recorded.
		if err := o.ledger.Append(context.WithoutCancel(ctx), sum); err != nil {
			log.Error("failed to record run", "error", err)
		}
	}

	log.Info("sync pass finished", "success", sum.OverallSuccess, "rows", sum.TotalRows, "failed", failures)
	return sum
}

func (o *Orchestrator) runTenant(ctx context.Context, log *slog.Logger, t config.Tenant, runDate string) ledger.RunResult {
	if err := t.Validate(); err != nil {
		log.Warn("tenant configuration incomplete", "error", err)
		return failed(t, err)
	}

	orders, err := o.source.FetchOrders(ctx, t)
	if err != nil {
		err = syncerr.Wrap(syncerr.CodeUpstreamUnavailable, "fetch orders", err)
		log.Error("fetch orders failed", "error", err)
		return failed(t, err)
	}

	batch := normalize.Batch(orders, runDate)
	batch.Rows = dropKeyless(log, batch.Rows)
	log.Debug("orders normalized", "orders", len(orders), "rows", len(batch.Rows))

	// Cancellation stops between tenants only. A reconcile interrupted after
	// its clear would leave the sheet empty.
	res, err := o.reconciler.Reconcile(context.WithoutCancel(ctx), t.SheetID, t.SheetName, batch, runDate)
	if err != nil {
		err = syncerr.Wrap(syncerr.CodeDestinationUnavailable, "reconcile", err)
		log.Error("reconcile failed", "error", err)
		return failed(t, err)
	}

	return ledger.RunResult{
		TenantName:  t.Name,
		Outcome:     ledger.OutcomeSuccess,
		RowsWritten: res.RowsWritten,
		Strategy:    string(res.Strategy),
		Duplicates:  res.Duplicates,
	}
}

// dropKeyless removes rows without an order id; they can never be
// deduplicated.
func dropKeyless(log *slog.Logger, rows []table.Row) []table.Row {
	kept := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if r.Key(normalize.KeyField) == "" {
			continue
		}
		kept = append(kept, r)
	}
	if dropped := len(rows) - len(kept); dropped > 0 {
		log.Warn("dropped rows without order id", "rows", dropped)
	}
	return kept
}

func failed(t config.Tenant, err error) ledger.RunResult {
	return ledger.RunResult{
		TenantName: t.Name,
		Outcome:    ledger.OutcomeFailed,
		Error:      err.Error(),
		ErrorCode:  string(syncerr.CodeOf(err)),
	}
}

func message(rows, failures, tenants int) string {
	switch {
	case tenants == 0:
		return "no tenants configured"
	case failures == 0:
		return fmt.Sprintf("sync complete: %d rows written across %d tenant(s)", rows, tenants)
	default:
		return fmt.Sprintf("sync completed with errors: %d rows written, %d of %d tenant(s) failed", rows, failures, tenants)
	}
}

