package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ordersync/internal/destination"
	"github.com/roach88/ordersync/internal/engine"
	"github.com/roach88/ordersync/internal/ir"
	"github.com/roach88/ordersync/internal/normalize"
	"github.com/roach88/ordersync/internal/syncerr"
	"github.com/roach88/ordersync/internal/testutil"
)

// destinationID is the workbook every scenario writes to.
const destinationID = "scenario"

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory destination, so scenarios
// are isolated and deterministic.
//
// Execution flow:
// 1. Seed the destination and inject failures
// 2. Normalize the orders with the scenario's run date
// 3. Reconcile through a call recorder
// 4. Compare the outcome with the expectation and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	mem := destination.NewMemory()
	if scenario.Initial != nil || scenario.Exists {
		mem.Seed(destinationID, scenario.Sheet, scenario.Initial)
	}
	for op, msg := range scenario.FailOn {
		mem.FailOn(destination.Op(op), errors.New(msg))
	}
	rec := testutil.NewRecorder(mem)

	orders := make([]ir.IRValue, len(scenario.Orders))
	for i, o := range scenario.Orders {
		v, err := ir.FromGo(o)
		if err != nil {
			return nil, fmt.Errorf("orders[%d]: %w", i, err)
		}
		orders[i] = v
	}
	batch := normalize.Batch(orders, scenario.RunDate)

	eng := engine.New(rec, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	res, err := eng.Reconcile(context.Background(), destinationID, scenario.Sheet, batch, scenario.RunDate)

	result := NewResult()
	result.Trace = rec.Trace()
	if err != nil {
		result.ErrorCode = string(syncerr.CodeOf(err))
	} else {
		result.Strategy = string(res.Strategy)
		result.RowsWritten = res.RowsWritten
		result.Duplicates = res.Duplicates
	}
	if rows, ok := mem.Sheet(destinationID, scenario.Sheet); ok {
		result.Final = rows
		if result.Final == nil {
			result.Final = [][]string{}
		}
	}

	checkExpectation(result, scenario.Expect, err)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func checkExpectation(r *Result, want Expectation, err error) {
	if want.ErrorCode == "" && err != nil {
		r.AddError(fmt.Sprintf("expected success, got error: %v", err))
		return
	}
	if r.ErrorCode != want.ErrorCode {
		r.AddError(fmt.Sprintf("expected error code %q, got %q", want.ErrorCode, r.ErrorCode))
	}
	if want.Strategy != "" && r.Strategy != want.Strategy {
		r.AddError(fmt.Sprintf("expected strategy %q, got %q", want.Strategy, r.Strategy))
	}
	if r.RowsWritten != want.RowsWritten {
		r.AddError(fmt.Sprintf("expected %d rows written, got %d", want.RowsWritten, r.RowsWritten))
	}
	if r.Duplicates != want.Duplicates {
		r.AddError(fmt.Sprintf("expected %d duplicates, got %d", want.Duplicates, r.Duplicates))
	}
}
