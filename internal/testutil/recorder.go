package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/ordersync/internal/destination"
	"github.com/roach88/ordersync/internal/table"
)

// Call is one destination call observed by a Recorder.
type Call struct {
	Op    destination.Op
	Range string
	Rows  int
	Mode  destination.WriteMode
	Err   string
}

// String renders the call as one trace line, e.g.
// "write_rows Orders!A1 rows=3 mode=overwrite".
func (c Call) String() string {
	var b strings.Builder
	b.WriteString(string(c.Op))
	if c.Range != "" {
		b.WriteString(" " + c.Range)
	}
	if c.Op == destination.OpWriteRows {
		fmt.Fprintf(&b, " rows=%d mode=%s", c.Rows, c.Mode)
	}
	if c.Err != "" {
		b.WriteString(" error=" + c.Err)
	}
	return b.String()
}

// Recorder wraps a destination client and records every call in order.
type Recorder struct {
	next destination.Client

	mu    sync.Mutex
	calls []Call
}

var _ destination.Client = (*Recorder)(nil)

// NewRecorder wraps next.
func NewRecorder(next destination.Client) *Recorder {
	return &Recorder{next: next}
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Trace returns the recorded calls as lines.
func (r *Recorder) Trace() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Ops returns only the operation names of the recorded calls.
func (r *Recorder) Ops() []destination.Op {
	calls := r.Calls()
	out := make([]destination.Op, len(calls))
	for i, c := range calls {
		out[i] = c.Op
	}
	return out
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(c Call, err error) {
	if err != nil {
		c.Err = err.Error()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *Recorder) SubResources(ctx context.Context, destinationID string) ([]string, error) {
	names, err := r.next.SubResources(ctx, destinationID)
	r.record(Call{Op: destination.OpSubResources}, err)
	return names, err
}

func (r *Recorder) AddSubResource(ctx context.Context, destinationID, name string) error {
	err := r.next.AddSubResource(ctx, destinationID, name)
	r.record(Call{Op: destination.OpAddSubResource, Range: table.QuoteSheet(name)}, err)
	return err
}

func (r *Recorder) ReadRows(ctx context.Context, destinationID string, rng table.Range) ([][]string, error) {
	rows, err := r.next.ReadRows(ctx, destinationID, rng)
	r.record(Call{Op: destination.OpReadRows, Range: rng.String()}, err)
	return rows, err
}

func (r *Recorder) Clear(ctx context.Context, destinationID string, rng table.Range) error {
	err := r.next.Clear(ctx, destinationID, rng)
	r.record(Call{Op: destination.OpClear, Range: rng.String()}, err)
	return err
}

func (r *Recorder) WriteRows(ctx context.Context, destinationID string, rng table.Range, rows [][]string, mode destination.WriteMode) (int, error) {
	n, err := r.next.WriteRows(ctx, destinationID, rng, rows, mode)
	r.record(Call{Op: destination.OpWriteRows, Range: rng.String(), Rows: len(rows), Mode: mode}, err)
	return n, err
}
