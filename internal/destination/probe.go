package destination

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/ordersync/internal/syncerr"
	"github.com/roach88/ordersync/internal/table"
)

// State is what a probe learned about a sheet. It is derived fresh on every
// reconcile and never cached.
type State struct {
	Exists bool

	// Header is the first row, nil when the sheet has none.
	Header []string

	// Sample is the first data row, nil when the sheet has none.
	Sample []string
}

// SampleValue returns the sample row's cell under the header column named
// field. It reports false when either row is absent or the column is
// missing.
func (s State) SampleValue(field string) (string, bool) {
	if s.Header == nil || s.Sample == nil {
		return "", false
	}
	idx := table.IndexOf(s.Header, field)
	if idx < 0 {
		return "", false
	}
	if idx >= len(s.Sample) {
		return "", true
	}
	return s.Sample[idx], true
}

// Probe classifies sheet inside the destination. A missing sheet is reported
// as State{Exists: false} without reading any rows.
func Probe(ctx context.Context, c Client, destinationID, sheet string) (State, error) {
	names, err := c.SubResources(ctx, destinationID)
	if err != nil {
		return State{}, syncerr.Wrap(syncerr.CodeDestinationUnavailable, "list sheets", err)
	}
	if !slices.Contains(names, sheet) {
		return State{}, nil
	}

	rows, err := c.ReadRows(ctx, destinationID, table.Rows(sheet, 1, 2))
	if err != nil {
		return State{}, syncerr.Wrap(syncerr.CodeDestinationUnavailable, "read header", err)
	}

	st := State{Exists: true}
	if len(rows) > 0 && !blank(rows[0]) {
		st.Header = rows[0]
	}
	if len(rows) > 1 && !blank(rows[1]) {
		st.Sample = rows[1]
	}
	return st, nil
}

// ReadKeys reads the column at index col from row 2 down and returns its
// non-empty values as a set.
func ReadKeys(ctx context.Context, c Client, destinationID, sheet string, col int) (map[string]struct{}, error) {
	if col < 0 {
		return nil, fmt.Errorf("invalid column index %d", col)
	}
	rows, err := c.ReadRows(ctx, destinationID, table.ColumnFrom(sheet, col, 2))
	if err != nil {
		return nil, syncerr.Wrap(syncerr.CodeDestinationUnavailable, "read key column", err)
	}

	keys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if len(r) == 0 || r[0] == "" {
			continue
		}
		keys[r[0]] = struct{}{}
	}
	return keys, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
