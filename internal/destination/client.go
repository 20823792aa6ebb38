// Package destination defines the tabular destination a sync pass writes to
// and the read-only probes the reconciliation engine uses to classify it.
//
// A destination is a workbook identified by an id (a spreadsheet id) that
// holds named sheets. Implementations: Memory (in process), the Google
// Sheets client in destination/sheets, and store.Workbook (SQLite).
package destination

import (
	"context"

	"github.com/roach88/ordersync/internal/table"
)

// WriteMode selects how WriteRows places values.
type WriteMode string

const (
	// Overwrite writes values starting at the range's anchor cell.
	Overwrite WriteMode = "overwrite"

	// Append writes values after the last non-empty row of the sheet.
	Append WriteMode = "append"
)

// Client is the destination API consumed by the reconciliation engine.
// Every call is a single bounded request; implementations do not retry.
type Client interface {
	// SubResources lists the sheet names of the workbook.
	SubResources(ctx context.Context, destinationID string) ([]string, error)

	// AddSubResource creates an empty sheet.
	AddSubResource(ctx context.Context, destinationID, name string) error

	// ReadRows returns the values inside r. Trailing empty rows are omitted.
	ReadRows(ctx context.Context, destinationID string, r table.Range) ([][]string, error)

	// Clear empties every cell inside r.
	Clear(ctx context.Context, destinationID string, r table.Range) error

	// WriteRows writes rows and returns how many rows were written,
	// header included.
	WriteRows(ctx context.Context, destinationID string, r table.Range, rows [][]string, mode WriteMode) (int, error)
}
