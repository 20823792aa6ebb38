// Package table holds the flat tabular model shared by the normalizer, the
// reconciliation engine and every destination: rows keyed by field name,
// batches with a fixed field order, cell rendering and A1 ranges.
package table

import (
	"strconv"

	"github.com/roach88/ordersync/internal/ir"
)

// Row maps field names to scalar values. Missing source data is ir.IRNull,
// never an absent key.
type Row map[string]ir.IRValue

// Batch is a set of rows sharing one ordered field list.
type Batch struct {
	Fields []string
	Rows   []Row
}

// Key returns the row's value for field rendered as a cell.
func (r Row) Key(field string) string {
	return Cell(r[field])
}

// Cell renders a value as destination cell text.
//
// Null renders as "", strings as is, numbers as their JSON text and booleans
// as true/false. Composites render as canonical JSON; a composite that
// cannot be rendered yields "".
func Cell(v ir.IRValue) string {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return ""
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10)
	case ir.IRNumber:
		return string(val)
	case ir.IRBool:
		return strconv.FormatBool(bool(val))
	default:
		b, err := ir.MarshalCanonical(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Project renders r in the given column order. Columns the row lacks render
// as ""; row fields outside columns are dropped.
func (r Row) Project(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = Cell(r[c])
	}
	return out
}

// Records renders the batch as a header record followed by one record per
// row, in b.Fields order.
func (b Batch) Records() [][]string {
	out := make([][]string, 0, len(b.Rows)+1)
	out = append(out, append([]string(nil), b.Fields...))
	for _, r := range b.Rows {
		out = append(out, r.Project(b.Fields))
	}
	return out
}

// IndexOf returns the position of field in header, or -1.
func IndexOf(header []string, field string) int {
	for i, h := range header {
		if h == field {
			return i
		}
	}
	return -1
}
