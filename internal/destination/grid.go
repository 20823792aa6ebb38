package destination

import (
	"fmt"

	"github.com/roach88/ordersync/internal/table"
)

// The grid helpers apply range semantics to a sheet held as rows of cells.
// They follow the spreadsheet API: reads drop trailing empty rows and
// trailing empty cells, appends land after the last non-empty row.

// ReadGrid returns the cells of rows inside r.
func ReadGrid(rows [][]string, r table.Range) [][]string {
	first, last := bounds(len(rows), r)
	col := table.ColumnIndex(r.Column)

	var out [][]string
	for i := first; i < last; i++ {
		var cells []string
		if r.Column == "" || r.FirstRow == 0 {
			cells = trimRow(rows[i])
		} else if col >= 0 && col < len(rows[i]) && rows[i][col] != "" {
			cells = []string{rows[i][col]}
		}
		out = append(out, cloneCells(cells))
	}
	return trimTrailing(out)
}

// ClearGrid empties the cells inside r and returns the updated rows.
func ClearGrid(rows [][]string, r table.Range) [][]string {
	if r.FirstRow == 0 {
		return nil
	}
	first, last := bounds(len(rows), r)
	col := table.ColumnIndex(r.Column)
	for i := first; i < last; i++ {
		if r.Column == "" {
			rows[i] = nil
			continue
		}
		if col >= 0 && col < len(rows[i]) {
			rows[i][col] = ""
		}
	}
	return trimTrailing(rows)
}

// WriteGrid writes values into rows and returns the updated rows.
// Overwrite places values at r's anchor cell; Append places them in the
// first column after the last non-empty row.
func WriteGrid(rows [][]string, r table.Range, values [][]string, mode WriteMode) ([][]string, error) {
	startRow, startCol := 0, 0
	switch mode {
	case Overwrite:
		if r.FirstRow > 0 {
			startRow = r.FirstRow - 1
		}
		if r.Column != "" {
			startCol = table.ColumnIndex(r.Column)
			if startCol < 0 {
				return nil, fmt.Errorf("invalid column %q", r.Column)
			}
		}
	case Append:
		startRow = len(trimTrailing(rows))
	default:
		return nil, fmt.Errorf("unknown write mode %q", mode)
	}

	for len(rows) < startRow+len(values) {
		rows = append(rows, nil)
	}
	for i, vals := range values {
		row := rows[startRow+i]
		for len(row) < startCol+len(vals) {
			row = append(row, "")
		}
		copy(row[startCol:], vals)
		rows[startRow+i] = row
	}
	return rows, nil
}

func bounds(n int, r table.Range) (int, int) {
	if r.FirstRow == 0 {
		return 0, n
	}
	first := min(r.FirstRow-1, n)
	last := n
	if r.LastRow > 0 {
		last = min(r.LastRow, n)
	}
	if r.Anchor {
		last = min(first+1, n)
	}
	return first, last
}

func trimRow(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}

func trimTrailing(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && len(trimRow(rows[end-1])) == 0 {
		end--
	}
	return rows[:end]
}

func cloneCells(cells []string) []string {
	if cells == nil {
		return []string{}
	}
	return append([]string(nil), cells...)
}
