package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ordersync/internal/table"
)

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(r, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(r.Trace, a.Call)
	case AssertTraceOrder:
		return assertTraceOrder(r.Trace, a.Ops)
	case AssertTraceCount:
		return assertTraceCount(r.Trace, a.Op, a.Count)
	case AssertFinalRows:
		return assertFinalRows(r.Final, a.Count)
	case AssertFinalCell:
		return assertFinalCell(r.Final, a.Row, a.Column, a.Value)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertTraceContains(trace []string, call string) error {
	if slices.Contains(trace, call) {
		return nil
	}
	return fmt.Errorf("call %q not found in trace:\n  %s", call, strings.Join(trace, "\n  "))
}

func assertTraceOrder(trace []string, ops []string) error {
	got := traceOps(trace)
	if slices.Equal(got, ops) {
		return nil
	}
	return fmt.Errorf("expected ops %v, got %v", ops, got)
}

func assertTraceCount(trace []string, op string, count int) error {
	n := 0
	for _, o := range traceOps(trace) {
		if o == op {
			n++
		}
	}
	if n != count {
		return fmt.Errorf("expected %s %d time(s), got %d", op, count, n)
	}
	return nil
}

func assertFinalRows(final [][]string, count int) error {
	if len(final) != count {
		return fmt.Errorf("expected %d rows, got %d", count, len(final))
	}
	return nil
}

func assertFinalCell(final [][]string, row int, column, value string) error {
	if len(final) == 0 {
		return fmt.Errorf("sheet is empty")
	}
	col := table.IndexOf(final[0], column)
	if col < 0 {
		return fmt.Errorf("header has no %q column", column)
	}
	if row > len(final) {
		return fmt.Errorf("row %d out of range (%d rows)", row, len(final))
	}
	var got string
	if col < len(final[row-1]) {
		got = final[row-1][col]
	}
	if got != value {
		return fmt.Errorf("cell %s%d: expected %q, got %q", table.ColumnLetter(col), row, value, got)
	}
	return nil
}

// traceOps extracts the operation name from each trace line.
func traceOps(trace []string) []string {
	out := make([]string, len(trace))
	for i, line := range trace {
		op, _, _ := strings.Cut(line, " ")
		out[i] = op
	}
	return out
}
