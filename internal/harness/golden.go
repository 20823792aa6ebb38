package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ordersync/internal/ir"
	"github.com/roach88/ordersync/internal/normalize"
	"github.com/roach88/ordersync/internal/table"
)

// Snapshot is the golden form of a scenario outcome. The final sheet is
// reduced to its row count and key column so golden files stay readable.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts the snapshot to plain Go values for
// ir.MarshalCanonical.
func (s Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Result.Trace))
	for i, line := range s.Result.Trace {
		trace[i] = line
	}

	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"rows_written":  s.Result.RowsWritten,
		"trace":         trace,
	}
	if s.Result.Strategy != "" {
		m["strategy"] = s.Result.Strategy
	}
	if s.Result.ErrorCode != "" {
		m["error_code"] = s.Result.ErrorCode
	}
	if s.Result.Duplicates > 0 {
		m["duplicates"] = s.Result.Duplicates
	}
	if s.Result.Final != nil {
		m["final_rows"] = len(s.Result.Final)
		m["final_keys"] = keyColumn(s.Result.Final)
	}
	return m
}

// keyColumn returns the order ids below the header, or an empty list when
// the sheet has no order id column.
func keyColumn(rows [][]string) []any {
	keys := []any{}
	if len(rows) == 0 {
		return keys
	}
	col := table.IndexOf(rows[0], normalize.KeyField)
	if col < 0 {
		return keys
	}
	for _, r := range rows[1:] {
		if col < len(r) {
			keys = append(keys, r[col])
		} else {
			keys = append(keys, "")
		}
	}
	return keys
}

// MarshalSnapshot renders a scenario outcome as canonical JSON.
func MarshalSnapshot(name string, r *Result) ([]byte, error) {
	return ir.MarshalCanonical(Snapshot{ScenarioName: name, Result: r}.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}
