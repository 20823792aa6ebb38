package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "file name must match scenario name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsMismatchedExpectation(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong
description: "expects the wrong strategy"
run_date: "2024-05-03"
orders:
  - {orderId: A}
expect:
  strategy: dedup_append
  rows_written: 5
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `expected strategy "dedup_append", got "full_rewrite"`)
	assert.Contains(t, result.Errors[1], "expected 5 rows written, got 1")
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: fails
description: "destination down"
run_date: "2024-05-03"
orders: []
fail_on:
  sub_resources: "unavailable"
expect:
  rows_written: 0
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "DESTINATION_UNAVAILABLE", result.ErrorCode)
	assert.Contains(t, result.Errors[0], "expected success")
}

func TestRun_FailedAssertions(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: assertions
description: "every assertion type fails once"
run_date: "2024-05-03"
orders:
  - {orderId: A}
expect:
  strategy: full_rewrite
  rows_written: 1
assertions:
  - type: trace_contains
    call: "write_rows Orders rows=1 mode=append"
  - type: trace_order
    ops: [sub_resources]
  - type: trace_count
    op: clear
    count: 2
  - type: final_rows
    count: 9
  - type: final_cell
    row: 2
    column: orderId
    value: B
  - type: final_cell
    row: 2
    column: nope
    value: B
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[4], `cell B2: expected "B", got "A"`)
	assert.Contains(t, result.Errors[5], `header has no "nope" column`)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `description: d
run_date: "2024-05-03"
orders: []
expect: {rows_written: 0}`,
			want: "name is required",
		},
		{
			name: "unknown field",
			yaml: `name: x
description: d
run_date: "2024-05-03"
order: []
expect: {rows_written: 0}`,
			want: "failed to parse YAML",
		},
		{
			name: "bad run date",
			yaml: `name: x
description: d
run_date: "May 3"
orders: []
expect: {rows_written: 0}`,
			want: "run_date must be YYYY-MM-DD",
		},
		{
			name: "unknown strategy",
			yaml: `name: x
description: d
run_date: "2024-05-03"
orders: []
expect: {strategy: merge, rows_written: 0}`,
			want: "unknown strategy",
		},
		{
			name: "strategy with error",
			yaml: `name: x
description: d
run_date: "2024-05-03"
orders: []
expect: {strategy: full_rewrite, error_code: SCHEMA_MISMATCH, rows_written: 0}`,
			want: "exclusive",
		},
		{
			name: "unknown fail_on op",
			yaml: `name: x
description: d
run_date: "2024-05-03"
orders: []
fail_on: {delete_rows: boom}
expect: {rows_written: 0}`,
			want: `unknown operation "delete_rows"`,
		},
		{
			name: "unknown assertion",
			yaml: `name: x
description: d
run_date: "2024-05-03"
orders: []
expect: {rows_written: 0}
assertions:
  - type: final_state`,
			want: `unknown assertion type "final_state"`,
		},
		{
			name: "final_cell without row",
			yaml: `name: x
description: d
run_date: "2024-05-03"
orders: []
expect: {rows_written: 0}
assertions:
  - type: final_cell
    column: orderId`,
			want: "row must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_DefaultSheet(t *testing.T) {
	s, err := ParseScenario([]byte(`name: x
description: d
run_date: "2024-05-03"
orders: []
expect: {rows_written: 0}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultSheet, s.Sheet)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	assert.Error(t, err)
}

func TestMarshalSnapshot(t *testing.T) {
	data, err := MarshalSnapshot("s", &Result{
		Strategy:    "dedup_append",
		RowsWritten: 1,
		Trace:       []string{"sub_resources"},
		Final:       [][]string{{"extractionDate", "orderId"}, {"2024-05-03", "A"}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"final_keys":["A"],"final_rows":2,"rows_written":1,"scenario_name":"s","strategy":"dedup_append","trace":["sub_resources"]}`,
		string(data))
}
