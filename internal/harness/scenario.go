package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ordersync/internal/destination"
	"github.com/roach88/ordersync/internal/engine"
	"github.com/roach88/ordersync/internal/syncerr"
)

// DefaultSheet is the sheet name used when a scenario names none.
const DefaultSheet = "Orders"

// Scenario defines one reconcile scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunDate is the pass's logical date (YYYY-MM-DD).
	RunDate string `yaml:"run_date"`

	// Sheet is the destination sheet. Defaults to DefaultSheet.
	Sheet string `yaml:"sheet,omitempty"`

	// Initial is the sheet's starting contents. Nil means the sheet does
	// not exist; an empty list means it exists and is empty.
	Initial [][]string `yaml:"initial,omitempty"`

	// Exists forces the sheet to exist even without initial rows.
	Exists bool `yaml:"exists,omitempty"`

	// Orders are raw order documents, normalized with RunDate.
	Orders []map[string]any `yaml:"orders"`

	// FailOn injects a destination failure per operation name.
	FailOn map[string]string `yaml:"fail_on,omitempty"`

	// Expect is the expected reconcile outcome.
	Expect Expectation `yaml:"expect"`

	// Assertions validate the call trace and final sheet.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expectation is the expected reconcile outcome. An empty ErrorCode means
// the reconcile must succeed.
type Expectation struct {
	Strategy    string `yaml:"strategy,omitempty"`
	RowsWritten int    `yaml:"rows_written"`
	Duplicates  int    `yaml:"duplicates,omitempty"`
	ErrorCode   string `yaml:"error_code,omitempty"`
}

// Assertion validates the trace or the final sheet.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Call is a rendered call (trace_contains).
	Call string `yaml:"call,omitempty"`

	// Op is an operation name (trace_count).
	Op string `yaml:"op,omitempty"`

	// Ops is the expected operation sequence (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is an expected number (trace_count, final_rows).
	Count int `yaml:"count,omitempty"`

	// Row is a 1-based sheet row (final_cell).
	Row int `yaml:"row,omitempty"`

	// Column is a header name (final_cell).
	Column string `yaml:"column,omitempty"`

	// Value is the expected cell text (final_cell).
	Value string `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalRows     = "final_rows"
	AssertFinalCell     = "final_cell"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Sheet == "" {
		scenario.Sheet = DefaultSheet
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.RunDate) != len(engine.RunDateLayout) {
		return fmt.Errorf("run_date must be YYYY-MM-DD, got %q", s.RunDate)
	}

	switch engine.Strategy(s.Expect.Strategy) {
	case "", engine.StrategyFullRewrite, engine.StrategyDedupAppend:
	default:
		return fmt.Errorf("expect.strategy: unknown strategy %q", s.Expect.Strategy)
	}
	if s.Expect.ErrorCode != "" && s.Expect.Strategy != "" {
		return fmt.Errorf("expect: strategy and error_code are exclusive")
	}
	switch syncerr.Code(s.Expect.ErrorCode) {
	case "", syncerr.CodeDestinationUnavailable, syncerr.CodeSchemaMismatch, syncerr.CodeCancelled:
	default:
		return fmt.Errorf("expect.error_code: unexpected code %q", s.Expect.ErrorCode)
	}

	for op := range s.FailOn {
		if !knownOp(op) {
			return fmt.Errorf("fail_on: unknown operation %q", op)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
		for _, op := range a.Ops {
			if !knownOp(op) {
				return fmt.Errorf("assertions[%d]: unknown operation %q", index, op)
			}
		}
	case AssertTraceCount:
		if !knownOp(a.Op) {
			return fmt.Errorf("assertions[%d]: known op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalRows:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for final_rows", index)
		}
	case AssertFinalCell:
		if a.Row < 1 {
			return fmt.Errorf("assertions[%d]: row must be at least 1 for final_cell", index)
		}
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for final_cell", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func knownOp(op string) bool {
	switch destination.Op(op) {
	case destination.OpSubResources, destination.OpAddSubResource, destination.OpReadRows,
		destination.OpClear, destination.OpWriteRows:
		return true
	}
	return false
}
