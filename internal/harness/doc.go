// Package harness runs reconcile scenarios described in YAML.
//
// A scenario fixes a run date, the destination sheet's starting contents
// and a list of raw orders. The harness normalizes the orders, reconciles
// them into an in-memory destination through a call recorder, and checks
// the outcome, the destination call trace and the final sheet.
//
// # Scenario Format
//
//	name: same_day_dedup_append
//	description: "Rows already present today are not written again"
//	run_date: "2024-05-03"
//	sheet: Orders
//	initial:
//	  - [extractionDate, orderId]
//	  - ["2024-05-03", A]
//	orders:
//	  - {orderId: A}
//	  - {orderId: C}
//	fail_on:
//	  write_rows: "quota exceeded"
//	expect:
//	  strategy: dedup_append
//	  rows_written: 1
//	assertions:
//	  - type: trace_order
//	    ops: [sub_resources, read_rows, read_rows, write_rows]
//	  - type: trace_contains
//	    call: "write_rows Orders rows=1 mode=append"
//	  - type: final_rows
//	    count: 3
//	  - type: final_cell
//	    row: 3
//	    column: orderId
//	    value: C
//
// A scenario without initial rows starts with the sheet missing.
//
// # Assertion Types
//
//   - trace_contains: a recorded call renders exactly as call
//   - trace_order: the recorded operations, in order, equal ops
//   - trace_count: op was called exactly count times
//   - final_rows: the sheet holds count rows, header included
//   - final_cell: the cell at row (1-based) under header column has value
//
// # Golden Files
//
// RunWithGolden compares a canonical JSON snapshot of the outcome against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
