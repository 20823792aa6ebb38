// Package engine implements the reconciliation engine: it decides how one
// batch of today's rows reaches a sheet whose current content is unknown,
// and executes that decision.
//
// DECISION:
//
// The sheet is probed once (header row and first data row). The freshness
// predicate holds when the sheet exists, has both rows, and the first data
// row's extractionDate equals the run date.
//
//   - Fresh: Dedup Append. The key column is read and only rows whose
//     orderId is not already present are appended, in the existing header's
//     column order.
//   - Not fresh: Full Rewrite. The sheet is cleared and the batch is written
//     at A1 with its own header.
//
// A missing sheet is created first, so it always takes the Full Rewrite
// branch.
//
// GUARANTEES:
//
// Reconciling the same batch twice on the same day writes nothing the second
// time. A sheet last written on another day is always replaced. A header
// without the key column fails with SCHEMA_MISMATCH before anything is read
// beyond the probe, cleared or written.
//
// The engine never retries. Every destination failure aborts the reconcile
// and is returned as DESTINATION_UNAVAILABLE; the next scheduled pass is the
// retry.
package engine
