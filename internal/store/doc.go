// Package store provides SQLite-backed durable storage for ordersync.
//
// The store holds two independent things:
//   - Runs: the run ledger, one row per sync pass, capped at the 50 most
//     recent entries (Store implements ledger.Ledger)
//   - Workbook: a local spreadsheet stand-in, sheets of string cells keyed
//     by destination id (Workbook implements destination.Client)
//
// # Ordering
//
//   - Ledger entries are ordered by seq INTEGER, assigned at insert, never
//     by timestamp, so two passes in the same instant still list in order
//   - Workbook sheets list in creation order (position), rows by row_num
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: 5 second lock wait
//   - foreign_keys=ON: Workbook rows cascade with their sheet
//
// The schema is embedded (schema.sql) and applied on Open; PRAGMA
// user_version tracks incremental migrations.
package store
