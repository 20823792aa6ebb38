package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/ordersync/internal/ledger"
)

var _ ledger.Ledger = (*Store)(nil)

// Append records a run summary and evicts entries beyond ledger.Capacity.
// Both happen in one transaction.
func (s *Store) Append(ctx context.Context, sum ledger.RunSummary) error {
	results := sum.Results
	if results == nil {
		results = []ledger.RunResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("append run: marshal results: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, timestamp, run_date, overall_success, message, total_rows, duration_ns, results)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?, ?)
	`,
		sum.ID,
		sum.Timestamp.UTC().Format(time.RFC3339Nano),
		sum.RunDate,
		sum.OverallSuccess,
		sum.Message,
		sum.TotalRows,
		int64(sum.Duration),
		string(resultsJSON),
	)
	if err != nil {
		return fmt.Errorf("append run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM runs
		WHERE seq NOT IN (SELECT seq FROM runs ORDER BY seq DESC LIMIT ?)
	`, ledger.Capacity)
	if err != nil {
		return fmt.Errorf("append run: evict: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append run: commit: %w", err)
	}
	return nil
}

// List returns up to limit run summaries, most recent first.
// A limit of zero or less returns every retained entry.
func (s *Store) List(ctx context.Context, limit int) ([]ledger.RunSummary, error) {
	if limit <= 0 {
		limit = ledger.Capacity
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, run_date, overall_success, message, total_rows, duration_ns, results
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []ledger.RunSummary
	for rows.Next() {
		sum, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// GetRun returns one run summary by id.
func (s *Store) GetRun(ctx context.Context, id string) (ledger.RunSummary, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, run_date, overall_success, message, total_rows, duration_ns, results
		FROM runs
		WHERE id = ?
	`, id)
	sum, err := scanRun(row)
	if err == sql.ErrNoRows {
		return ledger.RunSummary{}, false, nil
	}
	if err != nil {
		return ledger.RunSummary{}, false, err
	}
	return sum, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (ledger.RunSummary, error) {
	var (
		sum         ledger.RunSummary
		ts          string
		durationNS  int64
		resultsJSON string
	)
	if err := sc.Scan(&sum.ID, &ts, &sum.RunDate, &sum.OverallSuccess, &sum.Message, &sum.TotalRows, &durationNS, &resultsJSON); err != nil {
		if err == sql.ErrNoRows {
			return sum, err
		}
		return sum, fmt.Errorf("scan run: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return sum, fmt.Errorf("scan run %s: timestamp: %w", sum.ID, err)
	}
	sum.Timestamp = t
	sum.Duration = time.Duration(durationNS)

	if err := json.Unmarshal([]byte(resultsJSON), &sum.Results); err != nil {
		return sum, fmt.Errorf("scan run %s: results: %w", sum.ID, err)
	}
	return sum, nil
}
