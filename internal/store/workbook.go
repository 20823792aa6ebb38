package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/ordersync/internal/destination"
	"github.com/roach88/ordersync/internal/table"
)

// Workbook is a SQLite-backed destination. It stands in for a spreadsheet
// when running offline and mirrors the same range semantics.
type Workbook struct {
	db *sql.DB
}

var _ destination.Client = (*Workbook)(nil)

// Workbook returns the store's workbook destination.
func (s *Store) Workbook() *Workbook {
	return &Workbook{db: s.db}
}

// SubResources lists sheet names in creation order.
func (w *Workbook) SubResources(ctx context.Context, destinationID string) ([]string, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT name FROM sheets
		WHERE destination_id = ?
		ORDER BY position ASC
	`, destinationID)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list sheets: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddSubResource creates an empty sheet. Creating an existing sheet fails.
func (w *Workbook) AddSubResource(ctx context.Context, destinationID, name string) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO sheets (destination_id, name, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM sheets WHERE destination_id = ?))
	`, destinationID, name, destinationID)
	if err != nil {
		return fmt.Errorf("add sheet %q: %w", name, err)
	}
	return nil
}

// ReadRows returns the values inside r.
func (w *Workbook) ReadRows(ctx context.Context, destinationID string, r table.Range) ([][]string, error) {
	grid, err := loadGrid(ctx, w.db, destinationID, r.Sheet)
	if err != nil {
		return nil, err
	}
	return destination.ReadGrid(grid, r), nil
}

// Clear empties the cells inside r.
func (w *Workbook) Clear(ctx context.Context, destinationID string, r table.Range) error {
	return w.update(ctx, destinationID, r.Sheet, func(grid [][]string) ([][]string, error) {
		return destination.ClearGrid(grid, r), nil
	})
}

// WriteRows writes values into the sheet and returns the number of rows
// written.
func (w *Workbook) WriteRows(ctx context.Context, destinationID string, r table.Range, values [][]string, mode destination.WriteMode) (int, error) {
	err := w.update(ctx, destinationID, r.Sheet, func(grid [][]string) ([][]string, error) {
		return destination.WriteGrid(grid, r, values, mode)
	})
	if err != nil {
		return 0, err
	}
	return len(values), nil
}

// update loads a sheet, applies fn and stores the result in one transaction.
func (w *Workbook) update(ctx context.Context, destinationID, sheet string, fn func([][]string) ([][]string, error)) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	grid, err := loadGrid(ctx, tx, destinationID, sheet)
	if err != nil {
		return err
	}
	grid, err = fn(grid)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM sheet_rows WHERE destination_id = ? AND sheet = ?
	`, destinationID, sheet); err != nil {
		return fmt.Errorf("rewrite sheet %q: %w", sheet, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sheet_rows (destination_id, sheet, row_num, cells)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("rewrite sheet %q: %w", sheet, err)
	}
	defer stmt.Close()

	for i, row := range grid {
		if len(row) == 0 {
			continue
		}
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("rewrite sheet %q: row %d: %w", sheet, i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, destinationID, sheet, i+1, string(cells)); err != nil {
			return fmt.Errorf("rewrite sheet %q: row %d: %w", sheet, i+1, err)
		}
	}

	return tx.Commit()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// loadGrid reads a sheet into rows of cells. Gaps between stored rows come
// back as empty rows.
func loadGrid(ctx context.Context, q querier, destinationID, sheet string) ([][]string, error) {
	var exists int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sheets WHERE destination_id = ? AND name = ?
	`, destinationID, sheet).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("load sheet %q: %w", sheet, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("unable to parse range: sheet %q not found", sheet)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT row_num, cells FROM sheet_rows
		WHERE destination_id = ? AND sheet = ?
		ORDER BY row_num ASC
	`, destinationID, sheet)
	if err != nil {
		return nil, fmt.Errorf("load sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var (
			num   int
			cells string
		)
		if err := rows.Scan(&num, &cells); err != nil {
			return nil, fmt.Errorf("load sheet %q: %w", sheet, err)
		}
		for len(grid) < num-1 {
			grid = append(grid, nil)
		}
		var row []string
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return nil, fmt.Errorf("load sheet %q: row %d: %w", sheet, num, err)
		}
		grid = append(grid, row)
	}
	return grid, rows.Err()
}
