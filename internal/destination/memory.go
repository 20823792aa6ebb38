package destination

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/ordersync/internal/table"
)

// Op names a Client method, for fault injection and call traces.
type Op string

const (
	OpSubResources   Op = "sub_resources"
	OpAddSubResource Op = "add_sub_resource"
	OpReadRows       Op = "read_rows"
	OpClear          Op = "clear"
	OpWriteRows      Op = "write_rows"
)

// Memory is an in-process workbook store. It backs tests and dry runs.
// The zero value is not usable; call NewMemory.
type Memory struct {
	mu        sync.Mutex
	workbooks map[string]*workbook
	failures  map[Op]error
}

type workbook struct {
	order  []string
	sheets map[string][][]string
}

var _ Client = (*Memory)(nil)

// NewMemory creates an empty in-memory destination.
func NewMemory() *Memory {
	return &Memory{
		workbooks: make(map[string]*workbook),
		failures:  make(map[Op]error),
	}
}

// Seed replaces the contents of a sheet, creating it if needed.
func (m *Memory) Seed(destinationID, sheet string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wb := m.book(destinationID)
	if _, ok := wb.sheets[sheet]; !ok {
		wb.order = append(wb.order, sheet)
	}
	wb.sheets[sheet] = cloneRows(rows)
}

// Sheet returns a copy of a sheet's rows and whether it exists.
func (m *Memory) Sheet(destinationID, sheet string) ([][]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wb, ok := m.workbooks[destinationID]
	if !ok {
		return nil, false
	}
	rows, ok := wb.sheets[sheet]
	if !ok {
		return nil, false
	}
	return cloneRows(rows), true
}

// FailOn makes every later call of op return err. A nil err clears the
// failure.
func (m *Memory) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *Memory) SubResources(ctx context.Context, destinationID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpSubResources); err != nil {
		return nil, err
	}
	return slices.Clone(m.book(destinationID).order), nil
}

func (m *Memory) AddSubResource(ctx context.Context, destinationID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpAddSubResource); err != nil {
		return err
	}
	wb := m.book(destinationID)
	if _, ok := wb.sheets[name]; ok {
		return fmt.Errorf("sheet %q already exists", name)
	}
	wb.order = append(wb.order, name)
	wb.sheets[name] = nil
	return nil
}

func (m *Memory) ReadRows(ctx context.Context, destinationID string, r table.Range) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpReadRows); err != nil {
		return nil, err
	}
	rows, err := m.sheet(destinationID, r.Sheet)
	if err != nil {
		return nil, err
	}
	return ReadGrid(rows, r), nil
}

func (m *Memory) Clear(ctx context.Context, destinationID string, r table.Range) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpClear); err != nil {
		return err
	}
	rows, err := m.sheet(destinationID, r.Sheet)
	if err != nil {
		return err
	}
	m.workbooks[destinationID].sheets[r.Sheet] = ClearGrid(rows, r)
	return nil
}

func (m *Memory) WriteRows(ctx context.Context, destinationID string, r table.Range, values [][]string, mode WriteMode) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, OpWriteRows); err != nil {
		return 0, err
	}
	rows, err := m.sheet(destinationID, r.Sheet)
	if err != nil {
		return 0, err
	}
	updated, err := WriteGrid(rows, r, values, mode)
	if err != nil {
		return 0, err
	}
	m.workbooks[destinationID].sheets[r.Sheet] = updated
	return len(values), nil
}

func (m *Memory) check(ctx context.Context, op Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.failures[op]
}

func (m *Memory) book(destinationID string) *workbook {
	wb, ok := m.workbooks[destinationID]
	if !ok {
		wb = &workbook{sheets: make(map[string][][]string)}
		m.workbooks[destinationID] = wb
	}
	return wb
}

func (m *Memory) sheet(destinationID, name string) ([][]string, error) {
	wb, ok := m.workbooks[destinationID]
	if !ok {
		return nil, fmt.Errorf("destination %q not found", destinationID)
	}
	rows, ok := wb.sheets[name]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: sheet %q not found", name)
	}
	return rows, nil
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
