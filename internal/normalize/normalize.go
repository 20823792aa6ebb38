// Package normalize flattens raw upstream orders into canonical rows.
//
// Normalize is total: every order, including an empty object, yields a row
// with exactly the fields of Fields(), in that order. Absent branches at any
// depth become ir.IRNull. Only the first element of each nested list
// (items, logistics info, delivery ids, transactions, payments, gift cards,
// price tags, categories, totals, rates and benefits) is projected.
package normalize

import (
	"github.com/roach88/ordersync/internal/ir"
	"github.com/roach88/ordersync/internal/table"
)

// KeyField is the dedup key of every row.
const KeyField = "orderId"

// DateField holds the run's logical date.
const DateField = "extractionDate"

var fieldNames = func() []string {
	names := make([]string, len(fieldTable))
	for i, f := range fieldTable {
		names[i] = f.Name
	}
	return names
}()

// Fields returns the ordered column names of the canonical row.
func Fields() []string {
	return append([]string(nil), fieldNames...)
}

// Describe returns the canonical field table.
func Describe() []Field {
	return append([]Field(nil), fieldTable...)
}

// Normalize flattens one raw order. runDate is stamped into DateField.
func Normalize(order ir.IRValue, runDate string) table.Row {
	row := make(table.Row, len(fieldTable))
	for _, f := range fieldTable {
		row[f.Name] = project(order, f, runDate)
	}
	return row
}

// Batch normalizes orders into a batch with the canonical field order.
func Batch(orders []ir.IRValue, runDate string) table.Batch {
	rows := make([]table.Row, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, Normalize(o, runDate))
	}
	return table.Batch{Fields: Fields(), Rows: rows}
}

func project(order ir.IRValue, f Field, runDate string) ir.IRValue {
	switch f.Kind {
	case KindRunDate:
		return ir.IRString(runDate)
	case KindComposite:
		v, ok := ir.Lookup(order, f.Path)
		if !ok || falsy(v) {
			return ir.IRNull{}
		}
		return stringify(v)
	default:
		v, ok := ir.Lookup(order, f.Path)
		if !ok {
			return ir.IRNull{}
		}
		if ir.IsComposite(v) {
			return stringify(v)
		}
		return v
	}
}

// falsy reports the scalar values a composite field treats as absent.
func falsy(v ir.IRValue) bool {
	switch val := v.(type) {
	case ir.IRBool:
		return !bool(val)
	case ir.IRString:
		return val == ""
	case ir.IRInt:
		return val == 0
	case ir.IRNumber:
		return isZeroLiteral(string(val))
	default:
		return false
	}
}

func isZeroLiteral(s string) bool {
	for _, c := range s {
		switch c {
		case '0', '.', '-', '+':
		case 'e', 'E':
			return true
		default:
			return false
		}
	}
	return true
}

func stringify(v ir.IRValue) ir.IRValue {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return ir.IRNull{}
	}
	return ir.IRString(b)
}
