package table

import (
	"fmt"
	"strings"
)

// Range addresses a rectangular region of a sheet. A zero FirstRow means
// the whole sheet; a zero LastRow leaves the range open downwards; an empty
// Column spans all columns.
//
//	Whole("s")            s
//	Rows("s", 1, 2)       s!1:2
//	ColumnFrom("s", 2, 2) s!C2:C
//	Origin("s")           s!A1
type Range struct {
	Sheet    string
	FirstRow int
	LastRow  int
	Column   string

	// Anchor renders a single cell, used as the origin of a write.
	Anchor bool
}

// Whole addresses every cell of sheet.
func Whole(sheet string) Range {
	return Range{Sheet: sheet}
}

// Rows addresses rows first through last, all columns.
func Rows(sheet string, first, last int) Range {
	return Range{Sheet: sheet, FirstRow: first, LastRow: last}
}

// ColumnFrom addresses one column from row first down to the last row.
func ColumnFrom(sheet string, col, first int) Range {
	return Range{Sheet: sheet, FirstRow: first, Column: ColumnLetter(col)}
}

// Origin addresses cell A1, the anchor of a full write.
func Origin(sheet string) Range {
	return Range{Sheet: sheet, FirstRow: 1, Column: "A", Anchor: true}
}

// String renders the range in A1 notation.
func (r Range) String() string {
	name := QuoteSheet(r.Sheet)
	switch {
	case r.FirstRow == 0:
		return name
	case r.Anchor:
		return fmt.Sprintf("%s!%s%d", name, r.Column, r.FirstRow)
	case r.Column == "":
		return fmt.Sprintf("%s!%d:%d", name, r.FirstRow, r.LastRow)
	case r.LastRow == 0:
		return fmt.Sprintf("%s!%s%d:%s", name, r.Column, r.FirstRow, r.Column)
	default:
		return fmt.Sprintf("%s!%s%d:%s%d", name, r.Column, r.FirstRow, r.Column, r.LastRow)
	}
}

// QuoteSheet quotes a sheet name for A1 notation when it contains anything
// other than letters, digits and underscores. Embedded quotes are doubled.
func QuoteSheet(name string) string {
	plain := name != ""
	for _, c := range name {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// ColumnLetter converts a zero-based column index to its A1 letters:
// 0 is A, 25 is Z, 26 is AA.
func ColumnLetter(idx int) string {
	if idx < 0 {
		return ""
	}
	var b []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// ColumnIndex is the inverse of ColumnLetter. It returns -1 for input that
// is not made of uppercase letters.
func ColumnIndex(letters string) int {
	if letters == "" {
		return -1
	}
	n := 0
	for _, c := range letters {
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A'+1)
	}
	return n - 1
}
