package core

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidCellID is returned when text does not name a cell.
var ErrInvalidCellID = errors.New("invalid cell id")

// maxColumn bounds column labels to seven letters ("FXSHRXW"), which keeps
// every column index within int32 range.
const maxColumn = 1<<31 - 1

// CellID identifies a cell by its 1-based column and row.
// Two labels naming the same coordinates compare equal.
type CellID struct {
	Col int
	Row int
}

// String returns the canonical label, e.g. "AB12".
func (c CellID) String() string {
	return ColumnLabel(c.Col) + strconv.Itoa(c.Row)
}

// IsValid reports whether both coordinates are positive.
func (c CellID) IsValid() bool {
	return c.Col > 0 && c.Row > 0
}

// Less orders cells row-major: by row, then by column.
func (c CellID) Less(other CellID) bool {
	if c.Row != other.Row {
		return c.Row < other.Row
	}
	return c.Col < other.Col
}

// ParseCellID parses an uppercase column label followed by a row number.
// Leading zeros in the row are accepted and dropped ("A01" is "A1").
func ParseCellID(s string) (CellID, error) {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return CellID{}, fmt.Errorf("%w: %q", ErrInvalidCellID, s)
	}
	for j := i; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return CellID{}, fmt.Errorf("%w: %q", ErrInvalidCellID, s)
		}
	}

	col, err := ColumnIndex(s[:i])
	if err != nil {
		return CellID{}, fmt.Errorf("%w: %q", ErrInvalidCellID, s)
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil || row <= 0 {
		return CellID{}, fmt.Errorf("%w: %q: row must be a positive integer", ErrInvalidCellID, s)
	}
	return CellID{Col: col, Row: row}, nil
}

// MustParseCellID is like ParseCellID but panics on error.
// Intended for tests and package-level fixtures.
func MustParseCellID(s string) CellID {
	id, err := ParseCellID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ColumnLabel converts a 1-based column index to its base-26 label:
// 1 -> A, 26 -> Z, 27 -> AA.
func ColumnLabel(n int) string {
	if n <= 0 {
		return ""
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// ColumnIndex converts an uppercase base-26 label to its 1-based index.
func ColumnIndex(label string) (int, error) {
	if label == "" {
		return 0, fmt.Errorf("%w: empty column label", ErrInvalidCellID)
	}
	n := 0
	for i := 0; i < len(label); i++ {
		ch := label[i]
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("%w: column label %q", ErrInvalidCellID, label)
		}
		n = n*26 + int(ch-'A'+1)
		if n > maxColumn {
			return 0, fmt.Errorf("%w: column label %q out of range", ErrInvalidCellID, label)
		}
	}
	return n, nil
}
