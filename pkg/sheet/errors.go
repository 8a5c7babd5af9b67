package sheet

import (
	"errors"
	"strings"
)

// Sentinel errors returned by SetCell.
var (
	// ErrCircularDependency is wrapped by *CycleError.
	ErrCircularDependency = errors.New("circular dependency")
	// ErrInvalidCellName is returned for names that are not [A-Z]+[0-9]+.
	ErrInvalidCellName = errors.New("invalid cell name")
	// ErrOutOfBounds is returned for cells outside a bounded sheet.
	ErrOutOfBounds = errors.New("cell out of bounds")
)

// CycleError reports an assignment rejected because the new formula would
// make a cell depend on itself.
type CycleError struct {
	Cell string
	Path []string // Cell ... Cell
}

func (e *CycleError) Error() string {
	return "circular dependency: " + strings.Join(e.Path, " -> ")
}

// Unwrap lets errors.Is match ErrCircularDependency.
func (e *CycleError) Unwrap() error {
	return ErrCircularDependency
}
