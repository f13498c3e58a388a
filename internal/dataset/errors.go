package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingInput means no candidate unified table exists. Fatal.
	ErrMissingInput = errors.New("unified data file not found")

	// ErrMissingOptionalInput means the precomputed forecast table is absent.
	// Only the export degrades.
	ErrMissingOptionalInput = errors.New("forecast data file not found")

	// ErrUnparsableDate marks a date cell that matched no accepted layout
	ErrUnparsableDate = errors.New("unparsable date")

	// ErrUnparsableNumber marks a numeric cell that is not a number
	ErrUnparsableNumber = errors.New("unparsable number")

	// ErrRaggedRow marks a row holding values past the last header column
	ErrRaggedRow = errors.New("row has more values than the header")
)

// MissingInputError lists every candidate path that was tried
type MissingInputError struct {
	Tried []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%v (tried: %s)", ErrMissingInput, strings.Join(e.Tried, ", "))
}

// Unwrap lets errors.Is match ErrMissingInput
func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}

// MissingColumnsError reports required columns absent from a table header
type MissingColumnsError struct {
	Path    string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Path, strings.Join(e.Columns, ", "))
}

// CellError is a per-cell decode problem. The cell is read as null and
// decoding continues.
type CellError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %s: %v %q", e.Row, e.Column, e.Err, e.Value)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
