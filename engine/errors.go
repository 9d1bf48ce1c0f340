package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidColumn is returned (wrapped in *InvalidColumnError) when an
// operation references a column that is not in the view's schema. It is a
// configuration error: surface it, do not retry.
var ErrInvalidColumn = errors.New("invalid column")

// InvalidColumnError names the offending column and the operation.
type InvalidColumnError struct {
	Op     string
	Column string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("%s: column %q not in dataset schema", e.Op, e.Column)
}

func (e *InvalidColumnError) Is(target error) bool {
	return target == ErrInvalidColumn
}

func checkColumns(op string, view RecordView, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	known := make(map[string]bool, len(view.Columns()))
	for _, c := range view.Columns() {
		known[c] = true
	}
	for _, c := range columns {
		if !known[c] {
			return &InvalidColumnError{Op: op, Column: c}
		}
	}
	return nil
}
