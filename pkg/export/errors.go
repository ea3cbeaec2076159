package export

import (
	"errors"
	"fmt"
)

// ErrNoHeaders is returned when a dataset has no columns.
var ErrNoHeaders = errors.New("dataset requires at least one header")

// RowWidthError reports a row whose width differs from the header count.
type RowWidthError struct {
	Row  int
	Got  int
	Want int
}

func (e *RowWidthError) Error() string {
	return fmt.Sprintf("row %d has %d values, want %d", e.Row, e.Got, e.Want)
}
