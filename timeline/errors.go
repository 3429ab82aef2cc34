package timeline

import (
	"errors"
	"fmt"
)

// MalformedInputError reports a row that cannot become an event. It is fatal
// for the whole batch.
type MalformedInputError struct {
	// Row is the 1-based position of the row in the input.
	Row int
	// Column names the offending column ("date" or "summary").
	Column string
	// Value is the raw cell content, empty when the column is missing.
	Value string
	err   error
}

func (e *MalformedInputError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Column, e.Value, e.err)
	}
	return fmt.Sprintf("row %d: missing %s column", e.Row, e.Column)
}

func (e *MalformedInputError) Unwrap() error {
	return e.err
}

// IsMalformedInput returns true if err is, or wraps, a MalformedInputError.
func IsMalformedInput(err error) bool {
	var malformed *MalformedInputError
	return errors.As(err, &malformed)
}
