package adapters

import (
	"errors"
	"fmt"
	"strings"
)

// ErrElementNotFound indicates no selector in a chain produced a usable value.
var ErrElementNotFound = errors.New("element not found")

// ParseError describes why one order card could not be turned into a record.
type ParseError struct {
	Field     string
	Selectors []string
	Err       error
}

func (e *ParseError) Error() string {
	if len(e.Selectors) == 0 {
		return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s (%s): %v", e.Field, strings.Join(e.Selectors, " ; "), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
