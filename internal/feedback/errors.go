package feedback

import (
	"errors"
	"fmt"
)

// ErrParseFailed is reported when critique text is not a single JSON object.
var ErrParseFailed = errors.New("critique response is not a valid JSON object")

// ParseError carries the decoder failure behind ErrParseFailed.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause == nil {
		return ErrParseFailed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrParseFailed.Error(), e.Cause)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrParseFailed}
	}
	return []error{ErrParseFailed, e.Cause}
}
