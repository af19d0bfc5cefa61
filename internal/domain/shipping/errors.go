package shipping

import (
	"errors"
	"fmt"
)

// SkipError marks a candidate whose data is legitimately incomplete:
// the picking is left alone and the run moves on to the next one.
// Remote-call failures are plain errors, never skips.
type SkipError struct {
	Reason string
}

// Error implements the error interface.
func (e *SkipError) Error() string { return e.Reason }

// Skipf builds a SkipError from a format string.
func Skipf(format string, args ...any) *SkipError {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// IsSkip reports whether err carries a SkipError anywhere in its chain.
func IsSkip(err error) bool {
	var s *SkipError
	return errors.As(err, &s)
}
