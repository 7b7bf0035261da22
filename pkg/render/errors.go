package render

import (
	"fmt"
	"strings"
)

// Error wraps an unrecoverable rendering failure with the stage that raised
// it. Unknown-filter failures never surface as an Error; they take the
// literal-recovery path instead.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render: %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// isUnknownFilterError classifies the one engine failure we recover from.
// Both backends report missing filters with wording along the lines of
// "filter 'x' not found" / "filter 'x' does not exist"; anything else is
// treated as fatal.
func isUnknownFilterError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "filter") {
		return false
	}
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "unknown")
}
