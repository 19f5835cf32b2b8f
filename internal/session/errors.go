package session

import "fmt"

// ValidationError reports a rejected mutation. The document is never modified
// when a ValidationError is returned; callers surface the reason to the user
// and carry on.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// mustIndex enforces the index contract shared by delete/reorder operations.
// Out-of-range access is a caller bug, not user input, so it panics.
func mustIndex(op string, i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("%s: index %d out of range [0,%d)", op, i, n))
	}
}
