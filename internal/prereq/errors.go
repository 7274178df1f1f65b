package prereq

import "fmt"

// Error describes why a lookup degraded to an empty result.
type Error struct {
	Course  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("prerequisite lookup for %q: %s: %v", e.Course, e.Message, e.Cause)
	}
	return fmt.Sprintf("prerequisite lookup for %q: %s", e.Course, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
