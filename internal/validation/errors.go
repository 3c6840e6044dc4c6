// Package validation checks generated documents individually, across documents and against
// the project's success criteria.
package validation

import "fmt"

// Error represents a failed validation call
type Error struct {
	Pass    string
	ItemID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	prefix := "validation error"
	if e.Pass != "" {
		prefix = e.Pass + " validation error"
	}
	if e.ItemID != "" {
		prefix += " [" + e.ItemID + "]"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
