package config

import "fmt"

// ValidationError represents a file-level validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// ElementError represents an error in one document element.
type ElementError struct {
	Index   int    // 0-based index in document.elements
	ID      string // may be empty if the id is missing
	Field   string
	Message string
	Cause   error
}

func (e *ElementError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("element %q: %s: %s", e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("element[%d]: %s: %s", e.Index, e.Field, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *ElementError) Unwrap() error {
	return e.Cause
}
