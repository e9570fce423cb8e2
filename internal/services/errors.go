package services

import (
	"fmt"
	"strings"
)

// Custom errors

// ValidationError rejects a request before any upstream call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NoUsableModelError means every candidate model was rejected as unavailable.
type NoUsableModelError struct {
	Tried []string
	Last  error
}

func (e *NoUsableModelError) Error() string {
	if len(e.Tried) == 0 {
		return "no usable model: no candidates configured"
	}
	return fmt.Sprintf("no usable model: tried %s", strings.Join(e.Tried, ", "))
}

func (e *NoUsableModelError) Unwrap() error { return e.Last }
