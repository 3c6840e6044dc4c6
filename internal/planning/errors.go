// Package planning implements the analyze-requirements and plan-items stages:
// it decides which documents a project needs and turns them into work items.
package planning

import "fmt"

// InputError represents a request that cannot be planned. It is fatal for the run.
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("input error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("input error: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// Fatal marks the error as not retryable.
func (e *InputError) Fatal() bool {
	return true
}

// AnalysisError represents a failed project analysis call
type AnalysisError struct {
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis error: %s", e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
