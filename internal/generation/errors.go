// Package generation adapts the LLM client into the scheduler's document generator.
package generation

import (
	"fmt"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// GenerationError represents a failed generation call or an error-shaped response
type GenerationError struct {
	ItemID  string
	Message string
	Raw     string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation of %s failed: %s: %v", e.ItemID, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation of %s failed: %s", e.ItemID, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// FailureReason classifies the error for the work item.
func (e *GenerationError) FailureReason() types.FailureReason {
	return types.FailureGeneration
}

// RawOutput returns the model output, if any was received.
func (e *GenerationError) RawOutput() string {
	return e.Raw
}

// ContentError represents a response that parsed but is not usable document content
type ContentError struct {
	ItemID  string
	Message string
	Raw     string
	Cause   error
}

func (e *ContentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid content for %s: %s: %v", e.ItemID, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid content for %s: %s", e.ItemID, e.Message)
}

func (e *ContentError) Unwrap() error {
	return e.Cause
}

// FailureReason classifies the error for the work item.
func (e *ContentError) FailureReason() types.FailureReason {
	return types.FailureInvalidContent
}

// RawOutput returns the rejected model output.
func (e *ContentError) RawOutput() string {
	return e.Raw
}
