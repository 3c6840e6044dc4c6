// Package rendering turns generated content into files: HTML, PDF, XLSX, Markdown, JSON and YAML.
package rendering

import (
	"fmt"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// TemplateError represents an error parsing or executing a document template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a failure rendering one item into one format
type RenderError struct {
	ItemID  string
	Format  types.Format
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	prefix := "render error"
	if e.ItemID != "" {
		prefix = fmt.Sprintf("render error [%s %s]", e.ItemID, e.Format)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
