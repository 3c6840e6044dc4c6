package types

import "strings"

// Content is the structured payload generated for a work item
type Content struct {
	Metadata         ContentMetadata     `json:"metadata"`
	ExecutiveSummary string              `json:"executive_summary"`
	Sections         []Section           `json:"sections"`
	KeyTakeaways     []string            `json:"key_takeaways,omitempty"`
	NextSteps        []string            `json:"next_steps,omitempty"`
	Appendices       []Section           `json:"appendices,omitempty"`
	Rows             []map[string]string `json:"rows,omitempty"`
	Raw              string              `json:"raw,omitempty"`
}

// ContentMetadata describes a generated document
type ContentMetadata struct {
	Title          string   `json:"title"`
	DocumentKind   string   `json:"document_kind,omitempty"`
	Version        string   `json:"version,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	Frameworks     []string `json:"frameworks,omitempty"`
}

// Section is a titled block of a generated document
type Section struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Subsections []Section `json:"subsections,omitempty"`
}

// Summary returns the executive summary, or the first section's text when none was produced.
func (c *Content) Summary() string {
	if c == nil {
		return ""
	}
	if s := strings.TrimSpace(c.ExecutiveSummary); s != "" {
		return s
	}
	for _, sec := range c.Sections {
		if s := strings.TrimSpace(sec.Content); s != "" {
			return s
		}
	}
	return ""
}

// Truncated returns s cut to at most n runes with an ellipsis.
func Truncated(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
