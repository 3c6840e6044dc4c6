package rendering

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// MarkdownRenderer writes content as GitHub-flavoured Markdown
type MarkdownRenderer struct{}

// Format implements Renderer.
func (MarkdownRenderer) Format() types.Format { return types.FormatMarkdown }

// Render implements Renderer.
func (MarkdownRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", EscapeMarkdown(doc.DisplayTitle()))

	c := doc.Content
	if c == nil {
		return []byte(sb.String()), nil
	}

	var meta []string
	if doc.Kind != "" {
		meta = append(meta, strings.ReplaceAll(string(doc.Kind), "_", " "))
	}
	if c.Metadata.Version != "" {
		meta = append(meta, "version "+c.Metadata.Version)
	}
	if len(c.Metadata.Frameworks) > 0 {
		meta = append(meta, strings.Join(c.Metadata.Frameworks, ", "))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&sb, "_%s_\n\n", EscapeMarkdown(strings.Join(meta, " · ")))
	}

	if s := strings.TrimSpace(c.ExecutiveSummary); s != "" {
		fmt.Fprintf(&sb, "## Executive Summary\n\n%s\n\n", PlainText(s))
	}
	for _, sec := range c.Sections {
		writeMarkdownSection(&sb, sec, 2)
	}
	if len(c.Rows) > 0 {
		cols, rows := table(c.Rows)
		escaped := make([]string, len(cols))
		for i, col := range cols {
			escaped[i] = EscapeCell(col)
		}
		fmt.Fprintf(&sb, "| %s |\n|%s\n", strings.Join(escaped, " | "), strings.Repeat(" --- |", len(cols)))
		for _, row := range rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = EscapeCell(cell)
			}
			fmt.Fprintf(&sb, "| %s |\n", strings.Join(cells, " | "))
		}
		sb.WriteString("\n")
	}
	writeMarkdownList(&sb, "Key Takeaways", "-", c.KeyTakeaways)
	writeMarkdownList(&sb, "Next Steps", "1.", c.NextSteps)
	for _, app := range c.Appendices {
		writeMarkdownSection(&sb, app, 2)
	}
	return []byte(strings.TrimRight(sb.String(), "\n") + "\n"), nil
}

func writeMarkdownSection(sb *strings.Builder, sec types.Section, level int) {
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", level), EscapeMarkdown(sec.Title))
	if body := strings.TrimSpace(sec.Content); body != "" {
		sb.WriteString(PlainText(body))
		sb.WriteString("\n\n")
	}
	for _, sub := range sec.Subsections {
		writeMarkdownSection(sb, sub, level+1)
	}
}

func writeMarkdownList(sb *strings.Builder, heading, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(sb, "%s %s\n", bullet, PlainText(item))
	}
	sb.WriteString("\n")
}

// JSONRenderer writes the content record as indented JSON
type JSONRenderer struct{}

// Format implements Renderer.
func (JSONRenderer) Format() types.Format { return types.FormatJSON }

// Render implements Renderer.
func (JSONRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	if doc.Content == nil {
		return nil, &RenderError{Message: "no content to render"}
	}
	data, err := json.MarshalIndent(doc.Content, "", "  ")
	if err != nil {
		return nil, &RenderError{Message: "failed to encode JSON", Cause: err}
	}
	return append(data, '\n'), nil
}

// YAMLRenderer writes the content record as YAML, keyed like the JSON form
type YAMLRenderer struct{}

// Format implements Renderer.
func (YAMLRenderer) Format() types.Format { return types.FormatYAML }

// Render implements Renderer.
func (YAMLRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	if doc.Content == nil {
		return nil, &RenderError{Message: "no content to render"}
	}
	// round-trip through JSON so the YAML keys follow the json tags
	raw, err := json.Marshal(doc.Content)
	if err != nil {
		return nil, &RenderError{Message: "failed to encode content", Cause: err}
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, &RenderError{Message: "failed to decode content", Cause: err}
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, &RenderError{Message: "failed to encode YAML", Cause: err}
	}
	return out, nil
}
