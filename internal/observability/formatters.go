// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(boxWidth)
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	body := titleStyle.Render(title) + "\n\n" + content
	fmt.Fprintln(p.out, boxStyle.Render(body))
}

func statusText(s types.Status) string {
	switch s {
	case types.StatusCompleted:
		return okStyle.Render(string(s))
	case types.StatusRequiresReview, types.StatusPending, types.StatusInProgress:
		return warnStyle.Render(string(s))
	case types.StatusFailed:
		return failStyle.Render(string(s))
	}
	return string(s)
}

// PrintAnalysis outputs the project analysis.
func (p *Printer) PrintAnalysis(a *types.ProjectAnalysis) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type:        %s\n", a.ProjectType))
	sb.WriteString(fmt.Sprintf("Complexity:  %s\n", a.Complexity))
	fws := make([]string, len(a.Frameworks))
	for i, fw := range a.Frameworks {
		fws[i] = string(fw)
	}
	sb.WriteString(fmt.Sprintf("Frameworks:  %s (%s)\n", strings.Join(fws, ", "), a.FrameworkSource))
	if a.TargetAudience != "" {
		sb.WriteString(fmt.Sprintf("Audience:    %s\n", a.TargetAudience))
	}
	sb.WriteString(fmt.Sprintf("Documents:   %d", len(a.RequiredDocuments)))
	if a.Fallback {
		sb.WriteString(" (default assessment)")
	}

	p.printBox("PROJECT ANALYSIS", sb.String())
}

// PrintWorkItems outputs the planned work items, with the generation order when known.
func (p *Printer) PrintWorkItems(items []*types.WorkItem, order []string) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%s  %s [%s, %s]  %s\n", item.ID, item.Title, item.Kind, item.Format, statusText(item.Status)))
		if len(item.Dependencies) > 0 {
			sb.WriteString(fmt.Sprintf("        after: %s\n", strings.Join(item.Dependencies, ", ")))
		}
		if item.Error != "" {
			sb.WriteString(fmt.Sprintf("        error: %s\n", item.Error))
		}
		if i == maxItemsToShow*2-1 && len(items) > maxItemsToShow*2 {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(items)-maxItemsToShow*2))
			break
		}
	}
	if len(order) > 0 {
		sb.WriteString(fmt.Sprintf("\nGeneration order: %s", strings.Join(order, " → ")))
	}

	p.printBox("WORK ITEMS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the executive summary and manifest of a run.
func (p *Printer) PrintSummary(summary *types.Summary) {
	if summary == nil {
		return
	}
	es := summary.ExecutiveSummary

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:       %s\n", es.ProjectStatus))
	sb.WriteString(fmt.Sprintf("Delivered:    %s\n", es.DocumentsDelivered))
	sb.WriteString(fmt.Sprintf("Validation:   %s (rate %.0f%%)\n", es.ValidationStatus, es.ValidationRate*100))
	sb.WriteString(fmt.Sprintf("Quality:      %.2f\n", es.AverageQuality))
	if es.ConsistencyScore > 0 {
		sb.WriteString(fmt.Sprintf("Consistency:  %.0f/100\n", es.ConsistencyScore))
	}
	ready := failStyle.Render("no")
	if es.Ready {
		ready = okStyle.Render("yes")
	}
	sb.WriteString(fmt.Sprintf("Readiness:    %.0f/100, ready: %s\n", es.ReadinessScore, ready))

	if len(summary.Manifest) > 0 {
		sb.WriteString("\nManifest:\n")
		for _, m := range summary.Manifest {
			line := fmt.Sprintf("  • %s (%s) %s", m.Title, m.Format, m.Location)
			if m.Fallback {
				line += warnStyle.Render(" [fallback]")
			}
			sb.WriteString(line + "\n")
		}
	}

	p.printBox("DELIVERY SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintActionItems outputs the top ranked action items.
func (p *Printer) PrintActionItems(items []types.ActionItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, items[i].Priority, items[i].Action))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more", len(items)-maxItemsToShow))
	}

	p.printBox("ACTION ITEMS", strings.TrimSuffix(sb.String(), "\n"))
}
