package observability

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(&types.ProjectAnalysis{
		ProjectType:       types.ProjectType("gdpr_compliance"),
		Frameworks:        []types.Framework{types.FrameworkGDPR},
		FrameworkSource:   "keywords",
		Complexity:        types.ComplexityHigh,
		RequiredDocuments: []types.RequiredDocument{{Title: "Privacy Policy"}, {Title: "ROPA"}},
	})
	output := buf.String()

	assert.Contains(t, output, "PROJECT ANALYSIS")
	assert.Contains(t, output, "gdpr_compliance")
	assert.Contains(t, output, "gdpr")
	assert.Contains(t, output, "Documents:   2")
}

func TestPrintAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(nil)

	assert.Empty(t, buf.String())
}

func TestPrintWorkItems(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	items := []*types.WorkItem{
		{ID: "doc_001", Title: "Privacy Policy", Kind: types.KindPrivacyPolicy, Format: types.FormatHTML, Status: types.StatusCompleted},
		{ID: "doc_002", Title: "ROPA", Kind: types.KindROPA, Format: types.FormatXLSX, Status: types.StatusFailed,
			Dependencies: []string{"doc_001"}, Error: "quota"},
	}
	p.PrintWorkItems(items, []string{"doc_001", "doc_002"})
	output := buf.String()

	assert.Contains(t, output, "WORK ITEMS")
	assert.Contains(t, output, "doc_001")
	assert.Contains(t, output, "after: doc_001")
	assert.Contains(t, output, "error: quota")
	assert.Contains(t, output, "Generation order")
}

func TestPrintWorkItems_Truncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var items []*types.WorkItem
	for i := 0; i < 14; i++ {
		items = append(items, &types.WorkItem{ID: fmt.Sprintf("doc_%03d", i+1), Title: "Doc"})
	}
	p.PrintWorkItems(items, nil)

	assert.Contains(t, buf.String(), "and 4 more")
	assert.NotContains(t, buf.String(), "doc_011")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(&types.Summary{
		Manifest: []types.ManifestEntry{
			{ItemID: "doc_001", Title: "Privacy Policy", Format: types.FormatHTML, Location: "out/a.html"},
			{ItemID: "doc_002", Title: "ROPA", Format: types.FormatJSON, Location: "out/b.json", Fallback: true},
		},
		ExecutiveSummary: types.ExecutiveSummary{
			ProjectStatus:      types.RunPartial,
			DocumentsDelivered: "2/3",
			ValidationRate:     0.5,
			ValidationStatus:   types.ValidationPartial,
			ReadinessScore:     55,
		},
	})
	output := buf.String()

	assert.Contains(t, output, "DELIVERY SUMMARY")
	assert.Contains(t, output, "partially_completed")
	assert.Contains(t, output, "2/3")
	assert.Contains(t, output, "rate 50%")
	assert.Contains(t, output, "Privacy Policy")
	assert.Contains(t, output, "[fallback]")
}

func TestPrintActionItems(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var items []types.ActionItem
	for i := 0; i < 7; i++ {
		items = append(items, types.ActionItem{Priority: types.PriorityHigh, Action: fmt.Sprintf("Action %d", i+1)})
	}
	p.PrintActionItems(items)
	output := buf.String()

	assert.Contains(t, output, "ACTION ITEMS")
	assert.Contains(t, output, "1. [high] Action 1")
	assert.Contains(t, output, "and 2 more")
	assert.NotContains(t, output, "Action 6")
}

func TestPrintActionItems_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintActionItems(nil)
	assert.Empty(t, buf.String())
}
