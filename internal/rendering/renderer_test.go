package rendering

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

func sampleDoc() Document {
	return Document{
		ItemID:   "doc_001",
		Title:    "Privacy Policy",
		Kind:     types.KindPrivacyPolicy,
		Audience: "end_users",
		Content: &types.Content{
			Metadata:         types.ContentMetadata{Title: "Privacy Policy <v1>", Version: "1.0", Frameworks: []string{"GDPR"}},
			ExecutiveSummary: "How we handle personal data.",
			Sections: []types.Section{
				{Title: "Scope", Content: "All EU customers.", Subsections: []types.Section{{Title: "Exclusions", Content: "Employees."}}},
				{Title: "Retention", Content: "<p>Seven years.</p><p>Then deleted.</p>"},
			},
			KeyTakeaways: []string{"Data is never sold"},
			NextSteps:    []string{"Publish on the website"},
		},
	}
}

func registerDoc() Document {
	return Document{
		ItemID: "doc_002",
		Title:  "ROPA Register",
		Kind:   types.KindROPA,
		Content: &types.Content{
			Metadata: types.ContentMetadata{Title: "ROPA Register"},
			Rows: []map[string]string{
				{"activity": "Billing", "retention": "7 years"},
				{"activity": "Support", "lawful_basis": "contract"},
			},
		},
	}
}

func TestHTMLRenderer(t *testing.T) {
	out, err := NewHTMLRenderer().Render(context.Background(), sampleDoc())
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "Privacy Policy <v1>", doc.Find("h1").Text())
	assert.NotContains(t, string(out), "<v1>")
	assert.Equal(t, 2, doc.Find("section.doc-section").Length())
	assert.Equal(t, "Exclusions", doc.Find("section.doc-section h3").First().Text())
	assert.Contains(t, doc.Find(".meta").Text(), "privacy policy")
	assert.Contains(t, doc.Find(".meta").Text(), "GDPR")
	assert.Equal(t, "Data is never sold", doc.Find(".takeaways li").Text())
	assert.Zero(t, doc.Find("table.register").Length())
}

func TestHTMLRenderer_Register(t *testing.T) {
	out, err := NewHTMLRenderer().Render(context.Background(), registerDoc())
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)
	var headers []string
	doc.Find("table.register th").Each(func(_ int, s *goquery.Selection) { headers = append(headers, s.Text()) })
	assert.Equal(t, []string{"activity", "lawful_basis", "retention"}, headers)
	assert.Equal(t, 2, doc.Find("table.register tbody tr").Length())
}

func TestHTMLRenderer_NilContent(t *testing.T) {
	out, err := NewHTMLRenderer().Render(context.Background(), Document{ItemID: "doc_009"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1>doc_009</h1>")
}

func TestCheckHTML(t *testing.T) {
	page := []byte(`<html><body><h1>Other</h1><section class="doc-section"></section></body></html>`)
	assert.Error(t, checkHTML(page, "Title", 1))
	assert.Error(t, checkHTML(page, "Other", 2))
	assert.NoError(t, checkHTML(page, "Other", 1))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "no markup", PlainText("no markup"))
	assert.Equal(t, "Seven years.\nThen deleted.", PlainText("<p>Seven years.</p><p>Then deleted.</p>"))
	assert.Equal(t, "one\ntwo", PlainText("<ul><li>one</li><li>two</li></ul>"))
}

func TestMarkdownRenderer(t *testing.T) {
	out, err := MarkdownRenderer{}.Render(context.Background(), sampleDoc())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "# Privacy Policy \\<v1\\>\n"))
	assert.Contains(t, md, "_privacy policy · version 1.0 · GDPR_")
	assert.Contains(t, md, "## Scope\n\nAll EU customers.")
	assert.Contains(t, md, "### Exclusions")
	assert.Contains(t, md, "Seven years.\nThen deleted.")
	assert.Contains(t, md, "- Data is never sold")
	assert.Contains(t, md, "1. Publish on the website")

	out, err = MarkdownRenderer{}.Render(context.Background(), registerDoc())
	require.NoError(t, err)
	assert.Contains(t, string(out), "| activity | lawful\\_basis | retention |\n| --- | --- | --- |\n| Billing |  | 7 years |")
}

func TestJSONAndYAMLRenderers(t *testing.T) {
	doc := sampleDoc()

	out, err := JSONRenderer{}.Render(context.Background(), doc)
	require.NoError(t, err)
	var decoded types.Content
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, doc.Content.Sections, decoded.Sections)

	out, err = YAMLRenderer{}.Render(context.Background(), doc)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(out, &generic))
	assert.Equal(t, "How we handle personal data.", generic["executive_summary"])

	_, err = JSONRenderer{}.Render(context.Background(), Document{ItemID: "x"})
	assert.Error(t, err)
	_, err = YAMLRenderer{}.Render(context.Background(), Document{ItemID: "x"})
	assert.Error(t, err)
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestXLSXRenderer_Register(t *testing.T) {
	out, err := XLSXRenderer{}.Render(context.Background(), registerDoc())
	require.NoError(t, err)

	f := openWorkbook(t, out)
	assert.Equal(t, []string{SheetSummary, SheetRegister}, f.GetSheetList())
	rows, err := f.GetRows(SheetRegister)
	require.NoError(t, err)
	assert.Equal(t, []string{"activity", "lawful_basis", "retention"}, rows[0])
	assert.Equal(t, []string{"Billing", "", "7 years"}, rows[1])
	assert.Equal(t, []string{"Support", "contract"}, rows[2])

	title, err := f.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "ROPA Register", title)
}

func TestXLSXRenderer_ChecklistAndSections(t *testing.T) {
	checklist := sampleDoc()
	checklist.Kind = types.KindComplianceChecklist
	out, err := XLSXRenderer{}.Render(context.Background(), checklist)
	require.NoError(t, err)

	f := openWorkbook(t, out)
	rows, err := f.GetRows(SheetChecklist)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Scope", "Exclusions: Employees.", "Open"}, rows[1])
	assert.Equal(t, []string{"2", "Retention", "Seven years.\nThen deleted.", "Open"}, rows[2])

	out, err = XLSXRenderer{}.Render(context.Background(), sampleDoc())
	require.NoError(t, err)
	f = openWorkbook(t, out)
	rows, err = f.GetRows(SheetSections)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Scope / Exclusions", rows[2][0])
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry(nil)
	assert.Equal(t, []types.Format{types.FormatHTML, types.FormatJSON, types.FormatMarkdown, types.FormatXLSX, types.FormatYAML}, reg.Formats())
	_, ok := reg.Lookup(types.FormatPDF)
	assert.False(t, ok)

	reg = DefaultRegistry(NewPDFRenderer(nil, 0))
	_, ok = reg.Lookup(types.FormatPDF)
	assert.True(t, ok)
}

func TestPDFRenderer_Integration(t *testing.T) {
	if !ChromeAvailable() {
		t.Skip("Chrome not installed")
	}
	out, err := NewPDFRenderer(nil, 0).Render(context.Background(), sampleDoc())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
