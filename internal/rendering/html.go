package rendering

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

// HTMLRenderer renders content through the embedded document template
type HTMLRenderer struct {
	tmpl *template.Template
	err  error
}

// NewHTMLRenderer parses the embedded template. A parse failure is reported on every Render.
func NewHTMLRenderer() *HTMLRenderer {
	tmpl, err := parseTemplate("document.html.tmpl")
	return &HTMLRenderer{tmpl: tmpl, err: err}
}

// Format implements Renderer.
func (r *HTMLRenderer) Format() types.Format { return types.FormatHTML }

// Render implements Renderer. The output is checked before it is returned:
// the heading must carry the title and every top-level section must be present.
func (r *HTMLRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	data := newHTMLData(doc)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, &TemplateError{Message: "failed to execute template", Cause: err}
	}
	if err := checkHTML(buf.Bytes(), data.Title, len(data.Sections)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseTemplate reads and parses an embedded template
func parseTemplate(name string) (*template.Template, error) {
	content, err := templateFiles.ReadFile("templates/" + name)
	if err != nil {
		return nil, &TemplateError{Message: fmt.Sprintf("template not found: %s", name), Cause: err}
	}
	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"join":  strings.Join,
		"level": sectionAt,
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template", Cause: err}
	}
	return tmpl, nil
}

type htmlData struct {
	Title        string
	Kind         string
	Audience     string
	Version      string
	Frameworks   []string
	Summary      string
	Sections     []types.Section
	Columns      []string
	Rows         [][]string
	KeyTakeaways []string
	NextSteps    []string
	Appendices   []types.Section
}

type sectionView struct {
	Section types.Section
	Level   int
	Next    int
}

func sectionAt(s types.Section, level int) sectionView {
	if level > 4 {
		level = 4
	}
	return sectionView{Section: s, Level: level, Next: level + 1}
}

func newHTMLData(doc Document) htmlData {
	data := htmlData{
		Title:    doc.DisplayTitle(),
		Kind:     strings.ReplaceAll(string(doc.Kind), "_", " "),
		Audience: doc.Audience,
	}
	c := doc.Content
	if c == nil {
		return data
	}
	if c.Metadata.TargetAudience != "" {
		data.Audience = c.Metadata.TargetAudience
	}
	data.Version = c.Metadata.Version
	data.Frameworks = c.Metadata.Frameworks
	data.Summary = c.ExecutiveSummary
	data.Sections = c.Sections
	data.KeyTakeaways = c.KeyTakeaways
	data.NextSteps = c.NextSteps
	data.Appendices = c.Appendices
	data.Columns, data.Rows = table(c.Rows)
	return data
}

// table flattens register rows into sorted columns and aligned cells.
func table(rows []map[string]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool)
	var cols []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(cols))
		for j, col := range cols {
			cells[i][j] = row[col]
		}
	}
	return cols, cells
}

func checkHTML(page []byte, title string, sections int) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return &RenderError{Message: "rendered HTML does not parse", Cause: err}
	}
	if got := strings.TrimSpace(doc.Find("h1").First().Text()); got != strings.TrimSpace(title) {
		return &RenderError{Message: fmt.Sprintf("rendered heading %q does not match title %q", got, title)}
	}
	if got := doc.Find("section.doc-section").Length(); got != sections {
		return &RenderError{Message: fmt.Sprintf("rendered %d of %d sections", got, sections)}
	}
	return nil
}

// PlainText strips markup from an HTML fragment. Text without tags is returned unchanged.
func PlainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, h1, h2, h3, h4, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	lines := strings.Split(doc.Text(), "\n")
	var out []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
