package rendering

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Sheet names
const (
	SheetSummary   = "Summary"
	SheetRegister  = "Register"
	SheetChecklist = "Checklist"
	SheetSections  = "Sections"
)

// XLSXRenderer writes a workbook with a summary sheet and one kind-specific sheet:
// a register when the content has rows, a checklist for checklist kinds, else the sections.
type XLSXRenderer struct{}

// Format implements Renderer.
func (XLSXRenderer) Format() types.Format { return types.FormatXLSX }

// Render implements Renderer.
func (XLSXRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	if doc.Content == nil {
		return nil, &RenderError{Message: "no content to render"}
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E2EC"}, Pattern: 1},
	})
	if err != nil {
		return nil, &RenderError{Message: "failed to create header style", Cause: err}
	}
	w := &sheetWriter{f: f, header: header}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, &RenderError{Message: "failed to name summary sheet", Cause: err}
	}
	w.writeSummary(doc)

	c := doc.Content
	switch {
	case len(c.Rows) > 0:
		cols, rows := table(c.Rows)
		w.writeTable(SheetRegister, cols, rows)
	case doc.Kind == types.KindComplianceChecklist || doc.Kind == types.KindChecklist:
		w.writeTable(SheetChecklist, []string{"#", "Section", "Requirement", "Status"}, checklistRows(c.Sections))
	default:
		w.writeTable(SheetSections, []string{"Section", "Content"}, sectionRows(c.Sections, ""))
	}
	if w.err != nil {
		return nil, &RenderError{Message: "failed to write workbook", Cause: w.err}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &RenderError{Message: "failed to serialize workbook", Cause: err}
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so cell writes read linearly
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) set(sheet string, col, row int, value any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, value)
}

func (w *sheetWriter) writeSummary(doc Document) {
	c := doc.Content
	rows := [][2]string{
		{"Document", doc.DisplayTitle()},
		{"Id", doc.ItemID},
		{"Kind", string(doc.Kind)},
		{"Version", c.Metadata.Version},
		{"Audience", doc.Audience},
		{"Frameworks", strings.Join(c.Metadata.Frameworks, ", ")},
		{"Executive summary", c.ExecutiveSummary},
	}
	for i, r := range rows {
		w.set(SheetSummary, 1, i+1, r[0])
		w.set(SheetSummary, 2, i+1, r[1])
	}
	for i, step := range c.NextSteps {
		w.set(SheetSummary, 1, len(rows)+2+i, fmt.Sprintf("Next step %d", i+1))
		w.set(SheetSummary, 2, len(rows)+2+i, step)
	}
	if w.err == nil {
		w.err = w.f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), w.header)
	}
	if w.err == nil {
		w.err = w.f.SetColWidth(SheetSummary, "A", "A", 22)
	}
	if w.err == nil {
		w.err = w.f.SetColWidth(SheetSummary, "B", "B", 90)
	}
}

func (w *sheetWriter) writeTable(sheet string, cols []string, rows [][]string) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(sheet); err != nil {
		w.err = err
		return
	}
	for j, col := range cols {
		w.set(sheet, j+1, 1, col)
	}
	for i, row := range rows {
		for j, cell := range row {
			w.set(sheet, j+1, i+2, cell)
		}
	}
	if w.err != nil || len(cols) == 0 {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, "A1", last, w.header)
	if w.err == nil {
		lastCol, _, _ := excelize.SplitCellName(last)
		w.err = w.f.SetColWidth(sheet, "A", lastCol, 28)
	}
}

// checklistRows lists every subsection as a requirement under its section; a section
// without subsections is itself one requirement.
func checklistRows(sections []types.Section) [][]string {
	var rows [][]string
	add := func(section, requirement string) {
		rows = append(rows, []string{fmt.Sprint(len(rows) + 1), section, requirement, "Open"})
	}
	for _, sec := range sections {
		if len(sec.Subsections) == 0 {
			add(sec.Title, PlainText(sec.Content))
			continue
		}
		for _, sub := range sec.Subsections {
			req := sub.Title
			if body := strings.TrimSpace(sub.Content); body != "" {
				req += ": " + PlainText(body)
			}
			add(sec.Title, req)
		}
	}
	return rows
}

func sectionRows(sections []types.Section, prefix string) [][]string {
	var rows [][]string
	for _, sec := range sections {
		title := sec.Title
		if prefix != "" {
			title = prefix + " / " + sec.Title
		}
		rows = append(rows, []string{title, PlainText(sec.Content)})
		rows = append(rows, sectionRows(sec.Subsections, title)...)
	}
	return rows
}
