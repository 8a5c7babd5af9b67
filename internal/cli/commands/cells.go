package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapcell/internal/cli/output"
	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/leapstack-labs/leapcell/pkg/sheet"
)

// cellRow is one rendered cell.
type cellRow struct {
	Cell  string `json:"cell"`
	Expr  string `json:"expression"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// collectCells evaluates the named cells, or every defined cell when names
// is empty.
func collectCells(s *sheet.Sheet, names []string) []cellRow {
	if len(names) == 0 {
		names = s.Cells()
	}
	rows := make([]cellRow, 0, len(names))
	for _, name := range names {
		v := s.GetCellValue(name)
		rows = append(rows, cellRow{
			Cell:  canonicalCell(name),
			Expr:  s.GetCellExpr(name),
			Kind:  v.Kind().String(),
			Value: v.String(),
		})
	}
	return rows
}

func canonicalCell(name string) string {
	if id, err := core.ParseCellID(name); err == nil {
		return id.String()
	}
	return name
}

func renderCells(w io.Writer, mode output.Mode, rows []cellRow) error {
	switch mode {
	case output.ModeJSON:
		return renderCellsJSON(w, rows)
	case output.ModeMarkdown:
		return renderCellsMarkdown(w, rows)
	default:
		return renderCellsTable(w, rows)
	}
}

func renderCellsTable(w io.Writer, rows []cellRow) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 cells)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Cell", "Expression", "Value"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Cell, r.Expr, r.Value})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d cells)\n", len(rows))
	return nil
}

func renderCellsJSON(w io.Writer, rows []cellRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func renderCellsMarkdown(w io.Writer, rows []cellRow) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 cells)")
		return nil
	}

	_, _ = fmt.Fprintln(w, "| Cell | Expression | Value |")
	_, _ = fmt.Fprintln(w, "| --- | --- | --- |")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "| %s | %s | %s |\n", r.Cell, escapeMarkdown(r.Expr), escapeMarkdown(r.Value))
	}
	return nil
}

// escapeMarkdown keeps cell text from breaking the table.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// parseAssignment splits "A1=text" or "A1 = text" at the first '='.
// The name must look like a cell label; the text may be empty.
func parseAssignment(s string) (name, text string, ok bool) {
	name, text, ok = strings.Cut(s, "=")
	if !ok {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if _, err := core.ParseCellID(name); err != nil {
		return "", "", false
	}
	return name, strings.TrimSpace(text), true
}
