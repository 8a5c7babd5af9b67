// Package tui is a terminal grid over a sheet.
//
// The grid shows evaluated values; enter opens an editor holding the
// selected cell's text and a second enter commits it with SetCell. Every
// visible cell is re-read after a commit, so dependents refresh without any
// bookkeeping here.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/leapstack-labs/leapcell/pkg/sheet"
	"github.com/mattn/go-runewidth"
)

// Options configures the grid.
type Options struct {
	ColumnWidth int
	Logger      *slog.Logger
}

const (
	defaultColumnWidth = 12
	rowHeaderWidth     = 5
	// title, column header, editor/help line and status line
	chromeLines = 4
)

// Model is the bubbletea model of the grid.
type Model struct {
	sheet  *sheet.Sheet
	logger *slog.Logger

	maxCols, maxRows int // 0 is unbounded
	colWidth         int

	cursor core.CellID
	origin core.CellID // top-left visible cell
	width  int
	height int

	editing bool
	editor  textinput.Model

	status    string
	statusErr bool

	styles styles
}

// New creates a grid model over s.
func New(s *sheet.Sheet, opts Options) Model {
	width := opts.ColumnWidth
	if width <= 0 {
		width = defaultColumnWidth
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	editor := textinput.New()
	editor.Prompt = "> "
	editor.Placeholder = "Enter a value or =formula"

	cols, rows := s.Bounds()
	return Model{
		sheet:    s,
		logger:   logger,
		maxCols:  cols,
		maxRows:  rows,
		colWidth: width,
		cursor:   core.CellID{Col: 1, Row: 1},
		origin:   core.CellID{Col: 1, Row: 1},
		width:    80,
		height:   24,
		editor:   editor,
		styles:   defaultStyles(),
	}
}

// Run starts the grid on the alternate screen and blocks until it quits.
func Run(ctx context.Context, s *sheet.Sheet, opts Options, progOpts ...tea.ProgramOption) error {
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(New(s, opts), progOpts...).Run()
	return err
}

// Cursor returns the selected cell.
func (m Model) Cursor() core.CellID { return m.cursor }

// Editing reports whether the editor is open.
func (m Model) Editing() bool { return m.editing }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.editor.Width = max(msg.Width-len(m.editor.Prompt)-1, 1)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEditor(msg)
		}
		return m.updateGrid(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.move(0, -1)
	case "down", "j":
		m.move(0, 1)
	case "left", "h":
		m.move(-1, 0)
	case "right", "l":
		m.move(1, 0)
	case "pgup":
		m.move(0, -m.visibleRows())
	case "pgdown":
		m.move(0, m.visibleRows())
	case "home":
		m.cursor.Col = 1
		m.scroll()
	case "enter", "e":
		m.editing = true
		m.editor.SetValue(m.sheet.GetCellExpr(m.cursor.String()))
		m.editor.CursorEnd()
		cmd := m.editor.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeEditor()
		m.setStatus("", false)
		return m, nil
	case tea.KeyEnter:
		m.commit()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// commit assigns the editor text to the selected cell. A rejected
// assignment keeps the editor open so the text can be fixed.
func (m *Model) commit() {
	name := m.cursor.String()
	text := m.editor.Value()
	if err := m.sheet.SetCell(name, text); err != nil {
		m.logger.Debug("tui assignment rejected", "cell", name, "error", err)
		m.setStatus(err.Error(), true)
		return
	}
	m.closeEditor()

	v := m.sheet.GetCellValue(name)
	m.setStatus(fmt.Sprintf("%s = %s", name, v), v.IsError())
	m.move(0, 1)
}

func (m *Model) closeEditor() {
	m.editing = false
	m.editor.Blur()
	m.editor.Reset()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) move(dCol, dRow int) {
	m.cursor.Col = clamp(m.cursor.Col+dCol, m.maxCols)
	m.cursor.Row = clamp(m.cursor.Row+dRow, m.maxRows)
	m.scroll()
}

// clamp keeps n within [1, limit]; a limit of 0 leaves it unbounded above.
func clamp(n, limit int) int {
	n = max(n, 1)
	if limit > 0 {
		n = min(n, limit)
	}
	return n
}

// scroll moves the visible window so the cursor stays inside it.
func (m *Model) scroll() {
	cols, rows := m.visibleCols(), m.visibleRows()
	if m.cursor.Col < m.origin.Col {
		m.origin.Col = m.cursor.Col
	} else if m.cursor.Col >= m.origin.Col+cols {
		m.origin.Col = m.cursor.Col - cols + 1
	}
	if m.cursor.Row < m.origin.Row {
		m.origin.Row = m.cursor.Row
	} else if m.cursor.Row >= m.origin.Row+rows {
		m.origin.Row = m.cursor.Row - rows + 1
	}
}

func (m Model) visibleCols() int {
	n := max((m.width-rowHeaderWidth)/(m.colWidth+1), 1)
	if m.maxCols > 0 {
		n = min(n, m.maxCols)
	}
	return n
}

func (m Model) visibleRows() int {
	n := max(m.height-chromeLines, 1)
	if m.maxRows > 0 {
		n = min(n, m.maxRows)
	}
	return n
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	name := m.cursor.String()

	title := fmt.Sprintf("LeapCell  %s: %s", name, m.sheet.GetCellExpr(name))
	sb.WriteString(m.styles.title.Render(runewidth.Truncate(title, max(m.width, 1), "…")))
	sb.WriteByte('\n')

	cols, rows := m.visibleCols(), m.visibleRows()

	sb.WriteString(strings.Repeat(" ", rowHeaderWidth))
	for c := m.origin.Col; c < m.origin.Col+cols; c++ {
		sb.WriteByte(' ')
		sb.WriteString(m.styles.header.Render(center(core.ColumnLabel(c), m.colWidth)))
	}
	sb.WriteByte('\n')

	for r := m.origin.Row; r < m.origin.Row+rows; r++ {
		sb.WriteString(m.styles.header.Render(fmt.Sprintf("%*s", rowHeaderWidth, strconv.Itoa(r))))
		for c := m.origin.Col; c < m.origin.Col+cols; c++ {
			sb.WriteByte(' ')
			sb.WriteString(m.renderCell(core.CellID{Col: c, Row: r}))
		}
		sb.WriteByte('\n')
	}

	if m.editing {
		sb.WriteString(m.editor.View())
	} else {
		sb.WriteString(m.styles.help.Render("arrows/hjkl move • enter edit • q quit"))
	}
	sb.WriteByte('\n')

	if m.statusErr {
		sb.WriteString(m.styles.statusErr.Render(m.status))
	} else {
		sb.WriteString(m.styles.statusOK.Render(m.status))
	}
	return sb.String()
}

func (m Model) renderCell(id core.CellID) string {
	text := ""
	style := m.styles.cell
	if _, defined := m.sheet.Definition(id.String()); defined {
		v := m.sheet.GetCellValue(id.String())
		text = v.String()
		if v.IsError() {
			style = m.styles.errValue
		}
	}
	if id == m.cursor {
		style = m.styles.cursor
	}
	return style.Render(fit(text, m.colWidth))
}

// fit truncates or pads s to exactly w display columns.
func fit(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

func center(s string, w int) string {
	pad := w - runewidth.StringWidth(s)
	if pad <= 0 {
		return fit(s, w)
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
