package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapcell/internal/cli/output"
	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/leapstack-labs/leapcell/pkg/sheet"
	"github.com/spf13/cobra"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive sheet shell",
		Long: `Start an interactive shell over an empty sheet.

Assign with "A1 = text", print a value by typing its cell name and inspect
the dependency graph with dot-commands. Type .help for the list.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	sess := newSession(cc.NewSheet(), cc.Renderer)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cc.Cfg.REPL.Prompt,
		HistoryFile:     cc.Cfg.REPL.HistoryFile,
		AutoComplete:    sess.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cc.Renderer.Println("LeapCell REPL")
	cc.Renderer.Println("Type .help for commands, .quit to exit")
	cc.Renderer.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if sess.execute(line) {
			break
		}
	}

	cc.Logger.Debug("repl closed", "evaluations", sess.sheet.EvaluationCount())
	return nil
}

// session executes REPL lines against one sheet.
type session struct {
	sheet *sheet.Sheet
	r     *output.Renderer
}

func newSession(s *sheet.Sheet, r *output.Renderer) *session {
	return &session{sheet: s, r: r}
}

// execute runs one line and reports whether the REPL should exit.
func (s *session) execute(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case strings.HasPrefix(line, "."):
		return s.dotCommand(line)
	}

	if name, text, ok := parseAssignment(line); ok {
		if err := s.sheet.SetCell(name, text); err != nil {
			s.r.Error(err)
			return false
		}
		s.printValue(name)
		return false
	}

	if _, err := core.ParseCellID(line); err == nil {
		s.printValue(line)
		return false
	}

	s.r.Error(fmt.Errorf("expected CELL = TEXT, a cell name or a dot-command, got %q", line))
	return false
}

func (s *session) printValue(name string) {
	v := s.sheet.GetCellValue(name)
	st := s.r.Styles()
	style := st.Text
	switch {
	case v.IsError():
		style = st.ErrVal
	case v.IsNumber():
		style = st.Number
	}
	s.r.Printf("%s %s %s\n", st.Bold.Render(canonicalCell(name)), st.Muted.Render("="), style.Render(v.String()))
}

func (s *session) dotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.r.Writer())

	case ".cells":
		if err := renderCells(s.r.Writer(), s.r.EffectiveMode(), collectCells(s.sheet, nil)); err != nil {
			s.r.Error(err)
		}

	case ".deps", ".dependents", ".precedents", ".trace":
		name, ok := s.cellArg(command, args)
		if !ok {
			break
		}
		var cells []string
		switch command {
		case ".deps":
			cells = s.sheet.Dependencies(name)
		case ".dependents":
			cells = s.sheet.Dependents(name)
		default:
			cells = s.sheet.Precedents(name)
		}
		s.printList(cells)

	case ".expr":
		name, ok := s.cellArg(command, args)
		if !ok {
			break
		}
		s.printExpr(name)

	case ".stats":
		st := s.sheet.Stats()
		s.r.Println(output.FormatKeyValue("Cells", fmt.Sprint(st.Cells)))
		s.r.Println(output.FormatKeyValue("Referenced", fmt.Sprint(st.Referenced)))
		s.r.Println(output.FormatKeyValue("Edges", fmt.Sprint(st.Edges)))
		s.r.Println(output.FormatKeyValue("Cached", fmt.Sprint(st.Cached)))
		s.r.Println(output.FormatKeyValue("Evaluations", fmt.Sprint(st.Evaluations)))

	case ".clear":
		s.sheet.Clear()
		s.r.Success("Sheet cleared")

	default:
		s.r.Error(fmt.Errorf("unknown command: %s (type .help for commands)", command))
	}
	return false
}

func (s *session) cellArg(command string, args []string) (string, bool) {
	if len(args) != 1 {
		s.r.Error(fmt.Errorf("usage: %s <cell>", command))
		return "", false
	}
	if _, err := core.ParseCellID(args[0]); err != nil {
		s.r.Error(err)
		return "", false
	}
	return args[0], true
}

func (s *session) printList(cells []string) {
	if len(cells) == 0 {
		s.r.Println(s.r.Styles().Muted.Render("(none)"))
		return
	}
	s.r.Println(strings.Join(cells, " "))
}

func (s *session) printExpr(name string) {
	def, ok := s.sheet.Definition(name)
	if !ok {
		s.r.Println(s.r.Styles().Muted.Render("(empty)"))
		return
	}
	s.r.Println(output.FormatKeyValue("Text", def.Text))
	s.r.Println(output.FormatKeyValue("Kind", def.Kind.String()))
	switch def.Kind {
	case sheet.Formula:
		s.r.Println(output.FormatKeyValue("Parsed", "="+core.Format(def.Expr)))
	case sheet.InvalidFormula:
		s.r.Println(output.FormatKeyValue("Error", def.Err.Error()))
	}
}

// completer offers dot-commands, with defined cells after the commands that
// take one.
func (s *session) completer() *readline.PrefixCompleter {
	cells := readline.PcItemDynamic(func(string) []string { return s.sheet.Cells() })
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".cells"),
		readline.PcItem(".deps", cells),
		readline.PcItem(".dependents", cells),
		readline.PcItem(".precedents", cells),
		readline.PcItem(".expr", cells),
		readline.PcItem(".stats"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .cells             List defined cells with their values
  .deps <cell>       Cells a formula reads directly
  .dependents <cell> Cells that read a cell directly
  .precedents <cell> Every cell a formula reads, transitively (alias .trace)
  .expr <cell>       Show the text, kind and parsed form of a cell
  .stats             Show sheet statistics
  .clear             Remove every cell
  .quit / .exit      Exit the REPL

Tips:
  - Assign with A1 = 5, B1 = =A1*2 or B1==A1*2
  - Type a cell name to print its value
  - Functions: Sum, Concat, Max, Min, If(cond, then, else)
`
	_, _ = fmt.Fprintln(w, help)
}
