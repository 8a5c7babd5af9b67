package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leapcell/pkg/sheet"
	"github.com/spf13/cobra"
)

// EvalOptions holds options for the eval command.
type EvalOptions struct {
	Cells []string
	File  string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval [CELL=TEXT ...]",
		Short: "Evaluate cell assignments",
		Long: `Apply cell assignments in order to an empty sheet and print the result.

Each assignment is CELL=TEXT. Text starting with '=' is a formula, a run of
digits is an integer and anything else is literal text. Assignments may also
be read from a file, one per line; blank lines and lines starting with '#'
are skipped.

An assignment that would create a circular dependency aborts the command.`,
		Example: `  leapcell eval A1=5 B1==A1*2 C1==Sum(A1,B1)
  leapcell eval -f budget.cells --cell C1 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Cells, "cell", nil, "Only print these cells")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read assignments from a file (- for stdin)")

	return cmd
}

func runEval(cmd *cobra.Command, args []string, opts *EvalOptions) error {
	cc := NewCommandContext(cmd)
	s, err := loadSheet(cmd, cc, args, opts.File)
	if err != nil {
		return err
	}

	rows := collectCells(s, opts.Cells)
	cc.Logger.Debug("evaluated sheet",
		"cells", len(rows),
		"evaluations", s.EvaluationCount(),
	)
	return renderCells(cc.Renderer.Writer(), cc.Renderer.EffectiveMode(), rows)
}

// loadSheet builds a sheet from the assignments in file (if any) followed
// by those given as arguments.
func loadSheet(cmd *cobra.Command, cc *CommandContext, args []string, file string) (*sheet.Sheet, error) {
	lines := args
	if file != "" {
		fromFile, err := readAssignments(cmd, file)
		if err != nil {
			return nil, err
		}
		lines = append(fromFile, args...)
	}

	s := cc.NewSheet()
	if err := applyAssignments(s, lines); err != nil {
		return nil, err
	}
	cc.Logger.Debug("sheet loaded", "assignments", len(lines))
	return s, nil
}

func applyAssignments(s *sheet.Sheet, lines []string) error {
	for _, line := range lines {
		name, text, ok := parseAssignment(line)
		if !ok {
			return fmt.Errorf("invalid assignment %q: expected CELL=TEXT", line)
		}
		if err := s.SetCell(name, text); err != nil {
			return fmt.Errorf("assign %s: %w", name, err)
		}
	}
	return nil
}

func readAssignments(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open assignments: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assignments: %w", err)
	}
	return lines, nil
}
