package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcell/internal/cli/output"
	"github.com/leapstack-labs/leapcell/pkg/sheet"
	"github.com/spf13/cobra"
)

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "dag [CELL=TEXT ...]",
		Short: "Show the dependency graph",
		Long: `Display the dependency graph (DAG) of a sheet.

Cells are grouped by evaluation level: level 0 holds cells that read no
other cell, and every later level only reads cells from earlier ones.
Cells that are referenced but never assigned are listed as undefined.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the DAG
  leapcell dag A1=1 B1==A1*2 C1==A1+B1

  # Output as JSON
  leapcell dag -f budget.cells --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDAG(cmd, args, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read assignments from a file (- for stdin)")
	return cmd
}

func runDAG(cmd *cobra.Command, args []string, file string) error {
	cc := NewCommandContext(cmd)
	s, err := loadSheet(cmd, cc, args, file)
	if err != nil {
		return err
	}

	levels, err := s.Levels()
	if err != nil {
		return fmt.Errorf("failed to get evaluation levels: %w", err)
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return dagJSON(r, s, levels)
	case output.ModeMarkdown:
		return dagMarkdown(r, s, levels)
	default:
		return dagText(r, s, levels)
	}
}

func isDefined(s *sheet.Sheet, name string) bool {
	_, ok := s.Definition(name)
	return ok
}

// dagText outputs DAG in styled text format.
func dagText(r *output.Renderer, s *sheet.Sheet, levels [][]string) error {
	styles := r.Styles()

	r.Header(1, "Dependency Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, cell := range level {
			label := styles.Bold.Render(cell)
			if !isDefined(s, cell) {
				label += " " + styles.Muted.Render("(undefined)")
			}
			r.Printf("  %s\n", label)
			if deps := s.Dependencies(cell); len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if children := s.Dependents(cell); len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	st := s.Stats()
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d cells, %d dependencies", st.Referenced, st.Edges)))
	return nil
}

// dagMarkdown outputs DAG in markdown format.
func dagMarkdown(r *output.Renderer, s *sheet.Sheet, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Dependency Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Inputs)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, cell := range level {
			if isDefined(s, cell) {
				r.Printf("- %s\n", cell)
			} else {
				r.Printf("- %s (undefined)\n", cell)
			}
			if deps := s.Dependencies(cell); len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if children := s.Dependents(cell); len(children) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	st := s.Stats()
	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Cells", fmt.Sprintf("%d", st.Referenced)))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", st.Edges)))
	return nil
}

// dagJSON outputs DAG in JSON format.
func dagJSON(r *output.Renderer, s *sheet.Sheet, levels [][]string) error {
	st := s.Stats()
	dagOutput := output.DAGOutput{
		Levels:     make([]output.DAGLevel, 0, len(levels)),
		TotalCells: st.Referenced,
		TotalEdges: st.Edges,
	}

	for i, level := range levels {
		dagLevel := output.DAGLevel{
			Level: i,
			Cells: make([]output.DAGNode, 0, len(level)),
		}
		for _, cell := range level {
			dagLevel.Cells = append(dagLevel.Cells, output.DAGNode{
				Cell:      cell,
				Defined:   isDefined(s, cell),
				DependsOn: nonNil(s.Dependencies(cell)),
				UsedBy:    nonNil(s.Dependents(cell)),
			})
		}
		dagOutput.Levels = append(dagOutput.Levels, dagLevel)
	}

	return r.JSON(dagOutput)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
