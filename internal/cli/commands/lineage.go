package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapcell/internal/cli/output"
	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/spf13/cobra"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	File       string
	Upstream   bool
	Downstream bool
	Depth      int
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}

	cmd := &cobra.Command{
		Use:   "lineage <cell> [CELL=TEXT ...]",
		Short: "Show lineage for a cell",
		Long: `Display the cells a cell reads (upstream) and the cells that read it
(downstream), directly or through other formulas.

The lineage shows which inputs feed a result and which results change when
an input is edited.`,
		Example: `  # Show full lineage for a cell
  leapcell lineage B1 A1=1 B1==A1*2 C1==B1+1

  # Show only upstream cells
  leapcell lineage C1 -f budget.cells --downstream=false

  # Limit traversal depth
  leapcell lineage C1 -f budget.cells --depth 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, args[0], args[1:], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read assignments from a file (- for stdin)")
	cmd.Flags().BoolVar(&opts.Upstream, "upstream", true, "Include upstream cells")
	cmd.Flags().BoolVar(&opts.Downstream, "downstream", true, "Include downstream cells")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "Max traversal depth (0 = unlimited)")

	return cmd
}

func runLineage(cmd *cobra.Command, cell string, args []string, opts *LineageOptions) error {
	id, err := core.ParseCellID(cell)
	if err != nil {
		return err
	}

	cc := NewCommandContext(cmd)
	s, err := loadSheet(cmd, cc, args, opts.File)
	if err != nil {
		return err
	}

	result := output.LineageOutput{
		Root:  id.String(),
		Value: s.GetCellValue(cell).String(),
		Depth: opts.Depth,
	}
	if opts.Upstream {
		result.Upstream = s.PrecedentsWithin(cell, opts.Depth)
	}
	if opts.Downstream {
		result.Downstream = s.DependentsWithin(cell, opts.Depth)
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(result)
	}

	r.Header(1, "Lineage for "+result.Root)
	r.Println(output.FormatKeyValue("Value", result.Value))
	if opts.Upstream {
		r.Println("")
		r.Header(2, fmt.Sprintf("Upstream (%d)", len(result.Upstream)))
		for _, c := range result.Upstream {
			r.Printf("- %s\n", c)
		}
	}
	if opts.Downstream {
		r.Println("")
		r.Header(2, fmt.Sprintf("Downstream (%d)", len(result.Downstream)))
		for _, c := range result.Downstream {
			r.Printf("- %s\n", c)
		}
	}
	return nil
}
