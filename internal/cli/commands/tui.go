package commands

import (
	"github.com/leapstack-labs/leapcell/internal/tui"
	"github.com/spf13/cobra"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a sheet in a terminal grid",
		Long: `Open an interactive grid over an empty sheet.

Move with the arrow keys or hjkl, press enter to edit the selected cell and
enter again to commit. Esc cancels an edit; q or esc quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			s := cc.NewSheet()
			if err := applyAssignments(s, assignments); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), s, tui.Options{
				ColumnWidth: cc.Cfg.Grid.ColumnWidth,
				Logger:      cc.Logger.With("component", "tui"),
			})
		},
	}

	cmd.Flags().StringArrayVarP(&assignments, "set", "s", nil, "Preload a cell (CELL=TEXT, repeatable)")
	return cmd
}
