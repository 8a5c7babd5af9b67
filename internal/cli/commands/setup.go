package commands

import (
	"log/slog"

	"github.com/leapstack-labs/leapcell/internal/cli/config"
	"github.com/leapstack-labs/leapcell/internal/cli/output"
	"github.com/leapstack-labs/leapcell/pkg/sheet"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer that the root
// command stored in the command context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	mode, err := output.ParseMode(cfg.Output)
	if err != nil {
		mode = output.ModeAuto
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// NewSheet creates an empty sheet bounded by the grid config.
func (c *CommandContext) NewSheet() *sheet.Sheet {
	return sheet.New(
		sheet.WithLogger(c.Logger.With("component", "sheet")),
		sheet.WithBounds(c.Cfg.Grid.Cols, c.Cfg.Grid.Rows),
	)
}
