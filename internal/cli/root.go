// Package cli provides the command-line interface for LeapCell.
package cli

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapcell/internal/cli/commands"
	"github.com/leapstack-labs/leapcell/internal/cli/config"
	"github.com/leapstack-labs/leapcell/internal/cli/output"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leapcell",
		Short: "LeapCell - Spreadsheet Formula Engine",
		Long: `LeapCell evaluates spreadsheet formulas with incremental recalculation.

Cells hold integers, text or formulas such as =A1+B1*2 or =If(A1, B1, C1).
Values are computed on demand and cached; changing a cell recomputes only
the cells that depend on it, and assignments that would create a circular
dependency are rejected.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, used, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if used != "" {
				logger.Info("using config file", "path", used)
			}
			logger.Debug("configuration loaded",
				"output", cfg.Output,
				"cols", cfg.Grid.Cols,
				"rows", cfg.Grid.Rows,
			)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Spreadsheet formula engine with incremental recalculation
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./leapcell.yaml)")
	pf.StringP("output", "o", config.DefaultOutput, "Output format (auto|text|markdown|json)")
	pf.BoolP("verbose", "v", false, "Verbose output (debug logging)")
	pf.String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	pf.Int("cols", config.DefaultCols, "Number of columns in the sheet (0 for unbounded)")
	pf.Int("rows", config.DefaultRows, "Number of rows in the sheet (0 for unbounded)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, len(output.Modes))
		for i, m := range output.Modes {
			modes[i] = string(m)
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewEvalCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewTUICommand())
	rootCmd.AddCommand(commands.NewDAGCommand())
	rootCmd.AddCommand(commands.NewLineageCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for LeapCell.

To load completions:

Bash:
  $ source <(leapcell completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ leapcell completion bash > /etc/bash_completion.d/leapcell
  # macOS:
  $ leapcell completion bash > $(brew --prefix)/etc/bash_completion.d/leapcell

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ leapcell completion zsh > "${fpath[1]}/_leapcell"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ leapcell completion fish | source

  # To load completions for each session, execute once:
  $ leapcell completion fish > ~/.config/fish/completions/leapcell.fish

PowerShell:
  PS> leapcell completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> leapcell completion powershell > leapcell.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
