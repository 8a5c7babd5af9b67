// Package config loads leapcell CLI configuration.
//
// Values come from, in increasing precedence: built-in defaults, a
// leapcell.yaml file, LEAPCELL_* environment variables and explicitly set
// command line flags.
package config

// Default configuration values.
const (
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel    = "warn"
	DefaultCols        = 26
	DefaultRows        = 100
	DefaultColumnWidth = 12
	DefaultPrompt      = "leapcell> "
	DefaultHistoryFile = ".leapcell_history"
)

// Config holds all CLI configuration options.
type Config struct {
	Output   string     `koanf:"output"`
	Verbose  bool       `koanf:"verbose"`
	LogLevel string     `koanf:"log_level"`
	Grid     GridConfig `koanf:"grid"`
	REPL     REPLConfig `koanf:"repl"`
}

// GridConfig bounds the sheet and sizes the terminal grid.
// Cols and Rows of 0 mean unbounded.
type GridConfig struct {
	Cols        int `koanf:"cols"`
	Rows        int `koanf:"rows"`
	ColumnWidth int `koanf:"column_width"`
}

// REPLConfig configures the interactive shell.
type REPLConfig struct {
	HistoryFile string `koanf:"history_file"`
	Prompt      string `koanf:"prompt"`
}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		Output:   DefaultOutput,
		LogLevel: DefaultLogLevel,
		Grid: GridConfig{
			Cols:        DefaultCols,
			Rows:        DefaultRows,
			ColumnWidth: DefaultColumnWidth,
		},
		REPL: REPLConfig{
			HistoryFile: defaultHistoryFile(),
			Prompt:      DefaultPrompt,
		},
	}
}
