package sheet

import "log/slog"

// Option configures a Sheet.
type Option func(*Sheet)

// WithLogger sets the logger. A nil logger keeps the discard default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sheet) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBounds limits the sheet to cols columns and rows rows. Zero leaves a
// dimension unbounded.
func WithBounds(cols, rows int) Option {
	return func(s *Sheet) {
		s.maxCols = max(cols, 0)
		s.maxRows = max(rows, 0)
	}
}
