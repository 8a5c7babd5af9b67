package config

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapcell/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if _, err := output.ParseMode(c.Output); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Grid.Cols < 0 || c.Grid.Rows < 0 {
		errs = append(errs, fmt.Errorf("grid bounds must not be negative (cols=%d, rows=%d)", c.Grid.Cols, c.Grid.Rows))
	}
	if c.Grid.ColumnWidth < 3 {
		errs = append(errs, fmt.Errorf("grid.column_width must be at least 3, got %d", c.Grid.ColumnWidth))
	}
	return errors.Join(errs...)
}
