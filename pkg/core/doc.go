// Package core defines the shared language of the leapcell system.
//
// This package contains:
//   - Cell identifiers (CellID) and column label conversion
//   - Runtime values (Value) and their error kinds
//   - The formula expression tree (Expr)
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
