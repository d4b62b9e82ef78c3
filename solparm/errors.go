// Package solparm manages calibration solution datasets: labeled
// multi-dimensional grids of values and per-cell weights indexed by named
// axes (time, frequency, antenna, ...), grouped into named solution-sets
// and persisted in a hierarchical binary container.
package solparm

import "errors"

// Common errors. All operations abort on error; nothing is retried and
// partially written output is not rolled back.
var (
	ErrMissingArgument = errors.New("missing required argument")
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrNotFound        = errors.New("not found")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrNameExhausted   = errors.New("no free name suffix in [0,999]")
	ErrFormat          = errors.New("unrecognized solution container")
)
