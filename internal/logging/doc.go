// Package logging assembles the structured slog loggers used across shoebox.
//
// It owns the configurable console/JSON handlers and attr helpers so every
// component emits log lines with the same shape. Prefer these constructors
// over hand-rolled slog setup.
package logging
