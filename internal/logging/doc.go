// Package logging wires log/slog for the cinefill CLI and batch jobs.
// It provides console and JSON handlers, attribute helpers, and a no-op
// logger for tests.
package logging
