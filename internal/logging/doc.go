// Package logging provides slog attribute helpers shared across the
// application so that log fields stay consistently named.
package logging
