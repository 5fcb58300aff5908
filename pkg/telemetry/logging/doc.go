// Package logging configures the process-wide structured logger.
//
// Components receive *slog.Logger values tagged with a "component"
// attribute so log lines can be filtered per subsystem.
package logging
