// Package logging wraps log/slog with the handlers and attribute helpers
// used across dubforge. It provides a console handler for interactive use,
// a JSON handler for log files, and a progress sampler that keeps
// long-running encode jobs from flooding the log with percent updates.
package logging
