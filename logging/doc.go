// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer AgensLogger with contextual
// helpers (job, component) and domain specific logging helpers for serving
// calls, tool pipelines and job steps.
package logging
