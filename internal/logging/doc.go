// Package logging assembles the structured slog loggers used by the
// treasurepicker CLI and its matching components.
//
// It owns the console and JSON handlers, level parsing and output plumbing,
// and the attribute helpers that keep field names consistent (component,
// run_id, candidate, event_type). Console output goes to stderr so command
// results on stdout stay machine readable; when a log directory is configured
// a JSON copy of every record is appended to treasurepicker.log. A no-op
// logger is provided for tests and for library callers that pass nil.
package logging
