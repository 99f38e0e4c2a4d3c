// Package logging builds the slog loggers used across listforge.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for machine consumption. Attr helpers mirror the slog
// constructors so call sites stay terse, and component loggers tag every
// record with the owning subsystem. Context helpers propagate the export run
// id and current plan node into log records.
package logging
