// Package logging constructs the slog loggers used across resprint.
//
// Two output formats are supported: a compact console format intended for
// interactive use and a JSON format for log files and machine consumption.
// Helper constructors (NewNop, NewComponentLogger) let library packages
// accept an optional logger without nil checks at every call site.
package logging
