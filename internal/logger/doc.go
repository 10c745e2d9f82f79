// Package logger provides snapkit's logging. The Logger interface keeps a
// hard line between debug records (slog text, written to a per-repository
// log file when --debug is set) and the short emoji-prefixed lines shown to
// the user on stdout/stderr.
package logger
