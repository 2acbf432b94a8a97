// Package slogobs implements observability.Provider with log/slog.
//
// Spans are rendered as debug log lines (start, events, end with duration);
// recorded errors are logged at error level. Format and level come from
// AIMUX_LOG_FORMAT and AIMUX_LOG_LEVEL unless overridden with [WithFormat],
// [WithLevel], [WithOutput] or [WithLogger].
package slogobs
