package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatText is slog's key=value text format (default).
	FormatText Format = "text"

	// FormatJSON is one JSON object per line.
	FormatJSON Format = "json"
)

// ParseFormat parses a format name. Unknown values yield FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// FormatFromEnv reads AIMUX_LOG_FORMAT, falling back to LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv("AIMUX_LOG_FORMAT", "LOG_FORMAT"))
}

// ParseLevel parses DEBUG, INFO, WARN/WARNING or ERROR, case-insensitively.
// Unknown values yield INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv reads AIMUX_LOG_LEVEL, falling back to LOG_LEVEL.
func LevelFromEnv() slog.Level {
	return ParseLevel(firstEnv("AIMUX_LOG_LEVEL", "LOG_LEVEL"))
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
