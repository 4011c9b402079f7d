// Package logging builds the slog handlers used for operational logs.
// Child process output never goes through these handlers; it is shown by
// the console or TUI consumers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Levels lists the accepted level names, most verbose first.
var Levels = []string{"trace", "debug", "info", "warn", "error"}

// ValidLevel reports whether s names a known level. Empty means the default.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

// ValidFormat reports whether s names a known format. Empty means text.
func ValidFormat(s string) bool {
	switch strings.ToLower(s) {
	case "", FormatText, "txt", FormatJSON:
		return true
	default:
		return false
	}
}

// SetupHandlerText configures a text slog handler with the provided writer and log level
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	reportCaller := false
	reportTimestamp := false
	lvl := log.InfoLevel
	switch strings.ToLower(logLevel) {
	case "trace":
		reportCaller = true
		reportTimestamp = true
		lvl = log.DebugLevel
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
	})
}

// SetupHandlerJSON configures a JSON slog handler with the provided writer and log level
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "trace", "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: strings.EqualFold(logLevel, "trace"),
	})
}

// NewHandler returns a handler for the given level and format.
func NewHandler(logLevel, format string, writer io.Writer) (slog.Handler, error) {
	if !ValidLevel(logLevel) {
		return nil, fmt.Errorf("unknown log level %q, expected one of %s", logLevel, strings.Join(Levels, ", "))
	}
	switch strings.ToLower(format) {
	case "", FormatText, "txt":
		return SetupHandlerText(logLevel, writer), nil
	case FormatJSON:
		return SetupHandlerJSON(logLevel, writer), nil
	default:
		return nil, fmt.Errorf("unknown log format %q, expected text or json", format)
	}
}

// SetupLogger installs a handler for level and format as the slog default
// and returns it.
func SetupLogger(logLevel, format string, writer io.Writer) (slog.Handler, error) {
	handler, err := NewHandler(logLevel, format, writer)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(handler))
	return handler, nil
}
