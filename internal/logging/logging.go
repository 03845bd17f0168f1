// Package logging builds the structured loggers used by every bookcatalog
// process.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Config holds logging configuration.
type Config struct {
	// Level is one of debug, info, warn, error, fatal.
	Level string
	// Format is one of text, json, logfmt.
	Format string
	// Prefix is printed before every message, usually the process name.
	Prefix string
	// Writers receive a copy of every line in addition to stderr.
	Writers []io.Writer
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// New returns a logger writing to stderr and cfg.Writers.
// Stdout is left alone; the MCP process uses it as its protocol channel.
func New(cfg Config) *log.Logger {
	var out io.Writer = os.Stderr
	if len(cfg.Writers) > 0 {
		out = io.MultiWriter(append([]io.Writer{os.Stderr}, cfg.Writers...)...)
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          cfg.Prefix,
		Level:           ParseLevel(cfg.Level),
	})

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	}
	return logger
}

// ParseLevel maps a level name to a log level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
