// Package wlog configures structured logging for the workload driver and
// health prober, grounded on the teacher's observability/logging package:
// the same JSON slog handler with timestamp/severity/message field renaming,
// plus a rotating file sink via lumberjack when a log file path is given.
package wlog

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AssertionTag mirrors the antithesis-style assertion sink (spec §6.5):
// every check emits one of these alongside a structured details payload.
type AssertionTag string

const (
	// Always asserts a condition must hold on every observation.
	Always AssertionTag = "always"
	// Sometimes asserts a condition is expected to hold at least once
	// across the fleet's lifetime.
	Sometimes AssertionTag = "sometimes"
	// Unreachable asserts a branch must never be taken.
	Unreachable AssertionTag = "unreachable"
)

// Options configures Setup.
type Options struct {
	// Service names the binary ("workload" or "healthprobe").
	Service string
	// Env is an optional deployment environment tag.
	Env string
	// LogFile, if non-empty, additionally writes JSON lines to a rotating
	// file (10MB/3 backups/28 days), the way lumberjack is commonly wired
	// in as an io.Writer behind a structured logger.
	LogFile string
}

// Setup installs a JSON slog.Logger as the process default and returns it.
// It mirrors observability/logging.Setup's field renaming: "time" becomes
// "timestamp", "level" becomes "severity", "msg" becomes "message".
func Setup(opts Options) *slog.Logger {
	var writer io.Writer = os.Stdout
	if strings.TrimSpace(opts.LogFile) != "" {
		writer = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				return slog.Attr{Key: "timestamp", Value: attr.Value}
			case slog.LevelKey:
				return slog.String("severity", strings.ToUpper(attr.Value.String()))
			case slog.MessageKey:
				return slog.Attr{Key: "message", Value: attr.Value}
			}
			return attr
		},
	})

	attrs := []slog.Attr{slog.String("service", strings.TrimSpace(opts.Service))}
	if env := strings.TrimSpace(opts.Env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}
	withArgs := make([]any, 0, len(attrs))
	for _, a := range attrs {
		withArgs = append(withArgs, a)
	}

	logger := slog.New(handler).With(withArgs...)
	slog.SetDefault(logger)
	return logger
}

// Assertion logs a structured assertion record matching the antithesis sink
// contract of spec §6.5: a tag, a human condition name, and free-form
// details (alias, pre, post, heights, ...).
func Assertion(logger *slog.Logger, tag AssertionTag, condition string, hit bool, details ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := append([]any{slog.String("assertion", string(tag)), slog.Bool("hit", hit)}, details...)
	logger.Info(condition, attrs...)
}
