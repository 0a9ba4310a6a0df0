// Package logging adapts third-party logger interfaces to slog.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-co-op/gocron/v2"

	errs "github.com/edgard/taskpilot/internal/errors"
)

// gocronLogger implements gocron.Logger on top of a slog.Logger.
type gocronLogger struct {
	logger *slog.Logger
}

// NewGocronLogger returns a gocron.Logger writing to logger.
//
//nolint:ireturn // gocron.WithLogger takes the interface
func NewGocronLogger(logger *slog.Logger) gocron.Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &gocronLogger{logger: logger.With("component", "gocron")}
}

func (l *gocronLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, processSchedulerArgs(args...)...)
}

func (l *gocronLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, processSchedulerArgs(args...)...)
}

func (l *gocronLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, processSchedulerArgs(args...)...)
}

func (l *gocronLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, processSchedulerArgs(args...)...)
}

// processSchedulerArgs replaces error values in the key/value list with coded
// scheduling errors so scheduler failures read the same as engine failures.
func processSchedulerArgs(args ...any) []any {
	processed := make([]any, 0, len(args))

	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			processed = append(processed, args[i])
			break
		}

		key, val := args[i], args[i+1]
		if err, ok := val.(error); ok && fmt.Sprint(key) == "error" {
			processed = append(processed, key, categorize(err))
			continue
		}
		processed = append(processed, key, val)
	}

	return processed
}

func categorize(err error) error {
	switch {
	case errors.Is(err, gocron.ErrJobNotFound):
		return errs.Wrap(errs.CodeSchedulingFailure, "scheduled job not found", err)
	case strings.Contains(err.Error(), "shutdown"):
		return errs.Wrap(errs.CodeSchedulingFailure, "scheduler is shut down", err)
	case strings.Contains(err.Error(), "cron"):
		return errs.Wrap(errs.CodeConfig, "invalid cron expression", err)
	default:
		return errs.Wrap(errs.CodeSchedulingFailure, "scheduler error", err)
	}
}
