package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jsamuelsen/quote-machine/internal/platform/logging"
)

// slogGormLogger routes GORM's logger interface onto slog so query logs
// carry the same shape and redaction as everything else.
type slogGormLogger struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

func newGormLogger(logger *slog.Logger, slowThreshold time.Duration) gormlogger.Interface {
	return &slogGormLogger{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// LogMode is a no-op; verbosity is controlled by the slog handler level.
func (l *slogGormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
}

// Trace logs each executed statement. Failures log at error level,
// statements over the slow threshold at warn, everything else at trace.
// ErrRecordNotFound is expected flow (missing ids map to 404s), not an error.
func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.ErrorContext(ctx, "query failed",
			slog.String("error", err.Error()),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		sql, rows := fc()
		l.logger.WarnContext(ctx, "slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.Duration("threshold", l.slowThreshold),
		)
	default:
		if !l.logger.Enabled(ctx, logging.LevelTrace) {
			return
		}

		sql, rows := fc()
		l.logger.Log(ctx, logging.LevelTrace, "query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}
