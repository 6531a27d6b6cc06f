package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/gamebot/core/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Gorm log levels re-exported so callers do not import gorm/logger directly.
const (
	LogSilent = gormlogger.Silent
	LogError  = gormlogger.Error
	LogWarn   = gormlogger.Warn
	LogInfo   = gormlogger.Info
)

// GormLogger routes gorm diagnostics into the structured "db" component.
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger builds a gorm logger. Record-not-found errors are never reported.
func NewGormLogger(level gormlogger.LogLevel, slow time.Duration) *GormLogger {
	return &GormLogger{level: level, slowThreshold: slow}
}

// LogMode implements gormlogger.Interface.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		logger.Info(ctx, "db", "gorm.info", slog.String("payload", fmt.Sprintf(msg, args...)))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		logger.Warn(ctx, "db", "gorm.warn", slog.String("payload", fmt.Sprintf(msg, args...)))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		logger.Error(ctx, "db", "gorm.error", slog.String("payload", fmt.Sprintf(msg, args...)))
	}
}

// Trace implements gormlogger.Interface.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		logger.Error(ctx, "db", "db.query",
			slog.String("status", "fail"),
			slog.String("op", logger.SanitizeLimit(sql, 300)),
			slog.Int64("count", rows),
			slog.Duration("duration", logger.RoundMS(elapsed)),
			slog.String("err", err.Error()),
		)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		logger.Warn(ctx, "db", "db.query.slow",
			slog.String("status", "ok"),
			slog.String("op", logger.SanitizeLimit(sql, 300)),
			slog.Int64("count", rows),
			slog.Duration("duration", logger.RoundMS(elapsed)),
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		logger.Debug(ctx, "db", "db.query",
			slog.String("status", "ok"),
			slog.String("op", logger.SanitizeLimit(sql, 300)),
			slog.Int64("count", rows),
			slog.Duration("duration", logger.RoundMS(elapsed)),
		)
	}
}
