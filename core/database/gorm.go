package database

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenGorm opens the runtime ORM connection, configures the pool and verifies connectivity.
func OpenGorm(cfg Config) (*gorm.DB, error) {
	level := LogWarn
	if cfg.QueryLogging() {
		level = LogInfo
	}

	start := time.Now()
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         NewGormLogger(level, 200*time.Millisecond),
		TranslateError: true,
	})
	took := time.Since(start)
	if err != nil {
		logger.Error(context.Background(), "db", "db.connect",
			slog.String("status", "fail"),
			slog.String("driver", "gorm/postgres"),
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("db", cfg.Name),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxConnections / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error(ctx, "db", "db.ping",
			slog.String("status", "fail"),
			slog.String("host", cfg.Host),
			slog.String("db", cfg.Name),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db ping: %w", err)
	}

	logger.Info(ctx, "db", "db.connect",
		slog.String("status", "ok"),
		slog.String("driver", "gorm/postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Bool("log_queries", cfg.QueryLogging()),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return db, nil
}

// AutoMigrate synchronises the schema from the given models.
func AutoMigrate(ctx context.Context, db *gorm.DB, models ...any) error {
	start := time.Now()
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		logger.Error(ctx, "db.migrate", "auto_migrate",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info(ctx, "db.migrate", "auto_migrate",
		slog.String("status", "ok"),
		slog.Int("count", len(models)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Ping checks that the pool can still reach the database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
