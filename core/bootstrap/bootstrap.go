package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	coreconfig "github.com/m3rciful/gamebot/core/config"
	coredatabase "github.com/m3rciful/gamebot/core/database"
	"github.com/m3rciful/gamebot/core/logger"
)

// Options control the startup pipeline: logger, database, schema, seed data.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	// Models are synchronised with AutoMigrate when the database config asks
	// for schema sync; otherwise SQL migrations run.
	Models  []any
	Modules Modules

	LoggerInit func(*coreconfig.Config) error
	Open       func(coredatabase.Config) (*gorm.DB, error)
	Migrate    func(ctx context.Context, cfg coredatabase.Config, db *gorm.DB, models []any) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *gorm.DB
}

// Run initializes the logger, opens the database, brings the schema up to
// date and runs the seeders.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	open := opts.Open
	if open == nil {
		open = coredatabase.OpenGorm
	}
	db, err := open(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = DefaultMigrate
	}
	if err := migrate(ctx, opts.Database, db, opts.Models); err != nil {
		_ = coredatabase.Close(db)
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	for i, s := range opts.Modules.Seeders {
		start := time.Now()
		if err := s.Seed(ctx, db); err != nil {
			_ = coredatabase.Close(db)
			return nil, fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
		logger.Info(ctx, "db.seed", "seed",
			slog.String("status", "ok"),
			slog.Int("seeder", i),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
	}

	return &Result{DB: db}, nil
}

// DefaultMigrate runs AutoMigrate in schema-sync mode and the SQL migrations
// otherwise.
func DefaultMigrate(ctx context.Context, cfg coredatabase.Config, db *gorm.DB, models []any) error {
	if cfg.SchemaSync() {
		return coredatabase.AutoMigrate(ctx, db, models...)
	}
	return coredatabase.RunMigrations(ctx, cfg)
}
