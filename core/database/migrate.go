package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/gamebot/core/logger"
)

const readyTimeout = 30 * time.Second

// migration is one NNNNNN_name.up.sql file.
type migration struct {
	version uint
	file    string
}

// RunMigrations waits for the server, then applies the pending up migrations
// in cfg.MigrationsDir. A dirty schema is reported, not forced.
func RunMigrations(ctx context.Context, cfg Config) error {
	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}
	files, err := upMigrations(dir)
	if err != nil {
		return err
	}
	if err := WaitForPostgres(ctx, cfg, readyTimeout); err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.URL())
	if err != nil {
		return migrateFail(ctx, "init", fmt.Errorf("init migrations: %w", err))
	}
	defer m.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-stop:
		}
	}()

	from, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return migrateFail(ctx, "version", fmt.Errorf("read schema version: %w", err))
	case dirty:
		return migrateFail(ctx, "version", fmt.Errorf("schema is dirty at version %d; repair it before starting", from))
	}

	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return migrateFail(ctx, "apply", fmt.Errorf("apply migrations: %w", err))
	}
	to, _, _ := m.Version()

	applied := between(files, from, to)
	names := make([]string, len(applied))
	for i, a := range applied {
		names[i] = a.file
	}
	preview, truncated := logger.SummarizeStrings(names, 6)
	logger.Info(ctx, "db.migrate", "migrate",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("count", len(applied)),
		slog.String("files", preview),
		slog.Bool("files_truncated", truncated),
		slog.Int("known", len(files)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

func migrateFail(ctx context.Context, step string, err error) error {
	logger.Error(ctx, "db.migrate", "migrate",
		slog.String("status", "fail"),
		slog.String("step", step),
		slog.String("err", err.Error()),
	)
	return err
}

// upMigrations lists the up files of dir by version.
func upMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		v, err := strconv.ParseUint(prefix, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("migration %s: version prefix: %w", name, err)
		}
		out = append(out, migration{version: uint(v), file: name})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no migrations in %s", dir)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// between returns the migrations in (from, to].
func between(all []migration, from, to uint) []migration {
	var out []migration
	for _, m := range all {
		if m.version > from && m.version <= to {
			out = append(out, m)
		}
	}
	return out
}
