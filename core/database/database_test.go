package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := Config{User: "bot", Name: "games", Environment: " Development "}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Host != "localhost" || cfg.Port != "5432" || cfg.SSLMode != "disable" || cfg.MigrationsDir != "migrations" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if !cfg.SchemaSync() || !cfg.QueryLogging() {
		t.Fatalf("development must enable schema sync and query logging")
	}
	off := false
	cfg.AutoMigrate = &off
	if cfg.SchemaSync() {
		t.Fatalf("explicit auto_migrate must win")
	}
}

func TestNormalizeMissingCredentials(t *testing.T) {
	err := (&Config{}).Normalize()
	if err == nil || !strings.Contains(err.Error(), "DB_USER DB_NAME") {
		t.Fatalf("err = %v", err)
	}
}

func TestURLEscapesCredentials(t *testing.T) {
	cfg := Config{User: "bot", Password: "p@ss/word", Host: "db", Port: "5432", Name: "games", SSLMode: "require"}
	want := "postgres://bot:p%40ss%2Fword@db:5432/games?sslmode=require"
	if got := cfg.URL(); got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestUpMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_flow_sessions.up.sql",
		"000001_init_schema.up.sql",
		"000001_init_schema.down.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	files, err := upMigrations(dir)
	if err != nil {
		t.Fatalf("upMigrations: %v", err)
	}
	if len(files) != 2 || files[0].version != 1 || files[1].file != "000002_flow_sessions.up.sql" {
		t.Fatalf("files = %+v", files)
	}
	if got := between(files, 1, 2); len(got) != 1 || got[0].version != 2 {
		t.Fatalf("between(1,2) = %+v", got)
	}
	if got := between(files, 2, 2); len(got) != 0 {
		t.Fatalf("nothing pending, got %+v", got)
	}
}

func TestUpMigrationsRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if _, err := upMigrations(dir); err == nil {
		t.Fatalf("empty dir accepted")
	}
	if err := os.WriteFile(filepath.Join(dir, "init.up.sql"), nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := upMigrations(dir); err == nil {
		t.Fatalf("file without version accepted")
	}
}

func TestShippedMigrationsParse(t *testing.T) {
	files, err := upMigrations(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("upMigrations: %v", err)
	}
	for i, f := range files {
		if f.version != uint(i+1) {
			t.Fatalf("migration versions must be contiguous, got %+v", files)
		}
	}
}
