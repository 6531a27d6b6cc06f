// Package logger wires log/slog to a line-oriented handler with a fixed key
// order and per-update correlation ids, and exposes component loggers.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/gamebot/core/buildinfo"
	coreconfig "github.com/m3rciful/gamebot/core/config"
)

var (
	initOnce sync.Once
	stopOnce sync.Once

	writer  *asyncWriter
	files   []io.Closer
	level   slog.LevelVar
	debug   = newSampler(1, 50)
	traceOn bool

	// L is the root logger. It is nil until InitLogger runs.
	L *slog.Logger

	// Component loggers. Nil before InitLogger; use them through LogEvent.
	TG    *slog.Logger
	TWire *slog.Logger
)

// InitLogger builds the root logger from cfg. Only the first call has effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		lc := coreconfig.LoggingConfig{}
		if cfg != nil {
			lc = cfg.Logging
		}
		level.Set(parseLevel(lc.Level))
		debug.set(debugRatio(lc.DebugSample))
		traceOn = truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE"))

		var sinks []sink
		sinks, files, err = openSinks(lc)
		if err != nil {
			return
		}
		writer = newAsyncWriter(sinks)
		L = slog.New(newHandler(handlerConfig{
			level:    &level,
			writer:   writer,
			format:   formatFor(lc),
			keyOrder: keyOrder(lc.KeysOrder),
		}))
		slog.SetDefault(L)

		TG = Component("tg")
		TWire = Component("tg.wire")

		build := buildinfo.Get()
		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("version", build.Version),
			slog.String("build_commit", build.Commit),
			slog.String("build_time", build.Date),
			slog.Bool("build_dirty", build.Modified),
			slog.String("cfg_profile", profile(lc)),
		)
	})
	return err
}

// Shutdown flushes queued lines and closes the log files.
func Shutdown() error {
	var errs []error
	stopOnce.Do(func() {
		if writer != nil {
			errs = append(errs, writer.Close())
		}
		for _, f := range files {
			errs = append(errs, f.Close())
		}
	})
	return errors.Join(errs...)
}

// openSinks always writes to stdout. bot_file receives every line and
// errors_file only warnings and errors, both under dir.
func openSinks(lc coreconfig.LoggingConfig) ([]sink, []io.Closer, error) {
	sinks := []sink{bufferedSink(os.Stdout, slog.LevelDebug)}
	dir := strings.TrimSpace(lc.Dir)
	if dir == "" {
		return sinks, nil, nil
	}
	targets := []struct {
		name string
		min  slog.Level
	}{
		{strings.TrimSpace(lc.BotFile), slog.LevelDebug},
		{strings.TrimSpace(lc.ErrorsFile), slog.LevelWarn},
	}
	var closers []io.Closer
	for _, t := range targets {
		if t.name == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, closers, fmt.Errorf("logger: create %s: %w", dir, err)
		}
		path := filepath.Join(dir, t.name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closers, fmt.Errorf("logger: open %s: %w", path, err)
		}
		sinks = append(sinks, bufferedSink(f, t.min))
		closers = append(closers, f)
	}
	return sinks, closers, nil
}

// formatFor picks key=value for text-like formats and debug profiles,
// JSON otherwise.
func formatFor(lc coreconfig.LoggingConfig) logFormat {
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	switch strings.ToLower(lc.Profile) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func keyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return defaultKeyOrder
	}
	var order []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			order = append(order, k)
		}
	}
	if len(order) == 0 {
		return defaultKeyOrder
	}
	return order
}

func profile(lc coreconfig.LoggingConfig) string {
	if p := strings.TrimSpace(lc.Profile); p != "" {
		return strings.ToLower(p)
	}
	return "prod"
}

// debugRatio defaults to 1/50. "0" turns sampling off.
func debugRatio(raw string) (int, int) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, 50
	}
	if raw == "0" {
		return 0, 0
	}
	num, den := parseRatio(raw)
	if num <= 0 || den <= 0 {
		return 1, 50
	}
	return num, den
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether a high-volume debug line should be
// written. TRACE=1 lets every line through.
func ShouldSampleDebug() bool {
	return traceOn || debug.allow()
}

// Component returns L scoped to name, or nil before InitLogger.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent writes an event line through logg, falling back to the context
// logger and then L.
func LogEvent(ctx context.Context, logg *slog.Logger, lvl slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, lvl, "", attrs...)
}

// Event logs for component at lvl.
func Event(ctx context.Context, component string, lvl slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		if logg = FromContext(ctx); logg != nil && component != "" {
			logg = logg.With("component", component)
		}
	}
	LogEvent(ctx, logg, lvl, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}
