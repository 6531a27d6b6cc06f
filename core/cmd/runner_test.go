package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/gamebot/core/config"
	coretelegram "github.com/m3rciful/gamebot/core/telegram"
)

type carrier struct{ core *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.core }

type app struct {
	started, stopped *bool
}

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { *a.started = true; return nil },
		OnStop:  func(context.Context, coretelegram.Runtime) error { *a.stopped = true; return nil },
	}, nil
}

func baseOptions(loaded *string, started, stopped *bool) Options {
	return Options{
		ConfigEnvVar:      "GAMEBOT_TEST_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			*loaded = path
			return carrier{core: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app{started: started, stopped: stopped}, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, ro coretelegram.RunOptions) error {
			if err := ro.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return ro.OnStop(ctx, coretelegram.Runtime{})
		},
	}
}

func TestRunWrapsLifecycleHooks(t *testing.T) {
	var loaded string
	var started, stopped bool
	if err := Run(baseOptions(&loaded, &started, &stopped)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loaded != "config.yaml" {
		t.Fatalf("config path = %q", loaded)
	}
	if !started || !stopped {
		t.Fatalf("hooks not run: started=%v stopped=%v", started, stopped)
	}
}

func TestConfigPathPrecedence(t *testing.T) {
	var loaded string
	var started, stopped bool
	opts := baseOptions(&loaded, &started, &stopped)

	t.Setenv("GAMEBOT_TEST_CONFIG", "/etc/gamebot.yaml")
	if err := Run(opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loaded != "/etc/gamebot.yaml" {
		t.Fatalf("env path ignored: %q", loaded)
	}

	opts.Args = []string{"-config", "local.yaml"}
	if err := Run(opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loaded != "local.yaml" {
		t.Fatalf("flag path ignored: %q", loaded)
	}
}

func TestRunErrors(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatalf("missing callbacks accepted")
	}

	var loaded string
	var started, stopped bool
	opts := baseOptions(&loaded, &started, &stopped)
	opts.DefaultConfigPath = ""
	t.Setenv("GAMEBOT_TEST_CONFIG", "")
	if err := Run(opts); err == nil {
		t.Fatalf("missing path accepted")
	}

	opts = baseOptions(&loaded, &started, &stopped)
	boom := errors.New("db down")
	opts.Bootstrap = func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom }
	if err := Run(opts); !errors.Is(err, boom) {
		t.Fatalf("bootstrap error = %v", err)
	}

	opts = baseOptions(&loaded, &started, &stopped)
	opts.LoadConfig = func(string) (ConfigCarrier, error) { return carrier{}, nil }
	if err := Run(opts); err == nil {
		t.Fatalf("config without core section accepted")
	}
}

func TestShutdownErrorReported(t *testing.T) {
	var loaded string
	var started, stopped bool
	opts := baseOptions(&loaded, &started, &stopped)
	opts.ShutdownLogger = func() error { return errors.New("flush failed") }
	if err := Run(opts); err == nil {
		t.Fatalf("shutdown error swallowed")
	}
}
