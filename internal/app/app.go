// Package app assembles configuration, storage, services and the Telegram
// runtime into a runnable bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/m3rciful/gamebot/core/bootstrap"
	"github.com/m3rciful/gamebot/core/cmd"
	coredatabase "github.com/m3rciful/gamebot/core/database"
	"github.com/m3rciful/gamebot/core/logger"
	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/router"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/bot"
	"github.com/m3rciful/gamebot/internal/config"
	"github.com/m3rciful/gamebot/internal/flow"
	"github.com/m3rciful/gamebot/internal/metrics"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/ops"
	"github.com/m3rciful/gamebot/internal/repository/postgres"
	"github.com/m3rciful/gamebot/internal/service"

	tele "gopkg.in/telebot.v4"
)

const rateLimited = "⏳ Слишком часто. Подождите немного."

// App is the assembled bot.
type App struct {
	cfg      *config.Config
	db       *gorm.DB
	store    state.Store
	services *service.Services
	metrics  *metrics.Metrics
	bot      *bot.Bot
}

// LoadConfig adapts config.Load to the command runner.
func LoadConfig(path string) (cmd.ConfigCarrier, error) {
	return config.Load(path)
}

// Bootstrap adapts New to the command runner.
func Bootstrap(ctx context.Context, carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	return New(ctx, cfg)
}

// New runs the startup pipeline and wires every component.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
		Models:   append(models.Models(), &state.FlowSession{}),
		Modules: bootstrap.Modules{
			Seeders: []bootstrap.Seeder{bootstrap.SeederFunc(SeedSports)},
		},
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		db:       res.DB,
		services: service.New(postgres.New(res.DB)),
		metrics:  metrics.New(prometheus.DefaultRegisterer),
	}
	a.store = newStore(cfg.Session, res.DB)
	if s, ok := a.store.(metrics.Sizer); ok {
		metrics.TrackSessions(prometheus.DefaultRegisterer, s)
	}

	flows := flow.New(flow.Deps{
		Services: a.services,
		Store:    a.store,
		Observer: a.metrics,
	})
	a.bot = bot.New(bot.Deps{
		Services: a.services,
		Flows:    flows,
		Sessions: state.NewDispatcher(a.store),
		Observer: a.metrics,
	})
	logger.Info(ctx, "app", "app.wire",
		slog.String("status", "ok"),
		slog.String("session_backend", cfg.Session.Backend),
		slog.Bool("ops", cfg.Ops.Listen != ""),
	)
	return a, nil
}

func newStore(cfg config.SessionConfig, db *gorm.DB) state.Store {
	opts := state.Options{TTL: cfg.TTL}
	if cfg.Backend == config.SessionPostgres {
		return state.NewGormStore(db, opts)
	}
	return state.NewMemoryStore(opts)
}

// TelegramRunOptions registers the bot and describes the runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	if err := a.bot.Register(reg); err != nil {
		return tg.RunOptions{}, fmt.Errorf("app: register handlers: %w", err)
	}
	router.SetHandledHook(a.metrics.Handled)

	mws := tg.DefaultMiddlewares(&a.cfg.Config, func(c tele.Context) error {
		return c.Send(rateLimited)
	})
	mws = append(mws, a.bot.Middleware())

	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: mws,
		Routes:      a.bot.Routes(reg, a.cfg.Telegram.AdminID),
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

// start launches the session janitor and the ops server. Both stop with ctx.
func (a *App) start(ctx context.Context, rt tg.Runtime) error {
	if rt.Dispatcher != nil {
		metrics.TrackSendErrors(prometheus.DefaultRegisterer, rt.Dispatcher)
	}
	go state.RunJanitor(ctx, a.store, a.cfg.Session.SweepInterval, a.metrics.SessionsSwept)

	if a.cfg.Ops.Listen == "" {
		return nil
	}
	srv := ops.New(ops.Options{
		Listen:      a.cfg.Ops.Listen,
		CORSOrigins: a.cfg.Ops.CORSOrigins,
		Ping: func(ctx context.Context) error {
			return coredatabase.Ping(ctx, a.db)
		},
		Games: a.services.Games,
	})
	go func() {
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "ops", "http.serve",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}()
	return nil
}

func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	if err := coredatabase.Close(a.db); err != nil {
		logger.Warn(ctx, "app", "db.close",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return nil
}
