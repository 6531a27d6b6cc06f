package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures the operator check of AdminOnly commands.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	operatorOnly := middleware.OperatorOnly(opts.AdminID, opts.OnAdminReject)

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for _, nc := range cmds {
		name, h := handlerName(nc.Name), nc.Handler
		handler := wrap(func(c tele.Context) error { return run(c, name, h) })
		if nc.AdminOnly {
			handler = operatorOnly(handler)
		}
		routes = append(routes, tg.Route{Endpoint: nc.Name, Handler: handler})
	}

	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "tg.wire",
		slog.String("status", "ok"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
