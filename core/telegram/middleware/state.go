package middleware

import (
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FlowGetter reports the active conversation flow of an update's sender.
type FlowGetter interface {
	ActiveFlow(c tele.Context) string
}

// State lets the handler run only while the sender is inside one of the
// expected flows. Otherwise onMismatch runs; a nil onMismatch drops the update.
func State(mgr FlowGetter, onMismatch tele.HandlerFunc, expected ...string) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			current := mgr.ActiveFlow(c)
			ctx := tghelpers.BuildContext(c)
			for _, flow := range expected {
				if current == flow {
					logger.Debug(ctx, "tg", "fsm.match", slog.String("flow", current))
					return next(c)
				}
			}
			logger.Debug(ctx, "tg", "fsm.skip",
				slog.String("flow", current),
				slog.Any("expected", expected),
			)
			if onMismatch != nil {
				return onMismatch(c)
			}
			return nil
		}
	}
}
