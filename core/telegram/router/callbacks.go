package router

import (
	"log/slog"

	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises unknown-key handling. The registry's
// CallbackNotFound wins over NotFound.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches inline button presses by unique key. The callback
// is always answered so the client spinner stops.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	dispatch := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		defer func() { _ = callbacks.Answer(c, "") }()

		key := callbacks.Of(c).Unique
		name := "callback." + handlerName(key)
		h, ok := reg.GetCallback(key)
		if ok && h != nil {
			return run(c, name, h, slog.String("cb_key", key))
		}

		h = reg.CallbackNotFound()
		if h == nil {
			h = opts.NotFound
		}
		if h == nil {
			skip(c, name)
			return nil
		}
		return run(c, name, h, slog.String("cb_key", key), slog.String("cause", "not_found"))
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: wrap(dispatch)}
}
