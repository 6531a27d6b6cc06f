package helpers

import (
	"context"

	"github.com/m3rciful/gamebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// ctxKey is where the per-update logging context lives in tele.Context.
const ctxKey = "log_ctx"

func ids(c tele.Context) (update int, chat, user int64) {
	update = c.Update().ID
	if ch := c.Chat(); ch != nil {
		chat = ch.ID
	}
	if u := c.Sender(); u != nil {
		user = u.ID
	}
	return update, chat, user
}

// BuildContext returns the context carried by the update. The first call
// seeds it with a request id, a trace id and the update/chat/user ids.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxKey).(context.Context); ok {
		return ctx
	}
	update, chat, user := ids(c)
	ctx := logger.WithRID(context.Background(), logger.BuildRID(update, chat, user))
	ctx = logger.WithTrace(ctx, logger.NewTraceID())
	ctx = logger.WithUpdateMeta(ctx, update, user, chat)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	c.Set(ctxKey, ctx)
	return ctx
}

// WithHandler names the handler serving the update. Empty names and repeats
// leave the context alone.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" && logger.HandlerFrom(ctx) != handler {
		ctx = logger.WithHandler(ctx, handler)
		c.Set(ctxKey, ctx)
	}
	return ctx
}
