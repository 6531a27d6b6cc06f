// Package router turns the registry into telebot routes. Every handler run
// ends with one handler.handled line.
package router

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/middleware"
	"github.com/m3rciful/gamebot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// HandledHook observes every handler run, e.g. to feed metrics.
type HandledHook func(handler, outcome string, took time.Duration)

var handledHook atomic.Pointer[HandledHook]

// SetHandledHook installs h; nil removes it.
func SetHandledHook(h HandledHook) {
	if h == nil {
		handledHook.Store(nil)
		return
	}
	handledHook.Store(&h)
}

// Coder is implemented by errors that carry a stable code for logs.
type Coder interface {
	Code() string
}

// run executes fn as handler name and writes the summary line.
func run(c tele.Context, name string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	tghelpers.WithHandler(c, name)
	err := fn(c)
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	summarize(c, name, outcome, time.Since(start), err, extras...)
	return err
}

// skip records that nothing handled the update.
func skip(c tele.Context, name string) {
	summarize(c, name, "ok", 0, nil, slog.String("status", "skip"))
}

func summarize(c tele.Context, name, outcome string, took time.Duration, err error, extras ...slog.Attr) {
	if h := handledHook.Load(); h != nil {
		(*h)(name, outcome, took)
	}
	ctx := tghelpers.WithHandler(c, name)
	msgs, kb := middleware.GetCounters(c)

	attrs := make([]slog.Attr, 0, 8+len(extras))
	if !hasKey(extras, "status") {
		attrs = append(attrs, slog.String("status", outcome))
	}
	attrs = append(attrs,
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(netutil.Redact(err), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	attrs = append(attrs, extras...)
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
}

func hasKey(attrs []slog.Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// handlerName turns "/NewGame" or "join game" into "newgame" or "join_game".
func handlerName(raw string) string {
	raw = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "/"))
	if raw == "" {
		return "unknown"
	}
	return strings.ReplaceAll(raw, " ", "_")
}

// errorCode prefers an explicit Code, then the Telegram failure class, then
// the error's type name.
func errorCode(err error) string {
	var coder Coder
	if errors.As(err, &coder) {
		if code := strings.TrimSpace(coder.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	if kind := netutil.Classify(err); kind != netutil.KindUnknown && kind != netutil.KindNone {
		return strings.ToUpper(string(kind))
	}
	name := strings.TrimLeft(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToUpper(name)
}

func wrap(h tele.HandlerFunc, mws ...tele.MiddlewareFunc) tele.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}
