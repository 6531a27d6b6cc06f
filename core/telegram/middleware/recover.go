package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/gamebot/core/logger"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const stackLimit = 4096

// RecoverMiddleware reports a handler panic as the update's error.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = panicked(c, r)
			}
		}()
		return next(c)
	}
}

func panicked(c tele.Context, r any) error {
	err := fmt.Errorf("panic: %v", r)
	logger.Error(tghelpers.BuildContext(c), "tg", "tg.panic",
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
		slog.String("stack", logger.SanitizeLimit(string(debug.Stack()), stackLimit)),
	)
	return err
}
