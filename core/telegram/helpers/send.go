package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// outbound is the queue replies go through; nil sends inline.
var outbound atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes SendText and EditText through d. nil restores
// synchronous sends.
func SetDispatcher(d *sender.Dispatcher) {
	outbound.Store(d)
}

// deliver queues call. A full or closed queue degrades to an inline call so
// the reply is not lost.
func deliver(c tele.Context, action, endpoint string, call func() error) error {
	d := outbound.Load()
	if d == nil {
		return call()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, endpoint, call)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.bypass",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("cause", err.Error()),
		)
		return call()
	}
	return err
}

func sendArgs(opts *tele.SendOptions) []any {
	if opts == nil {
		return nil
	}
	return []any{opts}
}

// SendText posts text as a new message in the update's chat.
func SendText(c tele.Context, text string, opts *tele.SendOptions) error {
	args := sendArgs(opts)
	return deliver(c, "send.text", "sendMessage", func() error {
		return c.Send(text, args...)
	})
}

// EditText replaces the text of the message the pressed button belongs to.
func EditText(c tele.Context, text string, opts *tele.SendOptions) error {
	args := sendArgs(opts)
	return deliver(c, "edit.text", "editMessageText", func() error {
		return c.Edit(text, args...)
	})
}
