package router

import (
	tg "github.com/m3rciful/gamebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FSM routes text to an active conversation flow.
type FSM interface {
	InProgress(c tele.Context) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions sets the replies for text and documents nothing claims.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes routes plain text and documents: an active flow first, then a
// command typed in another case or with a bot mention, then the fallbacks.
// mws wrap both handlers inside recover and logging.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions, mws ...tele.MiddlewareFunc) []tg.Route {
	onText := func(c tele.Context) error {
		if fsm != nil && fsm.InProgress(c) {
			return run(c, "fsm", fsm.ManagerHandler)
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return run(c, handlerName(key), cmd.Handler)
			}
		}
		return fallback(c, "unknown_text", opts.UnknownText)
	}
	onDocument := func(c tele.Context) error {
		if fsm != nil && fsm.InProgress(c) {
			return run(c, "fsm_document", fsm.ManagerHandler)
		}
		return fallback(c, "unexpected_document", opts.UnknownDocument)
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(onText, mws...)},
		{Endpoint: tele.OnDocument, Handler: wrap(onDocument, mws...)},
	}
}

func fallback(c tele.Context, name string, h tele.HandlerFunc) error {
	if h == nil {
		skip(c, name)
		return nil
	}
	return run(c, name, h)
}
