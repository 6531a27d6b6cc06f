package state

import (
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const sessionKey = "fsm_session"

// WithSession loads the sender's session once and stores it in the handler
// context for FromContext.
func WithSession(store Store) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil {
				return next(c)
			}
			rec, ok, err := store.Load(tghelpers.BuildContext(c), KeyFrom(c))
			if err == nil && ok {
				c.Set(sessionKey, rec)
			}
			return next(c)
		}
	}
}

// FromContext returns the record injected by WithSession.
func FromContext(c tele.Context) (Record, bool) {
	rec, ok := c.Get(sessionKey).(Record)
	return rec, ok
}
