package helpers

import (
	"errors"

	tele "gopkg.in/telebot.v4"
)

// ErrNoSender is returned for updates without a user, e.g. channel posts.
var ErrNoSender = errors.New("telegram: update has no sender")

// CurrentUser resolves the update's sender to a domain user once per update.
// The result is cached in c under key, so middleware that already resolved
// the user can store it there first.
func CurrentUser[T any](c tele.Context, key string, resolve func(c tele.Context, sender *tele.User) (T, error)) (T, error) {
	var zero T
	if cached, ok := c.Get(key).(T); ok {
		return cached, nil
	}
	sender := c.Sender()
	if sender == nil {
		return zero, ErrNoSender
	}
	u, err := resolve(c, sender)
	if err != nil {
		return zero, err
	}
	c.Set(key, u)
	return u, nil
}
