package middleware

import tele "gopkg.in/telebot.v4"

// OperatorOnly passes updates from the bot operator and hands everyone else
// to reject. A zero operator disables the check. Group admins are checked by
// the handlers themselves.
func OperatorOnly(operator int64, reject tele.HandlerFunc) tele.MiddlewareFunc {
	if operator == 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if u := c.Sender(); u != nil && u.ID == operator {
				return next(c)
			}
			if reject == nil {
				return nil
			}
			return reject(c)
		}
	}
}
