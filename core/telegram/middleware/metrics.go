package middleware

import tele "gopkg.in/telebot.v4"

const replyStatsKey = "reply_stats"

// replyStats counts what a handler sent back for the handler summary line.
type replyStats struct {
	messages int
	keyboard bool
}

func (s *replyStats) record(opts []any) {
	s.messages++
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				s.keyboard = true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				s.keyboard = true
			}
		}
	}
}

// countingContext records successful replies into stats.
type countingContext struct {
	tele.Context
	stats *replyStats
}

func (c countingContext) Send(what any, opts ...any) error {
	return c.count(c.Context.Send(what, opts...), opts)
}

func (c countingContext) Reply(what any, opts ...any) error {
	return c.count(c.Context.Reply(what, opts...), opts)
}

func (c countingContext) Edit(what any, opts ...any) error {
	return c.count(c.Context.Edit(what, opts...), opts)
}

func (c countingContext) EditOrSend(what any, opts ...any) error {
	return c.count(c.Context.EditOrSend(what, opts...), opts)
}

func (c countingContext) count(err error, opts []any) error {
	if err == nil {
		c.stats.record(opts)
	}
	return err
}

// MessageMetricsMiddleware counts the messages each handler sends.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &replyStats{}
		c.Set(replyStatsKey, stats)
		return next(countingContext{Context: c, stats: stats})
	}
}

// GetCounters returns the number of messages sent so far and whether any
// carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	s, ok := c.Get(replyStatsKey).(*replyStats)
	if !ok {
		return 0, false
	}
	return s.messages, s.keyboard
}
