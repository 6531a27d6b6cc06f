package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	return b.NewContext(upd)
}

func messageFrom(updateID int, userID int64) tele.Update {
	return tele.Update{
		ID: updateID,
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   "hi",
		},
	}
}

func TestRateLimitDropsBurstsPerUser(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		OnLimited: func(tele.Context) error { limited++; return nil },
		Now:       func() time.Time { return now },
	})
	var handled int
	h := mw(func(tele.Context) error { handled++; return nil })

	for i, upd := range []tele.Update{messageFrom(1, 7), messageFrom(2, 7), messageFrom(3, 8)} {
		if err := h(newContext(t, upd)); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if handled != 2 || limited != 1 {
		t.Fatalf("handled=%d limited=%d", handled, limited)
	}

	now = now.Add(time.Second)
	if err := h(newContext(t, messageFrom(4, 7))); err != nil {
		t.Fatalf("after interval: %v", err)
	}
	if handled != 3 {
		t.Fatalf("user not released after interval, handled=%d", handled)
	}
}

func TestRateLimitExcludedKinds(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"callback": {}},
	})
	var handled int
	h := mw(func(tele.Context) error { handled++; return nil })
	press := tele.Update{ID: 1, Callback: &tele.Callback{Sender: &tele.User{ID: 7}}}
	for i := 0; i < 3; i++ {
		_ = h(newContext(t, press))
	}
	if handled != 3 {
		t.Fatalf("callbacks limited: handled=%d", handled)
	}
}

func TestRecoverTurnsPanicIntoError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newContext(t, messageFrom(1, 7)))
	if err == nil || err.Error() != "panic: boom" {
		t.Fatalf("err = %v", err)
	}
	ok := RecoverMiddleware(func(tele.Context) error { return errors.New("plain") })
	if err := ok(newContext(t, messageFrom(2, 7))); err == nil || err.Error() != "plain" {
		t.Fatalf("err = %v", err)
	}
}

type quietContext struct{ tele.Context }

func (quietContext) Send(any, ...any) error { return nil }

func TestMessageCounters(t *testing.T) {
	c := quietContext{newContext(t, messageFrom(1, 7))}
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("plain"); err != nil {
			return err
		}
		return c.Send("menu", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	msgs, kb := GetCounters(c)
	if msgs != 2 || !kb {
		t.Fatalf("messages=%d kb=%v", msgs, kb)
	}
}

type flowOf string

func (f flowOf) ActiveFlow(tele.Context) string { return string(f) }

func TestStateGuard(t *testing.T) {
	var ran, rejected bool
	guard := State(flowOf("location"), func(tele.Context) error { rejected = true; return nil }, "location")
	if err := guard(func(tele.Context) error { ran = true; return nil })(newContext(t, messageFrom(1, 7))); err != nil {
		t.Fatalf("guard: %v", err)
	}
	if !ran || rejected {
		t.Fatalf("ran=%v rejected=%v", ran, rejected)
	}

	ran = false
	guard = State(flowOf(""), func(tele.Context) error { rejected = true; return nil }, "location")
	_ = guard(func(tele.Context) error { ran = true; return nil })(newContext(t, messageFrom(2, 7)))
	if ran || !rejected {
		t.Fatalf("ran=%v rejected=%v", ran, rejected)
	}
}

func TestReceiptOncePerUpdate(t *testing.T) {
	s := &seenUpdates{ttl: time.Second, ids: make(map[int]time.Time)}
	now := time.Now()
	if !s.first(1, now) || s.first(1, now) {
		t.Fatal("update 1 should log once")
	}
	if !s.first(1, now.Add(2*time.Second)) {
		t.Fatal("entry should expire after ttl")
	}
}

func TestOperatorOnly(t *testing.T) {
	var rejected, passed int
	mw := OperatorOnly(42, func(tele.Context) error { rejected++; return nil })
	h := mw(func(tele.Context) error { passed++; return nil })

	_ = h(newContext(t, messageFrom(1, 42)))
	_ = h(newContext(t, messageFrom(2, 7)))
	if passed != 1 || rejected != 1 {
		t.Fatalf("passed=%d rejected=%d", passed, rejected)
	}

	open := OperatorOnly(0, nil)(func(tele.Context) error { passed++; return nil })
	_ = open(newContext(t, messageFrom(3, 7)))
	if passed != 2 {
		t.Fatalf("zero operator should pass everyone, passed=%d", passed)
	}
}
