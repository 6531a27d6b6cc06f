package helpers

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type account struct{ id int64 }

func TestCurrentUserResolvesOncePerUpdate(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	c := b.NewContext(tele.Update{ID: 1, Message: &tele.Message{Sender: &tele.User{ID: 77}}})

	calls := 0
	resolve := func(_ tele.Context, s *tele.User) (*account, error) {
		calls++
		return &account{id: s.ID}, nil
	}
	for range 2 {
		u, err := CurrentUser(c, "user", resolve)
		if err != nil || u.id != 77 {
			t.Fatalf("CurrentUser = %+v, %v", u, err)
		}
	}
	if calls != 1 {
		t.Fatalf("resolve calls = %d, want 1", calls)
	}
}

func TestCurrentUserWithoutSender(t *testing.T) {
	b, _ := tele.NewBot(tele.Settings{Offline: true})
	c := b.NewContext(tele.Update{ID: 2})
	_, err := CurrentUser(c, "user", func(tele.Context, *tele.User) (*account, error) {
		t.Fatalf("resolve called without sender")
		return nil, nil
	})
	if !errors.Is(err, ErrNoSender) {
		t.Fatalf("err = %v", err)
	}
}

func TestCurrentUserDoesNotCacheErrors(t *testing.T) {
	b, _ := tele.NewBot(tele.Settings{Offline: true})
	c := b.NewContext(tele.Update{ID: 3, Message: &tele.Message{Sender: &tele.User{ID: 5}}})
	boom := errors.New("db down")
	if _, err := CurrentUser(c, "user", func(tele.Context, *tele.User) (*account, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	u, err := CurrentUser(c, "user", func(_ tele.Context, s *tele.User) (*account, error) { return &account{id: s.ID}, nil })
	if err != nil || u.id != 5 {
		t.Fatalf("retry = %+v, %v", u, err)
	}
}
