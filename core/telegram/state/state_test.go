package state

import (
	"context"
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type gameDraft struct {
	Step  string `json:"step"`
	Sport int64  `json:"sport"`
}

type locationDraft struct {
	Name string `json:"name"`
}

func newStore(t *testing.T) (*MemoryStore, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewMemoryStore(Options{TTL: 10 * time.Minute, Now: clk.Now}), clk
}

func TestManagerRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	mgr := NewManager[gameDraft](store, "game")
	ctx := context.Background()
	key := Key{ChatID: -100, UserID: 7}

	if err := mgr.Set(ctx, key, gameDraft{Step: "date", Sport: 3}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := mgr.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Step != "date" || got.Sport != 3 {
		t.Fatalf("unexpected draft: %+v", got)
	}

	other := Key{ChatID: -100, UserID: 8}
	if mgr.Has(ctx, other) {
		t.Fatalf("session leaked to another user")
	}
}

func TestManagerDeleteEndsSession(t *testing.T) {
	store, _ := newStore(t)
	mgr := NewManager[gameDraft](store, "game")
	ctx := context.Background()
	key := Key{ChatID: 1, UserID: 1}

	_ = mgr.Set(ctx, key, gameDraft{Step: "sport"})
	if err := mgr.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mgr.Has(ctx, key) {
		t.Fatalf("expected no session after delete")
	}
}

func TestStartingFlowReplacesOther(t *testing.T) {
	store, _ := newStore(t)
	games := NewManager[gameDraft](store, "game")
	locations := NewManager[locationDraft](store, "location")
	ctx := context.Background()
	key := Key{ChatID: 5, UserID: 9}

	_ = games.Set(ctx, key, gameDraft{Step: "date"})
	_ = locations.Set(ctx, key, locationDraft{Name: "Arena"})

	if games.Has(ctx, key) {
		t.Fatalf("game flow should be replaced")
	}
	if !locations.Has(ctx, key) {
		t.Fatalf("location flow should be active")
	}
	// Deleting through a manager of another flow leaves the session intact.
	_ = games.Delete(ctx, key)
	if !locations.Has(ctx, key) {
		t.Fatalf("foreign delete removed the session")
	}
}

func TestSessionExpires(t *testing.T) {
	store, clk := newStore(t)
	mgr := NewManager[gameDraft](store, "game")
	ctx := context.Background()
	key := Key{ChatID: 1, UserID: 2}

	_ = mgr.Set(ctx, key, gameDraft{Step: "date"})
	clk.now = clk.now.Add(9 * time.Minute)
	if !mgr.Has(ctx, key) {
		t.Fatalf("session expired too early")
	}
	// Activity refreshes the deadline.
	_ = mgr.Set(ctx, key, gameDraft{Step: "participants"})
	clk.now = clk.now.Add(9 * time.Minute)
	if !mgr.Has(ctx, key) {
		t.Fatalf("refreshed session expired")
	}
	clk.now = clk.now.Add(2 * time.Minute)
	if mgr.Has(ctx, key) {
		t.Fatalf("idle session should expire")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	store, clk := newStore(t)
	ctx := context.Background()

	_ = store.Save(ctx, Key{ChatID: 1, UserID: 1}, Record{Flow: "game"})
	clk.now = clk.now.Add(5 * time.Minute)
	_ = store.Save(ctx, Key{ChatID: 1, UserID: 2}, Record{Flow: "training"})
	clk.now = clk.now.Add(6 * time.Minute)

	removed, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 || store.Len() != 1 {
		t.Fatalf("removed=%d len=%d, want 1/1", removed, store.Len())
	}
}

func TestDispatcherRoutesActiveFlow(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	store, _ := newStore(t)
	d := NewDispatcher(store)

	var handled string
	d.Handle("game", func(c tele.Context) error {
		handled = c.Text()
		return nil
	})

	c := bot.NewContext(tele.Update{Message: &tele.Message{
		Text:   "20.03 18:00",
		Chat:   &tele.Chat{ID: -100},
		Sender: &tele.User{ID: 42},
	}})

	if d.InProgress(c) {
		t.Fatalf("no session yet")
	}

	_ = NewManager[gameDraft](store, "game").Set(context.Background(), KeyFrom(c), gameDraft{Step: "date"})
	if !d.InProgress(c) {
		t.Fatalf("expected game flow in progress")
	}
	if err := d.ManagerHandler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if handled != "20.03 18:00" {
		t.Fatalf("handler got %q", handled)
	}

	flow, err := d.Cancel(c)
	if err != nil || flow != "game" {
		t.Fatalf("cancel: flow=%q err=%v", flow, err)
	}
	if d.InProgress(c) {
		t.Fatalf("cancelled session still active")
	}
}

func TestWithSessionInjectsRecord(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	store, _ := newStore(t)
	c := bot.NewContext(tele.Update{Message: &tele.Message{
		Chat:   &tele.Chat{ID: 3},
		Sender: &tele.User{ID: 3},
	}})
	_ = store.Save(context.Background(), KeyFrom(c), Record{Flow: "location_edit"})

	var seen string
	h := WithSession(store)(func(c tele.Context) error {
		rec, ok := FromContext(c)
		if !ok {
			return errors.New("no record")
		}
		seen = rec.Flow
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if seen != "location_edit" {
		t.Fatalf("flow = %q", seen)
	}
}
