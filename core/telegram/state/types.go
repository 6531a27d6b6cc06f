package state

import (
	"context"
	"encoding/json"
	"time"

	tele "gopkg.in/telebot.v4"
)

// DefaultTTL is the idle timeout applied when none is configured.
const DefaultTTL = 30 * time.Minute

// Key identifies one conversation.
type Key struct {
	ChatID int64
	UserID int64
}

// KeyFrom derives the session key of an update.
func KeyFrom(c tele.Context) Key {
	var k Key
	if chat := c.Chat(); chat != nil {
		k.ChatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		k.UserID = user.ID
	}
	if k.ChatID == 0 {
		k.ChatID = k.UserID
	}
	return k
}

// Record is a stored session: the active flow and its encoded data.
type Record struct {
	Flow      string
	Data      json.RawMessage
	ExpiresAt time.Time
}

// Store persists session records. Save replaces whatever record the key held,
// so a key has at most one active flow.
type Store interface {
	Load(ctx context.Context, key Key) (Record, bool, error)
	Save(ctx context.Context, key Key, rec Record) error
	Delete(ctx context.Context, key Key) error
	// Sweep removes expired records and reports how many were dropped.
	Sweep(ctx context.Context) (int, error)
}

// Options configures a backend.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

func (o Options) normalize() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
