package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
)

// MemoryStore keeps sessions in a process-local map.
type MemoryStore struct {
	opts Options

	mu       sync.Mutex
	sessions map[Key]Record
}

// NewMemoryStore constructs an in-memory store.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:     opts.normalize(),
		sessions: make(map[Key]Record),
	}
}

// Load returns the live record for key. Expired records are dropped.
func (m *MemoryStore) Load(_ context.Context, key Key) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[key]
	if !ok {
		return Record{}, false, nil
	}
	if !m.opts.Now().Before(rec.ExpiresAt) {
		delete(m.sessions, key)
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Save stores rec and refreshes its expiry.
func (m *MemoryStore) Save(_ context.Context, key Key, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ExpiresAt = m.opts.Now().Add(m.opts.TTL)
	m.sessions[key] = rec
	return nil
}

// Delete removes the record for key.
func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, key)
	return nil
}

// Sweep drops every expired record.
func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.Now()
	n := 0
	for k, rec := range m.sessions {
		if !now.Before(rec.ExpiresAt) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored records, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RunJanitor sweeps store every interval until ctx is done.
func RunJanitor(ctx context.Context, store Store, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Sweep(ctx)
			if err != nil {
				logger.Warn(ctx, "session", "session.sweep",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
				continue
			}
			if removed > 0 {
				logger.Debug(ctx, "session", "session.sweep",
					slog.String("status", "ok"),
					slog.Int("expired", removed),
				)
			}
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
