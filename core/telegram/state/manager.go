package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
)

// Manager is a typed view of the store for one flow. Records that belong to
// another flow read as absent.
type Manager[T any] struct {
	store Store
	flow  string
}

// NewManager binds a flow name to store.
func NewManager[T any](store Store, flow string) *Manager[T] {
	return &Manager[T]{store: store, flow: flow}
}

// Flow returns the flow name.
func (m *Manager[T]) Flow() string { return m.flow }

// Set stores data as the key's active flow, replacing any other flow.
func (m *Manager[T]) Set(ctx context.Context, key Key, data T) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s session: %w", m.flow, err)
	}
	if err := m.store.Save(ctx, key, Record{Flow: m.flow, Data: raw}); err != nil {
		return err
	}
	logger.Debug(ctx, "session", "session.save",
		slog.String("status", "ok"),
		slog.String("flow", m.flow),
		slog.Int64("chat_id", key.ChatID),
		slog.Int64("user_id", key.UserID),
	)
	return nil
}

// Get returns the key's data when its active flow is m's flow.
func (m *Manager[T]) Get(ctx context.Context, key Key) (T, bool, error) {
	var zero T
	rec, ok, err := m.store.Load(ctx, key)
	if err != nil || !ok || rec.Flow != m.flow {
		return zero, false, err
	}
	var data T
	if err := json.Unmarshal(rec.Data, &data); err != nil {
		return zero, false, fmt.Errorf("decode %s session: %w", m.flow, err)
	}
	return data, true, nil
}

// Delete clears the key when its active flow is m's flow.
func (m *Manager[T]) Delete(ctx context.Context, key Key) error {
	rec, ok, err := m.store.Load(ctx, key)
	if err != nil {
		return err
	}
	if !ok || rec.Flow != m.flow {
		return nil
	}
	logger.Debug(ctx, "session", "session.delete",
		slog.String("status", "ok"),
		slog.String("flow", m.flow),
		slog.Int64("chat_id", key.ChatID),
		slog.Int64("user_id", key.UserID),
	)
	return m.store.Delete(ctx, key)
}

// Has reports whether the key's active flow is m's flow.
func (m *Manager[T]) Has(ctx context.Context, key Key) bool {
	rec, ok, err := m.store.Load(ctx, key)
	return err == nil && ok && rec.Flow == m.flow
}
