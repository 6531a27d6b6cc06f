package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Meta identifies the update a log line belongs to.
type Meta struct {
	RID      string
	TraceID  string
	UpdateID int
	UserID   int64
	ChatID   int64
	Handler  string
}

type (
	metaKey   struct{}
	loggerKey struct{}
)

// MetaFrom returns the update metadata stored in ctx.
func MetaFrom(ctx context.Context) Meta {
	if ctx == nil {
		return Meta{}
	}
	m, _ := ctx.Value(metaKey{}).(Meta)
	return m
}

func withMeta(ctx context.Context, edit func(*Meta)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	m := MetaFrom(ctx)
	edit(&m)
	return context.WithValue(ctx, metaKey{}, m)
}

// WithLogger stores log in ctx. A nil log leaves ctx unchanged.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, log)
}

// FromContext returns the logger stored in ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *Meta) { m.RID = rid })
}

func RIDFrom(ctx context.Context) string { return MetaFrom(ctx).RID }

// NewTraceID returns a random id for one update's journey through the bot.
func NewTraceID() string {
	return uuid.NewString()
}

func WithTrace(ctx context.Context, traceID string) context.Context {
	return withMeta(ctx, func(m *Meta) { m.TraceID = traceID })
}

func TraceIDFrom(ctx context.Context) string { return MetaFrom(ctx).TraceID }

// WithUpdateMeta records the Telegram identifiers of the current update.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *Meta) {
		m.UpdateID = updateID
		m.UserID = userID
		m.ChatID = chatID
	})
}

func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withMeta(ctx, func(m *Meta) { m.Handler = handler })
}

func HandlerFrom(ctx context.Context) string { return MetaFrom(ctx).Handler }

func UserIDFrom(ctx context.Context) int64 { return MetaFrom(ctx).UserID }

func ChatIDFrom(ctx context.Context) int64 { return MetaFrom(ctx).ChatID }

func UpdateIDFrom(ctx context.Context) int { return MetaFrom(ctx).UpdateID }

// attrs lists the non-zero identifiers as log attributes.
func (m Meta) attrs() []slog.Attr {
	out := make([]slog.Attr, 0, 6)
	if m.RID != "" {
		out = append(out, slog.String("rid", m.RID))
	}
	if m.TraceID != "" {
		out = append(out, slog.String("trace_id", m.TraceID))
	}
	if m.UpdateID != 0 {
		out = append(out, slog.Int("update_id", m.UpdateID))
	}
	if m.UserID != 0 {
		out = append(out, slog.Int64("user_id", m.UserID))
	}
	if m.ChatID != 0 {
		out = append(out, slog.Int64("chat_id", m.ChatID))
	}
	if m.Handler != "" {
		out = append(out, slog.String("handler", m.Handler))
	}
	return out
}
