package logger

import (
	"log/slog"
	"strings"
)

// knownOutcome is the closed vocabulary of the outcome field.
var knownOutcome = map[string]bool{
	"ok": true, "fail": true, "cancelled": true, "rate_limited": true,
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// normalizeEnums lower-cases status and outcome and removes outcomes
// outside the vocabulary.
func normalizeEnums(f fields) {
	if s, ok := f["status"].(string); ok && s != "" {
		f["status"] = strings.ToLower(strings.TrimSpace(s))
	}
	if o, ok := f["outcome"].(string); ok {
		o = strings.ToLower(strings.TrimSpace(o))
		if knownOutcome[o] {
			f["outcome"] = o
		} else {
			delete(f, "outcome")
		}
	}
}

// defaultKeyOrder puts identity and correlation keys first, then the domain
// identifiers, then error details. Remaining keys follow alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "trace_id",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "cb_key", "outcome", "duration_ms",
	"messages", "kb", "count", "payload", "lang", "username",
	"mode", "listen", "public_url", "http_code",
	"db", "host", "port",
	"group_id", "game_id", "game_type", "sport_id", "location_id",
	"flow", "step", "participation", "sessions", "expired",
	"err", "err_code", "err_kind", "cause", "retryable", "attempts", "backoff_ms",
}
