package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func render(t *testing.T, format logFormat, ctx context.Context, component, event string, attrs ...slog.Attr) string {
	t.Helper()
	var buf bytes.Buffer
	w := newAsyncWriter([]sink{bufferedSink(&buf, slog.LevelDebug)})
	log := slog.New(newHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: w,
		format: format,
	})).With("component", component)
	LogEvent(ctx, log, slog.LevelInfo, event, attrs...)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func assertOrder(t *testing.T, line string, parts ...string) {
	t.Helper()
	pos := -1
	for _, p := range parts {
		idx := strings.Index(line, p)
		if idx <= pos {
			t.Fatalf("%q missing or out of order in %s", p, line)
		}
		pos = idx
	}
}

func TestKVLineStartsWithIdentityKeys(t *testing.T) {
	ctx := WithUpdateMeta(WithRID(context.Background(), "rid-123"), 42, 7, 9)
	line := render(t, formatKV, ctx, "app", "test.event",
		slog.String("status", "OK"),
		slog.String("cause", "unit"),
	)
	tokens := strings.Split(line, " ")
	for i, prefix := range []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"} {
		if i >= len(tokens) || !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d of %q, want prefix %s", i, line, prefix)
		}
	}
	assertOrder(t, line, "update_id=42", "user_id=7", "chat_id=9", "cause=unit")
}

func TestJSONLineKeepsFullRID(t *testing.T) {
	ctx := WithRID(context.Background(), "12:34:56")
	line := render(t, formatJSON, ctx, "service.games", "game.create",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)
	assertOrder(t, line,
		`{"ts":`, `"level":"INFO"`, `"component":"service.games"`, `"event":"game.create"`,
		`"status":"fail"`, `"rid":"`+CompactRID("12:34:56")+`"`, `"rid_full":"12:34:56"`, `"err":"boom"`,
	)
}

func TestKVLineOmitsFullRID(t *testing.T) {
	line := render(t, formatKV, WithRID(context.Background(), "123:456:789"), "app", "rid.test")
	if !strings.Contains(line, "rid="+CompactRID("123:456:789")) || strings.Contains(line, "rid_full=") {
		t.Fatalf("unexpected rid rendering: %s", line)
	}
}

func TestDomainKeysFollowFixedOrder(t *testing.T) {
	line := render(t, formatKV, context.Background(), "service.games", "participant.upsert",
		slog.String("err", "none"),
		slog.String("flow", "game"),
		slog.Int64("game_id", 5),
		slog.Int64("group_id", 3),
		slog.String("zeta", "last"),
	)
	assertOrder(t, line, "group_id=3", "game_id=5", "flow=game", "err=none", "zeta=last")
}

func TestContextMetaDoesNotOverrideRecord(t *testing.T) {
	ctx := WithTrace(WithHandler(context.Background(), "callback.join"), "trace-1")
	line := render(t, formatKV, ctx, "bot", "join", slog.String("handler", "explicit"))
	if !strings.Contains(line, "handler=explicit") || !strings.Contains(line, "trace_id=trace-1") {
		t.Fatalf("unexpected meta: %s", line)
	}
}

func TestDurationsAndQuoting(t *testing.T) {
	line := render(t, formatKV, context.Background(), "app", "timing",
		slog.Duration("duration", 1500000),
		slog.String("payload", `a b="c"`),
		slog.String("outcome", "weird"),
	)
	if !strings.Contains(line, "duration_ms=2") {
		t.Fatalf("duration not in ms: %s", line)
	}
	if !strings.Contains(line, `payload="a b=\"c\""`) {
		t.Fatalf("payload not quoted: %s", line)
	}
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome kept: %s", line)
	}
}

func TestErrorSinkReceivesWarningsOnly(t *testing.T) {
	var all, errs bytes.Buffer
	w := newAsyncWriter([]sink{
		bufferedSink(&all, slog.LevelDebug),
		bufferedSink(&errs, slog.LevelWarn),
	})
	log := slog.New(newHandler(handlerConfig{level: slog.LevelDebug, writer: w, format: formatKV}))
	log.Info("fine")
	log.Warn("careful")
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := strings.Count(all.String(), "\n"); n != 2 {
		t.Fatalf("all sink lines = %d", n)
	}
	if strings.Contains(errs.String(), "event=fine") || !strings.Contains(errs.String(), "event=careful") {
		t.Fatalf("errors sink = %q", errs.String())
	}
}

func TestSamplerRatio(t *testing.T) {
	s := newSampler(1, 3)
	var passed int
	for i := 0; i < 9; i++ {
		if s.allow() {
			passed++
		}
	}
	if passed != 3 {
		t.Fatalf("passed = %d", passed)
	}
	s.set(0, 0)
	if !s.allow() {
		t.Fatal("disabled sampler must allow")
	}
}

func TestParseRatio(t *testing.T) {
	cases := map[string][2]int{"1/10": {1, 10}, "20": {1, 20}, "x": {0, 0}, "-3": {0, 0}}
	for in, want := range cases {
		num, den := parseRatio(in)
		if num != want[0] || den != want[1] {
			t.Fatalf("parseRatio(%q) = %d/%d", in, num, den)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("héllo\x00​world\n", 8); got != "héllowor" {
		t.Fatalf("got %q", got)
	}
}
