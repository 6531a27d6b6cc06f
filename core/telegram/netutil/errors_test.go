package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", timeoutErr{}, KindTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.telegram.org"}, KindDNS},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, KindDial},
		{"flood", tele.FloodError{RetryAfter: 3}, KindFlood},
		{"bad request", &tele.Error{Code: 400, Description: "Bad Request: message is not modified"}, KindHTTP4xx},
		{"server", &tele.Error{Code: 502, Description: "Bad Gateway"}, KindHTTP5xx},
		{"code in text", errors.New("telegram: internal error (500)"), KindHTTP5xx},
		{"plain", errors.New("boom"), KindUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("%s: Classify() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) {
		t.Fatalf("nil error must not be retried")
	}
	if !Retryable(timeoutErr{}) {
		t.Fatalf("timeouts must be retried")
	}
	if !Retryable(&tele.Error{Code: 503}) {
		t.Fatalf("5xx must be retried")
	}
	if Retryable(&tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}) {
		t.Fatalf("4xx must not be retried")
	}
	if Retryable(errors.New("boom")) {
		t.Fatalf("unknown errors must not be retried")
	}
}

func TestRetryAfter(t *testing.T) {
	d, ok := RetryAfter(tele.FloodError{RetryAfter: 2})
	if !ok || d != 2*time.Second {
		t.Fatalf("RetryAfter = %v, %v", d, ok)
	}
	if _, ok := RetryAfter(errors.New("boom")); ok {
		t.Fatalf("plain errors carry no delay")
	}
}

func TestBackoff(t *testing.T) {
	if got := Backoff(100*time.Millisecond, 3); got != 300*time.Millisecond {
		t.Fatalf("Backoff = %v", got)
	}
	if got := Backoff(0, 3); got != 0 {
		t.Fatalf("zero base must give zero, got %v", got)
	}
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AA-bb_CC/sendMessage": EOF`)
	got := Redact(err)
	want := `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`
	if got != want {
		t.Fatalf("Redact = %q, want %q", got, want)
	}
}
