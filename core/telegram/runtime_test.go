package telegram

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/gamebot/core/config"

	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type flakyTransport struct {
	fails  int
	calls  int
	bodies []string
	err    error
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(b))
	}
	if f.calls <= f.fails {
		return nil, f.err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
}

func post(t *testing.T, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return req
}

func TestRetryTransportReplaysBody(t *testing.T) {
	base := &flakyTransport{fails: 2, err: timeoutErr{}}
	rt := &retryTransport{base: base, retries: 3, backoff: time.Millisecond}
	resp, err := rt.RoundTrip(post(t, `{"text":"hi"}`))
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	resp.Body.Close()
	if base.calls != 3 {
		t.Fatalf("calls = %d, want 3", base.calls)
	}
	for _, b := range base.bodies {
		if b != `{"text":"hi"}` {
			t.Fatalf("body not replayed: %q", base.bodies)
		}
	}
}

func TestRetryTransportStopsOnPermanentError(t *testing.T) {
	base := &flakyTransport{fails: 5, err: errors.New("certificate signed by unknown authority")}
	rt := &retryTransport{base: base, retries: 3, backoff: time.Millisecond}
	if _, err := rt.RoundTrip(post(t, "x")); err == nil {
		t.Fatalf("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("calls = %d, want 1", base.calls)
	}
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &flakyTransport{fails: 10, err: timeoutErr{}}
	rt := &retryTransport{base: base, retries: 2, backoff: time.Millisecond}
	if _, err := rt.RoundTrip(post(t, "x")); err == nil {
		t.Fatalf("expected error")
	}
	if base.calls != 3 {
		t.Fatalf("calls = %d, want 3", base.calls)
	}
}

func TestNewPoller(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.RunMode = coreconfig.RunModeLongpoll
	lp, ok := newPoller(cfg).(*tele.LongPoller)
	if !ok || lp.Timeout != defaultLongPollTimeout {
		t.Fatalf("long poller = %+v", lp)
	}

	cfg.Telegram.RunMode = coreconfig.RunModeWebhook
	cfg.Webhook = coreconfig.WebhookConfig{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook", Secret: "s3cret"}
	wh, ok := newPoller(cfg).(*tele.Webhook)
	if !ok {
		t.Fatalf("webhook mode built %T", newPoller(cfg))
	}
	if wh.Listen != "0.0.0.0:8443" || wh.SecretToken != "s3cret" || wh.Endpoint.PublicURL != "https://bot.example.com/hook" {
		t.Fatalf("webhook = %+v", wh)
	}
}

func TestDefaultMiddlewares(t *testing.T) {
	names := func(mws []Middleware) string {
		var out []string
		for _, m := range mws {
			out = append(out, m.Name)
		}
		return strings.Join(out, ",")
	}
	if got := names(DefaultMiddlewares(nil, nil)); got != "recover,logger,metrics" {
		t.Fatalf("without config = %s", got)
	}
	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500}}
	if got := names(DefaultMiddlewares(cfg, nil)); got != "recover,rate_limit,logger,metrics" {
		t.Fatalf("with limit = %s", got)
	}
}

func TestSenderOptions(t *testing.T) {
	opts := senderOptions(coreconfig.SenderConfig{Workers: 2, MaxRetries: 1, RetryBackoff: time.Second})
	if opts.Workers != 2 || opts.MaxRetries != 1 || opts.RetryBackoff != time.Second {
		t.Fatalf("options = %+v", opts)
	}
}
