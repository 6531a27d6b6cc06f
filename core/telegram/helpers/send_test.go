package helpers

import (
	"errors"
	"testing"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

type recordingCtx struct {
	tele.Context
	sent   []string
	edited []string
	err    error
}

func (r *recordingCtx) Send(what any, _ ...any) error {
	r.sent = append(r.sent, what.(string))
	return r.err
}

func (r *recordingCtx) Edit(what any, _ ...any) error {
	r.edited = append(r.edited, what.(string))
	return r.err
}

func newRecordingCtx(t *testing.T) *recordingCtx {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	upd := tele.Update{ID: 7, Message: &tele.Message{
		Chat:   &tele.Chat{ID: 100},
		Sender: &tele.User{ID: 200},
	}}
	return &recordingCtx{Context: b.NewContext(upd)}
}

func TestSendTextInlineWithoutDispatcher(t *testing.T) {
	SetDispatcher(nil)
	c := newRecordingCtx(t)
	if err := SendText(c, "hello", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0] != "hello" {
		t.Fatalf("sent = %v", c.sent)
	}
}

func TestEditTextPropagatesError(t *testing.T) {
	SetDispatcher(nil)
	c := newRecordingCtx(t)
	c.err = errors.New("boom")
	if err := EditText(c, "x", &tele.SendOptions{}); !errors.Is(err, c.err) {
		t.Fatalf("err = %v", err)
	}
	if len(c.edited) != 1 {
		t.Fatalf("edited = %v", c.edited)
	}
}

func TestClosedQueueFallsBackInline(t *testing.T) {
	d := sender.NewDispatcher(sender.Options{})
	d.Close()
	SetDispatcher(d)
	t.Cleanup(func() { SetDispatcher(nil) })

	c := newRecordingCtx(t)
	if err := SendText(c, "late", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0] != "late" {
		t.Fatalf("sent = %v", c.sent)
	}
}

func TestBuildContextIsCachedAndTagged(t *testing.T) {
	c := newRecordingCtx(t)
	first := BuildContext(c)
	if rid := logger.RIDFrom(first); rid != logger.BuildRID(7, 100, 200) {
		t.Fatalf("rid = %q", rid)
	}
	if logger.UpdateIDFrom(first) != 7 || logger.ChatIDFrom(first) != 100 || logger.UserIDFrom(first) != 200 {
		t.Fatalf("meta = %+v", logger.MetaFrom(first))
	}
	if BuildContext(c) != first {
		t.Fatal("context rebuilt for the same update")
	}
	ctx := WithHandler(c, "cmd.start")
	if ctx == first {
		t.Fatal("handler not applied")
	}
	if WithHandler(c, "cmd.start") != ctx {
		t.Fatal("repeat handler replaced context")
	}
}
