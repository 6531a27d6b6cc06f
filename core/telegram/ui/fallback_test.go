package ui

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

type recordCtx struct {
	tele.Context
	chat *tele.Chat
	sent []any
}

func (c *recordCtx) Chat() *tele.Chat { return c.chat }

func (c *recordCtx) Send(what any, _ ...any) error {
	c.sent = append(c.sent, what)
	return nil
}

func TestUnknownTextRepliesOnlyInPrivate(t *testing.T) {
	fb := Fallbacks{Text: "use /help"}

	private := &recordCtx{chat: &tele.Chat{ID: 1, Type: tele.ChatPrivate}}
	if err := fb.UnknownText()(private); err != nil {
		t.Fatalf("private: %v", err)
	}
	if len(private.sent) != 1 || private.sent[0] != "use /help" {
		t.Fatalf("private sent = %v", private.sent)
	}

	group := &recordCtx{chat: &tele.Chat{ID: -1, Type: tele.ChatSuperGroup}}
	if err := fb.UnknownText()(group); err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(group.sent) != 0 {
		t.Fatalf("group sent = %v", group.sent)
	}
}

func TestEmptyFallbackIsSilent(t *testing.T) {
	c := &recordCtx{chat: &tele.Chat{ID: 1, Type: tele.ChatPrivate}}
	if err := (Fallbacks{}).UnknownDocument()(c); err != nil {
		t.Fatalf("document: %v", err)
	}
	if len(c.sent) != 0 {
		t.Fatalf("sent = %v", c.sent)
	}
}
