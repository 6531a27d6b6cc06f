// Package ui holds reply fallbacks shared by the routers.
package ui

import (
	"github.com/m3rciful/gamebot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// FallbackProvider exposes handlers used when incoming updates
// cannot be mapped to commands, callbacks, or expected documents.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Fallbacks answers unmatched updates with fixed texts. Text and document
// fallbacks only reply in private chats; group chatter is left alone.
// An empty text disables the matching reply.
type Fallbacks struct {
	Text     string
	Document string
	Callback string
}

var _ FallbackProvider = Fallbacks{}

func (f Fallbacks) UnknownText() tele.HandlerFunc {
	return privateReply(f.Text)
}

func (f Fallbacks) UnknownDocument() tele.HandlerFunc {
	return privateReply(f.Document)
}

// UnknownCallback always answers so the client spinner stops.
func (f Fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return callbacks.Answer(c, f.Callback)
	}
}

func privateReply(text string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if text == "" || c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
			return nil
		}
		return c.Send(text)
	}
}
