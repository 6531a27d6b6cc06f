// Package commands describes chat commands and parses command text.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is a registered chat command.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands run for the bot operator only.
	AdminOnly bool
	// Hidden commands stay out of the Telegram command menu.
	Hidden bool
}

// Parse splits "/Name@bot args" into "/name" and "args". ok is false when
// text is not a command.
func Parse(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head, "@")
	if !Valid(head[1:]) {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// Valid reports whether name (without slash) is accepted by setMyCommands:
// 1 to 32 latin letters, digits or underscores.
func Valid(name string) bool {
	if name == "" || len(name) > 32 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
