package bot

import (
	"github.com/m3rciful/gamebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

// Scope restricts the chats a command runs in.
type Scope int

const (
	ScopeAny Scope = iota
	ScopeGroup
	ScopePrivate
)

// Allows reports whether chat is in scope.
func (s Scope) Allows(chat *tele.Chat) bool {
	private := chat == nil || chat.Type == tele.ChatPrivate
	switch s {
	case ScopeGroup:
		return !private
	case ScopePrivate:
		return private
	}
	return true
}

func (s Scope) rejection() string {
	if s == ScopeGroup {
		return view.GroupOnly
	}
	return view.PrivateOnly
}

// Command is one chat command.
type Command interface {
	Name() string
	Description() string
	Scope() Scope
	// GroupAdmin requires the sender to administer the chat's group.
	GroupAdmin() bool
	Execute(c tele.Context) error
}

// command is the Command implementation used by every built-in command.
type command struct {
	name        string
	description string
	scope       Scope
	groupAdmin  bool
	run         tele.HandlerFunc

	// operator commands are reserved to the bot operator and hidden from menus.
	operator bool
}

func (c command) Name() string                   { return c.name }
func (c command) Description() string            { return c.description }
func (c command) Scope() Scope                   { return c.scope }
func (c command) GroupAdmin() bool               { return c.groupAdmin }
func (c command) Execute(ctx tele.Context) error { return c.run(ctx) }

// descriptor adapts cmd to the registry, enforcing scope and group role
// before Execute runs.
func (b *Bot) descriptor(cmd Command) commands.Command {
	operator := false
	if oc, ok := cmd.(command); ok {
		operator = oc.operator
	}
	return commands.Command{
		Description: cmd.Description(),
		AdminOnly:   operator,
		Hidden:      operator,
		Handler:     b.guard(cmd),
	}
}

func (b *Bot) guard(cmd Command) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.WithHandler(c, "cmd."+cmd.Name())
		if !cmd.Scope().Allows(c.Chat()) {
			return b.say(c, cmd.Scope().rejection())
		}
		if cmd.GroupAdmin() {
			g, err := b.chatGroup(c)
			if err != nil {
				return b.respond(c, failure(c), err)
			}
			if g == nil {
				return b.say(c, view.GroupNotFound)
			}
			ok, err := b.isGroupAdmin(c, g.ID)
			if err != nil {
				return b.respond(c, failure(c), err)
			}
			if !ok {
				return b.say(c, view.AdminCommand)
			}
		}
		return cmd.Execute(c)
	}
}

// helpLines lists the commands shown by /help.
func (b *Bot) helpLines() []view.CommandLine {
	lines := make([]view.CommandLine, 0, len(b.commands))
	for _, cmd := range b.commands {
		if oc, ok := cmd.(command); ok && oc.operator {
			continue
		}
		lines = append(lines, view.CommandLine{Name: cmd.Name(), Description: cmd.Description()})
	}
	return lines
}
