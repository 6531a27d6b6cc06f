package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/gamebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandValidates(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("/NewGame", commands.Command{Description: "new", Handler: noop}); err != nil {
		t.Fatalf("valid command rejected: %v", err)
	}
	bad := map[string]commands.Command{
		"newgame":  {Description: "d", Handler: noop},
		"/bad-cmd": {Description: "d", Handler: noop},
		"/nodesc":  {Handler: noop},
		"/nohand":  {Description: "d"},
		"/newgame": {Description: "dup", Handler: noop},
	}
	for name, cmd := range bad {
		if err := reg.RegisterCommand(name, cmd); err == nil {
			t.Fatalf("%s accepted", name)
		}
	}
	if n := len(reg.Commands()); n != 1 {
		t.Fatalf("commands = %d, want 1", n)
	}
}

func TestListCommandsHidesOperatorCommands(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/mygames", commands.Command{Description: "games", Handler: noop})
	_ = reg.RegisterCommand("/help", commands.Command{Description: "help", Handler: noop})
	_ = reg.RegisterCommand("/seedsports", commands.Command{Description: "seed", Handler: noop, AdminOnly: true, Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "help" || visible[1].Text != "mygames" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all = %+v", all)
	}
}

func TestLookupCommand(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/join", commands.Command{Description: "join", Handler: noop})
	key, _, ok := reg.LookupCommand("/JOIN@gamebot abc")
	if !ok || key != "/join" {
		t.Fatalf("lookup = %q, %v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("join"); ok {
		t.Fatalf("plain text resolved to a command")
	}
}

func TestRegisterCallback(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("b", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = reg.RegisterCallback("a", noop)
	if err := reg.RegisterCallback("a", noop); err == nil {
		t.Fatalf("duplicate accepted")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatalf("empty key accepted")
	}
	if keys := reg.ListCallbacks(); len(keys) != 2 || keys[0] != "a" {
		t.Fatalf("keys = %v", keys)
	}
	if _, ok := reg.GetCallback("missing"); ok {
		t.Fatalf("missing key found")
	}
	before := reg.CallbackNotFound()
	reg.SetCallbackNotFound(nil)
	if reg.CallbackNotFound() == nil || before == nil {
		t.Fatalf("nil must not replace the fallback")
	}
}

type menu struct {
	got []tele.Command
	err error
}

func (m *menu) SetCommands(opts ...interface{}) error {
	if len(opts) > 0 {
		m.got, _ = opts[0].([]tele.Command)
	}
	return m.err
}

func TestPublishCommands(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/help", commands.Command{Description: "help", Handler: noop})
	m := &menu{}
	if err := PublishCommands(m, reg); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(m.got) != 1 || m.got[0].Text != "help" {
		t.Fatalf("menu = %+v", m.got)
	}
	m.err = errors.New("forbidden")
	if err := PublishCommands(m, reg); err == nil {
		t.Fatalf("publish error swallowed")
	}
}
