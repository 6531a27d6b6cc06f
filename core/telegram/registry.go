package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	"github.com/m3rciful/gamebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// NamedCommand pairs a command with its "/name".
type NamedCommand struct {
	Name string
	commands.Command
}

// Registry holds the commands and callback handlers of a bot.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	callbacks map[string]tele.HandlerFunc
	notFound  tele.HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		notFound: func(c tele.Context) error {
			return callbacks.Answer(c, "Unsupported action")
		},
	}
}

func wireWarn(event string, attrs ...slog.Attr) {
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, event, attrs...)
}

// RegisterCommand adds cmd under name ("/name"). Names are matched
// case-insensitively.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(key, "/") || !commands.Valid(key[1:]) || cmd.Handler == nil || cmd.Description == "" {
		wireWarn("register.command", slog.String("status", "skip"), slog.String("name", name))
		return fmt.Errorf("telegram: invalid command %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[key]; dup {
		wireWarn("register.command", slog.String("status", "duplicate"), slog.String("name", key))
		return fmt.Errorf("telegram: command %s already registered", key)
	}
	r.commands[key] = cmd
	return nil
}

// Commands returns every command sorted by name.
func (r *Registry) Commands() []NamedCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NamedCommand, 0, len(r.commands))
	for name, cmd := range r.commands {
		out = append(out, NamedCommand{Name: name, Command: cmd})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListCommands returns the command menu entries. With visibleOnly, hidden
// and operator commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for _, nc := range r.Commands() {
		if visibleOnly && (nc.Hidden || nc.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(nc.Name, "/"), Description: nc.Description})
	}
	return list
}

// LookupCommand resolves message text such as "/NewGame@bot" to its command.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	name, _, ok := commands.Parse(text)
	if !ok {
		return "", commands.Command{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return name, cmd, ok
}

// RegisterCallback binds handler to a callback unique key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		wireWarn("register.callback", slog.String("status", "skip"), slog.String("key", key))
		return fmt.Errorf("telegram: invalid callback %q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		wireWarn("register.callback", slog.String("status", "duplicate"), slog.String("key", key))
		return fmt.Errorf("telegram: callback %s already registered", key)
	}
	r.callbacks[key] = handler
	return nil
}

func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered keys in order.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetCallbackNotFound replaces the handler for unknown keys. nil is ignored.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.notFound = h
	r.mu.Unlock()
}

func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notFound
}

// CommandPublisher is the part of tele.Bot that sets the command menu.
type CommandPublisher interface {
	SetCommands(opts ...interface{}) error
}

// PublishCommands sends the visible commands to the Telegram menu.
func PublishCommands(api CommandPublisher, reg *Registry) error {
	list := reg.ListCommands(true)
	if err := api.SetCommands(list); err != nil {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelError, "register.menu",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "register.menu",
		slog.String("status", "ok"),
		slog.Int("commands", len(list)),
	)
	return nil
}
