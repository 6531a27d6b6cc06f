// Package bot binds chat commands, inline buttons and membership updates to
// the domain services and creation flows.
package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/core/telegram/ui"
	"github.com/m3rciful/gamebot/internal/flow"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/service"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

// Observer receives participant changes for metrics.
type Observer interface {
	ParticipantChanged(status string)
}

type nopObserver struct{}

func (nopObserver) ParticipantChanged(string) {}

// Deps wires the bot to the domain.
type Deps struct {
	Services *service.Services
	Flows    *flow.Flows
	Sessions *state.Dispatcher
	Observer Observer
}

// Bot owns the command set and the handlers behind every callback.
type Bot struct {
	svc      *service.Services
	flows    *flow.Flows
	sessions *state.Dispatcher
	obs      Observer
	commands []Command
}

// New builds the bot and its command set.
func New(d Deps) *Bot {
	b := &Bot{
		svc:      d.Services,
		flows:    d.Flows,
		sessions: d.Sessions,
		obs:      d.Observer,
	}
	if b.obs == nil {
		b.obs = nopObserver{}
	}
	b.commands = b.buildCommands()
	return b
}

func (b *Bot) fallbacks() ui.Fallbacks {
	return ui.Fallbacks{
		Text:     view.UnknownText,
		Document: view.UnknownDocument,
		Callback: view.UnknownAction,
	}
}

// Commands returns the command set in help order.
func (b *Bot) Commands() []Command { return b.commands }

// Register puts commands, callbacks and flow text handlers into reg.
func (b *Bot) Register(reg *tg.Registry) error {
	var errs []error
	for _, cmd := range b.commands {
		if err := reg.RegisterCommand("/"+cmd.Name(), b.descriptor(cmd)); err != nil {
			errs = append(errs, err)
		}
	}
	for key, h := range b.callbackHandlers() {
		if err := reg.RegisterCallback(key, h); err != nil {
			errs = append(errs, err)
		}
	}
	reg.SetCallbackNotFound(b.fallbacks().UnknownCallback())

	b.sessions.Handle(flow.NameGame, b.onText(b.flows.Game.HandleText))
	b.sessions.Handle(flow.NameTraining, b.onText(b.flows.Training.HandleText))
	b.sessions.Handle(flow.NameLocation, b.onText(b.flows.Location.HandleText))
	b.sessions.Handle(flow.NameLocationEdit, b.onText(b.flows.LocationEdit.HandleText))
	return errors.Join(errs...)
}

type textHandler func(ctx context.Context, key state.Key, text string) (flow.Reply, error)

func (b *Bot) onText(h textHandler) tele.HandlerFunc {
	return func(c tele.Context) error {
		r, err := h(tghelpers.BuildContext(c), state.KeyFrom(c), c.Text())
		return b.respond(c, r, err)
	}
}

const userKey = "gamebot_user"

// currentUser resolves the sender, registering unknown senders.
func (b *Bot) currentUser(c tele.Context) (*models.User, error) {
	return tghelpers.CurrentUser(c, userKey, func(c tele.Context, sender *tele.User) (*models.User, error) {
		ctx := tghelpers.BuildContext(c)
		u, err := b.svc.Users.GetByTelegramID(ctx, sender.ID)
		if errors.Is(err, models.ErrNotFound) {
			u, err = b.svc.Users.FindOrCreate(ctx, telegramUser(sender))
		}
		return u, err
	})
}

func telegramUser(u *tele.User) service.TelegramUser {
	return service.TelegramUser{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// chatGroup returns the group registered for the current chat, or nil.
func (b *Bot) chatGroup(c tele.Context) (*models.Group, error) {
	chat := c.Chat()
	if chat == nil {
		return nil, nil
	}
	g, err := b.svc.Groups.GetByChatID(tghelpers.BuildContext(c), chat.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return g, err
}

func (b *Bot) isGroupAdmin(c tele.Context, groupID int64) (bool, error) {
	u, err := b.currentUser(c)
	if err != nil {
		return false, err
	}
	return b.svc.Groups.IsAdmin(tghelpers.BuildContext(c), u.ID, groupID)
}

// respond sends r. A non-nil err ends the sender's session and falls back to
// a generic failure message when the flow had nothing to say.
func (b *Bot) respond(c tele.Context, r flow.Reply, err error) error {
	if err == nil {
		return b.send(c, r)
	}
	ctx := tghelpers.BuildContext(c)
	if name, cerr := b.sessions.Cancel(c); cerr != nil {
		logger.Warn(ctx, "bot", "session.cleanup",
			slog.String("status", "fail"),
			slog.String("flow", name),
			slog.String("err", cerr.Error()),
		)
	}
	if r.Empty() {
		r = failure(c)
	}
	if serr := b.send(c, r); serr != nil {
		logger.Warn(ctx, "bot", "reply.failure",
			slog.String("status", "fail"),
			slog.String("err", serr.Error()),
		)
	}
	return err
}

func failure(c tele.Context) flow.Reply {
	if c.Callback() != nil {
		return flow.Reply{Notice: view.GenericFailure}
	}
	return flow.Reply{Text: view.GenericFailure}
}

// send delivers a reply. A notice answers the pressed button; outside a
// callback it becomes a plain message.
func (b *Bot) send(c tele.Context, r flow.Reply) error {
	text := r.Text
	if r.Notice != "" {
		if c.Callback() != nil {
			if err := callbacks.Answer(c, r.Notice); err != nil {
				return err
			}
		} else if text == "" {
			text = r.Notice
		}
	}
	if text == "" {
		return nil
	}
	opts := &tele.SendOptions{ParseMode: r.ParseMode, ReplyMarkup: r.Markup}
	if r.Edit && c.Callback() != nil {
		return tghelpers.EditText(c, text, opts)
	}
	return tghelpers.SendText(c, text, opts)
}

func (b *Bot) say(c tele.Context, text string) error {
	return b.send(c, flow.Reply{Text: text})
}

func (b *Bot) notice(c tele.Context, text string) error {
	return b.send(c, flow.Reply{Notice: text})
}
