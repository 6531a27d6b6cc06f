package bot

import (
	"context"

	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/flow"

	tele "gopkg.in/telebot.v4"
)

const (
	notYourGame     = "❌ Это не ваша игра"
	notYourTraining = "❌ Это не ваша тренировка"
)

// eventFlow is the button surface shared by game and training creation.
type eventFlow interface {
	SelectSport(ctx context.Context, key state.Key, sportID int64) (flow.Reply, error)
	SelectLocation(ctx context.Context, key state.Key, locationID int64) (flow.Reply, error)
	CustomLocation(ctx context.Context, key state.Key) (flow.Reply, error)
	Confirm(ctx context.Context, key state.Key) (flow.Reply, error)
	Cancel(ctx context.Context, key state.Key) (flow.Reply, error)
}

// eventFlow picks the creation flow the sender is in. Game creation answers
// when nothing is open so stale buttons get its expiry notice.
func (b *Bot) eventFlow(c tele.Context) (eventFlow, string) {
	if b.sessions.ActiveFlow(c) == flow.NameTraining {
		return b.flows.Training, flow.NameTraining
	}
	return b.flows.Game, flow.NameGame
}

type keyAction func(ctx context.Context, key state.Key) (flow.Reply, error)

type idAction func(ctx context.Context, key state.Key, id int64) (flow.Reply, error)

type pairAction func(ctx context.Context, key state.Key, a, b int64) (flow.Reply, error)

func (b *Bot) run(c tele.Context, act keyAction) error {
	r, err := act(tghelpers.BuildContext(c), state.KeyFrom(c))
	return b.respond(c, r, err)
}

// runID passes the numeric payload to act; malformed payloads get expired.
func (b *Bot) runID(c tele.Context, expired string, act idAction) error {
	id, err := callbacks.Of(c).Int64()
	if err != nil {
		return b.notice(c, expired)
	}
	r, err := act(tghelpers.BuildContext(c), state.KeyFrom(c), id)
	return b.respond(c, r, err)
}

func (b *Bot) runPair(c tele.Context, expired string, act pairAction) error {
	x, y, err := callbacks.Of(c).Int64Pair()
	if err != nil {
		return b.notice(c, expired)
	}
	r, err := act(tghelpers.BuildContext(c), state.KeyFrom(c), x, y)
	return b.respond(c, r, err)
}

func (b *Bot) onSport(c tele.Context) error {
	f, _ := b.eventFlow(c)
	return b.runID(c, flow.ExpiredGame, f.SelectSport)
}

func (b *Bot) onLocation(c tele.Context) error {
	f, _ := b.eventFlow(c)
	return b.runID(c, flow.ExpiredGame, f.SelectLocation)
}

func (b *Bot) onCustomLocation(c tele.Context) error {
	f, _ := b.eventFlow(c)
	return b.run(c, f.CustomLocation)
}

// ownerOnly lets only the Telegram user named in the payload press the
// confirmation buttons.
func (b *Bot) ownerOnly(c tele.Context, act func(eventFlow) keyAction) error {
	f, name := b.eventFlow(c)
	owner, err := callbacks.Of(c).Int64()
	if err == nil && c.Sender() != nil && c.Sender().ID != owner {
		if name == flow.NameTraining {
			return b.notice(c, notYourTraining)
		}
		return b.notice(c, notYourGame)
	}
	return b.run(c, act(f))
}

func (b *Bot) onConfirmEvent(c tele.Context) error {
	return b.ownerOnly(c, func(f eventFlow) keyAction { return f.Confirm })
}

func (b *Bot) onCancelEvent(c tele.Context) error {
	return b.ownerOnly(c, func(f eventFlow) keyAction { return f.Cancel })
}

func (b *Bot) onLocationSport(c tele.Context) error {
	return b.runID(c, flow.ExpiredLocation, b.flows.Location.SelectSport)
}

func (b *Bot) onSelectExistingLocation(c tele.Context) error {
	return b.runID(c, flow.ExpiredLocation, b.flows.Location.SelectExisting)
}

func (b *Bot) onCreateNewLocation(c tele.Context) error {
	return b.run(c, b.flows.Location.CreateNew)
}

func (b *Bot) onConfirmLocation(c tele.Context) error {
	return b.run(c, b.flows.Location.Confirm)
}

func (b *Bot) onCancelLocation(c tele.Context) error {
	return b.run(c, b.flows.Location.Cancel)
}

// onStartEditLocation opens the edit menu; only group admins may edit.
func (b *Bot) onStartEditLocation(c tele.Context) error {
	g, err := b.chatGroup(c)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if g == nil {
		return b.notice(c, flow.ExpiredEdit)
	}
	admin, err := b.isGroupAdmin(c, g.ID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if !admin {
		return b.notice(c, "⛔ Только администраторы могут редактировать локации")
	}
	return b.runID(c, flow.ExpiredEdit, func(ctx context.Context, key state.Key, id int64) (flow.Reply, error) {
		return b.flows.LocationEdit.Begin(ctx, key, g.ID, id)
	})
}

func (b *Bot) onEditLocationName(c tele.Context) error {
	return b.runID(c, flow.ExpiredEdit, b.flows.LocationEdit.EditName)
}

func (b *Bot) onEditLocationMap(c tele.Context) error {
	return b.runID(c, flow.ExpiredEdit, b.flows.LocationEdit.EditMap)
}

func (b *Bot) onEditLocationSports(c tele.Context) error {
	return b.runID(c, flow.ExpiredEdit, b.flows.LocationEdit.EditSports)
}

func (b *Bot) onToggleLocationSport(c tele.Context) error {
	return b.runPair(c, flow.ExpiredEdit, b.flows.LocationEdit.ToggleSport)
}

func (b *Bot) onSaveLocationSports(c tele.Context) error {
	return b.runID(c, flow.ExpiredEdit, b.flows.LocationEdit.SaveSports)
}

func (b *Bot) onCancelEditLocation(c tele.Context) error {
	return b.run(c, b.flows.LocationEdit.Cancel)
}
