package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/internal/flow"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

// eventList renders the upcoming events of a group under filter f. A single
// match is shown as a card with its sign-up buttons.
func (b *Bot) eventList(c tele.Context, f view.Filter, groupID int64) (flow.Reply, error) {
	ctx := tghelpers.BuildContext(c)
	var (
		games []models.Game
		err   error
	)
	switch f {
	case view.FilterGames:
		games, err = b.svc.Games.UpcomingByType(ctx, groupID, models.GameTypeGame)
	case view.FilterTrainings:
		games, err = b.svc.Games.UpcomingByType(ctx, groupID, models.GameTypeTraining)
	default:
		games, err = b.svc.Games.Upcoming(ctx, groupID)
	}
	if err != nil {
		return flow.Reply{}, err
	}

	switch len(games) {
	case 0:
		return flow.Reply{Text: view.EmptyList(f), Markup: view.FilterOnly(f, groupID)}, nil
	case 1:
		g := &games[0]
		admin, err := b.isGroupAdmin(c, g.GroupID)
		if err != nil {
			return flow.Reply{}, err
		}
		return flow.Reply{Text: view.Card(g), Markup: view.FilteredActions(f, groupID, g, admin)}, nil
	}
	return flow.Reply{Text: view.ListHeader(f, len(games)), Markup: view.FilteredList(f, groupID, games)}, nil
}

func (b *Bot) onFilter(f view.Filter) tele.HandlerFunc {
	return func(c tele.Context) error {
		groupID, err := callbacks.Of(c).Int64()
		if err != nil {
			return b.notice(c, view.GroupMissing)
		}
		r, err := b.eventList(c, f, groupID)
		r.Edit = true
		return b.respond(c, r, err)
	}
}

// game loads the game named by the callback payload. A nil game means the
// notice was already sent.
func (b *Bot) game(c tele.Context) (*models.Game, error) {
	id, err := callbacks.Of(c).Int64()
	if err != nil {
		return nil, b.notice(c, view.GameNotFoundShort)
	}
	g, err := b.svc.Games.GetByID(tghelpers.BuildContext(c), id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, b.notice(c, view.GameNotFoundShort)
	}
	if err != nil {
		return nil, b.respond(c, failure(c), err)
	}
	return g, nil
}

func (b *Bot) onJoin(status models.ParticipationStatus) tele.HandlerFunc {
	return func(c tele.Context) error {
		g, err := b.game(c)
		if g == nil {
			return err
		}
		ctx := tghelpers.BuildContext(c)
		u, err := b.currentUser(c)
		if err != nil {
			return b.respond(c, failure(c), err)
		}
		if added, err := b.svc.Groups.EnsureMember(ctx, u.ID, g.GroupID); err != nil {
			return b.respond(c, failure(c), err)
		} else if added {
			logger.Info(ctx, "bot", "member.auto_add",
				slog.Int64("group_id", g.GroupID),
				slog.Int64("user_id", u.ID),
			)
		}
		created, err := b.svc.Games.AddParticipant(ctx, g.ID, u.ID, status, "")
		if err != nil {
			return b.respond(c, flow.Reply{Notice: "❌ Ошибка записи"}, err)
		}
		b.obs.ParticipantChanged(string(status))
		if err := b.notice(c, view.JoinNotice(status, created)); err != nil {
			return err
		}
		return b.refreshCard(c, g.ID, g.GroupID)
	}
}

func (b *Bot) onLeave(c tele.Context) error {
	g, err := b.game(c)
	if g == nil {
		return err
	}
	u, err := b.currentUser(c)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if err := b.svc.Games.RemoveParticipant(tghelpers.BuildContext(c), g.ID, u.ID); err != nil {
		return b.respond(c, flow.Reply{Notice: "❌ Ошибка отказа"}, err)
	}
	b.obs.ParticipantChanged("left")
	if err := b.notice(c, view.LeftGame); err != nil {
		return err
	}
	return b.refreshCard(c, g.ID, g.GroupID)
}

// refreshCard updates the counter on the pressed keyboard and posts the
// participants list.
func (b *Bot) refreshCard(c tele.Context, gameID, groupID int64) error {
	g, err := b.svc.Games.GetByID(tghelpers.BuildContext(c), gameID)
	if err != nil {
		return b.respond(c, flow.Reply{}, err)
	}
	admin, err := b.isGroupAdmin(c, groupID)
	if err != nil {
		return b.respond(c, flow.Reply{}, err)
	}
	if err := c.Edit(view.GameActions(g.ID, g.ConfirmedCount(), admin)); err != nil && !errors.Is(err, tele.ErrSameMessageContent) {
		logger.Debug(tghelpers.BuildContext(c), "bot", "card.refresh",
			slog.String("status", "skip"),
			slog.String("err", err.Error()),
		)
	}
	return b.say(c, view.ParticipantsMessage(g))
}

func (b *Bot) onShowParticipants(c tele.Context) error {
	g, err := b.game(c)
	if g == nil {
		return err
	}
	return b.say(c, view.ParticipantsMessage(g))
}

func (b *Bot) onViewGame(c tele.Context) error {
	g, err := b.game(c)
	if g == nil {
		return err
	}
	admin, err := b.isGroupAdmin(c, g.GroupID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.send(c, flow.Reply{Text: view.Card(g), Markup: view.GameActions(g.ID, g.ConfirmedCount(), admin)})
}

func (b *Bot) onDeleteGame(c tele.Context) error {
	g, err := b.game(c)
	if g == nil {
		return err
	}
	admin, err := b.isGroupAdmin(c, g.GroupID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if !admin {
		return b.notice(c, view.AdminsOnly)
	}
	ctx := tghelpers.BuildContext(c)
	if err := b.svc.Games.Delete(ctx, g.ID); err != nil {
		return b.respond(c, failure(c), err)
	}
	logger.Info(ctx, "bot", "game.delete",
		slog.String("status", "ok"),
		slog.Int64("game_id", g.ID),
		slog.Int64("group_id", g.GroupID),
	)
	return b.send(c, flow.Reply{
		Text:   fmt.Sprintf("%s\n\n%s", view.GameDeleted, view.GameSummary(g)),
		Edit:   true,
		Notice: view.GameDeleted,
	})
}
