package bot

import (
	"errors"
	"fmt"
	"strings"

	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/flow"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

const (
	registerHint  = "🔑 Укажите код приглашения: /register КОД"
	privateMarker = "приватная"
)

func (b *Bot) buildCommands() []Command {
	return []Command{
		command{name: "start", description: "Начать работу с ботом", run: b.cmdStart},
		command{name: "help", description: "Помощь", run: b.cmdHelp},
		command{name: "register", description: "Вступить в группу", run: b.cmdRegister},
		command{name: "newgame", description: "Создать новую игру", scope: ScopeGroup, run: b.cmdNewGame},
		command{name: "newtraining", description: "Создать тренировку", scope: ScopeGroup, run: b.cmdNewTraining},
		command{name: "games", description: "Список игр", scope: ScopeGroup, run: b.listCommand(view.FilterAll)},
		command{name: "trainings", description: "Список тренировок", scope: ScopeGroup, run: b.listCommand(view.FilterTrainings)},
		command{name: "mygroups", description: "Мои группы", run: b.cmdMyGroups},
		command{name: "creategroup", description: "Создать группу", scope: ScopePrivate, run: b.cmdCreateGroup},
		command{name: "addlocation", description: "Добавить локацию", scope: ScopeGroup, groupAdmin: true, run: b.cmdAddLocation},
		command{name: "editlocation", description: "Редактировать локацию", scope: ScopeGroup, groupAdmin: true, run: b.cmdEditLocation},
		command{name: "locations", description: "Локации группы", scope: ScopeGroup, run: b.cmdLocations},
		command{name: "cancel", description: "Отменить текущее действие", run: b.cmdCancel},
		command{name: "seedsports", description: "Добавить стандартные виды спорта", operator: true, run: b.cmdSeedSports},
	}
}

func (b *Bot) cmdStart(c tele.Context) error {
	if ScopePrivate.Allows(c.Chat()) {
		name := ""
		if s := c.Sender(); s != nil {
			name = s.FirstName
		}
		return b.say(c, view.StartPrivate(name))
	}
	return b.say(c, view.StartGroup)
}

func (b *Bot) cmdHelp(c tele.Context) error {
	return b.say(c, view.Help(b.helpLines()))
}

// cmdRegister joins the chat's group, registering the chat first when the bot
// has not seen it. In private chat it joins by invite code.
func (b *Bot) cmdRegister(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, err := b.currentUser(c)
	if err != nil {
		return b.respond(c, failure(c), err)
	}

	var g *models.Group
	if ScopePrivate.Allows(c.Chat()) {
		args := c.Args()
		if len(args) == 0 {
			return b.say(c, registerHint)
		}
		g, err = b.svc.Groups.GetByInviteCode(ctx, args[0])
		if errors.Is(err, models.ErrNotFound) {
			return b.say(c, view.InviteNotFound)
		}
		if err != nil {
			return b.respond(c, failure(c), err)
		}
	} else {
		g, err = b.chatGroup(c)
		if err != nil {
			return b.respond(c, failure(c), err)
		}
		if g == nil {
			chat := c.Chat()
			g, err = b.svc.Groups.CreateFromChat(ctx, chat.ID, chat.Title, &u.ID)
			if err != nil {
				return b.respond(c, failure(c), err)
			}
			return b.say(c, view.Registered(g.Name))
		}
	}

	err = b.svc.Groups.AddMember(ctx, u.ID, g.ID, models.RoleMember)
	if errors.Is(err, models.ErrConflict) {
		return b.say(c, view.AlreadyMember)
	}
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.say(c, view.Registered(g.Name))
}

// owner binds a creation flow to the chat's group and the sender.
func (b *Bot) owner(c tele.Context) (flow.Owner, bool, error) {
	g, err := b.chatGroup(c)
	if err != nil || g == nil {
		return flow.Owner{}, false, err
	}
	u, err := b.currentUser(c)
	if err != nil {
		return flow.Owner{}, false, err
	}
	return flow.Owner{GroupID: g.ID, UserID: u.ID, TelegramID: c.Sender().ID}, true, nil
}

func (b *Bot) cmdNewGame(c tele.Context) error {
	o, ok, err := b.owner(c)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if !ok {
		return b.say(c, view.GroupNotFound)
	}
	r, err := b.flows.Game.Start(tghelpers.BuildContext(c), state.KeyFrom(c), o)
	return b.respond(c, r, err)
}

func (b *Bot) cmdNewTraining(c tele.Context) error {
	o, ok, err := b.owner(c)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if !ok {
		return b.say(c, view.GroupNotFound)
	}
	r, err := b.flows.Training.Start(tghelpers.BuildContext(c), state.KeyFrom(c), o)
	return b.respond(c, r, err)
}

func (b *Bot) listCommand(f view.Filter) tele.HandlerFunc {
	return func(c tele.Context) error {
		g, err := b.chatGroup(c)
		if err != nil {
			return b.respond(c, failure(c), err)
		}
		if g == nil {
			return b.say(c, view.GroupNotFound)
		}
		r, err := b.eventList(c, f, g.ID)
		return b.respond(c, r, err)
	}
}

func (b *Bot) cmdMyGroups(c tele.Context) error {
	r, err := b.groupList(c)
	return b.respond(c, r, err)
}

func (b *Bot) cmdCreateGroup(c tele.Context) error {
	args := c.Args()
	private := false
	if n := len(args); n > 0 && strings.EqualFold(args[n-1], privateMarker) {
		private = true
		args = args[:n-1]
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return b.say(c, view.CreateGroupHint)
	}
	u, err := b.currentUser(c)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	g, err := b.svc.Groups.Create(tghelpers.BuildContext(c), name, u.ID, private)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.say(c, view.GroupCreated(g))
}

func (b *Bot) cmdAddLocation(c tele.Context) error {
	g, err := b.chatGroup(c)
	if err != nil || g == nil {
		return b.respond(c, failure(c), err)
	}
	r, err := b.flows.Location.Start(tghelpers.BuildContext(c), state.KeyFrom(c), g.ID)
	return b.respond(c, r, err)
}

func (b *Bot) cmdEditLocation(c tele.Context) error {
	g, err := b.chatGroup(c)
	if err != nil || g == nil {
		return b.respond(c, failure(c), err)
	}
	locs, err := b.svc.Locations.ByGroup(tghelpers.BuildContext(c), g.ID, false)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if len(locs) == 0 {
		return b.say(c, view.NoLocationsEdit)
	}
	return b.send(c, flow.Reply{Text: view.PickEditTarget, Markup: view.EditLocationPicker(locs)})
}

func (b *Bot) cmdLocations(c tele.Context) error {
	g, err := b.chatGroup(c)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if g == nil {
		return b.say(c, view.GroupNotFound)
	}
	locs, err := b.svc.Locations.ByGroup(tghelpers.BuildContext(c), g.ID, false)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if len(locs) == 0 {
		return b.say(c, view.NoLocations)
	}
	return b.send(c, flow.Reply{Text: view.LocationsList(g.Name, locs), ParseMode: tele.ModeMarkdown})
}

func (b *Bot) cmdCancel(c tele.Context) error {
	name, err := b.sessions.Cancel(c)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	if name == "" {
		return b.say(c, view.NothingToCancel)
	}
	return b.say(c, view.Cancelled)
}

func (b *Bot) cmdSeedSports(c tele.Context) error {
	n, err := b.svc.Sports.SeedDefaults(tghelpers.BuildContext(c))
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.say(c, fmt.Sprintf("✅ Добавлено видов спорта: %d", n))
}
