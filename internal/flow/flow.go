// Package flow drives the multi-step conversations that create games,
// trainings and locations. Flows read and write their progress through the
// session store and answer with Reply values; sending is left to the caller.
package flow

import (
	"context"
	"time"

	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/service"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

// Flow names stored in the session record.
const (
	NameGame         = "game"
	NameTraining     = "training"
	NameLocation     = "location"
	NameLocationEdit = "location_edit"
)

// Flow lifecycle events reported to the Observer.
const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// Reply is what a flow wants shown to the user.
type Reply struct {
	Text      string
	Markup    *tele.ReplyMarkup
	ParseMode tele.ParseMode
	// Edit replaces the message that carried the pressed button.
	Edit bool
	// Notice answers the callback query.
	Notice string
}

// Empty reports whether the reply carries nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && r.Notice == ""
}

func say(text string) Reply { return Reply{Text: text} }

func sayWith(text string, markup *tele.ReplyMarkup) Reply {
	return Reply{Text: text, Markup: markup}
}

func edit(text string, markup *tele.ReplyMarkup) Reply {
	return Reply{Text: text, Markup: markup, Edit: true}
}

func notice(text string) Reply { return Reply{Notice: text} }

// Observer receives flow lifecycle events.
type Observer interface {
	FlowEvent(flow, event string)
}

type nopObserver struct{}

func (nopObserver) FlowEvent(string, string) {}

// Deps are shared by every flow.
type Deps struct {
	Services *service.Services
	Store    state.Store
	Now      func() time.Time
	Observer Observer
}

func (d Deps) normalize() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	return d
}

// Flows bundles the four conversations over one store.
type Flows struct {
	Game         *GameFlow
	Training     *TrainingFlow
	Location     *LocationFlow
	LocationEdit *LocationEditFlow
}

// New builds every flow.
func New(d Deps) *Flows {
	d = d.normalize()
	return &Flows{
		Game:         NewGameFlow(d),
		Training:     NewTrainingFlow(d),
		Location:     NewLocationFlow(d),
		LocationEdit: NewLocationEditFlow(d),
	}
}

const (
	noSports       = "❌ В системе нет доступных видов спорта."
	pickSportHint  = "👆 Выберите вид спорта кнопкой выше."
	useButtonsHint = "👆 Используйте кнопки выше."
	confirmHint    = "👆 Нажмите «✅ Создать» или «❌ Отмена»."
	sportNotFound  = "❌ Ошибка: вид спорта не найден"
	locationGone   = "❌ Локация не найдена"
)

// Owner identifies who runs a creation flow and for which group.
type Owner struct {
	GroupID    int64
	UserID     int64
	TelegramID int64
}

// EventData is the part of a game or training draft that becomes the Game row.
type EventData struct {
	GroupID      int64     `json:"group_id"`
	CreatorID    int64     `json:"creator_id"`
	OwnerTgID    int64     `json:"owner_tg_id"`
	SportID      int64     `json:"sport_id,omitempty"`
	SportName    string    `json:"sport_name,omitempty"`
	SportEmoji   string    `json:"sport_emoji,omitempty"`
	GameDate     time.Time `json:"game_date"`
	Min          int       `json:"min,omitempty"`
	Max          int       `json:"max,omitempty"`
	Cost         float64   `json:"cost,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	LocationID   int64     `json:"location_id,omitempty"`
	LocationName string    `json:"location_name,omitempty"`
	MapURL       string    `json:"map_url,omitempty"`
}

func (e *EventData) applyQuick(q QuickEntry) {
	e.GameDate = q.Date
	e.Min, e.Max = q.Min, q.Max
	e.Cost = q.Cost
	e.Notes = q.Notes
	e.LocationID = 0
	e.LocationName = q.Location
	e.MapURL = q.MapURL
}

func (e *EventData) preview(typ models.GameType) view.Draft {
	return view.Draft{
		Type:         typ,
		SportEmoji:   e.SportEmoji,
		SportName:    e.SportName,
		Date:         e.GameDate,
		LocationName: e.LocationName,
		Min:          e.Min,
		Max:          e.Max,
		Cost:         e.Cost,
		Notes:        e.Notes,
	}
}

// events holds what game and training flows share.
type events struct {
	svc *service.Services
	now func() time.Time
	obs Observer
}

func (ev events) sports(ctx context.Context) ([]models.Sport, error) {
	return ev.svc.Sports.All(ctx)
}

// locationPrompt offers the group's locations for the sport, or asks for text.
func (ev events) locationPrompt(ctx context.Context, e EventData, none string) (Reply, error) {
	locs, err := ev.svc.Locations.ByGroupAndSport(ctx, e.GroupID, e.SportID)
	if err != nil {
		return Reply{}, err
	}
	if len(locs) == 0 {
		return say(none), nil
	}
	return sayWith("📍 Выберите место проведения:", view.LocationPicker(locs)), nil
}

// create resolves a typed location and stores the event. It is the single
// write of a confirmed draft.
func (ev events) create(ctx context.Context, e EventData, typ models.GameType) (*models.Game, error) {
	in := service.CreateGameInput{
		GroupID:         e.GroupID,
		CreatorID:       e.CreatorID,
		SportID:         e.SportID,
		GameDate:        e.GameDate,
		MinParticipants: e.Min,
		MaxParticipants: e.Max,
		Notes:           e.Notes,
		Type:            typ,
	}
	if e.Cost > 0 {
		cost := e.Cost
		in.Cost = &cost
	}
	switch {
	case e.LocationID != 0:
		locID := e.LocationID
		in.LocationID = &locID
	case e.LocationName != "":
		loc, _, err := ev.svc.Locations.FindOrCreate(ctx, e.LocationName, e.SportID, e.GroupID, e.MapURL)
		if err != nil {
			return nil, err
		}
		in.LocationID = &loc.ID
	}
	return ev.svc.Games.Create(ctx, in)
}

// createdReply is the card that replaces the confirmation message.
func (ev events) createdReply(ctx context.Context, g *models.Game, creatorID int64) Reply {
	isAdmin, _ := ev.svc.Groups.IsAdmin(ctx, creatorID, g.GroupID)
	r := edit(view.CreatedMessage(g), view.GameActions(g.ID, g.ConfirmedCount(), isAdmin))
	r.ParseMode = tele.ModeMarkdown
	if g.IsTraining() {
		r.Notice = view.TrainingCreated
	} else {
		r.Notice = view.GameCreated
	}
	return r
}
