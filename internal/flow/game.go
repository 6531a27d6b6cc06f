package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/format"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/view"
)

// GameStep is a step of game creation.
type GameStep string

const (
	GameStepSport    GameStep = "sport"
	GameStepDate     GameStep = "date"
	GameStepMax      GameStep = "max_participants"
	GameStepMin      GameStep = "min_participants"
	GameStepCost     GameStep = "cost"
	GameStepNotes    GameStep = "notes"
	GameStepLocation GameStep = "location"
	GameStepConfirm  GameStep = "confirm"
)

// GameDraft is the session payload of game creation.
type GameDraft struct {
	Step GameStep `json:"step"`
	EventData
}

const (
	ExpiredGame       = "Сессия истекла. Начните заново: /newgame"
	GameCancelled     = "❌ Создание игры отменено."
	msgGameFailed     = "❌ Ошибка создания игры"
	msgCancelledShort = "Отменено"
	replyHint         = "⚠️ Ответьте (reply) на это сообщение!\n\n"
)

const gameSportPrompt = "🚀 БЫСТРЫЙ СПОСОБ (одной строкой через /):\n" +
	"📝 дата время / мин-макс / стоимость / заметки / локация\n\n" +
	"Пример:\n" +
	"10.02 18:00 / 5-10 / 500 / Приходите за 15 минут / Спортзал Олимп\n" +
	"Или короче: 10.02 18:00 / 10 / 0 / - / Зал\n\n" +
	"━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n" +
	"📋 ПОШАГОВЫЙ СПОСОБ:\n" +
	"📅 Введите дату и время игры\n" +
	"⚠️ ВАЖНО: Ответьте (reply) на это сообщение!\n\n" +
	"Формат: ДД.ММ.ГГГГ ЧЧ:ММ\n" +
	"Примеры: 15.02.2026 19:00 или 15.02 19:00"

const gameNoLocations = "⚠️ Локаций для этого вида спорта в группе пока нет.\n" +
	"📍 Введите место проведения текстом:\n" +
	replyHint +
	"Например: \"Стадион Центральный\" или \"ул. Ленина, 15\"\n\n" +
	"Администраторы могут добавить постоянную локацию командой /addlocation"

// GameFlow creates a regular game step by step or from one quick-entry line.
type GameFlow struct {
	events
	sessions *state.Manager[GameDraft]
}

// NewGameFlow binds the flow to the store in d.
func NewGameFlow(d Deps) *GameFlow {
	d = d.normalize()
	return &GameFlow{
		events:   events{svc: d.Services, now: d.Now, obs: d.Observer},
		sessions: state.NewManager[GameDraft](d.Store, NameGame),
	}
}

// Sessions exposes the typed session view.
func (f *GameFlow) Sessions() *state.Manager[GameDraft] { return f.sessions }

// Start opens a session and asks for the sport.
func (f *GameFlow) Start(ctx context.Context, key state.Key, owner Owner) (Reply, error) {
	sports, err := f.sports(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(sports) == 0 {
		return say(noSports), nil
	}
	draft := GameDraft{Step: GameStepSport, EventData: EventData{
		GroupID:   owner.GroupID,
		CreatorID: owner.UserID,
		OwnerTgID: owner.TelegramID,
	}}
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameGame, EventStarted)
	return sayWith("🎮 Создание новой игры\n\nВыберите вид спорта:", view.SportPicker(sports, view.CbSport)), nil
}

// SelectSport records the sport and offers both entry modes.
func (f *GameFlow) SelectSport(ctx context.Context, key state.Key, sportID int64) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != GameStepSport {
		return notice(ExpiredGame), nil
	}
	sport, err := f.svc.Sports.GetByID(ctx, sportID)
	if errors.Is(err, models.ErrNotFound) {
		return notice(sportNotFound), nil
	}
	if err != nil {
		return Reply{}, err
	}
	draft.SportID = sport.ID
	draft.SportName = sport.Name
	draft.SportEmoji = sport.Emoji
	draft.Step = GameStepDate
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	return edit(fmt.Sprintf("✅ Выбран: %s\n\n", sport.Label())+gameSportPrompt, nil), nil
}

// HandleText advances the step the session is waiting on. Invalid input
// leaves the step unchanged.
func (f *GameFlow) HandleText(ctx context.Context, key state.Key, text string) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil || !ok {
		return Reply{}, err
	}
	text = strings.TrimSpace(text)
	logger.Debug(ctx, "flow", "flow.input",
		slog.String("flow", NameGame),
		slog.String("step", string(draft.Step)),
	)

	switch draft.Step {
	case GameStepSport:
		return say(pickSportHint), nil
	case GameStepDate:
		if IsQuickEntry(text) {
			return f.quick(ctx, key, draft, text)
		}
		res := ParseDate(text, f.now())
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.GameDate = res.Value
		draft.Step = GameStepMax
		return f.save(ctx, key, draft, say(
			fmt.Sprintf("✅ Дата: %s\n\n", view.FormatDate(res.Value))+
				"👥 Введите максимальное количество участников:\n"+replyHint+"Например: 10"))
	case GameStepMax:
		res := ValidateMaxParticipants(text)
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.Max = res.Value
		draft.Step = GameStepMin
		return f.save(ctx, key, draft, say(
			fmt.Sprintf("✅ Максимум участников: %d\n\n", res.Value)+
				"👤 Введите минимальное количество участников:\n"+replyHint+
				fmt.Sprintf("(от 2 до %d)", res.Value)))
	case GameStepMin:
		res := ValidateMinParticipants(text, draft.Max)
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.Min = res.Value
		draft.Step = GameStepCost
		return f.save(ctx, key, draft, say(
			fmt.Sprintf("✅ Минимум участников: %d\n\n", res.Value)+
				"💰 Введите стоимость участия (в манатах):\n"+replyHint+
				"Или отправьте 0, если игра бесплатная"))
	case GameStepCost:
		res := ValidateCost(text)
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.Cost = res.Value
		draft.Step = GameStepNotes
		head := "✅ Игра бесплатная\n\n"
		if res.Value > 0 {
			head = fmt.Sprintf("✅ Стоимость: %s ₼\n\n", format.Amount(res.Value))
		}
		return f.save(ctx, key, draft, say(head+
			"📝 Добавьте дополнительные заметки или отправьте \"-\" чтобы пропустить:\n"+replyHint+
			"Например: \"Своя форма\", \"Принести мяч\" и т.д."))
	case GameStepNotes:
		if text != "-" {
			res := ValidateNotes(text)
			if !res.OK() {
				return say(res.Msg), nil
			}
			draft.Notes = res.Value
		}
		draft.Step = GameStepLocation
		prompt, err := f.locationPrompt(ctx, draft.EventData, gameNoLocations)
		if err != nil {
			return Reply{}, err
		}
		return f.save(ctx, key, draft, prompt)
	case GameStepLocation:
		res := ValidateLocationName(text)
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.LocationID = 0
		draft.LocationName = res.Value
		draft.MapURL = ""
		draft.Step = GameStepConfirm
		return f.save(ctx, key, draft, f.confirmation(draft, false))
	case GameStepConfirm:
		return say(confirmHint), nil
	}
	return Reply{}, fmt.Errorf("game flow: unknown step %q", draft.Step)
}

func (f *GameFlow) quick(ctx context.Context, key state.Key, draft GameDraft, text string) (Reply, error) {
	res := ParseGameQuickEntry(text, f.now())
	if !res.OK() {
		return say(res.Msg), nil
	}
	draft.applyQuick(res.Value)
	if res.Value.HasLocation() {
		draft.Step = GameStepConfirm
		return f.save(ctx, key, draft, f.confirmation(draft, false))
	}
	draft.Step = GameStepLocation
	prompt, err := f.locationPrompt(ctx, draft.EventData, gameNoLocations)
	if err != nil {
		return Reply{}, err
	}
	return f.save(ctx, key, draft, prompt)
}

// SelectLocation takes one of the group's saved locations.
func (f *GameFlow) SelectLocation(ctx context.Context, key state.Key, locationID int64) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != GameStepLocation {
		return notice(ExpiredGame), nil
	}
	loc, err := f.svc.Locations.GetByID(ctx, locationID)
	if errors.Is(err, models.ErrNotFound) || (err == nil && loc.GroupID != draft.GroupID) {
		return notice(locationGone), nil
	}
	if err != nil {
		return Reply{}, err
	}
	draft.LocationID = loc.ID
	draft.LocationName = loc.Name
	draft.Step = GameStepConfirm
	return f.save(ctx, key, draft, f.confirmation(draft, true))
}

// CustomLocation switches the location step to free text.
func (f *GameFlow) CustomLocation(ctx context.Context, key state.Key) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != GameStepLocation {
		return notice(ExpiredGame), nil
	}
	return edit("📍 Введите название места:\n"+replyHint+
		"Например: \"Стадион Центральный\" или \"ул. Ленина, 15\"", nil), nil
}

// Confirm creates the game. The session ends whatever the outcome.
func (f *GameFlow) Confirm(ctx context.Context, key state.Key) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != GameStepConfirm {
		return notice(ExpiredGame), nil
	}
	defer f.sessions.Delete(context.WithoutCancel(ctx), key)

	g, err := f.create(ctx, draft.EventData, models.GameTypeGame)
	if err != nil {
		return notice(msgGameFailed), fmt.Errorf("create game: %w", err)
	}
	f.obs.FlowEvent(NameGame, EventCompleted)
	logger.Info(ctx, "flow", "game.created",
		slog.Int64("game_id", g.ID),
		slog.Int64("group_id", g.GroupID),
		slog.Int64("sport_id", g.SportID),
	)
	return f.createdReply(ctx, g, draft.CreatorID), nil
}

// Cancel drops the session.
func (f *GameFlow) Cancel(ctx context.Context, key state.Key) (Reply, error) {
	if err := f.sessions.Delete(ctx, key); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameGame, EventCancelled)
	r := edit(GameCancelled, nil)
	r.Notice = msgCancelledShort
	return r, nil
}

func (f *GameFlow) confirmation(draft GameDraft, asEdit bool) Reply {
	r := sayWith(view.Confirmation(draft.preview(models.GameTypeGame)), view.GameConfirm(draft.OwnerTgID))
	r.Edit = asEdit
	return r
}

func (f *GameFlow) save(ctx context.Context, key state.Key, draft GameDraft, r Reply) (Reply, error) {
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	return r, nil
}
