package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/view"
)

// TrainingStep is a step of training creation.
type TrainingStep string

const (
	TrainingStepSport    TrainingStep = "sport"
	TrainingStepDate     TrainingStep = "date"
	TrainingStepLocation TrainingStep = "location"
	TrainingStepMin      TrainingStep = "min_participants"
	TrainingStepMax      TrainingStep = "max_participants"
	TrainingStepCost     TrainingStep = "cost"
	TrainingStepNotes    TrainingStep = "notes"
	TrainingStepConfirm  TrainingStep = "confirm"
)

// TrainingDraft is the session payload of training creation.
type TrainingDraft struct {
	Step TrainingStep `json:"step"`
	EventData
}

const (
	ExpiredTraining   = "Сессия истекла. Начните заново: /newtraining"
	TrainingCancelled = "❌ Создание тренировки отменено"
	msgTrainingFailed = "❌ Ошибка при создании тренировки"

	trainingNoLocations = "⚠️ Локаций для этого вида спорта в группе пока нет.\n" +
		"📍 Введите место проведения текстом:\n\n" +
		"Например: \"Зал CrossFit\" или \"Школа №5\""
	trainingMinPrompt = "👥 Введите минимальное количество участников:\n\n" +
		"Например: 5\n" +
		"(если наберётся меньше, тренировка может быть отменена)"
	trainingMaxPrompt = "👥 Введите максимальное количество участников или \"-\" для безлимита:\n\n" +
		"Например: 20 или -"
	trainingCostPrompt = "💰 Введите стоимость участия или \"-\" для бесплатной тренировки:\n\n" +
		"Например: 500 или 0 или -"
	trainingNotesPrompt = "📝 Добавьте заметки к тренировке или \"-\" для пропуска:\n\n" +
		"Например: \"Приходите за 10 минут, с собой воду\""
)

// TrainingFlow creates a training; it asks for the place before the numbers
// and allows an open-ended participant count.
type TrainingFlow struct {
	events
	sessions *state.Manager[TrainingDraft]
}

// NewTrainingFlow binds the flow to the store in d.
func NewTrainingFlow(d Deps) *TrainingFlow {
	d = d.normalize()
	return &TrainingFlow{
		events:   events{svc: d.Services, now: d.Now, obs: d.Observer},
		sessions: state.NewManager[TrainingDraft](d.Store, NameTraining),
	}
}

// Sessions exposes the typed session view.
func (f *TrainingFlow) Sessions() *state.Manager[TrainingDraft] { return f.sessions }

// Start opens a session and asks for the sport.
func (f *TrainingFlow) Start(ctx context.Context, key state.Key, owner Owner) (Reply, error) {
	sports, err := f.sports(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(sports) == 0 {
		return say(noSports), nil
	}
	draft := TrainingDraft{Step: TrainingStepSport, EventData: EventData{
		GroupID:   owner.GroupID,
		CreatorID: owner.UserID,
		OwnerTgID: owner.TelegramID,
	}}
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameTraining, EventStarted)
	return sayWith("🏋️ Создание тренировки\n\nВыберите вид спорта:", view.SportPicker(sports, view.CbSport)), nil
}

// SelectSport records the sport and asks for the date.
func (f *TrainingFlow) SelectSport(ctx context.Context, key state.Key, sportID int64) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != TrainingStepSport {
		return notice(ExpiredTraining), nil
	}
	sport, err := f.svc.Sports.GetByID(ctx, sportID)
	if errors.Is(err, models.ErrNotFound) {
		return notice("❌ Вид спорта не найден"), nil
	}
	if err != nil {
		return Reply{}, err
	}
	draft.SportID = sport.ID
	draft.SportName = sport.Name
	draft.SportEmoji = sport.Emoji
	draft.Step = TrainingStepDate
	return f.save(ctx, key, draft, edit(
		fmt.Sprintf("✅ Вид спорта: %s\n\n", sport.Label())+
			"📅 Введите дату и время тренировки:\n\n"+
			"Формат: ДД.ММ ЧЧ:ММ\n"+
			"Например: 15.02 18:00 или 15.02.2026 18:00\n\n"+
			"🚀 Или одной строкой: дата время / мин / макс / стоимость / заметки / локация", nil))
}

// HandleText advances the step the session is waiting on. Invalid input
// leaves the step unchanged.
func (f *TrainingFlow) HandleText(ctx context.Context, key state.Key, text string) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil || !ok {
		return Reply{}, err
	}
	text = strings.TrimSpace(text)
	logger.Debug(ctx, "flow", "flow.input",
		slog.String("flow", NameTraining),
		slog.String("step", string(draft.Step)),
	)

	switch draft.Step {
	case TrainingStepSport:
		return say(pickSportHint), nil
	case TrainingStepDate:
		if IsQuickEntry(text) {
			return f.quick(ctx, key, draft, text)
		}
		res := ParseDate(text, f.now())
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.GameDate = res.Value
		draft.Step = TrainingStepLocation
		prompt, err := f.locationPrompt(ctx, draft.EventData,
			"📍 Введите место проведения тренировки:\n\n"+
				"Например: \"Стадион Центральный\" или \"ул. Ленина, 15\"\n\n"+
				"Администраторы могут добавить постоянную локацию командой /addlocation")
		if err != nil {
			return Reply{}, err
		}
		return f.save(ctx, key, draft, prompt)
	case TrainingStepLocation:
		res := ValidateLocationName(text)
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.LocationID = 0
		draft.LocationName = res.Value
		if draft.Min > 0 {
			draft.Step = TrainingStepConfirm
			return f.save(ctx, key, draft, f.confirmation(draft, false))
		}
		draft.Step = TrainingStepMin
		return f.save(ctx, key, draft, say(trainingMinPrompt))
	case TrainingStepMin:
		res := ValidateNumber(text, 1, models.MaxCapacity)
		if !res.OK() {
			return say(fmt.Sprintf("❌ Укажите число от 1 до %d", models.MaxCapacity)), nil
		}
		draft.Min = res.Value
		draft.Step = TrainingStepMax
		return f.save(ctx, key, draft, say(trainingMaxPrompt))
	case TrainingStepMax:
		if text == "-" {
			draft.Max = models.UnlimitedParticipants
		} else {
			res := ValidateNumber(text, 1, models.MaxCapacity)
			if !res.OK() {
				return say(fmt.Sprintf("❌ Укажите число от 1 до %d или \"-\" для безлимита", models.MaxCapacity)), nil
			}
			if res.Value < draft.Min {
				return say(fmt.Sprintf("❌ Максимум (%d) не может быть меньше минимума (%d)", res.Value, draft.Min)), nil
			}
			draft.Max = res.Value
		}
		draft.Step = TrainingStepCost
		return f.save(ctx, key, draft, say(trainingCostPrompt))
	case TrainingStepCost:
		if text == "-" {
			draft.Cost = 0
		} else {
			res := ValidateCost(text)
			if !res.OK() {
				return say("❌ Укажите число (стоимость) или \"-\" для бесплатной тренировки"), nil
			}
			draft.Cost = res.Value
		}
		draft.Step = TrainingStepNotes
		return f.save(ctx, key, draft, say(trainingNotesPrompt))
	case TrainingStepNotes:
		if text != "-" {
			res := ValidateNotes(text)
			if !res.OK() {
				return say(res.Msg), nil
			}
			draft.Notes = res.Value
		}
		draft.Step = TrainingStepConfirm
		return f.save(ctx, key, draft, f.confirmation(draft, false))
	case TrainingStepConfirm:
		return say(confirmHint), nil
	}
	return Reply{}, fmt.Errorf("training flow: unknown step %q", draft.Step)
}

func (f *TrainingFlow) quick(ctx context.Context, key state.Key, draft TrainingDraft, text string) (Reply, error) {
	res := ParseTrainingQuickEntry(text, f.now())
	if !res.OK() {
		return say(res.Msg), nil
	}
	draft.applyQuick(res.Value)
	if res.Value.HasLocation() {
		draft.Step = TrainingStepConfirm
		return f.save(ctx, key, draft, f.confirmation(draft, false))
	}
	draft.Step = TrainingStepLocation
	prompt, err := f.locationPrompt(ctx, draft.EventData, trainingNoLocations)
	if err != nil {
		return Reply{}, err
	}
	return f.save(ctx, key, draft, prompt)
}

// SelectLocation takes one of the group's saved locations. When the numbers
// came from a quick entry the flow goes straight to confirmation.
func (f *TrainingFlow) SelectLocation(ctx context.Context, key state.Key, locationID int64) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != TrainingStepLocation {
		return notice(ExpiredTraining), nil
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
	if draft.Min > 0 {
		draft.Step = TrainingStepConfirm
		return f.save(ctx, key, draft, f.confirmation(draft, true))
	}
	draft.Step = TrainingStepMin
	return f.save(ctx, key, draft, edit(fmt.Sprintf("✅ Место: %s\n\n", loc.Name)+trainingMinPrompt, nil))
}

// CustomLocation switches the location step to free text.
func (f *TrainingFlow) CustomLocation(ctx context.Context, key state.Key) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != TrainingStepLocation {
		return notice(ExpiredTraining), nil
	}
	return edit("📍 Введите место проведения тренировки:\n\n"+
		"Например: \"Стадион Центральный\" или \"ул. Ленина, 15\"", nil), nil
}

// Confirm creates the training. The session ends whatever the outcome.
func (f *TrainingFlow) Confirm(ctx context.Context, key state.Key) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != TrainingStepConfirm {
		return notice(ExpiredTraining), nil
	}
	defer f.sessions.Delete(context.WithoutCancel(ctx), key)

	g, err := f.create(ctx, draft.EventData, models.GameTypeTraining)
	if err != nil {
		return notice(msgTrainingFailed), fmt.Errorf("create training: %w", err)
	}
	f.obs.FlowEvent(NameTraining, EventCompleted)
	logger.Info(ctx, "flow", "training.created",
		slog.Int64("game_id", g.ID),
		slog.Int64("group_id", g.GroupID),
		slog.Int64("sport_id", g.SportID),
	)
	return f.createdReply(ctx, g, draft.CreatorID), nil
}

// Cancel drops the session.
func (f *TrainingFlow) Cancel(ctx context.Context, key state.Key) (Reply, error) {
	if err := f.sessions.Delete(ctx, key); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameTraining, EventCancelled)
	r := edit(TrainingCancelled, nil)
	r.Notice = msgCancelledShort
	return r, nil
}

func (f *TrainingFlow) confirmation(draft TrainingDraft, asEdit bool) Reply {
	r := sayWith(view.Confirmation(draft.preview(models.GameTypeTraining)), view.GameConfirm(draft.OwnerTgID))
	r.Edit = asEdit
	return r
}

func (f *TrainingFlow) save(ctx context.Context, key state.Key, draft TrainingDraft, r Reply) (Reply, error) {
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	return r, nil
}
