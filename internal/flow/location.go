package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/service"
	"github.com/m3rciful/gamebot/internal/view"
)

// LocationStep is a step of location creation.
type LocationStep string

const (
	LocationStepSport        LocationStep = "sport"
	LocationStepSelection    LocationStep = "location_selection"
	LocationStepName         LocationStep = "name"
	LocationStepMapURL       LocationStep = "map_url"
	LocationStepConfirmation LocationStep = "confirmation"
)

// LocationDraft is the session payload of location creation.
type LocationDraft struct {
	Step       LocationStep `json:"step"`
	GroupID    int64        `json:"group_id"`
	SportID    int64        `json:"sport_id,omitempty"`
	SportLabel string       `json:"sport_label,omitempty"`
	Name       string       `json:"name,omitempty"`
	MapURL     string       `json:"map_url,omitempty"`
}

const (
	ExpiredLocation     = "❌ Сессия создания локации не найдена или истекла"
	LocationCancelled   = "❌ Создание локации отменено."
	msgLocationNoState  = "❌ Состояние создания локации не найдено"
	msgLocationFailed   = "❌ Произошла ошибка при создании локации. Попробуйте позже."
	msgLocationNotFound = "❌ Локация не найдена."
)

// LocationFlow lets a group admin add a venue or attach a sport to an
// existing one.
type LocationFlow struct {
	svc      *service.Services
	obs      Observer
	sessions *state.Manager[LocationDraft]
}

// NewLocationFlow binds the flow to the store in d.
func NewLocationFlow(d Deps) *LocationFlow {
	d = d.normalize()
	return &LocationFlow{
		svc:      d.Services,
		obs:      d.Observer,
		sessions: state.NewManager[LocationDraft](d.Store, NameLocation),
	}
}

// Sessions exposes the typed session view.
func (f *LocationFlow) Sessions() *state.Manager[LocationDraft] { return f.sessions }

// Start opens a session and asks for the sport.
func (f *LocationFlow) Start(ctx context.Context, key state.Key, groupID int64) (Reply, error) {
	sports, err := f.svc.Sports.All(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(sports) == 0 {
		return say(noSports), nil
	}
	if err := f.sessions.Set(ctx, key, LocationDraft{Step: LocationStepSport, GroupID: groupID}); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameLocation, EventStarted)
	return sayWith("📍 Создание новой локации\n\n🏃 Сначала выберите вид спорта:",
		view.SportPicker(sports, view.CbLocationSport)), nil
}

// SelectSport offers the group's locations for reuse.
func (f *LocationFlow) SelectSport(ctx context.Context, key state.Key, sportID int64) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != LocationStepSport {
		return notice(ExpiredLocation), nil
	}
	sport, err := f.svc.Sports.GetByID(ctx, sportID)
	if errors.Is(err, models.ErrNotFound) {
		return notice("❌ Вид спорта не найден."), nil
	}
	if err != nil {
		return Reply{}, err
	}
	locs, err := f.svc.Locations.ByGroup(ctx, draft.GroupID, false)
	if err != nil {
		return Reply{}, err
	}
	draft.SportID = sport.ID
	draft.SportLabel = sport.Label()
	draft.Step = LocationStepSelection
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	return edit(fmt.Sprintf("✅ Вид спорта: %s\n\n", draft.SportLabel)+
		"📍 Выберите существующую локацию или создайте новую:", view.LocationManagement(locs)), nil
}

// SelectExisting attaches the chosen sport to a saved location.
func (f *LocationFlow) SelectExisting(ctx context.Context, key state.Key, locationID int64) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != LocationStepSelection {
		return notice(ExpiredLocation), nil
	}
	loc, err := f.svc.Locations.GetByID(ctx, locationID)
	if errors.Is(err, models.ErrNotFound) || (err == nil && loc.GroupID != draft.GroupID) {
		return notice(msgLocationNotFound), nil
	}
	if err != nil {
		return Reply{}, err
	}
	defer f.sessions.Delete(context.WithoutCancel(ctx), key)

	if !loc.HasSport(draft.SportID) {
		err = f.svc.Locations.AddSport(ctx, loc.ID, draft.SportID)
	}
	if loc.HasSport(draft.SportID) || errors.Is(err, models.ErrConflict) {
		return edit(fmt.Sprintf("ℹ️ Эта площадка уже добавлена для %s\n\n📍 %s\n🏃 %s",
			draft.SportLabel, loc.Name, draft.SportLabel), nil), nil
	}
	if err != nil {
		return say(msgLocationFailed), fmt.Errorf("add sport to location: %w", err)
	}
	f.obs.FlowEvent(NameLocation, EventCompleted)
	logger.Info(ctx, "flow", "location.sport_added",
		slog.Int64("location_id", loc.ID),
		slog.Int64("sport_id", draft.SportID),
	)
	return edit(view.LocationResult(
		fmt.Sprintf("✅ Локация успешно добавлена для %s!", draft.SportLabel),
		loc.Name, draft.SportLabel, loc.MapURL), nil), nil
}

// CreateNew asks for the new location's name.
func (f *LocationFlow) CreateNew(ctx context.Context, key state.Key) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != LocationStepSelection {
		return notice(ExpiredLocation), nil
	}
	draft.Step = LocationStepName
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	return edit(fmt.Sprintf("✅ Вид спорта: %s\n\n", draft.SportLabel)+
		"📍 Отправьте название новой локации:", view.Cancel(view.CbCancelLocation)), nil
}

// HandleText reads the name and the map link.
func (f *LocationFlow) HandleText(ctx context.Context, key state.Key, text string) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil || !ok {
		return Reply{}, err
	}
	switch draft.Step {
	case LocationStepSport, LocationStepSelection, LocationStepConfirmation:
		return say(useButtonsHint), nil
	case LocationStepName:
		res := ValidateLocationTitle(text, 2)
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.Name = res.Value
		draft.Step = LocationStepMapURL
		if err := f.sessions.Set(ctx, key, draft); err != nil {
			return Reply{}, err
		}
		return sayWith(fmt.Sprintf("✅ Название: %s\n\n", res.Value)+
			"🗺 Отправьте ссылку на карту или \"-\" чтобы пропустить:\n\n"+
			"Например: https://maps.google.com/?q=40.4093,49.8671",
			view.Cancel(view.CbCancelLocation)), nil
	case LocationStepMapURL:
		res := ValidateMapURL(text)
		if !res.OK() {
			return say(res.Msg), nil
		}
		draft.MapURL = res.Value
		draft.Step = LocationStepConfirmation
		if err := f.sessions.Set(ctx, key, draft); err != nil {
			return Reply{}, err
		}
		return sayWith(view.LocationPreview(draft.Name, draft.SportLabel, draft.MapURL), view.LocationConfirm()), nil
	}
	return Reply{}, fmt.Errorf("location flow: unknown step %q", draft.Step)
}

// Confirm stores the location. An existing name in the group gains the
// sport instead of a duplicate row.
func (f *LocationFlow) Confirm(ctx context.Context, key state.Key) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	if !ok || draft.Step != LocationStepConfirmation {
		return notice(msgLocationNoState), nil
	}
	defer f.sessions.Delete(context.WithoutCancel(ctx), key)

	loc, created, err := f.svc.Locations.FindOrCreate(ctx, draft.Name, draft.SportID, draft.GroupID, draft.MapURL)
	if err != nil {
		return say(msgLocationFailed), fmt.Errorf("create location: %w", err)
	}
	f.obs.FlowEvent(NameLocation, EventCompleted)
	logger.Info(ctx, "flow", "location.created",
		slog.Int64("location_id", loc.ID),
		slog.Int64("group_id", loc.GroupID),
		slog.Bool("created", created),
	)
	return edit(view.LocationResult("✅ Локация успешно создана!", loc.Name, draft.SportLabel, loc.MapURL), nil), nil
}

// Cancel drops the session.
func (f *LocationFlow) Cancel(ctx context.Context, key state.Key) (Reply, error) {
	if err := f.sessions.Delete(ctx, key); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameLocation, EventCancelled)
	return edit(LocationCancelled, nil), nil
}
