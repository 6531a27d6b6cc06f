package flow

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/service"
	"github.com/m3rciful/gamebot/internal/view"
)

// LocationEditStep is a step of location editing.
type LocationEditStep string

const (
	EditStepMenu   LocationEditStep = "menu"
	EditStepName   LocationEditStep = "name"
	EditStepMapURL LocationEditStep = "map_url"
	EditStepSports LocationEditStep = "sports"
)

// LocationEditDraft is the session payload of location editing.
type LocationEditDraft struct {
	Step         LocationEditStep `json:"step"`
	GroupID      int64            `json:"group_id"`
	LocationID   int64            `json:"location_id"`
	LocationName string           `json:"location_name"`
	SportIDs     []int64          `json:"sport_ids,omitempty"`
}

const (
	ExpiredEdit       = "❌ Сессия редактирования истекла"
	EditCancelled     = "❌ Редактирование отменено"
	msgPickOneSport   = "❌ Выберите хотя бы один вид спорта"
	msgSaved          = "✅ Сохранено"
	msgEditLocationNF = "❌ Локация не найдена"
)

// LocationEditFlow changes the name, map link or sports of a location.
type LocationEditFlow struct {
	svc      *service.Services
	obs      Observer
	sessions *state.Manager[LocationEditDraft]
}

// NewLocationEditFlow binds the flow to the store in d.
func NewLocationEditFlow(d Deps) *LocationEditFlow {
	d = d.normalize()
	return &LocationEditFlow{
		svc:      d.Services,
		obs:      d.Observer,
		sessions: state.NewManager[LocationEditDraft](d.Store, NameLocationEdit),
	}
}

// Sessions exposes the typed session view.
func (f *LocationEditFlow) Sessions() *state.Manager[LocationEditDraft] { return f.sessions }

// Begin opens the edit menu for a location of the group.
func (f *LocationEditFlow) Begin(ctx context.Context, key state.Key, groupID, locationID int64) (Reply, error) {
	loc, err := f.location(ctx, groupID, locationID)
	if err != nil || loc == nil {
		return notice(msgEditLocationNF), err
	}
	draft := LocationEditDraft{Step: EditStepMenu, GroupID: groupID, LocationID: loc.ID, LocationName: loc.Name}
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameLocationEdit, EventStarted)
	return edit(view.LocationEditText(loc), view.LocationEditMenu(loc.ID)), nil
}

// location returns nil without error when the id is stale or foreign.
func (f *LocationEditFlow) location(ctx context.Context, groupID, locationID int64) (*models.Location, error) {
	loc, err := f.svc.Locations.GetByID(ctx, locationID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if loc.GroupID != groupID {
		return nil, nil
	}
	return loc, nil
}

func (f *LocationEditFlow) current(ctx context.Context, key state.Key, locationID int64) (LocationEditDraft, bool, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil || !ok || draft.LocationID != locationID {
		return LocationEditDraft{}, false, err
	}
	return draft, true, nil
}

// EditName asks for the new name.
func (f *LocationEditFlow) EditName(ctx context.Context, key state.Key, locationID int64) (Reply, error) {
	draft, ok, err := f.current(ctx, key, locationID)
	if err != nil || !ok {
		return notice(ExpiredEdit), err
	}
	draft.Step = EditStepName
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	return edit("✏️ Введите новое название локации:\n\nТекущее: "+draft.LocationName,
		view.Cancel(view.CbCancelEditLocation)), nil
}

// EditMap asks for the new map link.
func (f *LocationEditFlow) EditMap(ctx context.Context, key state.Key, locationID int64) (Reply, error) {
	draft, ok, err := f.current(ctx, key, locationID)
	if err != nil || !ok {
		return notice(ExpiredEdit), err
	}
	loc, err := f.location(ctx, draft.GroupID, locationID)
	if err != nil {
		return Reply{}, err
	}
	if loc == nil {
		_ = f.sessions.Delete(ctx, key)
		return edit(msgEditLocationNF, nil), nil
	}
	draft.Step = EditStepMapURL
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	currentURL := loc.MapURL
	if currentURL == "" {
		currentURL = "Не указана"
	}
	return edit("🗺 Введите новую ссылку на карту или \"-\" для удаления:\n\n"+
		"Текущая: "+currentURL+"\n\n"+
		"Примеры:\n"+
		"https://maps.google.com/?q=40.4093,49.8671\n"+
		"https://yandex.ru/maps/?ll=49.867,40.409&z=15",
		view.Cancel(view.CbCancelEditLocation)), nil
}

// EditSports shows the sport toggles preset to the current associations.
func (f *LocationEditFlow) EditSports(ctx context.Context, key state.Key, locationID int64) (Reply, error) {
	draft, ok, err := f.current(ctx, key, locationID)
	if err != nil || !ok {
		return notice(ExpiredEdit), err
	}
	loc, err := f.location(ctx, draft.GroupID, locationID)
	if err != nil {
		return Reply{}, err
	}
	if loc == nil {
		_ = f.sessions.Delete(ctx, key)
		return edit(msgEditLocationNF, nil), nil
	}
	sports, err := f.svc.Sports.All(ctx)
	if err != nil {
		return Reply{}, err
	}
	draft.Step = EditStepSports
	draft.SportIDs = loc.SportIDs()
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	return edit("🏃 Выберите виды спорта для локации\n\n"+
		"Текущие: "+view.SportNames(loc.Sports(), "Не указаны")+"\n\n"+
		"Нажмите на вид спорта для добавления/удаления:",
		view.SportToggle(locationID, sports, draft.SportIDs)), nil
}

// ToggleSport adds or removes one sport from the pending selection.
func (f *LocationEditFlow) ToggleSport(ctx context.Context, key state.Key, locationID, sportID int64) (Reply, error) {
	draft, ok, err := f.current(ctx, key, locationID)
	if err != nil || !ok || draft.Step != EditStepSports {
		return notice(ExpiredEdit), err
	}
	if i := slices.Index(draft.SportIDs, sportID); i >= 0 {
		draft.SportIDs = slices.Delete(draft.SportIDs, i, i+1)
	} else {
		draft.SportIDs = append(draft.SportIDs, sportID)
	}
	if err := f.sessions.Set(ctx, key, draft); err != nil {
		return Reply{}, err
	}
	sports, err := f.svc.Sports.All(ctx)
	if err != nil {
		return Reply{}, err
	}
	return edit("🏃 Выберите виды спорта для локации\n\n"+
		"Выбрано: "+view.SportNames(selected(sports, draft.SportIDs), "Не выбраны")+"\n\n"+
		"Нажмите на вид спорта для добавления/удаления:",
		view.SportToggle(locationID, sports, draft.SportIDs)), nil
}

// SaveSports replaces the location's sports with the selection.
func (f *LocationEditFlow) SaveSports(ctx context.Context, key state.Key, locationID int64) (Reply, error) {
	draft, ok, err := f.current(ctx, key, locationID)
	if err != nil || !ok || draft.Step != EditStepSports {
		return notice(ExpiredEdit), err
	}
	if len(draft.SportIDs) == 0 {
		return notice(msgPickOneSport), nil
	}
	err = f.svc.Locations.SetSports(ctx, locationID, draft.SportIDs)
	if errors.Is(err, models.ErrNotFound) {
		r, derr := f.gone(ctx, key)
		r.Edit = true
		return r, derr
	}
	if err != nil {
		return notice("❌ Ошибка при сохранении"), fmt.Errorf("save location sports: %w", err)
	}
	sports, err := f.svc.Sports.All(ctx)
	if err != nil {
		return Reply{}, err
	}
	if err := f.sessions.Delete(ctx, key); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameLocationEdit, EventCompleted)
	r := edit(fmt.Sprintf("✅ Виды спорта обновлены!\n\n📍 %s\n🏃 %s",
		draft.LocationName, view.SportNames(selected(sports, draft.SportIDs), "")), nil)
	r.Notice = msgSaved
	return r, nil
}

// HandleText applies a typed name or map link.
func (f *LocationEditFlow) HandleText(ctx context.Context, key state.Key, text string) (Reply, error) {
	draft, ok, err := f.sessions.Get(ctx, key)
	if err != nil || !ok {
		return Reply{}, err
	}
	switch draft.Step {
	case EditStepMenu, EditStepSports:
		return say(useButtonsHint), nil
	case EditStepName:
		res := ValidateLocationTitle(text, 1)
		if !res.OK() {
			return say(res.Msg), nil
		}
		_, err := f.svc.Locations.Update(ctx, draft.LocationID, service.LocationPatch{Name: &res.Value})
		if errors.Is(err, models.ErrNotFound) {
			return f.gone(ctx, key)
		}
		if err != nil {
			return say("❌ Произошла ошибка при обновлении названия. Попробуйте позже."), fmt.Errorf("rename location: %w", err)
		}
		if err := f.sessions.Delete(ctx, key); err != nil {
			return Reply{}, err
		}
		f.obs.FlowEvent(NameLocationEdit, EventCompleted)
		return say(fmt.Sprintf("✅ Название обновлено!\n\nБыло: %s\nСтало: %s", draft.LocationName, res.Value)), nil
	case EditStepMapURL:
		res := ValidateMapURL(text)
		if !res.OK() {
			return say(res.Msg), nil
		}
		_, err := f.svc.Locations.Update(ctx, draft.LocationID, service.LocationPatch{MapURL: &res.Value})
		if errors.Is(err, models.ErrNotFound) {
			return f.gone(ctx, key)
		}
		if err != nil {
			return say("❌ Произошла ошибка при обновлении ссылки. Попробуйте позже."), fmt.Errorf("update location map: %w", err)
		}
		if err := f.sessions.Delete(ctx, key); err != nil {
			return Reply{}, err
		}
		f.obs.FlowEvent(NameLocationEdit, EventCompleted)
		if res.Value == "" {
			return say("✅ Ссылка на карту удалена"), nil
		}
		return say("✅ Ссылка на карту обновлена!\n\n🗺 " + res.Value), nil
	}
	return Reply{}, fmt.Errorf("location edit flow: unknown step %q", draft.Step)
}

// gone ends the session of a location deleted mid-edit.
func (f *LocationEditFlow) gone(ctx context.Context, key state.Key) (Reply, error) {
	if err := f.sessions.Delete(ctx, key); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameLocationEdit, EventCancelled)
	return say(msgEditLocationNF), nil
}

// Cancel drops the session.
func (f *LocationEditFlow) Cancel(ctx context.Context, key state.Key) (Reply, error) {
	if err := f.sessions.Delete(ctx, key); err != nil {
		return Reply{}, err
	}
	f.obs.FlowEvent(NameLocationEdit, EventCancelled)
	return edit(EditCancelled, nil), nil
}

func selected(sports []models.Sport, ids []int64) []models.Sport {
	out := make([]models.Sport, 0, len(ids))
	for _, s := range sports {
		if slices.Contains(ids, s.ID) {
			out = append(out, s)
		}
	}
	return out
}
