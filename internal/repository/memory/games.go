package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m3rciful/gamebot/internal/models"
)

type locations struct{ db *DB }

func (r locations) GetByID(_ context.Context, id int64) (*models.Location, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.locations[id]
	if !ok {
		return nil, fmt.Errorf("locations.get: %w", models.ErrNotFound)
	}
	l = r.db.locationWithSports(l)
	return &l, nil
}

func (r locations) FindByNameAndGroup(_ context.Context, name string, groupID int64) (*models.Location, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range sortedIDs(r.db.locations) {
		l := r.db.locations[id]
		if l.Name == name && l.GroupID == groupID {
			l = r.db.locationWithSports(l)
			return &l, nil
		}
	}
	return nil, fmt.Errorf("locations.find: %w", models.ErrNotFound)
}

func (r locations) list(groupID, sportID int64, includeInactive bool) []models.Location {
	var out []models.Location
	for _, id := range sortedIDs(r.db.locations) {
		l := r.db.locations[id]
		if l.GroupID != groupID || (!includeInactive && !l.IsActive) {
			continue
		}
		l = r.db.locationWithSports(l)
		if sportID != 0 && !l.HasSport(sportID) {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r locations) ListByGroup(_ context.Context, groupID int64, includeInactive bool) ([]models.Location, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.list(groupID, 0, includeInactive), nil
}

func (r locations) ListByGroupAndSport(_ context.Context, groupID, sportID int64, includeInactive bool) ([]models.Location, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.list(groupID, sportID, includeInactive), nil
}

func (r locations) Create(_ context.Context, l *models.Location, sportIDs []int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.checkPairs(0, sportIDs); err != nil {
		return fmt.Errorf("locations.create: %w", err)
	}
	l.ID = r.db.nextID()
	l.CreatedAt = r.db.now()
	l.UpdatedAt = l.CreatedAt
	stored := *l
	stored.SportLocations = nil
	r.db.locations[l.ID] = stored
	r.insertPairs(l.ID, sportIDs)
	return nil
}

func (r locations) checkPairs(locationID int64, sportIDs []int64) error {
	seen := map[int64]bool{}
	for _, id := range sportIDs {
		if _, ok := r.db.sports[id]; !ok {
			return fmt.Errorf("sport %d: %w", id, models.ErrNotFound)
		}
		if seen[id] {
			return models.ErrConflict
		}
		seen[id] = true
		if locationID == 0 {
			continue
		}
		for _, sl := range r.db.sportLocations {
			if sl.LocationID == locationID && sl.SportID == id {
				return models.ErrConflict
			}
		}
	}
	return nil
}

func (r locations) insertPairs(locationID int64, sportIDs []int64) {
	for _, id := range sportIDs {
		sl := models.SportLocation{ID: r.db.nextID(), SportID: id, LocationID: locationID, CreatedAt: r.db.now()}
		r.db.sportLocations[sl.ID] = sl
	}
}

func (r locations) dropPairs(locationID int64) {
	for id, sl := range r.db.sportLocations {
		if sl.LocationID == locationID {
			delete(r.db.sportLocations, id)
		}
	}
}

func (r locations) Update(_ context.Context, l *models.Location) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.locations[l.ID]
	if !ok {
		return fmt.Errorf("locations.update: %w", models.ErrNotFound)
	}
	stored.Name = l.Name
	stored.MapURL = l.MapURL
	stored.IsActive = l.IsActive
	stored.UpdatedAt = r.db.now()
	r.db.locations[l.ID] = stored
	return nil
}

func (r locations) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.locations[id]; !ok {
		return fmt.Errorf("locations.delete: %w", models.ErrNotFound)
	}
	r.dropPairs(id)
	for gid, g := range r.db.games {
		if g.LocationID != nil && *g.LocationID == id {
			g.LocationID = nil
			r.db.games[gid] = g
		}
	}
	delete(r.db.locations, id)
	return nil
}

func (r locations) AddSport(_ context.Context, locationID, sportID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.locations[locationID]; !ok {
		return fmt.Errorf("locations.add_sport: %w", models.ErrNotFound)
	}
	if err := r.checkPairs(locationID, []int64{sportID}); err != nil {
		return fmt.Errorf("locations.add_sport: %w", err)
	}
	r.insertPairs(locationID, []int64{sportID})
	return nil
}

func (r locations) ReplaceSports(_ context.Context, locationID int64, sportIDs []int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.locations[locationID]; !ok {
		return fmt.Errorf("locations.replace_sports: %w", models.ErrNotFound)
	}
	if err := r.checkPairs(0, sportIDs); err != nil {
		return fmt.Errorf("locations.replace_sports: %w", err)
	}
	r.dropPairs(locationID)
	r.insertPairs(locationID, sportIDs)
	return nil
}

type games struct{ db *DB }

func (r games) Create(_ context.Context, g *models.Game) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.groups[g.GroupID]; !ok {
		return fmt.Errorf("games.create: group %d: %w", g.GroupID, models.ErrNotFound)
	}
	if _, ok := r.db.sports[g.SportID]; !ok {
		return fmt.Errorf("games.create: sport %d: %w", g.SportID, models.ErrNotFound)
	}
	if g.LocationID != nil {
		if _, ok := r.db.locations[*g.LocationID]; !ok {
			return fmt.Errorf("games.create: location %d: %w", *g.LocationID, models.ErrNotFound)
		}
	}
	g.ID = r.db.nextID()
	g.CreatedAt = r.db.now()
	g.UpdatedAt = g.CreatedAt
	stored := *g
	stored.Group, stored.Sport, stored.Location, stored.Participants = nil, nil, nil, nil
	r.db.games[g.ID] = stored
	return nil
}

func (r games) GetByID(_ context.Context, id int64) (*models.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	g, ok := r.db.games[id]
	if !ok {
		return nil, fmt.Errorf("games.get: %w", models.ErrNotFound)
	}
	g = r.db.gameWithRelations(g)
	return &g, nil
}

func (r games) ListUpcoming(_ context.Context, groupID int64, now time.Time) ([]models.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Game
	for _, id := range sortedIDs(r.db.games) {
		g := r.db.games[id]
		if g.GroupID != groupID || g.Status != models.GameStatusPlanned || g.GameDate.Before(now) {
			continue
		}
		out = append(out, r.db.gameWithRelations(g))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GameDate.Before(out[j].GameDate) })
	return out, nil
}

func (r games) UpdateStatus(_ context.Context, id int64, status models.GameStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	g, ok := r.db.games[id]
	if !ok {
		return fmt.Errorf("games.update_status: %w", models.ErrNotFound)
	}
	g.Status = status
	g.UpdatedAt = r.db.now()
	r.db.games[id] = g
	return nil
}

func (r games) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.games[id]; !ok {
		return fmt.Errorf("games.delete: %w", models.ErrNotFound)
	}
	for pid, p := range r.db.participants {
		if p.GameID == id {
			delete(r.db.participants, pid)
		}
	}
	delete(r.db.games, id)
	return nil
}

func (r games) CountParticipants(_ context.Context, gameID int64) (int, error) {
	return r.db.ParticipantRows(gameID), nil
}

type participants struct{ db *DB }

func (r participants) Insert(_ context.Context, p *models.GameParticipant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.games[p.GameID]; !ok {
		return fmt.Errorf("participants.insert: game %d: %w", p.GameID, models.ErrNotFound)
	}
	for _, existing := range r.db.participants {
		if existing.GameID == p.GameID && existing.UserID == p.UserID {
			return fmt.Errorf("participants.insert: %w", models.ErrConflict)
		}
	}
	p.ID = r.db.nextID()
	p.JoinedAt = r.db.now()
	p.UpdatedAt = p.JoinedAt
	stored := *p
	stored.User = nil
	r.db.participants[p.ID] = stored
	return nil
}

func (r participants) Update(_ context.Context, gameID, userID int64, status models.ParticipationStatus, guestName string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, p := range r.db.participants {
		if p.GameID == gameID && p.UserID == userID {
			p.Status = status
			if guestName != "" {
				p.GuestName = guestName
			}
			p.UpdatedAt = r.db.now()
			r.db.participants[id] = p
			return nil
		}
	}
	return fmt.Errorf("participants.update: %w", models.ErrNotFound)
}

func (r participants) Delete(_ context.Context, gameID, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, p := range r.db.participants {
		if p.GameID == gameID && p.UserID == userID {
			delete(r.db.participants, id)
			return nil
		}
	}
	return fmt.Errorf("participants.delete: %w", models.ErrNotFound)
}

func (r participants) ListByGame(_ context.Context, gameID int64) ([]models.GameParticipant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.GameParticipant
	for _, id := range sortedIDs(r.db.participants) {
		p := r.db.participants[id]
		if p.GameID != gameID {
			continue
		}
		p.User = r.db.userPtr(p.UserID)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return joinedBefore(out[i], out[j]) })
	return out, nil
}

func (r participants) SetPosition(_ context.Context, id int64, position int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.participants[id]
	if !ok {
		return fmt.Errorf("participants.set_position: %w", models.ErrNotFound)
	}
	p.Position = position
	r.db.participants[id] = p
	return nil
}
