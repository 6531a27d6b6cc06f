// Package memory is an in-process repository set used by tests. It enforces
// the same unique constraints and cascades as the SQL schema.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository"
)

// DB holds every table behind one mutex.
type DB struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	users          map[int64]models.User
	groups         map[int64]models.Group
	members        map[int64]models.GroupMember
	sports         map[int64]models.Sport
	locations      map[int64]models.Location
	sportLocations map[int64]models.SportLocation
	games          map[int64]models.Game
	participants   map[int64]models.GameParticipant
}

// New returns an empty database.
func New() *DB {
	return &DB{
		now:            time.Now,
		users:          map[int64]models.User{},
		groups:         map[int64]models.Group{},
		members:        map[int64]models.GroupMember{},
		sports:         map[int64]models.Sport{},
		locations:      map[int64]models.Location{},
		sportLocations: map[int64]models.SportLocation{},
		games:          map[int64]models.Game{},
		participants:   map[int64]models.GameParticipant{},
	}
}

// SetClock overrides the timestamp source for created rows.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	db.now = now
	db.mu.Unlock()
}

// Store returns the repository set backed by db.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Users:        users{db},
		Groups:       groups{db},
		Members:      members{db},
		Sports:       sports{db},
		Locations:    locations{db},
		Games:        games{db},
		Participants: participants{db},
	}
}

// ParticipantRows returns the number of participant rows for gameID, or of
// every game when gameID is zero.
func (db *DB) ParticipantRows(gameID int64) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, p := range db.participants {
		if gameID == 0 || p.GameID == gameID {
			n++
		}
	}
	return n
}

// LocationRows counts locations of a group.
func (db *DB) LocationRows(groupID int64) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, l := range db.locations {
		if l.GroupID == groupID {
			n++
		}
	}
	return n
}

func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (db *DB) userPtr(id int64) *models.User {
	u, ok := db.users[id]
	if !ok {
		return nil
	}
	return &u
}

func (db *DB) sportPtr(id int64) *models.Sport {
	s, ok := db.sports[id]
	if !ok {
		return nil
	}
	return &s
}

// locationWithSports must be called with db.mu held.
func (db *DB) locationWithSports(l models.Location) models.Location {
	l.SportLocations = nil
	for _, id := range sortedIDs(db.sportLocations) {
		sl := db.sportLocations[id]
		if sl.LocationID != l.ID {
			continue
		}
		sl.Sport = db.sportPtr(sl.SportID)
		l.SportLocations = append(l.SportLocations, sl)
	}
	return l
}

// gameWithRelations must be called with db.mu held.
func (db *DB) gameWithRelations(g models.Game) models.Game {
	g.Sport = db.sportPtr(g.SportID)
	g.Location = nil
	if g.LocationID != nil {
		if l, ok := db.locations[*g.LocationID]; ok {
			l = db.locationWithSports(l)
			g.Location = &l
		}
	}
	g.Participants = nil
	for _, id := range sortedIDs(db.participants) {
		p := db.participants[id]
		if p.GameID != g.ID {
			continue
		}
		p.User = db.userPtr(p.UserID)
		g.Participants = append(g.Participants, p)
	}
	sort.SliceStable(g.Participants, func(i, j int) bool {
		a, b := g.Participants[i], g.Participants[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return joinedBefore(a, b)
	})
	return g
}

func joinedBefore(a, b models.GameParticipant) bool {
	if !a.JoinedAt.Equal(b.JoinedAt) {
		return a.JoinedAt.Before(b.JoinedAt)
	}
	return a.ID < b.ID
}

// membersOf must be called with db.mu held.
func (db *DB) membersOf(groupID int64) []models.GroupMember {
	var out []models.GroupMember
	for _, id := range sortedIDs(db.members) {
		m := db.members[id]
		if m.GroupID != groupID {
			continue
		}
		m.User = db.userPtr(m.UserID)
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}
