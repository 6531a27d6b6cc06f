package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m3rciful/gamebot/internal/models"
)

type users struct{ db *DB }

func (r users) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range sortedIDs(r.db.users) {
		if u := r.db.users[id]; u.TelegramID == telegramID {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("users.get_by_telegram_id: %w", models.ErrNotFound)
}

func (r users) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u := r.db.userPtr(id); u != nil {
		return u, nil
	}
	return nil, fmt.Errorf("users.get: %w", models.ErrNotFound)
}

func (r users) Create(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.TelegramID == u.TelegramID {
			return fmt.Errorf("users.create: %w", models.ErrConflict)
		}
	}
	u.ID = r.db.nextID()
	u.CreatedAt = r.db.now()
	u.UpdatedAt = u.CreatedAt
	r.db.users[u.ID] = *u
	return nil
}

func (r users) UpdatePhone(_ context.Context, id int64, phone string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return fmt.Errorf("users.update_phone: %w", models.ErrNotFound)
	}
	u.Phone = phone
	u.UpdatedAt = r.db.now()
	r.db.users[id] = u
	return nil
}

func (r users) CountParticipations(_ context.Context, userID int64, now time.Time) (int, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	total, upcoming := 0, 0
	for _, p := range r.db.participants {
		if p.UserID != userID {
			continue
		}
		total++
		if g, ok := r.db.games[p.GameID]; ok && g.IsActive(now) {
			upcoming++
		}
	}
	return total, upcoming, nil
}

type groups struct{ db *DB }

func (r groups) GetByID(_ context.Context, id int64) (*models.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	g, ok := r.db.groups[id]
	if !ok {
		return nil, fmt.Errorf("groups.get: %w", models.ErrNotFound)
	}
	g.Members = r.db.membersOf(g.ID)
	return &g, nil
}

func (r groups) GetByChatID(_ context.Context, chatID int64) (*models.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range sortedIDs(r.db.groups) {
		g := r.db.groups[id]
		if g.TelegramChatID != nil && *g.TelegramChatID == chatID {
			g.Members = r.db.membersOf(g.ID)
			return &g, nil
		}
	}
	return nil, fmt.Errorf("groups.get_by_chat: %w", models.ErrNotFound)
}

func (r groups) GetByInviteCode(_ context.Context, code string) (*models.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range sortedIDs(r.db.groups) {
		g := r.db.groups[id]
		if g.InviteCode != nil && *g.InviteCode == code {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("groups.get_by_invite: %w", models.ErrNotFound)
}

func (r groups) Create(_ context.Context, g *models.Group) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.groups {
		if g.TelegramChatID != nil && existing.TelegramChatID != nil && *existing.TelegramChatID == *g.TelegramChatID {
			return fmt.Errorf("groups.create: %w", models.ErrConflict)
		}
		if g.InviteCode != nil && existing.InviteCode != nil && *existing.InviteCode == *g.InviteCode {
			return fmt.Errorf("groups.create: %w", models.ErrConflict)
		}
	}
	g.ID = r.db.nextID()
	g.CreatedAt = r.db.now()
	g.UpdatedAt = g.CreatedAt
	stored := *g
	stored.Members = nil
	r.db.groups[g.ID] = stored
	return nil
}

func (r groups) UpdateInviteCode(_ context.Context, id int64, code string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	g, ok := r.db.groups[id]
	if !ok {
		return fmt.Errorf("groups.update_invite: %w", models.ErrNotFound)
	}
	for otherID, other := range r.db.groups {
		if otherID != id && other.InviteCode != nil && *other.InviteCode == code {
			return fmt.Errorf("groups.update_invite: %w", models.ErrConflict)
		}
	}
	g.InviteCode = &code
	r.db.groups[id] = g
	return nil
}

func (r groups) ListByUser(_ context.Context, userID int64) ([]models.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Group
	for _, id := range sortedIDs(r.db.members) {
		m := r.db.members[id]
		if m.UserID != userID {
			continue
		}
		g, ok := r.db.groups[m.GroupID]
		if !ok {
			continue
		}
		g.Members = r.db.membersOf(g.ID)
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return strings.Compare(out[i].Name, out[j].Name) < 0 })
	return out, nil
}

type members struct{ db *DB }

func (r members) Get(_ context.Context, userID, groupID int64) (*models.GroupMember, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range sortedIDs(r.db.members) {
		if m := r.db.members[id]; m.UserID == userID && m.GroupID == groupID {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("members.get: %w", models.ErrNotFound)
}

// Create does not enforce (user, group) uniqueness, matching the schema.
func (r members) Create(_ context.Context, m *models.GroupMember) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.groups[m.GroupID]; !ok {
		return fmt.Errorf("members.create: group %d: %w", m.GroupID, models.ErrNotFound)
	}
	m.ID = r.db.nextID()
	if m.JoinedAt.IsZero() {
		m.JoinedAt = r.db.now()
	}
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	stored := *m
	stored.User, stored.Group = nil, nil
	r.db.members[m.ID] = stored
	return nil
}

func (r members) Delete(_ context.Context, userID, groupID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for id, m := range r.db.members {
		if m.UserID == userID && m.GroupID == groupID {
			delete(r.db.members, id)
			n++
		}
	}
	if n == 0 {
		return fmt.Errorf("members.delete: %w", models.ErrNotFound)
	}
	return nil
}

func (r members) ListByGroup(_ context.Context, groupID int64) ([]models.GroupMember, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.membersOf(groupID), nil
}

func (r members) UpdateRole(_ context.Context, userID, groupID int64, role models.GroupRole) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for id, m := range r.db.members {
		if m.UserID == userID && m.GroupID == groupID {
			m.Role = role
			r.db.members[id] = m
			n++
		}
	}
	if n == 0 {
		return fmt.Errorf("members.update_role: %w", models.ErrNotFound)
	}
	return nil
}

func (r members) CountByGroup(_ context.Context, groupID int64) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, m := range r.db.members {
		if m.GroupID == groupID {
			n++
		}
	}
	return n, nil
}

type sports struct{ db *DB }

func (r sports) List(_ context.Context) ([]models.Sport, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Sport, 0, len(r.db.sports))
	for _, id := range sortedIDs(r.db.sports) {
		out = append(out, r.db.sports[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r sports) GetByID(_ context.Context, id int64) (*models.Sport, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s := r.db.sportPtr(id); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("sports.get: %w", models.ErrNotFound)
}

func (r sports) GetByName(_ context.Context, name string) (*models.Sport, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range sortedIDs(r.db.sports) {
		if s := r.db.sports[id]; s.Name == name {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("sports.get_by_name: %w", models.ErrNotFound)
}

func (r sports) Create(_ context.Context, s *models.Sport) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.sports {
		if existing.Name == s.Name {
			return fmt.Errorf("sports.create: %w", models.ErrConflict)
		}
	}
	s.ID = r.db.nextID()
	s.CreatedAt = r.db.now()
	r.db.sports[s.ID] = *s
	return nil
}

func (r sports) Count(_ context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.db.sports)), nil
}
