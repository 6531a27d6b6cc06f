package models

import "time"

// UnlimitedParticipants is the capacity stored for trainings without an upper bound.
const UnlimitedParticipants = 999

// MaxCapacity is the largest explicit capacity; anything above reads as unlimited.
const MaxCapacity = UnlimitedParticipants - 1

// Game is a scheduled game or training.
type Game struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	GroupID         int64      `gorm:"not null;index" json:"group_id"`
	CreatorID       *int64     `json:"creator_id,omitempty"`
	SportID         int64      `gorm:"not null" json:"sport_id"`
	GameDate        time.Time  `gorm:"not null;index" json:"game_date"`
	LocationID      *int64     `json:"location_id,omitempty"`
	LocationText    string     `gorm:"size:255" json:"location_text,omitempty"`
	MinParticipants int        `gorm:"not null;default:2" json:"min_participants"`
	MaxParticipants int        `gorm:"not null" json:"max_participants"`
	Cost            *float64   `gorm:"type:decimal(10,2)" json:"cost,omitempty"`
	Status          GameStatus `gorm:"size:16;not null;default:planned" json:"status"`
	Type            GameType   `gorm:"size:16;not null;default:GAME" json:"type"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Group        *Group            `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Sport        *Sport            `gorm:"foreignKey:SportID" json:"sport,omitempty"`
	Location     *Location         `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"location,omitempty"`
	Participants []GameParticipant `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

// IsActive reports whether the game is planned and still ahead of now.
func (g *Game) IsActive(now time.Time) bool {
	return g.Status == GameStatusPlanned && g.GameDate.After(now)
}

// IsFull reports whether the loaded participants fill every slot.
func (g *Game) IsFull() bool {
	return len(g.Participants) >= g.MaxParticipants
}

// ConfirmedCount counts loaded participants with a confirmed answer.
func (g *Game) ConfirmedCount() int {
	return g.countStatus(StatusConfirmed)
}

// MaybeCount counts loaded participants who are unsure.
func (g *Game) MaybeCount() int {
	return g.countStatus(StatusMaybe)
}

func (g *Game) countStatus(st ParticipationStatus) int {
	n := 0
	for _, p := range g.Participants {
		if p.Status == st {
			n++
		}
	}
	return n
}

// LocationName prefers the linked location, then the free-text fallback.
func (g *Game) LocationName() string {
	if g.Location != nil && g.Location.Name != "" {
		return g.Location.Name
	}
	if g.LocationText != "" {
		return g.LocationText
	}
	return "Не указано"
}

// Unlimited reports whether the game has no upper capacity bound.
func (g *Game) Unlimited() bool {
	return g.MaxParticipants >= UnlimitedParticipants
}

// IsTraining reports whether the game is a training.
func (g *Game) IsTraining() bool {
	return g.Type == GameTypeTraining
}

// GameParticipant is one user's sign-up for a game. (game, user) is unique.
type GameParticipant struct {
	ID        int64               `gorm:"primaryKey" json:"id"`
	GameID    int64               `gorm:"not null;uniqueIndex:idx_participant_game_user" json:"game_id"`
	UserID    int64               `gorm:"not null;uniqueIndex:idx_participant_game_user" json:"user_id"`
	Status    ParticipationStatus `gorm:"column:participation_status;size:16;not null" json:"status"`
	GuestName string              `gorm:"size:255" json:"guest_name,omitempty"`
	Position  int                 `json:"position"`
	JoinedAt  time.Time           `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt time.Time           `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// Priority orders participants: confirmed, then maybe, then guests.
func (p *GameParticipant) Priority() int {
	switch p.Status {
	case StatusConfirmed:
		return 1
	case StatusMaybe:
		return 2
	case StatusGuest:
		return 3
	}
	return 999
}

// StatusEmoji renders the participation status.
func (p *GameParticipant) StatusEmoji() string {
	switch p.Status {
	case StatusConfirmed:
		return "✅"
	case StatusMaybe:
		return "❓"
	case StatusGuest:
		return "👤"
	}
	return ""
}

// DisplayName prefers the guest name, then the user's mention.
func (p *GameParticipant) DisplayName() string {
	if p.GuestName != "" {
		return p.GuestName
	}
	if p.User != nil {
		return p.User.Mention()
	}
	return "Unknown"
}

// ParticipantGroups splits a game's participants by status.
type ParticipantGroups struct {
	Confirmed []GameParticipant
	Maybe     []GameParticipant
	Guests    []GameParticipant
	Waiting   []GameParticipant
}
