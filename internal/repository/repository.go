// Package repository declares the storage contracts used by the services.
// The postgres subpackage implements them with gorm; memory backs tests.
package repository

import (
	"context"
	"time"

	"github.com/m3rciful/gamebot/internal/models"
)

// Users stores Telegram accounts.
type Users interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdatePhone(ctx context.Context, id int64, phone string) error
	// CountParticipations returns all participations and those in planned games after now.
	CountParticipations(ctx context.Context, userID int64, now time.Time) (total, upcoming int, err error)
}

// Groups stores chat groups.
type Groups interface {
	// GetByID loads the group with its members and their users.
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Group, error)
	Create(ctx context.Context, g *models.Group) error
	UpdateInviteCode(ctx context.Context, id int64, code string) error
	// ListByUser returns the groups userID belongs to, members loaded.
	ListByUser(ctx context.Context, userID int64) ([]models.Group, error)
}

// Members stores group memberships.
type Members interface {
	Get(ctx context.Context, userID, groupID int64) (*models.GroupMember, error)
	Create(ctx context.Context, m *models.GroupMember) error
	Delete(ctx context.Context, userID, groupID int64) error
	// ListByGroup orders admins first, then by join time.
	ListByGroup(ctx context.Context, groupID int64) ([]models.GroupMember, error)
	UpdateRole(ctx context.Context, userID, groupID int64, role models.GroupRole) error
	CountByGroup(ctx context.Context, groupID int64) (int, error)
}

// Sports stores reference sports.
type Sports interface {
	// List orders sports by name.
	List(ctx context.Context) ([]models.Sport, error)
	GetByID(ctx context.Context, id int64) (*models.Sport, error)
	GetByName(ctx context.Context, name string) (*models.Sport, error)
	Create(ctx context.Context, s *models.Sport) error
	Count(ctx context.Context) (int64, error)
}

// Locations stores venues and their sport associations.
type Locations interface {
	// GetByID loads the location with its sports.
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	FindByNameAndGroup(ctx context.Context, name string, groupID int64) (*models.Location, error)
	ListByGroup(ctx context.Context, groupID int64, includeInactive bool) ([]models.Location, error)
	ListByGroupAndSport(ctx context.Context, groupID, sportID int64, includeInactive bool) ([]models.Location, error)
	// Create inserts the location and one association per sport id.
	Create(ctx context.Context, l *models.Location, sportIDs []int64) error
	// Update persists name, map url and active flag.
	Update(ctx context.Context, l *models.Location) error
	Delete(ctx context.Context, id int64) error
	// AddSport returns models.ErrConflict when the pair already exists.
	AddSport(ctx context.Context, locationID, sportID int64) error
	ReplaceSports(ctx context.Context, locationID int64, sportIDs []int64) error
}

// Games stores games and trainings.
type Games interface {
	Create(ctx context.Context, g *models.Game) error
	// GetByID loads sport, location and participants ordered by position.
	GetByID(ctx context.Context, id int64) (*models.Game, error)
	// ListUpcoming returns planned games of the group at or after now, soonest first.
	ListUpcoming(ctx context.Context, groupID int64, now time.Time) ([]models.Game, error)
	UpdateStatus(ctx context.Context, id int64, status models.GameStatus) error
	// Delete removes participants and the game in one transaction.
	Delete(ctx context.Context, id int64) error
	CountParticipants(ctx context.Context, gameID int64) (int, error)
}

// Participants stores game sign-ups.
type Participants interface {
	// Insert returns models.ErrConflict when (game, user) already exists.
	Insert(ctx context.Context, p *models.GameParticipant) error
	// Update changes the status, and the guest name when non-empty.
	Update(ctx context.Context, gameID, userID int64, status models.ParticipationStatus, guestName string) error
	Delete(ctx context.Context, gameID, userID int64) error
	// ListByGame orders by join time.
	ListByGame(ctx context.Context, gameID int64) ([]models.GameParticipant, error)
	SetPosition(ctx context.Context, id int64, position int) error
}

// Store bundles every repository.
type Store struct {
	Users        Users
	Groups       Groups
	Members      Members
	Sports       Sports
	Locations    Locations
	Games        Games
	Participants Participants
}
