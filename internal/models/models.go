// Package models declares the persistent entities of the bot and their
// domain enums. Column names follow the relational schema in migrations/.
package models

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on unique violations and duplicate memberships.
	ErrConflict = errors.New("conflict")
	// ErrValidation marks input rejected by a service-level check.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden marks an action the caller's role does not allow.
	ErrForbidden = errors.New("forbidden")
)

// GameType distinguishes regular games from trainings.
type GameType string

const (
	GameTypeGame     GameType = "GAME"
	GameTypeTraining GameType = "TRAINING"
)

// GameStatus is the lifecycle status of a game.
type GameStatus string

const (
	GameStatusPlanned   GameStatus = "planned"
	GameStatusCancelled GameStatus = "cancelled"
	GameStatusCompleted GameStatus = "completed"
)

// ParticipationStatus is a participant's answer for a game.
type ParticipationStatus string

const (
	StatusConfirmed ParticipationStatus = "confirmed"
	StatusMaybe     ParticipationStatus = "maybe"
	StatusGuest     ParticipationStatus = "guest"
)

// Valid reports whether s is one of the known statuses.
func (s ParticipationStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusMaybe, StatusGuest:
		return true
	}
	return false
}

// GroupRole is a member's role inside a group.
type GroupRole string

const (
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

// Models lists every entity for schema synchronisation.
func Models() []any {
	return []any{
		&User{},
		&Group{},
		&GroupMember{},
		&Sport{},
		&Location{},
		&SportLocation{},
		&Game{},
		&GameParticipant{},
	}
}
