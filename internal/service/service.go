// Package service holds the stateless domain services used by commands,
// callbacks and flows.
package service

import (
	"time"

	"github.com/m3rciful/gamebot/internal/repository"
)

// Services bundles every domain service built over one repository set.
type Services struct {
	Users     *UserService
	Groups    *GroupService
	Sports    *SportService
	Locations *LocationService
	Games     *GameService
}

// Option customises service construction.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the wall clock used for "upcoming" queries.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New wires all services over store.
func New(store repository.Store, opts ...Option) *Services {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Services{
		Users:     &UserService{users: store.Users, now: o.now},
		Groups:    &GroupService{groups: store.Groups, members: store.Members, games: store.Games, now: o.now},
		Sports:    &SportService{sports: store.Sports},
		Locations: &LocationService{locations: store.Locations},
		Games:     &GameService{games: store.Games, participants: store.Participants, now: o.now},
	}
}
