// Package postgres implements the repositories on top of gorm and PostgreSQL.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository"
)

const pgUniqueViolation = "23505"

// New returns a repository set backed by db. The connection should be opened
// with TranslateError enabled so unique violations surface as gorm errors.
func New(db *gorm.DB) repository.Store {
	return repository.Store{
		Users:        &userRepo{db: db},
		Groups:       &groupRepo{db: db},
		Members:      &memberRepo{db: db},
		Sports:       &sportRepo{db: db},
		Locations:    &locationRepo{db: db},
		Games:        &gameRepo{db: db},
		Participants: &participantRepo{db: db},
	}
}

// translate maps driver errors onto the domain sentinels.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, models.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsUniqueViolation reports whether err is a duplicate key error.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func affected(op string, res *gorm.DB) error {
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
