package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/m3rciful/gamebot/internal/models"
)

func TestTranslateNotFound(t *testing.T) {
	err := translate("games.get", gorm.ErrRecordNotFound)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTranslateUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	err := translate("participants.insert", fmt.Errorf("insert: %w", pgErr))
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	err = translate("participants.insert", gorm.ErrDuplicatedKey)
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict for gorm duplicate, got %v", err)
	}
}

func TestTranslatePassesOtherErrors(t *testing.T) {
	base := errors.New("connection reset")
	err := translate("games.create", base)
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	if errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unexpected sentinel in %v", err)
	}
	if translate("noop", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}

func TestIsUniqueViolationOtherCode(t *testing.T) {
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
}
