package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository"
)

// TelegramUser is the subset of a Telegram sender stored on first contact.
type TelegramUser struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// UserService manages Telegram accounts.
type UserService struct {
	users repository.Users
	now   func() time.Time
}

// FindOrCreate returns the user for tg, creating it on first interaction.
func (s *UserService) FindOrCreate(ctx context.Context, tg TelegramUser) (*models.User, error) {
	u, err := s.users.GetByTelegramID(ctx, tg.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	u = &models.User{
		TelegramID: tg.ID,
		Username:   tg.Username,
		FirstName:  tg.FirstName,
		LastName:   tg.LastName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, models.ErrConflict) {
			// registered by a concurrent update
			return s.users.GetByTelegramID(ctx, tg.ID)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.Info(ctx, "service.users", "user.create",
		slog.String("status", "ok"),
		slog.Int64("user_id", tg.ID),
		slog.String("username", logger.SanitizeLimit(u.Mention(), 64)),
	)
	return u, nil
}

// GetByTelegramID looks a user up by Telegram id.
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

// GetByID looks a user up by primary key.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdatePhone stores a contact phone for the user.
func (s *UserService) UpdatePhone(ctx context.Context, id int64, phone string) error {
	return s.users.UpdatePhone(ctx, id, phone)
}

// Stats counts the user's participations.
func (s *UserService) Stats(ctx context.Context, id int64) (models.UserStats, error) {
	total, upcoming, err := s.users.CountParticipations(ctx, id, s.now())
	if err != nil {
		return models.UserStats{}, err
	}
	return models.UserStats{TotalGames: total, UpcomingGames: upcoming}, nil
}
