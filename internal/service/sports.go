package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository"
)

// SportService exposes the sport reference data.
type SportService struct {
	sports repository.Sports
}

// All lists sports by name.
func (s *SportService) All(ctx context.Context) ([]models.Sport, error) {
	return s.sports.List(ctx)
}

func (s *SportService) GetByID(ctx context.Context, id int64) (*models.Sport, error) {
	return s.sports.GetByID(ctx, id)
}

func (s *SportService) GetByName(ctx context.Context, name string) (*models.Sport, error) {
	return s.sports.GetByName(ctx, name)
}

func (s *SportService) Create(ctx context.Context, name, emoji string) (*models.Sport, error) {
	sp := &models.Sport{Name: name, Emoji: emoji}
	if err := s.sports.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// SeedDefaults creates every default sport missing by name and returns how
// many were added.
func (s *SportService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, def := range models.DefaultSports {
		_, err := s.sports.GetByName(ctx, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return created, err
		}
		if _, err := s.Create(ctx, def.Name, def.Emoji); err != nil {
			return created, err
		}
		created++
	}
	logger.Info(ctx, "db.seed", "sports.seed",
		slog.String("status", "ok"),
		slog.Int("count", created),
	)
	return created, nil
}
