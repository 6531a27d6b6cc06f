package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository"
)

// LocationService manages group venues.
type LocationService struct {
	locations repository.Locations
}

// CreateLocationInput describes a new venue.
type CreateLocationInput struct {
	Name     string
	GroupID  int64
	MapURL   string
	SportIDs []int64
}

// LocationPatch holds optional updates; nil fields are left untouched.
type LocationPatch struct {
	Name     *string
	MapURL   *string
	IsActive *bool
}

// ByGroup lists the group's locations ordered by name.
func (s *LocationService) ByGroup(ctx context.Context, groupID int64, includeInactive bool) ([]models.Location, error) {
	return s.locations.ListByGroup(ctx, groupID, includeInactive)
}

// ByGroupAndSport lists active group locations offering the sport.
func (s *LocationService) ByGroupAndSport(ctx context.Context, groupID, sportID int64) ([]models.Location, error) {
	return s.locations.ListByGroupAndSport(ctx, groupID, sportID, false)
}

func (s *LocationService) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	return s.locations.GetByID(ctx, id)
}

// Create inserts a location with at least one sport.
func (s *LocationService) Create(ctx context.Context, in CreateLocationInput) (*models.Location, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("location name: %w", models.ErrValidation)
	}
	if len(in.SportIDs) == 0 {
		return nil, fmt.Errorf("location sports: %w", models.ErrValidation)
	}
	l := &models.Location{
		Name:     name,
		GroupID:  in.GroupID,
		MapURL:   strings.TrimSpace(in.MapURL),
		IsActive: true,
	}
	if err := s.locations.Create(ctx, l, dedupe(in.SportIDs)); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	logger.Info(ctx, "service.locations", "location.create",
		slog.String("status", "ok"),
		slog.Int64("group_id", in.GroupID),
		slog.Int64("location_id", l.ID),
		slog.Int("count", len(in.SportIDs)),
	)
	return s.locations.GetByID(ctx, l.ID)
}

// Update applies patch and returns the reloaded location.
func (s *LocationService) Update(ctx context.Context, id int64, patch LocationPatch) (*models.Location, error) {
	l, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		l.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.MapURL != nil {
		l.MapURL = strings.TrimSpace(*patch.MapURL)
	}
	if patch.IsActive != nil {
		l.IsActive = *patch.IsActive
	}
	if err := s.locations.Update(ctx, l); err != nil {
		return nil, err
	}
	logger.Info(ctx, "service.locations", "location.update",
		slog.String("status", "ok"),
		slog.Int64("location_id", id),
	)
	return s.locations.GetByID(ctx, id)
}

// SetSports replaces the sport set; at least one sport is required.
func (s *LocationService) SetSports(ctx context.Context, id int64, sportIDs []int64) error {
	if len(sportIDs) == 0 {
		return fmt.Errorf("location sports: %w", models.ErrValidation)
	}
	return s.locations.ReplaceSports(ctx, id, dedupe(sportIDs))
}

// AddSport returns models.ErrConflict when already associated.
func (s *LocationService) AddSport(ctx context.Context, id, sportID int64) error {
	l, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.HasSport(sportID) {
		return fmt.Errorf("add sport: %w", models.ErrConflict)
	}
	return s.locations.AddSport(ctx, id, sportID)
}

func (s *LocationService) Deactivate(ctx context.Context, id int64) error {
	active := false
	_, err := s.Update(ctx, id, LocationPatch{IsActive: &active})
	return err
}

func (s *LocationService) Activate(ctx context.Context, id int64) error {
	active := true
	_, err := s.Update(ctx, id, LocationPatch{IsActive: &active})
	return err
}

func (s *LocationService) Delete(ctx context.Context, id int64) error {
	return s.locations.Delete(ctx, id)
}

// FindOrCreate matches by (name, group). An existing location gains the sport
// instead of being duplicated. The bool reports whether a row was created.
func (s *LocationService) FindOrCreate(ctx context.Context, name string, sportID, groupID int64, mapURL string) (*models.Location, bool, error) {
	name = strings.TrimSpace(name)
	existing, err := s.locations.FindByNameAndGroup(ctx, name, groupID)
	switch {
	case err == nil:
		if !existing.HasSport(sportID) {
			if err := s.locations.AddSport(ctx, existing.ID, sportID); err != nil && !errors.Is(err, models.ErrConflict) {
				return nil, false, err
			}
			existing, err = s.locations.GetByID(ctx, existing.ID)
			if err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, false, err
	}
	l, err := s.Create(ctx, CreateLocationInput{Name: name, GroupID: groupID, MapURL: mapURL, SportIDs: []int64{sportID}})
	if err != nil {
		return nil, false, err
	}
	return l, true, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
