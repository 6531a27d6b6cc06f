package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository"
)

// GameService manages games, trainings and sign-ups.
type GameService struct {
	games        repository.Games
	participants repository.Participants
	now          func() time.Time
}

// CreateGameInput describes a new game or training.
type CreateGameInput struct {
	GroupID         int64
	CreatorID       int64
	SportID         int64
	GameDate        time.Time
	LocationID      *int64
	LocationText    string
	MinParticipants int
	MaxParticipants int
	Cost            *float64
	Notes           string
	Type            models.GameType
}

// Create stores a planned game. Type defaults to GAME.
func (s *GameService) Create(ctx context.Context, in CreateGameInput) (*models.Game, error) {
	typ := in.Type
	if typ == "" {
		typ = models.GameTypeGame
	}
	if in.MaxParticipants < in.MinParticipants {
		return nil, fmt.Errorf("participants bounds: %w", models.ErrValidation)
	}
	creator := in.CreatorID
	g := &models.Game{
		GroupID:         in.GroupID,
		CreatorID:       &creator,
		SportID:         in.SportID,
		GameDate:        in.GameDate,
		LocationID:      in.LocationID,
		LocationText:    in.LocationText,
		MinParticipants: in.MinParticipants,
		MaxParticipants: in.MaxParticipants,
		Cost:            in.Cost,
		Notes:           in.Notes,
		Status:          models.GameStatusPlanned,
		Type:            typ,
	}
	if err := s.games.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	logger.Info(ctx, "service.games", "game.create",
		slog.String("status", "ok"),
		slog.Int64("group_id", g.GroupID),
		slog.Int64("game_id", g.ID),
		slog.String("game_type", string(typ)),
		slog.Int64("sport_id", g.SportID),
	)
	return s.games.GetByID(ctx, g.ID)
}

// GetByID loads a game with sport, location and participants.
func (s *GameService) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	return s.games.GetByID(ctx, id)
}

// Upcoming lists the group's planned games ahead of now.
func (s *GameService) Upcoming(ctx context.Context, groupID int64) ([]models.Game, error) {
	return s.games.ListUpcoming(ctx, groupID, s.now())
}

// UpcomingByType filters Upcoming by type.
func (s *GameService) UpcomingByType(ctx context.Context, groupID int64, typ models.GameType) ([]models.Game, error) {
	all, err := s.Upcoming(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Game, 0, len(all))
	for _, g := range all {
		if g.Type == typ {
			out = append(out, g)
		}
	}
	return out, nil
}

// AddParticipant inserts the sign-up and falls back to updating the existing
// row on a unique violation. Positions are recomputed afterwards. The bool
// reports whether a new row was inserted.
func (s *GameService) AddParticipant(ctx context.Context, gameID, userID int64, status models.ParticipationStatus, guestName string) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("participation status %q: %w", status, models.ErrValidation)
	}
	created := true
	err := s.participants.Insert(ctx, &models.GameParticipant{
		GameID:    gameID,
		UserID:    userID,
		Status:    status,
		GuestName: guestName,
	})
	if errors.Is(err, models.ErrConflict) {
		created = false
		err = s.participants.Update(ctx, gameID, userID, status, guestName)
	}
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	if err := s.recomputePositions(ctx, gameID); err != nil {
		return created, err
	}
	logger.Info(ctx, "service.games", "participant.upsert",
		slog.String("status", "ok"),
		slog.Int64("game_id", gameID),
		slog.Int64("user_id", userID),
		slog.String("participation", string(status)),
		slog.Bool("created", created),
	)
	return created, nil
}

// RemoveParticipant deletes the sign-up and recomputes positions.
func (s *GameService) RemoveParticipant(ctx context.Context, gameID, userID int64) error {
	if err := s.participants.Delete(ctx, gameID, userID); err != nil {
		return err
	}
	logger.Info(ctx, "service.games", "participant.remove",
		slog.String("status", "ok"),
		slog.Int64("game_id", gameID),
		slog.Int64("user_id", userID),
	)
	return s.recomputePositions(ctx, gameID)
}

// recomputePositions numbers participants confirmed, maybe, guest, each by join time.
func (s *GameService) recomputePositions(ctx context.Context, gameID int64) error {
	list, err := s.participants.ListByGame(ctx, gameID)
	if err != nil {
		return err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority() < list[j].Priority()
	})
	for i, p := range list {
		pos := i + 1
		if p.Position == pos {
			continue
		}
		if err := s.participants.SetPosition(ctx, p.ID, pos); err != nil {
			return err
		}
	}
	return nil
}

// ParticipantsByStatus splits participants; those positioned past the
// maximum are also listed as waiting.
func (s *GameService) ParticipantsByStatus(ctx context.Context, gameID int64) (models.ParticipantGroups, error) {
	g, err := s.games.GetByID(ctx, gameID)
	if errors.Is(err, models.ErrNotFound) {
		return models.ParticipantGroups{}, nil
	}
	if err != nil {
		return models.ParticipantGroups{}, err
	}
	return SplitParticipants(g), nil
}

// SplitParticipants groups a loaded game's participants.
func SplitParticipants(g *models.Game) models.ParticipantGroups {
	var out models.ParticipantGroups
	list := append([]models.GameParticipant(nil), g.Participants...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	for _, p := range list {
		switch p.Status {
		case models.StatusConfirmed:
			out.Confirmed = append(out.Confirmed, p)
		case models.StatusMaybe:
			out.Maybe = append(out.Maybe, p)
		case models.StatusGuest:
			out.Guests = append(out.Guests, p)
		}
		if p.Position > g.MaxParticipants {
			out.Waiting = append(out.Waiting, p)
		}
	}
	return out
}

// Cancel marks the game cancelled.
func (s *GameService) Cancel(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, models.GameStatusCancelled)
}

// Complete marks the game completed.
func (s *GameService) Complete(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, models.GameStatusCompleted)
}

func (s *GameService) setStatus(ctx context.Context, id int64, st models.GameStatus) error {
	if err := s.games.UpdateStatus(ctx, id, st); err != nil {
		return err
	}
	logger.Info(ctx, "service.games", "game.status",
		slog.String("status", "ok"),
		slog.Int64("game_id", id),
		slog.String("game_status", string(st)),
	)
	return nil
}

// Delete removes the game together with its participants.
func (s *GameService) Delete(ctx context.Context, id int64) error {
	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "service.games", "game.delete",
		slog.String("status", "ok"),
		slog.Int64("game_id", id),
	)
	return nil
}
