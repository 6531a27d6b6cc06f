package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository"
)

const inviteCodeLen = 8

// GroupService manages groups and memberships.
type GroupService struct {
	groups  repository.Groups
	members repository.Members
	games   repository.Games
	now     func() time.Time
}

// NewInviteCode returns 8 upper-case hex characters.
func NewInviteCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:inviteCodeLen])
}

// Create makes a group with creatorID as its admin. Private groups receive an
// invite code.
func (s *GroupService) Create(ctx context.Context, name string, creatorID int64, private bool) (*models.Group, error) {
	g := &models.Group{
		Name:      strings.TrimSpace(name),
		CreatorID: &creatorID,
		IsPrivate: private,
	}
	if g.Name == "" {
		return nil, fmt.Errorf("group name: %w", models.ErrValidation)
	}
	if private {
		code := NewInviteCode()
		g.InviteCode = &code
	}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	if err := s.members.Create(ctx, &models.GroupMember{UserID: creatorID, GroupID: g.ID, Role: models.RoleAdmin}); err != nil {
		return nil, fmt.Errorf("add group creator: %w", err)
	}
	logger.Info(ctx, "service.groups", "group.create",
		slog.String("status", "ok"),
		slog.Int64("group_id", g.ID),
		slog.Bool("private", private),
	)
	return g, nil
}

// CreateFromChat registers a Telegram chat as a group. A non-nil creatorID
// becomes the first admin.
func (s *GroupService) CreateFromChat(ctx context.Context, chatID int64, title string, creatorID *int64) (*models.Group, error) {
	g := &models.Group{
		Name:           title,
		TelegramChatID: &chatID,
		CreatorID:      creatorID,
	}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create group from chat: %w", err)
	}
	if creatorID != nil {
		if err := s.members.Create(ctx, &models.GroupMember{UserID: *creatorID, GroupID: g.ID, Role: models.RoleAdmin}); err != nil {
			return nil, fmt.Errorf("add chat creator: %w", err)
		}
	}
	logger.Info(ctx, "service.groups", "group.create",
		slog.String("status", "ok"),
		slog.Int64("group_id", g.ID),
		slog.Int64("chat_id", chatID),
	)
	return g, nil
}

// GetByID loads a group with its members.
func (s *GroupService) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	return s.groups.GetByID(ctx, id)
}

// GetByChatID loads the group registered for a Telegram chat.
func (s *GroupService) GetByChatID(ctx context.Context, chatID int64) (*models.Group, error) {
	return s.groups.GetByChatID(ctx, chatID)
}

// GetByInviteCode is case-insensitive.
func (s *GroupService) GetByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	return s.groups.GetByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// UserGroups lists the groups the user belongs to.
func (s *GroupService) UserGroups(ctx context.Context, userID int64) ([]models.Group, error) {
	return s.groups.ListByUser(ctx, userID)
}

// AddMember returns models.ErrConflict when the user is already a member.
func (s *GroupService) AddMember(ctx context.Context, userID, groupID int64, role models.GroupRole) error {
	if _, err := s.members.Get(ctx, userID, groupID); err == nil {
		return fmt.Errorf("add member: %w", models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if role == "" {
		role = models.RoleMember
	}
	if err := s.members.Create(ctx, &models.GroupMember{UserID: userID, GroupID: groupID, Role: role}); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	logger.Info(ctx, "service.groups", "member.add",
		slog.String("status", "ok"),
		slog.Int64("group_id", groupID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// EnsureMember adds the user as a member unless already present.
func (s *GroupService) EnsureMember(ctx context.Context, userID, groupID int64) (bool, error) {
	err := s.AddMember(ctx, userID, groupID, models.RoleMember)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrConflict):
		return false, nil
	}
	return false, err
}

// IsMember reports whether userID belongs to groupID.
func (s *GroupService) IsMember(ctx context.Context, userID, groupID int64) (bool, error) {
	_, err := s.members.Get(ctx, userID, groupID)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// IsAdmin reports whether userID administers groupID.
func (s *GroupService) IsAdmin(ctx context.Context, userID, groupID int64) (bool, error) {
	m, err := s.members.Get(ctx, userID, groupID)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.IsAdmin(), nil
}

// RemoveMember deletes the membership.
func (s *GroupService) RemoveMember(ctx context.Context, userID, groupID int64) error {
	if err := s.members.Delete(ctx, userID, groupID); err != nil {
		return err
	}
	logger.Info(ctx, "service.groups", "member.remove",
		slog.String("status", "ok"),
		slog.Int64("group_id", groupID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// PromoteToAdmin grants the admin role.
func (s *GroupService) PromoteToAdmin(ctx context.Context, userID, groupID int64) error {
	return s.members.UpdateRole(ctx, userID, groupID, models.RoleAdmin)
}

// Members lists admins first, then members by join time.
func (s *GroupService) Members(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	return s.members.ListByGroup(ctx, groupID)
}

// MemberCount counts memberships of a group.
func (s *GroupService) MemberCount(ctx context.Context, groupID int64) (int, error) {
	return s.members.CountByGroup(ctx, groupID)
}

// UpcomingGamesCount counts planned games ahead of now.
func (s *GroupService) UpcomingGamesCount(ctx context.Context, groupID int64) (int, error) {
	games, err := s.games.ListUpcoming(ctx, groupID, s.now())
	if err != nil {
		return 0, err
	}
	return len(games), nil
}

// RegenerateInviteCode issues a fresh invite code for the group.
func (s *GroupService) RegenerateInviteCode(ctx context.Context, groupID int64) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		code := NewInviteCode()
		err := s.groups.UpdateInviteCode(ctx, groupID, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// SyncMembers adds every user id that is not yet a member.
func (s *GroupService) SyncMembers(ctx context.Context, groupID int64, userIDs []int64) error {
	for _, id := range userIDs {
		if _, err := s.EnsureMember(ctx, id, groupID); err != nil {
			return err
		}
	}
	return nil
}
