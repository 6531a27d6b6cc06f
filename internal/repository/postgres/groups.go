package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/m3rciful/gamebot/internal/models"
)

type groupRepo struct {
	db *gorm.DB
}

func (r *groupRepo) withMembers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("role ASC, joined_at ASC")
		}).
		Preload("Members.User")
}

func (r *groupRepo) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	var g models.Group
	if err := r.withMembers(ctx).First(&g, id).Error; err != nil {
		return nil, translate("groups.get", err)
	}
	return &g, nil
}

func (r *groupRepo) GetByChatID(ctx context.Context, chatID int64) (*models.Group, error) {
	var g models.Group
	if err := r.withMembers(ctx).Where("telegram_chat_id = ?", chatID).First(&g).Error; err != nil {
		return nil, translate("groups.get_by_chat", err)
	}
	return &g, nil
}

func (r *groupRepo) GetByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	var g models.Group
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&g).Error; err != nil {
		return nil, translate("groups.get_by_invite", err)
	}
	return &g, nil
}

func (r *groupRepo) Create(ctx context.Context, g *models.Group) error {
	return translate("groups.create", r.db.WithContext(ctx).Omit("Members").Create(g).Error)
}

func (r *groupRepo) UpdateInviteCode(ctx context.Context, id int64, code string) error {
	res := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Update("invite_code", code)
	return affected("groups.update_invite", res)
}

func (r *groupRepo) ListByUser(ctx context.Context, userID int64) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Preload("Members").
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Order("groups.name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, translate("groups.list_by_user", err)
	}
	return groups, nil
}

type memberRepo struct {
	db *gorm.DB
}

func (r *memberRepo) Get(ctx context.Context, userID, groupID int64) (*models.GroupMember, error) {
	var m models.GroupMember
	err := r.db.WithContext(ctx).Where("user_id = ? AND group_id = ?", userID, groupID).First(&m).Error
	if err != nil {
		return nil, translate("members.get", err)
	}
	return &m, nil
}

func (r *memberRepo) Create(ctx context.Context, m *models.GroupMember) error {
	return translate("members.create", r.db.WithContext(ctx).Omit("User", "Group").Create(m).Error)
}

func (r *memberRepo) Delete(ctx context.Context, userID, groupID int64) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND group_id = ?", userID, groupID).Delete(&models.GroupMember{})
	return affected("members.delete", res)
}

func (r *memberRepo) ListByGroup(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("role ASC, joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, translate("members.list", err)
	}
	return members, nil
}

func (r *memberRepo) UpdateRole(ctx context.Context, userID, groupID int64, role models.GroupRole) error {
	res := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Update("role", role)
	return affected("members.update_role", res)
}

func (r *memberRepo) CountByGroup(ctx context.Context, groupID int64) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&n).Error; err != nil {
		return 0, translate("members.count", err)
	}
	return int(n), nil
}

type sportRepo struct {
	db *gorm.DB
}

func (r *sportRepo) List(ctx context.Context) ([]models.Sport, error) {
	var sports []models.Sport
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&sports).Error; err != nil {
		return nil, translate("sports.list", err)
	}
	return sports, nil
}

func (r *sportRepo) GetByID(ctx context.Context, id int64) (*models.Sport, error) {
	var s models.Sport
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate("sports.get", err)
	}
	return &s, nil
}

func (r *sportRepo) GetByName(ctx context.Context, name string) (*models.Sport, error) {
	var s models.Sport
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error; err != nil {
		return nil, translate("sports.get_by_name", err)
	}
	return &s, nil
}

func (r *sportRepo) Create(ctx context.Context, s *models.Sport) error {
	return translate("sports.create", r.db.WithContext(ctx).Create(s).Error)
}

func (r *sportRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Sport{}).Count(&n).Error; err != nil {
		return 0, translate("sports.count", err)
	}
	return n, nil
}
