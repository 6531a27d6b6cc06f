package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/m3rciful/gamebot/internal/models"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		return nil, translate("users.get_by_telegram_id", err)
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("users.get", err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return translate("users.create", r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) UpdatePhone(ctx context.Context, id int64, phone string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("phone", phone)
	return affected("users.update_phone", res)
}

func (r *userRepo) CountParticipations(ctx context.Context, userID int64, now time.Time) (int, int, error) {
	var total, upcoming int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.GameParticipant{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, 0, translate("users.count_participations", err)
	}
	err := db.Model(&models.GameParticipant{}).
		Joins("JOIN games ON games.id = game_participants.game_id").
		Where("game_participants.user_id = ? AND games.game_date > ? AND games.status = ?", userID, now, models.GameStatusPlanned).
		Count(&upcoming).Error
	if err != nil {
		return 0, 0, translate("users.count_upcoming", err)
	}
	return int(total), int(upcoming), nil
}
