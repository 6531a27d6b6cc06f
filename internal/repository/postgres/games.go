package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/m3rciful/gamebot/internal/models"
)

type gameRepo struct {
	db *gorm.DB
}

func (r *gameRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Sport").
		Preload("Location").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, joined_at ASC")
		}).
		Preload("Participants.User")
}

func (r *gameRepo) Create(ctx context.Context, g *models.Game) error {
	err := r.db.WithContext(ctx).Omit("Group", "Sport", "Location", "Participants").Create(g).Error
	return translate("games.create", err)
}

func (r *gameRepo) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	var g models.Game
	if err := r.withRelations(ctx).First(&g, id).Error; err != nil {
		return nil, translate("games.get", err)
	}
	return &g, nil
}

func (r *gameRepo) ListUpcoming(ctx context.Context, groupID int64, now time.Time) ([]models.Game, error) {
	var games []models.Game
	err := r.withRelations(ctx).
		Where("group_id = ? AND status = ? AND game_date >= ?", groupID, models.GameStatusPlanned, now).
		Order("game_date ASC").
		Find(&games).Error
	if err != nil {
		return nil, translate("games.list_upcoming", err)
	}
	return games, nil
}

func (r *gameRepo) UpdateStatus(ctx context.Context, id int64, status models.GameStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", id).Update("status", status)
	return affected("games.update_status", res)
}

func (r *gameRepo) Delete(ctx context.Context, id int64) error {
	var res *gorm.DB
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&models.GameParticipant{}).Error; err != nil {
			return err
		}
		res = tx.Delete(&models.Game{}, id)
		return res.Error
	})
	if err != nil {
		return translate("games.delete", err)
	}
	return affected("games.delete", res)
}

func (r *gameRepo) CountParticipants(ctx context.Context, gameID int64) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.GameParticipant{}).Where("game_id = ?", gameID).Count(&n).Error; err != nil {
		return 0, translate("games.count_participants", err)
	}
	return int(n), nil
}

type participantRepo struct {
	db *gorm.DB
}

func (r *participantRepo) Insert(ctx context.Context, p *models.GameParticipant) error {
	return translate("participants.insert", r.db.WithContext(ctx).Omit("User").Create(p).Error)
}

func (r *participantRepo) Update(ctx context.Context, gameID, userID int64, status models.ParticipationStatus, guestName string) error {
	fields := map[string]any{
		"participation_status": status,
		"updated_at":           time.Now(),
	}
	if guestName != "" {
		fields["guest_name"] = guestName
	}
	res := r.db.WithContext(ctx).Model(&models.GameParticipant{}).
		Where("game_id = ? AND user_id = ?", gameID, userID).
		Updates(fields)
	return affected("participants.update", res)
}

func (r *participantRepo) Delete(ctx context.Context, gameID, userID int64) error {
	res := r.db.WithContext(ctx).Where("game_id = ? AND user_id = ?", gameID, userID).Delete(&models.GameParticipant{})
	return affected("participants.delete", res)
}

func (r *participantRepo) ListByGame(ctx context.Context, gameID int64) ([]models.GameParticipant, error) {
	var out []models.GameParticipant
	err := r.db.WithContext(ctx).Preload("User").Where("game_id = ?", gameID).Order("joined_at ASC, id ASC").Find(&out).Error
	if err != nil {
		return nil, translate("participants.list", err)
	}
	return out, nil
}

func (r *participantRepo) SetPosition(ctx context.Context, id int64, position int) error {
	err := r.db.WithContext(ctx).Model(&models.GameParticipant{}).Where("id = ?", id).Update("position", position).Error
	return translate("participants.set_position", err)
}
