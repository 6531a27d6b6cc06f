package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/m3rciful/gamebot/internal/models"
)

type locationRepo struct {
	db *gorm.DB
}

func (r *locationRepo) withSports(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("SportLocations.Sport")
}

func (r *locationRepo) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	var l models.Location
	if err := r.withSports(ctx).First(&l, id).Error; err != nil {
		return nil, translate("locations.get", err)
	}
	return &l, nil
}

func (r *locationRepo) FindByNameAndGroup(ctx context.Context, name string, groupID int64) (*models.Location, error) {
	var l models.Location
	err := r.withSports(ctx).Where("name = ? AND group_id = ?", name, groupID).First(&l).Error
	if err != nil {
		return nil, translate("locations.find", err)
	}
	return &l, nil
}

func (r *locationRepo) ListByGroup(ctx context.Context, groupID int64, includeInactive bool) ([]models.Location, error) {
	q := r.withSports(ctx).Where("group_id = ?", groupID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var out []models.Location
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, translate("locations.list", err)
	}
	return out, nil
}

func (r *locationRepo) ListByGroupAndSport(ctx context.Context, groupID, sportID int64, includeInactive bool) ([]models.Location, error) {
	q := r.withSports(ctx).
		Joins("JOIN sport_locations sl ON sl.location_id = locations.id").
		Where("locations.group_id = ? AND sl.sport_id = ?", groupID, sportID)
	if !includeInactive {
		q = q.Where("locations.is_active = ?", true)
	}
	var out []models.Location
	if err := q.Order("locations.name ASC").Find(&out).Error; err != nil {
		return nil, translate("locations.list_by_sport", err)
	}
	return out, nil
}

func (r *locationRepo) Create(ctx context.Context, l *models.Location, sportIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("SportLocations").Create(l).Error; err != nil {
			return err
		}
		return insertSports(tx, l.ID, sportIDs)
	})
	return translate("locations.create", err)
}

func insertSports(tx *gorm.DB, locationID int64, sportIDs []int64) error {
	if len(sportIDs) == 0 {
		return nil
	}
	rows := make([]models.SportLocation, 0, len(sportIDs))
	for _, id := range sportIDs {
		rows = append(rows, models.SportLocation{SportID: id, LocationID: locationID})
	}
	return tx.Omit("Sport").Create(&rows).Error
}

func (r *locationRepo) Update(ctx context.Context, l *models.Location) error {
	res := r.db.WithContext(ctx).Model(&models.Location{}).Where("id = ?", l.ID).Updates(map[string]any{
		"name":      l.Name,
		"map_url":   l.MapURL,
		"is_active": l.IsActive,
	})
	return affected("locations.update", res)
}

func (r *locationRepo) Delete(ctx context.Context, id int64) error {
	var res *gorm.DB
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", id).Delete(&models.SportLocation{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Game{}).Where("location_id = ?", id).Update("location_id", nil).Error; err != nil {
			return err
		}
		res = tx.Delete(&models.Location{}, id)
		return res.Error
	})
	if err != nil {
		return translate("locations.delete", err)
	}
	return affected("locations.delete", res)
}

func (r *locationRepo) AddSport(ctx context.Context, locationID, sportID int64) error {
	row := models.SportLocation{SportID: sportID, LocationID: locationID}
	return translate("locations.add_sport", r.db.WithContext(ctx).Omit("Sport").Create(&row).Error)
}

func (r *locationRepo) ReplaceSports(ctx context.Context, locationID int64, sportIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", locationID).Delete(&models.SportLocation{}).Error; err != nil {
			return err
		}
		return insertSports(tx, locationID, sportIDs)
	})
	return translate("locations.replace_sports", err)
}
