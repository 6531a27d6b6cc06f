package app

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository/postgres"
	"github.com/m3rciful/gamebot/internal/service"
)

// SeedSports inserts the default sports in one transaction when the table is
// empty.
func SeedSports(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Sport{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		logger.Debug(ctx, "db.seed", "seed.sports",
			slog.String("status", "skip"),
			slog.Int64("count", n),
		)
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		added, err := service.New(postgres.New(tx)).Sports.SeedDefaults(ctx)
		if err != nil {
			return err
		}
		logger.Info(ctx, "db.seed", "seed.sports",
			slog.String("status", "ok"),
			slog.Int("count", added),
		)
		return nil
	})
}
