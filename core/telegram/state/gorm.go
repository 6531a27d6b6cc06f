package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlowSession is the persisted form of a Record.
type FlowSession struct {
	ChatID    int64          `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64          `gorm:"primaryKey;autoIncrement:false"`
	Flow      string         `gorm:"size:64;not null"`
	Data      datatypes.JSON `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"not null;index"`
	UpdatedAt time.Time
}

// TableName pins the table used by migrations.
func (FlowSession) TableName() string { return "flow_sessions" }

// GormStore keeps sessions in PostgreSQL so several bot instances share them.
type GormStore struct {
	db   *gorm.DB
	opts Options
}

// NewGormStore constructs a database-backed store.
func NewGormStore(db *gorm.DB, opts Options) *GormStore {
	return &GormStore{db: db, opts: opts.normalize()}
}

// Load ignores expired rows; Sweep removes them.
func (s *GormStore) Load(ctx context.Context, key Key) (Record, bool, error) {
	var row FlowSession
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ? AND expires_at > ?", key.ChatID, key.UserID, s.opts.Now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("session load: %w", err)
	}
	return Record{Flow: row.Flow, Data: []byte(row.Data), ExpiresAt: row.ExpiresAt}, true, nil
}

// Save upserts the row for key.
func (s *GormStore) Save(ctx context.Context, key Key, rec Record) error {
	now := s.opts.Now()
	row := FlowSession{
		ChatID:    key.ChatID,
		UserID:    key.UserID,
		Flow:      rec.Flow,
		Data:      datatypes.JSON(rec.Data),
		ExpiresAt: now.Add(s.opts.TTL),
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"flow", "data", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key Key) error {
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", key.ChatID, key.UserID).
		Delete(&FlowSession{}).Error
	if err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *GormStore) Sweep(ctx context.Context) (int, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.opts.Now()).Delete(&FlowSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("session sweep: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// Len counts stored rows, expired ones included. Errors count as zero.
func (s *GormStore) Len() int {
	var n int64
	if err := s.db.Model(&FlowSession{}).Count(&n).Error; err != nil {
		return 0
	}
	return int(n)
}
