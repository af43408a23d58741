package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

const activityInsertBatch = 50

type ActivityRepo struct{ db *gorm.DB }

func NewActivityRepo(db *gorm.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) CreateBatch(ctx context.Context, entries []models.ActivityLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("User").CreateInBatches(entries, activityInsertBatch).Error
}

// ListRecent returns the newest entries first with the acting user's name and
// email resolved. Anonymous entries have a nil User.
func (r *ActivityRepo) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
