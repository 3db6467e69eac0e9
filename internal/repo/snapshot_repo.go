// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file stores the nightly per-farm reconciliation.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// UpsertSnapshot writes s, replacing the totals of an existing snapshot for
// the same farm and day. Rerunning a day is therefore safe.
func UpsertSnapshot(ctx context.Context, db *gorm.DB, s *domain.DailySnapshot) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "farm_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{"produced", "sold", "remaining", "cow_count"}),
		}).
		Create(s).Error
}

// ListSnapshots returns a farm's snapshots with fromDay <= day <= toDay,
// newest first. Days use the YYYY-MM-DD layout; empty bounds are open.
func ListSnapshots(ctx context.Context, db *gorm.DB, farmID, fromDay, toDay string) ([]domain.DailySnapshot, error) {
	q := db.WithContext(ctx).Where("farm_id = ?", farmID)
	if fromDay != "" {
		q = q.Where("day >= ?", fromDay)
	}
	if toDay != "" {
		q = q.Where("day <= ?", toDay)
	}
	var out []domain.DailySnapshot
	err := q.Order("day desc").Find(&out).Error
	return out, err
}
