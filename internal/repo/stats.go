// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// FarmsStats returns the number of farms with the given status (all when
// empty) and the greatest UpdatedAt among them. When there are no rows the
// count is 0 and maxUpdatedAt is nil.
func FarmsStats(ctx context.Context, db *gorm.DB, status domain.FarmStatus) (count int64, maxUpdatedAt *time.Time, err error) {
	return tableStats(farmScope(db.WithContext(ctx).Model(&domain.Farm{}), status))
}

// CowsStats returns the number of cows in a farm and the greatest UpdatedAt
// among them. When the farm has no cows the count is 0 and maxUpdatedAt is nil.
func CowsStats(ctx context.Context, db *gorm.DB, farmID string) (count int64, maxUpdatedAt *time.Time, err error) {
	return tableStats(db.WithContext(ctx).Model(&domain.Cow{}).Where("farm_id = ?", farmID))
}

func tableStats(q *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	// Count
	if err = q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Session(&gorm.Session{}).Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
