// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Farm model.
//
// Functions:
//
//   - CreateFarm(ctx, db, farm) -> error
//     Inserts a farm. Unique violations on name or slug map to ErrDuplicate.
//
//   - FarmNameExists / SlugExists(ctx, db, value) -> bool, error
//     Exact-match lookups used by the registration workflow.
//
//   - GetFarmBySlug(ctx, db, slug) -> *domain.Farm, error
//
//   - CountFarms / ListFarmsPage(ctx, db, status, ...)
//     Paginated listing, newest first, optionally filtered by status.
//
//   - UpdateFarm(ctx, db, id, fields) -> error
//     Partial update. Returns ErrNotFound when no row matches.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// CreateFarm inserts f. A missing ID is generated and timestamps are set to
// UTC. The slug must already be assigned by the caller.
func CreateFarm(ctx context.Context, db *gorm.DB, f *domain.Farm) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now
	if f.Status == "" {
		f.Status = domain.FarmInactive
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FarmNameExists reports whether a farm with exactly this name exists.
func FarmNameExists(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	return exists(ctx, db, &domain.Farm{}, "name = ?", name)
}

// SlugExists reports whether the slug is already assigned.
func SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	return exists(ctx, db, &domain.Farm{}, "slug = ?", slug)
}

// GetFarmBySlug fetches a farm by its slug, or ErrNotFound.
func GetFarmBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Farm, error) {
	var f domain.Farm
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// CountFarms returns the number of farms, optionally restricted to status.
func CountFarms(ctx context.Context, db *gorm.DB, status domain.FarmStatus) (int64, error) {
	var total int64
	err := farmScope(db.WithContext(ctx).Model(&domain.Farm{}), status).Count(&total).Error
	return total, err
}

// ListFarmsPage returns a page of farms ordered by creation time descending.
func ListFarmsPage(ctx context.Context, db *gorm.DB, status domain.FarmStatus, offset, limit int) ([]domain.Farm, error) {
	var out []domain.Farm
	err := farmScope(db.WithContext(ctx), status).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListAllFarms returns every farm with the given status (all when empty),
// ordered by name. Used to build the directory index and by the snapshot job.
func ListAllFarms(ctx context.Context, db *gorm.DB, status domain.FarmStatus) ([]domain.Farm, error) {
	var out []domain.Farm
	err := farmScope(db.WithContext(ctx), status).Order("name asc").Find(&out).Error
	return out, err
}

// UpdateFarm applies a partial update to the farm identified by id. The
// caller picks the columns; slug is never among them.
func UpdateFarm(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Farm{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func farmScope(q *gorm.DB, status domain.FarmStatus) *gorm.DB {
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q
}

func exists(ctx context.Context, db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&n).Error
	return n > 0, err
}
