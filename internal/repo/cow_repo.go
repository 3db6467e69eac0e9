// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for cows and the
// named counters that issue their identifiers.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// CowSequence is the counter that issues "Cow-{n}" identifiers.
const CowSequence = "cow"

// CowFilter narrows cow listings. Zero values match everything.
type CowFilter struct {
	Gender domain.Gender
	Status domain.CowStatus
}

// NextSequence increments the named counter and returns its new value.
// The row is created on first use. Callers should run it inside the
// transaction that consumes the value so a rollback also discards it.
func NextSequence(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"counter": gorm.Expr("identifier_sequences.counter + 1"),
			}),
		}).
		Create(&domain.IdentifierSequence{Name: name, Counter: 1}).Error
	if err != nil {
		return 0, err
	}
	var seq domain.IdentifierSequence
	if err := tx.WithContext(ctx).Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Counter, nil
}

// CreateCow issues the next identifier and inserts c in one transaction,
// so the row is never visible without its identifier.
func CreateCow(ctx context.Context, db *gorm.DB, c *domain.Cow) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := NextSequence(ctx, tx, CowSequence)
		if err != nil {
			return err
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.Status == "" {
			c.Status = domain.CowActive
		}
		now := time.Now().UTC()
		c.CreatedAt, c.UpdatedAt = now, now
		c.Identifier = fmt.Sprintf("Cow-%d", n)
		if err := tx.Create(c).Error; err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
}

// GetCow fetches a cow by identifier within a farm, or ErrNotFound.
func GetCow(ctx context.Context, db *gorm.DB, farmID, identifier string) (*domain.Cow, error) {
	var c domain.Cow
	err := db.WithContext(ctx).
		Where("farm_id = ? AND identifier = ?", farmID, identifier).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCows returns the number of cows in a farm that match f.
func CountCows(ctx context.Context, db *gorm.DB, farmID string, f CowFilter) (int64, error) {
	var total int64
	err := cowScope(db.WithContext(ctx).Model(&domain.Cow{}), farmID, f).Count(&total).Error
	return total, err
}

// ListCowsPage returns a page of a farm's cows, newest first.
func ListCowsPage(ctx context.Context, db *gorm.DB, farmID string, f CowFilter, offset, limit int) ([]domain.Cow, error) {
	var out []domain.Cow
	err := cowScope(db.WithContext(ctx), farmID, f).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SetCowStatus changes a cow's lifecycle state. Returns ErrNotFound when no
// row matches.
func SetCowStatus(ctx context.Context, db *gorm.DB, id string, status domain.CowStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Cow{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func cowScope(q *gorm.DB, farmID string, f CowFilter) *gorm.DB {
	q = q.Where("farm_id = ?", farmID)
	if f.Gender != "" {
		q = q.Where("gender = ?", f.Gender)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}
