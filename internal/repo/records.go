// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the generic insert and list helpers
// shared by herd records (milkings, masses, breedings, calvings, health)
// and farm finance records (inventory, expenses, revenue, sales).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is implemented by every herd and finance row. It lets Insert
// assign identity and creation time without knowing the concrete type.
type Record interface {
	SetID(id string)
	SetCreatedAt(t time.Time)
}

// Insert stamps rec with a fresh UUID and UTC creation time, then writes it.
func Insert(ctx context.Context, db *gorm.DB, rec Record) error {
	rec.SetID(uuid.NewString())
	rec.SetCreatedAt(time.Now().UTC())
	return db.WithContext(ctx).Create(rec).Error
}

// ListQuery describes a paginated listing scoped to one owner row.
type ListQuery struct {
	OwnerColumn string // "cow_id" or "farm_id"
	OwnerID     string
	DateColumn  string // column used for ordering and range filtering
	Range       DateRange
	Offset      int
	Limit       int // <= 0 returns every matching row
}

// List returns one page of T matching q, newest first by DateColumn, and the
// total number of matching rows.
func List[T any](ctx context.Context, db *gorm.DB, q ListQuery) ([]T, int64, error) {
	var model T
	scoped := func() *gorm.DB {
		s := db.WithContext(ctx).Model(&model).Where(q.OwnerColumn+" = ?", q.OwnerID)
		return q.Range.apply(s, q.DateColumn)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := make([]T, 0)
	if total == 0 {
		return out, 0, nil
	}

	find := scoped().Order(q.DateColumn + " desc").Order("created_at desc")
	if q.Limit > 0 {
		find = find.Offset(q.Offset).Limit(q.Limit)
	}
	if err := find.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID loads a single T by primary key, or ErrNotFound.
func GetByID[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
