package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
)

// Paging defaults shared by every list operation.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page int
	Size int
}

func (p Page) normalize() (offset, limit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return (p.Page - 1) * p.Size, p.Size
}

func loadFarm(ctx context.Context, db *gorm.DB, slug string) (*domain.Farm, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrFarmNotFound
	}
	f, err := repo.GetFarmBySlug(ctx, db, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, err
	}
	return f, nil
}

func loadCow(ctx context.Context, db *gorm.DB, farmSlug, identifier string) (*domain.Farm, *domain.Cow, error) {
	f, err := loadFarm(ctx, db, farmSlug)
	if err != nil {
		return nil, nil, err
	}
	c, err := repo.GetCow(ctx, db, f.ID, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrCowNotFound
		}
		return nil, nil, err
	}
	return f, c, nil
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
