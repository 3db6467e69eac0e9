// Package services – HerdService
//
// HerdService registers cows against a farm and keeps their weight history.
// Identifiers are issued by the store inside the insert transaction; this
// layer never computes or patches them.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
)

// CowInput is the payload for adding a cow to a farm.
type CowInput struct {
	NameOrTag   string `json:"name_or_tag" validate:"required,max=100"`
	Breed       string `json:"breed"       validate:"max=100"`
	Gender      string `json:"gender"      validate:"required,oneof=male female"`
	DateOfBirth *Day   `json:"date_of_birth"`
}

// MassInput is a weight measurement in kilograms.
type MassInput struct {
	Mass       decimal.Decimal `json:"mass"`
	MeasuredOn Day             `json:"measured_on"`
}

// HerdService manages the cows of a farm.
type HerdService struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewHerdService constructs a HerdService.
func NewHerdService(db *gorm.DB) *HerdService {
	return &HerdService{DB: db, Now: time.Now}
}

// AddCow validates in and inserts a new active cow into the farm.
func (s *HerdService) AddCow(ctx context.Context, farmSlug string, in CowInput) (*domain.Cow, error) {
	ctx, span := tracer("HerdService").Start(ctx, "AddCow", trace.WithAttributes(attribute.String("farm.slug", farmSlug)))
	defer span.End()

	in.NameOrTag = strings.TrimSpace(in.NameOrTag)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := notFuturePtr("date_of_birth", dayPtr(in.DateOfBirth), clock(s.Now)); err != nil {
		return nil, err
	}

	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	c := &domain.Cow{
		FarmID:    f.ID,
		NameOrTag: in.NameOrTag,
		Breed:     strings.TrimSpace(in.Breed),
		Gender:    domain.Gender(in.Gender),
		Status:    domain.CowActive,
	}
	c.DateOfBirth = utcPtr(dayPtr(in.DateOfBirth))
	if err := repo.CreateCow(ctx, s.DB, c); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("cow.identifier", c.Identifier))
	return c, nil
}

// GetCow returns a cow of the farm by identifier.
func (s *HerdService) GetCow(ctx context.Context, farmSlug, identifier string) (*domain.Cow, error) {
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	return c, err
}

// ListCows returns a page of the farm's cows, newest first.
func (s *HerdService) ListCows(ctx context.Context, farmSlug string, f repo.CowFilter, p Page) ([]domain.Cow, int64, error) {
	if f.Gender != "" && !f.Gender.Valid() {
		return nil, 0, invalid("gender", "must be one of: male female")
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, invalid("status", "must be one of: active archived")
	}
	farm, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, 0, err
	}
	offset, limit := p.normalize()
	total, err := repo.CountCows(ctx, s.DB, farm.ID, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Cow{}, 0, nil
	}
	items, err := repo.ListCowsPage(ctx, s.DB, farm.ID, f, offset, limit)
	return items, total, err
}

// ArchiveCow retires a cow. Its history is kept; new records are refused.
func (s *HerdService) ArchiveCow(ctx context.Context, farmSlug, identifier string) (*domain.Cow, error) {
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CowArchived {
		return c, nil
	}
	if err := repo.SetCowStatus(ctx, s.DB, c.ID, domain.CowArchived); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCowNotFound
		}
		return nil, err
	}
	c.Status = domain.CowArchived
	return c, nil
}

// RecordMass stores a weight measurement for an active cow.
func (s *HerdService) RecordMass(ctx context.Context, farmSlug, identifier string, in MassInput) (*domain.CowMass, error) {
	err := firstErr(
		nonNegative("mass", in.Mass),
		requireTime("measured_on", in.MeasuredOn.Time),
		notFuture("measured_on", in.MeasuredOn.Time, clock(s.Now)),
	)
	if err != nil {
		return nil, err
	}
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	if err != nil {
		return nil, err
	}
	if err := requireActive(c); err != nil {
		return nil, err
	}
	m := &domain.CowMass{CowID: c.ID, Mass: in.Mass, MeasuredOn: in.MeasuredOn.UTC()}
	if err := repo.Insert(ctx, s.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMasses returns a page of a cow's weight history, newest first.
func (s *HerdService) ListMasses(ctx context.Context, farmSlug, identifier string, r repo.DateRange, p Page) ([]domain.CowMass, int64, error) {
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	if err != nil {
		return nil, 0, err
	}
	return listByCow[domain.CowMass](ctx, s.DB, c.ID, "measured_on", r, p)
}

func listByCow[T any](ctx context.Context, db *gorm.DB, cowID, dateColumn string, r repo.DateRange, p Page) ([]T, int64, error) {
	offset, limit := p.normalize()
	return repo.List[T](ctx, db, repo.ListQuery{
		OwnerColumn: "cow_id",
		OwnerID:     cowID,
		DateColumn:  dateColumn,
		Range:       r,
		Offset:      offset,
		Limit:       limit,
	})
}

func listByFarm[T any](ctx context.Context, db *gorm.DB, farmID, dateColumn string, r repo.DateRange, p Page) ([]T, int64, error) {
	offset, limit := p.normalize()
	return repo.List[T](ctx, db, repo.ListQuery{
		OwnerColumn: "farm_id",
		OwnerID:     farmID,
		DateColumn:  dateColumn,
		Range:       r,
		Offset:      offset,
		Limit:       limit,
	})
}
