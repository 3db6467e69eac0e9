// Package services – FarmService
//
// This file implements FarmService, which owns farm registration and the
// farm directory. Registration validates contact fields, rejects exact
// duplicate names, and assigns a unique slug exactly once inside the insert
// transaction. Later updates never touch the slug.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/search"
	"github.com/mashamba/dairy-backend/internal/slug"
)

// slugAttempts bounds how often registration retries after losing a race
// for a slug to a concurrent insert.
const slugAttempts = 3

// FarmInput is the payload for registering a farm.
type FarmInput struct {
	Name        string `json:"name"        validate:"required,max=100"`
	ManagerID   string `json:"manager_id"  validate:"max=64"`
	Location    string `json:"location"    validate:"max=100"`
	Description string `json:"description"`
	Slogan      string `json:"slogan"      validate:"max=255"`
	Email       string `json:"email"       validate:"omitempty,email,max=255"`
	Phone       string `json:"phone"       validate:"omitempty,farmphone"`
}

// FarmUpdate carries optional changes. Nil fields are left untouched.
type FarmUpdate struct {
	Name        *string `json:"name"        validate:"omitempty,max=100"`
	Location    *string `json:"location"    validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Slogan      *string `json:"slogan"      validate:"omitempty,max=255"`
	Email       *string `json:"email"       validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone"       validate:"omitempty,farmphone"`
}

// FarmService manages farms and the searchable farm directory.
type FarmService struct {
	DB        *gorm.DB
	Directory *search.Directory
	Now       func() time.Time
}

// NewFarmService constructs a FarmService with an empty directory. Call
// RefreshDirectory once at startup to load existing farms.
func NewFarmService(db *gorm.DB, threshold float64) *FarmService {
	return &FarmService{
		DB:        db,
		Directory: search.NewDirectory(search.WithStopwords(search.DefaultStopwords), search.WithMinScore(threshold)),
		Now:       time.Now,
	}
}

func tracer(name string) trace.Tracer { return otel.Tracer("services/" + name) }

// Register validates in and creates a new inactive, unverified farm.
func (s *FarmService) Register(ctx context.Context, in FarmInput) (*domain.Farm, error) {
	ctx, span := tracer("FarmService").Start(ctx, "Register")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	var farm *domain.Farm
	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		farm, err = s.register(ctx, in)
		if !errors.Is(err, repo.ErrDuplicate) {
			break
		}
		// Either the name or the slug lost a race; the name check inside
		// the next attempt tells them apart.
	}
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrDuplicateFarmName
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("farm.slug", farm.Slug))
	return farm, nil
}

func (s *FarmService) register(ctx context.Context, in FarmInput) (*domain.Farm, error) {
	f := &domain.Farm{
		Name:        in.Name,
		ManagerID:   strings.TrimSpace(in.ManagerID),
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		Slogan:      strings.TrimSpace(in.Slogan),
		Email:       in.Email,
		Phone:       in.Phone,
		Status:      domain.FarmInactive,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := repo.FarmNameExists(ctx, tx, f.Name)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateFarmName
		}
		f.Slug, err = slug.Unique(ctx, slug.Make(f.Name), func(ctx context.Context, c string) (bool, error) {
			return repo.SlugExists(ctx, tx, c)
		})
		if err != nil {
			return err
		}
		return repo.CreateFarm(ctx, tx, f)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the farm with slug. When activeOnly is set, inactive farms
// are reported as not found.
func (s *FarmService) Get(ctx context.Context, farmSlug string, activeOnly bool) (*domain.Farm, error) {
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	if activeOnly && f.Status != domain.FarmActive {
		return nil, ErrFarmNotFound
	}
	return f, nil
}

// List returns a page of farms, newest first, and the total count. An empty
// status lists every farm.
func (s *FarmService) List(ctx context.Context, status domain.FarmStatus, p Page) ([]domain.Farm, int64, error) {
	ctx, span := tracer("FarmService").Start(ctx, "List",
		trace.WithAttributes(attribute.Int("page", p.Page), attribute.Int("page_size", p.Size)))
	defer span.End()

	if status != "" && !status.Valid() {
		return nil, 0, invalid("status", "must be one of: active inactive")
	}
	offset, limit := p.normalize()
	total, err := repo.CountFarms(ctx, s.DB, status)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Farm{}, 0, nil
	}
	items, err := repo.ListFarmsPage(ctx, s.DB, status, offset, limit)
	return items, total, err
}

// Update applies in to the farm. Renaming keeps the slug.
func (s *FarmService) Update(ctx context.Context, farmSlug string, in FarmUpdate) (*domain.Farm, error) {
	ctx, span := tracer("FarmService").Start(ctx, "Update", trace.WithAttributes(attribute.String("farm.slug", farmSlug)))
	defer span.End()

	trimPtr(in.Name, in.Location, in.Description, in.Slogan, in.Email, in.Phone)
	if in.Name != nil && *in.Name == "" {
		return nil, invalid("name", "is required")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	set("location", in.Location)
	set("description", in.Description)
	set("slogan", in.Slogan)
	set("email", in.Email)
	set("phone", in.Phone)
	if in.Name != nil && *in.Name != f.Name {
		taken, err := repo.FarmNameExists(ctx, s.DB, *in.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateFarmName
		}
		fields["name"] = *in.Name
	}
	if len(fields) > 0 {
		if err := repo.UpdateFarm(ctx, s.DB, f.ID, fields); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return nil, ErrDuplicateFarmName
			}
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrFarmNotFound
			}
			return nil, err
		}
		s.refresh(ctx)
	}
	return loadFarm(ctx, s.DB, f.Slug)
}

// SetStatus activates or deactivates a farm. Only active farms appear in
// the directory.
func (s *FarmService) SetStatus(ctx context.Context, farmSlug string, status domain.FarmStatus) (*domain.Farm, error) {
	if !status.Valid() {
		return nil, invalid("status", "must be one of: active inactive")
	}
	return s.patch(ctx, farmSlug, map[string]any{"status": status})
}

// Verify marks a farm as verified. Verifying twice is a no-op.
func (s *FarmService) Verify(ctx context.Context, farmSlug string) (*domain.Farm, error) {
	return s.patch(ctx, farmSlug, map[string]any{"verified": true})
}

func (s *FarmService) patch(ctx context.Context, farmSlug string, fields map[string]any) (*domain.Farm, error) {
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateFarm(ctx, s.DB, f.ID, fields); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, err
	}
	s.refresh(ctx)
	return loadFarm(ctx, s.DB, f.Slug)
}

// Search ranks active farms against q by name, location, slogan and
// description.
func (s *FarmService) Search(ctx context.Context, q string, k int) []search.Result {
	_, span := tracer("FarmService").Start(ctx, "Search", trace.WithAttributes(attribute.Int("k", k)))
	defer span.End()
	if s.Directory == nil {
		return nil
	}
	return s.Directory.TopK(q, k)
}

// RefreshDirectory reloads the directory from the active farms.
func (s *FarmService) RefreshDirectory(ctx context.Context) error {
	if s.Directory == nil {
		return nil
	}
	farms, err := repo.ListAllFarms(ctx, s.DB, domain.FarmActive)
	if err != nil {
		return err
	}
	s.Directory.Replace(search.FarmDocuments(farms))
	return nil
}

func (s *FarmService) refresh(ctx context.Context) {
	if err := s.RefreshDirectory(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("farm directory refresh failed")
	}
}

func trimPtr(ps ...*string) {
	for _, p := range ps {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}
