// Package services – RecordService
//
// RecordService attaches milking, breeding, calving and health records to
// a cow. Milking, breeding and calving records require a female cow; every
// new record requires the cow to be active.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
)

// MilkingInput is one milking of one cow.
type MilkingInput struct {
	Yield    decimal.Decimal `json:"yield"`
	MilkedAt time.Time       `json:"milked_at"`
}

// BreedingInput documents a mating or insemination.
type BreedingInput struct {
	Method              string `json:"method"                validate:"required,oneof=AI Natural"`
	BullName            string `json:"bull_name"             validate:"max=100"`
	BullCode            string `json:"bull_code"             validate:"max=100"`
	ExpectedCalvingDate *Day   `json:"expected_calving_date"`
	RepeatBreedingDate  *Day   `json:"repeat_breeding_date"`
	LastCalvingDate     *Day   `json:"last_calving_date"`
	NumberOfCalvings    *int   `json:"number_of_calvings"    validate:"omitempty,min=0"`
	InseminatorName     string `json:"inseminator_name"      validate:"max=100"`
}

// CalvingInput documents a birth.
type CalvingInput struct {
	CalvingDate     Day    `json:"calving_date"`
	CalfDetails     string `json:"calf_details"     validate:"required"`
	BirthingDetails string `json:"birthing_details"`
}

// HealthInput documents a treatment.
type HealthInput struct {
	HealthIssue   string `json:"health_issue"   validate:"required,max=255"`
	Treatment     string `json:"treatment"      validate:"required,max=255"`
	TreatmentDate Day    `json:"treatment_date"`
	Notes         string `json:"notes"`
	VetName       string `json:"vet_name"       validate:"max=100"`
	VetCompany    string `json:"vet_company"    validate:"max=100"`
}

// RecordService manages per-cow herd records.
type RecordService struct {
	DB  *gorm.DB
	Now func() time.Time

	// OnMilking, when set, observes every stored milking. The HTTP layer
	// uses it to count recorded litres.
	OnMilking func(m *domain.MilkingSession)
}

// NewRecordService constructs a RecordService.
func NewRecordService(db *gorm.DB) *RecordService {
	return &RecordService{DB: db, Now: time.Now}
}

// writableCow resolves a cow that may receive a new record of kind.
func (s *RecordService) writableCow(ctx context.Context, farmSlug, identifier, kind string, femaleOnly bool) (*domain.Cow, error) {
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	if err != nil {
		return nil, err
	}
	if femaleOnly {
		if err := requireFemale(c, kind); err != nil {
			return nil, err
		}
	}
	if err := requireActive(c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddMilking records a milking session for a female, active cow.
func (s *RecordService) AddMilking(ctx context.Context, farmSlug, identifier string, in MilkingInput) (*domain.MilkingSession, error) {
	ctx, span := tracer("RecordService").Start(ctx, "AddMilking",
		trace.WithAttributes(attribute.String("farm.slug", farmSlug), attribute.String("cow.identifier", identifier)))
	defer span.End()

	err := firstErr(
		nonNegative("yield", in.Yield),
		requireTime("milked_at", in.MilkedAt),
		notFuture("milked_at", in.MilkedAt, clock(s.Now)),
	)
	if err != nil {
		return nil, err
	}
	c, err := s.writableCow(ctx, farmSlug, identifier, "milking", true)
	if err != nil {
		return nil, err
	}
	m := &domain.MilkingSession{CowID: c.ID, Yield: in.Yield, MilkedAt: in.MilkedAt.UTC()}
	if err := repo.Insert(ctx, s.DB, m); err != nil {
		return nil, err
	}
	if s.OnMilking != nil {
		s.OnMilking(m)
	}
	log.Ctx(ctx).Debug().Str("cow", c.Identifier).Str("yield", m.Yield.String()).Msg("milking recorded")
	return m, nil
}

// ListMilkings returns a page of a cow's milking sessions, newest first.
func (s *RecordService) ListMilkings(ctx context.Context, farmSlug, identifier string, r repo.DateRange, p Page) ([]domain.MilkingSession, int64, error) {
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	if err != nil {
		return nil, 0, err
	}
	return listByCow[domain.MilkingSession](ctx, s.DB, c.ID, "milked_at", r, p)
}

// AddBreeding records a breeding event for a female, active cow.
func (s *RecordService) AddBreeding(ctx context.Context, farmSlug, identifier string, in BreedingInput) (*domain.BreedingRecord, error) {
	in.Method = strings.TrimSpace(in.Method)
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	now := clock(s.Now)
	if err := firstErr(
		notFuturePtr("last_calving_date", dayPtr(in.LastCalvingDate), now),
		notFuturePtr("repeat_breeding_date", dayPtr(in.RepeatBreedingDate), now),
	); err != nil {
		return nil, err
	}
	c, err := s.writableCow(ctx, farmSlug, identifier, "breeding", true)
	if err != nil {
		return nil, err
	}
	b := &domain.BreedingRecord{
		CowID:               c.ID,
		Method:              domain.BreedingMethod(in.Method),
		BullName:            strings.TrimSpace(in.BullName),
		BullCode:            strings.TrimSpace(in.BullCode),
		ExpectedCalvingDate: utcPtr(dayPtr(in.ExpectedCalvingDate)),
		RepeatBreedingDate:  utcPtr(dayPtr(in.RepeatBreedingDate)),
		LastCalvingDate:     utcPtr(dayPtr(in.LastCalvingDate)),
		NumberOfCalvings:    in.NumberOfCalvings,
		InseminatorName:     strings.TrimSpace(in.InseminatorName),
	}
	if err := repo.Insert(ctx, s.DB, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBreedings returns a page of a cow's breeding records, newest first.
func (s *RecordService) ListBreedings(ctx context.Context, farmSlug, identifier string, r repo.DateRange, p Page) ([]domain.BreedingRecord, int64, error) {
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	if err != nil {
		return nil, 0, err
	}
	return listByCow[domain.BreedingRecord](ctx, s.DB, c.ID, "created_at", r, p)
}

// AddCalving records a birth for a female, active cow.
func (s *RecordService) AddCalving(ctx context.Context, farmSlug, identifier string, in CalvingInput) (*domain.CalvingRecord, error) {
	in.CalfDetails = strings.TrimSpace(in.CalfDetails)
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := firstErr(
		requireTime("calving_date", in.CalvingDate.Time),
		notFuture("calving_date", in.CalvingDate.Time, clock(s.Now)),
	); err != nil {
		return nil, err
	}
	c, err := s.writableCow(ctx, farmSlug, identifier, "calving", true)
	if err != nil {
		return nil, err
	}
	rec := &domain.CalvingRecord{
		CowID:           c.ID,
		CalvingDate:     in.CalvingDate.UTC(),
		CalfDetails:     in.CalfDetails,
		BirthingDetails: strings.TrimSpace(in.BirthingDetails),
	}
	if err := repo.Insert(ctx, s.DB, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListCalvings returns a page of a cow's calving records, newest first.
func (s *RecordService) ListCalvings(ctx context.Context, farmSlug, identifier string, r repo.DateRange, p Page) ([]domain.CalvingRecord, int64, error) {
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	if err != nil {
		return nil, 0, err
	}
	return listByCow[domain.CalvingRecord](ctx, s.DB, c.ID, "calving_date", r, p)
}

// AddHealth records a treatment for an active cow of either gender.
func (s *RecordService) AddHealth(ctx context.Context, farmSlug, identifier string, in HealthInput) (*domain.HealthRecord, error) {
	in.HealthIssue = strings.TrimSpace(in.HealthIssue)
	in.Treatment = strings.TrimSpace(in.Treatment)
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := firstErr(
		requireTime("treatment_date", in.TreatmentDate.Time),
		notFuture("treatment_date", in.TreatmentDate.Time, clock(s.Now)),
	); err != nil {
		return nil, err
	}
	c, err := s.writableCow(ctx, farmSlug, identifier, "health", false)
	if err != nil {
		return nil, err
	}
	h := &domain.HealthRecord{
		CowID:         c.ID,
		HealthIssue:   in.HealthIssue,
		Treatment:     in.Treatment,
		TreatmentDate: in.TreatmentDate.UTC(),
		Notes:         strings.TrimSpace(in.Notes),
		VetName:       strings.TrimSpace(in.VetName),
		VetCompany:    strings.TrimSpace(in.VetCompany),
	}
	if err := repo.Insert(ctx, s.DB, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ListHealth returns a page of a cow's health records, newest first.
func (s *RecordService) ListHealth(ctx context.Context, farmSlug, identifier string, r repo.DateRange, p Page) ([]domain.HealthRecord, int64, error) {
	_, c, err := loadCow(ctx, s.DB, farmSlug, identifier)
	if err != nil {
		return nil, 0, err
	}
	return listByCow[domain.HealthRecord](ctx, s.DB, c.ID, "treatment_date", r, p)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
