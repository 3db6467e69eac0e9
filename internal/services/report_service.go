// Package services – ReportService
//
// ReportService loads a farm's milkings and sales for a window of calendar
// dates in the report timezone and hands them to the milk aggregator. It
// also writes the nightly per-farm snapshots.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/milk"
	"github.com/mashamba/dairy-backend/internal/repo"
)

// ReportQuery selects the window and shape of a milk report. From and To
// are inclusive YYYY-MM-DD dates; either may be empty.
type ReportQuery struct {
	From        string
	To          string
	Cow         string // cow identifier, optional
	SortByTotal bool
}

// Window is a resolved inclusive date window.
type Window struct {
	From time.Time // midnight of the first day, in the report location
	To   time.Time // midnight of the last day, in the report location
}

// Range converts the window into the half-open store range.
func (w Window) Range() repo.DateRange {
	return repo.DateRange{From: w.From, To: w.To.AddDate(0, 0, 1)}
}

// ReportService builds milk reports and snapshots.
type ReportService struct {
	DB         *gorm.DB
	Location   *time.Location
	WindowDays int
	Now        func() time.Time
}

// NewReportService constructs a ReportService. A nil location means UTC.
func NewReportService(db *gorm.DB, loc *time.Location, windowDays int) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	if windowDays < 1 {
		windowDays = 30
	}
	return &ReportService{DB: db, Location: loc, WindowDays: windowDays, Now: time.Now}
}

func (s *ReportService) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// ResolveWindow fills missing bounds: To defaults to today and From to
// WindowDays-1 days before To.
func (s *ReportService) ResolveWindow(q ReportQuery) (Window, error) {
	loc := s.loc()
	var w Window
	if strings.TrimSpace(q.To) == "" {
		now := clock(s.Now).In(loc)
		w.To = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation(milk.DateLayout, strings.TrimSpace(q.To), loc)
		if err != nil {
			return w, invalid("to", "must be a date in YYYY-MM-DD format")
		}
		w.To = t
	}
	if strings.TrimSpace(q.From) == "" {
		w.From = w.To.AddDate(0, 0, -(s.WindowDays - 1))
	} else {
		t, err := time.ParseInLocation(milk.DateLayout, strings.TrimSpace(q.From), loc)
		if err != nil {
			return w, invalid("from", "must be a date in YYYY-MM-DD format")
		}
		w.From = t
	}
	if w.From.After(w.To) {
		return w, invalid("from", "must not be after to")
	}
	return w, nil
}

// MilkReport aggregates a farm's production and sales over the window.
// When q.Cow is set, production is restricted to that cow while sales stay
// farm-wide.
func (s *ReportService) MilkReport(ctx context.Context, farmSlug string, q ReportQuery) (*milk.Report, error) {
	ctx, span := tracer("ReportService").Start(ctx, "MilkReport", trace.WithAttributes(attribute.String("farm.slug", farmSlug)))
	defer span.End()

	w, err := s.ResolveWindow(q)
	if err != nil {
		return nil, err
	}
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	cowID := ""
	if strings.TrimSpace(q.Cow) != "" {
		c, err := repo.GetCow(ctx, s.DB, f.ID, strings.TrimSpace(q.Cow))
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrCowNotFound
			}
			return nil, err
		}
		cowID = c.ID
	}
	rep, err := s.aggregate(ctx, f.ID, cowID, w, q.SortByTotal)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.days", len(rep.Days)))
	return rep, nil
}

func (s *ReportService) aggregate(ctx context.Context, farmID, cowID string, w Window, sortByTotal bool) (*milk.Report, error) {
	loc := s.loc()
	r := w.Range()
	rows, err := repo.ListFarmMilkings(ctx, s.DB, farmID, cowID, r)
	if err != nil {
		return nil, err
	}
	sales, err := repo.ListFarmSales(ctx, s.DB, farmID, r)
	if err != nil {
		return nil, err
	}

	sessions := make([]milk.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, milk.Session{
			CowID:      row.CowID,
			Identifier: row.Identifier,
			Name:       row.Name,
			Yield:      row.Yield,
			At:         row.MilkedAt.In(loc),
		})
	}
	sold := make([]milk.Sale, 0, len(sales))
	for _, sale := range sales {
		sold = append(sold, milk.Sale{Customer: sale.Customer, Quantity: sale.Quantity, At: sale.SoldAt.In(loc)})
	}

	rep, err := milk.Aggregate(sessions, sold, milk.Options{CowID: cowID, SortByTotal: sortByTotal})
	if err != nil {
		return nil, err
	}
	rep.From = w.From.Format(milk.DateLayout)
	rep.To = w.To.Format(milk.DateLayout)
	return rep, nil
}

// Leaderboard ranks the farm's cows by total yield over the window.
func (s *ReportService) Leaderboard(ctx context.Context, farmSlug string, q ReportQuery) ([]repo.CowYield, error) {
	ctx, span := tracer("ReportService").Start(ctx, "Leaderboard", trace.WithAttributes(attribute.String("farm.slug", farmSlug)))
	defer span.End()

	w, err := s.ResolveWindow(q)
	if err != nil {
		return nil, err
	}
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	out, err := repo.SumYieldByCow(ctx, s.DB, f.ID, w.Range())
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []repo.CowYield{}
	}
	return out, nil
}

// Snapshot reconciles day for every farm and upserts one DailySnapshot per
// farm that produced or sold milk that day. Running it twice for the same
// day overwrites the earlier rows.
func (s *ReportService) Snapshot(ctx context.Context, day time.Time) ([]domain.DailySnapshot, error) {
	ctx, span := tracer("ReportService").Start(ctx, "Snapshot")
	defer span.End()

	loc := s.loc()
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	key := start.Format(milk.DateLayout)
	span.SetAttributes(attribute.String("snapshot.day", key))

	farms, err := repo.ListAllFarms(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	out := make([]domain.DailySnapshot, 0, len(farms))
	for _, f := range farms {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rep, err := s.aggregate(ctx, f.ID, "", Window{From: start, To: start}, false)
		if err != nil {
			return out, err
		}
		// A day with sales but no production lands in Unmatched.
		produced, sold := rep.Produced, rep.Sold.Add(rep.Unmatched)
		if produced.IsZero() && sold.IsZero() {
			continue
		}
		cows, err := repo.CountActiveCows(ctx, s.DB, f.ID)
		if err != nil {
			return out, err
		}
		snap := domain.DailySnapshot{
			FarmID:    f.ID,
			Day:       key,
			Produced:  produced,
			Sold:      sold,
			Remaining: produced.Sub(sold),
			CowCount:  int(cows),
		}
		if err := repo.UpsertSnapshot(ctx, s.DB, &snap); err != nil {
			return out, err
		}
		out = append(out, snap)
	}
	log.Ctx(ctx).Info().Str("day", key).Int("farms", len(out)).Msg("daily snapshots written")
	return out, nil
}

// Snapshots lists a farm's stored snapshots between two inclusive dates.
func (s *ReportService) Snapshots(ctx context.Context, farmSlug string, q ReportQuery) ([]domain.DailySnapshot, error) {
	w, err := s.ResolveWindow(q)
	if err != nil {
		return nil, err
	}
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	return repo.ListSnapshots(ctx, s.DB, f.ID, w.From.Format(milk.DateLayout), w.To.Format(milk.DateLayout))
}
