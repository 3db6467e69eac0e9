// Package scheduler runs the nightly milk snapshot job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/archive"
	"github.com/mashamba/dairy-backend/internal/config"
	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
)

// Snapshotter reconciles one calendar day for every farm.
type Snapshotter interface {
	Snapshot(ctx context.Context, day time.Time) ([]domain.DailySnapshot, error)
}

// Result summarizes one run.
type Result struct {
	Day      string
	Farms    int
	Purged   int64
	Archived bool
	Duration time.Duration
}

// Scheduler snapshots the previous day on a cron schedule, copies the rows to
// the archive and purges expired idempotency keys.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	loc     *time.Location

	reports Snapshotter
	archive archive.SnapshotArchive
	db      *gorm.DB
	log     zerolog.Logger

	Now func() time.Time
}

// New builds a scheduler. A nil archive means snapshots stay in the
// relational store only.
func New(cfg config.Config, reports Snapshotter, arch archive.SnapshotArchive, db *gorm.DB, logger zerolog.Logger) *Scheduler {
	loc := cfg.Report.Location
	if loc == nil {
		loc = time.UTC
	}
	if arch == nil {
		arch = archive.Nop{}
	}
	timeout := cfg.Snapshot.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		spec:    cfg.Snapshot.Schedule,
		timeout: timeout,
		loc:     loc,
		reports: reports,
		archive: arch,
		db:      db,
		log:     logger.With().Str("component", "scheduler").Logger(),
		Now:     time.Now,
	}
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runScheduled); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.log.Info().Str("schedule", s.spec).Str("tz", s.loc.String()).Msg("starting scheduler")
	s.cron.Start()
	return nil
}

// Stop halts the cron loop. The returned context is done once a running job
// has finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info().Msg("stopping scheduler")
	return s.cron.Stop()
}

// Yesterday returns the calendar day before now in the report timezone.
func (s *Scheduler) Yesterday() time.Time {
	n := s.Now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, -1)
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ctx = s.log.WithContext(ctx)
	if _, err := s.Run(ctx, s.Yesterday()); err != nil {
		s.log.Error().Err(err).Msg("snapshot run failed")
	}
}

// Run snapshots day, archives the result and purges expired idempotency
// keys. An archive failure is logged and does not fail the run; the rows are
// already stored and the next run for the same day overwrites them.
func (s *Scheduler) Run(ctx context.Context, day time.Time) (Result, error) {
	start := s.Now()
	res := Result{Day: day.In(s.loc).Format(time.DateOnly)}

	snaps, err := s.reports.Snapshot(ctx, day)
	if err != nil {
		return res, fmt.Errorf("snapshot %s: %w", res.Day, err)
	}
	res.Farms = len(snaps)

	if len(snaps) > 0 {
		if err := s.archive.Save(ctx, snaps); err != nil {
			s.log.Warn().Err(err).Str("day", res.Day).Msg("archive failed")
		} else {
			res.Archived = true
		}
	}

	if s.db != nil {
		n, err := repo.PurgeExpiredIdempotency(ctx, s.db, s.Now())
		if err != nil {
			return res, fmt.Errorf("purge idempotency: %w", err)
		}
		res.Purged = n
	}

	res.Duration = s.Now().Sub(start)
	s.log.Info().
		Str("day", res.Day).
		Int("farms", res.Farms).
		Bool("archived", res.Archived).
		Int64("purged", res.Purged).
		Dur("took", res.Duration).
		Msg("snapshot run complete")
	return res, nil
}
