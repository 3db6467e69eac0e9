package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mashamba/dairy-backend/internal/config"
	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
)

type fakeReports struct {
	days  []time.Time
	snaps []domain.DailySnapshot
	err   error
}

func (f *fakeReports) Snapshot(_ context.Context, day time.Time) ([]domain.DailySnapshot, error) {
	f.days = append(f.days, day)
	return f.snaps, f.err
}

type fakeArchive struct {
	saved []domain.DailySnapshot
	err   error
}

func (f *fakeArchive) Save(_ context.Context, s []domain.DailySnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s...)
	return nil
}

func (f *fakeArchive) Close(context.Context) error { return nil }

func testConfig(loc *time.Location) config.Config {
	return config.Config{
		Report:   config.ReportConfig{Location: loc},
		Snapshot: config.SnapshotConfig{Schedule: "5 0 * * *", Timeout: time.Minute},
	}
}

func oneSnap() []domain.DailySnapshot {
	return []domain.DailySnapshot{{FarmID: "f1", Day: "2024-06-09", Produced: decimal.NewFromInt(20), Sold: decimal.NewFromInt(15), Remaining: decimal.NewFromInt(5), CowCount: 2}}
}

func TestYesterday_UsesReportTimezone(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*3600)
	s := New(testConfig(nairobi), &fakeReports{}, nil, nil, zerolog.Nop())
	// 22:30 UTC on the 9th is already the 10th in EAT.
	s.Now = func() time.Time { return time.Date(2024, 6, 9, 22, 30, 0, 0, time.UTC) }

	got := s.Yesterday()
	if got.Format(time.DateOnly) != "2024-06-09" || got.Location() != nairobi || got.Hour() != 0 {
		t.Fatalf("Yesterday=%v", got)
	}
}

func TestRun_ArchivesAndPurges(t *testing.T) {
	db, err := repo.OpenDatabase(repo.Options{Path: filepath.Join(t.TempDir(), "sched.db"), Silent: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	if _, err := repo.CreateIdempotency(ctx, db, "u1", "farm", "k1", "milking", "rec-1", 201, time.Millisecond); err != nil {
		t.Fatalf("seed idempotency: %v", err)
	}
	if _, err := repo.CreateIdempotency(ctx, db, "u1", "farm", "k2", "milking", "rec-2", 201, 48*time.Hour); err != nil {
		t.Fatalf("seed idempotency: %v", err)
	}

	reports := &fakeReports{snaps: oneSnap()}
	arch := &fakeArchive{}
	s := New(testConfig(time.UTC), reports, arch, db, zerolog.Nop())
	s.Now = func() time.Time { return time.Now().Add(time.Hour) }

	day := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	res, err := s.Run(ctx, day)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Day != "2024-06-09" || res.Farms != 1 || !res.Archived || res.Purged != 1 {
		t.Fatalf("result=%+v", res)
	}
	if len(arch.saved) != 1 || arch.saved[0].FarmID != "f1" {
		t.Fatalf("archived=%+v", arch.saved)
	}
	if len(reports.days) != 1 || !reports.days[0].Equal(day) {
		t.Fatalf("snapshot days=%v", reports.days)
	}
}

func TestRun_ArchiveFailureIsNotFatal(t *testing.T) {
	s := New(testConfig(time.UTC), &fakeReports{snaps: oneSnap()}, &fakeArchive{err: errors.New("down")}, nil, zerolog.Nop())
	res, err := s.Run(context.Background(), time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Archived || res.Farms != 1 {
		t.Fatalf("result=%+v", res)
	}
}

func TestRun_SnapshotErrorFails(t *testing.T) {
	boom := errors.New("boom")
	arch := &fakeArchive{}
	s := New(testConfig(time.UTC), &fakeReports{err: boom}, arch, nil, zerolog.Nop())
	if _, err := s.Run(context.Background(), time.Now()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(arch.saved) != 0 {
		t.Fatalf("nothing should be archived")
	}
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	cfg := testConfig(time.UTC)
	cfg.Snapshot.Schedule = "not a cron"
	s := New(cfg, &fakeReports{}, nil, nil, zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Fatal("expected schedule error")
	}

	ok := New(testConfig(time.UTC), &fakeReports{}, nil, nil, zerolog.Nop())
	if err := ok.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-ok.Stop().Done()
}
