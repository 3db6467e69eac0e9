package repo

import (
	"context"
	"testing"
	"time"

	"github.com/mashamba/dairy-backend/internal/domain"
)

func TestFarmsStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, _, err := FarmsStats(context.Background(), db, ""); err == nil {
		t.Fatalf("expected error due to missing farms table")
	}
}

func TestFarmsStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.Farm{})
	count, maxAt, err := FarmsStats(context.Background(), db, "")
	if err != nil || count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil, nil), got (%d, %v, %v)", count, maxAt, err)
	}
}

func TestFarmsStats_Success_FilterAndMax(t *testing.T) {
	db := newTestDB(t, &domain.Farm{})

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max among active
	t3 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)   // inactive, newer

	for _, f := range []*domain.Farm{
		{ID: "f1", Name: "a", Slug: "a", Status: domain.FarmActive, CreatedAt: t1, UpdatedAt: t1},
		{ID: "f2", Name: "b", Slug: "b", Status: domain.FarmActive, CreatedAt: t2, UpdatedAt: t2},
		{ID: "f3", Name: "c", Slug: "c", Status: domain.FarmInactive, CreatedAt: t3, UpdatedAt: t3},
	} {
		if err := db.Create(f).Error; err != nil {
			t.Fatalf("seed %s: %v", f.ID, err)
		}
	}

	count, maxAt, err := FarmsStats(context.Background(), db, domain.FarmActive)
	if err != nil || count != 2 {
		t.Fatalf("FarmsStats active = %d, %v", count, err)
	}
	if maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected maxUpdatedAt %v, got %v", t2, maxAt)
	}

	count, maxAt, _ = FarmsStats(context.Background(), db, "")
	if count != 3 || maxAt == nil || !maxAt.Equal(t3) {
		t.Fatalf("FarmsStats all = %d, %v", count, maxAt)
	}
}

// Force the second query (SELECT updated_at ...) to fail by renaming the column.
func TestCowsStats_SelectLatest_ErrorPath(t *testing.T) {
	db := newMigratedDB(t)
	f := seedFarm(t, db, "Herd")
	seedCow(t, db, f.ID, "Daisy", domain.Female)

	if err := db.Exec(`ALTER TABLE cows RENAME COLUMN updated_at TO updated_at_old`).Error; err != nil {
		t.Fatalf("rename column: %v", err)
	}
	if _, _, err := CowsStats(context.Background(), db, f.ID); err == nil {
		t.Fatalf("expected error from latest-updated select after column rename")
	}
}

func TestCowsStats_ChangesWhenCowArchived(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	f := seedFarm(t, db, "Herd")
	c := seedCow(t, db, f.ID, "Daisy", domain.Female)

	count, before, err := CowsStats(ctx, db, f.ID)
	if err != nil || count != 1 || before == nil {
		t.Fatalf("CowsStats = %d, %v, %v", count, before, err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := SetCowStatus(ctx, db, c.ID, domain.CowArchived); err != nil {
		t.Fatalf("SetCowStatus: %v", err)
	}
	_, after, _ := CowsStats(ctx, db, f.ID)
	if after == nil || !after.After(*before) {
		t.Fatalf("max updated_at did not advance: before=%v after=%v", before, after)
	}
}
