package repo

import (
	"context"
	"testing"

	"github.com/mashamba/dairy-backend/internal/domain"
)

func TestUpsertSnapshot_ReplacesSameDay(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	f := seedFarm(t, db, "Herd")

	first := &domain.DailySnapshot{FarmID: f.ID, Day: "2024-03-01", Produced: dec("10"), Sold: dec("4"), Remaining: dec("6"), CowCount: 2}
	if err := UpsertSnapshot(ctx, db, first); err != nil {
		t.Fatalf("UpsertSnapshot: %v", err)
	}
	again := &domain.DailySnapshot{FarmID: f.ID, Day: "2024-03-01", Produced: dec("12"), Sold: dec("4"), Remaining: dec("8"), CowCount: 3}
	if err := UpsertSnapshot(ctx, db, again); err != nil {
		t.Fatalf("UpsertSnapshot rerun: %v", err)
	}
	if err := UpsertSnapshot(ctx, db, &domain.DailySnapshot{FarmID: f.ID, Day: "2024-03-02", Produced: dec("1"), Sold: dec("0"), Remaining: dec("1")}); err != nil {
		t.Fatalf("UpsertSnapshot next day: %v", err)
	}

	got, err := ListSnapshots(ctx, db, f.ID, "2024-03-01", "2024-03-01")
	if err != nil || len(got) != 1 {
		t.Fatalf("ListSnapshots = %+v, %v", got, err)
	}
	if !got[0].Produced.Equal(dec("12")) || got[0].CowCount != 3 {
		t.Fatalf("snapshot not replaced: %+v", got[0])
	}

	all, _ := ListSnapshots(ctx, db, f.ID, "", "")
	if len(all) != 2 || all[0].Day != "2024-03-02" {
		t.Fatalf("all snapshots = %+v", all)
	}
}
