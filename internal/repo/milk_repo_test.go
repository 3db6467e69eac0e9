package repo

import (
	"context"
	"testing"

	"github.com/mashamba/dairy-backend/internal/domain"
)

func TestListFarmMilkings_JoinsCowAndScopes(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	f := seedFarm(t, db, "Herd")
	other := seedFarm(t, db, "Other")
	a := seedCow(t, db, f.ID, "Daisy", domain.Female)
	b := seedCow(t, db, f.ID, "Bella", domain.Female)
	x := seedCow(t, db, other.ID, "Stranger", domain.Female)

	seedMilking(t, db, a.ID, "10", day("2024-01-01", 6))
	seedMilking(t, db, b.ID, "5", day("2024-01-01", 7))
	seedMilking(t, db, a.ID, "3", day("2024-01-02", 6))
	seedMilking(t, db, x.ID, "99", day("2024-01-01", 6))

	rows, err := ListFarmMilkings(ctx, db, f.ID, "", DateRange{})
	if err != nil || len(rows) != 3 {
		t.Fatalf("rows = %+v, %v", rows, err)
	}
	if rows[0].Identifier != a.Identifier || rows[0].Name != "Daisy" || !rows[0].Yield.Equal(dec("10")) {
		t.Fatalf("first row = %+v", rows[0])
	}
	if rows[0].MilkedAt.IsZero() {
		t.Fatalf("MilkedAt not scanned")
	}

	only, _ := ListFarmMilkings(ctx, db, f.ID, a.ID, DateRange{From: day("2024-01-02", 0)})
	if len(only) != 1 || !only[0].Yield.Equal(dec("3")) {
		t.Fatalf("filtered rows = %+v", only)
	}
}

func TestSumYieldByCow_GroupsAndOrders(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	f := seedFarm(t, db, "Herd")
	a := seedCow(t, db, f.ID, "Daisy", domain.Female)
	b := seedCow(t, db, f.ID, "Bella", domain.Female)

	seedMilking(t, db, a.ID, "2.5", day("2024-01-01", 6))
	seedMilking(t, db, a.ID, "2.5", day("2024-01-01", 18))
	seedMilking(t, db, b.ID, "7", day("2024-01-01", 6))

	got, err := SumYieldByCow(ctx, db, f.ID, DateRange{})
	if err != nil || len(got) != 2 {
		t.Fatalf("SumYieldByCow = %+v, %v", got, err)
	}
	if got[0].CowID != b.ID || !got[0].Total.Equal(dec("7")) || got[0].Sessions != 1 {
		t.Fatalf("leader = %+v", got[0])
	}
	if got[1].CowID != a.ID || !got[1].Total.Equal(dec("5")) || got[1].Sessions != 2 {
		t.Fatalf("runner-up = %+v", got[1])
	}
}

func TestListFarmSales_RangeAndOrder(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	f := seedFarm(t, db, "Herd")
	seedSale(t, db, f.ID, "b", "2", nil, day("2024-01-02", 9))
	seedSale(t, db, f.ID, "a", "1", nil, day("2024-01-01", 9))
	seedSale(t, db, f.ID, "c", "4", nil, day("2024-01-05", 9))

	got, err := ListFarmSales(ctx, db, f.ID, DateRange{To: day("2024-01-03", 0)})
	if err != nil || len(got) != 2 || got[0].Customer != "a" {
		t.Fatalf("sales = %+v, %v", got, err)
	}
}

func TestSumYieldByCow_FractionalYields(t *testing.T) {
	db := newMigratedDB(t)
	f := seedFarm(t, db, "Herd")
	a := seedCow(t, db, f.ID, "Daisy", domain.Female)
	seedMilking(t, db, a.ID, "0.1", day("2024-01-01", 6))
	seedMilking(t, db, a.ID, "0.2", day("2024-01-01", 18))

	got, err := SumYieldByCow(context.Background(), db, f.ID, DateRange{})
	if err != nil || len(got) != 1 {
		t.Fatalf("SumYieldByCow = %+v, %v", got, err)
	}
	if !got[0].Total.Equal(dec("0.3")) || got[0].Total.String() != "0.3" {
		t.Fatalf("total = %s", got[0].Total)
	}
}
