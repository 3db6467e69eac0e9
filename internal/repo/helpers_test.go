package repo

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mashamba/dairy-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: nowUTC,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection keeps the PRAGMA and the shared-memory DB stable.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func seedFarm(t *testing.T, db *gorm.DB, name string) *domain.Farm {
	t.Helper()
	f := &domain.Farm{Name: name, Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-"))}
	if err := CreateFarm(context.Background(), db, f); err != nil {
		t.Fatalf("seed farm %q: %v", name, err)
	}
	return f
}

func seedCow(t *testing.T, db *gorm.DB, farmID, tag string, g domain.Gender) *domain.Cow {
	t.Helper()
	c := &domain.Cow{FarmID: farmID, NameOrTag: tag, Gender: g}
	if err := CreateCow(context.Background(), db, c); err != nil {
		t.Fatalf("seed cow %q: %v", tag, err)
	}
	return c
}

func seedMilking(t *testing.T, db *gorm.DB, cowID, yield string, at time.Time) {
	t.Helper()
	m := &domain.MilkingSession{CowID: cowID, Yield: decimal.RequireFromString(yield), MilkedAt: at.UTC()}
	if err := Insert(context.Background(), db, m); err != nil {
		t.Fatalf("seed milking: %v", err)
	}
}

func seedSale(t *testing.T, db *gorm.DB, farmID, customer, qty string, price *decimal.Decimal, at time.Time) {
	t.Helper()
	s := &domain.MilkSale{FarmID: farmID, Customer: customer, Quantity: decimal.RequireFromString(qty), UnitPrice: price, SoldAt: at.UTC()}
	if err := Insert(context.Background(), db, s); err != nil {
		t.Fatalf("seed sale: %v", err)
	}
}

func day(s string, hour int) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour) * time.Hour)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
