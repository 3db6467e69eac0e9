package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
)

// fixedNow is the clock every service test runs against.
var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenDatabase(repo.Options{Path: filepath.Join(t.TempDir(), "svc.db"), Silent: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func stopClock() time.Time { return fixedNow }

// fixture wires every service against one database.
type fixture struct {
	db      *gorm.DB
	farms   *FarmService
	herd    *HerdService
	records *RecordService
	finance *FinanceService
	reports *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newServiceDB(t)
	fx := &fixture{
		db:      db,
		farms:   NewFarmService(db, 0.1),
		herd:    NewHerdService(db),
		records: NewRecordService(db),
		finance: NewFinanceService(db),
		reports: NewReportService(db, time.UTC, 30),
	}
	fx.farms.Now = stopClock
	fx.herd.Now = stopClock
	fx.records.Now = stopClock
	fx.finance.Now = stopClock
	fx.reports.Now = stopClock
	return fx
}

func (fx *fixture) farm(t *testing.T, name string) *domain.Farm {
	t.Helper()
	f, err := fx.farms.Register(context.Background(), FarmInput{Name: name})
	if err != nil {
		t.Fatalf("Register(%q): %v", name, err)
	}
	return f
}

func (fx *fixture) cow(t *testing.T, farmSlug, tag string, g domain.Gender) *domain.Cow {
	t.Helper()
	c, err := fx.herd.AddCow(context.Background(), farmSlug, CowInput{NameOrTag: tag, Gender: string(g)})
	if err != nil {
		t.Fatalf("AddCow(%q): %v", tag, err)
	}
	return c
}

func (fx *fixture) milk(t *testing.T, farmSlug, identifier, yield string, at time.Time) {
	t.Helper()
	_, err := fx.records.AddMilking(context.Background(), farmSlug, identifier, MilkingInput{Yield: dec(yield), MilkedAt: at})
	if err != nil {
		t.Fatalf("AddMilking: %v", err)
	}
}

func (fx *fixture) sell(t *testing.T, farmSlug, customer, qty string, at time.Time) {
	t.Helper()
	_, err := fx.finance.RecordSale(context.Background(), farmSlug, SaleInput{Customer: customer, Quantity: dec(qty), SoldAt: at})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(date string, hour int) time.Time {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour) * time.Hour)
}

func wantValidation(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *ValidationError on %q, got %v", field, err)
	}
	if ve.Field != field {
		t.Fatalf("want field %q, got %q (%s)", field, ve.Field, ve.Message)
	}
}
