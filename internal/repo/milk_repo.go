// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the farm-wide milk queries that feed the
// report aggregator and the per-cow leaderboard.
package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// MilkingRow is a milking session joined with the cow that produced it.
type MilkingRow struct {
	CowID      string
	Identifier string
	Name       string
	Yield      decimal.Decimal
	MilkedAt   time.Time
}

// CowYield is the summed yield of one cow over a range.
type CowYield struct {
	CowID      string          `json:"cow_id"`
	Identifier string          `json:"identifier"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Sessions   int64           `json:"sessions"`
}

// ListFarmMilkings returns a farm's milking sessions inside r, oldest
// first, optionally restricted to one cow.
func ListFarmMilkings(ctx context.Context, db *gorm.DB, farmID, cowID string, r DateRange) ([]MilkingRow, error) {
	q := db.WithContext(ctx).
		Model(&domain.MilkingSession{}).
		Select("milking_sessions.cow_id AS cow_id, cows.identifier AS identifier, " +
			"cows.name_or_tag AS name, milking_sessions.yield AS yield, milking_sessions.milked_at AS milked_at").
		Joins("JOIN cows ON cows.id = milking_sessions.cow_id").
		Where("cows.farm_id = ?", farmID)
	if cowID != "" {
		q = q.Where("milking_sessions.cow_id = ?", cowID)
	}
	q = r.apply(q, "milking_sessions.milked_at")

	var out []MilkingRow
	err := q.Order("milking_sessions.milked_at asc").
		Order("milking_sessions.created_at asc").
		Scan(&out).Error
	return out, err
}

// ListFarmSales returns a farm's milk sales inside r, oldest first.
func ListFarmSales(ctx context.Context, db *gorm.DB, farmID string, r DateRange) ([]domain.MilkSale, error) {
	q := r.apply(db.WithContext(ctx).Where("farm_id = ?", farmID), "sold_at")
	var out []domain.MilkSale
	err := q.Order("sold_at asc").Order("created_at asc").Find(&out).Error
	return out, err
}

// SumYieldByCow groups a farm's yields inside r by cow, highest total first.
// Ties are broken by identifier so the order is stable.
func SumYieldByCow(ctx context.Context, db *gorm.DB, farmID string, r DateRange) ([]CowYield, error) {
	q := db.WithContext(ctx).
		Model(&domain.MilkingSession{}).
		Select("cows.id AS cow_id, cows.identifier AS identifier, cows.name_or_tag AS name, " +
			"COALESCE(SUM(milking_sessions.yield), 0) AS total, COUNT(milking_sessions.id) AS sessions").
		Joins("JOIN cows ON cows.id = milking_sessions.cow_id").
		Where("cows.farm_id = ?", farmID)
	q = r.apply(q, "milking_sessions.milked_at")

	var out []CowYield
	err := q.Group("cows.id, cows.identifier, cows.name_or_tag").
		Order("total desc").
		Order("cows.identifier asc").
		Scan(&out).Error
	for i := range out {
		out[i].Total = out[i].Total.Round(sumScale)
	}
	return out, err
}

// CountActiveCows returns how many active cows a farm has.
func CountActiveCows(ctx context.Context, db *gorm.DB, farmID string) (int64, error) {
	return CountCows(ctx, db, farmID, CowFilter{Status: domain.CowActive})
}
