// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the sum and group-sum queries behind
// the finance summary.
package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// Decimal columns are stored as REAL by SQLite, so SUM comes back as a
// float. Totals are rounded back to the scale of the summed columns.
const (
	sumScale     = 2 // decimal(…,2) columns
	productScale = 4 // quantity * unit_price
)

// CategoryTotal is the summed cost of one expense category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// SumExpensesByCategory groups a farm's expenses inside r by category,
// largest first. Uncategorized rows are reported under "".
func SumExpensesByCategory(ctx context.Context, db *gorm.DB, farmID string, r DateRange) ([]CategoryTotal, error) {
	q := db.WithContext(ctx).
		Model(&domain.Expense{}).
		Select("COALESCE(category, '') AS category, COALESCE(SUM(cost), 0) AS total").
		Where("farm_id = ?", farmID)
	q = r.apply(q, "date")

	var out []CategoryTotal
	err := q.Group("COALESCE(category, '')").
		Order("total desc").
		Order("category asc").
		Scan(&out).Error
	for i := range out {
		out[i].Total = out[i].Total.Round(sumScale)
	}
	return out, err
}

// SumRevenue totals a farm's recorded revenue inside r.
func SumRevenue(ctx context.Context, db *gorm.DB, farmID string, r DateRange) (decimal.Decimal, error) {
	return sum(ctx, db, &domain.Revenue{}, "amount", farmID, "date", r)
}

// SumSalesIncome totals quantity x unit price for a farm's priced milk sales
// inside r. Sales without a price contribute nothing.
func SumSalesIncome(ctx context.Context, db *gorm.DB, farmID string, r DateRange) (decimal.Decimal, error) {
	q := db.WithContext(ctx).
		Model(&domain.MilkSale{}).
		Select("COALESCE(SUM(quantity * unit_price), 0) AS total").
		Where("farm_id = ? AND unit_price IS NOT NULL", farmID)
	q = r.apply(q, "sold_at")

	var row struct{ Total decimal.Decimal }
	err := q.Scan(&row).Error
	return row.Total.Round(productScale), err
}

// SumSold totals the quantity of milk a farm sold inside r.
func SumSold(ctx context.Context, db *gorm.DB, farmID string, r DateRange) (decimal.Decimal, error) {
	return sum(ctx, db, &domain.MilkSale{}, "quantity", farmID, "sold_at", r)
}

func sum(ctx context.Context, db *gorm.DB, model any, column, farmID, dateColumn string, r DateRange) (decimal.Decimal, error) {
	q := db.WithContext(ctx).
		Model(model).
		Select("COALESCE(SUM("+column+"), 0) AS total").
		Where("farm_id = ?", farmID)
	q = r.apply(q, dateColumn)

	var row struct{ Total decimal.Decimal }
	err := q.Scan(&row).Error
	return row.Total.Round(sumScale), err
}
