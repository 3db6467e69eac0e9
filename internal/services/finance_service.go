// Package services – FinanceService
//
// FinanceService records a farm's inventory, expenses, revenue and milk
// sales, and summarizes them over a date range.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
)

// InventoryInput is stock acquired by a farm.
type InventoryInput struct {
	ItemName    string          `json:"item_name"   validate:"required,max=100"`
	Quantity    int             `json:"quantity"    validate:"min=0"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	Description string          `json:"description"`
	AcquiredOn  Day             `json:"acquired_on"`
}

// ExpenseInput is money spent by a farm.
type ExpenseInput struct {
	Name        string          `json:"name"        validate:"required,max=100"`
	Description string          `json:"description" validate:"max=255"`
	Cost        decimal.Decimal `json:"cost"`
	Date        Day             `json:"date"`
	Category    string          `json:"category"    validate:"max=100"`
}

// RevenueInput is money earned outside of milk sales.
type RevenueInput struct {
	Name        string          `json:"name"        validate:"required,max=100"`
	Description string          `json:"description" validate:"max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Day             `json:"date"`
}

// SaleInput is milk sold to a customer.
type SaleInput struct {
	Customer  string           `json:"customer"   validate:"required,max=100"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	SoldAt    time.Time        `json:"sold_at"`
}

// Summary is a farm's financial position over a range.
type Summary struct {
	From         string               `json:"from,omitempty"`
	To           string               `json:"to,omitempty"`
	Expenses     []repo.CategoryTotal `json:"expenses"`
	TotalExpense decimal.Decimal      `json:"total_expenses"`
	Revenue      decimal.Decimal      `json:"revenue"`
	SalesIncome  decimal.Decimal      `json:"sales_income"`
	Profit       decimal.Decimal      `json:"profit"`
	MilkSold     decimal.Decimal      `json:"milk_sold"`
}

// FinanceService manages farm finance records.
type FinanceService struct {
	DB  *gorm.DB
	Now func() time.Time

	// OnSale, when set, observes every stored milk sale.
	OnSale func(s *domain.MilkSale)
}

// NewFinanceService constructs a FinanceService.
func NewFinanceService(db *gorm.DB) *FinanceService {
	return &FinanceService{DB: db, Now: time.Now}
}

// AddInventory stores an inventory item.
func (s *FinanceService) AddInventory(ctx context.Context, farmSlug string, in InventoryInput) (*domain.InventoryItem, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	if err := firstErr(
		checkStruct(in),
		nonNegative("unit_value", in.UnitValue),
		requireTime("acquired_on", in.AcquiredOn.Time),
		notFuture("acquired_on", in.AcquiredOn.Time, clock(s.Now)),
	); err != nil {
		return nil, err
	}
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	item := &domain.InventoryItem{
		FarmID:      f.ID,
		ItemName:    in.ItemName,
		Quantity:    in.Quantity,
		UnitValue:   in.UnitValue,
		Description: strings.TrimSpace(in.Description),
		AcquiredOn:  in.AcquiredOn.UTC(),
	}
	if err := repo.Insert(ctx, s.DB, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListInventory returns a page of inventory items, most recently acquired first.
func (s *FinanceService) ListInventory(ctx context.Context, farmSlug string, r repo.DateRange, p Page) ([]domain.InventoryItem, int64, error) {
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, 0, err
	}
	return listByFarm[domain.InventoryItem](ctx, s.DB, f.ID, "acquired_on", r, p)
}

// AddExpense stores an expense.
func (s *FinanceService) AddExpense(ctx context.Context, farmSlug string, in ExpenseInput) (*domain.Expense, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := firstErr(
		checkStruct(in),
		nonNegative("cost", in.Cost),
		requireTime("date", in.Date.Time),
		notFuture("date", in.Date.Time, clock(s.Now)),
	); err != nil {
		return nil, err
	}
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	e := &domain.Expense{
		FarmID:      f.ID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Cost:        in.Cost,
		Date:        in.Date.UTC(),
		Category:    in.Category,
	}
	if err := repo.Insert(ctx, s.DB, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpenses returns a page of expenses, newest first.
func (s *FinanceService) ListExpenses(ctx context.Context, farmSlug string, r repo.DateRange, p Page) ([]domain.Expense, int64, error) {
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, 0, err
	}
	return listByFarm[domain.Expense](ctx, s.DB, f.ID, "date", r, p)
}

// AddRevenue stores a revenue entry.
func (s *FinanceService) AddRevenue(ctx context.Context, farmSlug string, in RevenueInput) (*domain.Revenue, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := firstErr(
		checkStruct(in),
		nonNegative("amount", in.Amount),
		requireTime("date", in.Date.Time),
		notFuture("date", in.Date.Time, clock(s.Now)),
	); err != nil {
		return nil, err
	}
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	rev := &domain.Revenue{
		FarmID:      f.ID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Date:        in.Date.UTC(),
	}
	if err := repo.Insert(ctx, s.DB, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// ListRevenue returns a page of revenue entries, newest first.
func (s *FinanceService) ListRevenue(ctx context.Context, farmSlug string, r repo.DateRange, p Page) ([]domain.Revenue, int64, error) {
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, 0, err
	}
	return listByFarm[domain.Revenue](ctx, s.DB, f.ID, "date", r, p)
}

// RecordSale stores a milk sale against the farm.
func (s *FinanceService) RecordSale(ctx context.Context, farmSlug string, in SaleInput) (*domain.MilkSale, error) {
	ctx, span := tracer("FinanceService").Start(ctx, "RecordSale", trace.WithAttributes(attribute.String("farm.slug", farmSlug)))
	defer span.End()

	in.Customer = strings.TrimSpace(in.Customer)
	errs := []error{
		checkStruct(in),
		nonNegative("quantity", in.Quantity),
		requireTime("sold_at", in.SoldAt),
		notFuture("sold_at", in.SoldAt, clock(s.Now)),
	}
	if in.UnitPrice != nil {
		errs = append(errs, nonNegative("unit_price", *in.UnitPrice))
	}
	if err := firstErr(errs...); err != nil {
		return nil, err
	}
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	sale := &domain.MilkSale{
		FarmID:    f.ID,
		Customer:  in.Customer,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		SoldAt:    in.SoldAt.UTC(),
	}
	if err := repo.Insert(ctx, s.DB, sale); err != nil {
		return nil, err
	}
	if s.OnSale != nil {
		s.OnSale(sale)
	}
	return sale, nil
}

// ListSales returns a page of milk sales, newest first.
func (s *FinanceService) ListSales(ctx context.Context, farmSlug string, r repo.DateRange, p Page) ([]domain.MilkSale, int64, error) {
	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, 0, err
	}
	return listByFarm[domain.MilkSale](ctx, s.DB, f.ID, "sold_at", r, p)
}

// Summary totals expenses by category, revenue and priced milk sales over
// r. Profit is revenue plus sales income minus expenses.
func (s *FinanceService) Summary(ctx context.Context, farmSlug string, r repo.DateRange) (*Summary, error) {
	ctx, span := tracer("FinanceService").Start(ctx, "Summary", trace.WithAttributes(attribute.String("farm.slug", farmSlug)))
	defer span.End()

	f, err := loadFarm(ctx, s.DB, farmSlug)
	if err != nil {
		return nil, err
	}
	cats, err := repo.SumExpensesByCategory(ctx, s.DB, f.ID, r)
	if err != nil {
		return nil, err
	}
	out := &Summary{Expenses: cats}
	if out.Expenses == nil {
		out.Expenses = []repo.CategoryTotal{}
	}
	for _, c := range cats {
		out.TotalExpense = out.TotalExpense.Add(c.Total)
	}
	if out.Revenue, err = repo.SumRevenue(ctx, s.DB, f.ID, r); err != nil {
		return nil, err
	}
	if out.SalesIncome, err = repo.SumSalesIncome(ctx, s.DB, f.ID, r); err != nil {
		return nil, err
	}
	if out.MilkSold, err = repo.SumSold(ctx, s.DB, f.ID, r); err != nil {
		return nil, err
	}
	out.Profit = out.Revenue.Add(out.SalesIncome).Sub(out.TotalExpense)
	return out, nil
}
