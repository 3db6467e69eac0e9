package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
)

func TestFinance_RecordAndSummarize(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.farm(t, "Money Farm")

	var sales int
	fx.finance.OnSale = func(*domain.MilkSale) { sales++ }

	mustNoErr := func(_ any, err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	mustNoErr(fx.finance.AddExpense(ctx, f.Slug, ExpenseInput{Name: "Hay", Cost: dec("100"), Date: DayOf(at("2024-06-01", 0)), Category: "feed"}))
	mustNoErr(fx.finance.AddExpense(ctx, f.Slug, ExpenseInput{Name: "Pellets", Cost: dec("50"), Date: DayOf(at("2024-06-02", 0)), Category: "feed"}))
	mustNoErr(fx.finance.AddExpense(ctx, f.Slug, ExpenseInput{Name: "Vet", Cost: dec("80"), Date: DayOf(at("2024-06-03", 0)), Category: "health"}))
	mustNoErr(fx.finance.AddRevenue(ctx, f.Slug, RevenueInput{Name: "Manure", Amount: dec("30"), Date: DayOf(at("2024-06-03", 0))}))
	price := decimal.RequireFromString("0.5")
	mustNoErr(fx.finance.RecordSale(ctx, f.Slug, SaleInput{Customer: "Coop", Quantity: dec("400"), UnitPrice: &price, SoldAt: at("2024-06-03", 9)}))
	mustNoErr(fx.finance.RecordSale(ctx, f.Slug, SaleInput{Customer: "Neighbour", Quantity: dec("10"), SoldAt: at("2024-06-03", 10)}))
	mustNoErr(fx.finance.AddInventory(ctx, f.Slug, InventoryInput{ItemName: "Bucket", Quantity: 4, UnitValue: dec("3.5"), AcquiredOn: DayOf(at("2024-06-01", 0))}))

	if sales != 2 {
		t.Fatalf("sale hook ran %d times", sales)
	}

	sum, err := fx.finance.Summary(ctx, f.Slug, repo.DateRange{})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum.Expenses) != 2 || sum.Expenses[0].Category != "feed" || !sum.Expenses[0].Total.Equal(dec("150")) {
		t.Fatalf("categories = %+v", sum.Expenses)
	}
	checks := map[string][2]decimal.Decimal{
		"total_expenses": {sum.TotalExpense, dec("230")},
		"revenue":        {sum.Revenue, dec("30")},
		"sales_income":   {sum.SalesIncome, dec("200")},
		"profit":         {sum.Profit, dec("0")},
		"milk_sold":      {sum.MilkSold, dec("410")},
	}
	for name, c := range checks {
		if !c[0].Equal(c[1]) {
			t.Errorf("%s = %s, want %s", name, c[0], c[1])
		}
	}

	// Narrow range excludes the first two expenses.
	sum, err = fx.finance.Summary(ctx, f.Slug, repo.DateRange{From: at("2024-06-03", 0)})
	if err != nil || !sum.TotalExpense.Equal(dec("80")) {
		t.Fatalf("ranged summary = %+v %v", sum, err)
	}
}

func TestFinance_Validation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.farm(t, "Strict Farm")

	_, err := fx.finance.AddExpense(ctx, f.Slug, ExpenseInput{Name: "Hay", Cost: dec("-1"), Date: DayOf(at("2024-06-01", 0))})
	wantValidation(t, err, "cost")
	_, err = fx.finance.AddRevenue(ctx, f.Slug, RevenueInput{Name: "X", Amount: dec("1"), Date: DayOf(at("2030-01-01", 0))})
	wantValidation(t, err, "date")
	_, err = fx.finance.RecordSale(ctx, f.Slug, SaleInput{Quantity: dec("1"), SoldAt: at("2024-06-01", 0)})
	wantValidation(t, err, "customer")
	neg := dec("-2")
	_, err = fx.finance.RecordSale(ctx, f.Slug, SaleInput{Customer: "C", Quantity: dec("1"), UnitPrice: &neg, SoldAt: at("2024-06-01", 0)})
	wantValidation(t, err, "unit_price")
	_, err = fx.finance.AddInventory(ctx, f.Slug, InventoryInput{ItemName: "X", Quantity: -1, AcquiredOn: DayOf(at("2024-06-01", 0))})
	wantValidation(t, err, "quantity")
}

func TestFinance_ListsNewestFirst(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.farm(t, "Ledger Farm")
	fx.sell(t, f.Slug, "A", "1", at("2024-06-01", 8))
	fx.sell(t, f.Slug, "B", "2", at("2024-06-02", 8))

	items, total, err := fx.finance.ListSales(ctx, f.Slug, repo.DateRange{}, Page{Size: 1})
	if err != nil || total != 2 || len(items) != 1 || items[0].Customer != "B" {
		t.Fatalf("ListSales = %+v %d %v", items, total, err)
	}
	for _, list := range []func() (int64, error){
		func() (int64, error) { _, n, err := fx.finance.ListExpenses(ctx, f.Slug, repo.DateRange{}, Page{}); return n, err },
		func() (int64, error) { _, n, err := fx.finance.ListRevenue(ctx, f.Slug, repo.DateRange{}, Page{}); return n, err },
		func() (int64, error) { _, n, err := fx.finance.ListInventory(ctx, f.Slug, repo.DateRange{}, Page{}); return n, err },
	} {
		if n, err := list(); err != nil || n != 0 {
			t.Fatalf("empty list = %d %v", n, err)
		}
	}
}

// Sub-litre yields and cent amounts must add up exactly in the summary and
// the leaderboard, as they do in the milk report.
func TestSummaryAndLeaderboard_FractionalAmounts(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.farm(t, "Cents Farm")
	daisy := fx.cow(t, f.Slug, "Daisy", domain.Female)
	fx.milk(t, f.Slug, daisy.Identifier, "0.1", at("2024-06-10", 6))
	fx.milk(t, f.Slug, daisy.Identifier, "0.2", at("2024-06-10", 18))
	fx.sell(t, f.Slug, "Coop", "0.1", at("2024-06-10", 9))
	fx.sell(t, f.Slug, "Coop", "0.2", at("2024-06-10", 19))
	for _, cost := range []string{"0.10", "0.20"} {
		if _, err := fx.finance.AddExpense(ctx, f.Slug, ExpenseInput{Name: "Salt", Cost: dec(cost), Date: DayOf(at("2024-06-10", 0)), Category: "feed"}); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := fx.finance.Summary(ctx, f.Slug, repo.DateRange{})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	for name, got := range map[string]decimal.Decimal{
		"feed":           sum.Expenses[0].Total,
		"total_expenses": sum.TotalExpense,
		"milk_sold":      sum.MilkSold,
	} {
		if !got.Equal(dec("0.3")) {
			t.Errorf("%s = %s, want 0.3", name, got)
		}
	}
	if !sum.Profit.Equal(dec("-0.3")) {
		t.Errorf("profit = %s", sum.Profit)
	}

	rows, err := fx.reports.Leaderboard(ctx, f.Slug, ReportQuery{From: "2024-06-10", To: "2024-06-10"})
	if err != nil || len(rows) != 1 || !rows[0].Total.Equal(dec("0.3")) {
		t.Fatalf("leaderboard = %+v %v", rows, err)
	}
}
