// Finance HTTP handlers: inventory, expenses, revenue, milk sales and the
// farm's financial summary.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/services"
)

// AddInventory godoc
// @ID          addInventory
// @Summary     Add an inventory item
// @Tags        Finance
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                   false "Idempotency key for safe retries"
// @Param       slug             path    string                   true  "Farm slug"
// @Param       body             body    services.InventoryInput  true  "Item"
// @Success     201  {object}  domain.InventoryItem
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/inventory [post]
func (h *Handlers) AddInventory(c *gin.Context) {
	slug := c.Param("slug")
	createRecord[services.InventoryInput, domain.InventoryItem](h, c, "inventory", func(ctx context.Context, in services.InventoryInput) (*domain.InventoryItem, error) {
		return h.finance.AddInventory(ctx, slug, in)
	})
}

// ListInventory godoc
// @ID          listInventory
// @Summary     List inventory
// @Tags        Finance
// @Produce     json
// @Param       slug       path   string  true  "Farm slug"
// @Param       from       query  string  false "First acquisition date (inclusive)"  format(date)
// @Param       to         query  string  false "Last acquisition date (inclusive)"   format(date)
// @Param       page       query  int     false "Page number"                         minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"                      minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.InventoryItem]
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/inventory [get]
func (h *Handlers) ListInventory(c *gin.Context) {
	slug := c.Param("slug")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.InventoryItem, int64, error) {
		return h.finance.ListInventory(ctx, slug, r, p)
	})
}

// AddExpense godoc
// @ID          addExpense
// @Summary     Record an expense
// @Tags        Finance
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                 false "Idempotency key for safe retries"
// @Param       slug             path    string                 true  "Farm slug"
// @Param       body             body    services.ExpenseInput  true  "Expense"
// @Success     201  {object}  domain.Expense
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/expenses [post]
func (h *Handlers) AddExpense(c *gin.Context) {
	slug := c.Param("slug")
	createRecord[services.ExpenseInput, domain.Expense](h, c, "expense", func(ctx context.Context, in services.ExpenseInput) (*domain.Expense, error) {
		return h.finance.AddExpense(ctx, slug, in)
	})
}

// ListExpenses godoc
// @ID          listExpenses
// @Summary     List expenses
// @Tags        Finance
// @Produce     json
// @Param       slug       path   string  true  "Farm slug"
// @Param       from       query  string  false "First date (inclusive)"  format(date)
// @Param       to         query  string  false "Last date (inclusive)"   format(date)
// @Param       page       query  int     false "Page number"             minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"          minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.Expense]
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/expenses [get]
func (h *Handlers) ListExpenses(c *gin.Context) {
	slug := c.Param("slug")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.Expense, int64, error) {
		return h.finance.ListExpenses(ctx, slug, r, p)
	})
}

// AddRevenue godoc
// @ID          addRevenue
// @Summary     Record revenue
// @Tags        Finance
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                 false "Idempotency key for safe retries"
// @Param       slug             path    string                 true  "Farm slug"
// @Param       body             body    services.RevenueInput  true  "Revenue"
// @Success     201  {object}  domain.Revenue
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/revenue [post]
func (h *Handlers) AddRevenue(c *gin.Context) {
	slug := c.Param("slug")
	createRecord[services.RevenueInput, domain.Revenue](h, c, "revenue", func(ctx context.Context, in services.RevenueInput) (*domain.Revenue, error) {
		return h.finance.AddRevenue(ctx, slug, in)
	})
}

// ListRevenue godoc
// @ID          listRevenue
// @Summary     List revenue
// @Tags        Finance
// @Produce     json
// @Param       slug       path   string  true  "Farm slug"
// @Param       from       query  string  false "First date (inclusive)"  format(date)
// @Param       to         query  string  false "Last date (inclusive)"   format(date)
// @Param       page       query  int     false "Page number"             minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"          minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.Revenue]
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/revenue [get]
func (h *Handlers) ListRevenue(c *gin.Context) {
	slug := c.Param("slug")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.Revenue, int64, error) {
		return h.finance.ListRevenue(ctx, slug, r, p)
	})
}

// RecordSale godoc
// @ID          recordSale
// @Summary     Record a milk sale
// @Description Sales belong to the farm, not to a cow. They are matched to production by calendar date in the report timezone.
// @Tags        Finance
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string              false "Idempotency key for safe retries"
// @Param       slug             path    string              true  "Farm slug"
// @Param       body             body    services.SaleInput  true  "Sale"
// @Success     201  {object}  domain.MilkSale
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/sales [post]
func (h *Handlers) RecordSale(c *gin.Context) {
	slug := c.Param("slug")
	createRecord[services.SaleInput, domain.MilkSale](h, c, "sale", func(ctx context.Context, in services.SaleInput) (*domain.MilkSale, error) {
		return h.finance.RecordSale(ctx, slug, in)
	})
}

// ListSales godoc
// @ID          listSales
// @Summary     List milk sales
// @Tags        Finance
// @Produce     json
// @Param       slug       path   string  true  "Farm slug"
// @Param       from       query  string  false "First date (inclusive)"  format(date)
// @Param       to         query  string  false "Last date (inclusive)"   format(date)
// @Param       page       query  int     false "Page number"             minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"          minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.MilkSale]
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/sales [get]
func (h *Handlers) ListSales(c *gin.Context) {
	slug := c.Param("slug")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.MilkSale, int64, error) {
		return h.finance.ListSales(ctx, slug, r, p)
	})
}

// FinanceSummary godoc
// @ID          financeSummary
// @Summary     Financial summary
// @Description Expenses by category, revenue, sales income and profit over an optional inclusive date range.
// @Tags        Finance
// @Produce     json
// @Param       slug  path   string  true  "Farm slug"
// @Param       from  query  string  false "First date (inclusive)"  format(date)
// @Param       to    query  string  false "Last date (inclusive)"   format(date)
// @Success     200  {object}  services.Summary
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/finance/summary [get]
func (h *Handlers) FinanceSummary(c *gin.Context) {
	r, err := h.dateRange(c)
	if err != nil {
		failService(c, err, ErrCodeBadRequest)
		return
	}
	sum, err := h.finance.Summary(c.Request.Context(), c.Param("slug"), r)
	if err != nil {
		failService(c, err, ErrCodeReportFailed)
		return
	}
	sum.From, sum.To = c.Query("from"), c.Query("to")
	ok(c, http.StatusOK, sum)
}
