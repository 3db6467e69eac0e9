// Package handlers exposes the farm, herd, record, finance and milk report
// services over HTTP.
//
// Handlers are transport-thin: they bind and sanity-check input, call the
// application services, and translate results into HTTP responses
// (including conditional responses and idempotent replays). Business rules
// such as the female-only record constraint live in the service layer.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/http/middleware"
	"github.com/mashamba/dairy-backend/internal/milk"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/search"
	"github.com/mashamba/dairy-backend/internal/services"
	"github.com/mashamba/dairy-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// FarmService defines farm registration, lifecycle and directory operations.
type FarmService interface {
	Register(ctx context.Context, in services.FarmInput) (*domain.Farm, error)
	Get(ctx context.Context, slug string, activeOnly bool) (*domain.Farm, error)
	List(ctx context.Context, status domain.FarmStatus, p services.Page) ([]domain.Farm, int64, error)
	Update(ctx context.Context, slug string, in services.FarmUpdate) (*domain.Farm, error)
	SetStatus(ctx context.Context, slug string, status domain.FarmStatus) (*domain.Farm, error)
	Verify(ctx context.Context, slug string) (*domain.Farm, error)
	Search(ctx context.Context, q string, k int) []search.Result
}

// HerdService defines cow registration and weight tracking.
type HerdService interface {
	AddCow(ctx context.Context, slug string, in services.CowInput) (*domain.Cow, error)
	GetCow(ctx context.Context, slug, identifier string) (*domain.Cow, error)
	ListCows(ctx context.Context, slug string, f repo.CowFilter, p services.Page) ([]domain.Cow, int64, error)
	ArchiveCow(ctx context.Context, slug, identifier string) (*domain.Cow, error)
	RecordMass(ctx context.Context, slug, identifier string, in services.MassInput) (*domain.CowMass, error)
	ListMasses(ctx context.Context, slug, identifier string, r repo.DateRange, p services.Page) ([]domain.CowMass, int64, error)
}

// RecordService defines the per-cow herd records. Implementations enforce
// the female-only constraint for milking, breeding and calving.
type RecordService interface {
	AddMilking(ctx context.Context, slug, identifier string, in services.MilkingInput) (*domain.MilkingSession, error)
	ListMilkings(ctx context.Context, slug, identifier string, r repo.DateRange, p services.Page) ([]domain.MilkingSession, int64, error)
	AddBreeding(ctx context.Context, slug, identifier string, in services.BreedingInput) (*domain.BreedingRecord, error)
	ListBreedings(ctx context.Context, slug, identifier string, r repo.DateRange, p services.Page) ([]domain.BreedingRecord, int64, error)
	AddCalving(ctx context.Context, slug, identifier string, in services.CalvingInput) (*domain.CalvingRecord, error)
	ListCalvings(ctx context.Context, slug, identifier string, r repo.DateRange, p services.Page) ([]domain.CalvingRecord, int64, error)
	AddHealth(ctx context.Context, slug, identifier string, in services.HealthInput) (*domain.HealthRecord, error)
	ListHealth(ctx context.Context, slug, identifier string, r repo.DateRange, p services.Page) ([]domain.HealthRecord, int64, error)
}

// FinanceService defines farm-level money and sales records.
type FinanceService interface {
	AddInventory(ctx context.Context, slug string, in services.InventoryInput) (*domain.InventoryItem, error)
	ListInventory(ctx context.Context, slug string, r repo.DateRange, p services.Page) ([]domain.InventoryItem, int64, error)
	AddExpense(ctx context.Context, slug string, in services.ExpenseInput) (*domain.Expense, error)
	ListExpenses(ctx context.Context, slug string, r repo.DateRange, p services.Page) ([]domain.Expense, int64, error)
	AddRevenue(ctx context.Context, slug string, in services.RevenueInput) (*domain.Revenue, error)
	ListRevenue(ctx context.Context, slug string, r repo.DateRange, p services.Page) ([]domain.Revenue, int64, error)
	RecordSale(ctx context.Context, slug string, in services.SaleInput) (*domain.MilkSale, error)
	ListSales(ctx context.Context, slug string, r repo.DateRange, p services.Page) ([]domain.MilkSale, int64, error)
	Summary(ctx context.Context, slug string, r repo.DateRange) (*services.Summary, error)
}

// ReportService defines milk reporting and exports.
type ReportService interface {
	ResolveWindow(q services.ReportQuery) (services.Window, error)
	MilkReport(ctx context.Context, slug string, q services.ReportQuery) (*milk.Report, error)
	Leaderboard(ctx context.Context, slug string, q services.ReportQuery) ([]repo.CowYield, error)
	Snapshots(ctx context.Context, slug string, q services.ReportQuery) ([]domain.DailySnapshot, error)
	ExportPDF(ctx context.Context, slug string, q services.ReportQuery) ([]byte, error)
	ExportCSV(ctx context.Context, slug string, q services.ReportQuery, w io.Writer) error
}

//
// Handler wiring
//

// Deps carries everything the handlers need. DB backs conditional requests
// and idempotent replays; it may be nil, which disables both.
type Deps struct {
	Farms          FarmService
	Herd           HerdService
	Records        RecordService
	Finance        FinanceService
	Reports        ReportService
	DB             *gorm.DB
	Location       *time.Location
	IdempotencyTTL time.Duration
	Now            func() time.Time
}

// Handlers groups the HTTP endpoints of the API.
type Handlers struct {
	farms   FarmService
	herd    HerdService
	records RecordService
	finance FinanceService
	reports ReportService

	db      *gorm.DB
	loc     *time.Location
	idemTTL time.Duration
	now     func() time.Time
}

// New constructs a Handlers instance from d, filling defaults for the
// location (UTC), idempotency TTL (24h) and clock.
func New(d Deps) *Handlers {
	h := &Handlers{
		farms:   d.Farms,
		herd:    d.Herd,
		records: d.Records,
		finance: d.Finance,
		reports: d.Reports,
		db:      d.DB,
		loc:     d.Location,
		idemTTL: d.IdempotencyTTL,
		now:     d.Now,
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	if h.idemTTL <= 0 {
		h.idemTTL = 24 * time.Hour
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListResponse wraps a page of items and pagination information.
type ListResponse[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func newListResponse[T any](items []T, total int64, p services.Page) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := utils.TotalPages(total, p.Size)
	return ListResponse[T]{
		Items: items,
		Pagination: Pagination{
			Page:       p.Page,
			PageSize:   p.Size,
			Total:      total,
			TotalPages: pages,
			HasNext:    p.Page < pages,
		},
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits.
func clampPagination(c *gin.Context) services.Page {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page := utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	size := utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return services.Page{Page: page, Size: size}
}

// dateRange reads the optional inclusive from/to query dates in the
// handler's location and returns the matching half-open store range.
func (h *Handlers) dateRange(c *gin.Context) (repo.DateRange, error) {
	var r repo.DateRange
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			return r, &services.ValidationError{Field: "from", Message: "must be a date in YYYY-MM-DD format"}
		}
		r.From = t
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			return r, &services.ValidationError{Field: "to", Message: "must be a date in YYYY-MM-DD format"}
		}
		r.To = t.AddDate(0, 0, 1)
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		return r, &services.ValidationError{Field: "from", Message: "must not be after to"}
	}
	return r, nil
}

// etagMatch sets a weak ETag built from a stats query and reports whether
// the request's If-None-Match already carries it. Stats errors skip the
// check rather than failing the request.
func etagMatch(c *gin.Context, scope string, count int64, maxTS *time.Time) bool {
	var ts int64
	if maxTS != nil {
		ts = maxTS.Unix()
	}
	etag := fmt.Sprintf(`W/"%s:%d:%d"`, scope, count, ts)
	c.Header("ETag", etag)
	return c.GetHeader("If-None-Match") == etag
}

// bindJSON decodes the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// createRecord runs an idempotent create. When the request carries an
// Idempotency-Key already used by this user on this farm for the same kind
// of record, the stored record is returned with Idempotency-Replayed set
// and create is not called.
func createRecord[In any, Out any, PO interface {
	*Out
	GetID() string
}](h *Handlers, c *gin.Context, kind string, create func(ctx context.Context, in In) (PO, error)) {
	ctx := c.Request.Context()
	slug := c.Param(middleware.ScopeParam)
	user := middleware.UserID(c)
	key, _ := middleware.GetIdempotencyKey(c)

	if key != "" && h.db != nil {
		rec, err := repo.GetIdempotency(ctx, h.db, user, slug, key, h.now().UTC())
		if err == nil && rec != nil {
			if rec.Kind != kind {
				fail(c, http.StatusConflict, ErrCodeConflict, "idempotency key already used for a different request")
				return
			}
			if prev, err := repo.GetByID[Out](ctx, h.db, rec.RecordID); err == nil {
				c.Header(middleware.HeaderIdempotencyReplayed, "true")
				ok(c, rec.Status, prev)
				return
			}
		}
	}

	var in In
	if !bindJSON(c, &in) {
		return
	}
	out, err := create(ctx, in)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	middleware.ObserveRecord(kind)

	if key != "" && h.db != nil {
		if _, err := repo.CreateIdempotency(ctx, h.db, user, slug, key, kind, out.GetID(), http.StatusCreated, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Str("kind", kind).Msg("idempotency record not stored")
		}
	}
	ok(c, http.StatusCreated, out)
}

// listRecords answers a paginated, optionally date-bounded list.
func listRecords[T any](h *Handlers, c *gin.Context, list func(ctx context.Context, r repo.DateRange, p services.Page) ([]T, int64, error)) {
	r, err := h.dateRange(c)
	if err != nil {
		failService(c, err, ErrCodeBadRequest)
		return
	}
	p := clampPagination(c)
	items, total, err := list(c.Request.Context(), r, p)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, newListResponse(items, total, p))
}
