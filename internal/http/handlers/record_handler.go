// Herd record HTTP handlers.
//
// Every cow carries four record streams, each with a create and a list
// endpoint under /farms/{slug}/cows/{identifier}:
//   - milkings   (female only)
//   - breedings  (female only)
//   - calvings   (female only)
//   - health     (any gender)
//
// Creates honor Idempotency-Key; lists accept inclusive from/to dates.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/services"
)

// AddMilking godoc
// @ID          addMilking
// @Summary     Record a milking session
// @Tags        Records
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                 false "Idempotency key for safe retries"
// @Param       slug             path    string                 true  "Farm slug"
// @Param       identifier       path    string                 true  "Cow identifier"
// @Param       body             body    services.MilkingInput  true  "Yield in litres and milking time"
// @Success     201  {object}  domain.MilkingSession
// @Header      201  {string}  Idempotency-Replayed  "true when the response replays an earlier create"
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed (including male cows)"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Failure     409  {object}  handlers.ErrorResponse "Cow archived"
// @Router      /farms/{slug}/cows/{identifier}/milkings [post]
func (h *Handlers) AddMilking(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	createRecord[services.MilkingInput, domain.MilkingSession](h, c, "milking", func(ctx context.Context, in services.MilkingInput) (*domain.MilkingSession, error) {
		return h.records.AddMilking(ctx, slug, ident, in)
	})
}

// ListMilkings godoc
// @ID          listMilkings
// @Summary     List milking sessions
// @Tags        Records
// @Produce     json
// @Param       slug        path   string  true  "Farm slug"
// @Param       identifier  path   string  true  "Cow identifier"
// @Param       from        query  string  false "First date (inclusive)"  format(date)
// @Param       to          query  string  false "Last date (inclusive)"   format(date)
// @Param       page        query  int     false "Page number"             minimum(1) default(1)
// @Param       page_size   query  int     false "Items per page"          minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.MilkingSession]
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/cows/{identifier}/milkings [get]
func (h *Handlers) ListMilkings(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.MilkingSession, int64, error) {
		return h.records.ListMilkings(ctx, slug, ident, r, p)
	})
}

// AddBreeding godoc
// @ID          addBreeding
// @Summary     Record a breeding
// @Tags        Records
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                  false "Idempotency key for safe retries"
// @Param       slug             path    string                  true  "Farm slug"
// @Param       identifier       path    string                  true  "Cow identifier"
// @Param       body             body    services.BreedingInput  true  "Breeding details"
// @Success     201  {object}  domain.BreedingRecord
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed (including male cows)"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Failure     409  {object}  handlers.ErrorResponse "Cow archived"
// @Router      /farms/{slug}/cows/{identifier}/breedings [post]
func (h *Handlers) AddBreeding(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	createRecord[services.BreedingInput, domain.BreedingRecord](h, c, "breeding", func(ctx context.Context, in services.BreedingInput) (*domain.BreedingRecord, error) {
		return h.records.AddBreeding(ctx, slug, ident, in)
	})
}

// ListBreedings godoc
// @ID          listBreedings
// @Summary     List breeding records
// @Tags        Records
// @Produce     json
// @Param       slug        path   string  true  "Farm slug"
// @Param       identifier  path   string  true  "Cow identifier"
// @Param       page        query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size   query  int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.BreedingRecord]
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/cows/{identifier}/breedings [get]
func (h *Handlers) ListBreedings(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.BreedingRecord, int64, error) {
		return h.records.ListBreedings(ctx, slug, ident, r, p)
	})
}

// AddCalving godoc
// @ID          addCalving
// @Summary     Record a calving
// @Tags        Records
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                 false "Idempotency key for safe retries"
// @Param       slug             path    string                 true  "Farm slug"
// @Param       identifier       path    string                 true  "Cow identifier"
// @Param       body             body    services.CalvingInput  true  "Calving details"
// @Success     201  {object}  domain.CalvingRecord
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed (including male cows)"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Failure     409  {object}  handlers.ErrorResponse "Cow archived"
// @Router      /farms/{slug}/cows/{identifier}/calvings [post]
func (h *Handlers) AddCalving(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	createRecord[services.CalvingInput, domain.CalvingRecord](h, c, "calving", func(ctx context.Context, in services.CalvingInput) (*domain.CalvingRecord, error) {
		return h.records.AddCalving(ctx, slug, ident, in)
	})
}

// ListCalvings godoc
// @ID          listCalvings
// @Summary     List calving records
// @Tags        Records
// @Produce     json
// @Param       slug        path   string  true  "Farm slug"
// @Param       identifier  path   string  true  "Cow identifier"
// @Param       from        query  string  false "First date (inclusive)"  format(date)
// @Param       to          query  string  false "Last date (inclusive)"   format(date)
// @Param       page        query  int     false "Page number"             minimum(1) default(1)
// @Param       page_size   query  int     false "Items per page"          minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.CalvingRecord]
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/cows/{identifier}/calvings [get]
func (h *Handlers) ListCalvings(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.CalvingRecord, int64, error) {
		return h.records.ListCalvings(ctx, slug, ident, r, p)
	})
}

// AddHealth godoc
// @ID          addHealth
// @Summary     Record a treatment
// @Tags        Records
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                false "Idempotency key for safe retries"
// @Param       slug             path    string                true  "Farm slug"
// @Param       identifier       path    string                true  "Cow identifier"
// @Param       body             body    services.HealthInput  true  "Treatment details"
// @Success     201  {object}  domain.HealthRecord
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Failure     409  {object}  handlers.ErrorResponse "Cow archived"
// @Router      /farms/{slug}/cows/{identifier}/health [post]
func (h *Handlers) AddHealth(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	createRecord[services.HealthInput, domain.HealthRecord](h, c, "health", func(ctx context.Context, in services.HealthInput) (*domain.HealthRecord, error) {
		return h.records.AddHealth(ctx, slug, ident, in)
	})
}

// ListHealth godoc
// @ID          listHealth
// @Summary     List health records
// @Tags        Records
// @Produce     json
// @Param       slug        path   string  true  "Farm slug"
// @Param       identifier  path   string  true  "Cow identifier"
// @Param       from        query  string  false "First date (inclusive)"  format(date)
// @Param       to          query  string  false "Last date (inclusive)"   format(date)
// @Param       page        query  int     false "Page number"             minimum(1) default(1)
// @Param       page_size   query  int     false "Items per page"          minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.HealthRecord]
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/cows/{identifier}/health [get]
func (h *Handlers) ListHealth(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.HealthRecord, int64, error) {
		return h.records.ListHealth(ctx, slug, ident, r, p)
	})
}
