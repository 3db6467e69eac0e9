// Herd HTTP handlers.
//
// Endpoints:
//   - POST /farms/{slug}/cows                           (add cow)
//   - GET  /farms/{slug}/cows                           (list, paginated, ETag support)
//   - GET  /farms/{slug}/cows/{identifier}              (detail)
//   - POST /farms/{slug}/cows/{identifier}/archive      (archive)
//   - POST /farms/{slug}/cows/{identifier}/masses       (record weight)
//   - GET  /farms/{slug}/cows/{identifier}/masses       (weight history)
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/services"
)

// CowView is a cow with its age derived at request time.
type CowView struct {
	domain.Cow
	Age string `json:"age,omitempty" example:"3 years, 2 months"`
}

func cowFilter(c *gin.Context) (repo.CowFilter, bool) {
	f := repo.CowFilter{
		Gender: domain.Gender(strings.ToLower(strings.TrimSpace(c.Query("gender")))),
		Status: domain.CowStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
	}
	if f.Gender != "" && !f.Gender.Valid() {
		return f, false
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, false
	}
	return f, true
}

// AddCow godoc
// @ID          addCow
// @Summary     Add a cow
// @Description Registers a cow on the farm and issues its permanent "Cow-{n}" identifier.
// @Tags        Herd
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string              false "Idempotency key for safe retries"
// @Param       slug             path    string              true  "Farm slug"
// @Param       body             body    services.CowInput   true  "Cow details"
// @Success     201  {object}  domain.Cow
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/cows [post]
func (h *Handlers) AddCow(c *gin.Context) {
	slug := c.Param("slug")
	createRecord[services.CowInput, domain.Cow](h, c, "cow", func(ctx context.Context, in services.CowInput) (*domain.Cow, error) {
		return h.herd.AddCow(ctx, slug, in)
	})
}

// ListCows godoc
// @ID          listCows
// @Summary     List cows (paginated)
// @Tags        Herd
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       slug           path    string  true  "Farm slug"
// @Param       gender         query   string  false "Filter by gender"  Enums(male, female)
// @Param       status         query   string  false "Filter by status"  Enums(active, archived)
// @Param       page           query   int     false "Page number"       minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"    minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.Cow]
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/cows [get]
func (h *Handlers) ListCows(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")
	f, valid := cowFilter(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid gender or status filter")
		return
	}
	p := clampPagination(c)

	if h.db != nil {
		if farm, err := repo.GetFarmBySlug(ctx, h.db, slug); err == nil {
			if count, maxTS, err := repo.CowsStats(ctx, h.db, farm.ID); err == nil {
				scope := "cows:" + slug + ":" + string(f.Gender) + ":" + string(f.Status)
				if etagMatch(c, scope, count, maxTS) {
					notModified(c)
					return
				}
			}
		}
	}

	items, total, err := h.herd.ListCows(ctx, slug, f, p)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, newListResponse(items, total, p))
}

// GetCow godoc
// @ID          getCow
// @Summary     Get a cow
// @Tags        Herd
// @Produce     json
// @Param       slug        path  string  true  "Farm slug"
// @Param       identifier  path  string  true  "Cow identifier"  example(Cow-1)
// @Success     200  {object}  handlers.CowView
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/cows/{identifier} [get]
func (h *Handlers) GetCow(c *gin.Context) {
	cow, err := h.herd.GetCow(c.Request.Context(), c.Param("slug"), c.Param("identifier"))
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, CowView{Cow: *cow, Age: cow.Age(h.now())})
}

// ArchiveCow godoc
// @ID          archiveCow
// @Summary     Archive a cow
// @Description Archived cows keep their history but accept no new records. Archiving twice is a no-op.
// @Tags        Herd
// @Produce     json
// @Param       slug        path  string  true  "Farm slug"
// @Param       identifier  path  string  true  "Cow identifier"
// @Success     200  {object}  domain.Cow
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/cows/{identifier}/archive [post]
func (h *Handlers) ArchiveCow(c *gin.Context) {
	cow, err := h.herd.ArchiveCow(c.Request.Context(), c.Param("slug"), c.Param("identifier"))
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, cow)
}

// RecordMass godoc
// @ID          recordMass
// @Summary     Record a cow's weight
// @Tags        Herd
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string              false "Idempotency key for safe retries"
// @Param       slug             path    string              true  "Farm slug"
// @Param       identifier       path    string              true  "Cow identifier"
// @Param       body             body    services.MassInput  true  "Measurement"
// @Success     201  {object}  domain.CowMass
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Failure     409  {object}  handlers.ErrorResponse "Cow archived"
// @Router      /farms/{slug}/cows/{identifier}/masses [post]
func (h *Handlers) RecordMass(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	createRecord[services.MassInput, domain.CowMass](h, c, "mass", func(ctx context.Context, in services.MassInput) (*domain.CowMass, error) {
		return h.herd.RecordMass(ctx, slug, ident, in)
	})
}

// ListMasses godoc
// @ID          listMasses
// @Summary     List a cow's weights
// @Tags        Herd
// @Produce     json
// @Param       slug        path   string  true  "Farm slug"
// @Param       identifier  path   string  true  "Cow identifier"
// @Param       from        query  string  false "First date (inclusive)"  format(date)
// @Param       to          query  string  false "Last date (inclusive)"   format(date)
// @Param       page        query  int     false "Page number"             minimum(1) default(1)
// @Param       page_size   query  int     false "Items per page"          minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.CowMass]
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/cows/{identifier}/masses [get]
func (h *Handlers) ListMasses(c *gin.Context) {
	slug, ident := c.Param("slug"), c.Param("identifier")
	listRecords(h, c, func(ctx context.Context, r repo.DateRange, p services.Page) ([]domain.CowMass, int64, error) {
		return h.herd.ListMasses(ctx, slug, ident, r, p)
	})
}
