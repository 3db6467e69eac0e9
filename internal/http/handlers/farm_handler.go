// Farm HTTP handlers.
//
// This file exposes REST endpoints for farm resources:
//   - POST /farms                  (register)
//   - GET  /farms                  (list, paginated, ETag support)
//   - GET  /farms/search           (directory search)
//   - GET  /farms/{slug}           (detail)
//   - PUT  /farms/{slug}           (update)
//   - PUT  /farms/{slug}/status    (activate or deactivate)
//   - POST /farms/{slug}/verify    (mark verified)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/http/middleware"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/search"
	"github.com/mashamba/dairy-backend/internal/services"
	"github.com/mashamba/dairy-backend/internal/utils"
)

// FarmStatusRequest is the JSON payload for changing a farm's status.
type FarmStatusRequest struct {
	Status string `json:"status" binding:"required" example:"active"`
}

// SearchResponse wraps directory hits for a query.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

func parseFarmStatus(raw string) (domain.FarmStatus, bool) {
	s := domain.FarmStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return s, true
	}
	return s, s.Valid()
}

// RegisterFarm godoc
// @ID          registerFarm
// @Summary     Register a farm
// @Description Creates an inactive, unverified farm. The slug is derived from the name once and never changes.
// @Tags        Farms
// @Accept      json
// @Produce     json
// @Param       body  body      services.FarmInput  true  "Farm details"
// @Success     201   {object}  domain.Farm
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     409   {object}  handlers.ErrorResponse  "Duplicate farm name"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /farms [post]
func (h *Handlers) RegisterFarm(c *gin.Context) {
	var in services.FarmInput
	if !bindJSON(c, &in) {
		return
	}
	f, err := h.farms.Register(c.Request.Context(), in)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	middleware.ObserveFarmRegistered()
	ok(c, http.StatusCreated, f)
}

// ListFarms godoc
// @ID          listFarms
// @Summary     List farms (paginated)
// @Description Returns a page of farms, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Farms
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       status         query   string  false "Filter by status"  Enums(active, inactive)
// @Param       page           query   int     false "Page number"       minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"    minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListResponse[domain.Farm]
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /farms [get]
func (h *Handlers) ListFarms(c *gin.Context) {
	ctx := c.Request.Context()
	status, valid := parseFarmStatus(c.Query("status"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be active or inactive")
		return
	}
	p := clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		if count, maxTS, err := repo.FarmsStats(ctx, h.db, status); err == nil {
			if etagMatch(c, "farms:"+string(status), count, maxTS) {
				notModified(c)
				return
			}
		}
	}

	items, total, err := h.farms.List(ctx, status, p)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, newListResponse(items, total, p))
}

// SearchFarms godoc
// @ID          searchFarms
// @Summary     Search the farm directory
// @Description Ranks active farms by word overlap with the query.
// @Tags        Farms
// @Produce     json
// @Param       q      query  string  true  "Search text"  example(green valley)
// @Param       limit  query  int     false "Max results"  minimum(1) maximum(50) default(10)
// @Success     200  {object}  handlers.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Router      /farms/search [get]
func (h *Handlers) SearchFarms(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q is required")
		return
	}
	k := utils.Clamp(utils.AtoiDefault(c.Query("limit"), 10), 1, 50)
	res := h.farms.Search(c.Request.Context(), q, k)
	if res == nil {
		res = []search.Result{}
	}
	ok(c, http.StatusOK, SearchResponse{Query: q, Results: res})
}

// GetFarm godoc
// @ID          getFarm
// @Summary     Get a farm
// @Description Returns the farm with the given slug. With public=true, inactive farms are hidden.
// @Tags        Farms
// @Produce     json
// @Param       slug    path   string  true  "Farm slug"  example(green-valley)
// @Param       public  query  bool    false "Only show active farms"
// @Success     200  {object}  domain.Farm
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug} [get]
func (h *Handlers) GetFarm(c *gin.Context) {
	f, err := h.farms.Get(c.Request.Context(), c.Param("slug"), c.Query("public") == "true")
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, f)
}

// UpdateFarm godoc
// @ID          updateFarm
// @Summary     Update a farm
// @Description Changes the given fields. Renaming keeps the original slug.
// @Tags        Farms
// @Accept      json
// @Produce     json
// @Param       slug  path  string               true  "Farm slug"
// @Param       body  body  services.FarmUpdate  true  "Fields to change"
// @Success     200  {object}  domain.Farm
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Failure     409  {object}  handlers.ErrorResponse "Duplicate farm name"
// @Router      /farms/{slug} [put]
func (h *Handlers) UpdateFarm(c *gin.Context) {
	var in services.FarmUpdate
	if !bindJSON(c, &in) {
		return
	}
	f, err := h.farms.Update(c.Request.Context(), c.Param("slug"), in)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, f)
}

// SetFarmStatus godoc
// @ID          setFarmStatus
// @Summary     Activate or deactivate a farm
// @Tags        Farms
// @Accept      json
// @Produce     json
// @Param       slug  path  string                      true  "Farm slug"
// @Param       body  body  handlers.FarmStatusRequest  true  "New status"
// @Success     200  {object}  domain.Farm
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/status [put]
func (h *Handlers) SetFarmStatus(c *gin.Context) {
	var req FarmStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, valid := parseFarmStatus(req.Status)
	if !valid || status == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be active or inactive")
		return
	}
	f, err := h.farms.SetStatus(c.Request.Context(), c.Param("slug"), status)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, f)
}

// VerifyFarm godoc
// @ID          verifyFarm
// @Summary     Mark a farm verified
// @Tags        Farms
// @Produce     json
// @Param       slug  path  string  true  "Farm slug"
// @Success     200  {object}  domain.Farm
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/verify [post]
func (h *Handlers) VerifyFarm(c *gin.Context) {
	f, err := h.farms.Verify(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, f)
}
