// Milk report HTTP handlers.
//
// Endpoints under /farms/{slug}/milk:
//   - GET /report       (JSON reconciliation of production against sales)
//   - GET /report.csv   (CSV export)
//   - GET /report.pdf   (PDF export)
//   - GET /leaderboard  (per-cow totals over the window)
//   - GET /snapshots    (stored nightly snapshots)
//
// All accept from/to (inclusive, YYYY-MM-DD in the report timezone). When
// omitted the window ends today and spans the configured number of days.
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mashamba/dairy-backend/internal/domain"
	"github.com/mashamba/dairy-backend/internal/milk"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/services"
)

// LeaderboardResponse lists per-cow totals, highest first.
type LeaderboardResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Cows []repo.CowYield `json:"cows"`
}

// SnapshotsResponse lists stored daily snapshots.
type SnapshotsResponse struct {
	From      string                 `json:"from"`
	To        string                 `json:"to"`
	Snapshots []domain.DailySnapshot `json:"snapshots"`
}

func reportQuery(c *gin.Context) services.ReportQuery {
	return services.ReportQuery{
		From:        c.Query("from"),
		To:          c.Query("to"),
		Cow:         strings.TrimSpace(c.Query("cow")),
		SortByTotal: c.Query("sort") == "total",
	}
}

// window resolves q up front so exports can fail with a JSON error before
// any body bytes are written.
func (h *Handlers) window(c *gin.Context, q services.ReportQuery) (from, to string, ok bool) {
	w, err := h.reports.ResolveWindow(q)
	if err != nil {
		failService(c, err, ErrCodeBadRequest)
		return "", "", false
	}
	return w.From.Format(milk.DateLayout), w.To.Format(milk.DateLayout), true
}

// MilkReport godoc
// @ID          milkReport
// @Summary     Milk report
// @Description Per-day production by cow, sales by customer, remaining milk and an oversold flag. Days are newest first.
// @Tags        Milk
// @Produce     json
// @Param       slug  path   string  true  "Farm slug"
// @Param       from  query  string  false "First date (inclusive)"  format(date)
// @Param       to    query  string  false "Last date (inclusive)"   format(date)
// @Param       cow   query  string  false "Restrict production to one cow identifier"  example(Cow-3)
// @Param       sort  query  string  false "Order cows and customers within a day"      Enums(total)
// @Success     200  {object}  milk.Report
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/milk/report [get]
func (h *Handlers) MilkReport(c *gin.Context) {
	rep, err := h.reports.MilkReport(c.Request.Context(), c.Param("slug"), reportQuery(c))
	if err != nil {
		failService(c, err, ErrCodeReportFailed)
		return
	}
	ok(c, http.StatusOK, rep)
}

// MilkReportCSV godoc
// @ID          milkReportCSV
// @Summary     Milk report as CSV
// @Tags        Milk
// @Produce     text/csv
// @Param       slug  path   string  true  "Farm slug"
// @Param       from  query  string  false "First date (inclusive)"  format(date)
// @Param       to    query  string  false "Last date (inclusive)"   format(date)
// @Param       cow   query  string  false "Restrict production to one cow identifier"
// @Success     200  {file}    file
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/milk/report.csv [get]
func (h *Handlers) MilkReportCSV(c *gin.Context) {
	slug := c.Param("slug")
	q := reportQuery(c)
	from, to, valid := h.window(c, q)
	if !valid {
		return
	}
	var buf bytes.Buffer
	if err := h.reports.ExportCSV(c.Request.Context(), slug, q, &buf); err != nil {
		failService(c, err, ErrCodeReportFailed)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-milk-%s-%s.csv"`, slug, from, to))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// MilkReportPDF godoc
// @ID          milkReportPDF
// @Summary     Milk report as PDF
// @Tags        Milk
// @Produce     application/pdf
// @Param       slug  path   string  true  "Farm slug"
// @Param       from  query  string  false "First date (inclusive)"  format(date)
// @Param       to    query  string  false "Last date (inclusive)"   format(date)
// @Param       cow   query  string  false "Restrict production to one cow identifier"
// @Success     200  {file}    file
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm or cow not found"
// @Router      /farms/{slug}/milk/report.pdf [get]
func (h *Handlers) MilkReportPDF(c *gin.Context) {
	slug := c.Param("slug")
	q := reportQuery(c)
	from, to, valid := h.window(c, q)
	if !valid {
		return
	}
	b, err := h.reports.ExportPDF(c.Request.Context(), slug, q)
	if err != nil {
		failService(c, err, ErrCodeReportFailed)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-milk-%s-%s.pdf"`, slug, from, to))
	c.Data(http.StatusOK, "application/pdf", b)
}

// MilkLeaderboard godoc
// @ID          milkLeaderboard
// @Summary     Per-cow milk totals
// @Tags        Milk
// @Produce     json
// @Param       slug  path   string  true  "Farm slug"
// @Param       from  query  string  false "First date (inclusive)"  format(date)
// @Param       to    query  string  false "Last date (inclusive)"   format(date)
// @Success     200  {object}  handlers.LeaderboardResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/milk/leaderboard [get]
func (h *Handlers) MilkLeaderboard(c *gin.Context) {
	q := reportQuery(c)
	from, to, valid := h.window(c, q)
	if !valid {
		return
	}
	cows, err := h.reports.Leaderboard(c.Request.Context(), c.Param("slug"), q)
	if err != nil {
		failService(c, err, ErrCodeReportFailed)
		return
	}
	if cows == nil {
		cows = []repo.CowYield{}
	}
	ok(c, http.StatusOK, LeaderboardResponse{From: from, To: to, Cows: cows})
}

// MilkSnapshots godoc
// @ID          milkSnapshots
// @Summary     Stored daily snapshots
// @Description Snapshots are written by the nightly job for each farm with milk activity.
// @Tags        Milk
// @Produce     json
// @Param       slug  path   string  true  "Farm slug"
// @Param       from  query  string  false "First date (inclusive)"  format(date)
// @Param       to    query  string  false "Last date (inclusive)"   format(date)
// @Success     200  {object}  handlers.SnapshotsResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Farm not found"
// @Router      /farms/{slug}/milk/snapshots [get]
func (h *Handlers) MilkSnapshots(c *gin.Context) {
	q := reportQuery(c)
	from, to, valid := h.window(c, q)
	if !valid {
		return
	}
	snaps, err := h.reports.Snapshots(c.Request.Context(), c.Param("slug"), q)
	if err != nil {
		failService(c, err, ErrCodeReportFailed)
		return
	}
	if snaps == nil {
		snaps = []domain.DailySnapshot{}
	}
	ok(c, http.StatusOK, SnapshotsResponse{From: from, To: to, Snapshots: snaps})
}
