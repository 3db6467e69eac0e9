// Package handlers implements the farm API endpoints: farm registry, herd,
// per-cow records, finance and milk reports.
//
// Every failure is written as an ErrorResponse with a stable code:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "6f1c2d3e-8a9b-4c5d-9e0f-112233445566",
//	  "code": "cow_not_found",
//	  "message": "cow Cow-7 not found on farm sunrise-dairy"
//	}
//
// Successes are the resource itself, or a ListResponse page for
// collections.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mashamba/dairy-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Echo of X-Request-ID for matching client errors to server logs
	RequestID string `json:"request_id,omitempty" example:"6f1c2d3e-8a9b-4c5d-9e0f-112233445566"`
	// Stable, machine-readable code (see errors.go)
	Code    string `json:"code" example:"farm_not_found"`
	Message string `json:"message" example:"farm sunrise-dairy not found"`
}

// fail aborts with an ErrorResponse. 5xx responses are logged on the
// request-scoped logger so the line carries the farm and cow being addressed.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, code, msg, nil)
}

// failWith is fail with the underlying error attached to the log line. The
// error text never reaches the client.
func failWith(c *gin.Context, status int, code, msg string, err error) {
	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error()
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for callers outside the package, such as the router's
// NoRoute and NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// notModified answers a conditional GET whose If-None-Match matched the
// list's ETag. The ETag header set by etagMatch is kept.
func notModified(c *gin.Context) {
	c.AbortWithStatus(http.StatusNotModified)
}
