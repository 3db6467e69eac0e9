package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures RedactingLogger.
type RedactOptions struct {
	// MaskHeaders are replaced with "[REDACTED]" in addition to
	// Authorization, Cookie and Set-Cookie. Case-insensitive.
	MaskHeaders []string
	// MaxQuery caps the logged query string; defaults to 2048 bytes.
	MaxQuery int
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+(?:@|%40)[a-z0-9.\-]+\.[a-z]{2,}`)
	// Farm phones are 9 to 15 digits with an optional +; separators allowed.
	phoneRE = regexp.MustCompile(`(?:\+|%2B|\b)\d(?:[ .\-]?\d){8,14}\b`)
)

// Redact scrubs record ids, email addresses and phone numbers from s. Ids go
// first so the phone pattern cannot match digit runs inside a UUID.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// RedactingLogger writes one access log line per request and attaches a
// request-scoped logger, carrying the request id, farm slug and cow
// identifier, to the Gin context (see LoggerFrom) and to the request context
// for services using log.Ctx.
//
// Farm registrations and directory searches carry owner emails and phone
// numbers, so query strings and header values pass through Redact. Bodies
// are never logged. Level is error for 5xx or recorded gin errors, warn for
// 4xx, info otherwise.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{"authorization": {}, "cookie": {}, "set-cookie": {}}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}
	maxQuery := opts.MaxQuery
	if maxQuery <= 0 {
		maxQuery = maxQueryLogLength
	}

	return func(c *gin.Context) {
		start := time.Now()

		ctx := log.With().Str("request_id", requestID(c))
		if farm := c.Param(ScopeParam); farm != "" {
			ctx = ctx.Str("farm", farm)
		}
		if cow := c.Param("identifier"); cow != "" {
			ctx = ctx.Str("cow", cow)
		}
		scoped := ctx.Logger()
		c.Set(loggerKey, &scoped)
		c.Request = c.Request.WithContext(scoped.WithContext(c.Request.Context()))

		headers := zerolog.Dict()
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				headers.Str(k, "[REDACTED]")
				continue
			}
			headers.Str(k, Redact(strings.Join(vv, ", ")))
		}

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = scoped.Error().Str("errors", c.Errors.String())
		case status >= 500:
			ev = scoped.Error()
		case status >= 400:
			ev = scoped.Warn()
		default:
			ev = scoped.Info()
		}
		ev.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("query", truncate(Redact(c.Request.URL.RawQuery), maxQuery)).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int64("bytes_in", c.Request.ContentLength).
			Int("bytes_out", c.Writer.Size()).
			Bool("replayed", IsRateBypass(c)).
			Dur("latency", time.Since(start)).
			Dict("headers", headers).
			Msg("http_request")
	}
}
