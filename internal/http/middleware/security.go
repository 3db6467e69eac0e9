// Security and cache headers for the farm API.
//
// Farm contact details, finance records and report exports are private to the
// farm, so their responses are never stored by shared caches. Directory and
// herd reads carry weak ETags and are marked no-cache so clients revalidate
// with If-None-Match instead of serving stale counts.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoStore    = "private, no-store"
	CacheRevalidate = "no-cache"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	EnableHSTS   bool          // only when traffic is HTTPS end-to-end
	HSTSMaxAge   time.Duration // defaults to 180 days
	EnablePolicy bool          // Permissions-Policy and X-Permitted-Cross-Domain-Policies

	// CachePolicy picks the Cache-Control value for a request; "" leaves the
	// header alone. Defaults to FarmCachePolicy.
	CachePolicy func(*gin.Context) string
}

// privateSegments are route segments whose responses must not be stored.
var privateSegments = []string{"/finance/", "/expenses", "/revenue", "/sales", "/inventory"}

// FarmCachePolicy marks writes, finance routes and report exports no-store
// and every other matched GET as revalidate. Unmatched routes get nothing.
func FarmCachePolicy(c *gin.Context) string {
	p := c.FullPath()
	if p == "" {
		return ""
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return CacheNoStore
	}
	if strings.HasSuffix(p, ".csv") || strings.HasSuffix(p, ".pdf") {
		return CacheNoStore
	}
	for _, seg := range privateSegments {
		if strings.Contains(p, seg) {
			return CacheNoStore
		}
	}
	return CacheRevalidate
}

// SecurityHeaders sets nosniff, frame denial and referrer policy on every
// response, the optional browser feature policy, HSTS on HTTPS requests
// when enabled, and Cache-Control from the cache policy. It also makes sure
// browsers can read X-Request-ID.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"
	policy := opt.CachePolicy
	if policy == nil {
		policy = FarmCachePolicy
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		switch cc := policy(c); cc {
		case "":
		case CacheNoStore:
			h.Set("Cache-Control", cc)
			h.Set("Pragma", "no-cache")
		default:
			h.Set("Cache-Control", cc)
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		exposeHeader(h, requestIDHeader)
		c.Next()
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	if h.Get(name) == "" {
		return
	}
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	switch {
	case cur == "":
		h.Set(key, name)
	case !strings.Contains(cur, name):
		h.Set(key, cur+", "+name)
	}
}

// isHTTPS reports whether the request arrived over TLS directly or through a
// proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
