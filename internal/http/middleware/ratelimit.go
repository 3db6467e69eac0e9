// Rate limiting for the farm API.
//
// Buckets are token buckets (golang.org/x/time/rate) keyed by the calling
// client and, for farm-scoped routes, the farm slug, so a busy parlour tablet
// on one farm does not eat into another farm's allowance. Report exports
// (report.csv, report.pdf) render whole date windows and draw from their own
// smaller bucket. Buckets live in process memory and idle ones are swept
// every few thousand lookups.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const sweepEvery = 5000

// Limit is a refill rate and bucket size.
type Limit struct {
	RPS   float64
	Burst int
}

func (l Limit) normalized() Limit {
	if l.Burst < 1 {
		l.Burst = 1
	}
	return l
}

// RateOptions configures NewRateLimiter. A zero Export limit reuses Default.
type RateOptions struct {
	Default Limit
	Export  Limit
	Key     func(*gin.Context) string // defaults to ClientKey
	IdleTTL time.Duration             // defaults to 10 minutes
}

// ClientKey identifies the caller by user ID (set by upstream auth under
// "userID") or client IP, prefixed with the farm slug when the route has one.
func ClientKey(c *gin.Context) string {
	id := "ip:" + c.ClientIP()
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			id = "user:" + s
		}
	}
	if slug := c.Param("slug"); slug != "" {
		return "farm:" + slug + "|" + id
	}
	return id
}

func isExport(c *gin.Context) bool {
	p := c.FullPath()
	return strings.HasSuffix(p, ".csv") || strings.HasSuffix(p, ".pdf")
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter holds the per-key buckets. It is safe for concurrent use.
type RateLimiter struct {
	std, export Limit
	key         func(*gin.Context) string
	ttl         time.Duration
	now         func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups int
}

// NewRateLimiter returns a limiter; install it with Handler.
func NewRateLimiter(opts RateOptions) *RateLimiter {
	rl := &RateLimiter{
		std:     opts.Default.normalized(),
		export:  opts.Export,
		key:     opts.Key,
		ttl:     opts.IdleTTL,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	if rl.export == (Limit{}) {
		rl.export = rl.std
	}
	rl.export = rl.export.normalized()
	if rl.key == nil {
		rl.key = ClientKey
	}
	if rl.ttl <= 0 {
		rl.ttl = 10 * time.Minute
	}
	return rl
}

// bucketFor returns the bucket for key, creating it with l when absent. The
// sweep runs before the lookup so a stale bucket is replaced, not refreshed.
func (rl *RateLimiter) bucketFor(key string, l Limit) *rate.Limiter {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= sweepEvery {
		rl.sweep(now)
		rl.lookups = 0
	}
	if b, ok := rl.buckets[key]; ok {
		b.seen = now
		return b.lim
	}
	lim := rate.NewLimiter(rate.Limit(l.RPS), l.Burst)
	rl.buckets[key] = &bucket{lim: lim, seen: now}
	return lim
}

// sweep drops buckets idle for at least the TTL. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.seen) >= rl.ttl {
			delete(rl.buckets, k)
		}
	}
}

// IsRateBypass reports whether IdempotencyValidator marked the request as a
// replay. Replays are answered from storage and cost no tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limits. A rejected request gets 429 with the error
// envelope and a Retry-After header of whole seconds until the next token.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		class, l := "std:", rl.std
		if isExport(c) {
			class, l = "export:", rl.export
		}
		lim := rl.bucketFor(class+rl.key(c), l)

		now := rl.now()
		r := lim.ReserveN(now, 1)
		wait := time.Duration(-1)
		if r.OK() {
			wait = r.DelayFrom(now)
		}
		if wait == 0 {
			c.Next()
			return
		}
		if r.OK() {
			r.CancelAt(now)
		}

		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}

// retryAfterSeconds rounds wait up to whole seconds, at least 1. A negative
// wait means the bucket never refills.
func retryAfterSeconds(wait time.Duration) int {
	if wait <= 0 {
		return 1
	}
	return int(math.Ceil(wait.Seconds()))
}
