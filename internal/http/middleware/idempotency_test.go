package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct{ user, farm, key string }

// stored answers true for keys in hits and records every call.
type stored struct {
	hits  map[string]bool
	calls []lookupCall
}

func (s *stored) lookup(_ context.Context, user, farm, key string, _ time.Time) (bool, error) {
	s.calls = append(s.calls, lookupCall{user, farm, key})
	return s.hits[farm+"/"+key], nil
}

func TestIdempotencyValidator_FarmRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		method     string
		path       string
		key        string
		user       string
		opts       IdempotencyOptions
		wantStatus int
		wantKey    string
		wantReplay bool
		wantCall   *lookupCall
	}{
		{name: "no key", method: http.MethodPost, path: "/farms/sunrise/sales", wantStatus: http.StatusOK},
		{name: "GET ignores key", method: http.MethodGet, path: "/farms/sunrise/sales", key: "k1", wantStatus: http.StatusOK},
		{name: "registration is unscoped", method: http.MethodPost, path: "/farms", key: "reg-1", wantStatus: http.StatusOK, wantKey: "reg-1"},
		{name: "too long", method: http.MethodPost, path: "/farms/sunrise/sales", key: strings.Repeat("k", 201), wantStatus: http.StatusBadRequest},
		{name: "bad characters", method: http.MethodPost, path: "/farms/sunrise/sales", key: "sale 1", wantStatus: http.StatusBadRequest},
		{name: "custom max", method: http.MethodPost, path: "/farms/sunrise/sales", key: "abcdef", opts: IdempotencyOptions{MaxLen: 5}, wantStatus: http.StatusBadRequest},
		{name: "custom pattern", method: http.MethodPost, path: "/farms/sunrise/sales", key: "abc", opts: IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, wantStatus: http.StatusBadRequest},
		{
			name: "miss with demo user", method: http.MethodPost, path: "/farms/sunrise/sales", key: "sale-1",
			wantStatus: http.StatusOK, wantKey: "sale-1", wantCall: &lookupCall{"demo-user", "sunrise", "sale-1"},
		},
		{
			name: "hit replays", method: http.MethodPost, path: "/farms/sunrise/cows/Cow-1/milkings", key: "milk-7", user: "u9",
			wantStatus: http.StatusOK, wantKey: "milk-7", wantReplay: true, wantCall: &lookupCall{"u9", "sunrise", "milk-7"},
		},
		{
			name: "same key on another farm", method: http.MethodPost, path: "/farms/hilltop/cows/Cow-1/milkings", key: "milk-7", user: "u9",
			wantStatus: http.StatusOK, wantKey: "milk-7", wantCall: &lookupCall{"u9", "hilltop", "milk-7"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &stored{hits: map[string]bool{"sunrise/milk-7": true}}
			r := gin.New()
			r.Use(IdempotencyValidator(tc.opts, st.lookup))
			var key string
			var replay, bypass bool
			h := func(c *gin.Context) {
				key, _ = GetIdempotencyKey(c)
				replay, bypass = IsReplay(c), IsRateBypass(c)
				c.Status(http.StatusOK)
			}
			r.POST("/farms", h)
			r.POST("/farms/:slug/sales", h)
			r.GET("/farms/:slug/sales", h)
			r.POST("/farms/:slug/cows/:identifier/milkings", h)

			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.key != "" {
				req.Header.Set(HeaderIdempotencyKey, tc.key)
			}
			if tc.user != "" {
				req.Header.Set("X-User-ID", tc.user)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status=%d want %d", w.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusBadRequest {
				if !strings.Contains(w.Body.String(), `"code":"bad_idempotency_key"`) {
					t.Fatalf("body=%s", w.Body.String())
				}
				return
			}
			if key != tc.wantKey || replay != tc.wantReplay || bypass != tc.wantReplay {
				t.Fatalf("key=%q replay=%v bypass=%v", key, replay, bypass)
			}
			switch {
			case tc.wantCall == nil && len(st.calls) != 0:
				t.Fatalf("unexpected lookup %v", st.calls)
			case tc.wantCall != nil && (len(st.calls) != 1 || st.calls[0] != *tc.wantCall):
				t.Fatalf("calls=%v want %v", st.calls, *tc.wantCall)
			}
		})
	}
}

func TestUserID_Precedence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/farms/sunrise/sales", nil)

	if got := UserID(c); got != "demo-user" {
		t.Fatalf("fallback=%q", got)
	}
	c.Request.Header.Set("X-User-ID", "  clerk-2 ")
	if got := UserID(c); got != "clerk-2" {
		t.Fatalf("header=%q", got)
	}
	c.Set("userID", "owner-1")
	if got := UserID(c); got != "owner-1" {
		t.Fatalf("context=%q", got)
	}
	c.Set("userID", 42)
	if got := UserID(c); got != "clerk-2" {
		t.Fatalf("non-string context value should fall through, got %q", got)
	}
}

func TestContextHelpers_WrongTypes(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
		t.Fatalf("empty context should report nothing")
	}
	c.Set(ctxKeyIdemKey, 123)
	c.Set(ctxKeyIdemReplay, "yes")
	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
		t.Fatalf("wrong types should read as absent")
	}
}
