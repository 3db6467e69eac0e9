package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/http/middleware"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/services"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func stopClock() time.Time { return testNow }

type testAPI struct {
	r   *gin.Engine
	db  *gorm.DB
	svc struct {
		farms   *services.FarmService
		herd    *services.HerdService
		records *services.RecordService
		finance *services.FinanceService
		reports *services.ReportService
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenDatabase(repo.Options{Path: filepath.Join(t.TempDir(), "api.db"), Silent: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	api := &testAPI{r: gin.New(), db: db}
	api.svc.farms = services.NewFarmService(db, 0.1)
	api.svc.herd = services.NewHerdService(db)
	api.svc.records = services.NewRecordService(db)
	api.svc.finance = services.NewFinanceService(db)
	api.svc.reports = services.NewReportService(db, time.UTC, 30)
	api.svc.farms.Now = stopClock
	api.svc.herd.Now = stopClock
	api.svc.records.Now = stopClock
	api.svc.finance.Now = stopClock
	api.svc.reports.Now = stopClock

	h := New(Deps{
		Farms:   api.svc.farms,
		Herd:    api.svc.herd,
		Records: api.svc.records,
		Finance: api.svc.finance,
		Reports: api.svc.reports,
		DB:      db,
		Now:     stopClock,
	})

	r := api.r
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.POST("/farms", h.RegisterFarm)
	r.GET("/farms", h.ListFarms)
	r.GET("/farms/search", h.SearchFarms)
	r.GET("/farms/:slug", h.GetFarm)
	r.PUT("/farms/:slug", h.UpdateFarm)
	r.PUT("/farms/:slug/status", h.SetFarmStatus)
	r.POST("/farms/:slug/verify", h.VerifyFarm)
	r.POST("/farms/:slug/cows", h.AddCow)
	r.GET("/farms/:slug/cows", h.ListCows)
	r.GET("/farms/:slug/cows/:identifier", h.GetCow)
	r.POST("/farms/:slug/cows/:identifier/archive", h.ArchiveCow)
	r.POST("/farms/:slug/cows/:identifier/masses", h.RecordMass)
	r.GET("/farms/:slug/cows/:identifier/masses", h.ListMasses)
	r.POST("/farms/:slug/cows/:identifier/milkings", h.AddMilking)
	r.GET("/farms/:slug/cows/:identifier/milkings", h.ListMilkings)
	r.POST("/farms/:slug/cows/:identifier/breedings", h.AddBreeding)
	r.GET("/farms/:slug/cows/:identifier/breedings", h.ListBreedings)
	r.POST("/farms/:slug/cows/:identifier/calvings", h.AddCalving)
	r.GET("/farms/:slug/cows/:identifier/calvings", h.ListCalvings)
	r.POST("/farms/:slug/cows/:identifier/health", h.AddHealth)
	r.GET("/farms/:slug/cows/:identifier/health", h.ListHealth)
	r.POST("/farms/:slug/inventory", h.AddInventory)
	r.GET("/farms/:slug/inventory", h.ListInventory)
	r.POST("/farms/:slug/expenses", h.AddExpense)
	r.GET("/farms/:slug/expenses", h.ListExpenses)
	r.POST("/farms/:slug/revenue", h.AddRevenue)
	r.GET("/farms/:slug/revenue", h.ListRevenue)
	r.POST("/farms/:slug/sales", h.RecordSale)
	r.GET("/farms/:slug/sales", h.ListSales)
	r.GET("/farms/:slug/finance/summary", h.FinanceSummary)
	r.GET("/farms/:slug/milk/report", h.MilkReport)
	r.GET("/farms/:slug/milk/report.csv", h.MilkReportCSV)
	r.GET("/farms/:slug/milk/report.pdf", h.MilkReportPDF)
	r.GET("/farms/:slug/milk/leaderboard", h.MilkLeaderboard)
	r.GET("/farms/:slug/milk/snapshots", h.MilkSnapshots)
	return api
}

func (a *testAPI) do(method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testAPI) mustDo(t *testing.T, want int, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	w := a.do(method, path, body, hdr...)
	if w.Code != want {
		t.Fatalf("%s %s = %d, want %d: %s", method, path, w.Code, want, w.Body.String())
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, w).Code
}

// seedFarm registers a farm with one female and one male cow.
func (a *testAPI) seedFarm(t *testing.T) string {
	t.Helper()
	a.mustDo(t, http.StatusCreated, http.MethodPost, "/farms", `{"name":"Sunrise Dairy"}`)
	a.mustDo(t, http.StatusCreated, http.MethodPost, "/farms/sunrise-dairy/cows", `{"name_or_tag":"Bella","gender":"female","date_of_birth":"2021-03-01"}`)
	a.mustDo(t, http.StatusCreated, http.MethodPost, "/farms/sunrise-dairy/cows", `{"name_or_tag":"Bruno","gender":"male"}`)
	return "sunrise-dairy"
}

func TestFailService_MapsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&services.ValidationError{Field: "name", Message: "is required"}, http.StatusBadRequest, ErrCodeValidation},
		{services.ErrFarmNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrCowNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrDuplicateFarmName, http.StatusConflict, ErrCodeConflict},
		{services.ErrCowArchived, http.StatusConflict, ErrCodeCowArchived},
		{errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeCreateFailed},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		failService(c, tc.err, ErrCodeCreateFailed)
		if w.Code != tc.status || errorCode(t, w) != tc.code {
			t.Fatalf("%v: got %d %s", tc.err, w.Code, w.Body.String())
		}
	}
}

func TestClampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]services.Page{
		"":                         {Page: 1, Size: 20},
		"?page=3&page_size=5":      {Page: 3, Size: 5},
		"?page=-1&page_size=0":     {Page: 1, Size: 1},
		"?page=x&page_size=100000": {Page: 1, Size: 100},
	}
	for q, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+q, nil)
		if got := clampPagination(c); got != want {
			t.Fatalf("%q: got %+v want %+v", q, got, want)
		}
	}
}

func TestFarms_RegisterListAndETag(t *testing.T) {
	api := newTestAPI(t)

	w := api.mustDo(t, http.StatusCreated, http.MethodPost, "/farms", `{"name":"Café Olé Farm","phone":"+254712345678"}`)
	if got := decode[map[string]any](t, w)["slug"]; got != "cafe-ole-farm" {
		t.Fatalf("slug = %v", got)
	}

	w = api.do(http.MethodPost, "/farms", `{"name":"Café Olé Farm"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate name = %d", w.Code)
	}
	w = api.do(http.MethodPost, "/farms", `{"name":"X","email":"not-an-email"}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != ErrCodeValidation {
		t.Fatalf("bad email = %d %s", w.Code, w.Body.String())
	}
	if w = api.do(http.MethodPost, "/farms", `{`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json = %d", w.Code)
	}

	w = api.mustDo(t, http.StatusOK, http.MethodGet, "/farms?page_size=10", "")
	list := decode[ListResponse[map[string]any]](t, w)
	if list.Pagination.Total != 1 || len(list.Items) != 1 || list.Pagination.HasNext {
		t.Fatalf("list = %+v", list.Pagination)
	}
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"farms:`) {
		t.Fatalf("etag = %q", etag)
	}
	api.mustDo(t, http.StatusNotModified, http.MethodGet, "/farms?page_size=10", "", "If-None-Match", etag)

	if w = api.do(http.MethodGet, "/farms?status=bogus", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter = %d", w.Code)
	}
}

func TestFarms_LifecycleAndSearch(t *testing.T) {
	api := newTestAPI(t)
	api.mustDo(t, http.StatusCreated, http.MethodPost, "/farms", `{"name":"Green Valley Dairy","location":"Nakuru"}`)

	// Inactive farms are hidden from the public view and from search.
	api.mustDo(t, http.StatusNotFound, http.MethodGet, "/farms/green-valley-dairy?public=true", "")
	api.mustDo(t, http.StatusOK, http.MethodGet, "/farms/green-valley-dairy", "")
	w := api.mustDo(t, http.StatusOK, http.MethodGet, "/farms/search?q=green+valley", "")
	if res := decode[SearchResponse](t, w); len(res.Results) != 0 {
		t.Fatalf("inactive farm searchable: %+v", res)
	}

	if w = api.do(http.MethodPut, "/farms/green-valley-dairy/status", `{"status":"paused"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad status = %d", w.Code)
	}
	api.mustDo(t, http.StatusOK, http.MethodPut, "/farms/green-valley-dairy/status", `{"status":"active"}`)
	w = api.mustDo(t, http.StatusOK, http.MethodPost, "/farms/green-valley-dairy/verify", "")
	if decode[map[string]any](t, w)["verified"] != true {
		t.Fatalf("verify: %s", w.Body.String())
	}

	w = api.mustDo(t, http.StatusOK, http.MethodGet, "/farms/search?q=green+valley", "")
	res := decode[SearchResponse](t, w)
	if len(res.Results) != 1 || res.Results[0].Key != "green-valley-dairy" {
		t.Fatalf("search = %+v", res)
	}
	api.mustDo(t, http.StatusBadRequest, http.MethodGet, "/farms/search?q=", "")

	// Renaming keeps the slug.
	w = api.mustDo(t, http.StatusOK, http.MethodPut, "/farms/green-valley-dairy", `{"name":"Blue Valley Dairy"}`)
	got := decode[map[string]any](t, w)
	if got["name"] != "Blue Valley Dairy" || got["slug"] != "green-valley-dairy" {
		t.Fatalf("update = %v", got)
	}
	api.mustDo(t, http.StatusNotFound, http.MethodPut, "/farms/missing", `{"name":"Nope"}`)
}

func TestHerd_CowsAndMasses(t *testing.T) {
	api := newTestAPI(t)
	slug := api.seedFarm(t)

	w := api.mustDo(t, http.StatusOK, http.MethodGet, "/farms/"+slug+"/cows/Cow-1", "")
	view := decode[map[string]any](t, w)
	if view["name_or_tag"] != "Bella" || view["age"] != "3 years, 3 months" {
		t.Fatalf("cow view = %v", view)
	}
	api.mustDo(t, http.StatusNotFound, http.MethodGet, "/farms/"+slug+"/cows/Cow-99", "")

	w = api.mustDo(t, http.StatusOK, http.MethodGet, "/farms/"+slug+"/cows?gender=male", "")
	if l := decode[ListResponse[map[string]any]](t, w); l.Pagination.Total != 1 || l.Items[0]["identifier"] != "Cow-2" {
		t.Fatalf("male cows = %+v", l)
	}
	etag := w.Header().Get("ETag")
	api.mustDo(t, http.StatusNotModified, http.MethodGet, "/farms/"+slug+"/cows?gender=male", "", "If-None-Match", etag)
	api.mustDo(t, http.StatusBadRequest, http.MethodGet, "/farms/"+slug+"/cows?gender=other", "")

	api.mustDo(t, http.StatusCreated, http.MethodPost, "/farms/"+slug+"/cows/Cow-1/masses", `{"mass":"412.5","measured_on":"2024-06-01"}`)
	api.mustDo(t, http.StatusCreated, http.MethodPost, "/farms/"+slug+"/cows/Cow-1/masses", `{"mass":"420","measured_on":"2024-06-14"}`)
	w = api.mustDo(t, http.StatusOK, http.MethodGet, "/farms/"+slug+"/cows/Cow-1/masses?from=2024-06-10&to=2024-06-14", "")
	if l := decode[ListResponse[map[string]any]](t, w); l.Pagination.Total != 1 {
		t.Fatalf("masses in range = %d", l.Pagination.Total)
	}
	w = api.do(http.MethodGet, "/farms/"+slug+"/cows/Cow-1/masses?from=2024-06-14&to=2024-06-01", "")
	if w.Code != http.StatusBadRequest || errorCode(t, w) != ErrCodeValidation {
		t.Fatalf("inverted range = %d %s", w.Code, w.Body.String())
	}
	api.mustDo(t, http.StatusBadRequest, http.MethodGet, "/farms/"+slug+"/cows/Cow-1/masses?from=14-06-2024", "")

	// Archived cows keep their history but refuse new records.
	api.mustDo(t, http.StatusOK, http.MethodPost, "/farms/"+slug+"/cows/Cow-1/archive", "")
	api.mustDo(t, http.StatusOK, http.MethodPost, "/farms/"+slug+"/cows/Cow-1/archive", "")
	w = api.do(http.MethodPost, "/farms/"+slug+"/cows/Cow-1/masses", `{"mass":"430","measured_on":"2024-06-15"}`)
	if w.Code != http.StatusConflict || errorCode(t, w) != ErrCodeCowArchived {
		t.Fatalf("archived mass = %d %s", w.Code, w.Body.String())
	}
}

func TestRecords_FemaleOnlyConstraint(t *testing.T) {
	api := newTestAPI(t)
	slug := api.seedFarm(t)
	cow := func(id, kind string) string { return "/farms/" + slug + "/cows/" + id + "/" + kind }

	bodies := map[string]string{
		"milkings":  `{"yield":"8.25","milked_at":"2024-06-14T06:00:00Z"}`,
		"breedings": `{"method":"AI","bull_code":"B-17","expected_calving_date":"2025-03-20"}`,
		"calvings":  `{"calving_date":"2024-06-01","calf_details":"heifer, 32kg"}`,
	}
	for kind, body := range bodies {
		api.mustDo(t, http.StatusCreated, http.MethodPost, cow("Cow-1", kind), body)
		w := api.do(http.MethodPost, cow("Cow-2", kind), body)
		if w.Code != http.StatusBadRequest || errorCode(t, w) != ErrCodeValidation {
			t.Fatalf("%s on male cow = %d %s", kind, w.Code, w.Body.String())
		}
		w = api.mustDo(t, http.StatusOK, http.MethodGet, cow("Cow-1", kind), "")
		if l := decode[ListResponse[map[string]any]](t, w); l.Pagination.Total != 1 {
			t.Fatalf("%s list total = %d", kind, l.Pagination.Total)
		}
	}

	// Health applies to every cow.
	health := `{"health_issue":"lameness","treatment":"hoof trim","treatment_date":"2024-06-12","vet_name":"Dr. Otieno"}`
	api.mustDo(t, http.StatusCreated, http.MethodPost, cow("Cow-2", "health"), health)
	api.mustDo(t, http.StatusOK, http.MethodGet, cow("Cow-2", "health")+"?from=2024-06-01", "")

	if w := api.do(http.MethodPost, cow("Cow-1", "milkings"), `{"yield":"-1","milked_at":"2024-06-14T06:00:00Z"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("negative yield = %d", w.Code)
	}
	if w := api.do(http.MethodPost, cow("Cow-1", "breedings"), `{"method":"Cloning"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad method = %d", w.Code)
	}
}

func TestCreateRecord_IdempotentReplay(t *testing.T) {
	api := newTestAPI(t)
	slug := api.seedFarm(t)
	path := "/farms/" + slug + "/sales"
	body := `{"customer":"Kiambu Co-op","quantity":"20","unit_price":"45.50","sold_at":"2024-06-14T17:00:00Z"}`

	first := api.mustDo(t, http.StatusCreated, http.MethodPost, path, body, middleware.HeaderIdempotencyKey, "sale-1", "X-User-ID", "u1")
	again := api.mustDo(t, http.StatusCreated, http.MethodPost, path, body, middleware.HeaderIdempotencyKey, "sale-1", "X-User-ID", "u1")
	if again.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("expected replay header")
	}
	if decode[map[string]any](t, first)["id"] != decode[map[string]any](t, again)["id"] {
		t.Fatalf("replay returned a different record")
	}

	// Another user with the same key gets a fresh record.
	other := api.mustDo(t, http.StatusCreated, http.MethodPost, path, body, middleware.HeaderIdempotencyKey, "sale-1", "X-User-ID", "u2")
	if other.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("unexpected replay for other user")
	}

	// Reusing the key for a different kind of record is a conflict.
	w := api.do(http.MethodPost, "/farms/"+slug+"/expenses", `{"name":"feed","cost":"100","date":"2024-06-14"}`, middleware.HeaderIdempotencyKey, "sale-1", "X-User-ID", "u1")
	if w.Code != http.StatusConflict {
		t.Fatalf("kind mismatch = %d %s", w.Code, w.Body.String())
	}

	w = api.mustDo(t, http.StatusOK, http.MethodGet, path, "")
	if l := decode[ListResponse[map[string]any]](t, w); l.Pagination.Total != 2 {
		t.Fatalf("sales stored = %d, want 2", l.Pagination.Total)
	}
}

func TestFinance_Summary(t *testing.T) {
	api := newTestAPI(t)
	slug := api.seedFarm(t)
	base := "/farms/" + slug

	api.mustDo(t, http.StatusCreated, http.MethodPost, base+"/inventory", `{"item_name":"dairy meal","quantity":10,"unit_value":"2500","acquired_on":"2024-06-02"}`)
	api.mustDo(t, http.StatusCreated, http.MethodPost, base+"/expenses", `{"name":"dairy meal","cost":"1200","date":"2024-06-02","category":"feed"}`)
	api.mustDo(t, http.StatusCreated, http.MethodPost, base+"/expenses", `{"name":"vet visit","cost":"300","date":"2024-06-03","category":"health"}`)
	api.mustDo(t, http.StatusCreated, http.MethodPost, base+"/revenue", `{"name":"manure","amount":"150","date":"2024-06-04"}`)
	api.mustDo(t, http.StatusCreated, http.MethodPost, base+"/sales", `{"customer":"hotel","quantity":"40","unit_price":"50","sold_at":"2024-06-05T08:00:00Z"}`)

	w := api.mustDo(t, http.StatusOK, http.MethodGet, base+"/finance/summary?from=2024-06-01&to=2024-06-30", "")
	sum := decode[map[string]any](t, w)
	if sum["total_expenses"] != "1500" || sum["revenue"] != "150" || sum["sales_income"] != "2000" || sum["profit"] != "650" {
		t.Fatalf("summary = %v", sum)
	}
	if sum["from"] != "2024-06-01" || sum["to"] != "2024-06-30" {
		t.Fatalf("summary range = %v..%v", sum["from"], sum["to"])
	}

	api.mustDo(t, http.StatusOK, http.MethodGet, base+"/inventory", "")
	api.mustDo(t, http.StatusOK, http.MethodGet, base+"/expenses?to=2024-06-02", "")
	api.mustDo(t, http.StatusOK, http.MethodGet, base+"/revenue", "")
	api.mustDo(t, http.StatusNotFound, http.MethodGet, "/farms/missing/finance/summary", "")
}

func TestReports_JSONExportsAndLeaderboard(t *testing.T) {
	api := newTestAPI(t)
	slug := api.seedFarm(t)
	base := "/farms/" + slug

	api.mustDo(t, http.StatusCreated, http.MethodPost, base+"/cows/Cow-1/milkings", `{"yield":"10","milked_at":"2024-06-14T06:00:00Z"}`)
	api.mustDo(t, http.StatusCreated, http.MethodPost, base+"/cows/Cow-1/milkings", `{"yield":"5","milked_at":"2024-06-14T17:00:00Z"}`)
	api.mustDo(t, http.StatusCreated, http.MethodPost, base+"/sales", `{"customer":"hotel","quantity":"18","sold_at":"2024-06-14T18:00:00Z"}`)

	w := api.mustDo(t, http.StatusOK, http.MethodGet, base+"/milk/report?from=2024-06-14&to=2024-06-14", "")
	rep := decode[struct {
		Days []struct {
			Date      string `json:"date"`
			Total     string `json:"total"`
			Remaining string `json:"remaining"`
			Oversold  bool   `json:"oversold"`
		} `json:"days"`
	}](t, w)
	if len(rep.Days) != 1 || rep.Days[0].Total != "15" || rep.Days[0].Remaining != "-3" || !rep.Days[0].Oversold {
		t.Fatalf("report = %+v", rep)
	}

	api.mustDo(t, http.StatusBadRequest, http.MethodGet, base+"/milk/report?from=yesterday", "")
	api.mustDo(t, http.StatusNotFound, http.MethodGet, base+"/milk/report?cow=Cow-42", "")

	w = api.mustDo(t, http.StatusOK, http.MethodGet, base+"/milk/report.csv?from=2024-06-14&to=2024-06-14", "")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("csv content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "sunrise-dairy-milk-2024-06-14-2024-06-14.csv") {
		t.Fatalf("csv disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "2024-06-14,Cow-1,Bella,15.00") {
		t.Fatalf("csv body = %q", w.Body.String())
	}

	w = api.mustDo(t, http.StatusOK, http.MethodGet, base+"/milk/report.pdf?from=2024-06-14&to=2024-06-14", "")
	if w.Header().Get("Content-Type") != "application/pdf" || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf = %q", w.Header().Get("Content-Type"))
	}
	api.mustDo(t, http.StatusBadRequest, http.MethodGet, base+"/milk/report.pdf?from=2024-06-15&to=2024-06-14", "")

	w = api.mustDo(t, http.StatusOK, http.MethodGet, base+"/milk/leaderboard?from=2024-06-01&to=2024-06-15", "")
	lb := decode[LeaderboardResponse](t, w)
	if lb.From != "2024-06-01" || len(lb.Cows) != 1 || lb.Cows[0].Identifier != "Cow-1" {
		t.Fatalf("leaderboard = %+v", lb)
	}

	w = api.mustDo(t, http.StatusOK, http.MethodGet, base+"/milk/snapshots", "")
	if s := decode[SnapshotsResponse](t, w); len(s.Snapshots) != 0 || s.To != "2024-06-15" {
		t.Fatalf("snapshots = %+v", s)
	}
}
