// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	_ "github.com/tomtom215/bookrec/docs"
	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/middleware"
	"github.com/tomtom215/bookrec/internal/recommend"
)

type call struct {
	uid       string
	top, topN int
}

type fakeRecommender struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (f *fakeRecommender) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeRecommender) lastCall() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeRecommender) ClusterRecs(_ context.Context, uid string, top, topItems int) (*recommend.ClusterResult, error) {
	f.record(call{uid, top, topItems})
	if f.err != nil {
		return nil, f.err
	}
	if uid != "u1" {
		return nil, nil
	}
	return &recommend.ClusterResult{
		User:        map[string]float64{"family": 0.8},
		UserCluster: map[string]map[string]float64{"0": {"family": 0.7}},
		Recs: []recommend.ClusterRec{
			{ClusterID: 2, Score: 0.5, Properties: []recommend.ItemRec{{Propcode: "p2", Score: 4}}, Features: map[string]float64{"sea": 0.9}},
		},
		PrevBookingsSummary: map[string]float64{"sea": 0.6},
	}, nil
}

func (f *fakeRecommender) ItemRecs(_ context.Context, uid string, top int) (*recommend.ItemResult, error) {
	f.record(call{uid: uid, top: top})
	if f.err != nil {
		return nil, f.err
	}
	if uid != "u1" {
		return nil, nil
	}
	return &recommend.ItemResult{
		User:                map[string]float64{},
		Recs:                []recommend.ItemRec{{Propcode: "p2", Score: 4}, {Propcode: "p3", Score: 3}},
		PrevBookingsSummary: map[string]float64{},
	}, nil
}

func (f *fakeRecommender) Stats() recommend.Stats {
	return recommend.Stats{Users: 3, UserClusters: 2, BookingClusters: 3, Items: 9, ActiveItems: 9, RecsNNZ: 5}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		RateLimitReqs:     1000,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: false,
	}
}

func testRecommendConfig() config.RecommendConfig {
	return config.RecommendConfig{DefaultTopClusters: 3, DefaultTopItems: 10, MaxTop: 100}
}

func newTestServer(t *testing.T, rec Recommender, db Pinger, srv *config.ServerConfig) http.Handler {
	t.Helper()
	return NewRouter(NewHandler(rec, db, testRecommendConfig()), srv).Setup()
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: invalid JSON %q: %v", target, rec.Body.String(), err)
	}
	return rec, body
}

func TestPing(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRecommender{}, nil, testServerConfig())

	rec, body := get(t, h, "/ping")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if body["result"] != "pong" {
		t.Errorf("result = %v, want pong", body["result"])
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestClusterRecs(t *testing.T) {
	t.Parallel()
	fake := &fakeRecommender{}
	h := newTestServer(t, fake, nil, testServerConfig())

	rec, body := get(t, h, "/cluster/recs?uid=u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := fake.lastCall(); got != (call{"u1", 3, 10}) {
		t.Errorf("engine called with %+v, want defaults {u1 3 10}", got)
	}

	result, ok := body["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("result = %v, want object", body["result"])
	}
	for _, key := range []string{"user", "user_cluster", "recs", "prev_bookings_summary"} {
		if _, ok := result[key]; !ok {
			t.Errorf("result missing %q", key)
		}
	}
	recs := result["recs"].([]interface{})
	first := recs[0].(map[string]interface{})
	if first["bg_id"] != float64(2) {
		t.Errorf("bg_id = %v, want 2", first["bg_id"])
	}
	props := first["properties"].([]interface{})
	if p := props[0].(map[string]interface{}); p["propcode"] != "p2" || p["score"] != float64(4) {
		t.Errorf("properties[0] = %v", p)
	}

	get(t, h, "/cluster/recs?uid=u1&top=2&top_items=5")
	if got := fake.lastCall(); got != (call{"u1", 2, 5}) {
		t.Errorf("engine called with %+v, want {u1 2 5}", got)
	}
}

func TestItemRecs(t *testing.T) {
	t.Parallel()
	fake := &fakeRecommender{}
	h := newTestServer(t, fake, nil, testServerConfig())

	rec, body := get(t, h, "/item/recs?uid=u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := fake.lastCall(); got.top != 10 {
		t.Errorf("top = %d, want default 10", got.top)
	}
	result := body["result"].(map[string]interface{})
	if recs := result["recs"].([]interface{}); len(recs) != 2 {
		t.Errorf("len(recs) = %d, want 2", len(recs))
	}
}

func TestUnknownUserReturnsEmptyResult(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRecommender{}, nil, testServerConfig())

	for _, path := range []string{"/cluster/recs?uid=nobody", "/item/recs?uid=nobody"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		if got := rec.Body.String(); got != `{"result":{}}` {
			t.Errorf("GET %s body = %s, want {\"result\":{}}", path, got)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRecommender{}, nil, testServerConfig())

	tests := []struct {
		path    string
		message string
	}{
		{"/cluster/recs", "uid is required"},
		{"/cluster/recs?uid=u1&top=abc", "top must be an integer"},
		{"/cluster/recs?uid=u1&top_items=1.5", "top_items must be an integer"},
		{"/cluster/recs?uid=u1&top=0", "top must be at least 1"},
		{"/cluster/recs?uid=u1&top_items=101", "top_items must be at most 100"},
		{"/item/recs?uid=u1&top=-3", "top must be at least 1"},
		{"/item/recs?top=5", "uid is required"},
	}

	for _, tt := range tests {
		rec, body := get(t, h, tt.path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", tt.path, rec.Code)
			continue
		}
		apiErr, _ := body["error"].(map[string]interface{})
		if apiErr["code"] != CodeValidation {
			t.Errorf("GET %s code = %v, want %s", tt.path, apiErr["code"], CodeValidation)
		}
		if apiErr["message"] != tt.message {
			t.Errorf("GET %s message = %v, want %q", tt.path, apiErr["message"], tt.message)
		}
	}
}

func TestEngineErrorIsInternal(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRecommender{err: errors.New("dimension mismatch")}, nil, testServerConfig())

	rec, body := get(t, h, "/cluster/recs?uid=u1")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	apiErr := body["error"].(map[string]interface{})
	if apiErr["code"] != CodeInternal {
		t.Errorf("code = %v, want %s", apiErr["code"], CodeInternal)
	}
	if strings.Contains(rec.Body.String(), "dimension") {
		t.Error("internal error details leaked to client")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		db     Pinger
		status string
		dbUp   bool
	}{
		{"no database", nil, "healthy", false},
		{"database up", fakePinger{}, "healthy", true},
		{"database down", fakePinger{err: errors.New("closed")}, "degraded", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestServer(t, &fakeRecommender{}, tt.db, testServerConfig())

			_, body := get(t, h, "/health")
			result := body["result"].(map[string]interface{})
			if result["status"] != tt.status {
				t.Errorf("status = %v, want %s", result["status"], tt.status)
			}
			if result["database_connected"] != tt.dbUp {
				t.Errorf("database_connected = %v, want %v", result["database_connected"], tt.dbUp)
			}
			dataset := result["dataset"].(map[string]interface{})
			if dataset["items"] != float64(9) {
				t.Errorf("dataset.items = %v, want 9", dataset["items"])
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRecommender{}, nil, testServerConfig())

	rec, body := get(t, h, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if apiErr := body["error"].(map[string]interface{}); apiErr["code"] != CodeNotFound {
		t.Errorf("code = %v, want %s", apiErr["code"], CodeNotFound)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	srv := testServerConfig()
	srv.RateLimitReqs = 1
	h := newTestServer(t, &fakeRecommender{}, nil, srv)

	first, _ := get(t, h, "/item/recs?uid=u1")
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.Code)
	}
	second, body := get(t, h, "/item/recs?uid=u1")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	if apiErr := body["error"].(map[string]interface{}); apiErr["code"] != CodeRateLimited {
		t.Errorf("code = %v, want %s", apiErr["code"], CodeRateLimited)
	}

	// Monitoring endpoints are outside the limited group.
	if rec, _ := get(t, h, "/ping"); rec.Code != http.StatusOK {
		t.Errorf("/ping status = %d, want 200", rec.Code)
	}

	srv.RateLimitDisabled = true
	open := newTestServer(t, &fakeRecommender{}, nil, srv)
	for i := 0; i < 3; i++ {
		if rec, _ := get(t, open, "/item/recs?uid=u1"); rec.Code != http.StatusOK {
			t.Errorf("disabled limiter request %d status = %d", i, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRecommender{}, nil, testServerConfig())

	get(t, h, "/item/recs?uid=u1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `bookrec_api_requests_total{endpoint="/item/recs",method="GET",status="200"}`) {
		t.Error("/metrics missing the item recs request counter")
	}
}

func TestSwaggerDocs(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, &fakeRecommender{}, nil, testServerConfig())

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	rec, _ := getRaw(t, h, "/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	if doc.Info.Title != "Bookrec API" {
		t.Errorf("title = %q, want Bookrec API", doc.Info.Title)
	}
	for _, path := range []string{"/cluster/recs", "/item/recs", "/ping", "/health"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("doc.json missing path %s", path)
		}
	}

	rec, body := getRaw(t, h, "/swagger/index.html")
	if rec.Code != http.StatusOK || !strings.Contains(body, "swagger-ui") {
		t.Errorf("index.html status = %d, want the swagger UI page", rec.Code)
	}
}

func getRaw(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec, rec.Body.String()
}
