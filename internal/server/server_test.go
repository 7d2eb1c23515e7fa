package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/report"
	"github.com/gopforever/ShazbotCards/internal/storage"
)

type stubSource struct {
	metas    []storage.SnapshotMeta
	listings map[int64][]health.Scored
}

func (s *stubSource) ListSnapshots(ctx context.Context, limit int) ([]storage.SnapshotMeta, error) {
	if limit > 0 && len(s.metas) > limit {
		return s.metas[:limit], nil
	}
	return s.metas, nil
}

func (s *stubSource) GetSnapshot(ctx context.Context, id int64) (storage.SnapshotMeta, []health.Scored, error) {
	for _, m := range s.metas {
		if m.ID == id {
			return m, s.listings[id], nil
		}
	}
	return storage.SnapshotMeta{}, nil, storage.ErrSnapshotNotFound
}

func (s *stubSource) LatestSnapshot(ctx context.Context) (storage.SnapshotMeta, []health.Scored, error) {
	if len(s.metas) == 0 {
		return storage.SnapshotMeta{}, nil, storage.ErrSnapshotNotFound
	}
	latest := s.metas[0]
	for _, m := range s.metas[1:] {
		if m.UploadedAt.After(latest.UploadedAt) {
			latest = m
		}
	}
	return latest, s.listings[latest.ID], nil
}

func testSource() *stubSource {
	mk := func(itemID string, impressions float64, badge health.Badge, score int) health.Scored {
		return health.Scored{
			Listing: report.Listing{
				ItemID:      itemID,
				Title:       "Topps Chrome " + itemID,
				Impressions: report.Ptr(impressions),
			},
			Badge:       badge,
			HealthScore: score,
			Sport:       "Baseball",
		}
	}
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return &stubSource{
		metas: []storage.SnapshotMeta{
			{ID: 1, UploadedAt: t1, Filename: "a.csv", ListingCount: 2},
			{ID: 2, UploadedAt: t2, Filename: "b.csv", ListingCount: 2},
		},
		listings: map[int64][]health.Scored{
			1: {
				mk("100", 500, health.BadgeGreen, 70),
				mk("200", 50, health.BadgeYellow, 40),
			},
			2: {
				mk("100", 600, health.BadgeGreen, 72),
				mk("200", 40, health.BadgeRed, 20),
			},
		},
	}
}

func newTestServer() *Server {
	return New(testSource(), zerolog.Nop())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestListSnapshots(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/snapshots")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out []snapshotJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].Filename != "b.csv" {
		t.Fatalf("unexpected snapshots: %+v", out)
	}
}

func TestSnapshotReportByID(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/snapshots/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out snapshotReport
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Snapshot.ID != 1 {
		t.Fatalf("snapshot id = %d", out.Snapshot.ID)
	}
	if out.KPIs.Listings != 2 || out.KPIs.TotalImpressions != 550 {
		t.Fatalf("unexpected KPIs: %+v", out.KPIs)
	}
	if len(out.PriorityList) != 2 {
		t.Fatalf("priority list size = %d", len(out.PriorityList))
	}
}

func TestSnapshotReportLatest(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/snapshots/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out snapshotReport
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Snapshot.ID != 2 {
		t.Fatalf("latest should resolve to snapshot 2, got %d", out.Snapshot.ID)
	}
}

func TestSnapshotNotFound(t *testing.T) {
	if rec := get(t, newTestServer().Handler(), "/api/snapshots/99"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSnapshotBadID(t *testing.T) {
	if rec := get(t, newTestServer().Handler(), "/api/snapshots/abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestKeywordsEndpoint(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/snapshots/1/keywords?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("limit=1 should cap the result, got %d entries", len(out))
	}
}

func TestTrendEndpoint(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/trend")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Series     []json.RawMessage `json:"series"`
		Comparison json.RawMessage   `json:"comparison"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Series) != 2 {
		t.Fatalf("expected 2 series points, got %d", len(out.Series))
	}
	if string(out.Comparison) == "null" {
		t.Fatal("two snapshots should yield a KPI comparison")
	}
}

func TestCompareEndpoint(t *testing.T) {
	h := newTestServer().Handler()

	rec := get(t, h, "/api/compare?from=1&to=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 comparison rows, got %d", len(rows))
	}

	if rec := get(t, h, "/api/compare?from=1"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing to should 400, got %d", rec.Code)
	}
	if rec := get(t, h, "/api/compare?from=1&to=99"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown snapshot should 404, got %d", rec.Code)
	}
}

func TestDeclinedEndpoint(t *testing.T) {
	rec := get(t, newTestServer().Handler(), "/api/declined")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one declined item, got %d", len(rows))
	}
	if rows[0]["item_id"] != "200" {
		t.Fatalf("declined item = %v, want 200", rows[0]["item_id"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer().Handler()
	get(t, h, "/healthz")
	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "shazbot_http_requests_total") {
		t.Fatal("request counter missing from metrics output")
	}
}
