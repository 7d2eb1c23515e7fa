package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/keywords"
	"github.com/gopforever/ShazbotCards/internal/report"
	"github.com/gopforever/ShazbotCards/internal/storage"
	"github.com/gopforever/ShazbotCards/internal/timeline"
)

const defaultListLimit = 50

type snapshotReport struct {
	Snapshot     snapshotJSON          `json:"snapshot"`
	KPIs         health.KPIs           `json:"kpis"`
	Promoted     health.PromotedSplit  `json:"promoted_split"`
	Sports       []health.SportStats   `json:"sports"`
	PriorityList []health.Scored       `json:"priority_list"`
	Trending     health.TrendingReport `json:"trending"`
}

type snapshotJSON struct {
	ID           int64          `json:"id"`
	UploadedAt   string         `json:"uploaded_at"`
	Filename     string         `json:"filename"`
	ListingCount int            `json:"listing_count"`
	Period       *report.Period `json:"period,omitempty"`
}

func toSnapshotJSON(meta storage.SnapshotMeta) snapshotJSON {
	out := snapshotJSON{
		ID:           meta.ID,
		UploadedAt:   meta.UploadedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Filename:     meta.Filename,
		ListingCount: meta.ListingCount,
	}
	if meta.PeriodStart != nil && meta.PeriodEnd != nil {
		out.Period = &report.Period{Start: *meta.PeriodStart, End: *meta.PeriodEnd}
	}
	return out
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	metas, err := s.source.ListSnapshots(r.Context(), limit)
	if err != nil {
		s.serveError(w, err)
		return
	}
	out := make([]snapshotJSON, 0, len(metas))
	for _, m := range metas {
		out = append(out, toSnapshotJSON(m))
	}
	writeJSON(w, out)
}

func (s *Server) handleSnapshotReport(w http.ResponseWriter, r *http.Request) {
	meta, listings, ok := s.resolveSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snapshotReport{
		Snapshot:     toSnapshotJSON(meta),
		KPIs:         health.ComputeKPIs(listings),
		Promoted:     health.ComputePromotedSplit(listings),
		Sports:       health.ComputeSportBreakdown(listings),
		PriorityList: health.ComputePriorityList(listings),
		Trending:     health.ComputeTrending(listings),
	})
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	_, listings, ok := s.resolveSnapshot(w, r)
	if !ok {
		return
	}
	aggs := keywords.ClassifyTrends(keywords.Analyze(listings))
	if limit := queryInt(r, "limit", 0); limit > 0 && len(aggs) > limit {
		aggs = aggs[:limit]
	}
	writeJSON(w, aggs)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.loadTimeline(r)
	if err != nil {
		s.serveError(w, err)
		return
	}
	series := timeline.AggregateTrend(snapshots)
	writeJSON(w, map[string]any{
		"series":     series,
		"comparison": timeline.CompareKPIs(series),
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	fromID, err1 := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
	toID, err2 := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "from and to snapshot ids required", http.StatusBadRequest)
		return
	}

	fromMeta, fromListings, err := s.source.GetSnapshot(r.Context(), fromID)
	if err != nil {
		s.serveError(w, err)
		return
	}
	toMeta, toListings, err := s.source.GetSnapshot(r.Context(), toID)
	if err != nil {
		s.serveError(w, err)
		return
	}

	rows := timeline.Compare(
		timeline.Snapshot{ID: fromMeta.ID, UploadedAt: fromMeta.UploadedAt, Listings: fromListings},
		timeline.Snapshot{ID: toMeta.ID, UploadedAt: toMeta.UploadedAt, Listings: toListings},
	)
	writeJSON(w, rows)
}

func (s *Server) handleDeclined(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.loadTimeline(r)
	if err != nil {
		s.serveError(w, err)
		return
	}
	writeJSON(w, timeline.Declined(timeline.Build(snapshots)))
}

func (s *Server) resolveSnapshot(w http.ResponseWriter, r *http.Request) (storage.SnapshotMeta, []health.Scored, bool) {
	idParam := chi.URLParam(r, "id")
	if idParam == "latest" {
		meta, listings, err := s.source.LatestSnapshot(r.Context())
		if err != nil {
			s.serveError(w, err)
			return storage.SnapshotMeta{}, nil, false
		}
		return meta, listings, true
	}

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		http.Error(w, "bad snapshot id", http.StatusBadRequest)
		return storage.SnapshotMeta{}, nil, false
	}
	meta, listings, err := s.source.GetSnapshot(r.Context(), id)
	if err != nil {
		s.serveError(w, err)
		return storage.SnapshotMeta{}, nil, false
	}
	return meta, listings, true
}

func (s *Server) loadTimeline(r *http.Request) ([]timeline.Snapshot, error) {
	metas, err := s.source.ListSnapshots(r.Context(), 1000)
	if err != nil {
		return nil, err
	}
	snapshots := make([]timeline.Snapshot, 0, len(metas))
	for _, meta := range metas {
		_, listings, err := s.source.GetSnapshot(r.Context(), meta.ID)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, timeline.Snapshot{
			ID:         meta.ID,
			UploadedAt: meta.UploadedAt,
			Filename:   meta.Filename,
			Listings:   listings,
		})
	}
	return snapshots, nil
}

func (s *Server) serveError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}
	s.logger.Error().Err(err).Msg("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
