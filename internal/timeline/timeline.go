// Package timeline joins catalog snapshots by item ID and computes
// period-over-period movement with strict null semantics.
package timeline

import (
	"sort"
	"time"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/report"
)

// Snapshot is one full catalog export at a point in time.
type Snapshot struct {
	ID         int64           `json:"id"`
	UploadedAt time.Time       `json:"uploaded_at"`
	Filename   string          `json:"filename"`
	Period     *report.Period  `json:"period,omitempty"`
	Listings   []health.Scored `json:"listings"`
}

// MetricRecord is a single snapshot-restricted observation of one item.
type MetricRecord struct {
	SnapshotID          int64        `json:"snapshot_id"`
	UploadedAt          time.Time    `json:"uploaded_at"`
	Impressions         *float64     `json:"impressions"`
	PromotedImpressions *float64     `json:"promoted_impressions"`
	OrganicImpressions  *float64     `json:"organic_impressions"`
	CTR                 *float64     `json:"ctr"`
	PageViews           *float64     `json:"page_views"`
	Sold                *float64     `json:"sold"`
	HealthScore         int          `json:"health_score"`
	Badge               health.Badge `json:"badge"`
}

// Entry is one item's chronological history. Snapshots the item was
// absent from contribute no record; there is no interpolation.
type Entry struct {
	ItemID  string         `json:"item_id"`
	Title   string         `json:"title"`
	Records []MetricRecord `json:"records"`
}

// Build full-joins every snapshot's listings by item ID. Snapshots are
// ordered by upload time with the snapshot ID breaking ties, so the
// resulting histories are deterministic. Entry titles track the most
// recent snapshot containing the item.
func Build(snapshots []Snapshot) map[string]*Entry {
	ordered := make([]Snapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].UploadedAt.Equal(ordered[j].UploadedAt) {
			return ordered[i].UploadedAt.Before(ordered[j].UploadedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	entries := make(map[string]*Entry)
	for _, snap := range ordered {
		for _, l := range snap.Listings {
			e, ok := entries[l.ItemID]
			if !ok {
				e = &Entry{ItemID: l.ItemID}
				entries[l.ItemID] = e
			}
			e.Title = l.Title
			e.Records = append(e.Records, MetricRecord{
				SnapshotID:          snap.ID,
				UploadedAt:          snap.UploadedAt,
				Impressions:         l.Impressions,
				PromotedImpressions: l.PromotedImpressions,
				OrganicImpressions:  l.OrganicImpressions,
				CTR:                 l.ClickThroughRate,
				PageViews:           l.PageViews,
				Sold:                l.QuantitySold,
				HealthScore:         l.HealthScore,
				Badge:               l.Badge,
			})
		}
	}
	return entries
}

// PctChange is the canonical null-safe percentage change used across
// the trend engine: nil when either input is null, 0 when both are
// exactly zero, nil when the baseline is zero and the new value is not
// (change from a zero baseline is undefined, not infinite), otherwise
// (b-a)/|a|*100.
func PctChange(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	if *a == 0 && *b == 0 {
		zero := 0.0
		return &zero
	}
	if *a == 0 {
		return nil
	}
	abs := *a
	if abs < 0 {
		abs = -abs
	}
	v := (*b - *a) / abs * 100
	return &v
}

// Change describes the movement between an item's two most recent
// snapshots.
type Change struct {
	ItemID            string       `json:"item_id"`
	Title             string       `json:"title"`
	ImpressionsChange *float64     `json:"impressions_change"`
	CTRChange         *float64     `json:"ctr_change"`
	PageViewsChange   *float64     `json:"page_views_change"`
	SoldChange        *float64     `json:"sold_change"`
	HealthDelta       int          `json:"health_delta"`
	PreviousBadge     health.Badge `json:"previous_badge"`
	CurrentBadge      health.Badge `json:"current_badge"`
	IsNewIssue        bool         `json:"is_new_issue"`
	IsDeclined        bool         `json:"is_declined"`
	LatestImpressions *float64     `json:"latest_impressions"`
}

// ComputeChange compares only the entry's two most recent records.
// Entries observed fewer than twice have no change and yield nil.
func ComputeChange(e *Entry) *Change {
	if e == nil || len(e.Records) < 2 {
		return nil
	}
	prev := e.Records[len(e.Records)-2]
	curr := e.Records[len(e.Records)-1]

	c := &Change{
		ItemID:            e.ItemID,
		Title:             e.Title,
		ImpressionsChange: PctChange(prev.Impressions, curr.Impressions),
		CTRChange:         PctChange(prev.CTR, curr.CTR),
		PageViewsChange:   PctChange(prev.PageViews, curr.PageViews),
		SoldChange:        PctChange(prev.Sold, curr.Sold),
		HealthDelta:       curr.HealthScore - prev.HealthScore,
		PreviousBadge:     prev.Badge,
		CurrentBadge:      curr.Badge,
		LatestImpressions: curr.Impressions,
	}
	c.IsNewIssue = curr.Badge == health.BadgeRed && prev.Badge != health.BadgeRed
	c.IsDeclined = (prev.Badge == health.BadgeGreen && curr.Badge != health.BadgeGreen) ||
		(prev.Badge == health.BadgeYellow && curr.Badge == health.BadgeRed)
	return c
}

// Declined filters the timeline to items whose latest change is a
// decline or a fresh red badge, ordered for triage: new issues first,
// then latest impressions descending, item ID as the final tiebreak.
func Declined(entries map[string]*Entry) []Change {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Change, 0)
	for _, id := range ids {
		c := ComputeChange(entries[id])
		if c == nil || (!c.IsDeclined && !c.IsNewIssue) {
			continue
		}
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsNewIssue != out[j].IsNewIssue {
			return out[i].IsNewIssue
		}
		ii, ij := report.Value(out[i].LatestImpressions), report.Value(out[j].LatestImpressions)
		if ii != ij {
			return ii > ij
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}
