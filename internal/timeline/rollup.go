package timeline

import (
	"sort"
	"time"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/report"
)

// ZoneCounts is a histogram of badge zones within one snapshot.
type ZoneCounts struct {
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`
}

// Rollup is the per-snapshot aggregate used for the time-series view.
type Rollup struct {
	SnapshotID          int64      `json:"snapshot_id"`
	UploadedAt          time.Time  `json:"uploaded_at"`
	TotalImpressions    float64    `json:"total_impressions"`
	PromotedImpressions float64    `json:"promoted_impressions"`
	OrganicImpressions  float64    `json:"organic_impressions"`
	AvgCTR              *float64   `json:"avg_ctr"`
	TotalSold           float64    `json:"total_sold"`
	ListingCount        int        `json:"listing_count"`
	Zones               ZoneCounts `json:"zones"`
}

// AggregateTrend rolls every snapshot up to one time-series point, in
// chronological order.
func AggregateTrend(snapshots []Snapshot) []Rollup {
	ordered := make([]Snapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].UploadedAt.Equal(ordered[j].UploadedAt) {
			return ordered[i].UploadedAt.Before(ordered[j].UploadedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	out := make([]Rollup, 0, len(ordered))
	for _, snap := range ordered {
		r := Rollup{
			SnapshotID:   snap.ID,
			UploadedAt:   snap.UploadedAt,
			ListingCount: len(snap.Listings),
		}
		ctrSum := 0.0
		ctrCount := 0
		for _, l := range snap.Listings {
			r.TotalImpressions += report.Value(l.Impressions)
			r.PromotedImpressions += report.Value(l.PromotedImpressions)
			r.OrganicImpressions += report.Value(l.OrganicImpressions)
			r.TotalSold += report.Value(l.QuantitySold)
			if l.ClickThroughRate != nil {
				ctrSum += *l.ClickThroughRate
				ctrCount++
			}
			switch l.Badge {
			case health.BadgeGreen:
				r.Zones.Green++
			case health.BadgeYellow:
				r.Zones.Yellow++
			case health.BadgeRed:
				r.Zones.Red++
			}
		}
		if ctrCount > 0 {
			avg := ctrSum / float64(ctrCount)
			r.AvgCTR = &avg
		}
		out = append(out, r)
	}
	return out
}

// Delta pairs a current value with its movement from the previous
// rollup.
type Delta struct {
	Value     float64  `json:"value"`
	Delta     float64  `json:"delta"`
	PctChange *float64 `json:"pct_change"`
}

// KPIComparison is the movement between the two most recent rollups.
type KPIComparison struct {
	CurrentSnapshotID  int64 `json:"current_snapshot_id"`
	PreviousSnapshotID int64 `json:"previous_snapshot_id"`
	TotalImpressions   Delta `json:"total_impressions"`
	OrganicImpressions Delta `json:"organic_impressions"`
	TotalSold          Delta `json:"total_sold"`
	ListingCount       Delta `json:"listing_count"`
}

// CompareKPIs builds deltas between only the two most recent rollups.
// Fewer than two snapshots yields nil.
func CompareKPIs(series []Rollup) *KPIComparison {
	if len(series) < 2 {
		return nil
	}
	prev := series[len(series)-2]
	curr := series[len(series)-1]

	return &KPIComparison{
		CurrentSnapshotID:  curr.SnapshotID,
		PreviousSnapshotID: prev.SnapshotID,
		TotalImpressions:   makeDelta(prev.TotalImpressions, curr.TotalImpressions),
		OrganicImpressions: makeDelta(prev.OrganicImpressions, curr.OrganicImpressions),
		TotalSold:          makeDelta(prev.TotalSold, curr.TotalSold),
		ListingCount:       makeDelta(float64(prev.ListingCount), float64(curr.ListingCount)),
	}
}

func makeDelta(prev, curr float64) Delta {
	return Delta{
		Value:     curr,
		Delta:     curr - prev,
		PctChange: PctChange(&prev, &curr),
	}
}
