package timeline

import (
	"math"
	"sort"

	"github.com/gopforever/ShazbotCards/internal/health"
)

// Comparison row statuses. Every item in either snapshot gets exactly
// one of these.
const (
	StatusNew        = "new"
	StatusDelisted   = "delisted"
	StatusContinuing = "continuing"
)

// ComparisonRow is one item's line in a two-snapshot comparison.
type ComparisonRow struct {
	ItemID            string   `json:"item_id"`
	Title             string   `json:"title"`
	Status            string   `json:"status"`
	ImpressionsChange *float64 `json:"impressions_change"`
	CTRChange         *float64 `json:"ctr_change"`
	SoldChange        *float64 `json:"sold_change"`
	HealthDelta       int      `json:"health_delta"`
}

// Compare full-outer-joins two arbitrary snapshots on item ID. Items
// absent from a are "new", absent from b "delisted", present in both
// "continuing". Continuing rows come first, ordered by the magnitude
// of their impressions change descending; new rows follow, then
// delisted, each in item-ID order.
func Compare(a, b Snapshot) []ComparisonRow {
	inA := make(map[string]health.Scored, len(a.Listings))
	for _, l := range a.Listings {
		inA[l.ItemID] = l
	}
	inB := make(map[string]health.Scored, len(b.Listings))
	for _, l := range b.Listings {
		inB[l.ItemID] = l
	}

	ids := make([]string, 0, len(inA)+len(inB))
	seen := make(map[string]struct{}, len(inA)+len(inB))
	for _, l := range a.Listings {
		if _, ok := seen[l.ItemID]; !ok {
			seen[l.ItemID] = struct{}{}
			ids = append(ids, l.ItemID)
		}
	}
	for _, l := range b.Listings {
		if _, ok := seen[l.ItemID]; !ok {
			seen[l.ItemID] = struct{}{}
			ids = append(ids, l.ItemID)
		}
	}
	sort.Strings(ids)

	var continuing, added, delisted []ComparisonRow
	for _, id := range ids {
		la, okA := inA[id]
		lb, okB := inB[id]
		switch {
		case okA && okB:
			continuing = append(continuing, ComparisonRow{
				ItemID:            id,
				Title:             lb.Title,
				Status:            StatusContinuing,
				ImpressionsChange: PctChange(la.Impressions, lb.Impressions),
				CTRChange:         PctChange(la.ClickThroughRate, lb.ClickThroughRate),
				SoldChange:        PctChange(la.QuantitySold, lb.QuantitySold),
				HealthDelta:       lb.HealthScore - la.HealthScore,
			})
		case okB:
			added = append(added, ComparisonRow{ItemID: id, Title: lb.Title, Status: StatusNew})
		default:
			delisted = append(delisted, ComparisonRow{ItemID: id, Title: la.Title, Status: StatusDelisted})
		}
	}

	sort.SliceStable(continuing, func(i, j int) bool {
		return absChange(continuing[i].ImpressionsChange) > absChange(continuing[j].ImpressionsChange)
	})

	out := make([]ComparisonRow, 0, len(ids))
	out = append(out, continuing...)
	out = append(out, added...)
	out = append(out, delisted...)
	return out
}

// absChange ranks a nil change below every real change, including an
// exact zero, so rows without data sink to the end of the continuing
// block.
func absChange(p *float64) float64 {
	if p == nil {
		return -1
	}
	return math.Abs(*p)
}
