package timeline

import (
	"testing"
	"time"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/report"
)

func scoredListing(itemID string, impressions *float64, score int, badge health.Badge) health.Scored {
	return health.Scored{
		Listing: report.Listing{
			ItemID:      itemID,
			Title:       "Listing " + itemID,
			Impressions: impressions,
		},
		HealthScore: score,
		Badge:       badge,
	}
}

func snapshot(id int64, day int, listings ...health.Scored) Snapshot {
	return Snapshot{
		ID:         id,
		UploadedAt: time.Date(2025, 6, day, 12, 0, 0, 0, time.UTC),
		Filename:   "report.csv",
		Listings:   listings,
	}
}

func TestPctChange(t *testing.T) {
	cases := []struct {
		name string
		a, b *float64
		want *float64
	}{
		{"both nil", nil, nil, nil},
		{"a nil", nil, report.Ptr(5), nil},
		{"b nil", report.Ptr(5), nil, nil},
		{"both zero", report.Ptr(0), report.Ptr(0), report.Ptr(0)},
		{"zero baseline", report.Ptr(0), report.Ptr(5), nil},
		{"growth", report.Ptr(10), report.Ptr(15), report.Ptr(50)},
		{"decline", report.Ptr(100), report.Ptr(50), report.Ptr(-50)},
		{"negative baseline", report.Ptr(-10), report.Ptr(-5), report.Ptr(50)},
	}
	for _, tc := range cases {
		got := PctChange(tc.a, tc.b)
		switch {
		case tc.want == nil && got != nil:
			t.Fatalf("%s: got %v, want nil", tc.name, *got)
		case tc.want != nil && got == nil:
			t.Fatalf("%s: got nil, want %v", tc.name, *tc.want)
		case tc.want != nil && *got != *tc.want:
			t.Fatalf("%s: got %v, want %v", tc.name, *got, *tc.want)
		}
	}
}

func TestBuildOrdersByUploadTime(t *testing.T) {
	// Deliberately out of order on input.
	entries := Build([]Snapshot{
		snapshot(2, 15, scoredListing("x", report.Ptr(50), 40, health.BadgeYellow)),
		snapshot(1, 1, scoredListing("x", report.Ptr(100), 70, health.BadgeGreen)),
	})
	e, ok := entries["x"]
	if !ok || len(e.Records) != 2 {
		t.Fatalf("expected 2 records for item x, got %+v", e)
	}
	if e.Records[0].SnapshotID != 1 || e.Records[1].SnapshotID != 2 {
		t.Fatalf("records not chronological: %d then %d",
			e.Records[0].SnapshotID, e.Records[1].SnapshotID)
	}
}

func TestComputeChangeDecline(t *testing.T) {
	entries := Build([]Snapshot{
		snapshot(1, 1, scoredListing("x", report.Ptr(100), 70, health.BadgeGreen)),
		snapshot(2, 15, scoredListing("x", report.Ptr(50), 45, health.BadgeYellow)),
	})
	c := ComputeChange(entries["x"])
	if c == nil {
		t.Fatal("expected a change for a twice-observed item")
	}
	if c.ImpressionsChange == nil || *c.ImpressionsChange != -50 {
		t.Fatalf("impressions change = %v, want -50", c.ImpressionsChange)
	}
	if !c.IsDeclined {
		t.Fatal("green to yellow must register as declined")
	}
	if c.IsNewIssue {
		t.Fatal("yellow is not a new issue")
	}
	if c.HealthDelta != -25 {
		t.Fatalf("health delta = %d, want -25", c.HealthDelta)
	}
}

func TestComputeChangeNewIssue(t *testing.T) {
	entries := Build([]Snapshot{
		snapshot(1, 1, scoredListing("x", report.Ptr(40), 35, health.BadgeYellow)),
		snapshot(2, 15, scoredListing("x", report.Ptr(10), 20, health.BadgeRed)),
	})
	c := ComputeChange(entries["x"])
	if c == nil || !c.IsNewIssue {
		t.Fatalf("yellow to red should be a new issue, got %+v", c)
	}
	if !c.IsDeclined {
		t.Fatal("yellow to red is also a decline")
	}
}

func TestComputeChangeSingleRecord(t *testing.T) {
	entries := Build([]Snapshot{
		snapshot(1, 1, scoredListing("x", report.Ptr(40), 35, health.BadgeYellow)),
	})
	if c := ComputeChange(entries["x"]); c != nil {
		t.Fatalf("single observation has no change, got %+v", c)
	}
	if c := ComputeChange(nil); c != nil {
		t.Fatal("nil entry should yield nil change")
	}
}

func TestDeclinedOrdering(t *testing.T) {
	entries := Build([]Snapshot{
		snapshot(1, 1,
			scoredListing("decline-big", report.Ptr(500), 70, health.BadgeGreen),
			scoredListing("decline-small", report.Ptr(100), 70, health.BadgeGreen),
			scoredListing("fresh-red", report.Ptr(50), 40, health.BadgeYellow),
			scoredListing("steady", report.Ptr(80), 70, health.BadgeGreen),
		),
		snapshot(2, 15,
			scoredListing("decline-big", report.Ptr(400), 50, health.BadgeYellow),
			scoredListing("decline-small", report.Ptr(90), 50, health.BadgeYellow),
			scoredListing("fresh-red", report.Ptr(45), 20, health.BadgeRed),
			scoredListing("steady", report.Ptr(85), 72, health.BadgeGreen),
		),
	})
	out := Declined(entries)
	if len(out) != 3 {
		t.Fatalf("expected 3 declined items, got %d", len(out))
	}
	if out[0].ItemID != "fresh-red" {
		t.Fatalf("new issues must sort first, got %q", out[0].ItemID)
	}
	if out[1].ItemID != "decline-big" || out[2].ItemID != "decline-small" {
		t.Fatalf("declines should order by impressions, got %q then %q",
			out[1].ItemID, out[2].ItemID)
	}
}

func TestCompareStatuses(t *testing.T) {
	a := snapshot(1, 1,
		scoredListing("both-big", report.Ptr(100), 60, health.BadgeGreen),
		scoredListing("both-flat", report.Ptr(50), 60, health.BadgeGreen),
		scoredListing("gone", report.Ptr(10), 30, health.BadgeYellow),
	)
	b := snapshot(2, 15,
		scoredListing("both-big", report.Ptr(300), 65, health.BadgeGreen),
		scoredListing("both-flat", report.Ptr(50), 60, health.BadgeGreen),
		scoredListing("added", report.Ptr(20), 40, health.BadgeYellow),
	)
	rows := Compare(a, b)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].ItemID != "both-big" || rows[0].Status != StatusContinuing {
		t.Fatalf("largest mover should lead, got %+v", rows[0])
	}
	if rows[0].ImpressionsChange == nil || *rows[0].ImpressionsChange != 200 {
		t.Fatalf("impressions change = %v, want 200", rows[0].ImpressionsChange)
	}
	if rows[1].ItemID != "both-flat" {
		t.Fatalf("zero change still outranks new rows, got %q", rows[1].ItemID)
	}
	if rows[2].ItemID != "added" || rows[2].Status != StatusNew {
		t.Fatalf("unexpected new row: %+v", rows[2])
	}
	if rows[3].ItemID != "gone" || rows[3].Status != StatusDelisted {
		t.Fatalf("unexpected delisted row: %+v", rows[3])
	}
}

func TestAggregateTrendAndCompareKPIs(t *testing.T) {
	withCTR := scoredListing("x", report.Ptr(100), 70, health.BadgeGreen)
	withCTR.ClickThroughRate = report.Ptr(2.0)
	noCTR := scoredListing("y", report.Ptr(50), 20, health.BadgeRed)

	series := AggregateTrend([]Snapshot{
		snapshot(2, 15, withCTR),
		snapshot(1, 1, withCTR, noCTR),
	})
	if len(series) != 2 {
		t.Fatalf("expected 2 rollups, got %d", len(series))
	}
	first := series[0]
	if first.SnapshotID != 1 {
		t.Fatalf("rollups not chronological, first is snapshot %d", first.SnapshotID)
	}
	if first.TotalImpressions != 150 || first.ListingCount != 2 {
		t.Fatalf("unexpected first rollup: %+v", first)
	}
	if first.AvgCTR == nil || *first.AvgCTR != 2.0 {
		t.Fatalf("average CTR should skip null listings, got %v", first.AvgCTR)
	}
	if first.Zones.Green != 1 || first.Zones.Red != 1 {
		t.Fatalf("unexpected zone counts: %+v", first.Zones)
	}

	cmp := CompareKPIs(series)
	if cmp == nil {
		t.Fatal("two rollups should produce a comparison")
	}
	if cmp.CurrentSnapshotID != 2 || cmp.PreviousSnapshotID != 1 {
		t.Fatalf("unexpected snapshot ids: %+v", cmp)
	}
	if cmp.TotalImpressions.Delta != -50 {
		t.Fatalf("impressions delta = %v, want -50", cmp.TotalImpressions.Delta)
	}
	if cmp.TotalImpressions.PctChange == nil {
		t.Fatal("nonzero baseline should yield a percentage change")
	}

	if CompareKPIs(series[:1]) != nil {
		t.Fatal("fewer than two rollups must yield nil")
	}
}
