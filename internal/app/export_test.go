package app

import (
	"testing"
	"time"

	"github.com/gopforever/ShazbotCards/internal/timeline"
)

func rollupSeries(n int) []timeline.Rollup {
	series := make([]timeline.Rollup, n)
	for i := range series {
		series[i] = timeline.Rollup{
			SnapshotID: int64(i + 1),
			UploadedAt: time.Date(2025, 6, i+1, 12, 0, 0, 0, time.UTC),
		}
	}
	return series
}

func TestDownsampleRollupsPassThrough(t *testing.T) {
	series := rollupSeries(5)
	if got := downsampleRollups(series, 0); len(got) != 5 {
		t.Fatalf("max 0 should pass through, got %d points", len(got))
	}
	if got := downsampleRollups(series, 10); len(got) != 5 {
		t.Fatalf("max above length should pass through, got %d points", len(got))
	}
}

func TestDownsampleRollupsSinglePoint(t *testing.T) {
	got := downsampleRollups(rollupSeries(4), 1)
	if len(got) != 1 {
		t.Fatalf("max 1 should yield one point, got %d", len(got))
	}
	if got[0].SnapshotID != 4 {
		t.Fatalf("single point should be the most recent rollup, got snapshot %d", got[0].SnapshotID)
	}
}

func TestDownsampleRollupsKeepsEndpoints(t *testing.T) {
	got := downsampleRollups(rollupSeries(10), 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[0].SnapshotID != 1 || got[len(got)-1].SnapshotID != 10 {
		t.Fatalf("first and last rollups must survive downsampling, got %d..%d",
			got[0].SnapshotID, got[len(got)-1].SnapshotID)
	}
}
