package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/gopforever/ShazbotCards/internal/timeline"
)

// Export renders the cross-snapshot aggregate trend as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	snapshots, err := a.loadSnapshots(ctx, store, 0)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		a.Logger.Info().Msg("no snapshots found for export")
		return nil
	}

	series := timeline.AggregateTrend(snapshots)
	downsampled := downsampleRollups(series, opts.MaxPoints)
	a.Logger.Info().Int("total", len(series)).Int("exported", len(downsampled)).Msg("exporting trend")

	if opts.CSVPath != "" {
		if err := writeTrendCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeTrendPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleRollups(series []timeline.Rollup, max int) []timeline.Rollup {
	if max <= 0 || len(series) <= max {
		return series
	}
	// A single point means the most recent one.
	if max == 1 {
		return series[len(series)-1:]
	}

	result := make([]timeline.Rollup, 0, max)
	step := float64(len(series)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(series) {
			idx = len(series) - 1
		}
		result = append(result, series[idx])
	}
	return result
}

func writeTrendCSV(path string, series []timeline.Rollup) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"uploaded_at", "snapshot_id", "total_impressions", "promoted_impressions",
		"organic_impressions", "avg_ctr", "total_sold", "listing_count",
		"green", "yellow", "red",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range series {
		avgCTR := ""
		if r.AvgCTR != nil {
			avgCTR = fmt.Sprintf("%.4f", *r.AvgCTR)
		}
		record := []string{
			r.UploadedAt.Format(time.RFC3339),
			fmt.Sprintf("%d", r.SnapshotID),
			fmt.Sprintf("%.0f", r.TotalImpressions),
			fmt.Sprintf("%.0f", r.PromotedImpressions),
			fmt.Sprintf("%.0f", r.OrganicImpressions),
			avgCTR,
			fmt.Sprintf("%.0f", r.TotalSold),
			fmt.Sprintf("%d", r.ListingCount),
			fmt.Sprintf("%d", r.Zones.Green),
			fmt.Sprintf("%d", r.Zones.Yellow),
			fmt.Sprintf("%d", r.Zones.Red),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeTrendPNG(path string, series []timeline.Rollup) error {
	if len(series) < 2 {
		return errors.New("need at least two snapshots to chart a trend")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(series))
	impressions := make([]float64, len(series))
	organic := make([]float64, len(series))
	sold := make([]float64, len(series))

	for i, r := range series {
		x[i] = r.UploadedAt
		impressions[i] = r.TotalImpressions
		organic[i] = r.OrganicImpressions
		sold[i] = r.TotalSold
	}

	countFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Impressions",
			ValueFormatter: countFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Quantity sold",
			ValueFormatter: countFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total impressions",
				XValues: x,
				YValues: impressions,
			},
			chart.TimeSeries{
				Name:    "Organic impressions",
				XValues: x,
				YValues: organic,
			},
			chart.TimeSeries{
				Name:    "Sold",
				XValues: x,
				YValues: sold,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
