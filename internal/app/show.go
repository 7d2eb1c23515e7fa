package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/storage"
)

// Show prints a scored snapshot as a triage-ordered table. A zero
// snapshot id means the latest snapshot.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show snapshot")
	}
	if closeStore != nil {
		defer closeStore()
	}

	meta, listings, err := a.fetchSnapshot(ctx, store, opts.SnapshotID)
	if err != nil {
		return err
	}

	prioritized := health.ComputePriorityList(listings)
	if opts.Limit > 0 && len(prioritized) > opts.Limit {
		prioritized = prioritized[:opts.Limit]
	}

	kpis := health.ComputeKPIs(listings)
	fmt.Fprintf(os.Stdout, "Snapshot %d (%s): %d listings, %.0f impressions, %.0f sold, %d dead\n\n",
		meta.ID, meta.Filename, kpis.Listings, kpis.TotalImpressions, kpis.TotalSold, kpis.DeadListings)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Item\tTitle\tSport\tScore\tBadge\tImpr\tCTR%\tSold\tPriority\tAction")

	for _, l := range prioritized {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ItemID,
			truncate(l.Title, 40),
			l.Sport,
			l.HealthScore,
			l.Badge,
			formatMetric(l.Impressions),
			formatMetric(l.ClickThroughRate),
			formatMetric(l.QuantitySold),
			l.Recommendation.Priority,
			sanitizeInline(l.Recommendation.Text),
		)
	}

	return writer.Flush()
}

// fetchSnapshot resolves a snapshot id, where zero means the latest.
func (a *App) fetchSnapshot(ctx context.Context, store *storage.Store, id int64) (storage.SnapshotMeta, []health.Scored, error) {
	if id > 0 {
		return store.GetSnapshot(ctx, id)
	}
	return store.LatestSnapshot(ctx)
}

// formatMetric renders a nullable metric, keeping "no data" visibly
// distinct from zero.
func formatMetric(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *p)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
