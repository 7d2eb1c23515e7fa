package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gopforever/ShazbotCards/internal/keywords"
)

// Keywords prints the keyword performance report for a snapshot. With
// Suggest set it prints related-keyword suggestions instead.
func (a *App) Keywords(ctx context.Context, opts KeywordOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot analyze keywords")
	}
	if closeStore != nil {
		defer closeStore()
	}

	meta, listings, err := a.fetchSnapshot(ctx, store, opts.SnapshotID)
	if err != nil {
		return err
	}

	aggs := keywords.ClassifyTrends(keywords.Analyze(listings))

	if opts.Suggest != "" {
		suggestions := keywords.Suggestions(opts.Suggest, aggs)
		if len(suggestions) == 0 {
			fmt.Fprintln(os.Stdout, "no suggestions available")
			return nil
		}
		fmt.Fprintf(os.Stdout, "related to %q: %s\n", opts.Suggest, strings.Join(suggestions, ", "))
		return nil
	}

	if opts.Limit > 0 && len(aggs) > opts.Limit {
		aggs = aggs[:opts.Limit]
	}

	fmt.Fprintf(os.Stdout, "Keywords for snapshot %d (%s)\n\n", meta.ID, meta.Filename)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Keyword\tListings\tImpr\tAvg Impr\tCTR%\tSold\tConv%\tHealth\tSignal")
	for _, agg := range aggs {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%.0f\t%.0f\t%s\t%.0f\t%s\t%.0f\t%s\n",
			agg.Keyword,
			agg.Appearances,
			agg.TotalImpressions,
			agg.AvgImpressions,
			formatMetric(agg.WeightedCTR),
			agg.TotalSold,
			formatMetric(agg.ConversionRate),
			agg.AvgHealthScore,
			agg.TrendProxy,
		)
	}
	return writer.Flush()
}
