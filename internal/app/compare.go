package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gopforever/ShazbotCards/internal/timeline"
)

// Compare prints the full outer join of two snapshots, continuing
// items ordered by impression movement magnitude.
func (a *App) Compare(ctx context.Context, opts CompareOptions) error {
	if opts.FromID <= 0 || opts.ToID <= 0 {
		return errors.New("--from and --to snapshot ids must be provided")
	}
	if opts.FromID == opts.ToID {
		return errors.New("--from and --to must differ")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot compare")
	}
	if closeStore != nil {
		defer closeStore()
	}

	fromMeta, fromListings, err := store.GetSnapshot(ctx, opts.FromID)
	if err != nil {
		return err
	}
	toMeta, toListings, err := store.GetSnapshot(ctx, opts.ToID)
	if err != nil {
		return err
	}

	rows := timeline.Compare(
		toTimelineSnapshot(fromMeta, fromListings),
		toTimelineSnapshot(toMeta, toListings),
	)
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Item\tTitle\tStatus\tImpr %\tCTR %\tSold %\tScore Δ")
	for _, r := range rows {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%+d\n",
			r.ItemID,
			truncate(r.Title, 40),
			r.Status,
			formatMetric(r.ImpressionsChange),
			formatMetric(r.CTRChange),
			formatMetric(r.SoldChange),
			r.HealthDelta,
		)
	}
	return writer.Flush()
}
