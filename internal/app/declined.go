package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gopforever/ShazbotCards/internal/timeline"
)

// Declined prints the regression triage queue built from every stored
// snapshot: listings whose latest change is a decline or a fresh red
// badge, new issues first.
func (a *App) Declined(ctx context.Context, opts DeclinedOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot compute declines")
	}
	if closeStore != nil {
		defer closeStore()
	}

	snapshots, err := a.loadSnapshots(ctx, store, 0)
	if err != nil {
		return err
	}
	if len(snapshots) < 2 {
		fmt.Fprintln(os.Stdout, "need at least two snapshots to detect declines")
		return nil
	}

	declined := timeline.Declined(timeline.Build(snapshots))
	if len(declined) == 0 {
		fmt.Fprintln(os.Stdout, "no declined listings")
		return nil
	}
	if opts.Limit > 0 && len(declined) > opts.Limit {
		declined = declined[:opts.Limit]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Item\tTitle\tBadge\tImpr %\tCTR %\tScore Δ\tNew Issue")
	for _, c := range declined {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s→%s\t%s\t%s\t%+d\t%t\n",
			c.ItemID,
			truncate(c.Title, 40),
			c.PreviousBadge,
			c.CurrentBadge,
			formatMetric(c.ImpressionsChange),
			formatMetric(c.CTRChange),
			c.HealthDelta,
			c.IsNewIssue,
		)
	}
	return writer.Flush()
}
