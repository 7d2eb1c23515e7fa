package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gopforever/ShazbotCards/internal/alerting"
	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/report"
	"github.com/gopforever/ShazbotCards/internal/storage"
	"github.com/gopforever/ShazbotCards/internal/timeline"
)

// Import parses an export file, scores it, and persists the result as
// a new snapshot. With Notify set it also dispatches a regression
// digest comparing against the previous snapshot.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return fmt.Errorf("read export file: %w", err)
	}

	listings, err := report.Parse(string(data))
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		return errors.New("export contained no usable listing rows")
	}

	scored := health.ScoreAll(listings)
	period := report.ExtractPeriod(string(data))

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot import")
	}
	if closeStore != nil {
		defer closeStore()
	}

	meta := storage.SnapshotMeta{
		UploadedAt: time.Now().UTC(),
		Filename:   filepath.Base(opts.Path),
	}
	if period != nil {
		meta.PeriodStart = &period.Start
		meta.PeriodEnd = &period.End
	}

	id, err := store.InsertSnapshot(ctx, meta, scored)
	if err != nil {
		return err
	}

	kpis := health.ComputeKPIs(scored)
	a.Logger.Info().
		Int64("snapshot_id", id).
		Str("filename", meta.Filename).
		Int("listings", kpis.Listings).
		Float64("impressions", kpis.TotalImpressions).
		Int("dead_listings", kpis.DeadListings).
		Msg("snapshot imported")

	if opts.Notify {
		if err := a.notifyRegressions(ctx, store, id, meta); err != nil {
			a.Logger.Error().Err(err).Msg("failed to dispatch regression digest")
		}
	}

	return nil
}

const digestTopItems = 5

func (a *App) notifyRegressions(ctx context.Context, store *storage.Store, snapshotID int64, meta storage.SnapshotMeta) error {
	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("alerting not configured")
	}

	snapshots, err := a.loadSnapshots(ctx, store, 2)
	if err != nil {
		return err
	}
	if len(snapshots) < 2 {
		a.Logger.Debug().Msg("first snapshot; nothing to compare against")
		return nil
	}

	declined := timeline.Declined(timeline.Build(snapshots))
	if len(declined) == 0 {
		a.Logger.Debug().Msg("no regressions detected; digest skipped")
		return nil
	}

	digest := alerting.Digest{
		SnapshotID: snapshotID,
		Filename:   meta.Filename,
		UploadedAt: meta.UploadedAt,
	}
	for _, c := range declined {
		if c.IsNewIssue {
			digest.NewIssues++
		} else {
			digest.Declined++
		}
		if len(digest.TopItems) < digestTopItems {
			digest.TopItems = append(digest.TopItems, c.Title)
		}
	}

	return notifier.Notify(ctx, digest)
}
