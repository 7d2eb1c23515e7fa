package app

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/gopforever/ShazbotCards/internal/alerting"
	"github.com/gopforever/ShazbotCards/internal/config"
	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/report"
	"github.com/gopforever/ShazbotCards/internal/storage"
	"github.com/gopforever/ShazbotCards/internal/timeline"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

// loadSnapshots materialises up to limit stored snapshots (0 means
// all) as timeline snapshots, oldest first.
func (a *App) loadSnapshots(ctx context.Context, store *storage.Store, limit int) ([]timeline.Snapshot, error) {
	if limit <= 0 {
		limit = 1000
	}
	metas, err := store.ListSnapshots(ctx, limit)
	if err != nil {
		return nil, err
	}

	snapshots := make([]timeline.Snapshot, 0, len(metas))
	for _, meta := range metas {
		_, listings, err := store.GetSnapshot(ctx, meta.ID)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, toTimelineSnapshot(meta, listings))
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		if !snapshots[i].UploadedAt.Equal(snapshots[j].UploadedAt) {
			return snapshots[i].UploadedAt.Before(snapshots[j].UploadedAt)
		}
		return snapshots[i].ID < snapshots[j].ID
	})
	return snapshots, nil
}

func toTimelineSnapshot(meta storage.SnapshotMeta, listings []health.Scored) timeline.Snapshot {
	snap := timeline.Snapshot{
		ID:         meta.ID,
		UploadedAt: meta.UploadedAt,
		Filename:   meta.Filename,
		Listings:   listings,
	}
	if meta.PeriodStart != nil && meta.PeriodEnd != nil {
		snap.Period = &report.Period{Start: *meta.PeriodStart, End: *meta.PeriodEnd}
	}
	return snap
}

// ImportOptions configure the import command.
type ImportOptions struct {
	Path   string
	Notify bool
}

// ShowOptions configure the show command.
type ShowOptions struct {
	SnapshotID int64
	Limit      int
}

// ExportOptions hold parameters for exporting the aggregate trend.
type ExportOptions struct {
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// CompareOptions configure the two-snapshot comparison.
type CompareOptions struct {
	FromID int64
	ToID   int64
	Limit  int
}

// KeywordOptions configure the keyword report.
type KeywordOptions struct {
	SnapshotID int64
	Limit      int
	Suggest    string
}

// DeclinedOptions configure the regression triage report.
type DeclinedOptions struct {
	Limit int
}

// CogsOptions configure a one-off profitability calculation.
type CogsOptions struct {
	Price    float64
	Quantity int64
	Shipping string
}

// ServeOptions configure the HTTP analytics server.
type ServeOptions struct {
	Addr string
}
