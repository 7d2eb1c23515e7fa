package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/report"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrSnapshotNotFound indicates the requested snapshot id does not exist.
	ErrSnapshotNotFound = errors.New("storage: snapshot not found")
)

const (
	insertSnapshotSQL = `INSERT INTO snapshots (
        uploaded_at,
        filename,
        period_start,
        period_end,
        listing_count
    ) VALUES ($1,$2,$3,$4,$5)
    RETURNING id;`

	insertListingSQL = `INSERT INTO snapshot_listings (
        snapshot_id,
        item_id,
        title,
        start_date,
        is_promoted,
        impressions,
        promoted_impressions,
        organic_impressions,
        organic_change_30d,
        organic_change_yoy,
        click_through_rate,
        page_views,
        quantity_sold,
        top20_slot_rate,
        health_score,
        health_badge,
        sport,
        recommendation,
        rec_priority
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19
    );`

	listSnapshotsSQL = `SELECT
        id, uploaded_at, filename, period_start, period_end, listing_count, created_at
    FROM snapshots
    ORDER BY uploaded_at DESC, id DESC
    LIMIT $1;`

	getSnapshotMetaSQL = `SELECT
        id, uploaded_at, filename, period_start, period_end, listing_count, created_at
    FROM snapshots
    WHERE id = $1;`

	latestSnapshotMetaSQL = `SELECT
        id, uploaded_at, filename, period_start, period_end, listing_count, created_at
    FROM snapshots
    ORDER BY uploaded_at DESC, id DESC
    LIMIT 1;`

	listListingsSQL = `SELECT
        item_id, title, start_date, is_promoted,
        impressions, promoted_impressions, organic_impressions,
        organic_change_30d, organic_change_yoy,
        click_through_rate, page_views, quantity_sold, top20_slot_rate,
        health_score, health_badge, sport, recommendation, rec_priority
    FROM snapshot_listings
    WHERE snapshot_id = $1
    ORDER BY item_id;`

	deleteSnapshotSQL = `DELETE FROM snapshots WHERE id = $1;`

	countSnapshotsSQL = `SELECT COUNT(*) FROM snapshots;`
)

// SnapshotStore defines persistence operations for catalog snapshots.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, meta SnapshotMeta, listings []health.Scored) (int64, error)
	ListSnapshots(ctx context.Context, limit int) ([]SnapshotMeta, error)
	GetSnapshot(ctx context.Context, id int64) (SnapshotMeta, []health.Scored, error)
	LatestSnapshot(ctx context.Context) (SnapshotMeta, []health.Scored, error)
	DeleteSnapshot(ctx context.Context, id int64) error
	CountSnapshots(ctx context.Context) (int64, error)
}

// Store aggregates access to snapshots and their listing rows.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertSnapshot persists a snapshot header and all of its listing
// rows in one transaction, returning the assigned snapshot id.
func (s *Store) InsertSnapshot(ctx context.Context, meta SnapshotMeta, listings []health.Scored) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin snapshot insert: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, insertSnapshotSQL,
		meta.UploadedAt,
		meta.Filename,
		meta.PeriodStart,
		meta.PeriodEnd,
		len(listings),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}

	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(insertListingSQL,
			id,
			l.ItemID,
			l.Title,
			l.StartDate,
			l.IsPromoted,
			l.Impressions,
			l.PromotedImpressions,
			l.OrganicImpressions,
			l.OrganicChange30d,
			l.OrganicChangeYoY,
			l.ClickThroughRate,
			l.PageViews,
			l.QuantitySold,
			l.Top20SlotRate,
			l.HealthScore,
			string(l.Badge),
			l.Sport,
			l.Recommendation.Text,
			string(l.Recommendation.Priority),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert snapshot listings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit snapshot insert: %w", err)
	}
	return id, nil
}

// ListSnapshots lists snapshot headers newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]SnapshotMeta, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSnapshotsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list snapshots: %w", queryErr)
	}
	defer rows.Close()

	metas := make([]SnapshotMeta, 0, limit)
	for rows.Next() {
		meta, scanErr := scanSnapshotMeta(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		metas = append(metas, meta)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return metas, nil
}

// GetSnapshot loads one snapshot header with its listing rows.
func (s *Store) GetSnapshot(ctx context.Context, id int64) (SnapshotMeta, []health.Scored, error) {
	pool, err := s.getPool()
	if err != nil {
		return SnapshotMeta{}, nil, err
	}

	row := pool.QueryRow(ctx, getSnapshotMetaSQL, id)
	meta, err := scanSnapshotMeta(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SnapshotMeta{}, nil, ErrSnapshotNotFound
		}
		return SnapshotMeta{}, nil, err
	}

	listings, err := s.listListings(ctx, id)
	if err != nil {
		return SnapshotMeta{}, nil, err
	}
	return meta, listings, nil
}

// LatestSnapshot loads the most recently uploaded snapshot.
func (s *Store) LatestSnapshot(ctx context.Context) (SnapshotMeta, []health.Scored, error) {
	pool, err := s.getPool()
	if err != nil {
		return SnapshotMeta{}, nil, err
	}

	row := pool.QueryRow(ctx, latestSnapshotMetaSQL)
	meta, err := scanSnapshotMeta(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SnapshotMeta{}, nil, ErrSnapshotNotFound
		}
		return SnapshotMeta{}, nil, err
	}

	listings, err := s.listListings(ctx, meta.ID)
	if err != nil {
		return SnapshotMeta{}, nil, err
	}
	return meta, listings, nil
}

func (s *Store) listListings(ctx context.Context, snapshotID int64) ([]health.Scored, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listListingsSQL, snapshotID)
	if queryErr != nil {
		return nil, fmt.Errorf("list snapshot listings: %w", queryErr)
	}
	defer rows.Close()

	listings := make([]health.Scored, 0)
	for rows.Next() {
		l, scanErr := scanListing(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		listings = append(listings, l)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return listings, nil
}

// DeleteSnapshot removes a snapshot and, via cascade, its listings.
func (s *Store) DeleteSnapshot(ctx context.Context, id int64) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, deleteSnapshotSQL, id)
	if execErr != nil {
		return fmt.Errorf("delete snapshot: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// CountSnapshots counts stored snapshots.
func (s *Store) CountSnapshots(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSnapshotsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count snapshots: %w", scanErr)
	}
	return count, nil
}

func scanSnapshotMeta(row pgx.Row) (SnapshotMeta, error) {
	var (
		meta        SnapshotMeta
		periodStart sql.NullTime
		periodEnd   sql.NullTime
	)
	if err := row.Scan(
		&meta.ID,
		&meta.UploadedAt,
		&meta.Filename,
		&periodStart,
		&periodEnd,
		&meta.ListingCount,
		&meta.CreatedAt,
	); err != nil {
		return SnapshotMeta{}, err
	}
	if periodStart.Valid {
		v := periodStart.Time
		meta.PeriodStart = &v
	}
	if periodEnd.Valid {
		v := periodEnd.Time
		meta.PeriodEnd = &v
	}
	return meta, nil
}

func scanListing(rows pgx.Rows) (health.Scored, error) {
	var (
		l         health.Scored
		startDate sql.NullTime
		badge     string
		priority  string
		metrics   [9]sql.NullFloat64
	)

	if err := rows.Scan(
		&l.ItemID,
		&l.Title,
		&startDate,
		&l.IsPromoted,
		&metrics[0],
		&metrics[1],
		&metrics[2],
		&metrics[3],
		&metrics[4],
		&metrics[5],
		&metrics[6],
		&metrics[7],
		&metrics[8],
		&l.HealthScore,
		&badge,
		&l.Sport,
		&l.Recommendation.Text,
		&priority,
	); err != nil {
		return health.Scored{}, err
	}

	if startDate.Valid {
		v := startDate.Time
		l.StartDate = &v
	}
	l.Badge = health.Badge(badge)
	l.Recommendation.Priority = health.Priority(priority)

	targets := []**float64{
		&l.Impressions,
		&l.PromotedImpressions,
		&l.OrganicImpressions,
		&l.OrganicChange30d,
		&l.OrganicChangeYoY,
		&l.ClickThroughRate,
		&l.PageViews,
		&l.QuantitySold,
		&l.Top20SlotRate,
	}
	for i, t := range targets {
		if metrics[i].Valid {
			*t = report.Ptr(metrics[i].Float64)
		}
	}

	return l, nil
}

var _ SnapshotStore = (*Store)(nil)
