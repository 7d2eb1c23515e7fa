package storage

import "time"

// SnapshotMeta is the persisted metadata of one catalog export.
type SnapshotMeta struct {
	ID           int64
	UploadedAt   time.Time
	Filename     string
	PeriodStart  *time.Time
	PeriodEnd    *time.Time
	ListingCount int
	CreatedAt    time.Time
}
