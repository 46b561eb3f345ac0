// Package store defines the datastore abstraction for the SKU matcher. The
// resolver depends only on CatalogStore; the service layers depend on Store.
// Implementations are PostgresStore (pgxpool) and MemoryStore.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// CatalogStore is the read-only catalog lookup consumed by the resolver.
// Implementations must be safe for concurrent use.
type CatalogStore interface {
	QueryCandidates(ctx context.Context, spec *TierSpec) ([]domain.RawSkuRow, error)
}

// Store defines all data access operations for the SKU matcher.
type Store interface {
	CatalogStore

	// Catalog
	UpsertSku(ctx context.Context, e *domain.SkuEntry) error
	GetSku(ctx context.Context, code string) (*domain.SkuEntry, error)
	CountSkus(ctx context.Context) (int, error)

	// Devices
	UpsertDevice(ctx context.Context, d *domain.Device) error
	GetDevice(ctx context.Context, id string) (*domain.Device, error)
	ListUnmatchedDevices(ctx context.Context, limit int) ([]domain.Device, error)

	// Matches
	SaveMatch(ctx context.Context, m *domain.DeviceMatch) error
	GetMatch(ctx context.Context, deviceID string) (*domain.DeviceMatch, error)

	// Jobs
	InsertJobRun(ctx context.Context, jobName string) (id string, err error)
	CompleteJobRun(ctx context.Context, id string, status string, errText string, rowsAffected int) error
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
	RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error)
	AcquireSchedulerLock(ctx context.Context, jobName string, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName string, holder string) error

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
