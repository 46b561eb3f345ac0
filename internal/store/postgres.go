package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
// The pool is safe for concurrent use, so one PostgresStore serves every
// resolver goroutine.
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PoolOption tunes the pgxpool config before the pool is created.
type PoolOption func(*pgxpool.Config)

// WithMaxConns sets the maximum pool size.
func WithMaxConns(n int32) PoolOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, opts ...PoolOption) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.ApplyMigrations(ctx)
	return err
}

// ApplyMigrations applies pending migrations and returns the versions applied.
func (s *PostgresStore) ApplyMigrations(ctx context.Context) ([]string, error) {
	return RunMigrations(ctx, s.pool)
}

// QueryCandidates returns the catalog rows matching one tier's filters.
func (s *PostgresStore) QueryCandidates(ctx context.Context, spec *TierSpec) ([]domain.RawSkuRow, error) {
	sql, args := spec.ToSQL()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s candidates: %w", spec.Tier, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RawSkuRow, error) {
		var r domain.RawSkuRow
		err := row.Scan(&r.SkuCode, &r.IsUnlocked, &r.SourceTab)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s candidates: %w", spec.Tier, err)
	}

	return out, nil
}

// UpsertSku inserts or updates a catalog entry by code.
func (s *PostgresStore) UpsertSku(ctx context.Context, e *domain.SkuEntry) error {
	args := pgx.NamedArgs{
		"code":         e.Code,
		"brand":        e.Brand,
		"model_key":    e.ModelKey,
		"capacity":     e.Capacity,
		"color":        e.Color,
		"carrier":      e.Carrier,
		"product_type": string(e.ProductType),
		"is_unlocked":  e.IsUnlocked,
		"source_tab":   e.SourceTab,
	}

	if err := s.pool.QueryRow(ctx, queryUpsertSku, args).Scan(&e.UpdatedAt); err != nil {
		return fmt.Errorf("upserting sku %s: %w", e.Code, err)
	}
	return nil
}

// GetSku retrieves a catalog entry by code.
func (s *PostgresStore) GetSku(ctx context.Context, code string) (*domain.SkuEntry, error) {
	e := &domain.SkuEntry{}
	err := s.pool.QueryRow(ctx, queryGetSku, code).Scan(
		&e.Code, &e.Brand, &e.ModelKey, &e.Capacity, &e.Color, &e.Carrier,
		&e.ProductType, &e.IsUnlocked, &e.SourceTab, &e.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// CountSkus returns the number of catalog entries.
func (s *PostgresStore) CountSkus(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, queryCountSkus).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting skus: %w", err)
	}
	return n, nil
}

// UpsertDevice inserts a device, assigning an ID when d.ID is empty, or
// updates the existing row.
func (s *PostgresStore) UpsertDevice(ctx context.Context, d *domain.Device) error {
	if d.ID != "" && !validID(d.ID) {
		return fmt.Errorf("upserting device: id %q is not a UUID", d.ID)
	}

	args := pgx.NamedArgs{
		"id":            d.ID,
		"imei":          d.IMEI,
		"brand":         d.Attributes.Brand,
		"model":         d.Attributes.Model,
		"capacity":      d.Attributes.Capacity,
		"color":         d.Attributes.Color,
		"carrier":       d.Attributes.Carrier,
		"notes":         d.Attributes.Notes,
		"generated_sku": d.GeneratedSKU,
		"tested_at":     d.TestedAt,
	}

	if err := s.pool.QueryRow(ctx, queryUpsertDevice, args).Scan(
		&d.ID, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upserting device: %w", err)
	}
	return nil
}

// GetDevice retrieves a device by ID.
func (s *PostgresStore) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	d := &domain.Device{}
	if err := scanDevice(s.pool.QueryRow(ctx, queryGetDevice, id), d); err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// ListUnmatchedDevices returns up to limit devices that have never been
// matched or whose last resolution found no SKU, oldest first.
func (s *PostgresStore) ListUnmatchedDevices(ctx context.Context, limit int) ([]domain.Device, error) {
	rows, err := s.pool.Query(ctx, queryListUnmatchedDevices, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unmatched devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		var d domain.Device
		if err := scanDevice(rows, &d); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, d)
	}

	return devices, rows.Err()
}

// SaveMatch records the latest resolution for a device, replacing any
// previous one. A zero-value Result records a no-match.
func (s *PostgresStore) SaveMatch(ctx context.Context, m *domain.DeviceMatch) error {
	result, err := json.Marshal(m.Result)
	if err != nil {
		return fmt.Errorf("encoding match result: %w", err)
	}

	args := pgx.NamedArgs{
		"device_id":    m.DeviceID,
		"sku_code":     m.Result.SkuCode,
		"match_score":  m.Result.MatchScore,
		"match_method": string(m.Result.MatchMethod),
		"tier":         m.Result.Tier,
		"result":       result,
	}

	if err := s.pool.QueryRow(ctx, querySaveMatch, args).Scan(&m.MatchedAt); err != nil {
		return fmt.Errorf("saving match for device %s: %w", m.DeviceID, err)
	}
	return nil
}

// GetMatch retrieves the latest resolution for a device.
func (s *PostgresStore) GetMatch(ctx context.Context, deviceID string) (*domain.DeviceMatch, error) {
	if !validID(deviceID) {
		return nil, ErrNotFound
	}
	var (
		m   domain.DeviceMatch
		raw []byte
	)

	if err := s.pool.QueryRow(ctx, queryGetMatch, deviceID).Scan(&m.DeviceID, &raw, &m.MatchedAt); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &m.Result); err != nil {
		return nil, fmt.Errorf("decoding match result: %w", err)
	}

	return &m, nil
}

// InsertJobRun records the start of a job and returns its UUID.
func (s *PostgresStore) InsertJobRun(ctx context.Context, jobName string) (string, error) {
	var id string
	if err := s.pool.QueryRow(ctx, queryInsertJobRun, jobName).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting job run: %w", err)
	}
	return id, nil
}

// CompleteJobRun marks a job run as finished with the given status and metadata.
func (s *PostgresStore) CompleteJobRun(
	ctx context.Context,
	id string,
	status string,
	errText string,
	rowsAffected int,
) error {
	_, err := s.pool.Exec(ctx, queryCompleteJobRun, id, status, errText, rowsAffected)
	if err != nil {
		return fmt.Errorf("completing job run: %w", err)
	}
	return nil
}

// ListJobRuns returns the most recent runs for a job, newest first.
func (s *PostgresStore) ListJobRuns(
	ctx context.Context,
	jobName string,
	limit int,
) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListJobRuns, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying job runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.JobRun
	for rows.Next() {
		var r domain.JobRun
		if err := rows.Scan(
			&r.ID, &r.JobName, &r.StartedAt, &r.CompletedAt,
			&r.Status, &r.ErrorText, &r.RowsAffected,
		); err != nil {
			return nil, fmt.Errorf("scanning job run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecoverStaleJobRuns marks 'running' job rows older than olderThan as
// 'crashed', then deletes rows older than 30 days. Returns the number of
// rows marked as crashed.
func (s *PostgresStore) RecoverStaleJobRuns(
	ctx context.Context,
	olderThan time.Duration,
) (int, error) {
	tag, err := s.pool.Exec(ctx, queryMarkStaleJobRunsCrashed, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("marking stale job runs crashed: %w", err)
	}
	affected := int(tag.RowsAffected())

	if _, err := s.pool.Exec(ctx, queryDeleteOldJobRuns); err != nil {
		return affected, fmt.Errorf("deleting old job runs: %w", err)
	}

	return affected, nil
}

// AcquireSchedulerLock attempts to take the lock for jobName. Returns false
// when another holder owns an unexpired lock.
func (s *PostgresStore) AcquireSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	var gotName string
	err := s.pool.QueryRow(ctx, queryAcquireSchedulerLock, jobName, holder, time.Now().Add(ttl)).Scan(&gotName)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquiring scheduler lock: %w", err)
	}

	return true, nil
}

// ReleaseSchedulerLock deletes the lock row for the given job and holder.
func (s *PostgresStore) ReleaseSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
) error {
	if _, err := s.pool.Exec(ctx, queryReleaseSchedulerLock, jobName, holder); err != nil {
		return fmt.Errorf("releasing scheduler lock: %w", err)
	}
	return nil
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

func scanDevice(row scannable, d *domain.Device) error {
	return row.Scan(
		&d.ID, &d.IMEI,
		&d.Attributes.Brand, &d.Attributes.Model, &d.Attributes.Capacity,
		&d.Attributes.Color, &d.Attributes.Carrier, &d.Attributes.Notes,
		&d.GeneratedSKU, &d.TestedAt, &d.CreatedAt, &d.UpdatedAt,
	)
}

// notFound maps pgx.ErrNoRows to ErrNotFound.
// validID reports whether id can be a device primary key. Anything else
// cannot exist in the table.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
