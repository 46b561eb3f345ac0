package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/refurb-sku-matcher/pkg/skucode"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// MemoryStore is an in-process Store. It backs offline matching against a
// catalog file and tests that need real tier filtering without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	skus    map[string]domain.SkuEntry
	devices map[string]domain.Device
	matches map[string]domain.DeviceMatch
	runs    []domain.JobRun
	locks   map[string]memoryLock
	now     func() time.Time
}

type memoryLock struct {
	holder    string
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		skus:    make(map[string]domain.SkuEntry),
		devices: make(map[string]domain.Device),
		matches: make(map[string]domain.DeviceMatch),
		locks:   make(map[string]memoryLock),
		now:     time.Now,
	}
}

// NewMemoryCatalog returns a MemoryStore seeded with the given SKU codes.
func NewMemoryCatalog(codes ...string) *MemoryStore {
	s := NewMemoryStore()
	for _, c := range codes {
		e := skucode.Entry(c, "")
		s.skus[e.Code] = e
	}
	return s
}

// LoadCatalog reads one SKU per line, optionally followed by a comma and the
// source tab. Blank lines and lines starting with # are skipped. It returns
// the number of entries loaded.
func (s *MemoryStore) LoadCatalog(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		code, tab, _ := strings.Cut(line, ",")
		if err := s.UpsertSku(context.Background(), ptrTo(skucode.Entry(code, strings.TrimSpace(tab)))); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("reading catalog: %w", err)
	}
	return n, nil
}

// QueryCandidates filters the in-memory catalog with spec.Matches.
func (s *MemoryStore) QueryCandidates(ctx context.Context, spec *TierSpec) ([]domain.RawSkuRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []domain.RawSkuRow
	for _, e := range s.skus {
		if spec.Matches(&e) {
			rows = append(rows, domain.RawSkuRow{SkuCode: e.Code, IsUnlocked: e.IsUnlocked, SourceTab: e.SourceTab})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SkuCode < rows[j].SkuCode })

	if limit := spec.limit(); len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// UpsertSku inserts or replaces a catalog entry.
func (s *MemoryStore) UpsertSku(_ context.Context, e *domain.SkuEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.UpdatedAt = s.now()
	s.skus[e.Code] = *e
	return nil
}

// GetSku retrieves a catalog entry by code.
func (s *MemoryStore) GetSku(_ context.Context, code string) (*domain.SkuEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.skus[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

// CountSkus returns the number of catalog entries.
func (s *MemoryStore) CountSkus(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.skus), nil
}

// UpsertDevice inserts or replaces a device, assigning an ID when empty.
func (s *MemoryStore) UpsertDevice(_ context.Context, d *domain.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if prev, ok := s.devices[d.ID]; ok {
		d.CreatedAt = prev.CreatedAt
	} else {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	s.devices[d.ID] = *d
	return nil
}

// GetDevice retrieves a device by ID.
func (s *MemoryStore) GetDevice(_ context.Context, id string) (*domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.devices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// ListUnmatchedDevices mirrors the Postgres query: devices never matched or
// whose last attempt found nothing, excluding failed devices, oldest first.
func (s *MemoryStore) ListUnmatchedDevices(_ context.Context, limit int) ([]domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Device
	for id, d := range s.devices {
		m, ok := s.matches[id]
		if ok && (m.Result.SkuCode != "" || m.Result.MatchMethod == domain.MethodFailedDevice) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveMatch records the latest resolution for a device.
func (s *MemoryStore) SaveMatch(_ context.Context, m *domain.DeviceMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[m.DeviceID]; !ok {
		return fmt.Errorf("saving match for device %s: %w", m.DeviceID, ErrNotFound)
	}
	m.MatchedAt = s.now()
	s.matches[m.DeviceID] = *m
	return nil
}

// GetMatch retrieves the latest resolution for a device.
func (s *MemoryStore) GetMatch(_ context.Context, deviceID string) (*domain.DeviceMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

// InsertJobRun records the start of a job.
func (s *MemoryStore) InsertJobRun(_ context.Context, jobName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := domain.JobRun{ID: uuid.NewString(), JobName: jobName, StartedAt: s.now(), Status: "running"}
	s.runs = append(s.runs, r)
	return r.ID, nil
}

// CompleteJobRun marks a job run finished.
func (s *MemoryStore) CompleteJobRun(_ context.Context, id, status, errText string, rowsAffected int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.runs {
		if s.runs[i].ID != id {
			continue
		}
		now := s.now()
		s.runs[i].CompletedAt = &now
		s.runs[i].Status = status
		s.runs[i].ErrorText = errText
		s.runs[i].RowsAffected = &rowsAffected
		return nil
	}
	return ErrNotFound
}

// ListJobRuns returns the most recent runs for a job, newest first.
func (s *MemoryStore) ListJobRuns(_ context.Context, jobName string, limit int) ([]domain.JobRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.JobRun
	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].JobName == jobName {
			out = append(out, s.runs[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// RecoverStaleJobRuns marks running jobs older than olderThan as crashed.
func (s *MemoryStore) RecoverStaleJobRuns(_ context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-olderThan)
	n := 0
	for i := range s.runs {
		if s.runs[i].Status == "running" && s.runs[i].StartedAt.Before(cutoff) {
			s.runs[i].Status = "crashed"
			s.runs[i].CompletedAt = &now
			n++
		}
	}
	return n, nil
}

// AcquireSchedulerLock takes the lock unless another holder owns an
// unexpired one.
func (s *MemoryStore) AcquireSchedulerLock(_ context.Context, jobName, holder string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if l, ok := s.locks[jobName]; ok && l.expiresAt.After(now) {
		return false, nil
	}
	s.locks[jobName] = memoryLock{holder: holder, expiresAt: now.Add(ttl)}
	return true, nil
}

// ReleaseSchedulerLock releases the lock if holder owns it.
func (s *MemoryStore) ReleaseSchedulerLock(_ context.Context, jobName, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks[jobName]; ok && l.holder == holder {
		delete(s.locks, jobName)
	}
	return nil
}

// Migrate is a no-op.
func (*MemoryStore) Migrate(context.Context) error { return nil }

// Ping always succeeds.
func (*MemoryStore) Ping(context.Context) error { return nil }

func ptrTo[T any](v T) *T { return &v }
