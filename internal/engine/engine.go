// Package engine runs device matching against the store: single-device
// resolution with persistence, device intake, and bulk rematching of
// unmatched devices on a bounded, rate-limited worker pool.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/donaldgifford/refurb-sku-matcher/internal/metrics"
	"github.com/donaldgifford/refurb-sku-matcher/internal/resolver"
	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
	"github.com/donaldgifford/refurb-sku-matcher/internal/tracing"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/skucode"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// JobRematch is the job name recorded for rematch runs.
const JobRematch = "rematch"

const (
	defaultConcurrency = 8
	defaultBatchSize   = 500
)

// Batch outcomes, used as the metrics label and in Summary.
const (
	OutcomeMatched  = "matched"
	OutcomeNoMatch  = "no_match"
	OutcomeExcluded = "excluded"
	OutcomeInvalid  = "invalid"
)

// Resolver resolves device attributes to a SKU.
type Resolver interface {
	ResolveSku(ctx context.Context, attrs domain.DeviceAttributes) (*domain.MatchResult, error)
}

// Engine orchestrates resolution and persistence of device matches.
type Engine struct {
	store    store.Store
	resolver Resolver
	carriers *normalize.CarrierTable
	log      *slog.Logger

	concurrency int
	batchSize   int
	limiter     *rate.Limiter
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(s store.Store, r Resolver, opts ...EngineOption) *Engine {
	eng := &Engine{
		store:       s,
		resolver:    r,
		carriers:    normalize.DefaultCarrierTable(),
		log:         slog.Default(),
		concurrency: defaultConcurrency,
		batchSize:   defaultBatchSize,
		limiter:     rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithConcurrency sets the number of devices resolved in parallel.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithBatchSize sets the maximum number of devices one rematch run handles.
func WithBatchSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithRateLimit paces resolutions to qps per second with the given burst.
// A non-positive qps disables pacing.
func WithRateLimit(qps float64, burst int) EngineOption {
	return func(e *Engine) {
		if qps <= 0 {
			e.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}

// WithCarrierTable sets the carrier table used when generating device SKUs.
func WithCarrierTable(t *normalize.CarrierTable) EngineOption {
	return func(e *Engine) {
		e.carriers = t
	}
}

// IngestDevice stores a device record with its generated SKU.
func (eng *Engine) IngestDevice(ctx context.Context, d *domain.Device) error {
	d.GeneratedSKU = skucode.Generate(d.Attributes, eng.carriers)
	if err := eng.store.UpsertDevice(ctx, d); err != nil {
		return fmt.Errorf("storing device: %w", err)
	}
	return nil
}

// MatchDevice resolves a stored device and persists the outcome. A device
// with no acceptable candidate is persisted with an empty result.
func (eng *Engine) MatchDevice(ctx context.Context, deviceID string) (*domain.DeviceMatch, error) {
	d, err := eng.store.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("getting device %s: %w", deviceID, err)
	}

	m, _, err := eng.matchAndSave(ctx, d)
	return m, err
}

// matchAndSave resolves d and saves the match, returning the batch outcome.
func (eng *Engine) matchAndSave(ctx context.Context, d *domain.Device) (*domain.DeviceMatch, string, error) {
	res, err := eng.resolver.ResolveSku(ctx, d.Attributes)
	if err != nil {
		if errors.Is(err, resolver.ErrMissingModel) {
			return nil, OutcomeInvalid, fmt.Errorf("resolving device %s: %w", d.ID, err)
		}
		return nil, "", fmt.Errorf("resolving device %s: %w", d.ID, err)
	}

	m := &domain.DeviceMatch{DeviceID: d.ID}
	outcome := OutcomeNoMatch
	if res != nil {
		m.Result = *res
		outcome = OutcomeMatched
		if res.MatchMethod == domain.MethodFailedDevice {
			outcome = OutcomeExcluded
		}
	}

	if err := eng.store.SaveMatch(ctx, m); err != nil {
		return nil, "", fmt.Errorf("saving match for device %s: %w", d.ID, err)
	}
	return m, outcome, nil
}

// Summary reports the outcome of a rematch run.
type Summary struct {
	JobID    string        `json:"job_id"`
	Devices  int           `json:"devices"`
	Matched  int           `json:"matched"`
	NoMatch  int           `json:"no_match"`
	Excluded int           `json:"excluded"`
	Invalid  int           `json:"invalid"`
	Duration time.Duration `json:"duration"`
}

func (s *Summary) add(outcome string) {
	switch outcome {
	case OutcomeMatched:
		s.Matched++
	case OutcomeNoMatch:
		s.NoMatch++
	case OutcomeExcluded:
		s.Excluded++
	case OutcomeInvalid:
		s.Invalid++
	}
}

// RunRematch resolves up to the configured batch size of unmatched devices.
// Devices are resolved concurrently; a catalog or store failure stops the
// run and is returned. The run is recorded as a job run.
func (eng *Engine) RunRematch(ctx context.Context) (*Summary, error) {
	start := time.Now()
	defer func() {
		metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := tracing.StartSpan(ctx, "engine.RunRematch")
	defer span.End()

	summary := &Summary{}

	jobID, err := eng.store.InsertJobRun(ctx, JobRematch)
	if err != nil {
		return nil, fmt.Errorf("recording job run: %w", err)
	}
	summary.JobID = jobID

	runErr := eng.rematch(ctx, summary)
	summary.Duration = time.Since(start)

	status, errText := "succeeded", ""
	if runErr != nil {
		status, errText = "failed", runErr.Error()
		tracing.RecordError(span, runErr)
	}

	// The run record is finalized even when ctx was canceled.
	if err := eng.store.CompleteJobRun(
		context.WithoutCancel(ctx), jobID, status, errText, summary.Matched,
	); err != nil {
		eng.log.Error("failed to complete job run", "job_id", jobID, "error", err)
	}

	span.SetAttributes(
		attribute.Int("devices", summary.Devices),
		attribute.Int("matched", summary.Matched),
	)

	if runErr != nil {
		eng.log.Error("rematch failed", "job_id", jobID, "devices", summary.Devices, "error", runErr)
		return summary, runErr
	}

	metrics.BatchLastSuccessTimestamp.SetToCurrentTime()
	eng.log.Info("rematch complete",
		"job_id", jobID,
		"devices", summary.Devices,
		"matched", summary.Matched,
		"no_match", summary.NoMatch,
		"excluded", summary.Excluded,
		"invalid", summary.Invalid,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (eng *Engine) rematch(ctx context.Context, summary *Summary) error {
	devices, err := eng.store.ListUnmatchedDevices(ctx, eng.batchSize)
	if err != nil {
		return fmt.Errorf("listing unmatched devices: %w", err)
	}
	summary.Devices = len(devices)
	if len(devices) == 0 {
		return nil
	}

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(eng.concurrency)

	for i := range devices {
		d := &devices[i]
		g.Go(func() error {
			if err := eng.limiter.Wait(gctx); err != nil {
				return err
			}

			_, outcome, err := eng.matchAndSave(gctx, d)
			if err != nil && outcome != OutcomeInvalid {
				return err
			}
			if err != nil {
				eng.log.Warn("skipping device", "device_id", d.ID, "error", err)
			}

			metrics.BatchDevicesTotal.WithLabelValues(outcome).Inc()
			mu.Lock()
			summary.add(outcome)
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}
