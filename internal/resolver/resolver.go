// Package resolver finds the best canonical SKU for a device by querying the
// catalog tier by tier, from the most specific filter to the broadest, and
// scoring every candidate against the device's canonical attributes.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/donaldgifford/refurb-sku-matcher/internal/metrics"
	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
	"github.com/donaldgifford/refurb-sku-matcher/internal/tracing"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/carrier"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	score "github.com/donaldgifford/refurb-sku-matcher/pkg/scorer"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/skucode"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// scoreEpsilon is the tolerance under which two scores are considered tied.
const scoreEpsilon = 1e-9

// Resolver resolves devices to catalog SKUs. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	catalog   store.CatalogStore
	carriers  *normalize.CarrierTable
	overrider *carrier.Overrider
	tuning    score.Tuning
	policy    Policy
	log       *slog.Logger
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// WithTuning sets the scorer tuning.
func WithTuning(t score.Tuning) Option {
	return func(r *Resolver) {
		r.tuning = t
	}
}

// WithPolicy sets the acceptance policy.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithCarrierTable sets the carrier table used for device and candidate
// carriers.
func WithCarrierTable(t *normalize.CarrierTable) Option {
	return func(r *Resolver) {
		r.carriers = t
	}
}

// New creates a Resolver backed by catalog.
func New(catalog store.CatalogStore, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:  catalog,
		carriers: normalize.DefaultCarrierTable(),
		tuning:   score.DefaultTuning(),
		policy:   DefaultPolicy(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.overrider = carrier.NewOverrider(r.carriers)
	return r
}

// Resolution is a resolved device together with every candidate evaluated
// in the tier that decided it.
type Resolution struct {
	Result     *domain.MatchResult
	Device     domain.DeviceAttributes
	Unlocked   bool
	Tiers      []domain.Tier
	Candidates []domain.MatchCandidate
}

// ResolveSku returns the best SKU for attrs. It returns (nil, nil) when no
// tier produced an acceptable candidate.
func (r *Resolver) ResolveSku(ctx context.Context, attrs domain.DeviceAttributes) (*domain.MatchResult, error) {
	res, err := r.Resolve(ctx, attrs)
	if err != nil {
		return nil, err
	}
	return res.Result, nil
}

// Resolve is ResolveSku with the evaluation details attached. Result is nil
// when nothing matched.
func (r *Resolver) Resolve(ctx context.Context, attrs domain.DeviceAttributes) (*Resolution, error) {
	start := time.Now()
	defer func() {
		metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := tracing.StartSpan(ctx, "resolver.Resolve",
		attribute.String("device.model", attrs.Model),
		attribute.String("device.carrier", attrs.Carrier),
	)
	defer span.End()

	if strings.TrimSpace(attrs.Model) == "" {
		return nil, ErrMissingModel
	}

	d := r.canonicalize(attrs)
	if d.device.Model == "" {
		return nil, ErrMissingModel
	}

	res := &Resolution{Device: d.device, Unlocked: d.unlocked}

	if d.decision.IsExcluded {
		metrics.ExcludedDevicesTotal.Inc()
		metrics.ResolutionsTotal.WithLabelValues(string(domain.MethodFailedDevice)).Inc()
		decision := d.decision
		res.Result = &domain.MatchResult{
			MatchScore:      0,
			MatchMethod:     domain.MethodFailedDevice,
			CarrierOverride: &decision,
		}
		r.log.Debug("device excluded", "model", attrs.Model, "reason", decision.Reason)
		return res, nil
	}

	if d.decision.ShouldOverride {
		metrics.CarrierOverridesTotal.Inc()
	}

	for _, tier := range r.plan(d) {
		res.Tiers = append(res.Tiers, tier)

		candidates, best, err := r.runTier(ctx, tier, d)
		if err != nil {
			tracing.RecordError(span, err)
			return nil, err
		}
		res.Candidates = candidates
		if best == nil {
			continue
		}

		res.Result = r.result(tier, best, d)

		metrics.ResolutionTier.WithLabelValues(tier.String()).Inc()
		metrics.ResolutionsTotal.WithLabelValues(string(res.Result.MatchMethod)).Inc()
		metrics.MatchScore.Observe(res.Result.MatchScore)
		span.SetAttributes(
			attribute.String("match.sku", res.Result.SkuCode),
			attribute.String("match.tier", tier.String()),
			attribute.Float64("match.score", res.Result.MatchScore),
		)
		return res, nil
	}

	metrics.NoMatchTotal.Inc()
	r.log.Debug("no acceptable candidate",
		"model", d.device.Model,
		"carrier", d.device.Carrier,
		"tiers", len(res.Tiers),
	)
	return res, nil
}

// canonicalDevice is a device reduced to the tokens the catalog and the
// scorer compare.
type canonicalDevice struct {
	device      domain.DeviceAttributes
	family      string
	productType domain.ProductType
	unlocked    bool
	decision    domain.CarrierOverrideDecision
}

func (r *Resolver) canonicalize(attrs domain.DeviceAttributes) canonicalDevice {
	key := skucode.ModelKey(attrs.Model)

	brand := normalize.Brand(attrs.Brand)
	family := brand
	if family == "" {
		family = skucode.InferBrand(key)
	}
	if normalize.IsUnknown(family) {
		family = ""
	}

	decision := r.overrider.ResolveOverride(attrs.Notes, family, attrs.Carrier)
	effective := decision.EffectiveCarrier

	return canonicalDevice{
		device: domain.DeviceAttributes{
			Brand:    brand,
			Model:    key,
			Capacity: normalize.Capacity(attrs.Capacity),
			Color:    normalize.Color(attrs.Color),
			Carrier:  effective,
			Notes:    attrs.Notes,
		},
		family:      family,
		productType: skucode.ProductTypeOf(key),
		unlocked:    r.carriers.IsUnlocked(effective),
		decision:    decision,
	}
}

// result builds the externally visible result for an accepted candidate.
func (r *Resolver) result(tier domain.Tier, best *domain.MatchCandidate, d canonicalDevice) *domain.MatchResult {
	final := clamp(best.AdjustedScore)

	res := &domain.MatchResult{
		SkuCode:     best.SkuCode,
		MatchScore:  final,
		MatchMethod: r.policy.Method(final),
		Parsed:      best.Parsed,
		Tier:        tier.String(),
	}
	if d.decision.ShouldOverride {
		decision := d.decision
		res.CarrierOverride = &decision
	}
	return res
}

// better reports whether a outranks b: higher adjusted score, then base SKU
// over graded variant, then the lexicographically smaller code.
func better(a, b *domain.MatchCandidate) bool {
	if diff := a.AdjustedScore - b.AdjustedScore; diff > scoreEpsilon || diff < -scoreEpsilon {
		return diff > 0
	}
	aBase, bBase := a.Parsed.GradeSuffix == "", b.Parsed.GradeSuffix == ""
	if aBase != bBase {
		return aBase
	}
	return a.SkuCode < b.SkuCode
}
