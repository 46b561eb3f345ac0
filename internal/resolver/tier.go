package resolver

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/donaldgifford/refurb-sku-matcher/internal/metrics"
	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
	"github.com/donaldgifford/refurb-sku-matcher/internal/tracing"
	score "github.com/donaldgifford/refurb-sku-matcher/pkg/scorer"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/skucode"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// plan lists the tiers worth querying for d. A tier whose filter fields are
// missing would match nothing useful and is skipped; brand tiers need a
// known brand family.
func (r *Resolver) plan(d canonicalDevice) []domain.Tier {
	var tiers []domain.Tier

	if d.device.Capacity != "" && d.device.Color != "" {
		tiers = append(tiers, domain.TierExact)
	}
	tiers = append(tiers, domain.TierBrandModel)
	if d.family != "" {
		if d.device.Capacity != "" {
			tiers = append(tiers, domain.TierBrandCapacity)
		}
		tiers = append(tiers, domain.TierBrandOnly)
	}

	return tiers
}

func (r *Resolver) spec(tier domain.Tier, d canonicalDevice) *store.TierSpec {
	return &store.TierSpec{
		Tier:        tier,
		ProductType: d.productType,
		Unlocked:    d.unlocked,
		Brand:       d.family,
		ModelKey:    d.device.Model,
		Capacity:    d.device.Capacity,
		Color:       d.device.Color,
		Limit:       r.policy.CandidateLimit,
	}
}

// runTier issues exactly one catalog query for tier, scores every eligible
// row and returns the evaluated candidates with the best accepted one.
func (r *Resolver) runTier(
	ctx context.Context,
	tier domain.Tier,
	d canonicalDevice,
) ([]domain.MatchCandidate, *domain.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.tier", attribute.String("tier", tier.String()))
	defer span.End()

	metrics.CatalogQueriesTotal.WithLabelValues(tier.String()).Inc()

	rows, err := r.catalog.QueryCandidates(ctx, r.spec(tier, d))
	if err != nil {
		metrics.CatalogQueryErrorsTotal.Inc()
		tracing.RecordError(span, err)
		r.log.Error("catalog query failed", "tier", tier.String(), "error", err)
		return nil, nil, &CatalogError{Tier: tier, Err: err}
	}
	metrics.CatalogCandidates.Observe(float64(len(rows)))
	span.SetAttributes(attribute.Int("candidates", len(rows)))

	candidates := make([]domain.MatchCandidate, 0, len(rows))
	for i := range rows {
		c, ok := r.evaluate(&rows[i], d)
		if ok {
			candidates = append(candidates, c)
		}
	}

	var best *domain.MatchCandidate
	for i := range candidates {
		c := &candidates[i]
		if !c.Accepted {
			continue
		}
		if best == nil || better(c, best) {
			best = c
		}
	}

	r.log.Debug("tier evaluated",
		"tier", tier.String(),
		"rows", len(rows),
		"eligible", len(candidates),
		"accepted", best != nil,
	)

	return candidates, best, nil
}

// evaluate scores one catalog row. Rows of another product type or carrier
// class are never compared and report false.
func (r *Resolver) evaluate(row *domain.RawSkuRow, d canonicalDevice) (domain.MatchCandidate, bool) {
	code := strings.ToUpper(strings.TrimSpace(row.SkuCode))
	if code == "" {
		return domain.MatchCandidate{}, false
	}
	if skucode.ProductTypeOf(code) != d.productType {
		return domain.MatchCandidate{}, false
	}

	parsed := skucode.Parse(code)
	if parsed.Carrier != "" && !parsed.Stub {
		parsed.Carrier = r.carriers.Normalize(parsed.Carrier)
	}

	if row.IsUnlocked != d.unlocked || (!parsed.Stub && r.carriers.IsUnlocked(parsed.Carrier) != d.unlocked) {
		return domain.MatchCandidate{}, false
	}

	b := score.Score(d.device, parsed, d.unlocked, r.tuning)
	c := domain.MatchCandidate{
		SkuCode:      code,
		Parsed:       parsed,
		RawScore:     b.Total,
		CarrierScore: b.Carrier,
	}
	r.policy.accept(&c, d.decision.ShouldOverride, d.device.Carrier)

	return c, true
}
