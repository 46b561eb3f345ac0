package resolver

import (
	"errors"
	"fmt"

	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// Policy holds the acceptance thresholds and method-label cutoffs applied to
// scored candidates. The defaults were validated against production data.
type Policy struct {
	// Carrier override active.
	OverrideMinRaw          float64 `yaml:"override_min_raw"`
	OverrideUnlockedBonus   float64 `yaml:"override_unlocked_bonus"`
	OverrideExactBonus      float64 `yaml:"override_exact_bonus"`
	OverrideMismatchPenalty float64 `yaml:"override_mismatch_penalty"`
	OverrideAccept          float64 `yaml:"override_accept"`

	// Candidates carrying a carrier field.
	CarrierAccept        float64 `yaml:"carrier_accept"`
	CarrierFallbackRaw   float64 `yaml:"carrier_fallback_raw"`
	CarrierFallbackScore float64 `yaml:"carrier_fallback_score"`
	CarrierFallbackBonus float64 `yaml:"carrier_fallback_bonus"`

	// Candidates without a carrier field.
	UnlockedAccept float64 `yaml:"unlocked_accept"`

	// Method labels.
	ExactAtLeast     float64 `yaml:"exact_at_least"`
	FuzzyAtLeast     float64 `yaml:"fuzzy_at_least"`
	RuleBasedAtLeast float64 `yaml:"rule_based_at_least"`

	// CandidateLimit caps rows fetched per tier. Zero uses the store default.
	CandidateLimit int `yaml:"candidate_limit"`
}

// DefaultPolicy returns the production acceptance policy.
func DefaultPolicy() Policy {
	return Policy{
		OverrideMinRaw:          0.5,
		OverrideUnlockedBonus:   0.4,
		OverrideExactBonus:      0.2,
		OverrideMismatchPenalty: 0.3,
		OverrideAccept:          0.4,
		CarrierAccept:           0.7,
		CarrierFallbackRaw:      0.5,
		CarrierFallbackScore:    0.9,
		CarrierFallbackBonus:    0.2,
		UnlockedAccept:          0.6,
		ExactAtLeast:            0.95,
		FuzzyAtLeast:            0.8,
		RuleBasedAtLeast:        0.6,
	}
}

// Validate checks that thresholds are probabilities and labels are ordered.
func (p Policy) Validate() error {
	var errs []error

	unit := map[string]float64{
		"override_min_raw":       p.OverrideMinRaw,
		"override_accept":        p.OverrideAccept,
		"carrier_accept":         p.CarrierAccept,
		"carrier_fallback_raw":   p.CarrierFallbackRaw,
		"carrier_fallback_score": p.CarrierFallbackScore,
		"unlocked_accept":        p.UnlockedAccept,
		"exact_at_least":         p.ExactAtLeast,
		"fuzzy_at_least":         p.FuzzyAtLeast,
		"rule_based_at_least":    p.RuleBasedAtLeast,
	}
	for name, v := range unit {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", name, v))
		}
	}

	if p.ExactAtLeast < p.FuzzyAtLeast || p.FuzzyAtLeast < p.RuleBasedAtLeast {
		errs = append(errs, errors.New("method cutoffs must satisfy exact >= fuzzy >= rule_based"))
	}
	if p.CandidateLimit < 0 {
		errs = append(errs, errors.New("candidate_limit must not be negative"))
	}

	return errors.Join(errs...)
}

// Method labels a final score.
func (p Policy) Method(score float64) domain.MatchMethod {
	switch {
	case score >= p.ExactAtLeast:
		return domain.MethodExact
	case score >= p.FuzzyAtLeast:
		return domain.MethodFuzzy
	case score >= p.RuleBasedAtLeast:
		return domain.MethodRuleBased
	default:
		return domain.MethodPartial
	}
}

// accept sets the candidate's adjusted score and acceptance. effective is the
// device's effective carrier token.
func (p Policy) accept(c *domain.MatchCandidate, overridden bool, effective string) {
	raw := c.RawScore
	c.AdjustedScore = raw

	switch {
	case overridden:
		if raw < p.OverrideMinRaw {
			return
		}
		c.AdjustedScore = clamp(raw + p.overrideAlignment(effective, c.Parsed.Carrier))
		c.Accepted = c.AdjustedScore >= p.OverrideAccept

	case c.Parsed.HasCarrier():
		switch {
		case raw >= p.CarrierAccept:
			c.Accepted = true
		case raw >= p.CarrierFallbackRaw && c.CarrierScore >= p.CarrierFallbackScore:
			c.AdjustedScore = clamp(raw + p.CarrierFallbackBonus)
			c.Accepted = true
		}

	default:
		c.Accepted = raw >= p.UnlockedAccept
	}
}

func (p Policy) overrideAlignment(effective, candidate string) float64 {
	candidateUnlocked := candidate == "" || candidate == normalize.CarrierUnlocked

	switch {
	case effective == normalize.CarrierUnlocked && candidateUnlocked:
		return p.OverrideUnlockedBonus
	case effective != normalize.CarrierUnlocked && candidate == effective:
		return p.OverrideExactBonus
	default:
		return -p.OverrideMismatchPenalty
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
