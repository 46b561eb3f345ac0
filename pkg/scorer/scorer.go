package score

import (
	"strings"

	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// Weights defines the relative importance of each compared field.
type Weights struct {
	Brand    float64 `yaml:"brand"`
	Model    float64 `yaml:"model"`
	Capacity float64 `yaml:"capacity"`
	Color    float64 `yaml:"color"`
	Carrier  float64 `yaml:"carrier"`
}

// DefaultWeights returns the default field weights. Carrier dominates
// because a carrier mismatch means the wrong SIM compatibility.
func DefaultWeights() Weights {
	return Weights{
		Brand:    0.10,
		Model:    0.20,
		Capacity: 0.15,
		Color:    0.10,
		Carrier:  0.45,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Brand + w.Model + w.Capacity + w.Color + w.Carrier
}

// Tuning holds every constant used by Score. The defaults were tuned against
// production matching data; change them deliberately.
type Tuning struct {
	Weights Weights `yaml:"weights"`

	// Model penalty: pull the score toward the model sub-score.
	ModelSevereBelow   float64 `yaml:"model_severe_below"`
	ModelSeverePenalty float64 `yaml:"model_severe_penalty"`
	ModelWeakBelow     float64 `yaml:"model_weak_below"`
	ModelWeakPenalty   float64 `yaml:"model_weak_penalty"`

	// Candidates carrying a carrier field.
	CarrierStrong        float64 `yaml:"carrier_strong"`
	CarrierGood          float64 `yaml:"carrier_good"`
	CarrierPoor          float64 `yaml:"carrier_poor"`
	FourFieldStrongBonus float64 `yaml:"four_field_strong_bonus"`
	FourFieldGoodBonus   float64 `yaml:"four_field_good_bonus"`
	FourFieldPoorPenalty float64 `yaml:"four_field_poor_penalty"`

	// Candidates without a carrier field.
	ThreeFieldUnlockedBonus float64 `yaml:"three_field_unlocked_bonus"`
	ThreeFieldLockedPenalty float64 `yaml:"three_field_locked_penalty"`

	BaseSkuNudge float64 `yaml:"base_sku_nudge"`
}

// DefaultTuning returns the production tuning.
func DefaultTuning() Tuning {
	return Tuning{
		Weights:                 DefaultWeights(),
		ModelSevereBelow:        0.3,
		ModelSeverePenalty:      0.7,
		ModelWeakBelow:          0.5,
		ModelWeakPenalty:        0.4,
		CarrierStrong:           0.9,
		CarrierGood:             0.7,
		CarrierPoor:             0.3,
		FourFieldStrongBonus:    0.25,
		FourFieldGoodBonus:      0.15,
		FourFieldPoorPenalty:    0.5,
		ThreeFieldUnlockedBonus: 0.20,
		ThreeFieldLockedPenalty: 0.60,
		BaseSkuNudge:            0.001,
	}
}

// Breakdown shows per-field sub-scores and the score after each stage.
type Breakdown struct {
	Brand    float64 `json:"brand"`
	Model    float64 `json:"model"`
	Capacity float64 `json:"capacity"`
	Color    float64 `json:"color"`
	Carrier  float64 `json:"carrier"`
	Weighted float64 `json:"weighted"`
	Total    float64 `json:"total"`
}

// CompareField scores the similarity of two field values in [0,1].
//
// Exact case-insensitive match scores 1.0. When exactly one side is empty or
// "Unknown" the other side gets partial credit of 0.5; both unknown scores 0.
// Substring containment in either direction scores 0.8, a known synonym
// (BLK and BLACK) 0.6, anything else 0.
func CompareField(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))

	ua, ub := normalize.IsUnknown(a), normalize.IsUnknown(b)
	switch {
	case ua && ub:
		return 0
	case ua || ub:
		return 0.5
	case a == b:
		return 1.0
	case strings.Contains(a, b), strings.Contains(b, a):
		return 0.8
	case normalize.Synonym(a, b):
		return 0.6
	default:
		return 0
	}
}

// CarrierScore scores a candidate's carrier against the device's effective
// carrier. Both values are expected to be canonical carrier tokens.
func CarrierScore(deviceCarrier, candidateCarrier string, deviceUnlocked bool) float64 {
	dev := strings.ToUpper(strings.TrimSpace(deviceCarrier))
	cand := strings.ToUpper(strings.TrimSpace(candidateCarrier))

	if deviceUnlocked {
		if cand == "" || cand == normalize.CarrierUnlocked {
			return 1.0
		}
		return 0.1
	}

	switch {
	case cand == "":
		return 0.1
	case dev == cand:
		return 1.0
	case normalize.Synonym(dev, cand):
		return 0.8
	case dev != "" && (strings.Contains(dev, cand) || strings.Contains(cand, dev)):
		return 0.6
	default:
		return 0.2
	}
}

// Score computes the similarity of a catalog candidate to a device.
//
// Device fields must already be canonical: Model is the compact model key,
// Capacity is "<n>GB", Color is a color token and Carrier is the effective
// carrier token. A color of UNKNOWN on either side is scored as a mismatch.
func Score(device domain.DeviceAttributes, candidate domain.ParsedSkuFields, deviceUnlocked bool, t Tuning) Breakdown {
	b := Breakdown{
		Brand:    CompareField(device.Brand, candidate.Brand),
		Model:    CompareField(device.Model, candidate.Model),
		Capacity: CompareField(device.Capacity, candidate.Capacity),
		Color:    colorScore(device.Color, candidate.Color),
		Carrier:  CarrierScore(device.Carrier, candidate.Carrier, deviceUnlocked),
	}

	w := t.Weights
	s := clamp(b.Brand*w.Brand +
		b.Model*w.Model +
		b.Capacity*w.Capacity +
		b.Color*w.Color +
		b.Carrier*w.Carrier)
	b.Weighted = s

	// Model penalty.
	if s > b.Model {
		switch {
		case b.Model < t.ModelSevereBelow:
			s = clamp(s - t.ModelSeverePenalty*(s-b.Model))
		case b.Model < t.ModelWeakBelow:
			s = clamp(s - t.ModelWeakPenalty*(s-b.Model))
		}
	}

	// Field-count normalization.
	if candidate.HasCarrier() {
		switch {
		case b.Carrier >= t.CarrierStrong:
			s = bonus(s, t.FourFieldStrongBonus)
		case b.Carrier >= t.CarrierGood:
			s = bonus(s, t.FourFieldGoodBonus)
		case b.Carrier < t.CarrierPoor:
			s = penalty(s, t.FourFieldPoorPenalty)
		}
	} else {
		switch {
		case deviceUnlocked && b.Carrier >= t.CarrierStrong:
			s = bonus(s, t.ThreeFieldUnlockedBonus)
		case !deviceUnlocked:
			s = penalty(s, t.ThreeFieldLockedPenalty)
		}
	}

	// Base SKU nudge.
	if candidate.GradeSuffix == "" {
		s = clamp(s + t.BaseSkuNudge)
	}

	b.Total = s
	return b
}

func colorScore(a, b string) float64 {
	if strings.EqualFold(a, normalize.ColorUnknown) || strings.EqualFold(b, normalize.ColorUnknown) {
		return 0
	}
	return CompareField(a, b)
}

// bonus closes pct of the remaining gap to 1.
func bonus(s, pct float64) float64 {
	return clamp(s + pct*(1-s))
}

// penalty removes pct of the score.
func penalty(s, pct float64) float64 {
	return clamp(s - pct*s)
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
