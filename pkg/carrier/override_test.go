package carrier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

func TestResolveOverride(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		notes    string
		brand    string
		recorded string
		want     domain.CarrierOverrideDecision
	}{
		{
			name:     "failed unit is excluded",
			notes:    "Battery test FAILED",
			brand:    "Samsung",
			recorded: "AT&T",
			want:     domain.CarrierOverrideDecision{IsExcluded: true, EffectiveCarrier: "ATT", Reason: ReasonFailed},
		},
		{
			name:     "exclusion wins over unlock language",
			notes:    "carrier unlocked, open back",
			brand:    "Samsung",
			recorded: "AT&T",
			want:     domain.CarrierOverrideDecision{IsExcluded: true, EffectiveCarrier: "ATT", Reason: ReasonFailed},
		},
		{
			name:     "no sim manager",
			notes:    "no sim manager",
			recorded: "Verizon",
			want:     domain.CarrierOverrideDecision{IsExcluded: true, EffectiveCarrier: "VERIZON", Reason: ReasonFailed},
		},
		{
			name:     "wifi issues",
			notes:    "WiFi issues on boot",
			recorded: "",
			want:     domain.CarrierOverrideDecision{IsExcluded: true, Reason: ReasonFailed},
		},
		{
			name:     "screen popped up",
			notes:    "screen popped up at hinge",
			brand:    "Apple",
			recorded: "T-Mobile",
			want:     domain.CarrierOverrideDecision{IsExcluded: true, EffectiveCarrier: "TMOBILE", Reason: ReasonFailed},
		},
		{
			name:     "samsung unlock on major carrier",
			notes:    "CARRIER UNLOCKED",
			brand:    "Samsung",
			recorded: "AT&T",
			want:     domain.CarrierOverrideDecision{ShouldOverride: true, EffectiveCarrier: "UNLOCKED", Reason: ReasonSamsungNote},
		},
		{
			name:     "galaxy brand with misspelling",
			notes:    "carrir unlock",
			brand:    "Galaxy",
			recorded: "tmo",
			want:     domain.CarrierOverrideDecision{ShouldOverride: true, EffectiveCarrier: "UNLOCKED", Reason: ReasonSamsungNote},
		},
		{
			name:     "samsung unlock on regional carrier is ignored",
			notes:    "unlocked",
			brand:    "Samsung",
			recorded: "US Cellular",
			want:     domain.CarrierOverrideDecision{EffectiveCarrier: "USCELLULAR"},
		},
		{
			name:     "samsung already unlocked",
			notes:    "unlocked",
			brand:    "Samsung",
			recorded: "Unlocked",
			want:     domain.CarrierOverrideDecision{EffectiveCarrier: "UNLOCKED"},
		},
		{
			name:     "apple unlock note does not override",
			notes:    "unlocked",
			brand:    "Apple",
			recorded: "Verizon",
			want:     domain.CarrierOverrideDecision{EffectiveCarrier: "VERIZON"},
		},
		{
			name:     "pixel esim lock overrides",
			notes:    "e-SIM locked",
			brand:    "Google",
			recorded: "Verizon",
			want:     domain.CarrierOverrideDecision{ShouldOverride: true, EffectiveCarrier: "UNLOCKED", Reason: ReasonPixelESIM},
		},
		{
			name:     "pixel brand alias",
			notes:    "ESIM LOCKED",
			brand:    "Pixel",
			recorded: "ATT",
			want:     domain.CarrierOverrideDecision{ShouldOverride: true, EffectiveCarrier: "UNLOCKED", Reason: ReasonPixelESIM},
		},
		{
			name:     "explicit lock keeps recorded carrier",
			notes:    "Carrier Locked",
			brand:    "Samsung",
			recorded: "Verizon",
			want:     domain.CarrierOverrideDecision{EffectiveCarrier: "VERIZON", Reason: ReasonExplicitLock},
		},
		{
			name:     "no notes",
			brand:    "Samsung",
			recorded: "AT&T",
			want:     domain.CarrierOverrideDecision{EffectiveCarrier: "ATT"},
		},
		{
			name:     "unrelated notes",
			notes:    "minor scratches on bezel",
			brand:    "Samsung",
			recorded: "AT&T",
			want:     domain.CarrierOverrideDecision{EffectiveCarrier: "ATT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolveOverride(tt.notes, tt.brand, tt.recorded))
		})
	}
}

func TestOverrider_CustomCarrierTable(t *testing.T) {
	t.Parallel()

	o := NewOverrider(normalize.NewCarrierTable(map[string][]string{
		normalize.CarrierTMobile: {"Metro by T-Mobile"},
	}))

	d := o.ResolveOverride("unlocked", "Samsung", "Metro by T-Mobile")
	assert.True(t, d.ShouldOverride)
	assert.Equal(t, normalize.CarrierUnlocked, d.EffectiveCarrier)
}
