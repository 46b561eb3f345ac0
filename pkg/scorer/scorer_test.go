package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/refurb-sku-matcher/pkg/skucode"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

func TestScore_DefaultWeights(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 0.001, "default weights should sum to 1.0")
}

func TestCompareField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "exact", a: "FOLD3", b: "FOLD3", want: 1.0},
		{name: "exact case-insensitive", a: "Samsung", b: "SAMSUNG", want: 1.0},
		{name: "substring", a: "S21", b: "S21ULTRA", want: 0.8},
		{name: "substring reversed", a: "S21ULTRA", b: "S21", want: 0.8},
		{name: "one side unknown", a: "Unknown", b: "Samsung", want: 0.5},
		{name: "one side empty", a: "Samsung", b: "", want: 0.5},
		{name: "both unknown", a: "", b: "Unknown", want: 0},
		{name: "synonym", a: "BLK", b: "BLACK", want: 0.6},
		{name: "mismatch", a: "FOLD3", b: "FLIP4", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, CompareField(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCarrierScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		device    string
		candidate string
		unlocked  bool
		want      float64
	}{
		{name: "unlocked vs carrier-less", device: "UNLOCKED", candidate: "", unlocked: true, want: 1.0},
		{name: "unlocked vs explicit unlocked", device: "", candidate: "UNLOCKED", unlocked: true, want: 1.0},
		{name: "unlocked vs carrier", device: "UNLOCKED", candidate: "ATT", unlocked: true, want: 0.1},
		{name: "carrier vs carrier-less", device: "ATT", candidate: "", want: 0.1},
		{name: "carrier exact", device: "ATT", candidate: "ATT", want: 1.0},
		{name: "carrier synonym", device: "TMOBILE", candidate: "TMO", want: 0.8},
		{name: "carrier substring", device: "USCELLULAR", candidate: "CELLULAR", want: 0.6},
		{name: "carrier mismatch", device: "ATT", candidate: "VERIZON", want: 0.2},
		{name: "carrier vs unlocked token", device: "ATT", candidate: "UNLOCKED", want: 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, CarrierScore(tt.device, tt.candidate, tt.unlocked), 1e-9)
		})
	}
}

func TestScore_ExactUnlockedMatch(t *testing.T) {
	t.Parallel()

	device := domain.DeviceAttributes{Model: "FOLD3", Capacity: "512GB", Color: "BLK", Carrier: "UNLOCKED"}

	base := Score(device, skucode.Parse("FOLD3-512-BLK"), true, DefaultTuning())
	assert.InDelta(t, 0.5, base.Brand, 1e-9, "unrecorded brand earns partial credit")
	assert.InDelta(t, 0.95, base.Weighted, 1e-9)
	assert.InDelta(t, 0.961, base.Total, 1e-9)

	graded := Score(device, skucode.Parse("FOLD3-512-BLK-ACCEPTABLE"), true, DefaultTuning())
	assert.InDelta(t, 0.96, graded.Total, 1e-9)
	assert.Greater(t, base.Total, graded.Total, "base SKU wins the tie")
}

func TestScore_UnlockedDeviceAgainstCarrierSku(t *testing.T) {
	t.Parallel()

	device := domain.DeviceAttributes{
		Brand: "Samsung", Model: "FOLD3", Capacity: "256GB", Color: "BLK", Carrier: "UNLOCKED",
	}

	b := Score(device, skucode.Parse("FOLD3-256-BLK-ATT"), true, DefaultTuning())
	assert.InDelta(t, 0.1, b.Carrier, 1e-9)
	assert.InDelta(t, 0.595, b.Weighted, 1e-9)
	assert.InDelta(t, 0.2985, b.Total, 1e-9, "poor carrier on a 4-field SKU is halved")
}

func TestScore_CarrierDeviceAgainstCarrierlessSku(t *testing.T) {
	t.Parallel()

	device := domain.DeviceAttributes{
		Brand: "Samsung", Model: "FOLD3", Capacity: "256GB", Color: "BLK", Carrier: "ATT",
	}

	b := Score(device, skucode.Parse("FOLD3-256-BLK"), false, DefaultTuning())
	assert.InDelta(t, 0.595, b.Weighted, 1e-9)
	assert.InDelta(t, 0.595*0.4+0.001, b.Total, 1e-9)

	match := Score(device, skucode.Parse("FOLD3-256-BLK-ATT"), false, DefaultTuning())
	assert.InDelta(t, 1.0, match.Total, 1e-9)
}

func TestScore_ModelPenalty(t *testing.T) {
	t.Parallel()

	device := domain.DeviceAttributes{
		Brand: "Samsung", Model: "FOLD3", Capacity: "256GB", Color: "BLK", Carrier: "ATT",
	}

	b := Score(device, skucode.Parse("S21-256-BLK-ATT"), false, DefaultTuning())
	assert.InDelta(t, 0, b.Model, 1e-9)
	assert.InDelta(t, 0.8, b.Weighted, 1e-9)

	// 0.8 pulled 70% of the way to 0, then the strong-carrier bonus.
	want := 0.8 - 0.7*0.8
	want += 0.25 * (1 - want)
	assert.InDelta(t, want+0.001, b.Total, 1e-9)
	assert.Less(t, b.Total, 0.5, "a wrong model cannot be masked by carrier and color")
}

func TestScore_WeakModelPenalty(t *testing.T) {
	t.Parallel()

	device := domain.DeviceAttributes{
		Brand: "Samsung", Capacity: "512GB", Color: "BLK", Carrier: "ATT",
	}
	candidate := skucode.Parse("FOLD3-512-BLK-ATT")

	// An unrecorded model scores 0.5, just above the default weak band.
	plain := Score(device, candidate, false, DefaultTuning())
	assert.InDelta(t, 0.5, plain.Model, 1e-9)
	assert.InDelta(t, 0.9, plain.Weighted, 1e-9)
	assert.InDelta(t, 0.9+0.25*0.1+0.001, plain.Total, 1e-9)

	tuning := DefaultTuning()
	tuning.ModelWeakBelow = 0.55

	b := Score(device, candidate, false, tuning)
	assert.InDelta(t, 0.9, b.Weighted, 1e-9)

	// 40% of the gap between 0.9 and the model sub-score is removed.
	want := 0.9 - 0.4*(0.9-0.5)
	want += 0.25 * (1 - want)
	assert.InDelta(t, want+0.001, b.Total, 1e-9)
	assert.Less(t, b.Total, plain.Total)
}

func TestScore_FourFieldGoodCarrierBonus(t *testing.T) {
	t.Parallel()

	device := domain.DeviceAttributes{
		Brand: "Samsung", Model: "FOLD3", Capacity: "512GB", Color: "BLK", Carrier: "TMOBILE",
	}
	candidate := skucode.Parse("FOLD3-512-BLK-TMO")
	candidate.Carrier = "TMO"

	b := Score(device, candidate, false, DefaultTuning())
	assert.InDelta(t, 0.8, b.Carrier, 1e-9, "carrier synonym")
	assert.InDelta(t, 0.91, b.Weighted, 1e-9)

	// 15% of the gap to 1 is closed, then the base nudge.
	assert.InDelta(t, 0.91+0.15*0.09+0.001, b.Total, 1e-9)

	exact := Score(device, skucode.Parse("FOLD3-512-BLK-TMOBILE"), false, DefaultTuning())
	assert.Greater(t, exact.Total, b.Total)
}

func TestScore_ExplicitUnlockedSkuEdgesOutBase(t *testing.T) {
	t.Parallel()

	device := domain.DeviceAttributes{Model: "FOLD3", Capacity: "512GB", Color: "BLK", Carrier: "UNLOCKED"}

	explicit := Score(device, skucode.Parse("FOLD3-512-BLK-UNLOCKED"), true, DefaultTuning())
	assert.InDelta(t, 1.0, explicit.Carrier, 1e-9)
	assert.InDelta(t, 0.95+0.25*0.05+0.001, explicit.Total, 1e-9)

	base := Score(device, skucode.Parse("FOLD3-512-BLK"), true, DefaultTuning())
	assert.InDelta(t, 0.961, base.Total, 1e-9)
	assert.Greater(t, explicit.Total, base.Total, "an UNLOCKED field counts as a carrier match")
}

func TestScore_AmbiguousColorIsMismatch(t *testing.T) {
	t.Parallel()

	device := domain.DeviceAttributes{Brand: "Samsung", Model: "S21", Capacity: "128GB", Color: "UNKNOWN"}

	b := Score(device, skucode.Parse("S21-128-BLK"), true, DefaultTuning())
	assert.InDelta(t, 0, b.Color, 1e-9)

	b = Score(device, skucode.Parse("S21-128-PHA"), true, DefaultTuning())
	assert.InDelta(t, 0, b.Color, 1e-9, "UNKNOWN never matches UNKNOWN")
}

func TestScore_AlwaysInRange(t *testing.T) {
	t.Parallel()

	devices := []domain.DeviceAttributes{
		{},
		{Model: "FOLD3", Carrier: "ATT"},
		{Brand: "Apple", Model: "IP12", Capacity: "64GB", Color: "WHT", Carrier: "UNLOCKED"},
	}
	codes := []string{"", "FOLD3-512-BLK", "FOLD3-512-BLK-VG-ATT", "SKU-123", "IP12-64-WHT-UNLOCKED"}

	tuning := DefaultTuning()
	tuning.BaseSkuNudge = 0.5

	for _, d := range devices {
		for _, code := range codes {
			for _, unlocked := range []bool{true, false} {
				total := Score(d, skucode.Parse(code), unlocked, tuning).Total
				assert.GreaterOrEqual(t, total, 0.0)
				assert.LessOrEqual(t, total, 1.0)
			}
		}
	}
}
