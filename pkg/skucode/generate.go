package skucode

import (
	"strings"

	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// modelFiller are words dropped from a model name when building a model key.
var modelFiller = map[string]struct{}{
	"SAMSUNG": {},
	"GALAXY":  {},
	"APPLE":   {},
	"GOOGLE":  {},
	"Z":       {},
	"DUOS":    {},
	"DUAL":    {},
	"SIM":     {},
}

// ModelKey reduces a free-form model name to the compact model token used as
// the first field of a SKU code. "Galaxy Z Fold3 Duos" becomes "FOLD3" and
// "iPhone 12 Pro" becomes "IP12PRO".
func ModelKey(model string) string {
	model = strings.ReplaceAll(model, "+", " PLUS ")

	var b strings.Builder
	for _, w := range strings.Fields(strings.ToUpper(normalize.Text(model))) {
		if _, skip := modelFiller[w]; skip {
			continue
		}
		if w == "IPHONE" {
			w = "IP"
		}
		b.WriteString(w)
	}

	if b.Len() == 0 {
		return normalize.Compact(model)
	}
	return b.String()
}

// Generate builds a canonical SKU code from device attributes. The carrier
// field is omitted for unlocked devices. It returns "" when the model is
// missing.
func Generate(attrs domain.DeviceAttributes, carriers *normalize.CarrierTable) string {
	key := ModelKey(attrs.Model)
	if key == "" {
		return ""
	}
	if carriers == nil {
		carriers = normalize.DefaultCarrierTable()
	}

	capacity := "NA"
	if c := normalize.Capacity(attrs.Capacity); c != "" && normalize.IsCapacity(c) {
		capacity = strings.TrimSuffix(c, "GB")
	}

	color := normalize.Color(attrs.Color)
	if color == "" {
		color = normalize.ColorUnknown
	}

	fields := []string{key, capacity, color}
	if !carriers.IsUnlocked(attrs.Carrier) {
		fields = append(fields, carriers.Normalize(attrs.Carrier))
	}

	return strings.Join(fields, "-")
}

// Entry derives the catalog columns for a canonical code.
func Entry(code, sourceTab string) domain.SkuEntry {
	code = strings.ToUpper(strings.TrimSpace(code))
	p := Parse(code)

	return domain.SkuEntry{
		Code:        code,
		Brand:       p.Brand,
		ModelKey:    p.Model,
		Capacity:    p.Capacity,
		Color:       p.Color,
		Carrier:     p.Carrier,
		ProductType: ProductTypeOf(code),
		IsUnlocked:  p.Carrier == "" || p.Carrier == normalize.CarrierUnlocked,
		SourceTab:   sourceTab,
	}
}
