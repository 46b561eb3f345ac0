// Package skucode decodes canonical SKU codes into structured fields,
// classifies product types, and generates codes from device attributes.
//
// A canonical code is a hyphen-separated list of positional fields:
//
//	MODEL-CAPACITY-COLOR[-GRADE...][-CARRIER][-GRADE...]
//
// e.g. FOLD3-512-BLK, FOLD3-512-BLK-ATT, FOLD3-512-BLK-VG-TMOBILE,
// FOLD3-512-BLK-LIKE-NEW.
package skucode

import (
	"regexp"
	"strings"

	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// vendorOpaque matches internal codes that carry no decodable structure.
var vendorOpaque = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^SKU[-_]?\d+$`),
	regexp.MustCompile(`^(VND|INT)[-_]`),
}

// IsVendorOpaque reports whether code is an internal vendor code that cannot
// be decoded positionally.
func IsVendorOpaque(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, re := range vendorOpaque {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

// Parse decodes a canonical SKU code. It never fails: codes that cannot be
// decoded yield a stub whose fields are all normalize.Unknown.
func Parse(code string) domain.ParsedSkuFields {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || IsVendorOpaque(code) {
		return stub()
	}

	parts := splitFields(code)
	if len(parts) == 0 {
		return stub()
	}

	p := domain.ParsedSkuFields{
		Model: parts[0],
		Brand: InferBrand(parts[0]),
	}

	if len(parts) > 1 && normalize.IsCapacity(parts[1]) {
		p.Capacity = normalize.Capacity(parts[1])
	}

	if len(parts) > 2 {
		p.Color = normalize.Color(parts[2])
	}

	if len(parts) > 3 {
		p.Carrier, p.GradeSuffix = trailingFields(parts[3:])
	}

	return p
}

// trailingFields splits the fields after color into carrier and grade. Grade
// tokens are never a carrier: they join into one suffix (LIKE-NEW) and the
// first other token is the carrier.
func trailingFields(fields []string) (carrier, grade string) {
	var grades []string
	for _, f := range fields {
		switch {
		case normalize.IsGradeSuffix(f):
			grades = append(grades, f)
		case carrier == "":
			carrier = normalize.Carrier(f)
		}
	}
	return carrier, strings.Join(grades, "-")
}

// HasGradeSuffix reports whether code carries a condition/grade suffix.
func HasGradeSuffix(code string) bool {
	return Parse(code).GradeSuffix != ""
}

func splitFields(code string) []string {
	raw := strings.Split(code, "-")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func stub() domain.ParsedSkuFields {
	return domain.ParsedSkuFields{
		Brand:    normalize.Unknown,
		Model:    normalize.Unknown,
		Capacity: normalize.Unknown,
		Color:    normalize.Unknown,
		Carrier:  normalize.Unknown,
		Stub:     true,
	}
}

var (
	samsungSeriesRe = regexp.MustCompile(`^(S\d{2}|NOTE\d*|TAB|WATCH|ZFOLD|ZFLIP)`)
	appleModelNoRe  = regexp.MustCompile(`^A\d{4}$`)
)

// InferBrand guesses the brand from a model token or model name.
func InferBrand(model string) string {
	m := normalize.Compact(model)
	switch {
	case m == "":
		return normalize.Unknown
	case strings.Contains(m, "PIXEL"), strings.HasPrefix(m, "GOOGLE"):
		return "Google"
	case strings.Contains(m, "GALAXY"), strings.Contains(m, "FOLD"), strings.Contains(m, "FLIP"),
		strings.HasPrefix(m, "SAMSUNG"), samsungSeriesRe.MatchString(m):
		return "Samsung"
	case strings.HasPrefix(m, "IP"), strings.HasPrefix(m, "APPLE"), appleModelNoRe.MatchString(m):
		return "Apple"
	default:
		return normalize.Unknown
	}
}
