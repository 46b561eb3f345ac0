// Package normalize canonicalizes free-form device attribute text (brand,
// capacity, color, carrier) into comparable tokens. All lookup tables are
// built once at package init and never mutated afterwards, so every function
// here is safe for concurrent use.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unknown is the placeholder for a field that could not be determined.
const Unknown = "Unknown"

var whitespaceRe = regexp.MustCompile(`\s+`)

// Text lower-cases s, strips diacritics and every character that is not a
// letter, digit, or whitespace, and collapses whitespace runs to one space.
// Empty input yields an empty token.
func Text(s string) string {
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}

// Compact upper-cases s and removes everything but letters and digits.
// "AT&T" and "at t" both compact to "ATT".
func Compact(s string) string {
	return strings.ToUpper(strings.ReplaceAll(Text(s), " ", ""))
}

// IsUnknown reports whether a field value carries no usable information.
func IsUnknown(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, Unknown)
}

var capacityRe = regexp.MustCompile(`^(\d+)\s*(GB|G|TB|T)?$`)

// Capacity normalizes a storage capacity to "<n>GB" (or "<n>TB" for terabyte
// values). Bare integers are assumed to be gigabytes. Input that does not
// look like a capacity is returned compacted so it still compares verbatim.
func Capacity(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	m := capacityRe.FindStringSubmatch(s)
	if m == nil {
		return Compact(s)
	}

	switch m[2] {
	case "TB", "T":
		return m[1] + "TB"
	default:
		return m[1] + "GB"
	}
}

// IsCapacity reports whether s parses as a capacity token.
func IsCapacity(s string) bool {
	return capacityRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// brandAliases maps compacted brand or product-line names to the canonical brand.
var brandAliases = map[string]string{
	"SAMSUNG":  "Samsung",
	"GALAXY":   "Samsung",
	"APPLE":    "Apple",
	"IPHONE":   "Apple",
	"IPAD":     "Apple",
	"GOOGLE":   "Google",
	"PIXEL":    "Google",
	"MOTOROLA": "Motorola",
	"MOTO":     "Motorola",
	"ONEPLUS":  "OnePlus",
	"LG":       "LG",
}

// Brand maps a brand or product-line name to its canonical brand. Unrecognized
// input is returned trimmed; empty input stays empty.
func Brand(s string) string {
	c := Compact(s)
	if c == "" {
		return ""
	}
	if b, ok := brandAliases[c]; ok {
		return b
	}
	for _, word := range strings.Fields(strings.ToUpper(Text(s))) {
		if b, ok := brandAliases[word]; ok {
			return b
		}
	}
	return strings.TrimSpace(s)
}

// gradeSuffixes are trailing SKU tokens that describe physical condition
// rather than a carrier.
var gradeSuffixes = map[string]struct{}{
	"VG":         {},
	"ACCEPTABLE": {},
	"LIKE":       {},
	"LIKENEW":    {},
	"NEW":        {},
	"EXCELLENT":  {},
	"GOOD":       {},
	"FAIR":       {},
}

// IsGradeSuffix reports whether tok is a condition/grade suffix.
func IsGradeSuffix(tok string) bool {
	_, ok := gradeSuffixes[Compact(tok)]
	return ok
}

// synonymGroups maps a compacted variant to the key of its synonym group.
var synonymGroups = buildSynonymGroups()

func buildSynonymGroups() map[string]string {
	groups := make(map[string]string)
	for word, token := range colorWords {
		groups[word] = "color:" + token
		groups[token] = "color:" + token
	}
	for canonical, variants := range defaultCarrierPatterns {
		groups[canonical] = "carrier:" + canonical
		for _, v := range variants {
			groups[Compact(v)] = "carrier:" + canonical
		}
	}
	for alias, brand := range brandAliases {
		groups[alias] = "brand:" + brand
	}
	return groups
}

// Synonym reports whether a and b are different spellings of the same
// color, carrier, or brand (for example BLK and BLACK).
func Synonym(a, b string) bool {
	ga, ok := synonymGroups[Compact(a)]
	if !ok {
		return false
	}
	gb, ok := synonymGroups[Compact(b)]
	return ok && ga == gb
}
