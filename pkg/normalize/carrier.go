package normalize

import (
	"sort"
	"strings"
)

// Canonical carrier tokens.
const (
	CarrierATT      = "ATT"
	CarrierTMobile  = "TMOBILE"
	CarrierVerizon  = "VERIZON"
	CarrierUnlocked = "UNLOCKED"
)

// defaultCarrierPatterns maps each canonical carrier to its known spellings.
var defaultCarrierPatterns = map[string][]string{
	CarrierATT:      {"AT&T", "ATT", "AT T", "ATANDT"},
	CarrierTMobile:  {"T-MOBILE", "TMOBILE", "T MOBILE", "TMO", "TMOB"},
	CarrierVerizon:  {"VERIZON", "VZW", "VZN", "VERIZON WIRELESS"},
	CarrierUnlocked: {"UNLOCKED", "UNLOCK", "FACTORY UNLOCKED", "SIM FREE"},
}

// majorCarriers are the three major US carriers eligible for an unlock override.
var majorCarriers = map[string]struct{}{
	CarrierATT:     {},
	CarrierTMobile: {},
	CarrierVerizon: {},
}

type carrierPattern struct {
	variant   string
	canonical string
}

// CarrierTable resolves carrier spelling variants to canonical tokens. It is
// built once and read-only afterwards.
type CarrierTable struct {
	exact    map[string]string
	patterns []carrierPattern // longest variant first
}

var defaultTable = NewCarrierTable(nil)

// DefaultCarrierTable returns the built-in carrier table.
func DefaultCarrierTable() *CarrierTable {
	return defaultTable
}

// NewCarrierTable builds a table from the built-in patterns plus extra
// patterns keyed by canonical token. Extra patterns for an existing canonical
// token are appended to the built-ins.
func NewCarrierTable(extra map[string][]string) *CarrierTable {
	t := &CarrierTable{exact: make(map[string]string)}

	add := func(canonical string, variants []string) {
		canonical = Compact(canonical)
		if canonical == "" {
			return
		}
		t.exact[canonical] = canonical
		for _, v := range variants {
			c := Compact(v)
			if c == "" {
				continue
			}
			t.exact[c] = canonical
		}
	}

	for canonical, variants := range defaultCarrierPatterns {
		add(canonical, variants)
	}
	for canonical, variants := range extra {
		add(canonical, variants)
	}

	for variant, canonical := range t.exact {
		if len(variant) < 3 {
			continue
		}
		t.patterns = append(t.patterns, carrierPattern{variant: variant, canonical: canonical})
	}
	sort.Slice(t.patterns, func(i, j int) bool {
		if len(t.patterns[i].variant) != len(t.patterns[j].variant) {
			return len(t.patterns[i].variant) > len(t.patterns[j].variant)
		}
		return t.patterns[i].variant < t.patterns[j].variant
	})

	return t
}

// Normalize maps a carrier spelling to its canonical token. Exact variant
// hits win; otherwise the longest known variant contained in the input is
// used. Unrecognized input is returned compacted; empty input yields "".
func (t *CarrierTable) Normalize(s string) string {
	c := Compact(s)
	if c == "" {
		return ""
	}
	if canonical, ok := t.exact[c]; ok {
		return canonical
	}
	for _, p := range t.patterns {
		if strings.Contains(c, p.variant) {
			return p.canonical
		}
	}
	return c
}

// IsMajor reports whether s names one of the three major US carriers.
func (t *CarrierTable) IsMajor(s string) bool {
	_, ok := majorCarriers[t.Normalize(s)]
	return ok
}

// IsUnlocked reports whether s places a device in the unlocked class. An
// absent carrier counts as unlocked.
func (t *CarrierTable) IsUnlocked(s string) bool {
	c := t.Normalize(s)
	return c == "" || c == CarrierUnlocked
}

// Carrier normalizes s with the default table.
func Carrier(s string) string {
	return defaultTable.Normalize(s)
}
