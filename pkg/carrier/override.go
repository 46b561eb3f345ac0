// Package carrier decides, from free-text inspection notes, whether a device's
// physical carrier lock state differs from the carrier recorded at intake.
package carrier

import (
	"strings"

	"github.com/donaldgifford/refurb-sku-matcher/pkg/normalize"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// Decision reasons.
const (
	ReasonFailed       = "failure marker in notes"
	ReasonSamsungNote  = "unlock noted on Samsung device"
	ReasonPixelESIM    = "eSIM lock noted on Pixel device"
	ReasonExplicitLock = "carrier lock noted"
)

// failureMarkers flag a defective unit. Matched as substrings of the
// normalized notes so FAIL also catches FAILURE.
var failureMarkers = []string{
	"FAILED",
	"FAIL",
	"NO SIM MANAGER",
	"OPENED",
	"OPEN BACK",
	"SCREEN POPPED UP",
	"WIFI ISSUES",
	"WI FI ISSUES",
}

// Phrase tables are matched on word boundaries.
var (
	unlockPhrases = []string{"UNLOCKED", "UNLOCK", "CARRIR UNLOCK", "CARRIR UNLOCKED"}
	esimPhrases   = []string{"ESIM LOCKED", "E SIM LOCKED"}
	lockPhrases   = []string{"CARRIER LOCKED", "LOCKED"}
)

// Overrider resolves carrier overrides against a carrier table.
type Overrider struct {
	carriers *normalize.CarrierTable
}

// NewOverrider returns an Overrider using carriers, or the default table when
// carriers is nil.
func NewOverrider(carriers *normalize.CarrierTable) *Overrider {
	if carriers == nil {
		carriers = normalize.DefaultCarrierTable()
	}
	return &Overrider{carriers: carriers}
}

// ResolveOverride inspects notes and returns the effective carrier decision.
// Rules are evaluated in order and the first hit wins: failure markers
// exclude the device; Samsung unlock notes and Pixel eSIM-lock notes
// override a major-carrier record to UNLOCKED; explicit lock language keeps
// the recorded carrier.
func (o *Overrider) ResolveOverride(notes, brand, recordedCarrier string) domain.CarrierOverrideDecision {
	recorded := o.carriers.Normalize(recordedCarrier)
	d := domain.CarrierOverrideDecision{EffectiveCarrier: recorded}

	text := normalizeNotes(notes)
	if text == "" {
		return d
	}

	for _, m := range failureMarkers {
		if strings.Contains(text, m) {
			d.IsExcluded = true
			d.Reason = ReasonFailed
			return d
		}
	}

	family := normalize.Brand(brand)
	major := o.carriers.IsMajor(recorded)

	switch {
	case family == "Samsung" && major && containsPhrase(text, unlockPhrases):
		return overridden(ReasonSamsungNote)
	case family == "Google" && major && containsPhrase(text, esimPhrases):
		return overridden(ReasonPixelESIM)
	case containsPhrase(text, lockPhrases):
		d.Reason = ReasonExplicitLock
	}

	return d
}

// ResolveOverride resolves with the default carrier table.
func ResolveOverride(notes, brand, recordedCarrier string) domain.CarrierOverrideDecision {
	return defaultOverrider.ResolveOverride(notes, brand, recordedCarrier)
}

var defaultOverrider = NewOverrider(nil)

func overridden(reason string) domain.CarrierOverrideDecision {
	return domain.CarrierOverrideDecision{
		ShouldOverride:   true,
		EffectiveCarrier: normalize.CarrierUnlocked,
		Reason:           reason,
	}
}

// normalizeNotes upper-cases notes and reduces every run of non-alphanumeric
// characters to a single space, so "e-SIM  locked!" becomes "E SIM LOCKED".
func normalizeNotes(notes string) string {
	return strings.ToUpper(normalize.Text(strings.NewReplacer("-", " ", "/", " ", ".", " ", ",", " ").Replace(notes)))
}

func containsPhrase(text string, phrases []string) bool {
	padded := " " + text + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}
