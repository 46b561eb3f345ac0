// Package domain defines the core business types for the refurbished device
// SKU matcher.
package domain

import (
	"time"
)

// ProductType is the device category a SKU or device model belongs to.
type ProductType string

// Product type constants.
const (
	ProductPhone  ProductType = "phone"
	ProductTablet ProductType = "tablet"
	ProductWatch  ProductType = "watch"
	ProductLaptop ProductType = "laptop"
)

// MatchMethod labels how confidently a SKU was resolved.
type MatchMethod string

// Match method constants.
const (
	MethodExact        MatchMethod = "exact"
	MethodFuzzy        MatchMethod = "fuzzy"
	MethodRuleBased    MatchMethod = "rule_based"
	MethodPartial      MatchMethod = "partial"
	MethodFailedDevice MatchMethod = "failed_device"
)

// Tier identifies one step of catalog narrowing, most specific first.
type Tier int

// Tier constants in the order they are attempted.
const (
	TierExact Tier = iota + 1
	TierBrandModel
	TierBrandCapacity
	TierBrandOnly
)

// String returns the tier name used in logs, metrics, and API responses.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierBrandModel:
		return "brand_model"
	case TierBrandCapacity:
		return "brand_capacity"
	case TierBrandOnly:
		return "brand_only"
	default:
		return "none"
	}
}

// DeviceAttributes are the raw, possibly noisy attributes recorded for a
// device at intake. Only Model is required.
type DeviceAttributes struct {
	Brand    string `json:"brand,omitempty"`
	Model    string `json:"model"`
	Capacity string `json:"capacity,omitempty"`
	Color    string `json:"color,omitempty"`
	Carrier  string `json:"carrier,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ParsedSkuFields are the structured fields decoded from a canonical SKU code.
// An empty Carrier means the SKU belongs to the unlocked class.
type ParsedSkuFields struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Capacity    string `json:"capacity,omitempty"`
	Color       string `json:"color,omitempty"`
	Carrier     string `json:"carrier,omitempty"`
	GradeSuffix string `json:"grade_suffix,omitempty"`

	// Stub is set when the code could not be decoded and every field
	// carries the low-confidence "Unknown" placeholder.
	Stub bool `json:"stub,omitempty"`
}

// HasCarrier reports whether the SKU carries a carrier field (a "4-field" SKU).
func (p *ParsedSkuFields) HasCarrier() bool {
	return p.Carrier != ""
}

// CarrierOverrideDecision is the outcome of inspecting device notes for
// evidence that the recorded carrier is wrong.
type CarrierOverrideDecision struct {
	ShouldOverride   bool   `json:"should_override"`
	EffectiveCarrier string `json:"effective_carrier"`
	IsExcluded       bool   `json:"is_excluded"`
	Reason           string `json:"reason,omitempty"`
}

// MatchCandidate is one catalog row considered during a tier.
type MatchCandidate struct {
	SkuCode       string          `json:"sku_code"`
	Parsed        ParsedSkuFields `json:"parsed_fields"`
	RawScore      float64         `json:"raw_score"`
	AdjustedScore float64         `json:"adjusted_score"`
	CarrierScore  float64         `json:"carrier_score"`
	Accepted      bool            `json:"accepted"`
}

// MatchResult is the externally visible outcome of resolving a device.
type MatchResult struct {
	SkuCode         string                   `json:"sku_code,omitempty"`
	MatchScore      float64                  `json:"match_score"`
	MatchMethod     MatchMethod              `json:"match_method"`
	Parsed          ParsedSkuFields          `json:"parsed_fields"`
	CarrierOverride *CarrierOverrideDecision `json:"carrier_override,omitempty"`
	Tier            string                   `json:"tier,omitempty"`
}

// RawSkuRow is a catalog row returned by the catalog store for a tier query.
type RawSkuRow struct {
	SkuCode    string `json:"sku_code"    db:"code"`
	IsUnlocked bool   `json:"is_unlocked" db:"is_unlocked"`
	SourceTab  string `json:"source_tab"  db:"source_tab"`
}

// SkuEntry is a canonical catalog entry as stored in the catalog table.
type SkuEntry struct {
	Code        string      `json:"code"         db:"code"`
	Brand       string      `json:"brand"        db:"brand"`
	ModelKey    string      `json:"model_key"    db:"model_key"`
	Capacity    string      `json:"capacity"     db:"capacity"`
	Color       string      `json:"color"        db:"color"`
	Carrier     string      `json:"carrier"      db:"carrier"`
	ProductType ProductType `json:"product_type" db:"product_type"`
	IsUnlocked  bool        `json:"is_unlocked"  db:"is_unlocked"`
	SourceTab   string      `json:"source_tab"   db:"source_tab"`
	UpdatedAt   time.Time   `json:"updated_at"   db:"updated_at"`
}

// Device is an ingested device record from the test bench.
type Device struct {
	ID           string           `json:"id"                  db:"id"`
	IMEI         string           `json:"imei,omitempty"      db:"imei"`
	Attributes   DeviceAttributes `json:"attributes"          db:"attributes"`
	GeneratedSKU string           `json:"generated_sku"       db:"generated_sku"`
	TestedAt     *time.Time       `json:"tested_at,omitempty" db:"tested_at"`
	CreatedAt    time.Time        `json:"created_at"          db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"          db:"updated_at"`
}

// DeviceMatch is a persisted MatchResult keyed by device.
type DeviceMatch struct {
	DeviceID  string      `json:"device_id"  db:"device_id"`
	Result    MatchResult `json:"result"     db:"result"`
	MatchedAt time.Time   `json:"matched_at" db:"matched_at"`
}

// JobRun records a single execution of a scheduled or manual rematch.
type JobRun struct {
	ID           string     `json:"id"                      db:"id"`
	JobName      string     `json:"job_name"                db:"job_name"`
	StartedAt    time.Time  `json:"started_at"              db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"  db:"completed_at"`
	Status       string     `json:"status"                  db:"status"`
	ErrorText    string     `json:"error_text,omitempty"    db:"error_text"`
	RowsAffected *int       `json:"rows_affected,omitempty" db:"rows_affected"`
}
