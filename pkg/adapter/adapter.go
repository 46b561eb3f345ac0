// Package adapter maps heterogeneous device records onto
// domain.DeviceAttributes before they reach the matcher. Test benches,
// spreadsheets and partner feeds all spell the same field differently; every
// alias lives here and nowhere else.
package adapter

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// ErrInvalidJSON is returned when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid device JSON")

// Field aliases in lookup order. The first non-empty value wins.
var (
	brandKeys    = []string{"brand", "Brand", "manufacturer", "Manufacturer", "make"}
	modelKeys    = []string{"model", "Model", "device_model", "deviceModel", "modelName", "model_name"}
	capacityKeys = []string{"capacity", "Capacity", "storage", "Storage", "memory", "Memory"}
	colorKeys    = []string{"color", "Color", "colour", "Colour"}
	carrierKeys  = []string{"carrier", "Carrier", "network", "Network", "carrier_name"}
	notesKeys    = []string{"notes", "Notes", "comments", "Comments", "remarks"}
)

// nestedPrefixes are wrapper objects some feeds put the attributes under.
var nestedPrefixes = []string{"", "device.", "attributes.", "data."}

// FromJSON extracts device attributes from a single JSON object.
func FromJSON(data []byte) (domain.DeviceAttributes, error) {
	if !gjson.ValidBytes(data) {
		return domain.DeviceAttributes{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// FromJSONArray extracts device attributes from a JSON array of objects, or
// from a single object, which yields one element.
func FromJSONArray(data []byte) ([]domain.DeviceAttributes, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return []domain.DeviceAttributes{fromResult(root)}, nil
	}

	out := make([]domain.DeviceAttributes, 0, int(root.Get("#").Int()))
	root.ForEach(func(_, value gjson.Result) bool {
		if value.IsObject() {
			out = append(out, fromResult(value))
		}
		return true
	})
	return out, nil
}

func fromResult(r gjson.Result) domain.DeviceAttributes {
	return domain.DeviceAttributes{
		Brand:    lookup(r, brandKeys),
		Model:    lookup(r, modelKeys),
		Capacity: lookup(r, capacityKeys),
		Color:    lookup(r, colorKeys),
		Carrier:  lookup(r, carrierKeys),
		Notes:    lookupNotes(r),
	}
}

func lookup(r gjson.Result, keys []string) string {
	for _, prefix := range nestedPrefixes {
		for _, k := range keys {
			v := r.Get(prefix + k)
			if !v.Exists() || v.Type == gjson.Null {
				continue
			}
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// lookupNotes also accepts notes recorded as an array of strings.
func lookupNotes(r gjson.Result) string {
	for _, prefix := range nestedPrefixes {
		for _, k := range notesKeys {
			v := r.Get(prefix + k)
			if !v.IsArray() {
				continue
			}
			var parts []string
			for _, item := range v.Array() {
				if s := strings.TrimSpace(item.String()); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return lookup(r, notesKeys)
}
