package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

func TestFromJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  domain.DeviceAttributes
	}{
		{
			name:  "canonical keys",
			input: `{"brand":"Samsung","model":"Galaxy Z Fold3","capacity":"256GB","color":"Phantom Black","carrier":"AT&T","notes":"CARRIER UNLOCKED"}`,
			want: domain.DeviceAttributes{
				Brand: "Samsung", Model: "Galaxy Z Fold3", Capacity: "256GB",
				Color: "Phantom Black", Carrier: "AT&T", Notes: "CARRIER UNLOCKED",
			},
		},
		{
			name:  "aliased keys",
			input: `{"Manufacturer":"Apple","device_model":"iPhone 12","storage":128,"colour":"White","network":"Verizon","comments":"minor wear"}`,
			want: domain.DeviceAttributes{
				Brand: "Apple", Model: "iPhone 12", Capacity: "128",
				Color: "White", Carrier: "Verizon", Notes: "minor wear",
			},
		},
		{
			name:  "nested under device",
			input: `{"id":"d-1","device":{"modelName":"Pixel 7","Memory":"128 GB"}}`,
			want:  domain.DeviceAttributes{Model: "Pixel 7", Capacity: "128 GB"},
		},
		{
			name:  "first non-empty alias wins",
			input: `{"model":"","Model":"FOLD3","carrier":null,"Carrier":"TMO"}`,
			want:  domain.DeviceAttributes{Model: "FOLD3", Carrier: "TMO"},
		},
		{
			name:  "notes array",
			input: `{"model":"FOLD3","notes":["screen scratch"," ","carrier unlocked"]}`,
			want:  domain.DeviceAttributes{Model: "FOLD3", Notes: "screen scratch; carrier unlocked"},
		},
		{
			name:  "whitespace trimmed",
			input: `{"model":"  S21  ","color":" Black "}`,
			want:  domain.DeviceAttributes{Model: "S21", Color: "Black"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FromJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	t.Parallel()

	_, err := FromJSON([]byte(`{"model":`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestFromJSONArray(t *testing.T) {
	t.Parallel()

	got, err := FromJSONArray([]byte(`[{"model":"FOLD3"},42,{"Model":"S21","network":"ATT"}]`))
	require.NoError(t, err)
	assert.Equal(t, []domain.DeviceAttributes{
		{Model: "FOLD3"},
		{Model: "S21", Carrier: "ATT"},
	}, got)

	single, err := FromJSONArray([]byte(`{"model":"PIXEL7"}`))
	require.NoError(t, err)
	assert.Equal(t, []domain.DeviceAttributes{{Model: "PIXEL7"}}, single)

	_, err = FromJSONArray([]byte(`[`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}
