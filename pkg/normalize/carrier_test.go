package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCarrierTable_Normalize(t *testing.T) {
	t.Parallel()

	table := DefaultCarrierTable()

	tests := []struct {
		input string
		want  string
	}{
		{input: "AT&T", want: CarrierATT},
		{input: "att", want: CarrierATT},
		{input: "T-Mobile", want: CarrierTMobile},
		{input: "TMOBILE", want: CarrierTMobile},
		{input: "TMO", want: CarrierTMobile},
		{input: "Verizon", want: CarrierVerizon},
		{input: "VZW", want: CarrierVerizon},
		{input: "Verizon Wireless", want: CarrierVerizon},
		{input: "Unlocked", want: CarrierUnlocked},
		{input: "Factory Unlocked", want: CarrierUnlocked},
		{input: "US Cellular", want: "USCELLULAR"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, table.Normalize(tt.input))
		})
	}
}

func TestCarrierTable_ContainedVariant(t *testing.T) {
	t.Parallel()

	table := DefaultCarrierTable()
	assert.Equal(t, CarrierVerizon, table.Normalize("VERIZON PREPAID"))
	assert.Equal(t, CarrierUnlocked, table.Normalize("carrier unlocked"))
}

func TestNewCarrierTable_ExtraPatterns(t *testing.T) {
	t.Parallel()

	table := NewCarrierTable(map[string][]string{
		"SPRINT":       {"SPR", "Sprint PCS"},
		CarrierTMobile: {"Metro by T-Mobile"},
	})

	assert.Equal(t, "SPRINT", table.Normalize("Sprint PCS"))
	assert.Equal(t, "SPRINT", table.Normalize("spr"))
	assert.Equal(t, CarrierTMobile, table.Normalize("Metro by T-Mobile"))
	assert.Equal(t, CarrierATT, table.Normalize("AT&T"), "built-ins are kept")
	assert.Equal(t, "SPR", Carrier("SPR"), "default table is not affected")
}

func TestCarrierTable_IsMajor(t *testing.T) {
	t.Parallel()

	table := DefaultCarrierTable()
	assert.True(t, table.IsMajor("AT&T"))
	assert.True(t, table.IsMajor("tmo"))
	assert.True(t, table.IsMajor("VZW"))
	assert.False(t, table.IsMajor("UNLOCKED"))
	assert.False(t, table.IsMajor("US Cellular"))
	assert.False(t, table.IsMajor(""))
}

func TestCarrierTable_IsUnlocked(t *testing.T) {
	t.Parallel()

	table := DefaultCarrierTable()
	assert.True(t, table.IsUnlocked(""))
	assert.True(t, table.IsUnlocked("Unlocked"))
	assert.False(t, table.IsUnlocked("AT&T"))
}
