package skucode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

func TestProductTypeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  domain.ProductType
	}{
		{input: "FOLD3-512-BLK", want: domain.ProductPhone},
		{input: "TABS7-128-BLK", want: domain.ProductTablet},
		{input: "Galaxy Tab S7", want: domain.ProductTablet},
		{input: "IPADAIR4-64-SLV", want: domain.ProductTablet},
		{input: "WATCH5-44MM-BLK", want: domain.ProductWatch},
		{input: "Galaxy Watch 4", want: domain.ProductWatch},
		{input: "GALAXYBOOK2-512-GRY", want: domain.ProductLaptop},
		{input: "Chromebook 11", want: domain.ProductLaptop},
		{input: "S21-STABLE-BLK", want: domain.ProductPhone},
		{input: "", want: domain.ProductPhone},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ProductTypeOf(tt.input))
		})
	}
}
