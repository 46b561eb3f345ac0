package skucode

import (
	"strings"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// ProductTypeOf classifies a SKU code or device model by scanning its tokens
// for category keywords. Anything without a keyword is a phone.
func ProductTypeOf(s string) domain.ProductType {
	tokens := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return r == '-' || r == ' ' || r == '_' || r == '/'
	})

	for _, tok := range tokens {
		if strings.Contains(tok, "WATCH") {
			return domain.ProductWatch
		}
	}
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "TAB") || strings.HasPrefix(tok, "IPAD") {
			return domain.ProductTablet
		}
	}
	for _, tok := range tokens {
		if strings.Contains(tok, "LAPTOP") || strings.Contains(tok, "BOOK") {
			return domain.ProductLaptop
		}
	}

	return domain.ProductPhone
}
