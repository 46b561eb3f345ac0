package resolver

import (
	"errors"
	"fmt"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// ErrMissingModel is returned when the device model is blank.
var ErrMissingModel = errors.New("device model is required")

// ErrCatalogUnavailable matches every *CatalogError.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// CatalogError reports a failed catalog query. It matches both
// ErrCatalogUnavailable and the underlying store error with errors.Is.
type CatalogError struct {
	Tier domain.Tier
	Err  error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("querying catalog for %s tier: %v", e.Tier, e.Err)
}

// Unwrap exposes both the sentinel and the store error.
func (e *CatalogError) Unwrap() []error {
	return []error{ErrCatalogUnavailable, e.Err}
}
