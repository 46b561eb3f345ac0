package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/refurb-sku-matcher/internal/engine"
	"github.com/donaldgifford/refurb-sku-matcher/internal/resolver"
)

// Rematcher reprocesses unmatched devices.
type Rematcher interface {
	RunRematch(ctx context.Context) (*engine.Summary, error)
}

// RematchHandler handles manual rematch triggers.
type RematchHandler struct {
	rematcher Rematcher
}

// NewRematchHandler creates a new RematchHandler.
func NewRematchHandler(r Rematcher) *RematchHandler {
	return &RematchHandler{rematcher: r}
}

// RematchOutput is the response body for a rematch run.
type RematchOutput struct {
	Body *engine.Summary
}

// Rematch runs one rematch batch synchronously.
func (h *RematchHandler) Rematch(ctx context.Context, _ *struct{}) (*RematchOutput, error) {
	summary, err := h.rematcher.RunRematch(ctx)
	if err != nil {
		if errors.Is(err, resolver.ErrCatalogUnavailable) {
			return nil, huma.Error503ServiceUnavailable("matching service unavailable", err)
		}
		return nil, huma.Error500InternalServerError("rematch failed: " + err.Error())
	}
	return &RematchOutput{Body: summary}, nil
}

// RegisterRematchRoutes registers the rematch endpoint with the Huma API.
func RegisterRematchRoutes(api huma.API, h *RematchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "rematch",
		Method:      http.MethodPost,
		Path:        "/api/v1/rematch",
		Summary:     "Rematch unmatched devices",
		Description: "Resolves one batch of devices that have no SKU yet and returns the outcome counts.",
		Tags:        []string{"matching"},
		Errors:      []int{http.StatusInternalServerError, http.StatusServiceUnavailable},
	}, h.Rematch)
}
