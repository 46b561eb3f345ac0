package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/refurb-sku-matcher/internal/api/handlers"
	"github.com/donaldgifford/refurb-sku-matcher/internal/engine"
	"github.com/donaldgifford/refurb-sku-matcher/internal/resolver"
	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// stubRematcher is a test double for Rematcher.
type stubRematcher struct {
	summary *engine.Summary
	err     error
}

func (r *stubRematcher) RunRematch(context.Context) (*engine.Summary, error) {
	return r.summary, r.err
}

func TestRematch(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryCatalog(testCatalog...)
	r := resolver.New(s, resolver.WithLogger(quietLogger()))
	eng := engine.NewEngine(s, r, engine.WithLogger(quietLogger()))

	seedDevice(t, s, "dev-1", domain.DeviceAttributes{Brand: "Samsung", Model: "Galaxy Z Fold3", Capacity: "512GB", Color: "Phantom Black"})
	seedDevice(t, s, "dev-2", domain.DeviceAttributes{Model: "Galaxy Z Fold3", Notes: "FAILED"})
	seedDevice(t, s, "dev-3", domain.DeviceAttributes{Brand: "Samsung", Model: "Galaxy S21", Capacity: "128", Carrier: "T-Mobile"})

	_, api := humatest.New(t)
	handlers.RegisterRematchRoutes(api, handlers.NewRematchHandler(eng))

	resp := api.Post("/api/v1/rematch")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := resp.Body.String()
	assert.Contains(t, body, `"devices":3`)
	assert.Contains(t, body, `"matched":1`)
	assert.Contains(t, body, `"excluded":1`)
	assert.Contains(t, body, `"no_match":1`)
	assert.Contains(t, body, `"job_id":`)
}

func TestRematch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name: "catalog unavailable",
			err: fmt.Errorf("resolving device dev-1: %w",
				&resolver.CatalogError{Tier: domain.TierExact, Err: errors.New("connection refused")}),
			wantCode: http.StatusServiceUnavailable,
			wantBody: "matching service unavailable",
		},
		{
			name:     "store failure",
			err:      errors.New("listing unmatched devices: db error"),
			wantCode: http.StatusInternalServerError,
			wantBody: "rematch failed: listing unmatched devices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterRematchRoutes(api, handlers.NewRematchHandler(
				&stubRematcher{summary: &engine.Summary{}, err: tt.err},
			))

			resp := api.Post("/api/v1/rematch")
			require.Equal(t, tt.wantCode, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}
