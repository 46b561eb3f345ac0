package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/donaldgifford/refurb-sku-matcher/internal/api/handlers"
	"github.com/donaldgifford/refurb-sku-matcher/internal/engine"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// Match resolves device attributes without persisting them. A device with no
// confident SKU returns an error matching ErrNotFound.
func (c *Client) Match(ctx context.Context, attrs domain.DeviceAttributes, explain bool) (*handlers.MatchResponse, error) {
	path := "/api/v1/match"
	if explain {
		path += "?explain=true"
	}

	var resp handlers.MatchResponse
	if err := c.post(ctx, path, attrs, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MatchDevice resolves a stored device and persists the result.
func (c *Client) MatchDevice(ctx context.Context, deviceID string) (*domain.DeviceMatch, error) {
	var m domain.DeviceMatch
	path := fmt.Sprintf("/api/v1/devices/%s/match", url.PathEscape(deviceID))
	if err := c.post(ctx, path, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetDeviceMatch returns the last persisted match for a device.
func (c *Client) GetDeviceMatch(ctx context.Context, deviceID string) (*domain.DeviceMatch, error) {
	var m domain.DeviceMatch
	path := fmt.Sprintf("/api/v1/devices/%s/match", url.PathEscape(deviceID))
	if err := c.get(ctx, path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Rematch runs one rematch batch on the server.
func (c *Client) Rematch(ctx context.Context) (*engine.Summary, error) {
	var s engine.Summary
	if err := c.post(ctx, "/api/v1/rematch", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
