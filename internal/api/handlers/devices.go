package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/tidwall/gjson"

	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/adapter"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

// DeviceService ingests and matches stored devices.
type DeviceService interface {
	IngestDevice(ctx context.Context, d *domain.Device) error
	MatchDevice(ctx context.Context, deviceID string) (*domain.DeviceMatch, error)
}

// DeviceReader defines the store methods required by the devices handler.
type DeviceReader interface {
	GetDevice(ctx context.Context, id string) (*domain.Device, error)
	GetMatch(ctx context.Context, deviceID string) (*domain.DeviceMatch, error)
}

// DevicesHandler handles device intake and per-device matching.
type DevicesHandler struct {
	svc   DeviceService
	store DeviceReader
}

// NewDevicesHandler creates a new DevicesHandler.
func NewDevicesHandler(svc DeviceService, s DeviceReader) *DevicesHandler {
	return &DevicesHandler{svc: svc, store: s}
}

// CreateDeviceInput carries a raw device record. Field names are matched
// against the adapter's alias lists, so bench exports can be posted as is.
type CreateDeviceInput struct {
	RawBody []byte `contentType:"application/json"`
}

// DeviceOutput is a single device.
type DeviceOutput struct {
	Body *domain.Device
}

// DeviceIDInput identifies a device by path.
type DeviceIDInput struct {
	ID string `path:"id" doc:"Device ID"`
}

// DeviceMatchOutput is a persisted device match.
type DeviceMatchOutput struct {
	Body *domain.DeviceMatch
}

// CreateDevice stores a device from a raw JSON record.
func (h *DevicesHandler) CreateDevice(ctx context.Context, input *CreateDeviceInput) (*DeviceOutput, error) {
	attrs, err := adapter.FromJSON(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if strings.TrimSpace(attrs.Model) == "" {
		return nil, huma.Error422UnprocessableEntity("device model is required")
	}

	raw := gjson.ParseBytes(input.RawBody)
	d := &domain.Device{
		ID:         raw.Get("id").String(),
		IMEI:       strings.TrimSpace(raw.Get("imei").String()),
		Attributes: attrs,
	}
	if v := raw.Get("tested_at"); v.Exists() && v.String() != "" {
		ts, err := time.Parse(time.RFC3339, v.String())
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("tested_at must be an RFC 3339 timestamp")
		}
		d.TestedAt = &ts
	}

	if err := h.svc.IngestDevice(ctx, d); err != nil {
		return nil, huma.Error500InternalServerError("storing device failed: " + err.Error())
	}
	return &DeviceOutput{Body: d}, nil
}

// GetDevice returns a stored device.
func (h *DevicesHandler) GetDevice(ctx context.Context, input *DeviceIDInput) (*DeviceOutput, error) {
	d, err := h.store.GetDevice(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("device not found")
		}
		return nil, huma.Error500InternalServerError("fetching device failed: " + err.Error())
	}
	return &DeviceOutput{Body: d}, nil
}

// MatchDevice resolves a stored device and persists the outcome.
func (h *DevicesHandler) MatchDevice(ctx context.Context, input *DeviceIDInput) (*DeviceMatchOutput, error) {
	m, err := h.svc.MatchDevice(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("device not found")
		}
		return nil, matchError(err)
	}
	if m.Result.SkuCode == "" && m.Result.MatchMethod == "" {
		return nil, huma.Error404NotFound(noMatchDetail)
	}
	return &DeviceMatchOutput{Body: m}, nil
}

// GetDeviceMatch returns the last persisted match for a device.
func (h *DevicesHandler) GetDeviceMatch(ctx context.Context, input *DeviceIDInput) (*DeviceMatchOutput, error) {
	m, err := h.store.GetMatch(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("device has not been matched")
		}
		return nil, huma.Error500InternalServerError("fetching match failed: " + err.Error())
	}
	return &DeviceMatchOutput{Body: m}, nil
}

// RegisterDeviceRoutes registers device endpoints with the Huma API.
func RegisterDeviceRoutes(api huma.API, h *DevicesHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-device",
		Method:        http.MethodPost,
		Path:          "/api/v1/devices",
		Summary:       "Ingest a device",
		Description:   "Stores a device record and its generated SKU. Common alias keys are accepted for every attribute.",
		Tags:          []string{"devices"},
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, h.CreateDevice)

	huma.Register(api, huma.Operation{
		OperationID: "get-device",
		Method:      http.MethodGet,
		Path:        "/api/v1/devices/{id}",
		Summary:     "Get a device",
		Tags:        []string{"devices"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetDevice)

	huma.Register(api, huma.Operation{
		OperationID: "match-stored-device",
		Method:      http.MethodPost,
		Path:        "/api/v1/devices/{id}/match",
		Summary:     "Match a stored device",
		Description: "Resolves the device and persists the result. A device with no acceptable SKU is recorded as unmatched and returns 404.",
		Tags:        []string{"devices", "matching"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
		},
	}, h.MatchDevice)

	huma.Register(api, huma.Operation{
		OperationID: "get-device-match",
		Method:      http.MethodGet,
		Path:        "/api/v1/devices/{id}/match",
		Summary:     "Get a device's last match",
		Tags:        []string{"devices", "matching"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetDeviceMatch)
}
