package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		status        int
		providedReqID string
		wantLogFields []string
	}{
		{
			name:   "logs GET request with generated ID",
			method: http.MethodGet,
			path:   "/api/v1/devices/dev-1",
			status: http.StatusOK,
			wantLogFields: []string{
				"method=GET",
				"path=/api/v1/devices/dev-1",
				"status=200",
				"duration_ms=",
				"request_id=",
			},
		},
		{
			name:   "logs POST request",
			method: http.MethodPost,
			path:   "/api/v1/devices",
			status: http.StatusCreated,
			wantLogFields: []string{
				"method=POST",
				"status=201",
			},
		},
		{
			name:          "uses provided request ID",
			method:        http.MethodPost,
			path:          "/api/v1/match",
			status:        http.StatusNotFound,
			providedReqID: "custom-req-id-123",
			wantLogFields: []string{
				"request_id=custom-req-id-123",
				"status=404",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.providedReqID != "" {
				req.Header.Set(requestIDHeader, tt.providedReqID)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := RequestLog(logger)(func(c echo.Context) error {
				return c.NoContent(tt.status)
			})

			require.NoError(t, handler(c))

			for _, field := range tt.wantLogFields {
				assert.Contains(t, buf.String(), field)
			}

			respID := rec.Header().Get(requestIDHeader)
			assert.NotEmpty(t, respID)
			if tt.providedReqID != "" {
				assert.Equal(t, tt.providedReqID, respID)
			}
			assert.Equal(t, respID, c.Get(requestIDKey))
		})
	}
}

func TestRequestLog_HandlerError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/jobs", http.NoBody), rec)

	handler := RequestLog(logger)(func(_ echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, buf.String(), "status=502")
}

func TestRequestLog_ProbeLoggedOnStatusChange(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	status := http.StatusOK
	handler := RequestLog(logger)(func(c echo.Context) error {
		return c.NoContent(status)
	})

	probe := func() {
		req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
		require.NoError(t, handler(e.NewContext(req, httptest.NewRecorder())))
	}

	probe()
	assert.Contains(t, buf.String(), "path=/readyz")
	assert.Contains(t, buf.String(), "status=200")
	firstLen := buf.Len()

	probe()
	probe()
	assert.Equal(t, firstLen, buf.Len(), "repeated healthy probes are not logged")

	status = http.StatusServiceUnavailable
	probe()
	assert.Contains(t, buf.String(), "status=503")
	afterFailure := buf.Len()

	probe()
	assert.Equal(t, afterFailure, buf.Len())

	status = http.StatusOK
	probe()
	assert.Greater(t, buf.Len(), afterFailure, "recovery is logged")
}
