package middleware

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/donaldgifford/refurb-sku-matcher/internal/tracing"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestLog returns Echo middleware that logs requests with structured
// fields. It assigns a request ID when the caller sent none, echoes it in the
// response header, and starts a server span continuing any incoming trace.
//
// Probe requests are logged only when their status changes, so a healthy
// /healthz is logged once.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	probes := map[string]*atomic.Int64{
		"/healthz": {},
		"/readyz":  {},
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := req.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Set(requestIDKey, reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracing.StartSpan(ctx, req.Method+" "+routePath(c),
				attribute.String("http.request.method", req.Method),
				attribute.String("request.id", reqID),
			)
			defer span.End()
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			span.SetAttributes(attribute.Int("http.response.status_code", status))

			if last, ok := probes[req.URL.Path]; ok && last.Swap(int64(status)) == int64(status) {
				return nil
			}

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			}
			if traceID := tracing.TraceID(ctx); traceID != "" {
				attrs = append(attrs, "trace_id", traceID)
			}
			log.Info("request", attrs...)

			return nil
		}
	}
}
