// Package handlers implements the HTTP surface of the SKU matcher: one-off
// matching, device intake and per-device matching, rematch runs, job history,
// and the liveness and readiness probes.
//
// Huma operations report failures as RFC 9457 problem documents. Resolver
// errors are mapped in one place (matchError) so every matching endpoint
// answers the same way: no confident SKU is 404, a missing model is 422, and
// an unreachable catalog is 503.
package handlers

// StatusResponse is the liveness probe body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
