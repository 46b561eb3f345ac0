package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/refurb-sku-matcher/internal/resolver"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

const noMatchDetail = "no SKU could be confidently identified"

// Matcher resolves raw device attributes to a SKU.
type Matcher interface {
	Resolve(ctx context.Context, attrs domain.DeviceAttributes) (*resolver.Resolution, error)
}

// MatchHandler serves the matching test endpoint.
type MatchHandler struct {
	matcher Matcher
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(m Matcher) *MatchHandler {
	return &MatchHandler{matcher: m}
}

// MatchInput is the request for a one-off match.
type MatchInput struct {
	Explain bool `query:"explain" doc:"Include the canonical device and every candidate scored in the deciding tier"`
	Body    domain.DeviceAttributes
}

// Explanation describes how a match was reached.
type Explanation struct {
	Device     domain.DeviceAttributes `json:"device"`
	Unlocked   bool                    `json:"unlocked"`
	Tiers      []string                `json:"tiers"`
	Candidates []domain.MatchCandidate `json:"candidates"`
}

// MatchResponse is a match result with an optional explanation.
type MatchResponse struct {
	Result      domain.MatchResult `json:"result"`
	Explanation *Explanation       `json:"explanation,omitempty"`
}

// MatchOutput is the response for a one-off match.
type MatchOutput struct {
	Body MatchResponse
}

// Match resolves the posted attributes without persisting anything.
func (h *MatchHandler) Match(ctx context.Context, input *MatchInput) (*MatchOutput, error) {
	res, err := h.matcher.Resolve(ctx, input.Body)
	if err != nil {
		return nil, matchError(err)
	}
	if res.Result == nil {
		return nil, huma.Error404NotFound(noMatchDetail)
	}

	out := &MatchOutput{Body: MatchResponse{Result: *res.Result}}
	if input.Explain {
		out.Body.Explanation = explain(res)
	}
	return out, nil
}

func explain(res *resolver.Resolution) *Explanation {
	tiers := make([]string, 0, len(res.Tiers))
	for _, t := range res.Tiers {
		tiers = append(tiers, t.String())
	}
	candidates := res.Candidates
	if candidates == nil {
		candidates = []domain.MatchCandidate{}
	}
	return &Explanation{
		Device:     res.Device,
		Unlocked:   res.Unlocked,
		Tiers:      tiers,
		Candidates: candidates,
	}
}

// matchError maps resolver failures to HTTP errors.
func matchError(err error) error {
	switch {
	case errors.Is(err, resolver.ErrMissingModel):
		return huma.Error422UnprocessableEntity("device model is required")
	case errors.Is(err, resolver.ErrCatalogUnavailable):
		return huma.Error503ServiceUnavailable("matching service unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("matching interrupted")
	default:
		return huma.Error500InternalServerError("matching failed: " + err.Error())
	}
}

// RegisterMatchRoutes registers the matching endpoint with the Huma API.
func RegisterMatchRoutes(api huma.API, h *MatchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "match-device",
		Method:      http.MethodPost,
		Path:        "/api/v1/match",
		Summary:     "Match device attributes to a SKU",
		Description: "Resolves raw device attributes against the catalog. Nothing is persisted.",
		Tags:        []string{"matching"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
		},
	}, h.Match)
}
