package store

import (
	"fmt"
	"strings"

	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

const (
	defaultCandidateLimit = 1000
	maxCandidateLimit     = 5000
)

// TierSpec narrows the catalog for one resolver tier. Every tier filters on
// product type and carrier class; the attribute filters applied depend on
// Tier.
type TierSpec struct {
	Tier        domain.Tier
	ProductType domain.ProductType
	Unlocked    bool
	Brand       string
	ModelKey    string
	Capacity    string
	Color       string
	Limit       int
}

const baseCandidatesSelect = `SELECT code, is_unlocked, source_tab FROM skus`

// filters returns the column/value pairs the tier filters on, in order.
func (q *TierSpec) filters() [][2]string {
	f := [][2]string{{"product_type", string(q.ProductType)}}

	switch q.Tier {
	case domain.TierExact:
		f = append(f,
			[2]string{"model_key", q.ModelKey},
			[2]string{"capacity", q.Capacity},
			[2]string{"color", q.Color},
		)
	case domain.TierBrandModel:
		f = append(f, [2]string{"model_key", q.ModelKey})
	case domain.TierBrandCapacity:
		f = append(f,
			[2]string{"brand", q.Brand},
			[2]string{"capacity", q.Capacity},
		)
	case domain.TierBrandOnly:
		f = append(f, [2]string{"brand", q.Brand})
	}

	return f
}

func (q *TierSpec) limit() int {
	switch {
	case q.Limit <= 0:
		return defaultCandidateLimit
	case q.Limit > maxCandidateLimit:
		return maxCandidateLimit
	default:
		return q.Limit
	}
}

// ToSQL builds the candidate query for the tier and its positional
// parameters. Rows are ordered by code so results are deterministic.
func (q *TierSpec) ToSQL() (string, []any) {
	var (
		conditions []string
		args       []any
	)

	for _, f := range q.filters() {
		args = append(args, f[1])
		conditions = append(conditions, fmt.Sprintf("%s = $%d", f[0], len(args)))
	}

	args = append(args, q.Unlocked)
	conditions = append(conditions, fmt.Sprintf("is_unlocked = $%d", len(args)))

	return fmt.Sprintf("%s WHERE %s ORDER BY code LIMIT %d",
		baseCandidatesSelect, strings.Join(conditions, " AND "), q.limit(),
	), args
}

// Matches reports whether a catalog entry satisfies the tier's filters.
// String comparison is case-insensitive.
func (q *TierSpec) Matches(e *domain.SkuEntry) bool {
	if e.IsUnlocked != q.Unlocked {
		return false
	}

	values := map[string]string{
		"product_type": string(e.ProductType),
		"model_key":    e.ModelKey,
		"capacity":     e.Capacity,
		"color":        e.Color,
		"brand":        e.Brand,
	}
	for _, f := range q.filters() {
		if !strings.EqualFold(values[f[0]], f[1]) {
			return false
		}
	}
	return true
}
