package retrieval

import (
	"regexp"
	"strings"

	"partner-incentives-be/internal/entity"
)

// Multiplicative boost factors. Each bias targets a disjoint signal, so
// application order does not matter.
const (
	kindBoostFactor       = 1.15
	engagementBoostFactor = 1.25
	formulaBoostFactor    = 1.50
)

// numericIntentPattern flags queries asking for amounts: currency,
// percentages, rates, hours, seats.
var numericIntentPattern = regexp.MustCompile(
	`(?i)(\$|\beuro?s?\b|\busd\b|%|\bpercent\w*\b|\brates?\b|\bhours?\b|\bhourly\b|\bseats?\b|\bpayout\b|\bcalculate\b|\bearn\w*\b|\brevenue\b|[0-9][0-9,.]*\s*(k|m)?\b)`,
)

// biasTransform is one re-ranking rule. applicable is the explicit
// precondition: when it reports false the bias is skipped, which is a
// different outcome from a bias that fired but matched nothing.
type biasTransform interface {
	name() string
	applicable(q Query) bool
	apply(q Query, hits []entity.RetrievalHit)
}

// kindBias boosts chunks of the configured preferred kind, e.g. tabular
// rows over narrative prose.
type kindBias struct {
	kind string
}

func (b kindBias) name() string { return "preferred_kind" }

func (b kindBias) applicable(Query) bool { return b.kind != "" }

func (b kindBias) apply(_ Query, hits []entity.RetrievalHit) {
	for i := range hits {
		if hits[i].Chunk.Kind == b.kind {
			hits[i].Score *= kindBoostFactor
		}
	}
}

// engagementBias boosts chunks whose engagement name or title appears
// verbatim (case-insensitive) in the query text.
type engagementBias struct{}

func (engagementBias) name() string { return "engagement_match" }

func (engagementBias) applicable(q Query) bool { return strings.TrimSpace(q.Text) != "" }

func (engagementBias) apply(q Query, hits []entity.RetrievalHit) {
	text := strings.ToLower(q.Text)
	for i := range hits {
		name := strings.ToLower(strings.TrimSpace(hits[i].Chunk.EngagementName))
		title := strings.ToLower(strings.TrimSpace(hits[i].Chunk.Title))
		if (name != "" && strings.Contains(text, name)) ||
			(title != "" && strings.Contains(text, title)) {
			hits[i].Score *= engagementBoostFactor
		}
	}
}

// formulaBias boosts formula-bearing chunks when the query shows numeric
// intent.
type formulaBias struct{}

func (formulaBias) name() string { return "formula" }

func (formulaBias) applicable(q Query) bool {
	return q.Text != "" && numericIntentPattern.MatchString(q.Text)
}

func (formulaBias) apply(_ Query, hits []entity.RetrievalHit) {
	for i := range hits {
		c := hits[i].Chunk
		if containsFormula(c.Field) || containsFormula(c.Title) || containsFormula(c.Content) {
			hits[i].Score *= formulaBoostFactor
		}
	}
}

func containsFormula(s string) bool {
	return strings.Contains(strings.ToLower(s), "formula")
}
