package decision

import (
	"strconv"
	"strings"

	"partner-incentives-be/internal/entity"
)

// DefaultFollowupMessage is the generic re-ask used whenever the model
// cannot be trusted to have produced a usable question.
const DefaultFollowupMessage = "Could you clarify your question in one sentence?"

const (
	maxWhyLength       = 200
	maxRecommendations = 5
)

// fallbackDecision is the unconditional degradation target for transport
// and parse failures.
func fallbackDecision(why string) entity.Decision {
	return entity.Decision{
		Mode:       entity.DecisionModeClarify,
		Why:        clip(why, maxWhyLength),
		Confidence: 0.0,
		Followup:   &entity.Followup{Message: DefaultFollowupMessage, Options: []string{}},
	}
}

// sanitize validates the raw model payload into a Decision. hitCount bounds
// pick; anything out of contract is coerced, never propagated.
func sanitize(data map[string]any, hitCount int) entity.Decision {
	d := entity.Decision{
		Mode:       asString(data["mode"]),
		Why:        clip(strings.TrimSpace(asString(data["why"])), maxWhyLength),
		Confidence: clamp01(asFloat(data["confidence"])),
	}

	switch d.Mode {
	case entity.DecisionModeAnswer, entity.DecisionModeClarify, entity.DecisionModeNotUnderstood:
	default:
		d.Mode = entity.DecisionModeClarify
	}

	if d.Mode == entity.DecisionModeAnswer {
		pick, ok := asInt(data["pick"])
		if !ok || pick < 1 || pick > hitCount {
			// Invalid or out-of-range pick: substitute the top hit rather
			// than fail, answer mode only.
			pick = 1
		}
		d.Pick = &pick
	} else {
		d.Followup = sanitizeFollowup(data["followup"])
	}

	d.Recommendations = sanitizeRecommendations(data["recommendations"])
	return d
}

func sanitizeFollowup(raw any) *entity.Followup {
	f := &entity.Followup{Message: DefaultFollowupMessage, Options: []string{}}
	m, ok := raw.(map[string]any)
	if !ok {
		return f
	}
	if msg := strings.TrimSpace(asString(m["message"])); msg != "" {
		f.Message = msg
	}
	if opts, ok := m["options"].([]any); ok {
		for _, o := range opts {
			if s := strings.TrimSpace(asString(o)); s != "" {
				f.Options = append(f.Options, s)
			}
		}
	}
	return f
}

func sanitizeRecommendations(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	seen := map[string]struct{}{}
	var cleaned []string
	for _, it := range items {
		s := strings.TrimSpace(asString(it))
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, s)
		if len(cleaned) == maxRecommendations {
			break
		}
	}
	return cleaned
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0.0
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case int:
		return x, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// clip hard-truncates diagnostics, no ellipsis.
func clip(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
