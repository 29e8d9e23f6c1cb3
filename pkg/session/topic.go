package session

import (
	"regexp"
	"strings"

	"partner-incentives-be/internal/entity"
)

// Pronoun and determiner shapes that signal the user is referring back to the
// previous subject ("is this incentive capped?", "what about that workshop?").
var anaphoraPattern = regexp.MustCompile(
	`(?i)\b(this|that|these|those|it|them|the\s*(program|incentive|workshop|engagement|offer|scheme|activity|requirements?))\b`,
)

// Short follow-ups that name a detail but no subject ("eligibility?",
// "what's the rate").
var detailNounPattern = regexp.MustCompile(
	`(?i)\b(eligibil|requirement|activities?|rate|amount|payment|timeline|scope)\w*\b`,
)

// Capitalized noun phrase ending in a known program suffix, used as a last
// resort when hit metadata carries no usable name.
var topicPhrasePattern = regexp.MustCompile(
	`\b([A-Z][A-Za-z0-9+/&\-\s]{3,}?(?:Incentive|Workshop|Program|Engagement)s?)\b`,
)

// DeriveTopic infers the conversation subject from the winning hits:
// engagement name first, then title, then document name, then a capitalized
// phrase mined from content.
func DeriveTopic(hits []entity.RetrievalHit) string {
	for _, h := range hits {
		for _, v := range []string{h.Chunk.EngagementName, h.Chunk.Title, h.Chunk.DocName} {
			v = strings.TrimSpace(v)
			if len(v) > 2 {
				return v
			}
		}
	}
	for _, h := range hits {
		if m := topicPhrasePattern.FindStringSubmatch(h.Chunk.Content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// IsFollowup reports whether the message looks like an anaphoric follow-up
// that should inherit the stored topic.
func IsFollowup(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if anaphoraPattern.MatchString(t) {
		return true
	}
	return len(strings.Fields(t)) <= 10 && detailNounPattern.MatchString(t)
}

// EffectiveQuery prepends the stored topic to anaphoric follow-ups so
// retrieval sees the resolved subject.
func EffectiveQuery(topic, text string) string {
	if topic == "" || !IsFollowup(text) {
		return text
	}
	return strings.TrimSpace(topic + " " + text)
}
