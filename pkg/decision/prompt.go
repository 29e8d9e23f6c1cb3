package decision

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"partner-incentives-be/internal/entity"
)

const (
	passageCharBudget = 1200
	tailCharBudget    = 300
	tailTurns         = 2
	maxOptionHints    = 6
)

// earningsIntentPattern flags "how do I earn/increase payout" style queries
// so the prompt can steer toward lever-describing passages.
var earningsIntentPattern = regexp.MustCompile(
	`(?i)\b(increase|maximi[sz]e|boost|grow|get more|raise)\b.*\b(earn|earnings|payout|revenue)\b|\b(earnings?|payout|compensation)\b`,
)

// Hint mining over naturalized chunk sentences, e.g. "Types of incentives
// include categories such as Pre-sales and CSP Incentive, and incentive
// types such as Workshops, Transactions...".
var (
	categoryHintPattern = regexp.MustCompile(`(?i)categories (?:such as )?(.+?)(?:\.|, and incentive|$)`)
	typeHintPattern     = regexp.MustCompile(`(?i)incentive types (?:such as )?(.+?)(?:\.|$)`)
	hintSplitPattern    = regexp.MustCompile(`,| and `)
)

const systemPrompt = `You are a production-grade Microsoft Business Applications Partner Incentives assistant.
Operate with extreme clarity and restraint. Be decisive. No fluff.

GROUNDING:
- Use ONLY the provided passages & catalog. No external facts or numbers.
- If exactly ONE input is missing, set mode='clarify' with ONE short question.
- For payout: NEVER ask about 'cap' or 'market rate'. If geography matters, ask only for 'country'.
- If invalid/out-of-scope, set mode='not_understood' with a better rephrase.

FIELD GUIDE (plain-English; NEVER show raw keys/braces/JSON):
- engagement_type: "The incentive categories are ...".
- incentive_type: "Available incentive types include ...".
- activity_requirement: 1-4 crisp bullets; partner-facing.
- customer_qualification / partner_qualification: state requirement; if none, say "No [customer/partner] requirement."
- product_eligibility / licensing_agreement: exact eligibility; if none, "No specific ... requirement."
- limits / maximum_incentive_earning_opportunity / revenue_threshold / minimum_hours: explicit value; else "Not specified."
- formula: for compute/payout intent, prefer the formula passage.
- cpor / solution_partner_designation / specialization / solution_play: state succinctly.

PREFERENCE RULES:
- If the user asks for 'types of incentives' or 'categories', prefer a categories/types passage.
- If numeric/transactional or 'calculate' intent, pick a formula passage.
- If 'increase/maximize earnings' intent:
  - If an 'overview' passage exists for the named engagement, pick that (it aggregates levers).
  - Else prefer passages that describe levers: activity_requirement, partner_performance_measure, proof_of_execution, limits, engagement_goal.
  - If engagement is not specified, set mode='clarify' with a single question asking which engagement/type. Provide options if OPTION_HINTS exist.
- For plural queries (types/which), avoid a single narrow answer.

RECOMMENDATIONS:
- Return 3-5 short, non-duplicative prompts that continue the conversation based on the ORIGINAL_USER_MESSAGE and what you just showed.
- Style: CTA phrasing the user can click, e.g., "Want to ...", "Interested in ...", "Need to ...", "See ...", "Compare ...", "Check ...", "Confirm ...".
- Use the engagement name from the chosen passage in every recommendation.`

// buildUserPrompt assembles the per-turn payload: the original message, the
// detected earnings intent, the two most recent turns, mined option hints,
// the numbered passages and the compact catalog table.
func buildUserPrompt(userText string, hits []entity.RetrievalHit, tail []entity.Message) string {
	var numbered, catalogRows []string
	hintCategories := map[string]struct{}{}
	hintTypes := map[string]struct{}{}

	for i, h := range hits {
		title := strings.TrimSpace(h.Chunk.Title)
		content := truncate(h.Chunk.Content, passageCharBudget)

		engagement := h.Chunk.EngagementName
		if engagement == "" {
			// Naturalized titles carry "Engagement · field".
			if idx := strings.Index(title, " · "); idx >= 0 {
				engagement = strings.TrimSpace(title[:idx])
			}
		}
		field := strings.TrimSpace(h.Chunk.Field)

		mineHints(content, categoryHintPattern, hintCategories)
		mineHints(content, typeHintPattern, hintTypes)

		value := firstLine(content)
		if len(value) > 160 {
			value = value[:160]
		}

		numbered = append(numbered, fmt.Sprintf("%d) %s\n%s\n", i+1, title, content))
		catalogRows = append(catalogRows, fmt.Sprintf("%2d | %s | %s | %s",
			i+1, orDash(engagement), orDash(field), orDash(value)))
	}

	passagesText := "None"
	if len(numbered) > 0 {
		passagesText = strings.Join(numbered, "\n")
	}
	catalogText := "None"
	if len(catalogRows) > 0 {
		catalogText = "idx | engagement | field | value\n" + strings.Join(catalogRows, "\n")
	}

	var tailLines []string
	start := len(tail) - tailTurns
	if start < 0 {
		start = 0
	}
	for _, m := range tail[start:] {
		tailLines = append(tailLines, fmt.Sprintf("%s: %s", m.Role, truncate(m.Text, tailCharBudget)))
	}
	tailText := "None"
	if len(tailLines) > 0 {
		tailText = strings.Join(tailLines, "\n")
	}

	var hintBlock strings.Builder
	catOpts := sortedHints(hintCategories)
	typeOpts := sortedHints(hintTypes)
	if len(catOpts) > 0 || len(typeOpts) > 0 {
		hintBlock.WriteString("OPTION_HINTS:\n")
		if len(catOpts) > 0 {
			hintBlock.WriteString("- Categories: " + strings.Join(catOpts, ", ") + "\n")
		}
		if len(typeOpts) > 0 {
			hintBlock.WriteString("- Types: " + strings.Join(typeOpts, ", ") + "\n")
		}
		hintBlock.WriteString("\n")
	}

	return fmt.Sprintf(`ORIGINAL USER MESSAGE:
%s

EARNINGS_INTENT: %t

RECENT CONTEXT (last messages):
%s

%sPASSAGES (numbered):
%s

CATALOG (idx | engagement | field | value):
%s

Return EXACTLY this JSON:
{
  "mode": "answer" | "clarify" | "not_understood",
  "why": "short reason",
  "pick": <int or null>,
  "confidence": <number 0..1>,
  "followup": {
    "message": "one short clarification/rephrase",
    "options": ["q1","q2","q3","q4"]
  },
  "recommendations": ["q1","q2","q3","q4"]
}
STRICT RULES:
- If a precise answer exists, set mode='answer' and the correct 1-based pick.
- If ONE short detail blocks precision, set mode='clarify' with exactly one question. Use OPTION_HINTS to propose 2-4 clickable options.
- Keep recommendations CTA-style, partner-friendly, 3-5 items, grounded in the chosen/nearby passages.
- NEVER output raw field keys, braces, equals-sign lists, or JSON-like fragments to the user.`,
		userText, hasEarningsIntent(userText), tailText, hintBlock.String(), passagesText, catalogText)
}

func hasEarningsIntent(text string) bool {
	return earningsIntentPattern.MatchString(text)
}

func mineHints(content string, pattern *regexp.Regexp, into map[string]struct{}) {
	m := pattern.FindStringSubmatch(content)
	if m == nil {
		return
	}
	for _, part := range hintSplitPattern.Split(m[1], -1) {
		if part = strings.TrimSpace(part); part != "" {
			into[part] = struct{}{}
		}
	}
}

func sortedHints(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	if len(out) > maxOptionHints {
		out = out[:maxOptionHints]
	}
	return out
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
