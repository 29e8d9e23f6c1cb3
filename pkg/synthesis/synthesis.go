// Package synthesis turns one chosen passage into the final partner-facing
// reply, prefixed ANSWER: or CLARIFY:. A formula-bearing passage routes to a
// calculator prompt at temperature 0; everything else gets a narrative
// rewrite.
package synthesis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/pkg/logger"
	"partner-incentives-be/pkg/llm"
)

const (
	AnswerPrefix  = "ANSWER:"
	ClarifyPrefix = "CLARIFY:"

	calculatorTemperature = 0.0
	narrativeTemperature  = 0.2
)

var earningsIntentPattern = regexp.MustCompile(
	`(?i)\b(increase|maximi[sz]e|boost|grow|get more|raise)\b.*\b(earn|earnings|payout)\b|\b(earnings?|payout)\b`,
)

const calculatorSystemPrompt = `You are a precise payout calculator for Microsoft Business Apps incentives.
GROUNDING: Use ONLY the provided passage. No external facts.
RULES:
- If formula inputs are present, compute payout.
- CAP: Never ask for a cap. If 'Maximum Incentive Earning Opportunity' is present, enforce it; otherwise no cap.
- MARKET: Never ask for 'market rate'. If geography matters, ask only for 'country'.
- If exactly one input is missing (ACV/ARR/%, hours, seats, country), CLARIFY once.
FORMAT:
- ANSWER: Payout = <currency amount>. Short breakdown.
- Always include currency; 2-decimal, thousands separators.
- Or CLARIFY: <one short question>.`

const narrativeSystemPrompt = `You are a Microsoft Business Applications Partner Incentives assistant.
Rewrite the passage into a concise, human-friendly answer for a reseller partner.
GROUNDING: Use ONLY this passage. No external facts.
If missing/unclear, return CLARIFY with exactly one short question.

IF EARNINGS INTENT IS TRUE:
- Give an 'Earnings levers' style answer for THIS engagement, derived ONLY from the passage:
  - What activities qualify to earn.
  - Any proof/performance/goal signals that drive payout.
  - Note limits/caps/minimums if present.
- Keep it to 1-2 sentences or 2-3 bullets. No speculation beyond the passage.
FORMAT: return either ANSWER: or CLARIFY: prefix.
STYLE:
- No hedging, no filler, no ellipses (...).
- Complete sentences, crisp and informative.
- Prefer plain language; keep any figures or counts exactly as written in the passage.
- If the passage lists activities/eligibility/requirements, summarize the essentials clearly.
FAILSAFE:
- If the passage truly lacks the needed fact, return CLARIFY with exactly one short question.`

// Engine performs the synthesis call. The retry policy lives in the
// underlying llm provider.
type Engine struct {
	llm llm.LLMProvider
	log logger.ILogger
}

func NewEngine(provider llm.LLMProvider, log logger.ILogger) *Engine {
	return &Engine{llm: provider, log: log}
}

// Synthesize produces the prefixed reply for the chosen passage. A missing
// prefix on the raw model output defaults to ANSWER: rather than failing.
func (e *Engine) Synthesize(ctx context.Context, userText string, passage entity.ContentChunk) (string, error) {
	var (
		system      string
		user        string
		temperature float64
	)

	if HasFormula(passage) {
		system = calculatorSystemPrompt
		temperature = calculatorTemperature
		user = fmt.Sprintf(`User message:
%s

PASSAGE (formula only):
%s

Respond with either:
CLARIFY: <one missing input question>
or
ANSWER: Payout = <amount and currency>. <short breakdown>`, userText, passage.Content)
	} else {
		system = narrativeSystemPrompt
		temperature = narrativeTemperature
		user = fmt.Sprintf(`User asked: %q
EARNINGS_INTENT: %t
Use ONLY this passage (field: %s, title: %s):
%s

Respond with either:
CLARIFY: <one short missing input question>
or
ANSWER: <partner-friendly answer; if earnings intent, phrase as 'Earnings levers' for this engagement using only what's here>`,
			userText, earningsIntentPattern.MatchString(userText),
			strings.ToLower(passage.Field), strings.TrimSpace(passage.Title), passage.Content)
	}

	raw, err := e.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, llm.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("synthesis: %w", err)
	}

	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, AnswerPrefix) && !strings.HasPrefix(text, ClarifyPrefix) {
		text = AnswerPrefix + " " + text
	}
	return text, nil
}

// HasFormula is the calculator-mode probe: the literal marker anywhere in
// the passage's title or content.
func HasFormula(passage entity.ContentChunk) bool {
	blob := strings.ToLower(passage.Title + "\n" + passage.Content)
	return strings.Contains(blob, "formula")
}

// IsClarify reports whether a synthesized reply is asking the user back.
func IsClarify(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), ClarifyPrefix)
}

// StripPrefix removes the leading ANSWER:/CLARIFY: marker and surrounding
// whitespace or quotes for caller-facing display.
func StripPrefix(text string) string {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, AnswerPrefix)
	t = strings.TrimPrefix(t, ClarifyPrefix)
	return strings.Trim(strings.TrimSpace(t), `"`)
}
