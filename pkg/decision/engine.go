// Package decision routes each turn to answer, clarify or not_understood by
// asking a completion model for a strict-JSON verdict over the fused
// passages, then sanitizing whatever comes back into a valid Decision.
package decision

import (
	"context"
	"encoding/json"

	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/pkg/logger"
	"partner-incentives-be/pkg/llm"
)

const decisionTemperature = 0.2

// Engine wraps the decision call. Decide never returns an error: transport
// and parse failures degrade to a default clarify Decision.
type Engine struct {
	llm llm.LLMProvider
	log logger.ILogger
}

func NewEngine(provider llm.LLMProvider, log logger.ILogger) *Engine {
	return &Engine{llm: provider, log: log}
}

func (e *Engine) Decide(ctx context.Context, userText string, hits []entity.RetrievalHit, tail []entity.Message) entity.Decision {
	history := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(userText, hits, tail)},
	}

	raw, err := e.llm.Chat(ctx, history, llm.WithTemperature(decisionTemperature))
	if err != nil {
		e.log.Warn("decision", "completion failed, degrading to clarify", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackDecision("completion failed")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		e.log.Warn("decision", "model returned non-JSON, degrading to clarify", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackDecision("model returned non-JSON")
	}

	return sanitize(data, len(hits))
}
