package decision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/pkg/logger"
	"partner-incentives-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.lastPrompt = history[len(history)-1].Content
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func someHits() []entity.RetrievalHit {
	return []entity.RetrievalHit{
		{Chunk: entity.ContentChunk{
			Id:             "1",
			Title:          "D365 CSP Core · formula",
			EngagementName: "D365 CSP Core",
			Field:          "formula",
			Content:        "core_billed_revenue * 0.04",
		}},
		{Chunk: entity.ContentChunk{
			Id:      "2",
			Title:   "Incentive Overview",
			Content: "Types of incentives include categories such as Pre-sales and CSP Incentive, and incentive types such as Workshops, Transactions.",
		}},
	}
}

func TestDecide_Answer(t *testing.T) {
	f := &fakeLLM{reply: `{"mode":"answer","why":"formula found","pick":1,"confidence":0.9,"recommendations":["Want to see the cap?"]}`}
	e := NewEngine(f, logger.NewNopLogger())

	d := e.Decide(context.Background(), "calculate payout for CSP Core", someHits(), nil)
	assert.Equal(t, entity.DecisionModeAnswer, d.Mode)
	require.NotNil(t, d.Pick)
	assert.Equal(t, 1, *d.Pick)
}

func TestDecide_TransportFailureDegradesToClarify(t *testing.T) {
	f := &fakeLLM{err: errors.New("upstream down")}
	e := NewEngine(f, logger.NewNopLogger())

	d := e.Decide(context.Background(), "anything", someHits(), nil)
	assert.Equal(t, entity.DecisionModeClarify, d.Mode)
	require.NotNil(t, d.Followup)
	assert.Equal(t, DefaultFollowupMessage, d.Followup.Message)
}

func TestDecide_NonJSONDegradesToClarify(t *testing.T) {
	f := &fakeLLM{reply: "Sure! The payout is 4%."}
	e := NewEngine(f, logger.NewNopLogger())

	d := e.Decide(context.Background(), "anything", someHits(), nil)
	assert.Equal(t, entity.DecisionModeClarify, d.Mode)
	assert.Equal(t, "model returned non-JSON", d.Why)
}

func TestDecide_PromptCarriesPassagesAndContext(t *testing.T) {
	f := &fakeLLM{reply: `{"mode":"answer","pick":1}`}
	e := NewEngine(f, logger.NewNopLogger())

	tail := []entity.Message{
		{Role: "user", Text: "tell me about csp"},
		{Role: "assistant", Text: "CSP Core pays on billed revenue."},
		{Role: "user", Text: "what about workshops"},
	}
	e.Decide(context.Background(), "calculate payout for CSP Core", someHits(), tail)

	p := f.lastPrompt
	assert.Contains(t, p, "ORIGINAL USER MESSAGE:\ncalculate payout for CSP Core")
	assert.Contains(t, p, "EARNINGS_INTENT: true")
	assert.Contains(t, p, "1) D365 CSP Core · formula")
	assert.Contains(t, p, "core_billed_revenue * 0.04")
	assert.Contains(t, p, "idx | engagement | field | value")
	// Only the last two turns ride along.
	assert.NotContains(t, p, "tell me about csp")
	assert.Contains(t, p, "assistant: CSP Core pays on billed revenue.")
	assert.Contains(t, p, "user: what about workshops")
	// Option hints mined from the naturalized overview sentence.
	assert.Contains(t, p, "OPTION_HINTS:")
	assert.Contains(t, p, "Pre-sales")
	assert.Contains(t, p, "Workshops")
}

func TestBuildUserPrompt_TruncatesLongPassages(t *testing.T) {
	long := strings.Repeat("z", 5000)
	hits := []entity.RetrievalHit{{Chunk: entity.ContentChunk{Id: "1", Title: "T", Content: long}}}

	p := buildUserPrompt("q", hits, nil)
	assert.Contains(t, p, strings.Repeat("z", passageCharBudget)+"...")
	assert.NotContains(t, p, strings.Repeat("z", passageCharBudget+1))
}

func TestBuildUserPrompt_EmptyHits(t *testing.T) {
	p := buildUserPrompt("q", nil, nil)
	assert.Contains(t, p, "PASSAGES (numbered):\nNone")
	assert.Contains(t, p, "CATALOG (idx | engagement | field | value):\nNone")
}
