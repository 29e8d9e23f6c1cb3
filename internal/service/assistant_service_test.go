package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-incentives-be/internal/dto"
	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/pkg/logger"
	"partner-incentives-be/pkg/calc"
	"partner-incentives-be/pkg/events"
	"partner-incentives-be/pkg/market"
	"partner-incentives-be/pkg/retrieval"
	"partner-incentives-be/pkg/session"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeSearchEngine struct {
	hits      []entity.RetrievalHit
	err       error
	lastQuery retrieval.Query
}

func (f *fakeSearchEngine) Search(_ context.Context, q retrieval.Query) ([]entity.RetrievalHit, error) {
	f.lastQuery = q
	return f.hits, f.err
}

type fakeDecider struct {
	decision entity.Decision
	lastTail []entity.Message
}

func (f *fakeDecider) Decide(_ context.Context, _ string, _ []entity.RetrievalHit, tail []entity.Message) entity.Decision {
	f.lastTail = tail
	return f.decision
}

type fakeSynthesizer struct {
	reply       string
	err         error
	lastPassage entity.ContentChunk
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string, passage entity.ContentChunk) (string, error) {
	f.lastPassage = passage
	return f.reply, f.err
}

type fakePublisher struct {
	published []events.Event
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return f.err
}

type fixture struct {
	svc       IAssistantService
	sessions  session.Store
	embedder  *fakeEmbedder
	engine    *fakeSearchEngine
	decider   *fakeDecider
	synth     *fakeSynthesizer
	publisher *fakePublisher
}

func newFixture() *fixture {
	f := &fixture{
		sessions:  session.NewMemoryStore(time.Hour),
		embedder:  &fakeEmbedder{},
		engine:    &fakeSearchEngine{},
		decider:   &fakeDecider{},
		synth:     &fakeSynthesizer{},
		publisher: &fakePublisher{},
	}
	f.svc = NewAssistantService(
		f.sessions,
		f.embedder,
		f.engine,
		f.decider,
		f.synth,
		market.NewResolver(),
		calc.Load(),
		f.publisher,
		logger.NewNopLogger(),
	)
	return f
}

func intPtr(n int) *int { return &n }

func payoutHit(engagement string) entity.RetrievalHit {
	return entity.RetrievalHit{
		Chunk: entity.ContentChunk{
			Id:             "c1",
			Title:          engagement,
			Content:        "Payout formula: 8% of deal value, capped at $10,000.",
			Field:          "formula",
			EngagementName: engagement,
			Kind:           "tabular",
		},
		Score: 0.9,
	}
}

func TestProcessMessage_AnswerTurn(t *testing.T) {
	f := newFixture()
	f.engine.hits = []entity.RetrievalHit{payoutHit("CSP Core")}
	f.decider.decision = entity.Decision{
		Mode:            entity.DecisionModeAnswer,
		Pick:            intPtr(1),
		Confidence:      0.92,
		Recommendations: []string{"Ask about the cap"},
	}
	f.synth.reply = "ANSWER: You would earn $40,000 on a $500k deal."

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{
		Text: "How much do I earn on a 500k CSP Core deal?",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, dto.TurnTypeAnswer, resp.Type)
	assert.NotEmpty(t, resp.SessionId)
	assert.Equal(t, "You would earn $40,000 on a $500k deal.", resp.Text)
	assert.Equal(t, "CSP Core", resp.Engagement)
	assert.InDelta(t, 0.92, resp.Confidence, 1e-9)
	assert.Equal(t, []string{"Ask about the cap"}, resp.Recommendations)
	assert.Equal(t, "CSP Core", f.synth.lastPassage.EngagementName)

	// The turn event goes out once per turn.
	require.Len(t, f.publisher.published, 1)

	// Both sides of the exchange are persisted.
	tail, err := f.sessions.Tail(context.Background(), resp.SessionId, 10)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, entity.MessageRoleUser, tail[0].Role)
	assert.Equal(t, entity.MessageRoleAssistant, tail[1].Role)
}

func TestProcessMessage_EmptyTextRejected(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{Text: "   "}, false)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestProcessMessage_SelectionOverridesText(t *testing.T) {
	f := newFixture()
	f.engine.hits = []entity.RetrievalHit{payoutHit("ERP Assessment")}
	f.decider.decision = entity.Decision{Mode: entity.DecisionModeAnswer, Pick: intPtr(1)}
	f.synth.reply = "ANSWER: details"

	_, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{
		Text:      "tell me more",
		Selection: "ERP Assessment",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "ERP Assessment", f.engine.lastQuery.Text)
}

func TestProcessMessage_NotFoundOnEmptyHits(t *testing.T) {
	f := newFixture()
	f.engine.hits = nil

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{Text: "quantum blockchain bonus"}, false)
	require.NoError(t, err)
	assert.Equal(t, dto.TurnTypeNotFound, resp.Type)
	assert.NotEmpty(t, resp.Message)
}

func TestProcessMessage_ClarifyPassThrough(t *testing.T) {
	f := newFixture()
	f.engine.hits = []entity.RetrievalHit{payoutHit("CSP Core")}
	f.decider.decision = entity.Decision{
		Mode: entity.DecisionModeClarify,
		Followup: &entity.Followup{
			Message: "Which engagement do you mean?",
			Options: []string{"CSP Core", "CSP Growth"},
		},
	}

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{Text: "what about the incentive"}, false)
	require.NoError(t, err)
	assert.Equal(t, dto.TurnTypeClarify, resp.Type)
	assert.Equal(t, "Which engagement do you mean?", resp.Message)
	assert.Equal(t, []string{"CSP Core", "CSP Growth"}, resp.Options)
}

func TestProcessMessage_NotUnderstoodBecomesClarify(t *testing.T) {
	f := newFixture()
	f.engine.hits = []entity.RetrievalHit{payoutHit("CSP Core")}
	f.decider.decision = entity.Decision{
		Mode:     entity.DecisionModeNotUnderstood,
		Followup: &entity.Followup{Message: "Could you clarify your question in one sentence?"},
	}

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{Text: "asdf ghjk"}, false)
	require.NoError(t, err)
	assert.Equal(t, dto.TurnTypeClarify, resp.Type)
}

func TestProcessMessage_EmbeddingFailureIsErrorTurn(t *testing.T) {
	f := newFixture()
	f.embedder.err = errors.New("upstream down")

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{Text: "hello"}, false)
	require.NoError(t, err)
	assert.Equal(t, dto.TurnTypeError, resp.Type)
	assert.Equal(t, "embedding failed", resp.Error)
	assert.Equal(t, "upstream down", resp.Detail)
}

func TestProcessMessage_SearchFailureIsErrorTurn(t *testing.T) {
	f := newFixture()
	f.engine.err = retrieval.ErrSearchFailed

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{Text: "hello"}, false)
	require.NoError(t, err)
	assert.Equal(t, dto.TurnTypeError, resp.Type)
	assert.Equal(t, "search failed", resp.Error)
}

func TestProcessMessage_TopicCarryOver(t *testing.T) {
	f := newFixture()
	f.engine.hits = []entity.RetrievalHit{payoutHit("Business Applications Pre-Sales Incentive")}
	f.decider.decision = entity.Decision{Mode: entity.DecisionModeAnswer, Pick: intPtr(1)}
	f.synth.reply = "ANSWER: 8% of deal value."

	first, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{
		Text: "tell me about the pre-sales incentive",
	}, false)
	require.NoError(t, err)

	// A bare follow-up gets the stored topic prepended to its query.
	_, err = f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{
		SessionId: first.SessionId,
		Text:      "what's the rate?",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Business Applications Pre-Sales Incentive what's the rate?", f.engine.lastQuery.Text)
}

func TestProcessMessage_ClarifyCountryMarksPendingCalculation(t *testing.T) {
	f := newFixture()
	f.engine.hits = []entity.RetrievalHit{payoutHit("ERP Envisioning Workshop")}
	f.decider.decision = entity.Decision{Mode: entity.DecisionModeAnswer, Pick: intPtr(1)}
	f.synth.reply = "CLARIFY: Which country is the customer in?"

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{
		Text: "how much for an ERP envisioning workshop?",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, dto.TurnTypeClarify, resp.Type)

	pending, err := f.sessions.PendingCalculation(context.Background(), resp.SessionId)
	require.NoError(t, err)
	assert.Equal(t, "ERP Envisioning Workshop", pending)
}

func TestProcessMessage_PendingCalculationResolvesCountry(t *testing.T) {
	f := newFixture()
	sid, err := f.sessions.Ensure(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, f.sessions.SetPendingCalculation(context.Background(), sid, "ERP Envisioning Workshop"))

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{
		SessionId: sid,
		Text:      "Canada",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, dto.TurnTypeAnswer, resp.Type)
	assert.Equal(t, "ERP Envisioning Workshop", resp.Engagement)
	require.NotNil(t, resp.Calculation)
	assert.NotContains(t, resp.Calculation.Blockers, "country")
	assert.Contains(t, resp.Text, "Canada")

	// The marker is consumed; the next turn goes through retrieval again.
	pending, err := f.sessions.PendingCalculation(context.Background(), sid)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Retrieval was never touched for the country turn.
	assert.Empty(t, f.engine.lastQuery.Text)
}

func TestProcessMessage_PendingCalculationUnknownCountryReAsks(t *testing.T) {
	f := newFixture()
	sid, err := f.sessions.Ensure(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, f.sessions.SetPendingCalculation(context.Background(), sid, "ERP Envisioning Workshop"))

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{
		SessionId: sid,
		Text:      "Atlantis",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, dto.TurnTypeClarify, resp.Type)

	// The marker survives so the next country attempt still resolves.
	pending, err := f.sessions.PendingCalculation(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "ERP Envisioning Workshop", pending)
}

func TestProcessMessage_PublisherFailureDoesNotFailTurn(t *testing.T) {
	f := newFixture()
	f.engine.hits = []entity.RetrievalHit{payoutHit("CSP Core")}
	f.decider.decision = entity.Decision{Mode: entity.DecisionModeAnswer, Pick: intPtr(1)}
	f.synth.reply = "ANSWER: ok"
	f.publisher.err = errors.New("nats down")

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{Text: "csp core payout"}, false)
	require.NoError(t, err)
	assert.Equal(t, dto.TurnTypeAnswer, resp.Type)
}

func TestProcessMessage_DebugBlock(t *testing.T) {
	f := newFixture()
	f.engine.hits = []entity.RetrievalHit{payoutHit("CSP Core")}
	f.decider.decision = entity.Decision{Mode: entity.DecisionModeAnswer, Pick: intPtr(1), Why: "direct match"}
	f.synth.reply = "ANSWER: ok"

	resp, err := f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{Text: "csp core payout"}, true)
	require.NoError(t, err)
	require.NotNil(t, resp.Debug)
	assert.Equal(t, "csp core payout", resp.Debug["effective_query"])
	assert.Equal(t, 1, resp.Debug["hit_count"])
	assert.Equal(t, "direct match", resp.Debug["decision_why"])

	resp, err = f.svc.ProcessMessage(context.Background(), &dto.MessageRequest{SessionId: resp.SessionId, Text: "csp core payout"}, false)
	require.NoError(t, err)
	assert.Nil(t, resp.Debug)
}
