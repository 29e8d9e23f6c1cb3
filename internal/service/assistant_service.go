package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"partner-incentives-be/internal/dto"
	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/pkg/logger"
	"partner-incentives-be/pkg/calc"
	"partner-incentives-be/pkg/events"
	"partner-incentives-be/pkg/market"
	"partner-incentives-be/pkg/retrieval"
	"partner-incentives-be/pkg/session"
	"partner-incentives-be/pkg/synthesis"
)

const (
	defaultTopK      = 5
	notFoundMessage  = "I couldn't find anything about that in the incentives guide. Could you rephrase or name the engagement?"
	countryRetryText = "I didn't recognize that country. Could you give the country name, e.g. 'Germany' or 'US'?"

	publishTimeout = 2 * time.Second
)

// ErrEmptyMessage rejects turns whose text is blank after trimming.
var ErrEmptyMessage = errors.New("message text is empty")

// IAssistantService runs one conversational turn end to end.
type IAssistantService interface {
	ProcessMessage(ctx context.Context, req *dto.MessageRequest, debug bool) (*dto.MessageResponse, error)
}

// Collaborator contracts, narrowed to what the turn needs so tests can fake
// them.
type (
	Embedder interface {
		Embed(ctx context.Context, text string) ([]float32, error)
	}

	SearchEngine interface {
		Search(ctx context.Context, q retrieval.Query) ([]entity.RetrievalHit, error)
	}

	Decider interface {
		Decide(ctx context.Context, userText string, hits []entity.RetrievalHit, tail []entity.Message) entity.Decision
	}

	Synthesizer interface {
		Synthesize(ctx context.Context, userText string, passage entity.ContentChunk) (string, error)
	}

	EventPublisher interface {
		Publish(ctx context.Context, event events.Event) error
	}
)

type assistantService struct {
	sessions    session.Store
	embedder    Embedder
	engine      SearchEngine
	decider     Decider
	synthesizer Synthesizer
	resolver    *market.Resolver
	catalog     calc.Catalog
	publisher   EventPublisher
	log         logger.ILogger
}

func NewAssistantService(
	sessions session.Store,
	embedder Embedder,
	engine SearchEngine,
	decider Decider,
	synthesizer Synthesizer,
	resolver *market.Resolver,
	catalog calc.Catalog,
	publisher EventPublisher,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		sessions:    sessions,
		embedder:    embedder,
		engine:      engine,
		decider:     decider,
		synthesizer: synthesizer,
		resolver:    resolver,
		catalog:     catalog,
		publisher:   publisher,
		log:         log,
	}
}

func (s *assistantService) ProcessMessage(ctx context.Context, req *dto.MessageRequest, debug bool) (*dto.MessageResponse, error) {
	text := strings.TrimSpace(req.Text)
	// A quick-pick selection replaces the typed text for this turn.
	if sel := strings.TrimSpace(req.Selection); sel != "" {
		text = sel
	}
	if text == "" {
		return nil, ErrEmptyMessage
	}

	sid, err := s.sessions.Ensure(ctx, req.SessionId)
	if err != nil {
		return s.errorResponse(req.SessionId, "session store unavailable", err), nil
	}
	if err := s.sessions.Append(ctx, sid, entity.MessageRoleUser, text); err != nil {
		return s.errorResponse(sid, "session store unavailable", err), nil
	}

	// A turn answering a stored country prompt bypasses retrieval: the
	// market rate is resolved deterministically and patched into the
	// pending payout form.
	if pending, err := s.sessions.PendingCalculation(ctx, sid); err == nil && pending != "" {
		return s.resolvePendingCalculation(ctx, sid, pending, text, debug)
	}

	topic, _ := s.sessions.Topic(ctx, sid)
	effectiveQuery := session.EffectiveQuery(topic, text)

	vector, err := s.embedder.Embed(ctx, effectiveQuery)
	if err != nil {
		return s.errorResponse(sid, "embedding failed", err), nil
	}

	hits, err := s.engine.Search(ctx, retrieval.Query{
		Text:   effectiveQuery,
		Vector: vector,
		TopK:   defaultTopK,
	})
	if err != nil {
		return s.errorResponse(sid, "search failed", err), nil
	}

	if newTopic := session.DeriveTopic(hits); newTopic != "" {
		if err := s.sessions.SetTopic(ctx, sid, newTopic); err != nil {
			s.log.Warn("assistant", "failed to store topic", map[string]interface{}{"error": err.Error()})
		}
	}

	if len(hits) == 0 {
		resp := &dto.MessageResponse{
			Type:      dto.TurnTypeNotFound,
			SessionId: sid,
			Message:   notFoundMessage,
		}
		s.finishTurn(ctx, sid, resp)
		return s.withDebug(resp, debug, effectiveQuery, topic, hits, nil), nil
	}

	tail, _ := s.sessions.Tail(ctx, sid, entity.MaxSessionMessages)
	d := s.decider.Decide(ctx, effectiveQuery, hits, tail)

	var resp *dto.MessageResponse
	switch d.Mode {
	case entity.DecisionModeAnswer:
		resp, err = s.answerTurn(ctx, sid, effectiveQuery, hits, d)
		if err != nil {
			return s.errorResponse(sid, "answer synthesis failed", err), nil
		}
	default:
		// clarify and not_understood both come back as a re-ask.
		resp = &dto.MessageResponse{
			Type:            dto.TurnTypeClarify,
			SessionId:       sid,
			Message:         d.Followup.Message,
			Options:         d.Followup.Options,
			Recommendations: d.Recommendations,
		}
	}

	s.finishTurn(ctx, sid, resp)
	return s.withDebug(resp, debug, effectiveQuery, topic, hits, &d), nil
}

// answerTurn runs synthesis over the picked passage. A CLARIFY: reply flips
// the turn to a clarify response; when that clarify asks for a country and
// the passage maps to a country-blocked calculation, the engagement is
// marked pending so the next turn can patch the market rate.
func (s *assistantService) answerTurn(ctx context.Context, sid, effectiveQuery string, hits []entity.RetrievalHit, d entity.Decision) (*dto.MessageResponse, error) {
	passage := hits[*d.Pick-1].Chunk

	reply, err := s.synthesizer.Synthesize(ctx, effectiveQuery, passage)
	if err != nil {
		return nil, err
	}

	if synthesis.IsClarify(reply) {
		message := synthesis.StripPrefix(reply)
		if s.asksForCountry(message) {
			if calcDef, _, found := s.catalog.FindByName(passage.EngagementName); found && hasCountryBlocker(calcDef) {
				if err := s.sessions.SetPendingCalculation(ctx, sid, calcDef.Name); err != nil {
					s.log.Warn("assistant", "failed to mark pending calculation", map[string]interface{}{"error": err.Error()})
				}
			}
		}
		return &dto.MessageResponse{
			Type:            dto.TurnTypeClarify,
			SessionId:       sid,
			Message:         message,
			Recommendations: d.Recommendations,
		}, nil
	}

	return &dto.MessageResponse{
		Type:            dto.TurnTypeAnswer,
		SessionId:       sid,
		Text:            synthesis.StripPrefix(reply),
		Engagement:      passage.EngagementName,
		Confidence:      d.Confidence,
		Recommendations: d.Recommendations,
	}, nil
}

// resolvePendingCalculation handles the turn after the assistant asked for a
// country: resolve it, patch the calculation's market_rate field, clear the
// marker. An unrecognized country re-asks without clearing.
func (s *assistantService) resolvePendingCalculation(ctx context.Context, sid, pending, text string, debug bool) (*dto.MessageResponse, error) {
	res, ok := s.resolver.Resolve(text)
	if !ok {
		resp := &dto.MessageResponse{
			Type:      dto.TurnTypeClarify,
			SessionId: sid,
			Message:   countryRetryText,
		}
		s.finishTurn(ctx, sid, resp)
		return resp, nil
	}

	calcDef, _, found := s.catalog.FindByName(pending)
	if !found {
		// The catalog changed under us; drop the stale marker.
		_ = s.sessions.SetPendingCalculation(ctx, sid, "")
		resp := &dto.MessageResponse{
			Type:      dto.TurnTypeNotFound,
			SessionId: sid,
			Message:   notFoundMessage,
		}
		s.finishTurn(ctx, sid, resp)
		return resp, nil
	}

	patched := calc.ApplyMarketRate(calcDef, res.HourlyRate)
	if err := s.sessions.SetPendingCalculation(ctx, sid, ""); err != nil {
		s.log.Warn("assistant", "failed to clear pending calculation", map[string]interface{}{"error": err.Error()})
	}

	resp := &dto.MessageResponse{
		Type:        dto.TurnTypeAnswer,
		SessionId:   sid,
		Text:        "Got it — " + titleWords(res.Country) + " is a tier " + res.Tier + " market at $" + strconv.Itoa(res.HourlyRate) + "/hour. The payout form below is ready to calculate.",
		Engagement:  calcDef.Name,
		Calculation: &patched,
	}
	s.finishTurn(ctx, sid, resp)
	if debug {
		resp.Debug = map[string]interface{}{
			"country": res.Country,
			"tier":    res.Tier,
			"rate":    res.HourlyRate,
		}
	}
	return resp, nil
}

// finishTurn persists the assistant's reply and emits the analytics event.
// Both are best-effort: a failure is logged, never surfaced.
func (s *assistantService) finishTurn(ctx context.Context, sid string, resp *dto.MessageResponse) {
	replyText := resp.Text
	if replyText == "" {
		replyText = resp.Message
	}
	if err := s.sessions.Append(ctx, sid, entity.MessageRoleAssistant, replyText); err != nil {
		s.log.Warn("assistant", "failed to persist assistant message", map[string]interface{}{"error": err.Error()})
	}

	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	event := events.NewTurnCompleted(sid, resp.Type, resp.Engagement, resp.Confidence)
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.log.Warn("assistant", "failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
}

func (s *assistantService) errorResponse(sid, message string, err error) *dto.MessageResponse {
	s.log.Error("assistant", message, map[string]interface{}{"error": err.Error()})
	return &dto.MessageResponse{
		Type:      dto.TurnTypeError,
		SessionId: sid,
		Error:     message,
		Detail:    err.Error(),
	}
}

func (s *assistantService) withDebug(resp *dto.MessageResponse, debug bool, effectiveQuery, topic string, hits []entity.RetrievalHit, d *entity.Decision) *dto.MessageResponse {
	if !debug {
		return resp
	}
	dbg := map[string]interface{}{
		"effective_query": effectiveQuery,
		"previous_topic":  topic,
		"hit_count":       len(hits),
	}
	if d != nil {
		dbg["decision_mode"] = d.Mode
		dbg["decision_why"] = d.Why
		if d.Pick != nil {
			dbg["decision_pick"] = *d.Pick
		}
	}
	resp.Debug = dbg
	return resp
}

func (s *assistantService) asksForCountry(message string) bool {
	return strings.Contains(strings.ToLower(message), "country")
}

func hasCountryBlocker(c calc.Calculation) bool {
	for _, b := range c.Blockers {
		if strings.EqualFold(b, "country") {
			return true
		}
	}
	return false
}

// titleWords capitalizes each word of a canonical lowercase country name.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
