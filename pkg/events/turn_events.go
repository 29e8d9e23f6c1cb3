package events

import "time"

const TypeTurnCompleted = "TURN_COMPLETED"

// NewTurnCompleted records one finished assistant turn for downstream
// analytics consumers.
func NewTurnCompleted(sessionId, turnType, engagement string, confidence float64) Event {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"turn_type":  turnType,
			"engagement": engagement,
			"confidence": confidence,
		},
		OccurredAt: time.Now(),
	}
}
