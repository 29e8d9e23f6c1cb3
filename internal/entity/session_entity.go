package entity

import "time"

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

// MaxSessionMessages caps the retained conversation tail.
const MaxSessionMessages = 6

// Message is one conversation turn stored in the session.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"ts"`
}

// Session is the TTL-bound conversation state for one caller.
//
// CurrentTopic carries the subject inferred from the previous retrieval so
// follow-up turns can resolve pronouns. PendingCalculation names an engagement
// whose payout form is blocked on a country answer.
type Session struct {
	Id                 string    `json:"id"`
	Messages           []Message `json:"messages"`
	CurrentTopic       string    `json:"current_topic,omitempty"`
	PendingCalculation string    `json:"pending_calculation,omitempty"`
}

// AppendMessage appends a message and trims the history to the most recent
// MaxSessionMessages entries.
func (s *Session) AppendMessage(role, text string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Text: text, Timestamp: at})
	if len(s.Messages) > MaxSessionMessages {
		s.Messages = s.Messages[len(s.Messages)-MaxSessionMessages:]
	}
}

// Tail returns the last n messages, oldest first.
func (s *Session) Tail(n int) []Message {
	if n <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if n > len(s.Messages) {
		n = len(s.Messages)
	}
	out := make([]Message, n)
	copy(out, s.Messages[len(s.Messages)-n:])
	return out
}
