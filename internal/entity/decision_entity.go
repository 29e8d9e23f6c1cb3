package entity

const (
	DecisionModeAnswer        = "answer"
	DecisionModeClarify       = "clarify"
	DecisionModeNotUnderstood = "not_understood"
)

// Followup is the question the assistant asks back when it cannot answer.
type Followup struct {
	Message string   `json:"message"`
	Options []string `json:"options"`
}

// Decision is the sanitized output of the decision call. Instances are only
// built by the decision engine after validating the raw model payload; an
// invalid payload degrades to a default clarify decision instead of a
// partially populated struct.
type Decision struct {
	Mode            string
	Why             string // diagnostic only, <= 200 chars
	Pick            *int   // 1-based index into the shown hit list, answer mode only
	Confidence      float64
	Followup        *Followup // present iff mode is clarify or not_understood
	Recommendations []string  // deduplicated, <= 5
}
