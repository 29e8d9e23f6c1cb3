package dto

import "partner-incentives-be/pkg/calc"

// Turn response types. One of these goes back per message.
const (
	TurnTypeAnswer   = "answer"
	TurnTypeClarify  = "clarify"
	TurnTypeNotFound = "not_found"
	TurnTypeError    = "error"
)

type MessageRequest struct {
	SessionId string `json:"session_id,omitempty"`
	Text      string `json:"text" validate:"required,min=1"`
	Selection string `json:"selection,omitempty"` // optional quick-pick from prior options
}

// MessageResponse is the caller-facing turn contract. Fields are populated
// per Type: answer carries Text/Engagement/Confidence/Recommendations,
// clarify carries Message/Options, not_found carries Message, error carries
// Error/Detail. Calculation rides along when a payout form is in play.
type MessageResponse struct {
	Type      string `json:"type"`
	SessionId string `json:"session_id"`

	// answer
	Text            string   `json:"text,omitempty"`
	Engagement      string   `json:"engagement,omitempty"`
	Confidence      float64  `json:"confidence,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`

	// clarify / not_found
	Message string   `json:"message,omitempty"`
	Options []string `json:"options,omitempty"`

	// error
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`

	// payout form config, when a calculation is involved
	Calculation *calc.Calculation `json:"calculation,omitempty"`

	// populated only when the caller asks with ?debug=true
	Debug map[string]interface{} `json:"debug,omitempty"`
}
