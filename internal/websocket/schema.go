package websocket

import (
	"github.com/prepworks/prepworks-backend/internal/engine"
	"github.com/prepworks/prepworks-backend/internal/model"
)

// Actions (client to server).

type Action string

const (
	ActionAnswer        Action = "answer"
	ActionNavigate      Action = "navigate"
	ActionRequestSubmit Action = "request_submit"
	ActionCancelSubmit  Action = "cancel_submit"
	ActionSubmit        Action = "submit"
	ActionState         Action = "state"
	ActionPing          Action = "ping"
)

// RequestPayload carries every client action; unused fields stay zero.
type RequestPayload struct {
	Action      Action `json:"action"`
	QuestionID  int    `json:"question_id,omitempty"`
	Letter      string `json:"letter,omitempty"`
	OptionIndex *int   `json:"option_index,omitempty"`
	Confidence  string `json:"confidence,omitempty"`
	Index       int    `json:"index,omitempty"`
}

// Events (server to client).

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventState     Event = "state"
	EventSubmitted Event = "submitted"
	EventExpired   Event = "expired"
	EventTimeSync  Event = "time_sync"
	EventPong      Event = "pong"
)

type SavedResponse struct {
	Event      Event `json:"event"`
	QuestionID int   `json:"question_id"`
}

type StateResponse struct {
	Event    Event           `json:"event"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

type SubmittedResponse struct {
	Event  Event        `json:"event"`
	Result model.Result `json:"result"`
}

// ExpiredResponse tells the client the countdown hit zero and the attempt
// was auto-submitted.
type ExpiredResponse struct {
	Event Event `json:"event"`
}

type TimeSyncResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
