package engine

import (
	"github.com/rs/zerolog"
)

// Answer is one recorded response: an option letter for MCQ questions or an
// opaque answer-image reference for theory questions.
type Answer struct {
	QuestionID int    `json:"question_id"`
	Value      string `json:"value"`
	Confidence string `json:"confidence,omitempty"`
}

// AnswerSink receives best-effort copies of recorded answers, e.g. for
// remote autosave. The ledger invokes it on a separate goroutine so a slow
// or failing sink can never block or fail the local record operation; sink
// errors are logged and dropped.
type AnswerSink interface {
	Save(Answer) error
}

// Ledger maps question ids to the student's current response. Re-answering
// overwrites: last write wins, no history is retained.
type Ledger struct {
	answers map[int]Answer
	sink    AnswerSink
	log     zerolog.Logger
}

// NewLedger creates an empty ledger. sink may be nil.
func NewLedger(sink AnswerSink, log zerolog.Logger) *Ledger {
	return &Ledger{
		answers: make(map[int]Answer),
		sink:    sink,
		log:     log.With().Str("component", "answer_ledger").Logger(),
	}
}

// Record stores the response locally and forwards a copy to the sink.
func (l *Ledger) Record(a Answer) {
	l.answers[a.QuestionID] = a

	if l.sink == nil {
		return
	}
	go func(a Answer) {
		if err := l.sink.Save(a); err != nil {
			l.log.Warn().Err(err).
				Int("question_id", a.QuestionID).
				Msg("Answer autosave failed, dropping")
		}
	}(a)
}

// Get returns the current response for a question, if any.
func (l *Ledger) Get(questionID int) (Answer, bool) {
	a, ok := l.answers[questionID]
	return a, ok
}

// IsComplete reports whether every given question id has a recorded response.
func (l *Ledger) IsComplete(questionIDs []int) bool {
	for _, id := range questionIDs {
		if _, ok := l.answers[id]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of answered questions.
func (l *Ledger) Len() int {
	return len(l.answers)
}

// All returns a copy of the recorded answers keyed by question id.
func (l *Ledger) All() map[int]Answer {
	out := make(map[int]Answer, len(l.answers))
	for id, a := range l.answers {
		out[id] = a
	}
	return out
}
