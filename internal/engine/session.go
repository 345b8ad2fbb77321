package engine

import (
	"errors"
	"time"

	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/rs/zerolog"
)

// View is the single enum-valued view state of a session. Exactly one view
// is active at any time; there are no orthogonal visibility flags.
type View string

const (
	ViewExam    View = "EXAM"
	ViewResults View = "RESULTS"
	ViewReview  View = "REVIEW"
)

// Domain errors surfaced to callers. None of them corrupt session state.
var (
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrNotSubmitted     = errors.New("session not submitted yet")
	ErrUnknownQuestion  = errors.New("unknown question id")
)

// SessionConfig assembles everything a session needs at creation time.
type SessionConfig struct {
	Questions []model.Question
	// TimerDurationSeconds of 0 selects "No Timer" mode.
	TimerDurationSeconds int
	// SubjectBreakdown enables per-subject grouping in the result
	// (diagnostic variant).
	SubjectBreakdown bool
	// Sink receives best-effort answer copies; may be nil.
	Sink AnswerSink
	// OnComplete fires exactly once, with the final result. May be nil.
	OnComplete func(model.Result)
	// OnExpire replaces the timer's default expiry action. The caller uses
	// this to serialize the forced submission with its own locking; the
	// hook must eventually call ForceSubmit. Nil wires ForceSubmit directly.
	OnExpire func()

	Logger zerolog.Logger
}

// Session is the state machine governing one exam or quiz attempt: question
// navigation, answer capture, timed submission and the Exam → Results →
// Review transitions. It is single-goroutine by design; callers that drive
// it from multiple goroutines (HTTP handlers plus the timer) must serialize
// access externally.
type Session struct {
	questions []model.Question
	ledger    *Ledger
	timer     *TimerController

	current    int
	view       View
	submitted  bool
	confirming bool
	result     *model.Result

	startedAt  time.Time
	breakdown  bool
	onComplete func(model.Result)
	log        zerolog.Logger
}

// NewSession builds a session in the Exam view with the cursor on the first
// question. The timer stays Idle until Start is called.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		questions:  cfg.Questions,
		ledger:     NewLedger(cfg.Sink, cfg.Logger),
		view:       ViewExam,
		breakdown:  cfg.SubjectBreakdown,
		onComplete: cfg.OnComplete,
		log:        cfg.Logger.With().Str("component", "exam_session").Logger(),
	}

	expire := cfg.OnExpire
	if expire == nil {
		expire = func() { s.ForceSubmit() }
	}
	s.timer = NewTimerController(cfg.TimerDurationSeconds, expire)

	return s
}

// Start begins the attempt clock and the countdown (if one is configured).
func (s *Session) Start() {
	s.startedAt = time.Now()
	s.timer.Start()
}

// Questions returns the normalized question sequence.
func (s *Session) Questions() []model.Question {
	return s.questions
}

// Ledger exposes the answer ledger for read access.
func (s *Session) Ledger() *Ledger {
	return s.ledger
}

// Timer exposes the countdown controller.
func (s *Session) Timer() *TimerController {
	return s.timer
}

// SelectAnswer records an option letter (or theory image reference) for a
// question. Rejected without side effects once the session is submitted:
// the ledger is immutable after submission.
func (s *Session) SelectAnswer(questionID int, value, confidence string) error {
	if s.submitted {
		return ErrAlreadySubmitted
	}
	if _, ok := s.question(questionID); !ok {
		return ErrUnknownQuestion
	}
	s.ledger.Record(Answer{QuestionID: questionID, Value: value, Confidence: confidence})
	return nil
}

// SelectAnswerIndex records an answer by option index instead of letter.
// An out-of-range index is rejected.
func (s *Session) SelectAnswerIndex(questionID, optionIndex int, confidence string) error {
	q, ok := s.question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return ErrUnknownQuestion
	}
	return s.SelectAnswer(questionID, q.Options[optionIndex].Letter, confidence)
}

// Navigate moves the cursor. Out-of-range indices are ignored — a no-op, not
// an error, so UI double-taps cannot fault the session.
func (s *Session) Navigate(index int) {
	if index < 0 || index >= len(s.questions) {
		return
	}
	s.current = index
}

// CurrentIndex returns the cursor position.
func (s *Session) CurrentIndex() int {
	return s.current
}

// RequestSubmit opens the confirmation gate. The actual submission waits for
// Submit; only timer expiry bypasses the gate.
func (s *Session) RequestSubmit() {
	if s.submitted {
		return
	}
	s.confirming = true
}

// CancelSubmit closes the confirmation gate.
func (s *Session) CancelSubmit() {
	s.confirming = false
}

// Submit grades the attempt and transitions to the Results view. Idempotent:
// a second call returns the already-computed result unchanged. This guard is
// the sole safeguard against a manual submit racing the timer at zero.
func (s *Session) Submit() model.Result {
	if s.submitted {
		return *s.result
	}

	s.timer.Stop()

	res := Score(s.questions, s.ledger.All(), s.timeUsed(), s.breakdown)
	s.result = &res
	s.submitted = true
	s.confirming = false
	s.view = ViewResults

	s.log.Info().
		Int("score", res.Score).
		Int("correct", res.CorrectCount).
		Int("scorable", res.ScorableCount).
		Msg("Session submitted")

	if s.onComplete != nil {
		s.onComplete(res)
	}
	return res
}

// ForceSubmit is the timer-expiry path: it skips the confirmation gate and
// submits immediately. Shares Submit's idempotency guard.
func (s *Session) ForceSubmit() model.Result {
	s.confirming = false
	return s.Submit()
}

// ProceedToReview transitions Results → Review. Review is terminal; leaving
// the session entirely belongs to the caller.
func (s *Session) ProceedToReview() error {
	if !s.submitted {
		return ErrNotSubmitted
	}
	s.view = ViewReview
	return nil
}

// Submitted reports whether the attempt has been graded.
func (s *Session) Submitted() bool {
	return s.submitted
}

// ViewState returns the active view.
func (s *Session) ViewState() View {
	return s.view
}

// Result returns the final result once computed.
func (s *Session) Result() (model.Result, bool) {
	if s.result == nil {
		return model.Result{}, false
	}
	return *s.result, true
}

// Snapshot is a point-in-time view of the session, used for client state
// recovery after a reload or reconnect.
type Snapshot struct {
	CurrentIndex     int            `json:"current_index"`
	View             View           `json:"view"`
	Submitted        bool           `json:"submitted"`
	ConfirmingSubmit bool           `json:"confirming_submit"`
	TimerState       TimerState     `json:"timer_state"`
	RemainingSeconds int            `json:"remaining_seconds"`
	TotalQuestions   int            `json:"total_questions"`
	Answers          map[int]Answer `json:"answers"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		CurrentIndex:     s.current,
		View:             s.view,
		Submitted:        s.submitted,
		ConfirmingSubmit: s.confirming,
		TimerState:       s.timer.State(),
		RemainingSeconds: s.timer.Remaining(),
		TotalQuestions:   len(s.questions),
		Answers:          s.ledger.All(),
	}
}

// Teardown cancels the pending timer tick. Safe to call at any point; no
// orphaned tick can fire against a torn-down session.
func (s *Session) Teardown() {
	s.timer.Stop()
}

func (s *Session) question(id int) (model.Question, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// timeUsed derives elapsed seconds from the countdown when one is
// configured, falling back to wall time for "No Timer" sessions.
func (s *Session) timeUsed() int {
	if s.timer.Timed() {
		return s.timer.Elapsed()
	}
	if s.startedAt.IsZero() {
		return 0
	}
	return int(time.Since(s.startedAt).Seconds())
}
