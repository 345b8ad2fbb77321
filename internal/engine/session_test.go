package engine

import (
	"reflect"
	"testing"

	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/rs/zerolog"
)

func newTestSession(t *testing.T, cfg SessionConfig) *Session {
	t.Helper()
	if cfg.Questions == nil {
		cfg.Questions = []model.Question{
			mcq(1, "Mathematics", "B"),
			mcq(2, "Mathematics", "C"),
			mcq(3, "Mathematics", "A"),
		}
	}
	cfg.Logger = zerolog.Nop()
	s := NewSession(cfg)
	s.Start()
	return s
}

func TestSessionNavigateValidRange(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	for _, idx := range []int{0, 1, 2, 1} {
		s.Navigate(idx)
		if s.CurrentIndex() != idx {
			t.Errorf("navigate(%d): currentIndex = %d", idx, s.CurrentIndex())
		}
	}
}

func TestSessionNavigateOutOfRangeIgnored(t *testing.T) {
	s := newTestSession(t, SessionConfig{})
	s.Navigate(2)

	for _, idx := range []int{-1, 3, 100, -50} {
		s.Navigate(idx)
		if s.CurrentIndex() != 2 {
			t.Errorf("navigate(%d) changed currentIndex to %d, want unchanged 2", idx, s.CurrentIndex())
		}
	}
}

func TestSessionSubmitIdempotent(t *testing.T) {
	completions := 0
	s := newTestSession(t, SessionConfig{
		OnComplete: func(model.Result) { completions++ },
	})

	if err := s.SelectAnswer(1, "B", ""); err != nil {
		t.Fatalf("select answer: %v", err)
	}

	first := s.Submit()
	second := s.Submit()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second submit produced a different result:\nfirst  %+v\nsecond %+v", first, second)
	}
	if !s.Submitted() {
		t.Error("session not marked submitted")
	}
	if completions != 1 {
		t.Errorf("onComplete fired %d times, want 1", completions)
	}
}

func TestSessionLedgerImmutableAfterSubmit(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	if err := s.SelectAnswer(1, "B", ""); err != nil {
		t.Fatalf("select answer: %v", err)
	}
	s.Submit()

	if err := s.SelectAnswer(1, "D", ""); err != ErrAlreadySubmitted {
		t.Errorf("post-submit select returned %v, want ErrAlreadySubmitted", err)
	}

	a, _ := s.Ledger().Get(1)
	if a.Value != "B" {
		t.Errorf("ledger value = %q, want pre-submit value B", a.Value)
	}
}

func TestSessionConfirmationGate(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	s.RequestSubmit()
	if s.Submitted() {
		t.Fatal("requestSubmit must not submit")
	}
	if !s.Snapshot().ConfirmingSubmit {
		t.Error("confirmation flag not set")
	}

	s.CancelSubmit()
	if s.Snapshot().ConfirmingSubmit {
		t.Error("confirmation flag not cleared")
	}

	s.Submit()
	if s.Snapshot().ConfirmingSubmit {
		t.Error("confirmation flag must clear on submit")
	}
}

func TestSessionViewTransitions(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	if s.ViewState() != ViewExam {
		t.Fatalf("initial view = %s, want EXAM", s.ViewState())
	}

	if err := s.ProceedToReview(); err != ErrNotSubmitted {
		t.Errorf("review before submit returned %v, want ErrNotSubmitted", err)
	}

	s.Submit()
	if s.ViewState() != ViewResults {
		t.Errorf("post-submit view = %s, want RESULTS", s.ViewState())
	}

	if err := s.ProceedToReview(); err != nil {
		t.Fatalf("proceed to review: %v", err)
	}
	if s.ViewState() != ViewReview {
		t.Errorf("view = %s, want REVIEW", s.ViewState())
	}
}

func TestSessionTimerExpiryAutoSubmits(t *testing.T) {
	var completed []model.Result
	s := newTestSession(t, SessionConfig{
		TimerDurationSeconds: 2,
		OnComplete:           func(r model.Result) { completed = append(completed, r) },
	})

	if err := s.SelectAnswer(1, "B", ""); err != nil {
		t.Fatalf("select answer: %v", err)
	}

	s.Timer().Tick()
	if s.Submitted() {
		t.Fatal("submitted after one tick of two")
	}

	s.Timer().Tick()
	if !s.Submitted() {
		t.Fatal("timer expiry did not force submission")
	}
	if len(completed) != 1 {
		t.Fatalf("onComplete fired %d times, want exactly 1", len(completed))
	}
	if completed[0].CorrectCount != 1 {
		t.Errorf("forced submit correct = %d, want 1", completed[0].CorrectCount)
	}
	if completed[0].TimeUsedSeconds != 2 {
		t.Errorf("time used = %d, want full 2s duration", completed[0].TimeUsedSeconds)
	}
}

func TestSessionManualSubmitRacingTimer(t *testing.T) {
	completions := 0
	s := newTestSession(t, SessionConfig{
		TimerDurationSeconds: 1,
		OnComplete:           func(model.Result) { completions++ },
	})

	// Manual submit lands first; the expiring tick must then be a no-op.
	s.Submit()
	s.Timer().Tick()

	if completions != 1 {
		t.Errorf("onComplete fired %d times, want 1 (no double submit)", completions)
	}
}

func TestSessionSelectAnswerByIndex(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	if err := s.SelectAnswerIndex(1, 1, "unsure"); err != nil {
		t.Fatalf("select by index: %v", err)
	}
	a, _ := s.Ledger().Get(1)
	if a.Value != "B" || a.Confidence != "unsure" {
		t.Errorf("got %+v, want letter B with confidence", a)
	}

	if err := s.SelectAnswerIndex(1, 9, ""); err != ErrUnknownQuestion {
		t.Errorf("out-of-range index returned %v, want ErrUnknownQuestion", err)
	}
}

func TestSessionUnknownQuestionRejected(t *testing.T) {
	s := newTestSession(t, SessionConfig{})
	if err := s.SelectAnswer(99, "A", ""); err != ErrUnknownQuestion {
		t.Errorf("got %v, want ErrUnknownQuestion", err)
	}
}

func TestSessionSnapshot(t *testing.T) {
	s := newTestSession(t, SessionConfig{TimerDurationSeconds: 60})
	s.Navigate(1)
	if err := s.SelectAnswer(2, "C", ""); err != nil {
		t.Fatalf("select answer: %v", err)
	}

	snap := s.Snapshot()
	if snap.CurrentIndex != 1 || snap.TotalQuestions != 3 {
		t.Errorf("snapshot cursor/total = %d/%d, want 1/3", snap.CurrentIndex, snap.TotalQuestions)
	}
	if snap.View != ViewExam || snap.Submitted {
		t.Errorf("snapshot view = %s submitted=%v, want EXAM/false", snap.View, snap.Submitted)
	}
	if snap.Answers[2].Value != "C" {
		t.Errorf("snapshot answers = %+v, want question 2 answered C", snap.Answers)
	}
}

func TestSessionTeardownStopsTimer(t *testing.T) {
	s := newTestSession(t, SessionConfig{TimerDurationSeconds: 30})

	s.Teardown()
	if s.Timer().State() != TimerIdle {
		t.Errorf("timer state = %s after teardown, want IDLE", s.Timer().State())
	}
	if s.Timer().Tick() {
		t.Error("tick after teardown must be inert")
	}
}
