package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prepworks/prepworks-backend/internal/config"
	"github.com/prepworks/prepworks-backend/internal/engine"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/prepworks/prepworks-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Session lifecycle errors.
var (
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAttemptInProgress = errors.New("another attempt is already in progress")
	ErrNotTheoryQuestion = errors.New("question does not take a written answer")
)

// SessionEvent is pushed to WebSocket subscribers on session-side changes
// the client did not initiate itself.
type SessionEvent struct {
	Type   string        `json:"type"`
	Result *model.Result `json:"result,omitempty"`
}

const (
	EventExpired   = "expired"
	EventSubmitted = "submitted"
)

// liveSession pairs a persisted attempt with its in-memory state machine.
// The engine is single-goroutine; mu serializes HTTP handlers, WebSocket
// actions and the timer expiry callback.
type liveSession struct {
	mu          sync.Mutex
	attempt     *model.Attempt
	session     *engine.Session
	subscribers map[chan SessionEvent]struct{}
}

func (ls *liveSession) notify(ev SessionEvent) {
	for ch := range ls.subscribers {
		select {
		case ch <- ev:
		default: // Slow subscriber, drop rather than block the engine.
		}
	}
}

// SessionService owns the registry of live attempts. It creates sessions,
// routes student actions into them under a per-session lock, and hands
// finished results off to the Redis persistence queues.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveSession

	rdb       *redis.Client
	attempts  *repository.AttemptRepository
	questions *QuestionService
	log       zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(rdb *redis.Client, attempts *repository.AttemptRepository, questions *QuestionService, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions:  make(map[uuid.UUID]*liveSession),
		rdb:       rdb,
		attempts:  attempts,
		questions: questions,
		log:       log.With().Str("component", "session_service").Logger(),
	}
}

// Start creates a persisted attempt and a live session for it. A student may
// hold only one in-progress attempt at a time.
func (s *SessionService) Start(ctx context.Context, studentID int, req model.StartAttemptRequest) (*model.Attempt, engine.Snapshot, error) {
	questions, err := s.questions.BuildExamSet(ctx, req)
	if err != nil {
		return nil, engine.Snapshot{}, err
	}

	attempt := &model.Attempt{
		ID:         uuid.New(),
		StudentID:  studentID,
		Subject:    req.Subject,
		ExamType:   model.ExamType(req.ExamType),
		Year:       req.Year,
		Difficulty: req.Difficulty,
		Status:     model.AttemptStatusInProgress,
	}

	return s.launch(ctx, attempt, questions, req.TimerDurationSeconds, false)
}

// StartDiagnostic creates a cross-subject placement attempt. Diagnostic
// sessions are untimed and produce a per-subject breakdown.
func (s *SessionService) StartDiagnostic(ctx context.Context, studentID int) (*model.Attempt, engine.Snapshot, error) {
	questions, err := s.questions.BuildDiagnosticSet(ctx)
	if err != nil {
		return nil, engine.Snapshot{}, err
	}

	attempt := &model.Attempt{
		ID:        uuid.New(),
		StudentID: studentID,
		Subject:   "All Subjects",
		ExamType:  model.ExamTypeDiagnostic,
		Status:    model.AttemptStatusInProgress,
	}

	return s.launch(ctx, attempt, questions, 0, true)
}

func (s *SessionService) launch(ctx context.Context, attempt *model.Attempt, questions []model.Question, timerSeconds int, breakdown bool) (*model.Attempt, engine.Snapshot, error) {
	activeKey := config.CacheKey.StudentActiveAttemptKey(attempt.StudentID)

	// One in-progress attempt per student, enforced across server restarts.
	ok, err := s.rdb.SetNX(ctx, activeKey, attempt.ID.String(), 24*time.Hour).Result()
	if err != nil {
		return nil, engine.Snapshot{}, fmt.Errorf("reserve attempt slot: %w", err)
	}
	if !ok {
		return nil, engine.Snapshot{}, ErrAttemptInProgress
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.rdb.Del(ctx, activeKey)
		return nil, engine.Snapshot{}, fmt.Errorf("create attempt: %w", err)
	}

	ls := &liveSession{
		attempt:     attempt,
		subscribers: make(map[chan SessionEvent]struct{}),
	}

	sink := &redisAnswerSink{
		rdb:       s.rdb,
		attemptID: attempt.ID.String(),
		studentID: attempt.StudentID,
	}

	ls.session = engine.NewSession(engine.SessionConfig{
		Questions:            questions,
		TimerDurationSeconds: timerSeconds,
		SubjectBreakdown:     breakdown,
		Sink:                 sink,
		OnComplete: func(res model.Result) {
			s.finishAttempt(ls, attempt, res)
		},
		OnExpire: func() {
			ls.mu.Lock()
			defer ls.mu.Unlock()
			ls.session.ForceSubmit()
			ls.notify(SessionEvent{Type: EventExpired})
		},
		Logger: s.log,
	})

	s.mu.Lock()
	s.sessions[attempt.ID] = ls
	s.mu.Unlock()

	ls.mu.Lock()
	ls.session.Start()
	snap := ls.session.Snapshot()
	ls.mu.Unlock()

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("student_id", attempt.StudentID).
		Str("exam_type", string(attempt.ExamType)).
		Int("questions", len(questions)).
		Int("timer_seconds", timerSeconds).
		Msg("Attempt started")

	return attempt, snap, nil
}

// get returns the live session after an ownership check.
func (s *SessionService) get(studentID int, attemptID uuid.UUID) (*liveSession, error) {
	s.mu.RLock()
	ls, ok := s.sessions[attemptID]
	s.mu.RUnlock()
	if !ok || ls.attempt.StudentID != studentID {
		return nil, ErrAttemptNotFound
	}
	return ls, nil
}

// Questions returns the student-facing question sequence of a live attempt.
func (s *SessionService) Questions(studentID int, attemptID uuid.UUID) ([]model.QuestionForStudent, error) {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	questions := ls.session.Questions()
	out := make([]model.QuestionForStudent, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ForStudent())
	}
	return out, nil
}

// State returns a snapshot for client recovery.
func (s *SessionService) State(studentID int, attemptID uuid.UUID) (engine.Snapshot, error) {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return engine.Snapshot{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.session.Snapshot(), nil
}

// Answer records an MCQ response by letter or option index.
func (s *SessionService) Answer(studentID int, attemptID uuid.UUID, req model.AnswerRequest) error {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if req.Letter != "" {
		return ls.session.SelectAnswer(req.QuestionID, req.Letter, req.Confidence)
	}
	if req.OptionIndex != nil {
		return ls.session.SelectAnswerIndex(req.QuestionID, *req.OptionIndex, req.Confidence)
	}
	return engine.ErrUnknownQuestion
}

// TheoryAnswer records an uploaded answer-sheet reference for a theory
// question. The value is the served image path, not the image itself.
func (s *SessionService) TheoryAnswer(studentID int, attemptID uuid.UUID, questionID int, imagePath string) error {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	for _, q := range ls.session.Questions() {
		if q.ID != questionID {
			continue
		}
		if q.Variant != model.VariantTheory {
			return ErrNotTheoryQuestion
		}
		return ls.session.SelectAnswer(questionID, imagePath, "")
	}
	return engine.ErrUnknownQuestion
}

// Navigate moves the attempt cursor.
func (s *SessionService) Navigate(studentID int, attemptID uuid.UUID, index int) (engine.Snapshot, error) {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return engine.Snapshot{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.session.Navigate(index)
	return ls.session.Snapshot(), nil
}

// RequestSubmit opens the confirmation gate.
func (s *SessionService) RequestSubmit(studentID int, attemptID uuid.UUID) error {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.session.RequestSubmit()
	return nil
}

// CancelSubmit closes the confirmation gate.
func (s *SessionService) CancelSubmit(studentID int, attemptID uuid.UUID) error {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.session.CancelSubmit()
	return nil
}

// Submit grades the attempt. Safe to call repeatedly; later calls return the
// same result.
func (s *SessionService) Submit(studentID int, attemptID uuid.UUID) (model.Result, error) {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return model.Result{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.session.Submit(), nil
}

// ReviewItem is one question in review mode: full question, the correct
// letter, and what the student answered.
type ReviewItem struct {
	Question      model.QuestionForStudent `json:"question"`
	CorrectLetter string                   `json:"correct_letter,omitempty"`
	YourAnswer    string                   `json:"your_answer,omitempty"`
	Confidence    string                   `json:"confidence,omitempty"`
	Correct       *bool                    `json:"correct,omitempty"`
}

// Review transitions to the review view and returns the annotated questions.
// Only available after submission.
func (s *SessionService) Review(studentID int, attemptID uuid.UUID) ([]ReviewItem, error) {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := ls.session.ProceedToReview(); err != nil {
		return nil, err
	}

	items := make([]ReviewItem, 0, len(ls.session.Questions()))
	for _, q := range ls.session.Questions() {
		item := ReviewItem{
			Question:      q.ForStudent(),
			CorrectLetter: q.CorrectLetter,
		}
		if a, ok := ls.session.Ledger().Get(q.ID); ok {
			item.YourAnswer = a.Value
			item.Confidence = a.Confidence
			if q.Scorable {
				correct := engine.IsCorrect(q, a)
				item.Correct = &correct
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Leave tears the live session down and releases the student's attempt slot.
// An unsubmitted attempt is marked abandoned.
func (s *SessionService) Leave(ctx context.Context, studentID int, attemptID uuid.UUID) error {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	submitted := ls.session.Submitted()
	ls.session.Teardown()
	ls.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, attemptID)
	s.mu.Unlock()

	s.rdb.Del(ctx, config.CacheKey.StudentActiveAttemptKey(studentID))

	if !submitted {
		if err := s.attempts.MarkAbandoned(ctx, attemptID); err != nil {
			return fmt.Errorf("mark abandoned: %w", err)
		}
	}

	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Bool("submitted", submitted).
		Msg("Attempt left")
	return nil
}

// History lists a student's past attempts, newest first.
func (s *SessionService) History(ctx context.Context, studentID, page, perPage int) ([]model.Attempt, int64, error) {
	return s.attempts.ListByStudent(ctx, studentID, page, perPage)
}

// GetAttempt loads a persisted attempt with an ownership check.
func (s *SessionService) GetAttempt(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.StudentID != studentID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

// LiveQuestion returns one normalized question from a live attempt,
// including grading fields. Used by the assistant explainer, which reveals
// the correct answer, so it is gated on submission like review.
func (s *SessionService) LiveQuestion(studentID int, attemptID uuid.UUID, questionID int) (model.Question, error) {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return model.Question{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.session.Submitted() {
		return model.Question{}, engine.ErrNotSubmitted
	}

	for _, q := range ls.session.Questions() {
		if q.ID == questionID {
			return q, nil
		}
	}
	return model.Question{}, engine.ErrUnknownQuestion
}

// Subscribe registers a listener for session-side events. The returned
// cancel func must be called when the listener goes away.
func (s *SessionService) Subscribe(studentID int, attemptID uuid.UUID) (<-chan SessionEvent, func(), error) {
	ls, err := s.get(studentID, attemptID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan SessionEvent, 4)

	ls.mu.Lock()
	ls.subscribers[ch] = struct{}{}
	ls.mu.Unlock()

	cancel := func() {
		ls.mu.Lock()
		delete(ls.subscribers, ch)
		ls.mu.Unlock()
	}
	return ch, cancel, nil
}

// Shutdown tears down every live session. Unsubmitted attempts stay
// IN_PROGRESS in the database; their answers survive in the autosave queue.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ls := range s.sessions {
		ls.mu.Lock()
		ls.session.Teardown()
		ls.mu.Unlock()
		delete(s.sessions, id)
	}
}

// finishAttempt hands a graded result to the persistence queue and fans the
// submitted event out to subscribers. OnComplete fires with the per-session
// lock held, so the Redis enqueue runs on its own goroutine; a slow Redis
// must not stall the student's submit call or the stream dispatch loop.
func (s *SessionService) finishAttempt(ls *liveSession, attempt *model.Attempt, res model.Result) {
	go s.persistResult(attempt, res)
	ls.notify(SessionEvent{Type: EventSubmitted, Result: &res})
}

// resultPayload is what the result worker consumes from persist_results_queue.
type resultPayload struct {
	AttemptID string       `json:"attempt_id"`
	StudentID int          `json:"student_id"`
	Result    model.Result `json:"result"`
}

// persistResult queues the final result for the batch writer. Falls back to
// a direct UPDATE if Redis is unavailable.
func (s *SessionService) persistResult(attempt *model.Attempt, res model.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, _ := json.Marshal(resultPayload{
		AttemptID: attempt.ID.String(),
		StudentID: attempt.StudentID,
		Result:    res,
	})

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).
			Str("attempt_id", attempt.ID.String()).
			Msg("Result enqueue failed, writing directly")
		if err := s.attempts.Complete(ctx, attempt.ID, res); err != nil {
			s.log.Error().Err(err).
				Str("attempt_id", attempt.ID.String()).
				Msg("Direct result write failed")
		}
	}

	s.rdb.Del(ctx, config.CacheKey.StudentActiveAttemptKey(attempt.StudentID))
}

// answerPayload is what the answer worker consumes from persist_answers_queue.
type answerPayload struct {
	AttemptID  string `json:"attempt_id"`
	StudentID  int    `json:"student_id"`
	QuestionID int    `json:"question_id"`
	Value      string `json:"value"`
	Confidence string `json:"confidence,omitempty"`
}

// redisAnswerSink forwards ledger writes to Redis: a hash for fast state
// recovery plus a queue the persistence worker drains. The ledger already
// calls Save on its own goroutine, so blocking here is harmless.
type redisAnswerSink struct {
	rdb       *redis.Client
	attemptID string
	studentID int
}

func (k *redisAnswerSink) Save(a engine.Answer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := json.Marshal(answerPayload{
		AttemptID:  k.attemptID,
		StudentID:  k.studentID,
		QuestionID: a.QuestionID,
		Value:      a.Value,
		Confidence: a.Confidence,
	})
	if err != nil {
		return err
	}

	pipe := k.rdb.Pipeline()
	pipe.HSet(ctx, config.CacheKey.AttemptAnswersKey(k.attemptID), fmt.Sprintf("%d", a.QuestionID), raw)
	pipe.Expire(ctx, config.CacheKey.AttemptAnswersKey(k.attemptID), 24*time.Hour)
	pipe.RPush(ctx, config.WorkerKey.PersistAnswersQueue, raw)
	_, err = pipe.Exec(ctx)
	return err
}
