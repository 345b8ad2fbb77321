package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prepworks/prepworks-backend/internal/engine"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func liveMCQ(id int, subject, correct string) model.Question {
	return model.Question{
		ID:      id,
		Subject: subject,
		Variant: model.VariantPlainMCQ,
		Options: []model.Option{
			{Letter: "A", Text: "a", IsCorrect: correct == "A"},
			{Letter: "B", Text: "b", IsCorrect: correct == "B"},
			{Letter: "C", Text: "c", IsCorrect: correct == "C"},
			{Letter: "D", Text: "d", IsCorrect: correct == "D"},
		},
		CorrectLetter: correct,
		Scorable:      true,
	}
}

// newLiveRegistry builds a registry holding one untimed live session for
// student 7, bypassing the launch path so no Redis or Postgres is needed.
func newLiveRegistry(rdb *redis.Client, examType model.ExamType, questions []model.Question) (*SessionService, *liveSession) {
	attempt := &model.Attempt{
		ID:        uuid.New(),
		StudentID: 7,
		Subject:   "Mathematics",
		ExamType:  examType,
		Status:    model.AttemptStatusInProgress,
	}
	ls := &liveSession{
		attempt:     attempt,
		subscribers: make(map[chan SessionEvent]struct{}),
	}
	ls.session = engine.NewSession(engine.SessionConfig{
		Questions:        questions,
		SubjectBreakdown: examType == model.ExamTypeDiagnostic,
		Logger:           zerolog.Nop(),
	})

	svc := &SessionService{
		sessions: map[uuid.UUID]*liveSession{attempt.ID: ls},
		rdb:      rdb,
		log:      zerolog.Nop(),
	}
	return svc, ls
}

func TestLiveQuestionGatedOnSubmission(t *testing.T) {
	svc, ls := newLiveRegistry(nil, model.ExamTypeJAMB, []model.Question{liveMCQ(1, "Mathematics", "B")})
	id := ls.attempt.ID

	// Grading fields stay hidden while the attempt is in progress.
	if _, err := svc.LiveQuestion(7, id, 1); !errors.Is(err, engine.ErrNotSubmitted) {
		t.Fatalf("pre-submit LiveQuestion err = %v, want ErrNotSubmitted", err)
	}

	if _, err := svc.Submit(7, id); err != nil {
		t.Fatalf("submit: %v", err)
	}

	q, err := svc.LiveQuestion(7, id, 1)
	if err != nil {
		t.Fatalf("post-submit LiveQuestion: %v", err)
	}
	if q.CorrectLetter != "B" {
		t.Errorf("correct letter = %q, want B", q.CorrectLetter)
	}
}

// stallHook intercepts every Redis command, sleeps, then reports success
// without touching the network. Command names land on cmds in order.
type stallHook struct {
	delay time.Duration
	cmds  chan string
}

func (h *stallHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *stallHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		time.Sleep(h.delay)
		h.cmds <- cmd.Name()
		return nil
	}
}

func (h *stallHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestFinishAttemptDoesNotBlockOnSlowQueue(t *testing.T) {
	hook := &stallHook{delay: 500 * time.Millisecond, cmds: make(chan string, 4)}
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()
	rdb.AddHook(hook)

	svc, ls := newLiveRegistry(rdb, model.ExamTypeJAMB, []model.Question{liveMCQ(1, "Mathematics", "B")})

	events := make(chan SessionEvent, 1)
	ls.subscribers[events] = struct{}{}

	res := ls.session.Submit()

	start := time.Now()
	svc.finishAttempt(ls, ls.attempt, res)
	if elapsed := time.Since(start); elapsed >= hook.delay {
		t.Fatalf("finishAttempt blocked %v on the enqueue", elapsed)
	}

	select {
	case ev := <-events:
		if ev.Type != EventSubmitted {
			t.Errorf("event type = %q, want %q", ev.Type, EventSubmitted)
		}
	default:
		t.Error("submitted event was not fanned out")
	}

	select {
	case name := <-hook.cmds:
		if name != "rpush" {
			t.Errorf("first queued command = %q, want rpush", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("result was never enqueued")
	}
}
