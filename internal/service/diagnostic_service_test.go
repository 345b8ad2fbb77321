package service

import (
	"errors"
	"testing"

	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/rs/zerolog"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		score int
		want  RewardTier
	}{
		{0, TierBronze},
		{49, TierBronze},
		{50, TierSilver},
		{69, TierSilver},
		{70, TierGold},
		{89, TierGold},
		{90, TierPlatinum},
		{100, TierPlatinum},
	}

	for _, tc := range cases {
		if got := TierFor(tc.score); got != tc.want {
			t.Errorf("TierFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestDiagnosticSubmitRejectsExamAttempts(t *testing.T) {
	svc, ls := newLiveRegistry(nil, model.ExamTypeJAMB, []model.Question{liveMCQ(1, "Mathematics", "B")})
	diag := NewDiagnosticService(svc, zerolog.Nop())

	if _, err := diag.Submit(7, ls.attempt.ID); !errors.Is(err, ErrNotDiagnosticAttempt) {
		t.Fatalf("err = %v, want ErrNotDiagnosticAttempt", err)
	}
	if ls.session.Submitted() {
		t.Error("rejected submit must not grade the attempt")
	}
}

func TestDiagnosticSubmitTierAndWeakestSubject(t *testing.T) {
	questions := []model.Question{
		liveMCQ(1, "Mathematics", "B"),
		liveMCQ(2, "English", "C"),
	}
	svc, ls := newLiveRegistry(nil, model.ExamTypeDiagnostic, questions)
	diag := NewDiagnosticService(svc, zerolog.Nop())

	if err := svc.Answer(7, ls.attempt.ID, model.AnswerRequest{QuestionID: 1, Letter: "B"}); err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if err := svc.Answer(7, ls.attempt.ID, model.AnswerRequest{QuestionID: 2, Letter: "A"}); err != nil {
		t.Fatalf("answer 2: %v", err)
	}

	out, err := diag.Submit(7, ls.attempt.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Score != 50 {
		t.Errorf("score = %d, want 50", out.Score)
	}
	if out.Tier != TierSilver {
		t.Errorf("tier = %s, want %s", out.Tier, TierSilver)
	}
	if out.WeakestSubject != "English" {
		t.Errorf("weakest subject = %q, want English", out.WeakestSubject)
	}
}
