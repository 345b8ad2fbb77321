package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/prepworks/prepworks-backend/internal/engine"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/rs/zerolog"
)

// ErrNotDiagnosticAttempt rejects regular exam attempts on the placement
// submit path; they carry no per-subject breakdown to derive a tier from.
var ErrNotDiagnosticAttempt = errors.New("attempt is not a diagnostic quiz")

// RewardTier maps a diagnostic score to the badge shown on the result screen.
type RewardTier string

const (
	TierBronze   RewardTier = "BRONZE"
	TierSilver   RewardTier = "SILVER"
	TierGold     RewardTier = "GOLD"
	TierPlatinum RewardTier = "PLATINUM"
)

// TierFor maps a percentage score to its reward tier.
func TierFor(score int) RewardTier {
	switch {
	case score >= 90:
		return TierPlatinum
	case score >= 70:
		return TierGold
	case score >= 50:
		return TierSilver
	default:
		return TierBronze
	}
}

// DiagnosticResult decorates a plain result with placement extras.
type DiagnosticResult struct {
	model.Result
	Tier RewardTier `json:"tier"`
	// WeakestSubject guides the "start here" recommendation; empty when no
	// subject was scorable.
	WeakestSubject string `json:"weakest_subject,omitempty"`
}

// DiagnosticService runs the cross-subject placement quiz on top of the
// session registry. The quiz is untimed and scored with a per-subject
// breakdown.
type DiagnosticService struct {
	sessions *SessionService
	log      zerolog.Logger
}

// NewDiagnosticService creates a new DiagnosticService.
func NewDiagnosticService(sessions *SessionService, log zerolog.Logger) *DiagnosticService {
	return &DiagnosticService{
		sessions: sessions,
		log:      log.With().Str("component", "diagnostic_service").Logger(),
	}
}

// Start launches a placement attempt for the student.
func (s *DiagnosticService) Start(ctx context.Context, studentID int) (*model.Attempt, engine.Snapshot, error) {
	return s.sessions.StartDiagnostic(ctx, studentID)
}

// Submit grades the placement attempt and derives the reward tier and the
// weakest subject from the per-subject breakdown.
func (s *DiagnosticService) Submit(studentID int, attemptID uuid.UUID) (DiagnosticResult, error) {
	ls, err := s.sessions.get(studentID, attemptID)
	if err != nil {
		return DiagnosticResult{}, err
	}
	if ls.attempt.ExamType != model.ExamTypeDiagnostic {
		return DiagnosticResult{}, ErrNotDiagnosticAttempt
	}

	res, err := s.sessions.Submit(studentID, attemptID)
	if err != nil {
		return DiagnosticResult{}, err
	}

	out := DiagnosticResult{
		Result: res,
		Tier:   TierFor(res.Score),
	}

	lowest := 2.0
	for subject, b := range res.PerSubject {
		if b.Total == 0 {
			continue
		}
		if b.Accuracy < lowest || (b.Accuracy == lowest && subject < out.WeakestSubject) {
			lowest = b.Accuracy
			out.WeakestSubject = subject
		}
	}

	s.log.Info().
		Int("student_id", studentID).
		Int("score", res.Score).
		Str("tier", string(out.Tier)).
		Str("weakest_subject", out.WeakestSubject).
		Msg("Diagnostic submitted")
	return out, nil
}
