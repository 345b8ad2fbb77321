package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prepworks/prepworks-backend/internal/engine"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/prepworks/prepworks-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Question loading errors.
var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrNoQuestions     = errors.New("no questions available for the requested exam")
)

const (
	// DefaultQuestionCount applies when the client omits question_count.
	DefaultQuestionCount = 40
	// DiagnosticPerSubject is how many questions each subject contributes to
	// the placement quiz.
	DiagnosticPerSubject = 5
)

// QuestionService loads question sets from the bank and normalizes raw
// provider payloads into the uniform internal shape.
type QuestionService struct {
	subjects  *repository.SubjectRepository
	questions *repository.QuestionRepository
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(subjects *repository.SubjectRepository, questions *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		subjects:  subjects,
		questions: questions,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// BuildExamSet assembles the normalized question sequence for one subject
// and exam format.
func (s *QuestionService) BuildExamSet(ctx context.Context, req model.StartAttemptRequest) ([]model.Question, error) {
	if _, err := s.subjects.GetByName(ctx, req.Subject); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("lookup subject: %w", err)
	}

	limit := req.QuestionCount
	if limit <= 0 {
		limit = DefaultQuestionCount
	}

	raw, err := s.questions.ListForExam(ctx, req.Subject, model.ExamType(req.ExamType), req.Year, req.Difficulty, limit)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoQuestions
	}

	questions := engine.Normalize(raw)
	s.log.Debug().
		Str("subject", req.Subject).
		Str("exam_type", req.ExamType).
		Int("count", len(questions)).
		Msg("Exam set built")
	return questions, nil
}

// BuildDiagnosticSet assembles the cross-subject placement quiz.
func (s *QuestionService) BuildDiagnosticSet(ctx context.Context) ([]model.Question, error) {
	raw, err := s.questions.ListDiagnostic(ctx, DiagnosticPerSubject)
	if err != nil {
		return nil, fmt.Errorf("load diagnostic questions: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoQuestions
	}
	return engine.Normalize(raw), nil
}

// ListSubjects returns the subject catalogue.
func (s *QuestionService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.subjects.List(ctx)
}
