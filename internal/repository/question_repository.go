package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepworks/prepworks-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListForExam retrieves a randomized question set for one subject and exam
// format. Year and difficulty are optional filters (zero values skip them).
func (r *QuestionRepository) ListForExam(ctx context.Context, subject string, examType model.ExamType, year int, difficulty string, limit int) ([]model.RawQuestion, error) {
	query := `
		SELECT q.id, s.name, q.variant, q.question_text, q.options, q.correct_answer, q.diagram_url
		FROM questions q
		JOIN subjects s ON q.subject_id = s.id
		WHERE s.name = $1 AND q.exam_type = $2
	`
	args := []any{subject, examType}

	if year > 0 {
		args = append(args, year)
		query += fmt.Sprintf(" AND q.year = $%d", len(args))
	}
	if difficulty != "" {
		args = append(args, difficulty)
		query += fmt.Sprintf(" AND q.difficulty = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY random() LIMIT $%d", len(args))

	return r.queryRaw(ctx, query, args...)
}

// ListDiagnostic pulls up to perSubject questions from every subject for the
// cross-subject placement quiz. Only MCQ variants are eligible.
func (r *QuestionRepository) ListDiagnostic(ctx context.Context, perSubject int) ([]model.RawQuestion, error) {
	query := `
		SELECT id, subject, variant, question_text, options, correct_answer, diagram_url
		FROM (
			SELECT q.id, s.name AS subject, q.variant, q.question_text, q.options,
			       q.correct_answer, q.diagram_url,
			       ROW_NUMBER() OVER (PARTITION BY q.subject_id ORDER BY random()) AS rn
			FROM questions q
			JOIN subjects s ON q.subject_id = s.id
			WHERE q.variant <> 'THEORY'
		) ranked
		WHERE rn <= $1
		ORDER BY subject, rn
	`
	return r.queryRaw(ctx, query, perSubject)
}

func (r *QuestionRepository) queryRaw(ctx context.Context, query string, args ...any) ([]model.RawQuestion, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.RawQuestion
	for rows.Next() {
		var (
			q          model.RawQuestion
			optionsRaw []byte
			correct    *string
			diagram    *string
		)
		if err := rows.Scan(&q.ID, &q.Subject, &q.Variant, &q.Text, &optionsRaw, &correct, &diagram); err != nil {
			return nil, err
		}
		if len(optionsRaw) > 0 {
			if err := json.Unmarshal(optionsRaw, &q.Options); err != nil {
				return nil, fmt.Errorf("decode options for question %d: %w", q.ID, err)
			}
		}
		if correct != nil {
			q.CorrectAnswer = *correct
		}
		if diagram != nil {
			q.DiagramURL = *diagram
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Insert adds a question to the bank. Used by the seeding CLI.
func (r *QuestionRepository) Insert(ctx context.Context, subjectID int, examType model.ExamType, year int, difficulty string, q model.RawQuestion) error {
	var optionsRaw []byte
	if len(q.Options) > 0 {
		var err error
		optionsRaw, err = json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO questions (subject_id, exam_type, year, difficulty, variant, question_text, options, correct_answer, diagram_url)
		 VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))`,
		subjectID, examType, year, difficulty, q.Variant, q.Text, optionsRaw, q.CorrectAnswer, q.DiagramURL,
	)
	return err
}
