package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepworks/prepworks-backend/internal/model"
)

// AttemptRepository handles exam attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a new IN_PROGRESS attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts (id, student_id, subject, exam_type, year, difficulty, status)
		 VALUES ($1, $2, $3, $4, NULLIF($5, 0), NULLIF($6, ''), $7)
		 RETURNING started_at`,
		a.ID, a.StudentID, a.Subject, a.ExamType, a.Year, a.Difficulty, model.AttemptStatusInProgress,
	).Scan(&a.StartedAt)
}

// GetByID retrieves an attempt.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	var breakdown []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, subject, exam_type, COALESCE(year, 0), COALESCE(difficulty, ''),
		        status, score, correct_count, total_count, breakdown, started_at, finished_at
		 FROM exam_attempts
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.StudentID, &a.Subject, &a.ExamType, &a.Year, &a.Difficulty,
		&a.Status, &a.Score, &a.CorrectCount, &a.TotalCount, &breakdown, &a.StartedAt, &a.FinishedAt)
	if err != nil {
		return nil, err
	}
	a.Breakdown = json.RawMessage(breakdown)
	return a, nil
}

// Complete marks an attempt as submitted with its final result. Used as the
// synchronous fallback when the result queue is unavailable.
func (r *AttemptRepository) Complete(ctx context.Context, id uuid.UUID, res model.Result) error {
	var breakdown []byte
	if res.PerSubject != nil {
		breakdown, _ = json.Marshal(res.PerSubject)
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET status = $1, score = $2, correct_count = $3, total_count = $4,
		     breakdown = $5, finished_at = $6
		 WHERE id = $7`,
		model.AttemptStatusSubmitted, res.Score, res.CorrectCount, res.ScorableCount,
		breakdown, time.Now(), id)
	return err
}

// MarkAbandoned flags an attempt the student left without submitting.
func (r *AttemptRepository) MarkAbandoned(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET status = $1, finished_at = NOW()
		 WHERE id = $2 AND status = $3`,
		model.AttemptStatusAbandoned, id, model.AttemptStatusInProgress)
	return err
}

// ListByStudent retrieves a student's attempt history, newest first.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID, page, perPage int) ([]model.Attempt, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_attempts WHERE student_id = $1`, studentID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, subject, exam_type, COALESCE(year, 0), COALESCE(difficulty, ''),
		        status, score, correct_count, total_count, breakdown, started_at, finished_at
		 FROM exam_attempts
		 WHERE student_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2 OFFSET $3`, studentID, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var breakdown []byte
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Subject, &a.ExamType, &a.Year, &a.Difficulty,
			&a.Status, &a.Score, &a.CorrectCount, &a.TotalCount, &breakdown, &a.StartedAt, &a.FinishedAt); err != nil {
			return nil, 0, err
		}
		a.Breakdown = json.RawMessage(breakdown)
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}
