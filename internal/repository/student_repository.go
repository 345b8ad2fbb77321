package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepworks/prepworks-backend/internal/model"
)

// StudentRepository handles student account data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByEmail retrieves a student by email address.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, password_hash, level, created_at
		 FROM students
		 WHERE email = $1`, email,
	).Scan(&s.ID, &s.FullName, &s.Email, &s.PasswordHash, &s.Level, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, password_hash, level, created_at
		 FROM students
		 WHERE id = $1`, id,
	).Scan(&s.ID, &s.FullName, &s.Email, &s.PasswordHash, &s.Level, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new student account.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (full_name, email, password_hash, level)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.FullName, s.Email, s.PasswordHash, s.Level,
	).Scan(&s.ID, &s.CreatedAt)
}
