package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepworks/prepworks-backend/internal/model"
)

// SubjectRepository handles subject data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// List retrieves all subjects ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code FROM subjects ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Code); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Upsert creates a subject if it does not exist and returns its id either way.
func (r *SubjectRepository) Upsert(ctx context.Context, name, code string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name, code)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET code = EXCLUDED.code
		 RETURNING id`, name, code,
	).Scan(&id)
	return id, err
}

// GetByName retrieves a subject by its display name.
func (r *SubjectRepository) GetByName(ctx context.Context, name string) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code FROM subjects WHERE name = $1`, name,
	).Scan(&s.ID, &s.Name, &s.Code)
	if err != nil {
		return nil, err
	}
	return s, nil
}
