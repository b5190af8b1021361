package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/soulmatch/soulmatch-backend/internal/model"
)

// AttemptRepository handles the assessment submission log.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// InsertBatch bulk-inserts attempts with COPY.
func (r *AttemptRepository) InsertBatch(ctx context.Context, attempts []model.AssessmentAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"assessment_attempts"},
		[]string{"user_id", "outcome", "type_code", "error", "duration_ms", "created_at"},
		pgx.CopyFromSlice(len(attempts), func(i int) ([]any, error) {
			a := attempts[i]
			return []any{a.UserID, string(a.Outcome), a.TypeCode, a.Error, a.DurationMS, a.CreatedAt}, nil
		}),
	)
	return err
}

// ListByUser returns the user's most recent attempts, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.AssessmentAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, outcome, type_code, error, duration_ms, created_at
		 FROM assessment_attempts
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []model.AssessmentAttempt{}
	for rows.Next() {
		var a model.AssessmentAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.Outcome, &a.TypeCode, &a.Error, &a.DurationMS, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
