package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/soulmatch/soulmatch-backend/internal/model"
)

// PersonalityRepository stores assessment results on profiles.
type PersonalityRepository struct {
	pool *pgxpool.Pool
}

// NewPersonalityRepository creates a new PersonalityRepository.
func NewPersonalityRepository(pool *pgxpool.Pool) *PersonalityRepository {
	return &PersonalityRepository{pool: pool}
}

// SaveResult replaces the user's dimension rows and marks the test completed,
// all in one transaction. Returns pgx.ErrNoRows if the profile does not exist.
func (r *PersonalityRepository) SaveResult(ctx context.Context, userID uuid.UUID, res *model.PersonalityResult) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM personality_dimensions WHERE user_id = $1`, userID); err != nil {
			return err
		}

		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"personality_dimensions"},
			[]string{"user_id", "dimension", "dominant_trait", "score", "description"},
			pgx.CopyFromSlice(len(res.Dimensions), func(i int) ([]any, error) {
				d := res.Dimensions[i]
				return []any{userID, string(d.Dimension), d.DominantTrait, d.Score, d.Description}, nil
			}),
		); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE profiles
			 SET personality_test_completed = TRUE,
			     personality_type = $2,
			     updated_at = NOW()
			 WHERE id = $1`,
			userID, res.TypeCode)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

// GetByUser returns the stored personality of a user.
func (r *PersonalityRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.PersonalityProfile, error) {
	p := &model.PersonalityProfile{UserID: userID, Dimensions: []model.DimensionResult{}}
	var typeCode *string
	var updatedAt *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT personality_test_completed, personality_type, updated_at
		 FROM profiles WHERE id = $1`, userID,
	).Scan(&p.TestCompleted, &typeCode, &updatedAt)
	if err != nil {
		return nil, err
	}
	if typeCode != nil {
		p.TypeCode = *typeCode
	}
	p.UpdatedAt = updatedAt

	rows, err := r.pool.Query(ctx,
		`SELECT dimension, dominant_trait, score, description
		 FROM personality_dimensions
		 WHERE user_id = $1
		 ORDER BY array_position(ARRAY['EI','SN','TF','JP'], dimension)`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d model.DimensionResult
		if err := rows.Scan(&d.Dimension, &d.DominantTrait, &d.Score, &d.Description); err != nil {
			return nil, err
		}
		p.Dimensions = append(p.Dimensions, d)
	}
	return p, rows.Err()
}
