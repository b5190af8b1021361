package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProfileRepository reads the profile context used to personalise assessments.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByID loads a profile with its interest and personality tag names.
// Returns pgx.ErrNoRows when the profile does not exist.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	p := &model.Profile{ID: id}
	var bio *string
	err := r.pool.QueryRow(ctx,
		`SELECT bio, personality_test_completed, personality_type
		 FROM profiles
		 WHERE id = $1`, id,
	).Scan(&bio, &p.PersonalityTestCompleted, &p.PersonalityType)
	if err != nil {
		return nil, err
	}
	if bio != nil {
		p.Bio = *bio
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		names, err := r.names(gctx,
			`SELECT i.name
			 FROM profile_interests pi
			 JOIN interests i ON i.id = pi.interest_id
			 WHERE pi.profile_id = $1
			 ORDER BY i.name`, id)
		p.Interests = names
		return err
	})
	g.Go(func() error {
		names, err := r.names(gctx,
			`SELECT t.name
			 FROM profile_personality_tags pt
			 JOIN personality_tags t ON t.id = pt.tag_id
			 WHERE pt.profile_id = $1
			 ORDER BY t.name`, id)
		p.PersonalityTags = names
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *ProfileRepository) names(ctx context.Context, query string, id uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Create inserts a bare profile row. Used by tooling; the app creates profiles on sign-up.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, bio) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET bio = EXCLUDED.bio, updated_at = NOW()`,
		p.ID, p.Bio)
	return err
}

// AttachInterests links the named interests to a profile, creating missing ones.
func (r *ProfileRepository) AttachInterests(ctx context.Context, id uuid.UUID, names []string) error {
	_, err := r.pool.Exec(ctx,
		`WITH upserted AS (
			INSERT INTO interests (name) SELECT UNNEST($2::text[])
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		 )
		 INSERT INTO profile_interests (profile_id, interest_id)
		 SELECT $1, id FROM upserted
		 ON CONFLICT DO NOTHING`,
		id, names)
	return err
}

// AttachPersonalityTags links the named personality tags to a profile, creating missing ones.
func (r *ProfileRepository) AttachPersonalityTags(ctx context.Context, id uuid.UUID, names []string) error {
	_, err := r.pool.Exec(ctx,
		`WITH upserted AS (
			INSERT INTO personality_tags (name) SELECT UNNEST($2::text[])
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		 )
		 INSERT INTO profile_personality_tags (profile_id, tag_id)
		 SELECT $1, id FROM upserted
		 ON CONFLICT DO NOTHING`,
		id, names)
	return err
}
