package assessment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/soulmatch/soulmatch-backend/internal/config"
	"github.com/soulmatch/soulmatch-backend/internal/model"
)

// SessionStore persists in-progress sessions between requests.
type SessionStore interface {
	// Load returns the persisted state and whether any was found.
	Load(ctx context.Context, userID uuid.UUID) (model.SessionState, bool, error)
	Save(ctx context.Context, userID uuid.UUID, state model.SessionState) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// RedisSessionStore keeps answers in a hash and index/phase in plain keys,
// all sharing a sliding TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a RedisSessionStore.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

// Load reads all session keys in one round trip.
func (s *RedisSessionStore) Load(ctx context.Context, userID uuid.UUID) (model.SessionState, bool, error) {
	state := model.SessionState{Answers: model.AnswerSet{}, Phase: model.PhaseIntro}

	pipe := s.rdb.Pipeline()
	answersCmd := pipe.HGetAll(ctx, config.CacheKey.AssessmentAnswersKey(userID))
	indexCmd := pipe.Get(ctx, config.CacheKey.AssessmentIndexKey(userID))
	phaseCmd := pipe.Get(ctx, config.CacheKey.AssessmentPhaseKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return state, false, fmt.Errorf("load session: %w", err)
	}

	found := false

	for field, raw := range answersCmd.Val() {
		id, err := strconv.Atoi(field)
		if err != nil {
			return state, false, fmt.Errorf("invalid question id %q in session: %w", field, err)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return state, false, fmt.Errorf("invalid answer for question %d in session: %w", id, err)
		}
		state.Answers[id] = v
		found = true
	}

	if raw, err := indexCmd.Result(); err == nil {
		idx, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return state, false, fmt.Errorf("invalid question index in session: %w", convErr)
		}
		state.CurrentQuestionIndex = idx
		found = true
	}

	if raw, err := phaseCmd.Result(); err == nil {
		state.Phase = model.Phase(raw)
		found = true
	}

	return state, found, nil
}

// Save replaces the stored session with state and refreshes its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, userID uuid.UUID, state model.SessionState) error {
	answersKey := config.CacheKey.AssessmentAnswersKey(userID)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, answersKey)
		if len(state.Answers) > 0 {
			fields := make(map[string]interface{}, len(state.Answers))
			for id, v := range state.Answers {
				fields[strconv.Itoa(id)] = v
			}
			pipe.HSet(ctx, answersKey, fields)
			pipe.Expire(ctx, answersKey, s.ttl)
		}
		pipe.Set(ctx, config.CacheKey.AssessmentIndexKey(userID), state.CurrentQuestionIndex, s.ttl)
		pipe.Set(ctx, config.CacheKey.AssessmentPhaseKey(userID), string(state.Phase), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes every key of the user's session.
func (s *RedisSessionStore) Clear(ctx context.Context, userID uuid.UUID) error {
	err := s.rdb.Del(ctx,
		config.CacheKey.AssessmentAnswersKey(userID),
		config.CacheKey.AssessmentIndexKey(userID),
		config.CacheKey.AssessmentPhaseKey(userID),
	).Err()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
