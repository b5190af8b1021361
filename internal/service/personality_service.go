package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/soulmatch/soulmatch-backend/internal/model"
)

const (
	DefaultAttemptLimit = 20
	MaxAttemptLimit     = 100
)

// PersonalityReader loads a user's stored personality.
type PersonalityReader interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.PersonalityProfile, error)
}

// AttemptLister reads the attempt log.
type AttemptLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.AssessmentAttempt, error)
}

// PersonalityService exposes stored assessment results.
type PersonalityService struct {
	personalities PersonalityReader
	attempts      AttemptLister
}

// NewPersonalityService creates a new PersonalityService.
func NewPersonalityService(personalities PersonalityReader, attempts AttemptLister) *PersonalityService {
	return &PersonalityService{personalities: personalities, attempts: attempts}
}

// Get returns the user's personality. A user who never completed the
// assessment gets an empty profile with TestCompleted false.
func (s *PersonalityService) Get(ctx context.Context, userID uuid.UUID) (*model.PersonalityProfile, error) {
	p, err := s.personalities.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMissingIdentity
		}
		return nil, fmt.Errorf("get personality: %w", err)
	}
	return p, nil
}

// Attempts returns the most recent submissions, newest first.
func (s *PersonalityService) Attempts(ctx context.Context, userID uuid.UUID, limit int) ([]model.AssessmentAttempt, error) {
	if limit <= 0 {
		limit = DefaultAttemptLimit
	}
	if limit > MaxAttemptLimit {
		limit = MaxAttemptLimit
	}
	attempts, err := s.attempts.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
