package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AssessmentAnswersKey returns the hash key holding a user's in-progress answers (question id -> value).
func (r *CacheKeyStruct) AssessmentAnswersKey(userID uuid.UUID) string {
	return fmt.Sprintf("assessment:%s:answers", userID)
}

// AssessmentIndexKey returns the key holding the user's current question index.
func (r *CacheKeyStruct) AssessmentIndexKey(userID uuid.UUID) string {
	return fmt.Sprintf("assessment:%s:index", userID)
}

// AssessmentPhaseKey returns the key holding the user's wizard phase.
func (r *CacheKeyStruct) AssessmentPhaseKey(userID uuid.UUID) string {
	return fmt.Sprintf("assessment:%s:phase", userID)
}

var CacheKey = NewCacheKeyStruct()
