package model

import (
	"time"

	"github.com/google/uuid"
)

// DimensionResult is the scored outcome for one dimension.
type DimensionResult struct {
	Dimension     Dimension `json:"dimension"`
	DominantTrait string    `json:"dominant_trait"`
	Score         int       `json:"score"`
	Description   string    `json:"description"`
}

// PersonalityResult is the validated output of a scoring run.
type PersonalityResult struct {
	TypeCode   string            `json:"type_code"`
	Dimensions []DimensionResult `json:"dimensions"`
}

// PersonalityProfile is the stored personality of a user.
type PersonalityProfile struct {
	UserID        uuid.UUID         `json:"user_id"`
	TypeCode      string            `json:"type_code"`
	TestCompleted bool              `json:"test_completed"`
	Dimensions    []DimensionResult `json:"dimensions"`
	UpdatedAt     *time.Time        `json:"updated_at,omitempty"`
}

// Profile is the slice of a user's profile the assessment reads.
type Profile struct {
	ID                       uuid.UUID `json:"id"`
	Bio                      string    `json:"bio"`
	Interests                []string  `json:"interests"`
	PersonalityTags          []string  `json:"personality_tags"`
	PersonalityTestCompleted bool      `json:"personality_test_completed"`
	PersonalityType          *string   `json:"personality_type,omitempty"`
}
