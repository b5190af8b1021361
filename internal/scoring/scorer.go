package scoring

import (
	"context"
	"math"

	"github.com/soulmatch/soulmatch-backend/internal/assessment"
	"github.com/soulmatch/soulmatch-backend/internal/model"
)

// Scorer turns a completed questionnaire into four scored dimensions and a type code.
// Implementations make exactly one attempt; retry policy belongs to the caller.
type Scorer interface {
	Score(ctx context.Context, in Input) (*Result, error)
}

// DimensionScore is a validated but unrounded dimension as returned by the model.
type DimensionScore struct {
	Dimension     model.Dimension
	DominantTrait string
	Score         float64
	Description   string
}

// Result is a validated scoring response, dimensions in type-code order.
type Result struct {
	TypeCode   string
	Dimensions []DimensionScore
}

// Rounded converts the result into its persisted form with integer scores.
func (r *Result) Rounded() *model.PersonalityResult {
	out := &model.PersonalityResult{
		TypeCode:   r.TypeCode,
		Dimensions: make([]model.DimensionResult, 0, len(r.Dimensions)),
	}
	for _, d := range r.Dimensions {
		out.Dimensions = append(out.Dimensions, model.DimensionResult{
			Dimension:     d.Dimension,
			DominantTrait: d.DominantTrait,
			Score:         int(math.Round(d.Score)),
			Description:   d.Description,
		})
	}
	return out
}

// Item is one answered question as the interpreting model sees it.
type Item struct {
	QuestionText string          `json:"question_text"`
	AnswerValue  int             `json:"answer_value"`
	Dimension    model.Dimension `json:"dimension"`
	Reversed     bool            `json:"reversed"`
}

// Input is everything a scoring run needs. Bio, interests and tags only
// personalise descriptions; they carry no weight in the numeric scores.
type Input struct {
	Items           []Item
	Bio             string
	Interests       []string
	PersonalityTags []string
}

// NewInput builds a scoring input from answered questions and the profile context.
func NewInput(answered []assessment.AnsweredQuestion, profile *model.Profile) Input {
	in := Input{Items: make([]Item, 0, len(answered))}
	for _, a := range answered {
		in.Items = append(in.Items, Item{
			QuestionText: a.Question.Text,
			AnswerValue:  a.Value,
			Dimension:    a.Question.Dimension,
			Reversed:     a.Question.Reversed,
		})
	}
	if profile != nil {
		in.Bio = profile.Bio
		in.Interests = profile.Interests
		in.PersonalityTags = profile.PersonalityTags
	}
	return in
}
