package assessment

import "github.com/soulmatch/soulmatch-backend/internal/model"

// QuestionsPerDimension is the fixed number of statements per dimension.
const QuestionsPerDimension = 5

var questionBank = []model.Question{
	{ID: 1, Text: "I feel energized after spending time with a large group of people.", Dimension: model.DimensionEI},
	{ID: 2, Text: "I prefer a quiet evening at home to a busy party.", Dimension: model.DimensionEI, Reversed: true},
	{ID: 3, Text: "I find it easy to start conversations with strangers.", Dimension: model.DimensionEI},
	{ID: 4, Text: "I need time alone to recharge after social events.", Dimension: model.DimensionEI, Reversed: true},
	{ID: 5, Text: "I enjoy being the center of attention.", Dimension: model.DimensionEI},

	{ID: 6, Text: "I focus on concrete facts and details rather than the big picture.", Dimension: model.DimensionSN},
	{ID: 7, Text: "I think about future possibilities more than present realities.", Dimension: model.DimensionSN, Reversed: true},
	{ID: 8, Text: "I trust experience more than theories.", Dimension: model.DimensionSN},
	{ID: 9, Text: "I enjoy exploring abstract ideas and concepts.", Dimension: model.DimensionSN, Reversed: true},
	{ID: 10, Text: "I prefer step-by-step instructions over figuring things out by intuition.", Dimension: model.DimensionSN},

	{ID: 11, Text: "I make decisions based on logic rather than feelings.", Dimension: model.DimensionTF},
	{ID: 12, Text: "I consider how others will feel before I make a decision.", Dimension: model.DimensionTF, Reversed: true},
	{ID: 13, Text: "I value honesty over tact, even when the truth might hurt.", Dimension: model.DimensionTF},
	{ID: 14, Text: "Harmony in a group matters more to me than being right.", Dimension: model.DimensionTF, Reversed: true},
	{ID: 15, Text: "I analyze problems objectively, even when they involve people close to me.", Dimension: model.DimensionTF},

	{ID: 16, Text: "I like to plan my activities well in advance.", Dimension: model.DimensionJP},
	{ID: 17, Text: "I prefer keeping my options open to committing to a plan.", Dimension: model.DimensionJP, Reversed: true},
	{ID: 18, Text: "I feel satisfied when I finish tasks well before the deadline.", Dimension: model.DimensionJP},
	{ID: 19, Text: "I enjoy spontaneous, unplanned adventures.", Dimension: model.DimensionJP, Reversed: true},
	{ID: 20, Text: "I keep my home and work spaces organized.", Dimension: model.DimensionJP},
}

// Questions returns a copy of the questionnaire in presentation order.
func Questions() []model.Question {
	out := make([]model.Question, len(questionBank))
	copy(out, questionBank)
	return out
}

// QuestionCount is the number of questions a complete submission answers.
func QuestionCount() int {
	return len(questionBank)
}
