package assessment

import (
	"testing"

	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionBankShape(t *testing.T) {
	qs := Questions()
	require.Len(t, qs, 20)
	assert.Equal(t, 20, QuestionCount())

	perDimension := map[model.Dimension]int{}
	ids := map[int]bool{}
	for _, q := range qs {
		assert.True(t, q.Dimension.Valid(), "question %d", q.ID)
		assert.NotEmpty(t, q.Text)
		assert.False(t, ids[q.ID], "duplicate id %d", q.ID)
		ids[q.ID] = true
		perDimension[q.Dimension]++
	}
	for _, d := range model.Dimensions {
		assert.Equal(t, QuestionsPerDimension, perDimension[d], "dimension %s", d)
	}
}

func TestQuestionsReturnsCopy(t *testing.T) {
	qs := Questions()
	qs[0].Text = "changed"

	assert.NotEqual(t, "changed", Questions()[0].Text)
}
