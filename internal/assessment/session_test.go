package assessment

import (
	"testing"

	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerAll(t *testing.T, s *Session, value int) {
	t.Helper()
	for i := 0; i < QuestionCount(); i++ {
		require.NoError(t, s.SetAnswer(i, value))
	}
}

func TestNewSessionStartsInIntro(t *testing.T) {
	s := NewSession(Questions())

	assert.Equal(t, model.PhaseIntro, s.Phase())
	assert.Empty(t, s.State().Answers)
	assert.Equal(t, 0, s.State().CurrentQuestionIndex)
	assert.False(t, s.Resumable())
}

func TestOperationsRequireQuestionPhase(t *testing.T) {
	s := NewSession(Questions())

	assert.ErrorIs(t, s.SetAnswer(0, 50), ErrInvalidPhase)
	assert.ErrorIs(t, s.Next(), ErrInvalidPhase)
	assert.ErrorIs(t, s.Prev(), ErrInvalidPhase)
	assert.ErrorIs(t, s.BeginSubmit(), ErrInvalidPhase)
}

func TestNavigationBounds(t *testing.T) {
	s := NewSession(Questions())
	require.NoError(t, s.Start(false))

	require.NoError(t, s.Prev())
	assert.Equal(t, 0, s.State().CurrentQuestionIndex)

	for i := 0; i < 40; i++ {
		require.NoError(t, s.Next())
	}
	assert.Equal(t, 19, s.State().CurrentQuestionIndex)
	assert.Equal(t, 100.0, s.Progress())

	require.NoError(t, s.Next())
	assert.Equal(t, 19, s.State().CurrentQuestionIndex)

	require.NoError(t, s.Prev())
	assert.Equal(t, 18, s.State().CurrentQuestionIndex)
}

func TestProgress(t *testing.T) {
	s := NewSession(Questions())
	require.NoError(t, s.Start(false))
	assert.Equal(t, 0.0, s.Progress())

	for i := 0; i < 19; i++ {
		require.NoError(t, s.Next())
		if s.State().CurrentQuestionIndex == 10 {
			assert.InDelta(t, 52.63, s.Progress(), 0.01)
		}
	}
}

func TestSetAnswerStoresByQuestionID(t *testing.T) {
	s := NewSession(Questions())
	require.NoError(t, s.Start(false))

	require.NoError(t, s.SetAnswer(3, 70))
	require.NoError(t, s.SetAnswer(3, 0))

	assert.Equal(t, model.AnswerSet{4: 0}, s.State().Answers)
}

func TestSetAnswerRejectsOutOfRange(t *testing.T) {
	s := NewSession(Questions())
	require.NoError(t, s.Start(false))

	assert.ErrorIs(t, s.SetAnswer(-1, 50), ErrOutOfRange)
	assert.ErrorIs(t, s.SetAnswer(20, 50), ErrOutOfRange)
	assert.ErrorIs(t, s.SetAnswer(0, 101), ErrOutOfRange)
	assert.ErrorIs(t, s.SetAnswer(0, -1), ErrOutOfRange)
	assert.Empty(t, s.State().Answers)
}

func TestCompletenessGate(t *testing.T) {
	s := NewSession(Questions())
	require.NoError(t, s.Start(false))

	for i := 0; i < QuestionCount()-1; i++ {
		require.NoError(t, s.SetAnswer(i, 50))
		assert.False(t, s.CanSubmit())
	}
	assert.ErrorIs(t, s.BeginSubmit(), ErrIncomplete)
	assert.Equal(t, model.PhaseQuestions, s.Phase())

	require.NoError(t, s.SetAnswer(QuestionCount()-1, 50))
	assert.True(t, s.CanSubmit())
	require.NoError(t, s.BeginSubmit())
	assert.Equal(t, model.PhaseSubmitting, s.Phase())
}

func TestSubmitFailureLoopsBack(t *testing.T) {
	s := NewSession(Questions())
	require.NoError(t, s.Start(false))
	answerAll(t, s, 40)
	require.NoError(t, s.BeginSubmit())

	assert.ErrorIs(t, s.Start(true), ErrInvalidPhase)
	assert.ErrorIs(t, s.SetAnswer(0, 1), ErrInvalidPhase)

	s.FailSubmit()
	assert.Equal(t, model.PhaseQuestions, s.Phase())
	assert.Len(t, s.State().Answers, 20)
}

func TestCompleteSubmit(t *testing.T) {
	s := NewSession(Questions())
	assert.ErrorIs(t, s.CompleteSubmit(), ErrInvalidPhase)

	require.NoError(t, s.Start(false))
	answerAll(t, s, 40)
	require.NoError(t, s.BeginSubmit())
	require.NoError(t, s.CompleteSubmit())
	assert.Equal(t, model.PhaseComplete, s.Phase())
	assert.False(t, s.Resumable())

	// A retake starts from scratch even when asked to resume.
	require.NoError(t, s.Start(true))
	assert.Empty(t, s.State().Answers)
	assert.Equal(t, model.PhaseQuestions, s.Phase())
}

func TestResumeFidelity(t *testing.T) {
	persisted := model.SessionState{
		Answers:              model.AnswerSet{1: 10, 2: 90, 7: 55},
		CurrentQuestionIndex: 7,
		Phase:                model.PhaseQuestions,
	}

	resumed := Restore(Questions(), persisted)
	assert.True(t, resumed.Resumable())
	require.NoError(t, resumed.Start(true))
	assert.Equal(t, persisted, resumed.State())

	restarted := Restore(Questions(), persisted)
	require.NoError(t, restarted.Start(false))
	assert.Equal(t, model.AnswerSet{}, restarted.State().Answers)
	assert.Equal(t, 0, restarted.State().CurrentQuestionIndex)
}

func TestRestoreDropsImpossibleState(t *testing.T) {
	s := Restore(Questions(), model.SessionState{
		Answers:              model.AnswerSet{1: 10, 99: 50, 2: 150},
		CurrentQuestionIndex: 42,
		Phase:                model.Phase("bogus"),
	})

	st := s.State()
	assert.Equal(t, model.AnswerSet{1: 10}, st.Answers)
	assert.Equal(t, 19, st.CurrentQuestionIndex)
	assert.Equal(t, model.PhaseIntro, st.Phase)
}

func TestItemsFollowQuestionOrder(t *testing.T) {
	s := NewSession(Questions())
	require.NoError(t, s.Start(false))
	for i := 0; i < QuestionCount(); i++ {
		require.NoError(t, s.SetAnswer(i, i*5))
	}

	items := s.Items()
	require.Len(t, items, 20)
	for i, it := range items {
		assert.Equal(t, i+1, it.Question.ID)
		assert.Equal(t, i*5, it.Value)
	}
}

func TestViewIsDetached(t *testing.T) {
	s := NewSession(Questions())
	require.NoError(t, s.Start(false))
	require.NoError(t, s.SetAnswer(0, 30))

	v := s.View()
	v.Answers[1] = 99

	assert.Equal(t, 30, s.State().Answers[1])
	assert.Equal(t, 20, v.QuestionCount)
	assert.True(t, v.Resumable)
	assert.False(t, v.CanSubmit)
}
