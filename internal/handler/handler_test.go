package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/assessment"
	"github.com/soulmatch/soulmatch-backend/internal/config"
	"github.com/soulmatch/soulmatch-backend/internal/middleware"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/soulmatch/soulmatch-backend/internal/response"
	"github.com/soulmatch/soulmatch-backend/internal/scoring"
	"github.com/soulmatch/soulmatch-backend/internal/service"
	"github.com/soulmatch/soulmatch-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const estjJSON = `{"type_code":"ESTJ","dimensions":[
	{"dimension":"EI","dominant_trait":"E","score":95,"description":"Outgoing"},
	{"dimension":"SN","dominant_trait":"S","score":90,"description":"Practical"},
	{"dimension":"TF","dominant_trait":"T","score":88,"description":"Logical"},
	{"dimension":"JP","dominant_trait":"J","score":92,"description":"Structured"}]}`

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type stubScorer struct {
	mu  sync.Mutex
	err error
}

func (s *stubScorer) Score(context.Context, scoring.Input) (*scoring.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return scoring.Parse([]byte(estjJSON))
}

// memProfiles keeps profiles and personalities in memory.
type memProfiles struct {
	mu     sync.Mutex
	known  map[uuid.UUID]bool
	stored map[uuid.UUID]*model.PersonalityResult
}

func (m *memProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.known[id] {
		return nil, pgx.ErrNoRows
	}
	return &model.Profile{ID: id}, nil
}

func (m *memProfiles) SaveResult(_ context.Context, id uuid.UUID, res *model.PersonalityResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[id] = res
	return nil
}

func (m *memProfiles) GetByUser(_ context.Context, id uuid.UUID) (*model.PersonalityProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.known[id] {
		return nil, pgx.ErrNoRows
	}
	p := &model.PersonalityProfile{UserID: id, Dimensions: []model.DimensionResult{}}
	if res, ok := m.stored[id]; ok {
		p.TypeCode = res.TypeCode
		p.TestCompleted = true
		p.Dimensions = res.Dimensions
	}
	return p, nil
}

func (m *memProfiles) ListByUser(context.Context, uuid.UUID, int) ([]model.AssessmentAttempt, error) {
	return []model.AssessmentAttempt{}, nil
}

type testEnv struct {
	router  *gin.Engine
	auth    *service.AuthService
	scorer  *stubScorer
	profile *memProfiles
	userID  uuid.UUID
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	userID := uuid.New()
	env := &testEnv{
		auth:    service.NewAuthService(&config.Config{JWTSecret: "s", JWTAudience: "authenticated", JWTExpiry: time.Hour}),
		scorer:  &stubScorer{},
		profile: &memProfiles{known: map[uuid.UUID]bool{userID: true}, stored: map[uuid.UUID]*model.PersonalityResult{}},
		userID:  userID,
	}
	tok, err := env.auth.IssueToken(userID, "")
	require.NoError(t, err)
	env.token = tok

	store := assessment.NewRedisSessionStore(rdb, time.Hour)
	assessmentSvc := service.NewAssessmentService(store, env.profile, env.profile, env.scorer, nil, nil, 5*time.Second, zerolog.Nop())
	personalitySvc := service.NewPersonalityService(env.profile, env.profile)

	ah := NewAssessmentHandler(assessmentSvc, zerolog.Nop())
	ph := NewPersonalityHandler(personalitySvc, zerolog.Nop())
	limiter := middleware.NewRateLimiter(10, time.Minute)
	t.Cleanup(limiter.Stop)
	wh := NewWSHandler(assessmentSvc, limiter, zerolog.Nop(), nil)

	r := gin.New()
	api := r.Group("/api/v1", middleware.RequireUserJWT(env.auth))
	api.GET("/assessment/questions", ah.GetQuestions)
	api.GET("/assessment/state", ah.GetState)
	api.POST("/assessment/start", ah.Start)
	api.PUT("/assessment/answers", ah.SetAnswer)
	api.POST("/assessment/next", ah.Next)
	api.POST("/assessment/prev", ah.Prev)
	api.POST("/assessment/submit", ah.Submit)
	api.POST("/assessment/cancel", ah.Cancel)
	api.GET("/personality", ph.Get)
	api.GET("/personality/attempts", ph.ListAttempts)
	r.GET("/ws/v1/assessment/stream", middleware.RequireUserWSAuth(env.auth), wh.AssessmentStream)
	env.router = r
	return env
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (e *testEnv) view(t *testing.T, env envelope) model.SessionView {
	t.Helper()
	var v model.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (e *testEnv) answerAll(t *testing.T) {
	t.Helper()
	code, _ := e.do(t, http.MethodPost, "/api/v1/assessment/start", nil)
	require.Equal(t, http.StatusOK, code)
	for i := 0; i < assessment.QuestionCount(); i++ {
		code, env := e.do(t, http.MethodPut, "/api/v1/assessment/answers", gin.H{"question_index": i, "value": 75})
		require.Equal(t, http.StatusOK, code, env.Error)
	}
}

func TestGetQuestionsHidesReversedFlag(t *testing.T) {
	e := newTestEnv(t)

	code, env := e.do(t, http.MethodGet, "/api/v1/assessment/questions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "reversed")

	var data struct {
		Questions []model.Question `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Questions, 20)
}

func TestWizardFlow(t *testing.T) {
	e := newTestEnv(t)

	code, env := e.do(t, http.MethodGet, "/api/v1/assessment/state", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.PhaseIntro, e.view(t, env).Phase)

	code, env = e.do(t, http.MethodPost, "/api/v1/assessment/start", gin.H{"resume": false})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.PhaseQuestions, e.view(t, env).Phase)

	code, env = e.do(t, http.MethodPut, "/api/v1/assessment/answers", gin.H{"question_index": 0, "value": 30})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.AnswerSet{1: 30}, e.view(t, env).Answers)

	code, env = e.do(t, http.MethodPost, "/api/v1/assessment/next", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, e.view(t, env).CurrentQuestionIndex)

	code, env = e.do(t, http.MethodPost, "/api/v1/assessment/prev", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, e.view(t, env).CurrentQuestionIndex)
}

func TestSetAnswerValidation(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/api/v1/assessment/start", nil)

	code, env := e.do(t, http.MethodPut, "/api/v1/assessment/answers", gin.H{"question_index": 0, "value": 101})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
	assert.Contains(t, env.Error.Fields, "value")

	code, env = e.do(t, http.MethodPut, "/api/v1/assessment/answers", gin.H{"value": 10})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Fields, "question_index")
}

func TestAnswerBeforeStartIsInvalidPhase(t *testing.T) {
	e := newTestEnv(t)

	code, env := e.do(t, http.MethodPut, "/api/v1/assessment/answers", gin.H{"question_index": 0, "value": 10})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, response.ErrInvalidPhase, env.Error.Code)
}

func TestSubmitIncomplete(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/api/v1/assessment/start", nil)

	code, env := e.do(t, http.MethodPost, "/api/v1/assessment/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, response.ErrIncompleteSubmission, env.Error.Code)
}

func TestSubmitAndReadPersonality(t *testing.T) {
	e := newTestEnv(t)
	e.answerAll(t)

	code, env := e.do(t, http.MethodPost, "/api/v1/assessment/submit", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var profile model.PersonalityProfile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "ESTJ", profile.TypeCode)
	assert.True(t, profile.TestCompleted)

	code, env = e.do(t, http.MethodGet, "/api/v1/personality", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "ESTJ", profile.TypeCode)
	assert.Len(t, profile.Dimensions, 4)

	code, env = e.do(t, http.MethodGet, "/api/v1/assessment/state", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.PhaseIntro, e.view(t, env).Phase)
}

func TestSubmitScoringFailureCarriesDetail(t *testing.T) {
	e := newTestEnv(t)
	e.scorer.err = errors.New("quota exhausted")
	e.answerAll(t)

	code, env := e.do(t, http.MethodPost, "/api/v1/assessment/submit", nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, response.ErrScoringFailed, env.Error.Code)
	assert.Equal(t, "quota exhausted", env.Error.Detail)

	code, env = e.do(t, http.MethodGet, "/api/v1/assessment/state", nil)
	require.Equal(t, http.StatusOK, code)
	v := e.view(t, env)
	assert.Equal(t, model.PhaseQuestions, v.Phase)
	assert.True(t, v.CanSubmit)
}

func TestCancelWithoutSubmission(t *testing.T) {
	e := newTestEnv(t)

	code, env := e.do(t, http.MethodPost, "/api/v1/assessment/cancel", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, response.ErrNothingToCancel, env.Error.Code)
}

func TestAttemptsQueryValidation(t *testing.T) {
	e := newTestEnv(t)

	code, _ := e.do(t, http.MethodGet, "/api/v1/personality/attempts?limit=5", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := e.do(t, http.MethodGet, "/api/v1/personality/attempts?limit=0", nil)
	assert.Equal(t, http.StatusOK, code, env.Error)

	code, env = e.do(t, http.MethodGet, "/api/v1/personality/attempts?limit=1000", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Fields, "limit")
}
