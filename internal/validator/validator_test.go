package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func ptr(i int) *int { return &i }

func TestStructTranslatesFieldErrors(t *testing.T) {
	Setup()

	fields := Struct(&model.SetAnswerRequest{QuestionIndex: ptr(25), Value: ptr(50)})
	assert.Contains(t, fields, "question_index")
	assert.NotContains(t, fields, "value")

	fields = Struct(&model.SetAnswerRequest{QuestionIndex: ptr(3)})
	assert.Contains(t, fields, "value")

	assert.Nil(t, Struct(&model.SetAnswerRequest{QuestionIndex: ptr(0), Value: ptr(0)}))
}

func TestBindReportsMalformedJSON(t *testing.T) {
	Setup()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"question_index":`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req model.SetAnswerRequest
	fields := Bind(c, &req)
	assert.Contains(t, fields, "detail")
}

func TestBindQueryBounds(t *testing.T) {
	Setup()
	gin.SetMode(gin.TestMode)

	type query struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)

	var q query
	fields := BindQuery(c, &q)
	assert.Contains(t, fields, "limit")
}
