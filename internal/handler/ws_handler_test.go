package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/soulmatch/soulmatch-backend/internal/response"
	ws "github.com/soulmatch/soulmatch-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsEvent struct {
	Event       ws.Event                  `json:"event"`
	State       model.SessionView         `json:"state"`
	Personality *model.PersonalityProfile `json:"personality"`
	Code        response.ErrCode          `json:"code"`
	Fields      map[string]string         `json:"fields"`
}

func dialStream(t *testing.T, e *testEnv) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/assessment/stream?token=" + e.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg ws.RequestPayload) wsEvent {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	return read(t, conn)
}

func read(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev wsEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func intPtr(i int) *int { return &i }

func TestStreamWizardAndSubmit(t *testing.T) {
	e := newTestEnv(t)
	conn := dialStream(t, e)

	ev := send(t, conn, ws.RequestPayload{Action: ws.ActionPing})
	assert.Equal(t, ws.EventPong, ev.Event)

	ev = send(t, conn, ws.RequestPayload{Action: ws.ActionStart})
	require.Equal(t, ws.EventState, ev.Event)
	assert.Equal(t, model.PhaseQuestions, ev.State.Phase)

	for i := 0; i < 20; i++ {
		ev = send(t, conn, ws.RequestPayload{Action: ws.ActionAnswer, QuestionIndex: intPtr(i), Value: intPtr(50)})
		require.Equal(t, ws.EventState, ev.Event, ev.Code)
	}
	assert.True(t, ev.State.CanSubmit)

	ev = send(t, conn, ws.RequestPayload{Action: ws.ActionSubmit})
	assert.Equal(t, ws.EventSubmitting, ev.Event)

	ev = read(t, conn)
	require.Equal(t, ws.EventCompleted, ev.Event, ev.Code)
	assert.Equal(t, "ESTJ", ev.Personality.TypeCode)
}

func TestStreamRejectsBadPayloads(t *testing.T) {
	e := newTestEnv(t)
	conn := dialStream(t, e)

	ev := send(t, conn, ws.RequestPayload{Action: "dance"})
	assert.Equal(t, ws.EventError, ev.Event)
	assert.Equal(t, response.ErrInvalidPayload, ev.Code)

	send(t, conn, ws.RequestPayload{Action: ws.ActionStart})
	ev = send(t, conn, ws.RequestPayload{Action: ws.ActionAnswer, QuestionIndex: intPtr(40), Value: intPtr(50)})
	assert.Equal(t, ws.EventError, ev.Event)
	assert.Equal(t, response.ErrValidation, ev.Code)
	assert.Contains(t, ev.Fields, "question_index")

	ev = send(t, conn, ws.RequestPayload{Action: ws.ActionSubmit})
	assert.Equal(t, ws.EventSubmitting, ev.Event)
	ev = read(t, conn)
	assert.Equal(t, ws.EventError, ev.Event)
	assert.Equal(t, response.ErrIncompleteSubmission, ev.Code)
}
