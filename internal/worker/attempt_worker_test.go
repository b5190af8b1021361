package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/soulmatch/soulmatch-backend/internal/config"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	attempts []model.AssessmentAttempt
	err      error
}

func (f *fakeWriter) InsertBatch(_ context.Context, attempts []model.AssessmentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.attempts = append(f.attempts, attempts...)
	return nil
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestAttemptQueueRecord(t *testing.T) {
	rdb, mr := newRedis(t)
	q := NewAttemptQueue(rdb)

	require.NoError(t, q.Record(context.Background(), model.AssessmentAttempt{
		UserID:  uuid.New(),
		Outcome: model.AttemptCompleted,
	}))

	items, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Contains(t, items[0], `"outcome":"completed"`)
}

func TestAttemptWorkerPersistsQueuedAttempts(t *testing.T) {
	rdb, _ := newRedis(t)
	q := NewAttemptQueue(rdb)
	writer := &fakeWriter{}
	w := NewAttemptWorker(writer, rdb, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	userID := uuid.New()
	for _, o := range []model.AttemptOutcome{model.AttemptFailed, model.AttemptCancelled, model.AttemptCompleted} {
		require.NoError(t, q.Record(context.Background(), model.AssessmentAttempt{UserID: userID, Outcome: o}))
	}

	assert.Eventually(t, func() bool { return writer.count() == 3 }, 6*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.Equal(t, model.AttemptFailed, writer.attempts[0].Outcome)
	assert.Equal(t, userID, writer.attempts[2].UserID)
}

func TestAttemptWorkerRequeuesOnFailure(t *testing.T) {
	rdb, mr := newRedis(t)
	writer := &fakeWriter{err: errors.New("db down")}
	w := NewAttemptWorker(writer, rdb, zerolog.Nop())

	batch := []model.AssessmentAttempt{
		{UserID: uuid.New(), Outcome: model.AttemptFailed},
		{UserID: uuid.New(), Outcome: model.AttemptCompleted},
	}
	rest := w.flush(context.Background(), batch)

	assert.Empty(t, rest)
	items, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
