package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"news-engine/internal/domain"
)

type stubRebuilder struct {
	mu          sync.Mutex
	capturedCtx context.Context
	returnErr   error
	rebuilt     int
}

func (s *stubRebuilder) Rebuild(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	return nil, nil
}

func (s *stubRebuilder) RebuildActive(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capturedCtx = ctx
	if s.returnErr != nil {
		return 0, s.returnErr
	}
	return s.rebuilt, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRefreshAll_ContextHasTimeout(t *testing.T) {
	rebuilder := &stubRebuilder{rebuilt: 3}
	w := NewProfileWorker(rebuilder, time.Hour, testLogger())

	w.refreshAll()

	rebuilder.mu.Lock()
	defer rebuilder.mu.Unlock()

	assert.NotNil(t, rebuilder.capturedCtx, "RebuildActive should have been called")
	deadline, ok := rebuilder.capturedCtx.Deadline()
	assert.True(t, ok, "context passed to RebuildActive must have a deadline")
	assert.WithinDuration(t, time.Now().Add(refreshTimeout), deadline, 5*time.Second)
}

func TestProfileWorker_BacksOffOnConsecutiveFailures(t *testing.T) {
	rebuilder := &stubRebuilder{returnErr: errors.New("store unreachable")}
	w := NewProfileWorker(rebuilder, time.Hour, testLogger())

	w.refreshAll()
	assert.Equal(t, initialBackoff, w.backoff)

	w.refreshAll()
	assert.Equal(t, 2*time.Minute, w.backoff)

	w.refreshAll()
	assert.Equal(t, 4*time.Minute, w.backoff)
}

func TestProfileWorker_BackoffResetsOnSuccess(t *testing.T) {
	rebuilder := &stubRebuilder{returnErr: errors.New("fail")}
	w := NewProfileWorker(rebuilder, time.Hour, testLogger())

	w.refreshAll()
	assert.Equal(t, initialBackoff, w.backoff)

	rebuilder.mu.Lock()
	rebuilder.returnErr = nil
	rebuilder.mu.Unlock()

	w.refreshAll()
	assert.Equal(t, time.Duration(0), w.backoff, "backoff should reset on success")
}

func TestProfileWorker_BackoffCapsAtMax(t *testing.T) {
	w := NewProfileWorker(nil, time.Hour, testLogger())

	bo := time.Duration(0)
	for i := 0; i < 20; i++ {
		bo = w.nextBackoff(bo)
	}
	assert.Equal(t, maxBackoff, bo, "backoff must cap at maxBackoff")
}

func TestNewProfileWorker_DefaultInterval(t *testing.T) {
	w := NewProfileWorker(nil, 0, testLogger())
	assert.Equal(t, time.Hour, w.interval)
}
