package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ds124wfegd/autotagger/internal/database"
	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/ds124wfegd/autotagger/internal/service"
	"github.com/stretchr/testify/assert"
)

type countingSessions struct {
	service.SessionService
	calls int32
}

func (c *countingSessions) PurgeIdle(ctx context.Context, ttl time.Duration) int {
	atomic.AddInt32(&c.calls, 1)
	return c.SessionService.PurgeIdle(ctx, ttl)
}

func TestCleanupPurgesIdleSessions(t *testing.T) {
	repo := database.NewSessionRepository()
	repo.Save(entity.NewSession("a", entity.LanguageEN))
	repo.Save(entity.NewSession("b", entity.LanguageAR))

	w := NewSessionCleanupWorker(service.NewSessionService(repo), time.Hour, time.Hour)
	assert.Equal(t, 0, w.cleanup(context.Background()))
	assert.Equal(t, 2, repo.Len())

	w.ttl = -time.Second
	assert.Equal(t, 2, w.cleanup(context.Background()))
	assert.Zero(t, repo.Len())
}

func TestStartStopsOnCancel(t *testing.T) {
	sessions := &countingSessions{SessionService: service.NewSessionService(database.NewSessionRepository())}
	w := NewSessionCleanupWorker(sessions, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&sessions.calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
