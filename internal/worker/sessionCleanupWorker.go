package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/autotagger/internal/service"
	"github.com/sirupsen/logrus"
)

// SessionCleanupWorker periodically drops sessions idle for longer than ttl.
type SessionCleanupWorker struct {
	sessions service.SessionService
	interval time.Duration
	ttl      time.Duration
}

func NewSessionCleanupWorker(sessions service.SessionService, interval, ttl time.Duration) *SessionCleanupWorker {
	return &SessionCleanupWorker{
		sessions: sessions,
		interval: interval,
		ttl:      ttl,
	}
}

func (w *SessionCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.interval.String()).Info("Session cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Session cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *SessionCleanupWorker) cleanup(ctx context.Context) int {
	purged := w.sessions.PurgeIdle(ctx, w.ttl)
	if purged > 0 {
		logrus.Infof("Purged %d idle sessions", purged)
	} else {
		logrus.Debug("No idle sessions to purge")
	}
	return purged
}
