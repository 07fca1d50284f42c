package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func (s *sessionService) Session(id, acceptLanguage string) (*entity.Session, bool) {
	if id != "" {
		if session, ok := s.repo.Get(id); ok {
			return session, false
		}
	}

	session := entity.NewSession(uuid.NewString(), entity.NegotiateLanguage(acceptLanguage))
	s.repo.Save(session)

	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"language":   session.Language,
	}).Debug("Session created")
	return session, true
}

func (s *sessionService) SelectProject(session *entity.Session, project entity.Project) {
	session.Project = project
	s.repo.Save(session)
}

// PurgeIdle drops sessions not used within ttl.
func (s *sessionService) PurgeIdle(ctx context.Context, ttl time.Duration) int {
	if ctx.Err() != nil {
		return 0
	}
	return s.repo.PurgeIdle(time.Now().Add(-ttl))
}
