package service

import (
	"context"
	"io"
	"time"

	"github.com/ds124wfegd/autotagger/internal/database"
	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/ds124wfegd/autotagger/internal/pkg/kafka"
	"github.com/ds124wfegd/autotagger/internal/pkg/normalizer"
	"github.com/ds124wfegd/autotagger/internal/pkg/tagging"
	"golang.org/x/sync/singleflight"
)

type TaggingService interface {
	// Tag normalizes an upload and resolves its tags without touching any session.
	Tag(ctx context.Context, r io.Reader, lang entity.Language) (*entity.TaggingView, error)
	TagImage(ctx context.Context, session *entity.Session, r io.Reader) (*entity.TaggingView, error)
	ToggleLanguage(ctx context.Context, session *entity.Session) (*entity.TaggingView, error)
	Current(ctx context.Context, session *entity.Session) (*entity.TaggingView, error)
	Render(result entity.TagResult, lang entity.Language) entity.Presentation
}

type SessionService interface {
	// Session returns the stored session for id or creates a new one. The
	// second result reports whether a new session was created.
	Session(id, acceptLanguage string) (*entity.Session, bool)
	SelectProject(session *entity.Session, project entity.Project)
	PurgeIdle(ctx context.Context, ttl time.Duration) int
}

type Service struct {
	TaggingService
	SessionService
}

func NewService(norm normalizer.Normalizer, client tagging.Client, cache database.TagCache, sessions database.SessionRepository, producer kafka.Producer) *Service {
	return &Service{
		TaggingService: NewTaggingService(norm, client, cache, sessions, producer),
		SessionService: NewSessionService(sessions),
	}
}

type taggingService struct {
	normalizer normalizer.Normalizer
	client     tagging.Client
	cache      database.TagCache
	sessions   database.SessionRepository
	producer   kafka.Producer
	inflight   singleflight.Group
}

func NewTaggingService(norm normalizer.Normalizer, client tagging.Client, cache database.TagCache, sessions database.SessionRepository, producer kafka.Producer) TaggingService {
	if producer == nil {
		producer = kafka.NewLogProducer()
	}
	return &taggingService{
		normalizer: norm,
		client:     client,
		cache:      cache,
		sessions:   sessions,
		producer:   producer,
	}
}

type sessionService struct {
	repo database.SessionRepository
}

func NewSessionService(repo database.SessionRepository) SessionService {
	return &sessionService{repo: repo}
}
