package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/ds124wfegd/autotagger/internal/pkg/presenter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

func (s *taggingService) Tag(ctx context.Context, r io.Reader, lang entity.Language) (*entity.TaggingView, error) {
	payload, err := s.normalizer.Normalize(r)
	if err != nil {
		return nil, err
	}

	result, cached, err := s.lookup(ctx, payload)
	if err != nil {
		return nil, err
	}
	return s.view(payload, *result, lang, cached), nil
}

func (s *taggingService) TagImage(ctx context.Context, session *entity.Session, r io.Reader) (*entity.TaggingView, error) {
	view, err := s.Tag(ctx, r, session.Language)
	if err != nil {
		// a failed upload must not leave the previous image on the page
		session.Payload = entity.EncodedPayload{}
		s.sessions.Save(session)
		return nil, err
	}

	session.Payload = view.Payload
	session.Project = entity.ProjectAutoTagging
	s.sessions.Save(session)
	return view, nil
}

// ToggleLanguage flips the session language and re-renders the last result
// from the cache. The tagging service is never called.
func (s *taggingService) ToggleLanguage(ctx context.Context, session *entity.Session) (*entity.TaggingView, error) {
	session.Language = session.Language.Toggle()
	s.sessions.Save(session)

	if session.Payload.Empty() {
		return nil, nil
	}
	return s.Current(ctx, session)
}

func (s *taggingService) Current(ctx context.Context, session *entity.Session) (*entity.TaggingView, error) {
	if session.Payload.Empty() {
		return nil, entity.ErrNothingToRender
	}

	result, ok, err := s.cache.Get(ctx, session.Payload.Key())
	if err != nil {
		logrus.WithError(err).Warn("Tag cache lookup failed")
		return nil, entity.ErrNothingToRender
	}
	if !ok {
		return nil, entity.ErrNothingToRender
	}
	return s.view(session.Payload, *result, session.Language, true), nil
}

func (s *taggingService) Render(result entity.TagResult, lang entity.Language) entity.Presentation {
	return presenter.Present(result, lang)
}

// lookup returns the cached result for payload or fetches it. Concurrent
// lookups of one payload share a single remote call, and only successful
// results are stored.
func (s *taggingService) lookup(ctx context.Context, payload entity.EncodedPayload) (*entity.TagResult, bool, error) {
	key := payload.Key()

	cached, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		logrus.WithError(err).WithField("payload_key", key).Warn("Tag cache lookup failed, calling tagging service")
	case ok:
		return cached, true, nil
	}

	// the shared call must outlive any single caller, each caller only
	// stops waiting when its own context ends
	flightCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		// an earlier flight may have finished since the first lookup
		if cached, ok, err := s.cache.Get(flightCtx, key); err == nil && ok {
			return cached, nil
		}
		result, err := s.client.FetchTags(flightCtx, payload)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(flightCtx, key, result); err != nil {
			logrus.WithError(err).WithField("payload_key", key).Warn("Could not cache tag result")
		}
		s.publish(flightCtx, key, result)
		return result, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, false, &entity.TransportError{Err: ctx.Err()}
	case res = <-ch:
	}
	if res.Err != nil {
		logrus.WithFields(logrus.Fields{
			"payload_key": key,
			"error":       res.Err,
		}).Error("Tagging failed")
		return nil, false, res.Err
	}

	result := res.Val.(*entity.TagResult).Clone()
	return &result, false, nil
}

func (s *taggingService) publish(ctx context.Context, key string, result *entity.TagResult) {
	event := entity.TaggedEvent{
		PayloadKey: key,
		TagCount:   len(result.EngTags.Without(entity.TitleKeyEN)),
		TaggedAt:   time.Now().UTC(),
	}
	event.TitleEN, _ = result.EngTags.Get(entity.TitleKeyEN)
	event.TitleAR, _ = result.ArTags.Get(entity.TitleKeyEN)
	if event.TitleAR == "" {
		event.TitleAR, _ = result.ArTags.Get(entity.TitleKeyAR)
	}

	if err := s.producer.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).WithField("payload_key", key).Warn("Failed to publish tagging event")
	}
}

func (s *taggingService) view(payload entity.EncodedPayload, result entity.TagResult, lang entity.Language, cached bool) *entity.TaggingView {
	return &entity.TaggingView{
		Payload:      payload,
		PayloadKey:   payload.Key(),
		Width:        payload.Width,
		Height:       payload.Height,
		Presentation: s.Render(result, lang),
		Cached:       cached,
	}
}
