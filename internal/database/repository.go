package database

import (
	"context"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
)

// TagCache maps a payload key to the tagging service result for it.
type TagCache interface {
	Get(ctx context.Context, key string) (*entity.TagResult, bool, error)
	Set(ctx context.Context, key string, result *entity.TagResult) error
	Len(ctx context.Context) (int64, error)
}

type SessionRepository interface {
	Get(id string) (*entity.Session, bool)
	Save(session *entity.Session)
	PurgeIdle(before time.Time) int
	Len() int
}
