package database

import (
	"sync"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
)

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func NewSessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]*entity.Session)}
}

// Get returns a copy, callers hand it back through Save.
func (r *memorySessionRepository) Get(id string) (*entity.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

func (r *memorySessionRepository) Save(session *entity.Session) {
	if session == nil || session.ID == "" {
		return
	}
	c := session.Clone()
	c.UpdatedAt = time.Now()

	r.mu.Lock()
	r.sessions[c.ID] = c
	r.mu.Unlock()
}

func (r *memorySessionRepository) PurgeIdle(before time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	purged := 0
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(before) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged
}

func (r *memorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
