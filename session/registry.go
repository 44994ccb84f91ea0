package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry keeps the live sessions of the process. Nothing survives a
// restart.
type Registry struct {
	newSession func(id string) *Session
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(newSession func(id string) *Session) *Registry {
	return &Registry{
		newSession: newSession,
		now:        time.Now,
		sessions:   map[string]*Session{},
	}
}

// Get looks a session up by id and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

func (r *Registry) Create() *Session {
	s := r.newSession(uuid.NewString())
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops the sessions idle for longer than maxIdle and returns how
// many were dropped.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// SweepEvery runs Sweep until ctx is done.
func (r *Registry) SweepEvery(ctx context.Context, interval, maxIdle time.Duration, onSweep func(n int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}
