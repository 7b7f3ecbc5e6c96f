package matrix

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

// Source reads the current attendance projection of a wedding from the store.
type Source interface {
	Load(ctx context.Context, weddingID uint) (roster.Schema, []roster.Row, error)
}

// NewRegistry returns a registry whose sessions edit the attendance of view.
func NewRegistry(logger *slog.Logger, view string, source Source, writer writer, invalidator roster.Invalidator) *Registry {
	return &Registry{
		logger:      logger,
		view:        view,
		source:      source,
		writer:      writer,
		invalidator: invalidator,
		sessions:    make(map[uuid.UUID]*Session),
	}
}

// Registry keeps the open matrix sessions.
type Registry struct {
	logger      *slog.Logger
	view        string
	source      Source
	writer      writer
	invalidator roster.Invalidator

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func (r *Registry) Open(ctx context.Context, weddingID uint) (*Session, error) {
	load := func(ctx context.Context) (roster.Schema, []roster.Row, error) {
		return r.source.Load(ctx, weddingID)
	}
	key := roster.CacheKey{WeddingID: weddingID, View: r.view}
	session, err := newSession(ctx, r.logger, key, r.writer, r.invalidator, load)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	r.logger.InfoContext(ctx, "Matrix session opened", "session", session.ID, "weddingId", weddingID)
	return session, nil
}

func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, errdef.NewNotFound("matrix session not found: %s", id)
	}
	return session, nil
}

// Discard closes a session, dropping its pending changes. A committing session can't be discarded.
func (r *Registry) Discard(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return errdef.NewNotFound("matrix session not found: %s", id)
	}
	if session.State() == Committing {
		return errdef.NewConflict("matrix session %s is committing", id)
	}
	delete(r.sessions, id)
	return nil
}

// Expire discards every clean or dirty session idle for longer than maxIdle.
func (r *Registry) Expire(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	deadline := time.Now().Add(-maxIdle)
	var expired int
	for id, session := range r.sessions {
		if session.State() != Committing && session.idleSince().Before(deadline) {
			delete(r.sessions, id)
			expired++
		}
	}
	return expired
}

// RunExpiry expires idle sessions every interval until ctx is done.
func (r *Registry) RunExpiry(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Expire(maxIdle); n > 0 {
				r.logger.InfoContext(ctx, "Expired idle matrix sessions", "count", n)
			}
		}
	}
}
