// Package store keeps the last Spatial DOM snapshot per session so the diff
// flow can compare consecutive parses without the caller holding state.
package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/browsyhq/browsy-core/api/schemas"
)

// Store is a thread-safe in-memory snapshot store keyed by session ID.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]*schemas.SpatialDOM
	log       *zap.Logger
}

func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		snapshots: make(map[string]*schemas.SpatialDOM),
		log:       logger.Named("store"),
	}
}

// NewSession allocates a fresh session ID with no snapshot.
func (s *Store) NewSession() string {
	return uuid.NewString()
}

// Put replaces the session's snapshot and returns the previous one, if any.
func (s *Store) Put(sessionID string, dom *schemas.SpatialDOM) *schemas.SpatialDOM {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshots[sessionID]
	s.snapshots[sessionID] = dom
	s.log.Debug("stored snapshot",
		zap.String("session", sessionID),
		zap.Int("elements", len(dom.Els)),
		zap.Bool("replaced", prev != nil),
	)
	return prev
}

// Get returns the session's snapshot.
func (s *Store) Get(sessionID string) (*schemas.SpatialDOM, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dom, ok := s.snapshots[sessionID]
	if !ok {
		return nil, fmt.Errorf("no snapshot for session %q", sessionID)
	}
	return dom, nil
}

// Delete discards the session's snapshot.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
}

// Len reports the number of sessions holding a snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
