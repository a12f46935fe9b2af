package preferences

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type globalKey struct {
	userID      uuid.UUID
	notifierKey string
}

type messageboardKey struct {
	userID         uuid.UUID
	messageboardID uuid.UUID
	notifierKey    string
}

// MemoryStore is an in-memory implementation of Store.
// Suitable for development and testing.
type MemoryStore struct {
	mu             sync.RWMutex
	globalFollowed map[globalKey]bool
	globalPrivate  map[globalKey]bool
	boardFollowed  map[messageboardKey]bool
}

// NewMemoryStore creates an empty in-memory preference store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		globalFollowed: make(map[globalKey]bool),
		globalPrivate:  make(map[globalKey]bool),
		boardFollowed:  make(map[messageboardKey]bool),
	}
}

func (s *MemoryStore) GlobalForFollowedTopics(ctx context.Context, userID uuid.UUID, notifierKey string) (*bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.globalFollowed[globalKey{userID, notifierKey}]; ok {
		return &v, nil
	}
	return nil, nil
}

func (s *MemoryStore) GlobalForPrivateTopics(ctx context.Context, userID uuid.UUID, notifierKey string) (*bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.globalPrivate[globalKey{userID, notifierKey}]; ok {
		return &v, nil
	}
	return nil, nil
}

func (s *MemoryStore) MessageboardForFollowedTopics(ctx context.Context, userID, messageboardID uuid.UUID, notifierKey string) (*bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.boardFollowed[messageboardKey{userID, messageboardID, notifierKey}]; ok {
		return &v, nil
	}
	return nil, nil
}

func (s *MemoryStore) SetGlobalForFollowedTopics(ctx context.Context, userID uuid.UUID, notifierKey string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalFollowed[globalKey{userID, notifierKey}] = enabled
	return nil
}

func (s *MemoryStore) SetGlobalForPrivateTopics(ctx context.Context, userID uuid.UUID, notifierKey string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalPrivate[globalKey{userID, notifierKey}] = enabled
	return nil
}

func (s *MemoryStore) SetMessageboardForFollowedTopics(ctx context.Context, userID, messageboardID uuid.UUID, notifierKey string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boardFollowed[messageboardKey{userID, messageboardID, notifierKey}] = enabled
	return nil
}
