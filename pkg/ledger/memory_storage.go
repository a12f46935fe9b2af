package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type entryKey struct {
	postID uuid.UUID
	userID uuid.UUID
}

type readStateKey struct {
	privateTopicID uuid.UUID
	userID         uuid.UUID
}

// MemoryStore is an in-memory implementation of Store. The mutex stands in
// for the uniqueness constraint a database provides, so CreateIfAbsent
// keeps its check-then-insert atomicity under concurrent fan-out runs.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[entryKey]struct{}
	readStates map[readStateKey]ReadState
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:    make(map[entryKey]struct{}),
		readStates: make(map[readStateKey]ReadState),
	}
}

func (s *MemoryStore) CreateIfAbsent(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entryKey{postID, userID}
	if _, exists := s.entries[key]; exists {
		return false, nil
	}
	s.entries[key] = struct{}{}
	return true, nil
}

func (s *MemoryStore) NotifiedUserIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uuid.UUID
	for key := range s.entries {
		if key.postID == postID {
			ids = append(ids, key.userID)
		}
	}
	return ids, nil
}

func (s *MemoryStore) FindReadState(ctx context.Context, privateTopicID, userID uuid.UUID) (*ReadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.readStates[readStateKey{privateTopicID, userID}]; ok {
		return &state, nil
	}
	return nil, nil
}

func (s *MemoryStore) UpsertReadState(ctx context.Context, state ReadState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readStates[readStateKey{state.PrivateTopicID, state.UserID}] = state
	return nil
}

func (s *MemoryStore) DeleteReadState(ctx context.Context, privateTopicID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.readStates, readStateKey{privateTopicID, userID})
	return nil
}
