package forum

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the forum repositories.
// Suitable for development and testing.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]User
	messageboards map[uuid.UUID]Messageboard
	topics        map[uuid.UUID]Topic
	privateTopics map[uuid.UUID]PrivateTopic
	members       map[uuid.UUID][]uuid.UUID // private topic -> member IDs
	posts         map[uuid.UUID][]Post      // topic -> posts
	privatePosts  map[uuid.UUID][]PrivatePost
	follows       map[uuid.UUID]map[uuid.UUID]Follow // topic -> user -> follow
}

// NewMemoryStore creates an empty in-memory forum store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uuid.UUID]User),
		messageboards: make(map[uuid.UUID]Messageboard),
		topics:        make(map[uuid.UUID]Topic),
		privateTopics: make(map[uuid.UUID]PrivateTopic),
		members:       make(map[uuid.UUID][]uuid.UUID),
		posts:         make(map[uuid.UUID][]Post),
		privatePosts:  make(map[uuid.UUID][]PrivatePost),
		follows:       make(map[uuid.UUID]map[uuid.UUID]Follow),
	}
}

// AddUser registers a user so UsersByIDs can resolve it. The memory store
// doubles as the host-side user directory in tests.
func (s *MemoryStore) AddUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *MemoryStore) UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *MemoryStore) CreateMessageboard(ctx context.Context, mb Messageboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageboards[mb.ID] = mb
	return nil
}

func (s *MemoryStore) CreateTopic(ctx context.Context, topic Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[topic.ID] = topic
	return nil
}

func (s *MemoryStore) TopicByID(ctx context.Context, topicID uuid.UUID) (*Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topic, ok := s.topics[topicID]
	if !ok {
		return nil, ErrTopicNotFound
	}
	return &topic, nil
}

func (s *MemoryStore) Follow(ctx context.Context, userID, topicID uuid.UUID, reason FollowReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byUser, ok := s.follows[topicID]
	if !ok {
		byUser = make(map[uuid.UUID]Follow)
		s.follows[topicID] = byUser
	}
	if existing, ok := byUser[userID]; ok {
		// A manual follow is sticky; auto-follows never overwrite it.
		if existing.Reason == FollowReasonManual || reason != FollowReasonManual {
			return nil
		}
	}
	byUser[userID] = Follow{UserID: userID, TopicID: topicID, Reason: reason, CreatedAt: time.Now()}
	return nil
}

func (s *MemoryStore) Unfollow(ctx context.Context, userID, topicID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if byUser, ok := s.follows[topicID]; ok {
		delete(byUser, userID)
	}
	return nil
}

func (s *MemoryStore) FollowersOf(ctx context.Context, topicID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byUser := s.follows[topicID]
	ids := make([]uuid.UUID, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, post Post) error {
	if post.ID == uuid.Nil || post.TopicID == uuid.Nil || post.AuthorID == uuid.Nil {
		return ErrInvalidPost
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.TopicID] = append(s.posts[post.TopicID], post)
	return nil
}

func (s *MemoryStore) PostsInTopic(ctx context.Context, topicID uuid.UUID) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]Post, len(s.posts[topicID]))
	copy(posts, s.posts[topicID])
	SortPosts(posts)
	return posts, nil
}

func (s *MemoryStore) CreatePrivateTopic(ctx context.Context, topic PrivateTopic, memberIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.privateTopics[topic.ID] = topic
	s.members[topic.ID] = append([]uuid.UUID(nil), memberIDs...)
	return nil
}

func (s *MemoryStore) AddMember(ctx context.Context, privateTopicID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.privateTopics[privateTopicID]; !ok {
		return ErrPrivateTopicNotFound
	}
	for _, id := range s.members[privateTopicID] {
		if id == userID {
			return nil
		}
	}
	s.members[privateTopicID] = append(s.members[privateTopicID], userID)
	return nil
}

func (s *MemoryStore) MembersOf(ctx context.Context, privateTopicID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.privateTopics[privateTopicID]; !ok {
		return nil, ErrPrivateTopicNotFound
	}
	return append([]uuid.UUID(nil), s.members[privateTopicID]...), nil
}

func (s *MemoryStore) CreatePrivatePost(ctx context.Context, post PrivatePost) error {
	if post.ID == uuid.Nil || post.PrivateTopicID == uuid.Nil || post.AuthorID == uuid.Nil {
		return ErrInvalidPost
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.privatePosts[post.PrivateTopicID] = append(s.privatePosts[post.PrivateTopicID], post)
	return nil
}

func (s *MemoryStore) PostsInPrivateTopic(ctx context.Context, privateTopicID uuid.UUID) ([]PrivatePost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]PrivatePost, len(s.privatePosts[privateTopicID]))
	copy(posts, s.privatePosts[privateTopicID])
	SortPrivatePosts(posts)
	return posts, nil
}
