package notifier

import (
	"context"
	"sync"

	"github.com/dmitrymomot/forumkit/pkg/forum"
)

// MockNotifier is an in-memory channel that records who it was asked to
// notify. It is exported for host-application test suites that want to
// assert fan-out behavior without a delivery backend.
type MockNotifier struct {
	mu sync.Mutex

	key string
	err error

	// Delivery log, in call order.
	UsersNotifiedOfNewPost        [][]forum.User
	UsersNotifiedOfNewPrivatePost [][]forum.User
}

// NewMockNotifier creates a mock channel with key "mock".
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{key: "mock"}
}

// NewMockNotifierWithKey creates a mock channel with a custom key, for
// tests that register several mocks side by side.
func NewMockNotifierWithKey(key string) *MockNotifier {
	return &MockNotifier{key: key}
}

// FailWith makes subsequent deliveries return err.
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockNotifier) Key() string       { return m.key }
func (m *MockNotifier) HumanName() string { return "Mock" }

func (m *MockNotifier) NewPost(ctx context.Context, post forum.Post, users []forum.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.UsersNotifiedOfNewPost = append(m.UsersNotifiedOfNewPost, append([]forum.User(nil), users...))
	return nil
}

func (m *MockNotifier) NewPrivatePost(ctx context.Context, post forum.PrivatePost, users []forum.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.UsersNotifiedOfNewPrivatePost = append(m.UsersNotifiedOfNewPrivatePost, append([]forum.User(nil), users...))
	return nil
}

// NotifiedOfNewPost returns the flattened list of users delivered via
// NewPost, across all calls.
func (m *MockNotifier) NotifiedOfNewPost() []forum.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []forum.User
	for _, batch := range m.UsersNotifiedOfNewPost {
		users = append(users, batch...)
	}
	return users
}

// NotifiedOfNewPrivatePost returns the flattened list of users delivered
// via NewPrivatePost, across all calls.
func (m *MockNotifier) NotifiedOfNewPrivatePost() []forum.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []forum.User
	for _, batch := range m.UsersNotifiedOfNewPrivatePost {
		users = append(users, batch...)
	}
	return users
}
