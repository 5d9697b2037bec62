package testsupport

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-user-cache/entity"
	"github.com/goliatone/go-user-cache/store"
)

// MemoryUserStore is an in-memory store.UserStore that counts calls.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]entity.User
	calls map[string]int

	// SaveErr, FindErr and DeleteErr are returned by the matching method when set.
	SaveErr   error
	FindErr   error
	DeleteErr error

	// SaveReturnsNil makes Save report success without a record.
	SaveReturnsNil bool
}

var _ store.UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore returns a store seeded with users.
func NewMemoryUserStore(users ...entity.User) *MemoryUserStore {
	s := &MemoryUserStore{
		users: make(map[string]entity.User),
		calls: make(map[string]int),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *MemoryUserStore) track(method string) {
	s.calls[method]++
}

// Calls returns how many times method was invoked.
func (s *MemoryUserStore) Calls(method string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[method]
}

// Put writes a user directly, bypassing any service in front of the store.
func (s *MemoryUserStore) Put(user entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

// Has reports whether id is stored.
func (s *MemoryUserStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// Get returns the stored user for id.
func (s *MemoryUserStore) Get(id string) (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *MemoryUserStore) Save(_ context.Context, user entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("Save")

	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	if s.SaveReturnsNil {
		return nil, nil
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("FindByID")

	if s.FindErr != nil {
		return nil, s.FindErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("Delete")

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.users, id)
	return nil
}

// FakeCache is a map-backed cache.Store that records operations and can
// inject errors per operation.
type FakeCache[T any] struct {
	mu      sync.Mutex
	entries map[string]T
	calls   []string

	GetErr    error
	SetErr    error
	DeleteErr error
}

// NewFakeCache returns an empty cache.
func NewFakeCache[T any]() *FakeCache[T] {
	return &FakeCache[T]{entries: make(map[string]T)}
}

func (c *FakeCache[T]) Get(_ context.Context, key string) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "Get:"+key)

	var zero T
	if c.GetErr != nil {
		return zero, false, c.GetErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *FakeCache[T]) Set(_ context.Context, key string, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "Set:"+key)

	if c.SetErr != nil {
		return c.SetErr
	}
	c.entries[key] = value
	return nil
}

func (c *FakeCache[T]) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "Delete:"+key)

	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	delete(c.entries, key)
	return nil
}

// Peek returns the entry stored under key without recording a call.
func (c *FakeCache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the number of entries.
func (c *FakeCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Calls returns the recorded operations as "Op:key".
func (c *FakeCache[T]) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// ClearCalls forgets recorded operations.
func (c *FakeCache[T]) ClearCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}
