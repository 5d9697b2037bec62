package usercache

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-user-cache/cache"
	"github.com/goliatone/go-user-cache/entity"
	"github.com/goliatone/go-user-cache/store"
)

// DefaultCacheName is the cache namespace used for users.
const DefaultCacheName = "user"

// ErrUserNotFound is returned by FindUser when neither the cache nor the store holds the id.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithCode(404).
	WithTextCode("USER_NOT_FOUND")

// FailurePolicy decides what happens when the cache store returns an error.
type FailurePolicy int

const (
	// FailurePolicyDegrade logs cache errors and serves from the persistent store.
	FailurePolicyDegrade FailurePolicy = iota
	// FailurePolicyStrict fails the operation on any cache error.
	FailurePolicyStrict
)

// String returns the configuration name of the policy.
func (p FailurePolicy) String() string {
	if p == FailurePolicyStrict {
		return "strict"
	}
	return "degrade"
}

// ParseFailurePolicy maps "degrade" and "strict" to their policy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "degrade":
		return FailurePolicyDegrade, nil
	case "strict":
		return FailurePolicyStrict, nil
	default:
		return FailurePolicyDegrade, goerrors.New("unknown cache failure policy "+s, goerrors.CategoryValidation)
	}
}

// Service owns the consistency policy between the persistent store (system of
// record) and the cache store (derived, invalidatable).
type Service struct {
	store  store.UserStore
	cache  cache.Store[entity.User]
	keys   cache.Keyspace
	policy FailurePolicy
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for cache degradation and hit/miss events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFailurePolicy sets the cache failure policy. The default is FailurePolicyDegrade.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithCacheName overrides DefaultCacheName.
func WithCacheName(name string) Option {
	return func(s *Service) {
		s.keys = cache.NewKeyspace(name)
	}
}

// NewService wires a Service over the given stores.
func NewService(userStore store.UserStore, cacheStore cache.Store[entity.User], opts ...Option) *Service {
	s := &Service{
		store:  userStore,
		cache:  cacheStore,
		keys:   cache.NewKeyspace(DefaultCacheName),
		policy: FailurePolicyDegrade,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keyspace returns the keyspace the service caches users under.
func (s *Service) Keyspace() cache.Keyspace {
	return s.keys
}

// Save persists user and writes the stored representation to the cache under
// its id. A nil result from the store leaves the cache untouched.
func (s *Service) Save(ctx context.Context, user entity.User) (*entity.User, error) {
	saved, err := s.store.Save(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "save user")
	}
	if saved == nil {
		return nil, nil
	}

	key := s.keys.Key(saved.ID)
	if err := s.cache.Set(ctx, key, *saved); err != nil {
		if err := s.cacheFailure("save", key, err); err != nil {
			return nil, err
		}
	}

	return saved, nil
}

// FindUser returns the cached user for userID, falling back to the store on a
// miss. Found records are cached; absent ones are not.
func (s *Service) FindUser(ctx context.Context, userID string) (*entity.User, error) {
	key := s.keys.Key(userID)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		if err := s.cacheFailure("find", key, err); err != nil {
			return nil, err
		}
	}
	if ok {
		s.logger.Debug("cache hit", zap.String("key", key))
		return &cached, nil
	}
	s.logger.Debug("cache miss", zap.String("key", key))

	user, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "find user")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.cache.Set(ctx, key, *user); err != nil {
		if err := s.cacheFailure("find", key, err); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// DeleteUser removes userID from the store when present and evicts its cache
// entry in every case. A store failure skips the eviction.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.store.FindByID(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "delete user")
	default:
		if err := s.store.Delete(ctx, userID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "delete user")
		}
	}

	key := s.keys.Key(userID)
	if err := s.cache.Delete(ctx, key); err != nil {
		return s.cacheFailure("delete", key, err)
	}

	return nil
}

// cacheFailure applies the failure policy: nil means the caller continues.
func (s *Service) cacheFailure(op, key string, err error) error {
	if s.policy == FailurePolicyStrict {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "cache "+op)
	}

	s.logger.Warn("cache unavailable, continuing with store",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return nil
}
