package usercache

import (
	"context"
	"errors"
	"reflect"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-user-cache/entity"
	"github.com/goliatone/go-user-cache/pkg/testsupport"
)

var jack = entity.User{ID: "u1", Name: "jack", Age: 28, Mobile: "12345678"}

func newTestService(t *testing.T, opts ...Option) (*Service, *testsupport.MemoryUserStore, *testsupport.FakeCache[entity.User]) {
	t.Helper()

	users := testsupport.LoadUsers(t, testsupport.FixturePath("users.json"))
	st := testsupport.NewMemoryUserStore(users...)
	c := testsupport.NewFakeCache[entity.User]()
	return NewService(st, c, opts...), st, c
}

func TestService_Save_WritesThrough(t *testing.T) {
	svc, st, c := newTestService(t)
	ctx := context.Background()

	user := entity.User{ID: "u3", Name: "tom", Age: 40, Mobile: "555"}
	saved, err := svc.Save(ctx, user)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if *saved != user {
		t.Errorf("Save() = %+v, want %+v", *saved, user)
	}

	cached, ok := c.Peek("user::u3")
	if !ok {
		t.Fatal("expected saved user in cache under user::u3")
	}
	if cached != user {
		t.Errorf("cached = %+v, want %+v", cached, user)
	}

	// A read right after a write is a hit.
	if _, err := svc.FindUser(ctx, "u3"); err != nil {
		t.Fatalf("FindUser() failed: %v", err)
	}
	if st.Calls("FindByID") != 0 {
		t.Errorf("expected no store reads after write-through, got %d", st.Calls("FindByID"))
	}
}

func TestService_Save_CachesStoredRepresentation(t *testing.T) {
	svc, _, c := newTestService(t)

	saved, err := svc.Save(context.Background(), entity.User{Name: "anon", Age: 1})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected store to assign an id")
	}

	cached, ok := c.Peek(svc.Keyspace().Key(saved.ID))
	if !ok {
		t.Fatalf("expected cache entry under the assigned id %q", saved.ID)
	}
	if cached.ID != saved.ID {
		t.Errorf("cached id = %q, want %q", cached.ID, saved.ID)
	}
	if _, ok := c.Peek("user::"); ok {
		t.Error("nothing may be cached under the empty request id")
	}
}

func TestService_Save_Idempotent(t *testing.T) {
	svc, st, c := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, jack)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	stored1, _ := st.Get("u1")
	cached1, _ := c.Peek("user::u1")

	second, err := svc.Save(ctx, jack)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	stored2, _ := st.Get("u1")
	cached2, _ := c.Peek("user::u1")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
	if stored1 != stored2 || cached1 != cached2 {
		t.Errorf("state differs after repeated save: store %+v/%+v cache %+v/%+v", stored1, stored2, cached1, cached2)
	}
	if c.Len() != 1 {
		t.Errorf("expected a single cache entry, got %d", c.Len())
	}
}

func TestService_Save_NilResultNotCached(t *testing.T) {
	svc, st, c := newTestService(t)
	ctx := context.Background()

	previous := entity.User{ID: "u1", Name: "old"}
	c.Set(ctx, "user::u1", previous)
	c.ClearCalls()
	st.SaveReturnsNil = true

	saved, err := svc.Save(ctx, jack)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if saved != nil {
		t.Errorf("expected nil result, got %+v", saved)
	}

	if calls := c.Calls(); len(calls) != 0 {
		t.Errorf("expected cache untouched, got calls %v", calls)
	}
	if cached, _ := c.Peek("user::u1"); cached != previous {
		t.Errorf("cache entry changed: %+v", cached)
	}
}

func TestService_Save_StoreError(t *testing.T) {
	svc, st, c := newTestService(t)
	boom := errors.New("constraint violation")
	st.SaveErr = boom

	_, err := svc.Save(context.Background(), jack)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}

	var gerr *goerrors.Error
	if !errors.As(err, &gerr) || gerr.Category != goerrors.CategoryInternal {
		t.Errorf("expected internal category error, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("cache must not be written when the store fails")
	}
}

func TestService_FindUser_ReadThroughFill(t *testing.T) {
	svc, st, c := newTestService(t)

	got, err := svc.FindUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindUser() failed: %v", err)
	}
	if *got != jack {
		t.Errorf("FindUser() = %+v, want %+v", *got, jack)
	}

	cached, ok := c.Peek("user::u1")
	if !ok || cached != jack {
		t.Errorf("expected cache to hold %+v under user::u1, got %+v (ok=%v)", jack, cached, ok)
	}
	if st.Calls("FindByID") != 1 {
		t.Errorf("expected one store read, got %d", st.Calls("FindByID"))
	}
}

func TestService_FindUser_HitBypassesStore(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.FindUser(ctx, "u1"); err != nil {
		t.Fatalf("FindUser() failed: %v", err)
	}

	st.Put(entity.User{ID: "u1", Name: "changed", Age: 99, Mobile: "0"})

	got, err := svc.FindUser(ctx, "u1")
	if err != nil {
		t.Fatalf("FindUser() failed: %v", err)
	}
	if *got != jack {
		t.Errorf("expected stale cached value %+v, got %+v", jack, *got)
	}
	if st.Calls("FindByID") != 1 {
		t.Errorf("expected the hit to skip the store, got %d reads", st.Calls("FindByID"))
	}
}

func TestService_FindUser_AbsentNotCached(t *testing.T) {
	svc, st, c := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := svc.FindUser(ctx, "missing")
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if got != nil {
			t.Errorf("expected nil user, got %+v", got)
		}
	}

	if c.Len() != 0 {
		t.Errorf("absent results must not be cached, got %d entries", c.Len())
	}
	if st.Calls("FindByID") != 2 {
		t.Errorf("expected every miss to reach the store, got %d", st.Calls("FindByID"))
	}
}

func TestService_FindUser_ReturnsCopy(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()

	got, err := svc.FindUser(ctx, "u1")
	if err != nil {
		t.Fatalf("FindUser() failed: %v", err)
	}
	got.Name = "mutated"

	if cached, _ := c.Peek("user::u1"); cached.Name != "jack" {
		t.Errorf("caller mutation leaked into cache: %+v", cached)
	}
}

func TestService_FindUser_StoreError(t *testing.T) {
	svc, st, c := newTestService(t)
	boom := errors.New("connection refused")
	st.FindErr = boom

	_, err := svc.FindUser(context.Background(), "u1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if errors.Is(err, ErrUserNotFound) {
		t.Error("store failure must not look like an absent user")
	}
	if c.Len() != 0 {
		t.Error("nothing may be cached after a store failure")
	}
}

func TestService_DeleteUser_Convergence(t *testing.T) {
	svc, st, c := newTestService(t)
	ctx := context.Background()

	if _, err := svc.FindUser(ctx, "u1"); err != nil {
		t.Fatalf("FindUser() failed: %v", err)
	}

	if err := svc.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser() failed: %v", err)
	}

	if st.Has("u1") {
		t.Error("expected user removed from store")
	}
	if _, ok := c.Peek("user::u1"); ok {
		t.Error("expected cache entry evicted")
	}

	if _, err := svc.FindUser(ctx, "u1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("lookup after delete must not repopulate the cache")
	}
}

func TestService_DeleteUser_Absent(t *testing.T) {
	svc, st, c := newTestService(t)
	ctx := context.Background()

	// A stale entry for an id the store no longer has is still evicted.
	c.Set(ctx, "user::does-not-exist", entity.User{ID: "does-not-exist"})
	c.ClearCalls()

	if err := svc.DeleteUser(ctx, "does-not-exist"); err != nil {
		t.Fatalf("DeleteUser() of absent id should not fail, got %v", err)
	}

	if st.Calls("Delete") != 0 {
		t.Errorf("expected no store delete for absent id, got %d", st.Calls("Delete"))
	}
	want := []string{"Delete:user::does-not-exist"}
	if calls := c.Calls(); !reflect.DeepEqual(calls, want) {
		t.Errorf("cache calls = %v, want %v", calls, want)
	}
	if c.Len() != 0 {
		t.Error("expected stale entry evicted")
	}
}

func TestService_DeleteUser_StoreErrorSkipsEviction(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testsupport.MemoryUserStore, error)
	}{
		{
			name:  "lookup fails",
			setup: func(st *testsupport.MemoryUserStore, err error) { st.FindErr = err },
		},
		{
			name:  "delete fails",
			setup: func(st *testsupport.MemoryUserStore, err error) { st.DeleteErr = err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, c := newTestService(t)
			ctx := context.Background()
			c.Set(ctx, "user::u1", jack)

			boom := errors.New("db down")
			tt.setup(st, boom)

			if err := svc.DeleteUser(ctx, "u1"); !errors.Is(err, boom) {
				t.Fatalf("expected store error, got %v", err)
			}
			if _, ok := c.Peek("user::u1"); !ok {
				t.Error("cache must not be evicted when the store step fails")
			}
		})
	}
}

func TestService_DegradePolicy(t *testing.T) {
	cacheErr := errors.New("redis: connection pool timeout")

	t.Run("save keeps store result", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		svc, st, c := newTestService(t, WithLogger(zap.New(core)))
		c.SetErr = cacheErr

		saved, err := svc.Save(context.Background(), jack)
		if err != nil {
			t.Fatalf("Save() should degrade, got %v", err)
		}
		if *saved != jack || !st.Has("u1") {
			t.Error("expected the user persisted and returned")
		}
		assertWarned(t, logs, "save", "user::u1")
	})

	t.Run("find falls back to store", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		svc, _, c := newTestService(t, WithLogger(zap.New(core)))
		c.GetErr = cacheErr
		c.SetErr = cacheErr

		got, err := svc.FindUser(context.Background(), "u1")
		if err != nil {
			t.Fatalf("FindUser() should degrade, got %v", err)
		}
		if *got != jack {
			t.Errorf("FindUser() = %+v, want %+v", *got, jack)
		}
		if logs.Len() != 2 {
			t.Errorf("expected a warning for get and set, got %d", logs.Len())
		}
		assertWarned(t, logs, "find", "user::u1")
	})

	t.Run("find still reports absent users", func(t *testing.T) {
		svc, _, c := newTestService(t)
		c.GetErr = cacheErr

		if _, err := svc.FindUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("delete ignores eviction failure", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		svc, st, c := newTestService(t, WithLogger(zap.New(core)))
		c.DeleteErr = cacheErr

		if err := svc.DeleteUser(context.Background(), "u1"); err != nil {
			t.Fatalf("DeleteUser() should degrade, got %v", err)
		}
		if st.Has("u1") {
			t.Error("expected user deleted from store")
		}
		assertWarned(t, logs, "delete", "user::u1")
	})
}

func TestService_StrictPolicy(t *testing.T) {
	cacheErr := errors.New("redis: connection refused")

	tests := []struct {
		name   string
		inject func(*testsupport.FakeCache[entity.User])
		call   func(*Service) error
	}{
		{
			name:   "save",
			inject: func(c *testsupport.FakeCache[entity.User]) { c.SetErr = cacheErr },
			call: func(s *Service) error {
				_, err := s.Save(context.Background(), jack)
				return err
			},
		},
		{
			name:   "find get",
			inject: func(c *testsupport.FakeCache[entity.User]) { c.GetErr = cacheErr },
			call: func(s *Service) error {
				_, err := s.FindUser(context.Background(), "u1")
				return err
			},
		},
		{
			name:   "find set",
			inject: func(c *testsupport.FakeCache[entity.User]) { c.SetErr = cacheErr },
			call: func(s *Service) error {
				_, err := s.FindUser(context.Background(), "u1")
				return err
			},
		},
		{
			name:   "delete",
			inject: func(c *testsupport.FakeCache[entity.User]) { c.DeleteErr = cacheErr },
			call: func(s *Service) error {
				return s.DeleteUser(context.Background(), "u1")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, c := newTestService(t, WithFailurePolicy(FailurePolicyStrict))
			tt.inject(c)

			err := tt.call(svc)
			if !errors.Is(err, cacheErr) {
				t.Fatalf("expected cache error, got %v", err)
			}

			var gerr *goerrors.Error
			if !errors.As(err, &gerr) || gerr.Category != goerrors.CategoryExternal {
				t.Errorf("expected external category error, got %v", err)
			}
		})
	}
}

func TestService_WithCacheName(t *testing.T) {
	svc, _, c := newTestService(t, WithCacheName("Accounts"))

	if _, err := svc.FindUser(context.Background(), "u1"); err != nil {
		t.Fatalf("FindUser() failed: %v", err)
	}
	if _, ok := c.Peek("accounts::u1"); !ok {
		t.Errorf("expected entry under accounts::u1, calls %v", c.Calls())
	}
}

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FailurePolicy
		wantErr bool
	}{
		{in: "", want: FailurePolicyDegrade},
		{in: "degrade", want: FailurePolicyDegrade},
		{in: "strict", want: FailurePolicyStrict},
		{in: "panic", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFailurePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFailurePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseFailurePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFailurePolicy_String(t *testing.T) {
	if got := FailurePolicyDegrade.String(); got != "degrade" {
		t.Errorf("FailurePolicyDegrade.String() = %q", got)
	}
	if got := FailurePolicyStrict.String(); got != "strict" {
		t.Errorf("FailurePolicyStrict.String() = %q", got)
	}
}

func assertWarned(t *testing.T, logs *observer.ObservedLogs, op, key string) {
	t.Helper()

	entries := logs.FilterField(zap.String("op", op)).All()
	if len(entries) == 0 {
		t.Fatalf("expected a warning for op %q, got %v", op, logs.All())
	}
	fields := entries[0].ContextMap()
	if fields["key"] != key {
		t.Errorf("warning key = %v, want %q", fields["key"], key)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %v", entries[0].Level)
	}
}
