package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-user-cache/entity"
)

var _ UserStore = (*BunUserStore)(nil)

// BunUserStore implements UserStore over a bun database handle.
type BunUserStore struct {
	db    bun.IDB
	newID func() string
}

// NewBunUserStore returns a store working on db, which may be a *bun.DB or a bun.Tx.
func NewBunUserStore(db bun.IDB) *BunUserStore {
	return &BunUserStore{db: db, newID: uuid.NewString}
}

// Save upserts the user by id. Users without an id get a random UUID.
func (s *BunUserStore) Save(ctx context.Context, user entity.User) (*entity.User, error) {
	if user.ID == "" {
		user.ID = s.newID()
	}

	_, err := s.db.NewInsert().
		Model(&user).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("age = EXCLUDED.age").
		Set("mobile = EXCLUDED.mobile").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("save user %s: %w", user.ID, err)
	}

	return &user, nil
}

// FindByID loads the user with the given id.
func (s *BunUserStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	user := &entity.User{ID: id}

	err := s.db.NewSelect().Model(user).WherePK().Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	return user, nil
}

// Delete removes the user with the given id.
func (s *BunUserStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.NewDelete().Model(&entity.User{ID: id}).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}
