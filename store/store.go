// Package store is the system of record for users.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-user-cache/entity"
)

// ErrNotFound is returned by FindByID when no user has the requested id.
var ErrNotFound = errors.New("user not found in store")

// UserStore persists users keyed by id.
type UserStore interface {
	// Save inserts or fully replaces the user with the same id and returns the
	// stored representation. Implementations may assign defaults, such as an id.
	Save(ctx context.Context, user entity.User) (*entity.User, error)
	// FindByID returns ErrNotFound when the id is absent.
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// Delete removes the user. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}
