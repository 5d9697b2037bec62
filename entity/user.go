// Package entity holds the records persisted by the user service.
package entity

import "github.com/uptrace/bun"

// User is the only record served by this module. ID is the identity key for both
// the persistent store and the cache.
type User struct {
	bun.BaseModel `bun:"table:users" json:"-"`

	ID     string `bun:"id,pk" json:"id"`
	Name   string `bun:"name" json:"name"`
	Age    int    `bun:"age" json:"age"`
	Mobile string `bun:"mobile" json:"mobile"`
}
