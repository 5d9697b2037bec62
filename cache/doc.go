// Package cache provides the cache store contract and key layout used by the
// user service.
//
// # Overview
//
// This package exports:
//
//   - Store[T]: Get/Set/Delete by key, with misses reported separately from failures
//   - Pinger: optional health check implemented by remote backends
//   - Keyspace: builds "<name>::<id>" keys for one named cache
//   - NewStore[T]: constructs the backend selected in Config
//
// # Backends
//
// Two backends are available:
//
//   - memory: an in-process sturdyc client. Entries live for Memory.TTL, which
//     defaults to one year so that entries only disappear through explicit
//     Delete calls or capacity eviction.
//   - redis: a go-redis client. Values are encoded with msgpack (default) or
//     JSON. Redis.TTL of zero stores keys without expiry.
//
// # Basic Usage
//
//	cfg := cache.DefaultConfig()
//	cfg.Redis.Addr = "localhost:6379"
//
//	store, err := cache.NewStore[entity.User](ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	users := cache.NewKeyspace("user")
//	err = store.Set(ctx, users.Key(u.ID), u)
//
// # Key Layout
//
// Keys are the normalized cache name, KeySeparator ("::"), and the record id
// verbatim. The id is never transformed, so the key of a record is a pure
// function of its identity.
package cache
