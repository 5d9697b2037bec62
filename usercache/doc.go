// Package usercache implements the user service: a persistent store kept in
// sync with a cache store.
//
// # Caching Behavior
//
// The service applies three rules, all keyed by the user id through a
// cache.Keyspace ("user::<id>" by default):
//
//  1. Save writes through: the representation returned by the store is put
//     in the cache, so a read right after a write is a hit. A nil result
//     from the store is not cached.
//  2. FindUser reads through: a hit is returned without touching the store;
//     on a miss the store is read and a found record is cached. Absent
//     records are never cached, so a later insert is visible immediately.
//  3. DeleteUser evicts: the record is removed from the store when present
//     and the cache key is evicted whether or not either held the id.
//
// Entries do not expire on their own. A record changed in the store behind
// the service's back keeps being served from the cache until the next Save
// or DeleteUser for that id.
//
// # Cache Failures
//
// With FailurePolicyDegrade (default) cache errors are logged and the store
// result is used. With FailurePolicyStrict any cache error fails the call.
// Store writes that already happened are not rolled back in either mode.
//
// # Concurrency
//
// The service holds no locks. Concurrent calls for the same id can
// interleave their store and cache steps, e.g. a FindUser that read the
// store before a concurrent DeleteUser can repopulate the cache after the
// eviction, leaving a stale entry until the next write for that id.
package usercache
