package cache

import (
	"strings"
	"unicode"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Keyspace builds the keys of one named cache, e.g. "user::u1".
type Keyspace struct {
	name string
}

// NewKeyspace returns a keyspace for the given cache name. The name is
// normalized to snake_case so that it is safe as a Redis key prefix.
func NewKeyspace(name string) Keyspace {
	return Keyspace{name: toSnake(name)}
}

// Name returns the normalized cache name.
func (k Keyspace) Name() string {
	return k.name
}

// Key returns the cache key for id. The id is used verbatim.
func (k Keyspace) Key(id string) string {
	if k.name == "" {
		return id
	}
	return k.name + KeySeparator + id
}

// Prefix returns the prefix shared by every key of the keyspace.
func (k Keyspace) Prefix() string {
	if k.name == "" {
		return ""
	}
	return k.name + KeySeparator
}

// toSnake converts the provided string to snake_case using ASCII-aware rules.
// Punctuation collapses into single underscores so the result can be used
// as a key prefix by any backend.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if (unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower) && !lastUnderscore {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}
