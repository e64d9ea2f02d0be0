// Package cache provides durable key-value storage for resolved icons.
//
// Keys are validated before any I/O. A TTL of 0 means the entry never
// expires, a negative TTL deletes the key. Expiry is enforced lazily: a read
// that finds an expired entry deletes it and reports a miss.
package cache

import (
	"strings"
	"time"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

// ReservedChars may not appear in cache keys.
const ReservedChars = `{}()/\@:`

// Cache stores serialized values by key.
type Cache interface {
	// Get returns the value for key. ok is false on a miss or expired entry.
	Get(key string) (value []byte, ok bool, err error)
	// Set stores value with the cache's default TTL.
	Set(key string, value []byte) error
	// SetWithTTL stores value for ttl. Zero never expires, negative deletes key.
	SetWithTTL(key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Has reports whether key holds a live entry.
	Has(key string) bool
	// Clear removes every entry.
	Clear() error
}

// ValidateKey reports an InvalidKey error for empty keys or keys containing
// reserved characters.
func ValidateKey(key string) error {
	if key == "" {
		return iconerrors.Newf("cache.ValidateKey", iconerrors.KindInvalidKey, key, "key is empty")
	}
	if i := strings.IndexAny(key, ReservedChars); i >= 0 {
		return iconerrors.Newf("cache.ValidateKey", iconerrors.KindInvalidKey, key, "reserved character %q", key[i])
	}
	return nil
}

// entry is the stored record shared by the durable backends.
type entry struct {
	Key       string     `json:"key"`
	Value     []byte     `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (e *entry) expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

func newEntry(key string, value []byte, ttl time.Duration, now time.Time) entry {
	e := entry{Key: key, Value: value, CreatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}
	return e
}

// GetMultiple reads each key in turn. Misses are absent from the result.
func GetMultiple(c Cache, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, ok, err := c.Get(k)
		if err != nil {
			return out, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// SetMultiple writes each pair in turn. There is no atomicity across the batch.
func SetMultiple(c Cache, values map[string][]byte, ttl time.Duration) error {
	for k, v := range values {
		if err := c.SetWithTTL(k, v, ttl); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMultiple deletes each key in turn.
func DeleteMultiple(c Cache, keys []string) error {
	for _, k := range keys {
		if err := c.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
