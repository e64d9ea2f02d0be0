package cache

import "time"

// Noop satisfies Cache without storing anything. Every read misses and every
// write succeeds. It is the default when caching is disabled.
type Noop struct{}

var _ Cache = Noop{}

// Get implements Cache. Invalid keys are still rejected.
func (Noop) Get(key string) ([]byte, bool, error) {
	return nil, false, ValidateKey(key)
}

// Set implements Cache.
func (Noop) Set(key string, _ []byte) error { return ValidateKey(key) }

// SetWithTTL implements Cache.
func (Noop) SetWithTTL(key string, _ []byte, _ time.Duration) error { return ValidateKey(key) }

// Delete implements Cache.
func (Noop) Delete(key string) error { return ValidateKey(key) }

// Has implements Cache.
func (Noop) Has(string) bool { return false }

// Clear implements Cache.
func (Noop) Clear() error { return nil }
