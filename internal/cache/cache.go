// Package cache stores embedding vectors between runs so unchanged promise and
// vote texts are not re-embedded.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a namespace (provider/model) and the cached
// input. Inputs are hashed so keys are safe file names.
func Key(namespace string, input string) string {
	hash := sha256.Sum256([]byte(input))
	ns := strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(namespace)
	return "politikcred-v1-" + ns + "-" + hex.EncodeToString(hash[:])
}
