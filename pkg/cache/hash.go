package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Keyer derives cache keys.
type Keyer interface {
	// AlgoKey returns the key for one call of a pinned algorithm version.
	AlgoKey(ref, contentType string, input []byte) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AlgoKey hashes the reference, content type and input into a fixed-size key.
func (DefaultKeyer) AlgoKey(ref, contentType string, input []byte) string {
	return hashKey("algo", ref, contentType, Hash(input))
}

// hashKey generates a cache key by hashing the length-prefixed components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
