package cache

// ScopedKeyer wraps a Keyer with a prefix for per-account isolation.
// Results of private algorithms must not leak between API keys that share a
// backend such as Redis.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "acct:"+Hash([]byte(apiKey))[:16]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AlgoKey generates a prefixed key for an algorithm result.
func (k *ScopedKeyer) AlgoKey(ref, contentType string, input []byte) string {
	return k.prefix + k.inner.AlgoKey(ref, contentType, input)
}
