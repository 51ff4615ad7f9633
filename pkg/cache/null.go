package cache

import (
	"context"
	"time"
)

// NullCache stands in when result caching is turned off (no cache in the
// profile, or --no-cache). Every lookup misses, so every pinned algorithm
// call goes to the service.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }
