package cache

import (
	"context"
	"time"
)

// NullCache never stores anything. The runner uses it for --no-cache and
// when the configured backend is "none".
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() NullCache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
