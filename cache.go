package place2b

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Yiling-J/theine-go"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/place2b/content"
)

// PageClass selects the cache lifetime of a page's content.
type PageClass int

const (
	ClassHome PageClass = iota
	ClassList
	ClassDetail
)

const pageCacheSize = 1024

// PageCache keeps fetched content for a per-class lifetime, so pages are
// rebuilt from the CMS at most once per period. Concurrent misses for the
// same key share one fetch.
type PageCache struct {
	cache *theine.Cache[string, any]
	group singleflight.Group
	ttl   map[PageClass]time.Duration
}

// NewPageCache returns a cache with the given lifetimes. A class with a
// non-positive lifetime is never cached.
func NewPageCache(homeTTL, listTTL time.Duration) (*PageCache, error) {
	c, err := theine.NewBuilder[string, any](pageCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("place2b: build page cache: %w", err)
	}
	return &PageCache{
		cache: c,
		ttl: map[PageClass]time.Duration{
			ClassHome:   homeTTL,
			ClassList:   listTTL,
			ClassDetail: listTTL,
		},
	}, nil
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (pc *PageCache) Invalidate() {
	var keys []string
	pc.cache.Range(func(k string, _ any) bool {
		keys = append(keys, k)
		return true
	})
	for _, k := range keys {
		pc.cache.Delete(k)
	}
}

// Close releases the cache's background resources.
func (pc *PageCache) Close() {
	pc.cache.Close()
}

// cacheKey identifies q by name and parameters.
func cacheKey(q content.Query) string {
	params := q.Params()
	if len(params) == 0 {
		return q.Name()
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(q.Name())
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, params[k])
	}
	return b.String()
}

// Cached returns the cached value for q, calling load on a miss. load runs
// detached from ctx cancellation so an abandoned request cannot poison the
// entry. A nil cache always calls load.
func Cached[T any](ctx context.Context, pc *PageCache, class PageClass, q content.Query, load func(context.Context) T) T {
	if pc == nil || pc.ttl[class] <= 0 {
		return load(ctx)
	}
	key := cacheKey(q)
	if v, ok := pc.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	v, _, _ := pc.group.Do(key, func() (any, error) {
		t := load(context.WithoutCancel(ctx))
		pc.cache.SetWithTTL(key, t, 1, pc.ttl[class])
		return t, nil
	})
	t, _ := v.(T)
	return t
}
