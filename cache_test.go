package place2b

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eringen/place2b/content"
)

func newTestCache(t *testing.T, home, list time.Duration) *PageCache {
	t.Helper()
	pc, err := NewPageCache(home, list)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pc.Close)
	return pc
}

func counting(n *atomic.Int32, v string) func(context.Context) string {
	return func(context.Context) string {
		n.Add(1)
		return v
	}
}

func TestCachedHit(t *testing.T) {
	pc := newTestCache(t, time.Hour, time.Hour)
	var n atomic.Int32
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if got := Cached(ctx, pc, ClassList, content.EventsList{}, counting(&n, "events")); got != "events" {
			t.Fatalf("got %q", got)
		}
	}
	if n.Load() != 1 {
		t.Errorf("loads = %d, want 1", n.Load())
	}
}

func TestCachedKeysByParams(t *testing.T) {
	pc := newTestCache(t, time.Hour, time.Hour)
	var n atomic.Int32
	ctx := context.Background()

	a := Cached(ctx, pc, ClassDetail, content.EventBySlug{Slug: "a"}, counting(&n, "a"))
	b := Cached(ctx, pc, ClassDetail, content.EventBySlug{Slug: "b"}, counting(&n, "b"))
	again := Cached(ctx, pc, ClassDetail, content.EventBySlug{Slug: "a"}, counting(&n, "stale"))

	if a != "a" || b != "b" || again != "a" {
		t.Errorf("got %q %q %q", a, b, again)
	}
	if n.Load() != 2 {
		t.Errorf("loads = %d, want 2", n.Load())
	}
}

func TestCachedDisabled(t *testing.T) {
	pc := newTestCache(t, -1, time.Hour)
	var n atomic.Int32
	ctx := context.Background()

	Cached(ctx, pc, ClassHome, content.EventsFeatured{}, counting(&n, "x"))
	Cached(ctx, pc, ClassHome, content.EventsFeatured{}, counting(&n, "x"))
	if n.Load() != 2 {
		t.Errorf("loads = %d, want 2 with a disabled class", n.Load())
	}

	var nilCache *PageCache
	Cached(ctx, nilCache, ClassList, content.EventsList{}, counting(&n, "x"))
	if n.Load() != 3 {
		t.Errorf("nil cache did not call load")
	}
}

func TestInvalidate(t *testing.T) {
	pc := newTestCache(t, time.Hour, time.Hour)
	var n atomic.Int32
	ctx := context.Background()

	Cached(ctx, pc, ClassList, content.PostsList{}, counting(&n, "v1"))
	pc.Invalidate()
	if got := Cached(ctx, pc, ClassList, content.PostsList{}, counting(&n, "v2")); got != "v2" {
		t.Errorf("got %q after Invalidate, want v2", got)
	}
}

func TestCachedSharesConcurrentLoads(t *testing.T) {
	pc := newTestCache(t, time.Hour, time.Hour)
	var n atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) string {
		n.Add(1)
		<-release
		return "shared"
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Cached(context.Background(), pc, ClassList, content.EventsList{}, load)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n.Load() != 1 {
		t.Errorf("loads = %d, want 1", n.Load())
	}
	for i, r := range results {
		if r != "shared" {
			t.Errorf("result %d = %q", i, r)
		}
	}
}

func TestCachedDetachesCancel(t *testing.T) {
	pc := newTestCache(t, time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := Cached(ctx, pc, ClassList, content.EventsList{}, func(ctx context.Context) error {
		return ctx.Err()
	})
	if got != nil {
		t.Errorf("load saw a canceled context: %v", got)
	}
}

func TestCacheKey(t *testing.T) {
	if got := cacheKey(content.EventsList{}); got != "events-list" {
		t.Errorf("got %q", got)
	}
	if got := cacheKey(content.PostBySlug{Slug: "hello"}); got != "post-by-slug|slug=hello" {
		t.Errorf("got %q", got)
	}
}
