package fallback

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/eringen/place2b/content"
)

func TestDefault(t *testing.T) {
	d := Default()
	if len(d.Events()) == 0 || len(d.Posts()) == 0 {
		t.Fatalf("embedded dataset is empty: %d events, %d posts", len(d.Events()), len(d.Posts()))
	}
	for _, e := range d.Events() {
		if e.Slug.Current == "" {
			t.Errorf("event %q has no slug", e.Title)
		}
	}
	if Default() != d {
		t.Error("Default should return the same dataset")
	}
}

func TestDefaultContainsExampleEvents(t *testing.T) {
	d := Default()
	for _, slug := range []string{"ai-summit", "design-jam"} {
		if d.EventBySlug(slug) == nil {
			t.Errorf("missing sample event %s", slug)
		}
	}
}

func TestEventBySlug(t *testing.T) {
	d := Default()
	e := d.EventBySlug("ai-summit")
	if e == nil || e.Title != "AI Summit" {
		t.Fatalf("EventBySlug(ai-summit) = %+v", e)
	}
	e.Title = "changed"
	if d.EventBySlug("ai-summit").Title != "AI Summit" {
		t.Error("EventBySlug exposed dataset storage")
	}
	if got := d.EventBySlug("does-not-exist"); got != nil {
		t.Errorf("EventBySlug(missing) = %+v, want nil", got)
	}
	if got := d.EventBySlug(""); got != nil {
		t.Errorf("EventBySlug(\"\") = %+v, want nil", got)
	}
}

func TestPostBySlug(t *testing.T) {
	d := Default()
	p := d.PostBySlug("design-systems-in-practice")
	if p == nil || len(p.Body) == 0 {
		t.Fatalf("PostBySlug = %+v, want post with body", p)
	}
	if got := d.PostBySlug("nope"); got != nil {
		t.Errorf("PostBySlug(missing) = %+v, want nil", got)
	}
}

func TestFeaturedEvents(t *testing.T) {
	d := Default()
	all := d.Events()
	got := d.FeaturedEvents()
	if len(got) != min(3, len(all)) {
		t.Fatalf("FeaturedEvents len = %d", len(got))
	}
	for i := range got {
		if got[i].Slug != all[i].Slug {
			t.Errorf("FeaturedEvents[%d] = %s, want %s", i, got[i].Slug, all[i].Slug)
		}
	}

	small := New(all[:2], nil)
	if n := len(small.FeaturedEvents()); n != 2 {
		t.Errorf("FeaturedEvents on 2 events = %d", n)
	}
	if n := len(New(nil, nil).FeaturedEvents()); n != 0 {
		t.Errorf("FeaturedEvents on empty = %d", n)
	}
}

func TestFeaturedPosts(t *testing.T) {
	d := Default()
	got := d.FeaturedPosts()
	if len(got) == 0 || len(got) > 3 {
		t.Fatalf("FeaturedPosts len = %d", len(got))
	}
	for _, p := range got {
		if !p.Featured {
			t.Errorf("FeaturedPosts returned unfeatured %s", p.Slug)
		}
	}

	posts := d.Posts()
	for i := range posts {
		posts[i].Featured = false
	}
	if n := len(New(nil, posts).FeaturedPosts()); n != 0 {
		t.Errorf("FeaturedPosts with none flagged = %d, want 0", n)
	}
}

func TestFallbackDeterministic(t *testing.T) {
	d := Default()
	a, b := d.FeaturedEvents(), d.FeaturedEvents()
	if len(a) != len(b) {
		t.Fatal("FeaturedEvents not deterministic")
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("FeaturedEvents[%d] differs between calls", i)
		}
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	d := Default()
	events := d.Events()
	events[0].Title = "changed"
	if d.Events()[0].Title == "changed" {
		t.Error("Events exposed dataset storage")
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"events.json": {Data: []byte(`[{"_id":"e","title":"Only","slug":{"current":"only"},"startDate":"2025-01-01T00:00:00Z","published":true}]`)},
		"posts.json":  {Data: []byte(`[]`)},
	}
	d, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Events()) != 1 || d.EventBySlug("only") == nil {
		t.Errorf("events = %+v", d.Events())
	}
	if len(d.Posts()) != 0 || len(d.FeaturedPosts()) != 0 {
		t.Errorf("posts = %+v", d.Posts())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{"missing posts", fstest.MapFS{"events.json": {Data: []byte(`[]`)}}, "read posts.json"},
		{"bad json", fstest.MapFS{"events.json": {Data: []byte(`{`)}, "posts.json": {Data: []byte(`[]`)}}, "decode events.json"},
		{"invalid record", fstest.MapFS{
			"events.json": {Data: []byte(`[{"title":"","slug":"x"}]`)},
			"posts.json":  {Data: []byte(`[]`)},
		}, "title is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.fsys)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestDraftEventsHidden(t *testing.T) {
	fsys := fstest.MapFS{
		"events.json": {Data: []byte(`[
			{"_id":"d","title":"Draft","slug":{"current":"draft"},"startDate":"2025-09-01T00:00:00Z","published":false},
			{"_id":"a","title":"Older","slug":{"current":"older"},"startDate":"2025-01-01T00:00:00Z","published":true},
			{"_id":"b","title":"Newer","slug":{"current":"newer"},"startDate":"2025-06-01T00:00:00Z","published":true}
		]`)},
		"posts.json": {Data: []byte(`[]`)},
	}
	d, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for name, events := range map[string][]content.Event{
		"Events":         d.Events(),
		"FeaturedEvents": d.FeaturedEvents(),
	} {
		if len(events) != 2 {
			t.Fatalf("%s len = %d, want 2", name, len(events))
		}
		if events[0].Slug.Current != "newer" || events[1].Slug.Current != "older" {
			t.Errorf("%s = %s, %s, want newer, older", name, events[0].Slug, events[1].Slug)
		}
		for _, e := range events {
			if !e.Published {
				t.Errorf("%s returned draft %s", name, e.Slug)
			}
		}
	}
	if d.EventBySlug("draft") == nil {
		t.Error("EventBySlug should still find drafts")
	}
}

func TestPostsNewestFirst(t *testing.T) {
	posts := []content.BlogPost{
		{Title: "Old", Slug: content.Slug{Current: "old"}, PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Featured: true},
		{Title: "New", Slug: content.Slug{Current: "new"}, PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Featured: true},
	}
	d := New(nil, posts)
	if got := d.Posts(); got[0].Slug.Current != "new" {
		t.Errorf("Posts()[0] = %s, want new", got[0].Slug)
	}
	if got := d.FeaturedPosts(); got[0].Slug.Current != "new" {
		t.Errorf("FeaturedPosts()[0] = %s, want new", got[0].Slug)
	}
}
