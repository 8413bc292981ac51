// Package fallback provides the local dataset served when the CMS is not
// configured or cannot be reached.
package fallback

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/eringen/place2b/content"
)

//go:embed data/*.json
var embedded embed.FS

const (
	eventsFile = "events.json"
	postsFile  = "posts.json"

	featuredLimit = 3
)

// Dataset is an immutable set of events and posts.
type Dataset struct {
	events []content.Event
	posts  []content.BlogPost
}

// New returns a dataset over copies of events and posts.
func New(events []content.Event, posts []content.BlogPost) *Dataset {
	return &Dataset{events: slices.Clone(events), posts: slices.Clone(posts)}
}

// Files returns the embedded data directory holding events.json and
// posts.json.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

var defaultDataset = sync.OnceValue(func() *Dataset {
	d, err := Load(Files())
	if err != nil {
		panic(fmt.Sprintf("fallback: embedded dataset: %v", err))
	}
	return d
})

// Default returns the dataset built into the binary.
func Default() *Dataset {
	return defaultDataset()
}

// Load reads events.json and posts.json from fsys and validates every
// record.
func Load(fsys fs.FS) (*Dataset, error) {
	var d Dataset
	if err := readJSON(fsys, eventsFile, &d.events); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, postsFile, &d.posts); err != nil {
		return nil, err
	}

	var errs []error
	for _, e := range d.events {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range d.posts {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("fallback: invalid dataset: %w", err)
	}
	return &d, nil
}

func readJSON(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("fallback: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("fallback: decode %s: %w", name, err)
	}
	return nil
}

// Events returns the published events, latest start date first. Drafts
// are only reachable through EventBySlug, as with the CMS.
func (d *Dataset) Events() []content.Event {
	out := make([]content.Event, 0, len(d.events))
	for _, e := range d.events {
		if e.Published {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b content.Event) int {
		return b.StartDate.Compare(a.StartDate)
	})
	return out
}

// Posts returns every post, newest first.
func (d *Dataset) Posts() []content.BlogPost {
	out := slices.Clone(d.posts)
	slices.SortStableFunc(out, func(a, b content.BlogPost) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return out
}

// EventBySlug returns the first event with slug, or nil.
func (d *Dataset) EventBySlug(slug string) *content.Event {
	for i := range d.events {
		if d.events[i].Slug.Current == slug {
			e := d.events[i]
			return &e
		}
	}
	return nil
}

// PostBySlug returns the first post with slug, or nil.
func (d *Dataset) PostBySlug(slug string) *content.BlogPost {
	for i := range d.posts {
		if d.posts[i].Slug.Current == slug {
			p := d.posts[i]
			return &p
		}
	}
	return nil
}

// FeaturedEvents returns the first three published events.
func (d *Dataset) FeaturedEvents() []content.Event {
	events := d.Events()
	return events[:min(featuredLimit, len(events))]
}

// FeaturedPosts returns up to three posts flagged as featured, newest
// first.
func (d *Dataset) FeaturedPosts() []content.BlogPost {
	out := make([]content.BlogPost, 0, featuredLimit)
	for _, p := range d.Posts() {
		if len(out) == featuredLimit {
			break
		}
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}
