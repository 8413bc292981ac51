package content

import (
	"strconv"
	"strings"
)

// Query is one entry of the fixed query catalog.
type Query interface {
	Name() string
	Descriptor() Descriptor
	Params() map[string]any
}

// Descriptor is the selection, projection, ordering and slice of a query.
type Descriptor struct {
	Filter string   // GROQ filter expression
	Fields []string // projection, in output order
	Order  string   // ordering expression, empty for none
	Limit  int      // 0 for unlimited
	Single bool     // take the first match only
}

// GROQ compiles d into a query string.
func (d Descriptor) GROQ() string {
	var b strings.Builder
	b.WriteString("*[")
	b.WriteString(d.Filter)
	b.WriteString("]")
	if d.Order != "" {
		b.WriteString(" | order(")
		b.WriteString(d.Order)
		b.WriteString(")")
	}
	switch {
	case d.Single:
		b.WriteString("[0]")
	case d.Limit > 0:
		b.WriteString("[0..." + strconv.Itoa(d.Limit) + "]")
	}
	b.WriteString(" {\n")
	for i, f := range d.Fields {
		b.WriteString("  ")
		b.WriteString(f)
		if i < len(d.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// HasField reports whether the projection includes a top-level field.
func (d Descriptor) HasField(name string) bool {
	for _, f := range d.Fields {
		if fieldName(f) == name {
			return true
		}
	}
	return false
}

// fieldName returns the output key of a projection entry.
func fieldName(f string) string {
	if strings.HasPrefix(f, `"`) {
		if end := strings.Index(f[1:], `"`); end >= 0 {
			return f[1 : end+1]
		}
	}
	if i := strings.IndexAny(f, " {"); i >= 0 {
		return f[:i]
	}
	return f
}

const (
	slugField     = `"slug": slug.current`
	featuredLimit = 3

	eventFilter = `_type == "event" && published == true`
	postFilter  = `_type == "post"`
)

var eventListFields = []string{
	"_id", "_type", "title", slugField, "excerpt", "description", "startDate",
	"endDate", "location", "mainImage", "tags", "eventType", "organizer",
	"published", "url",
}

var postListFields = []string{
	"_id", "_type", "title", slugField, "excerpt", "publishedAt",
	"author {\n    name,\n    image\n  }",
	"categories", "mainImage", "featured", "readTime",
}

// EventsList returns every published event, newest start first.
type EventsList struct{}

func (EventsList) Name() string           { return "events-list" }
func (EventsList) Params() map[string]any { return nil }
func (EventsList) Descriptor() Descriptor {
	return Descriptor{Filter: eventFilter, Fields: eventListFields, Order: "startDate desc"}
}

// EventBySlug returns the detail projection of one event.
type EventBySlug struct {
	Slug string
}

func (EventBySlug) Name() string             { return "event-by-slug" }
func (q EventBySlug) Params() map[string]any { return map[string]any{"slug": q.Slug} }
func (EventBySlug) Descriptor() Descriptor {
	return Descriptor{
		Filter: `_type == "event" && slug.current == $slug`,
		Fields: []string{
			"_id", "_type", "title", slugField, "description", "excerpt",
			"startDate", "endDate", "location", "mainImage", "tags", "eventType",
			"organizer", "capacity", "registrationUrl", "published", "url",
		},
		Single: true,
	}
}

// EventsFeatured returns the three most recent published events.
type EventsFeatured struct{}

func (EventsFeatured) Name() string           { return "events-featured" }
func (EventsFeatured) Params() map[string]any { return nil }
func (EventsFeatured) Descriptor() Descriptor {
	return Descriptor{
		Filter: eventFilter,
		Fields: []string{"_id", "title", slugField, "excerpt", "startDate", "location", "mainImage", "tags"},
		Order:  "startDate desc",
		Limit:  featuredLimit,
	}
}

// PostsList returns every post without bodies, newest first.
type PostsList struct{}

func (PostsList) Name() string           { return "posts-list" }
func (PostsList) Params() map[string]any { return nil }
func (PostsList) Descriptor() Descriptor {
	return Descriptor{Filter: postFilter, Fields: postListFields, Order: "publishedAt desc"}
}

// PostBySlug returns one post including its body.
type PostBySlug struct {
	Slug string
}

func (PostBySlug) Name() string             { return "post-by-slug" }
func (q PostBySlug) Params() map[string]any { return map[string]any{"slug": q.Slug} }
func (PostBySlug) Descriptor() Descriptor {
	return Descriptor{
		Filter: `_type == "post" && slug.current == $slug`,
		Fields: []string{
			"_id", "_type", "title", slugField, "excerpt", "publishedAt",
			"author {\n    name,\n    image,\n    bio\n  }",
			"categories", "mainImage", "body", "featured", "readTime",
		},
		Single: true,
	}
}

// PostsFeatured returns up to three posts flagged as featured.
type PostsFeatured struct{}

func (PostsFeatured) Name() string           { return "posts-featured" }
func (PostsFeatured) Params() map[string]any { return nil }
func (PostsFeatured) Descriptor() Descriptor {
	return Descriptor{
		Filter: `_type == "post" && featured == true`,
		Fields: []string{
			"_id", "title", slugField, "excerpt", "publishedAt",
			"author {\n    name\n  }",
			"mainImage", "categories",
		},
		Order: "publishedAt desc",
		Limit: featuredLimit,
	}
}

// Catalog lists one instance of every query, for diagnostics.
func Catalog() []Query {
	return []Query{
		EventsList{}, EventBySlug{}, EventsFeatured{},
		PostsList{}, PostBySlug{}, PostsFeatured{},
	}
}
