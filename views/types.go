package views

import (
	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/content"
)

// Site holds site-wide settings. Every handler passes this to templates so
// nothing is hardcoded.
type Site struct {
	Name        string
	URL         string
	Description string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // absolute og:image URL, optional
	JSONLD      string // schema.org document, optional
}

// Page is the part of every page's data the layout needs.
type Page struct {
	Site   Site
	Meta   PageMeta
	Path   string // request path, for the active nav link
	Images *asset.Resolver
}

type HomeData struct {
	Page
	Events []content.Event
	Posts  []content.BlogPost
}

type EventsData struct {
	Page
	Events []content.Event // after filtering
	Total  int             // before filtering
	Filter content.FilterSpec
	Tags   []string // tags present in the unfiltered list
}

type EventData struct {
	Page
	Event   content.Event
	Related []content.Event
}

type BlogData struct {
	Page
	Posts []content.BlogPost
}

type PostData struct {
	Page
	Post    content.BlogPost
	Related []content.BlogPost
}
