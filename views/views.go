// Package views is the default presentation layer. Each page is an
// html/template set exposed as a templ.Component, so an application can
// swap any of them for its own templ components.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages maps a page file to its parsed set (layout + partials + page).
var pages = parsePages("home.html", "events.html", "event.html", "blog.html", "post.html", "notfound.html", "error.html")

func parsePages(names ...string) map[string]*template.Template {
	base := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html"))
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.Must(base.Clone()).ParseFS(templateFS, "templates/"+name))
	}
	return out
}

// component executes the named template of a page set.
func component(page, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages[page].ExecuteTemplate(w, name, data)
	})
}

func Home(d HomeData) templ.Component {
	return component("home.html", "layout", d)
}

func Events(d EventsData) templ.Component {
	return component("events.html", "layout", d)
}

// EventsList renders only the result list of the events page, for HTMX
// swaps.
func EventsList(d EventsData) templ.Component {
	return component("events.html", "event-list", d)
}

func Event(d EventData) templ.Component {
	return component("event.html", "layout", d)
}

func Blog(d BlogData) templ.Component {
	return component("blog.html", "layout", d)
}

func Post(d PostData) templ.Component {
	return component("post.html", "layout", d)
}

func NotFound(p Page) templ.Component {
	return component("notfound.html", "layout", p)
}

func ServerError(p Page) templ.Component {
	return component("error.html", "layout", p)
}
