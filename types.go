package place2b

import (
	"github.com/a-h/templ"

	"github.com/eringen/place2b/views"
)

// ViewFuncs holds the components the App calls when rendering pages. Any
// nil field falls back to the default view of the same name.
type ViewFuncs struct {
	Home        func(views.HomeData) templ.Component
	Events      func(views.EventsData) templ.Component
	EventsList  func(views.EventsData) templ.Component // HTMX partial
	Event       func(views.EventData) templ.Component
	Blog        func(views.BlogData) templ.Component
	Post        func(views.PostData) templ.Component
	NotFound    func(views.Page) templ.Component
	ServerError func(views.Page) templ.Component
}

// DefaultViews returns the built-in html/template views.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Events:      views.Events,
		EventsList:  views.EventsList,
		Event:       views.Event,
		Blog:        views.Blog,
		Post:        views.Post,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v *ViewFuncs) fillDefaults() {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Events == nil {
		v.Events = d.Events
	}
	if v.EventsList == nil {
		v.EventsList = d.EventsList
	}
	if v.Event == nil {
		v.Event = d.Event
	}
	if v.Blog == nil {
		v.Blog = d.Blog
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}
