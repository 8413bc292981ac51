package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/place2b/content"
	"github.com/eringen/place2b/fallback"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testPage(path string) Page {
	return Page{
		Site: Site{Name: "The Place 2B", URL: "https://example.com", Description: "Events and articles."},
		Meta: PageMeta{URL: "https://example.com" + path},
		Path: path,
	}
}

func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("output does not contain %q", w)
		}
	}
}

func TestHome(t *testing.T) {
	d := fallback.Default()
	page := testPage("/")
	page.Meta.JSONLD = `{"@type":"WebSite","name":"The Place 2B"}`
	got := renderString(t, Home(HomeData{Page: page, Events: d.FeaturedEvents(), Posts: d.FeaturedPosts()}))

	assertContains(t, got,
		"<title>The Place 2B</title>",
		"Welcome to The Place 2B",
		"Tech Innovation Summit 2025",
		"Getting the Most Out of Tech Conferences",
		`href="/events/tech-innovation-summit-2025/"`,
		`<script type="application/ld+json">{"@type":"WebSite","name":"The Place 2B"}</script>`,
		`class="nav-link active" href="/"`,
		"/placeholder/T.png",
	)
	if strings.Contains(got, "Community Update") {
		t.Error("non-featured post on the home page")
	}
}

func TestHomeEmpty(t *testing.T) {
	got := renderString(t, Home(HomeData{Page: testPage("/")}))
	assertContains(t, got, "No upcoming events right now", "No featured posts yet")
}

func TestEvents(t *testing.T) {
	all := fallback.Default().Events()
	spec := content.FilterSpec{EventType: "Workshop", Tag: "design"}
	page := testPage("/events/")
	page.Meta.Title = "Events"
	got := renderString(t, Events(EventsData{
		Page:   page,
		Events: content.FilterEvents(all, spec),
		Total:  len(all),
		Filter: spec,
		Tags:   content.CollectTags(all),
	}))

	assertContains(t, got,
		"<title>Events - The Place 2B</title>",
		`<option value="Workshop" selected>`,
		`<input type="hidden" name="tag" value="design">`,
		"Showing 2 of 6 events",
		"UX Design Workshop",
		"Design Jam",
		`class="tag tag-active"`,
		`id="event-list"`,
	)
	if strings.Contains(got, "AI Summit") {
		t.Error("filtered-out event rendered")
	}
}

func TestEventsListPartial(t *testing.T) {
	all := fallback.Default().Events()
	got := renderString(t, EventsList(EventsData{Page: testPage("/events/"), Total: len(all), Filter: content.FilterSpec{Search: "nothing matches"}}))

	assertContains(t, got, `<div id="event-list">`, "Showing 0 of 6 events", "No events found matching your criteria.")
	if strings.Contains(got, "<html") {
		t.Error("partial rendered the layout")
	}
}

func TestEvent(t *testing.T) {
	d := fallback.Default()
	ev := d.EventBySlug("tech-innovation-summit-2025")
	if ev == nil {
		t.Fatal("missing fallback event")
	}
	got := renderString(t, Event(EventData{Page: testPage("/events/tech-innovation-summit-2025/"), Event: *ev, Related: d.Events()[1:3]}))

	assertContains(t, got,
		"<h1>Tech Innovation Summit 2025</h1>",
		"Monday, September 15, 2025",
		"9:00 AM - 6:00 PM",
		"500 attendees",
		`href="https://example.com/register/tech-summit"`,
		"<strong>keynotes</strong>",
		"<li>Hands-on labs</li>",
		"Related events",
		"UX Design Workshop",
	)
}

func TestPost(t *testing.T) {
	d := fallback.Default()
	p := d.PostBySlug("getting-the-most-out-of-tech-conferences")
	if p == nil {
		t.Fatal("missing fallback post")
	}
	got := renderString(t, Post(PostData{Page: testPage("/blog/x/"), Post: *p}))

	assertContains(t, got,
		"<h1>Getting the Most Out of Tech Conferences</h1>",
		"Sarah Johnson",
		"June 01, 2025",
		"5 min read",
		"<strong>Plan ahead</strong>",
		"Before the event",
		"Community lead and conference organizer.",
		`<span class="avatar">S</span>`,
	)
	if strings.Contains(got, "Related posts") {
		t.Error("related section without related posts")
	}
}

func TestBlog(t *testing.T) {
	got := renderString(t, Blog(BlogData{Page: testPage("/blog/"), Posts: fallback.Default().Posts()}))
	assertContains(t, got, "Community Update: Spring Recap", `class="nav-link active" href="/blog/"`)

	empty := renderString(t, Blog(BlogData{Page: testPage("/blog/")}))
	assertContains(t, empty, "No posts yet.")
}

func TestErrorPages(t *testing.T) {
	assertContains(t, renderString(t, NotFound(testPage("/nope/"))), "Page not found")
	assertContains(t, renderString(t, ServerError(testPage("/"))), "Something went wrong")
}

func TestEscapesContent(t *testing.T) {
	ev := content.Event{Title: `<script>alert("x")</script>`, Slug: content.Slug{Current: "x"}}
	got := renderString(t, EventsList(EventsData{Page: testPage("/events/"), Events: []content.Event{ev}, Total: 1}))
	if strings.Contains(got, "<script>alert") {
		t.Error("event title rendered unescaped")
	}
}
