package place2b

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/eringen/place2b/analytics"
	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/content"
	"github.com/eringen/place2b/views"
)

// Content accessors. Each goes through the page cache and the fail-soft
// client, so none of them can fail.

func (a *App) featuredEvents(ctx context.Context) []content.Event {
	q := content.EventsFeatured{}
	return Cached(ctx, a.Cache, ClassHome, q, func(ctx context.Context) []content.Event {
		return content.Fetch(ctx, a.Content, q, a.Fallback.FeaturedEvents())
	})
}

func (a *App) featuredPosts(ctx context.Context) []content.BlogPost {
	q := content.PostsFeatured{}
	return Cached(ctx, a.Cache, ClassHome, q, func(ctx context.Context) []content.BlogPost {
		return content.Fetch(ctx, a.Content, q, a.Fallback.FeaturedPosts())
	})
}

func (a *App) events(ctx context.Context) []content.Event {
	q := content.EventsList{}
	return Cached(ctx, a.Cache, ClassList, q, func(ctx context.Context) []content.Event {
		return content.Fetch(ctx, a.Content, q, a.Fallback.Events())
	})
}

func (a *App) posts(ctx context.Context) []content.BlogPost {
	q := content.PostsList{}
	return Cached(ctx, a.Cache, ClassList, q, func(ctx context.Context) []content.BlogPost {
		return content.Fetch(ctx, a.Content, q, a.Fallback.Posts())
	})
}

func (a *App) event(ctx context.Context, slug string) *content.Event {
	q := content.EventBySlug{Slug: slug}
	return Cached(ctx, a.Cache, ClassDetail, q, func(ctx context.Context) *content.Event {
		return content.Fetch(ctx, a.Content, q, a.Fallback.EventBySlug(slug))
	})
}

func (a *App) post(ctx context.Context, slug string) *content.BlogPost {
	q := content.PostBySlug{Slug: slug}
	return Cached(ctx, a.Cache, ClassDetail, q, func(ctx context.Context) *content.BlogPost {
		return content.Fetch(ctx, a.Content, q, a.Fallback.PostBySlug(slug))
	})
}

func (a *App) page(c echo.Context, meta views.PageMeta) views.Page {
	return views.Page{
		Site: views.Site{
			Name:        a.Config.Name,
			URL:         a.Config.URL,
			Description: a.Config.Description,
		},
		Meta:   meta,
		Path:   c.Request().URL.Path,
		Images: a.Images,
	}
}

// ogImage returns an absolute share image for content, falling back to a
// generated placeholder.
func (a *App) ogImage(img *asset.Image, title string) string {
	if u, ok := a.Images.Resolve(img, 1200, 630); ok {
		return u
	}
	return strings.TrimSuffix(a.Config.URL, "/") + views.PlaceholderURL(title, 1200, 630)
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		events []content.Event
		posts  []content.BlogPost
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		events = a.featuredEvents(ctx)
	}()
	go func() {
		defer wg.Done()
		posts = a.featuredPosts(ctx)
	}()
	wg.Wait()

	return Render(c, a.Views.Home(views.HomeData{
		Page: a.page(c, views.PageMeta{
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "website",
			JSONLD:      WebsiteJsonLD(a.Config),
		}),
		Events: events,
		Posts:  posts,
	}))
}

// bindFilter reads the q, type and tag query parameters.
func bindFilter(c echo.Context) (content.FilterSpec, error) {
	var spec content.FilterSpec
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &spec); err != nil {
		return content.FilterSpec{}, echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
	}
	spec.Search = strings.TrimSpace(spec.Search)
	return spec, nil
}

func (a *App) handleEvents(c echo.Context) error {
	spec, err := bindFilter(c)
	if err != nil {
		return err
	}
	all := a.events(c.Request().Context())
	data := views.EventsData{
		Page: a.page(c, views.PageMeta{
			Title:       "Events",
			Description: "Discover and join amazing events in your area and beyond.",
			URL:         BuildURL(a.Config.URL, "events"),
			OGType:      "website",
		}),
		Events: content.FilterEvents(all, spec),
		Total:  len(all),
		Filter: spec,
		Tags:   content.CollectTags(all),
	}
	if isHTMX(c) && c.QueryParam("partial") == "list" {
		return Render(c, a.Views.EventsList(data))
	}
	return Render(c, a.Views.Events(data))
}

func (a *App) handleEvent(c echo.Context) error {
	slug := c.Param("slug")
	ctx := c.Request().Context()
	ev := a.event(ctx, slug)
	if ev == nil {
		return a.renderNotFound(c)
	}
	a.trackView(c, analytics.KindEvent, slug)
	return Render(c, a.Views.Event(views.EventData{
		Page: a.page(c, views.PageMeta{
			Title:       ev.Title,
			Description: firstNonEmpty(ev.Excerpt, ev.Description),
			URL:         BuildURL(a.Config.URL, "events", slug),
			OGType:      "article",
			Image:       a.ogImage(ev.MainImage, ev.Title),
			JSONLD:      EventJsonLD(*ev, a.Config, a.Images),
		}),
		Event:   *ev,
		Related: RelatedEvents(*ev, a.events(ctx)),
	}))
}

func (a *App) handleBlog(c echo.Context) error {
	return Render(c, a.Views.Blog(views.BlogData{
		Page: a.page(c, views.PageMeta{
			Title:       "Blog",
			Description: "Insights, stories, and updates from our community.",
			URL:         BuildURL(a.Config.URL, "blog"),
			OGType:      "website",
		}),
		Posts: a.posts(c.Request().Context()),
	}))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	ctx := c.Request().Context()
	p := a.post(ctx, slug)
	if p == nil {
		return a.renderNotFound(c)
	}
	a.trackView(c, analytics.KindPost, slug)
	return Render(c, a.Views.Post(views.PostData{
		Page: a.page(c, views.PageMeta{
			Title:       p.Title,
			Description: p.Excerpt,
			URL:         BuildURL(a.Config.URL, "blog", slug),
			OGType:      "article",
			Image:       a.ogImage(p.MainImage, p.Title),
			JSONLD:      BlogPostingJsonLD(*p, a.Config, a.Images),
		}),
		Post:    *p,
		Related: RelatedPosts(*p, a.posts(ctx)),
	}))
}

type eventsResponse struct {
	Events []content.Event    `json:"events"`
	Total  int                `json:"total"`
	Filter content.FilterSpec `json:"filter"`
	Tags   []string           `json:"tags"`
}

func (a *App) handleAPIEvents(c echo.Context) error {
	spec, err := bindFilter(c)
	if err != nil {
		return err
	}
	all := a.events(c.Request().Context())
	return c.JSON(http.StatusOK, eventsResponse{
		Events: content.FilterEvents(all, spec),
		Total:  len(all),
		Filter: spec,
		Tags:   content.CollectTags(all),
	})
}

func (a *App) handleHealth(c echo.Context) error {
	source := "fallback"
	if a.Content.Configured() {
		source = "cms"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"content": source,
		"images":  a.Images.Configured(),
	})
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " +
		strings.TrimSuffix(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	return a.renderSitemap(c, a.events(ctx), a.posts(ctx))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderPostsRSS(c, a.posts(c.Request().Context()))
}

func (a *App) handleEventsFeed(c echo.Context) error {
	return a.renderEventsRSS(c, a.events(c.Request().Context()))
}

// trackView records a detail page view when analytics is enabled.
func (a *App) trackView(c echo.Context, kind, slug string) {
	if a.analytics == nil {
		return
	}
	a.analytics.Track(c, kind, slug)
}

func (a *App) renderNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, views.PageMeta{Title: "Not Found"})))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.ErrorContext(c.Request().Context(), "server error",
			slog.String("uri", c.Request().RequestURI),
			slog.Any("err", err),
		)
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, views.PageMeta{Title: "Error"})))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
