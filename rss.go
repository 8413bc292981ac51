package place2b

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/place2b/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
}

func rssDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC1123Z)
}

func (a *App) renderPostsRSS(c echo.Context, posts []content.BlogPost) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "blog", p.Slug.Current)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Excerpt,
			PubDate:     rssDate(p.PublishedAt),
			GUID:        postURL,
			Categories:  p.Categories,
		}
		if p.Author != nil {
			item.Author = p.Author.Name
		}
		items = append(items, item)
	}
	return writeRSS(c, rssChannel{
		Title:       a.Config.Name,
		Link:        BuildURL(base, "blog"),
		Description: a.Config.Description,
		Items:       items,
	})
}

// renderEventsRSS lists events by start date. The item date is the event's
// start, not its publication.
func (a *App) renderEventsRSS(c echo.Context, events []content.Event) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(events))
	for _, e := range events {
		eventURL := BuildURL(base, "events", e.Slug.Current)
		desc := firstNonEmpty(e.Excerpt, e.Description)
		if e.Location != "" {
			desc = strings.TrimSpace(e.Location + ". " + desc)
		}
		items = append(items, rssItem{
			Title:       e.Title,
			Link:        eventURL,
			Description: desc,
			PubDate:     rssDate(e.StartDate),
			GUID:        eventURL,
			Categories:  e.Tags,
		})
	}
	return writeRSS(c, rssChannel{
		Title:       a.Config.Name + " events",
		Link:        BuildURL(base, "events"),
		Description: "Upcoming events from " + a.Config.Name,
		Items:       items,
	})
}

func writeRSS(c echo.Context, ch rssChannel) error {
	feed := rssXML{Version: "2.0", Channel: ch}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
