package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/eringen/place2b/content"
	"github.com/eringen/place2b/fallback"
	"github.com/eringen/place2b/views"
)

const fetchTimeout = 15 * time.Second

// source bundles what a listing command reads from.
type source struct {
	client   *content.Client
	fallback *fallback.Dataset
}

func openSource(g *GlobalFlags) (source, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return source{}, err
	}
	fb, err := fallbackFor(cfg)
	if err != nil {
		return source{}, err
	}
	client := content.ClientFromConfig(cfg.Sanity, &http.Client{Timeout: fetchTimeout},
		content.WithLogger(cliLogger(cfg.Debug)))
	return source{client: client, fallback: fb}, nil
}

// label names where content came from, for the listing footer.
func (s source) label() string {
	if s.client.Configured() {
		return "cms (fallback on error)"
	}
	return "fallback"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute implements the go-flags Commander interface for EventsCommand.
func (c *EventsCommand) Execute(args []string) error {
	src, err := openSource(c.globals)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	all := content.Fetch(ctx, src.client, content.EventsList{}, src.fallback.Events())
	spec := content.FilterSpec{
		Search:    strings.TrimSpace(c.Search),
		EventType: c.Type,
		Tag:       c.Tag,
	}
	events := content.FilterEvents(all, spec)

	if c.JSON {
		return writeJSON(c.out, events)
	}
	return printEvents(c.out, events, len(all), src.label())
}

func printEvents(w io.Writer, events []content.Event, total int, label string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tSLUG\tTITLE\tLOCATION")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.StartDate.Format(views.CardDate), e.EventType, e.Slug.Current, e.Title, e.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s of %s events (source: %s)\n",
		humanize.Comma(int64(len(events))), humanize.Comma(int64(total)), label)
	return err
}

// Execute implements the go-flags Commander interface for PostsCommand.
func (c *PostsCommand) Execute(args []string) error {
	src, err := openSource(c.globals)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	var posts []content.BlogPost
	if c.Featured {
		posts = content.Fetch(ctx, src.client, content.PostsFeatured{}, src.fallback.FeaturedPosts())
	} else {
		posts = content.Fetch(ctx, src.client, content.PostsList{}, src.fallback.Posts())
	}

	if c.JSON {
		return writeJSON(c.out, posts)
	}
	return printPosts(c.out, posts, src.label())
}

func printPosts(w io.Writer, posts []content.BlogPost, label string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PUBLISHED\tSLUG\tTITLE\tAUTHOR\tREAD")
	for _, p := range posts {
		author := ""
		if p.Author != nil {
			author = p.Author.Name
		}
		read := ""
		if n := p.ReadMinutes(); n > 0 {
			read = fmt.Sprintf("%d min", n)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.PublishedAt.Format(views.CardDate), p.Slug.Current, p.Title, author, read)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s posts (source: %s)\n", humanize.Comma(int64(len(posts))), label)
	return err
}
