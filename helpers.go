package place2b

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

const relatedLimit = 3

// RelatedEvents returns up to three other events sharing a tag with current.
func RelatedEvents(current content.Event, events []content.Event) []content.Event {
	tags := tagSet(current.Tags)
	var related []content.Event
	for _, e := range events {
		if e.Slug == current.Slug {
			continue
		}
		if sharesTag(tags, e.Tags) {
			related = append(related, e)
			if len(related) == relatedLimit {
				break
			}
		}
	}
	return related
}

// RelatedPosts returns up to three other posts sharing a category with current.
func RelatedPosts(current content.BlogPost, posts []content.BlogPost) []content.BlogPost {
	cats := tagSet(current.Categories)
	var related []content.BlogPost
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		if sharesTag(cats, p.Categories) {
			related = append(related, p)
			if len(related) == relatedLimit {
				break
			}
		}
	}
	return related
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func sharesTag(set map[string]struct{}, tags []string) bool {
	for _, t := range tags {
		if _, ok := set[strings.ToLower(strings.TrimSpace(t))]; ok {
			return true
		}
	}
	return false
}

func marshalJsonLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	return marshalJsonLD(map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	})
}

// EventJsonLD returns a JSON-LD string for an Event schema.
func EventJsonLD(e content.Event, cfg SiteConfig, images *asset.Resolver) string {
	eventURL := BuildURL(cfg.URL, "events", e.Slug.Current)
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Event",
		"name":        e.Title,
		"description": firstNonEmpty(e.Excerpt, e.Description),
		"startDate":   e.StartDate.Format(time.RFC3339),
		"url":         eventURL,
	}
	if e.EndDate != nil {
		data["endDate"] = e.EndDate.Format(time.RFC3339)
	}
	if e.Location != "" {
		data["location"] = map[string]string{
			"@type": "Place",
			"name":  e.Location,
		}
	}
	if e.Organizer != "" {
		data["organizer"] = map[string]string{
			"@type": "Organization",
			"name":  e.Organizer,
		}
	}
	if u, ok := images.Resolve(e.MainImage, 1200, 630); ok {
		data["image"] = u
	}
	if len(e.Tags) > 0 {
		data["keywords"] = strings.Join(e.Tags, ", ")
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(p content.BlogPost, cfg SiteConfig, images *asset.Resolver) string {
	postURL := BuildURL(cfg.URL, "blog", p.Slug.Current)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      p.Title,
		"description":   p.Excerpt,
		"datePublished": p.PublishedAt.Format(time.RFC3339),
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if p.Author != nil && p.Author.Name != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  p.Author.Name,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if u, ok := images.Resolve(p.MainImage, 1200, 630); ok {
		data["image"] = u
	}
	if len(p.Categories) > 0 {
		data["keywords"] = strings.Join(p.Categories, ", ")
	}
	return marshalJsonLD(data)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
