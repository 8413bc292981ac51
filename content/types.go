// Package content holds the event and blog post model, the fixed catalog of
// CMS queries, the fail-soft client that runs them, and in-memory event
// filtering.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/portabletext"
)

// Slug is a URL identifier. It decodes from a bare string (projected
// queries) or from a {"current": "..."} object (raw documents).
type Slug struct {
	Current string `json:"current"`
}

func (s *Slug) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		s.Current = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Current)
	}
	type plain Slug
	return json.Unmarshal(data, (*plain)(s))
}

func (s Slug) String() string { return s.Current }

// Event is a single published (or draft) event document.
type Event struct {
	ID              string       `json:"_id"`
	Type            string       `json:"_type,omitempty"`
	Title           string       `json:"title"`
	Slug            Slug         `json:"slug"`
	Description     string       `json:"description,omitempty"`
	Excerpt         string       `json:"excerpt,omitempty"`
	StartDate       time.Time    `json:"startDate"`
	EndDate         *time.Time   `json:"endDate,omitempty"`
	Location        string       `json:"location,omitempty"`
	MainImage       *asset.Image `json:"mainImage,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	Published       bool         `json:"published"`
	URL             string       `json:"url,omitempty"`
	EventType       string       `json:"eventType,omitempty"`
	Organizer       string       `json:"organizer,omitempty"`
	Capacity        *int         `json:"capacity,omitempty"`
	RegistrationURL string       `json:"registrationUrl,omitempty"`
}

// Link returns the site path of the event detail page.
func (e Event) Link() string {
	return "/events/" + e.Slug.Current + "/"
}

// HasTag reports whether tag is one of the event's tags.
func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the invariants the CMS schema is expected to enforce.
func (e Event) Validate() error {
	var errs []error
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if e.StartDate.IsZero() {
		errs = append(errs, errors.New("startDate is required"))
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		errs = append(errs, errors.New("endDate is before startDate"))
	}
	if e.Capacity != nil && *e.Capacity < 0 {
		errs = append(errs, errors.New("capacity is negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("event %q: %w", e.Slug.Current, err)
	}
	return nil
}

// Author is embedded in a post. Name is required when present.
type Author struct {
	Name  string       `json:"name"`
	Image *asset.Image `json:"image,omitempty"`
	Bio   string       `json:"bio,omitempty"`
}

// BlogPost is a single article document.
type BlogPost struct {
	ID          string            `json:"_id"`
	Type        string            `json:"_type,omitempty"`
	Title       string            `json:"title"`
	Slug        Slug              `json:"slug"`
	Excerpt     string            `json:"excerpt,omitempty"`
	PublishedAt time.Time         `json:"publishedAt"`
	Author      *Author           `json:"author,omitempty"`
	Categories  []string          `json:"categories,omitempty"`
	MainImage   *asset.Image      `json:"mainImage,omitempty"`
	Body        portabletext.Body `json:"body,omitempty"`
	Featured    bool              `json:"featured,omitempty"`
	ReadTime    *int              `json:"readTime,omitempty"`
}

// Link returns the site path of the post page.
func (p BlogPost) Link() string {
	return "/blog/" + p.Slug.Current + "/"
}

// ReadMinutes returns the stored read time, or an estimate from the body.
func (p BlogPost) ReadMinutes() int {
	if p.ReadTime != nil && *p.ReadTime > 0 {
		return *p.ReadTime
	}
	return portabletext.ReadingMinutes(p.Body)
}

// Validate checks the invariants the CMS schema is expected to enforce.
func (p BlogPost) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if p.PublishedAt.IsZero() {
		errs = append(errs, errors.New("publishedAt is required"))
	}
	if p.Author != nil && strings.TrimSpace(p.Author.Name) == "" {
		errs = append(errs, errors.New("author name is required"))
	}
	if p.ReadTime != nil && *p.ReadTime <= 0 {
		errs = append(errs, errors.New("readTime must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("post %q: %w", p.Slug.Current, err)
	}
	return nil
}
