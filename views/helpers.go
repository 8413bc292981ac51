package views

import (
	"errors"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/content"
	"github.com/eringen/place2b/markdown"
)

// Date layouts used across the templates.
const (
	LongDate  = "Monday, January 02, 2006"
	ClockTime = "3:04 PM"
	PostDate  = "January 02, 2006"
	CardDate  = "Jan 02, 2006"
)

var funcs = template.FuncMap{
	"longDate":    func(t time.Time) string { return t.Format(LongDate) },
	"clock":       func(t time.Time) string { return t.Format(ClockTime) },
	"postDate":    func(t time.Time) string { return t.Format(PostDate) },
	"cardDate":    func(t time.Time) string { return t.Format(CardDate) },
	"isoDate":     func(t time.Time) string { return t.Format(time.RFC3339) },
	"relative":    RelativeTime,
	"comma":       func(n int) string { return humanize.Comma(int64(n)) },
	"imageURL":    ImageURL,
	"srcset":      SrcSet,
	"placeholder": PlaceholderURL,
	"initial":     Initial,
	"markdown":    markdown.HTML,
	"body":        Body,
	"tagClass":    TagClass,
	"tagURL":      TagURL,
	"filterURL":   FilterURL,
	"navClass":    NavClass,
	"eventTypes":  func() []content.Option { return content.EventTypes },
	"popularTags": func() []string { return content.PopularTags },
	"jsonld":      func(s string) template.JS { return template.JS(s) },
	"dict":        dict,
}

// RelativeTime renders t relative to now, e.g. "in 3 days" or "2 weeks ago".
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// ImageURL resolves img at the given size, or returns "" when there is
// nothing to show.
func ImageURL(r *asset.Resolver, img *asset.Image, width, height int) string {
	u, _ := r.Resolve(img, width, height)
	return u
}

// SrcSet returns the srcset attribute value for img, or "".
func SrcSet(r *asset.Resolver, img *asset.Image) string {
	resp, ok := r.Responsive(img)
	if !ok {
		return ""
	}
	return resp.SrcSet()
}

// PlaceholderURL returns the path of the generated image used when content
// has no picture of its own. A zero height keeps the 1200x630 aspect.
func PlaceholderURL(title string, width, height int) string {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = width * 630 / 1200
	}
	v := url.Values{}
	v.Set("w", strconv.Itoa(width))
	v.Set("h", strconv.Itoa(height))
	return "/placeholder/" + url.PathEscape(Initial(title)) + ".png?" + v.Encode()
}

// Initial returns the upper-cased first letter or digit of s, or "?".
func Initial(s string) string {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return "?"
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// NavClass marks the nav link for prefix active when path is under it.
func NavClass(path, prefix string) string {
	if prefix == "/" {
		if path == "/" {
			return "nav-link active"
		}
		return "nav-link"
	}
	if strings.HasPrefix(path, prefix) {
		return "nav-link active"
	}
	return "nav-link"
}

// FilterURL encodes the filter as an events listing URL.
func FilterURL(spec content.FilterSpec) string {
	v := url.Values{}
	if spec.Search != "" {
		v.Set("q", spec.Search)
	}
	if spec.EventType != "" {
		v.Set("type", spec.EventType)
	}
	if spec.Tag != "" {
		v.Set("tag", spec.Tag)
	}
	if len(v) == 0 {
		return "/events/"
	}
	return "/events/?" + v.Encode()
}

// TagURL returns the listing URL with tag toggled in spec.
func TagURL(spec content.FilterSpec, tag string) string {
	return FilterURL(spec.ToggleTag(tag))
}

// dict builds a map from alternating keys and values, for passing several
// values to a nested template.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		m[k] = kv[i+1]
	}
	return m, nil
}
