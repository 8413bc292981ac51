// Package markdown renders the Markdown found in event descriptions as
// sanitized HTML.
package markdown

import (
	"bytes"
	"context"
	"html"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	policy = newPolicy()
)

// newPolicy is the UGC policy plus the language class goldmark puts on
// fenced code.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy().AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code")
	return p
}

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderMarkdown(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderMarkdown writes the sanitized HTML of content to buf. Input goldmark
// rejects is written as an escaped paragraph.
func RenderMarkdown(buf *bytes.Buffer, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	var raw bytes.Buffer
	if err := md.Convert([]byte(content), &raw); err != nil {
		buf.WriteString("<p>" + html.EscapeString(content) + "</p>")
		return
	}
	buf.Write(policy.SanitizeBytes(raw.Bytes()))
}

// HTML renders content for use inside html/template.
func HTML(content string) template.HTML {
	var buf bytes.Buffer
	RenderMarkdown(&buf, content)
	return template.HTML(buf.String())
}

// SafeURL validates and escapes a URL for use in an HTML attribute. Relative
// paths, fragments and http(s), mailto and tel URLs pass; anything else
// yields "".
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
