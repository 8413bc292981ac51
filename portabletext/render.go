package portabletext

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	chtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/markdown"
)

// Options controls HTML rendering.
type Options struct {
	Images     *asset.Resolver
	ImageWidth int    // default 1200
	CodeStyle  string // chroma style, default "github"
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("pre", "code", "span", "div", "figure")
	p.AllowElements("figure", "figcaption")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Render returns a templ.Component that writes body as sanitized HTML.
func Render(body Body, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := RenderHTML(&buf, body, opts); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderHTML writes the sanitized HTML representation of body to buf.
func RenderHTML(buf *bytes.Buffer, body Body, opts Options) error {
	if opts.ImageWidth == 0 {
		opts.ImageWidth = 1200
	}
	if opts.CodeStyle == "" {
		opts.CodeStyle = "github"
	}
	var raw bytes.Buffer
	hw := &htmlWriter{buf: &raw, opts: opts, ids: map[string]int{}}
	if err := Walk(body, hw); err != nil {
		return err
	}
	buf.Write(policy.SanitizeBytes(raw.Bytes()))
	return nil
}

type htmlWriter struct {
	buf  *bytes.Buffer
	opts Options
	ids  map[string]int
	// open list item per depth, closed before the next sibling
	liOpen []bool
}

func listTag(ordered bool) string {
	if ordered {
		return "ol"
	}
	return "ul"
}

func (h *htmlWriter) ListStart(ordered bool, depth int) error {
	h.buf.WriteString("<" + listTag(ordered) + ">")
	h.liOpen = append(h.liOpen, false)
	return nil
}

func (h *htmlWriter) ListEnd(ordered bool, depth int) error {
	if n := len(h.liOpen); n > 0 {
		if h.liOpen[n-1] {
			h.buf.WriteString("</li>")
		}
		h.liOpen = h.liOpen[:n-1]
	}
	h.buf.WriteString("</" + listTag(ordered) + ">")
	return nil
}

func (h *htmlWriter) Block(b *Block) error {
	switch b.Kind() {
	case KindListItem:
		n := len(h.liOpen)
		if n > 0 && h.liOpen[n-1] {
			h.buf.WriteString("</li>")
		}
		h.buf.WriteString("<li>")
		h.writeSpans(b)
		if n > 0 {
			h.liOpen[n-1] = true
		}
	case KindHeading:
		level := strconv.Itoa(b.HeadingLevel())
		h.buf.WriteString("<h" + level)
		if id := h.headingID(b.Text()); id != "" {
			h.buf.WriteString(` id="` + id + `"`)
		}
		h.buf.WriteString(">")
		h.writeSpans(b)
		h.buf.WriteString("</h" + level + ">")
	case KindQuote:
		h.buf.WriteString("<blockquote><p>")
		h.writeSpans(b)
		h.buf.WriteString("</p></blockquote>")
	default:
		h.buf.WriteString("<p>")
		h.writeSpans(b)
		h.buf.WriteString("</p>")
	}
	return nil
}

// headingID derives a unique anchor from heading text.
func (h *htmlWriter) headingID(text string) string {
	id := slug.Make(text)
	if id == "" {
		return ""
	}
	h.ids[id]++
	if n := h.ids[id]; n > 1 {
		id += "-" + strconv.Itoa(n-1)
	}
	return id
}

func (h *htmlWriter) writeSpans(b *Block) {
	for _, s := range b.Children {
		var closers []string
		for _, m := range s.Marks {
			open, end := h.markTags(b, m)
			if open == "" {
				continue
			}
			h.buf.WriteString(open)
			closers = append(closers, end)
		}
		h.buf.WriteString(strings.ReplaceAll(html.EscapeString(s.Text), "\n", "<br>"))
		for i := len(closers) - 1; i >= 0; i-- {
			h.buf.WriteString(closers[i])
		}
	}
}

func (h *htmlWriter) markTags(b *Block, mark string) (string, string) {
	switch mark {
	case MarkStrong:
		return "<strong>", "</strong>"
	case MarkEm:
		return "<em>", "</em>"
	case MarkCode:
		return "<code>", "</code>"
	case MarkUnder:
		return "<u>", "</u>"
	case MarkStrike:
		return "<s>", "</s>"
	}
	md, ok := b.MarkDef(mark)
	if !ok || md.Type != "link" || md.Href == "" {
		return "", ""
	}
	href := markdown.SafeURL(md.Href)
	if href == "" {
		return "", ""
	}
	return `<a href="` + href + `">`, "</a>"
}

func (h *htmlWriter) Image(img *ImageBlock) error {
	src, ok := h.opts.Images.Resolve(&img.Image, h.opts.ImageWidth, 0)
	if !ok {
		return nil
	}
	h.buf.WriteString(`<figure class="pt-image"><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(img.Alt) + `" loading="lazy">`)
	if img.Caption != "" {
		h.buf.WriteString("<figcaption>" + html.EscapeString(img.Caption) + "</figcaption>")
	}
	h.buf.WriteString("</figure>")
	return nil
}

func (h *htmlWriter) Code(c *CodeBlock) error {
	lang := strings.ToLower(strings.TrimSpace(c.Language))
	if lang != "" {
		h.buf.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + html.EscapeString(lang) + `">` + html.EscapeString(lang) + `</span>`)
	}
	if err := highlight(h.buf, c.Code, lang, h.opts.CodeStyle); err != nil {
		h.buf.WriteString("<pre><code>" + html.EscapeString(c.Code) + "</code></pre>")
	}
	if lang != "" {
		h.buf.WriteString("</div>")
	}
	return nil
}

func highlight(w *bytes.Buffer, code, lang, style string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}
	formatter := chtml.New(chtml.WithClasses(true), chtml.TabWidth(4))
	var out bytes.Buffer
	if err := formatter.Format(&out, styles.Get(style), it); err != nil {
		return err
	}
	w.Write(out.Bytes())
	return nil
}

func (h *htmlWriter) Unknown(*Unknown) error { return nil }
