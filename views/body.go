package views

import (
	"bytes"
	"html/template"

	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/portabletext"
)

// Body renders a post body to sanitized HTML.
func Body(body portabletext.Body, images *asset.Resolver) (template.HTML, error) {
	var buf bytes.Buffer
	if err := portabletext.RenderHTML(&buf, body, portabletext.Options{Images: images}); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
