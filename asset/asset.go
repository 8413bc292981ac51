// Package asset models CMS image references and turns them into CDN URLs.
package asset

import (
	"net/url"
	"regexp"
	"strconv"
)

// DefaultCDN is the image endpoint used by Sanity projects.
const DefaultCDN = "https://cdn.sanity.io"

// Reference points at a stored asset document.
type Reference struct {
	Ref  string `json:"_ref"`
	Type string `json:"_type,omitempty"`
}

// Image is an opaque reference to an image asset embedded in a document.
type Image struct {
	Type    string     `json:"_type,omitempty"`
	Asset   *Reference `json:"asset,omitempty"`
	Alt     string     `json:"alt,omitempty"`
	Caption string     `json:"caption,omitempty"`
}

// image-<id>-<width>x<height>-<format>
var reImageRef = regexp.MustCompile(`^image-([A-Za-z0-9]+)-(\d+)x(\d+)-([a-z0-9]+)$`)

// Resolver builds image URLs for one project/dataset pair. A Resolver with
// no project or dataset is valid and resolves nothing.
type Resolver struct {
	base      string
	projectID string
	dataset   string
}

// NewResolver returns a Resolver for the given Sanity project and dataset.
func NewResolver(projectID, dataset string) *Resolver {
	return &Resolver{base: DefaultCDN, projectID: projectID, dataset: dataset}
}

// WithBase returns a copy of r that targets a different CDN origin.
func (r *Resolver) WithBase(base string) *Resolver {
	cp := *r
	cp.base = base
	return &cp
}

// Configured reports whether r can produce URLs at all.
func (r *Resolver) Configured() bool {
	return r != nil && r.projectID != "" && r.dataset != ""
}

// Resolve returns the display URL for img. A positive width or height asks
// the CDN for a scaled image; zero leaves that dimension to the source.
// The second return value is false when there is nothing to show.
func (r *Resolver) Resolve(img *Image, width, height int) (string, bool) {
	if !r.Configured() || img == nil || img.Asset == nil {
		return "", false
	}
	m := reImageRef.FindStringSubmatch(img.Asset.Ref)
	if m == nil {
		return "", false
	}
	id, w, h, format := m[1], m[2], m[3], m[4]

	u, err := url.Parse(r.base)
	if err != nil || u.Host == "" {
		return "", false
	}
	u = u.JoinPath("images", r.projectID, r.dataset, id+"-"+w+"x"+h+"."+format)

	q := url.Values{}
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("h", strconv.Itoa(height))
	}
	u.RawQuery = q.Encode()
	return u.String(), true
}

// Dimensions returns the intrinsic size encoded in the asset reference.
func Dimensions(img *Image) (width, height int, ok bool) {
	if img == nil || img.Asset == nil {
		return 0, 0, false
	}
	m := reImageRef.FindStringSubmatch(img.Asset.Ref)
	if m == nil {
		return 0, 0, false
	}
	width, _ = strconv.Atoi(m[2])
	height, _ = strconv.Atoi(m[3])
	return width, height, true
}

// Responsive holds a set of URLs for srcset attributes.
type Responsive struct {
	Small    string
	Medium   string
	Large    string
	Original string
}

// Responsive resolves img at the standard breakpoints.
func (r *Resolver) Responsive(img *Image) (Responsive, bool) {
	orig, ok := r.Resolve(img, 0, 0)
	if !ok {
		return Responsive{}, false
	}
	small, _ := r.Resolve(img, 640, 0)
	medium, _ := r.Resolve(img, 1024, 0)
	large, _ := r.Resolve(img, 1920, 0)
	return Responsive{Small: small, Medium: medium, Large: large, Original: orig}, true
}

// SrcSet formats the responsive set as an HTML srcset value.
func (rs Responsive) SrcSet() string {
	if rs.Small == "" {
		return ""
	}
	return rs.Small + " 640w, " + rs.Medium + " 1024w, " + rs.Large + " 1920w"
}
