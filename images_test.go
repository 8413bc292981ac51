package place2b

import (
	"bytes"
	"image/color"
	"image/png"
	"net/http"
	"testing"
)

func TestRenderPlaceholder(t *testing.T) {
	b, err := RenderPlaceholder("AI Summit", 120, 63)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 120 || got.Y != 63 {
		t.Fatalf("size = %v, want 120x63", got)
	}
	if got := color.RGBAModel.Convert(img.At(0, 0)); got != gradientFrom {
		t.Errorf("top-left = %v, want %v", got, gradientFrom)
	}
	if got := color.RGBAModel.Convert(img.At(119, 62)); got != gradientTo {
		t.Errorf("bottom-right = %v, want %v", got, gradientTo)
	}
}

func TestRenderPlaceholderInvalidSize(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, -1}, {2001, 10}, {10, 2001}} {
		if _, err := RenderPlaceholder("x", size[0], size[1]); err == nil {
			t.Errorf("size %v: expected error", size)
		}
	}
}

func TestPlaceholderCacheSharesInitial(t *testing.T) {
	p, err := newPlaceholders()
	if err != nil {
		t.Fatal(err)
	}
	defer p.cache.Close()

	a, err := p.get("Alpha", 40, 20)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.get("another", 40, 20)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("titles with the same initial should share an image")
	}
}

func TestPlaceholderHandler(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, ViewFuncs{})

	rec := get(a, "/placeholder/A.png?w=40&h=20")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=31536000, immutable" {
		t.Errorf("Cache-Control = %q", cc)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Size(); got.X != 40 || got.Y != 20 {
		t.Errorf("size = %v", got)
	}

	def, err := png.Decode(get(a, "/placeholder/B.png").Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := def.Bounds().Size(); got.X != 1200 || got.Y != 630 {
		t.Errorf("default size = %v", got)
	}

	for target, want := range map[string]int{
		"/placeholder/A.png?w=0":    http.StatusBadRequest,
		"/placeholder/A.png?h=5000": http.StatusBadRequest,
		"/placeholder/A.png?w=abc":  http.StatusBadRequest,
		"/placeholder/A.gif":        http.StatusNotFound,
	} {
		if rec := get(a, target); rec.Code != want {
			t.Errorf("%s: status = %d, want %d", target, rec.Code, want)
		}
	}
}

func TestPlaceholderGlyph(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"AI Summit", "A"},
		{"élan", "E"},
		{"Ñandú", "N"},
		{"日本の夏", "?"},
		{"Ωmega", "?"},
		{"", "?"},
		{"42 things", "4"},
	}
	for _, tt := range tests {
		if got := placeholderGlyph(tt.title); got != tt.want {
			t.Errorf("placeholderGlyph(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestRenderPlaceholderNonASCII(t *testing.T) {
	accented, err := RenderPlaceholder("Élan", 60, 30)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := RenderPlaceholder("Elan", 60, 30)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(accented, plain) {
		t.Error("accented initial should draw its base letter")
	}

	cjk, err := RenderPlaceholder("日本", 60, 30)
	if err != nil {
		t.Fatal(err)
	}
	unknown, err := RenderPlaceholder("?", 60, 30)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(cjk, unknown) {
		t.Error("initial outside the font should draw the fallback glyph")
	}
}
