package place2b

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Yiling-J/theine-go"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/eringen/place2b/views"
)

const (
	defaultPlaceholderWidth  = 1200
	defaultPlaceholderHeight = 630
	maxPlaceholderSide       = 2000
	placeholderCacheSize     = 256
)

var (
	gradientFrom = color.RGBA{0x66, 0x7e, 0xea, 0xff}
	gradientTo   = color.RGBA{0x76, 0x4b, 0xa2, 0xff}
)

// RenderPlaceholder draws the image shown for content without a picture: a
// diagonal gradient with the title's initial in the middle.
func RenderPlaceholder(title string, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > maxPlaceholderSide || height > maxPlaceholderSide {
		return nil, fmt.Errorf("placeholder: invalid size %dx%d", width, height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	span := width + height - 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst.SetRGBA(x, y, lerp(gradientFrom, gradientTo, x+y, span))
		}
	}

	// Draw the glyph at the bitmap font's native size, then scale it up.
	face := basicfont.Face7x13
	initial := placeholderGlyph(title)
	glyph := image.NewRGBA(image.Rect(0, 0, face.Advance, face.Height))
	d := font.Drawer{
		Dst:  glyph,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(initial)

	side := min(width, height) / 2
	gw := side * face.Advance / face.Height
	x0 := (width - gw) / 2
	y0 := (height - side) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+gw, y0+side), glyph, glyph.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("placeholder: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// placeholderGlyph returns the title's initial as a printable ASCII
// character, the only range basicfont draws. Accented letters lose their
// marks; anything else becomes "?".
func placeholderGlyph(title string) string {
	r, _ := utf8.DecodeRuneInString(norm.NFD.String(views.Initial(title)))
	if r > ' ' && r <= '~' {
		return string(r)
	}
	return "?"
}

func lerp(a, b color.RGBA, step, span int) color.RGBA {
	if span <= 0 {
		return a
	}
	mix := func(x, y uint8) uint8 {
		return uint8((int(x)*(span-step) + int(y)*step) / span)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// placeholders caches rendered PNGs by initial and size. Only the initial
// is drawn, so titles sharing it share an entry.
type placeholders struct {
	cache *theine.Cache[string, []byte]
	group singleflight.Group
}

func newPlaceholders() (*placeholders, error) {
	c, err := theine.NewBuilder[string, []byte](placeholderCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("place2b: build placeholder cache: %w", err)
	}
	return &placeholders{cache: c}, nil
}

func (p *placeholders) get(title string, width, height int) ([]byte, error) {
	key := placeholderGlyph(title) + "|" + strconv.Itoa(width) + "x" + strconv.Itoa(height)
	if b, ok := p.cache.Get(key); ok {
		return b, nil
	}
	v, err, _ := p.group.Do(key, func() (any, error) {
		b, err := RenderPlaceholder(title, width, height)
		if err != nil {
			return nil, err
		}
		p.cache.Set(key, b, 1)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func dimension(c echo.Context, name string, def int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > maxPlaceholderSide {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}

func (a *App) handlePlaceholder(c echo.Context) error {
	file := c.Param("file")
	title, ok := strings.CutSuffix(file, ".png")
	if !ok || !utf8.ValidString(title) {
		return echo.ErrNotFound
	}
	w, err := dimension(c, "w", defaultPlaceholderWidth)
	if err != nil {
		return err
	}
	h, err := dimension(c, "h", defaultPlaceholderHeight)
	if err != nil {
		return err
	}
	b, err := a.placeholders.get(title, w, h)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", b)
}
