package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

func newTestHandler(t *testing.T) (*Handler, *Store, *echo.Echo) {
	t.Helper()
	s := newTestStore(t)
	h := NewHandler(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(h.Close)
	h.now = func() time.Time { return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) }
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	h.RegisterRoutes(e)
	return h, s, e
}

func track(h *Handler, e *echo.Echo, ip, ua string, header map[string]string, kind, slug string) {
	req := httptest.NewRequest(http.MethodGet, "/events/"+slug+"/", nil)
	req.RemoteAddr = ip + ":1234"
	req.Header.Set("User-Agent", ua)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	h.Track(e.NewContext(req, httptest.NewRecorder()), kind, slug)
}

func popular(t *testing.T, s *Store, kind string) []PageViews {
	t.Helper()
	got, err := s.Popular(context.Background(), kind, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	return got
}

func TestTrack(t *testing.T) {
	h, s, e := newTestHandler(t)

	track(h, e, "10.0.0.1", browserUA, nil, KindEvent, "ai-summit")
	track(h, e, "10.0.0.1", browserUA, nil, KindEvent, "ai-summit")
	track(h, e, "10.0.0.2", browserUA, nil, KindEvent, "ai-summit")

	assert.Equal(t, []PageViews{{Slug: "ai-summit", Views: 2}}, popular(t, s, KindEvent))
}

func TestTrackSkips(t *testing.T) {
	h, s, e := newTestHandler(t)

	track(h, e, "10.0.0.1", "Googlebot/2.1", nil, KindEvent, "ai-summit")
	track(h, e, "10.0.0.2", browserUA, map[string]string{"DNT": "1"}, KindEvent, "ai-summit")
	track(h, e, "10.0.0.3", browserUA, nil, "page", "ai-summit")
	track(h, e, "10.0.0.4", browserUA, nil, KindEvent, "")

	assert.Empty(t, popular(t, s, KindEvent))
}

func TestTrackRateLimited(t *testing.T) {
	h, s, e := newTestHandler(t)
	h.limiter = newRateLimiter(1, time.Minute)

	track(h, e, "10.0.0.1", browserUA, nil, KindPost, "first")
	track(h, e, "10.0.0.1", browserUA, nil, KindPost, "second")

	assert.Equal(t, []PageViews{{Slug: "first", Views: 1}}, popular(t, s, KindPost))
}

func TestPopularEndpoint(t *testing.T) {
	h, _, e := newTestHandler(t)
	track(h, e, "10.0.0.1", browserUA, nil, KindPost, "hello")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/popular?kind=post&days=7&limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PopularResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, PopularResponse{Kind: KindPost, Days: 7, Pages: []PageViews{{Slug: "hello", Views: 1}}}, resp)
}

func TestPopularDefaults(t *testing.T) {
	_, _, e := newTestHandler(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/popular", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"event","days":30,"pages":[]}`, rec.Body.String())
}

func TestPopularBadRequest(t *testing.T) {
	_, _, e := newTestHandler(t)

	for _, q := range []string{"kind=page", "days=0", "days=400", "days=x", "limit=0", "limit=51"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/popular?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}
