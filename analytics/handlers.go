package analytics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler records detail page views and serves popularity data.
type Handler struct {
	store   *Store
	logger  *slog.Logger
	limiter *rateLimiter
	done    chan struct{}
	now     func() time.Time
}

// NewHandler creates a handler over store. Each IP may record 60 views per
// minute; anything past that is dropped.
func NewHandler(store *Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		store:   store,
		logger:  logger,
		limiter: newRateLimiter(60, time.Minute),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go h.limiter.run(h.done)
	return h
}

// Close stops the limiter sweep.
func (h *Handler) Close() {
	close(h.done)
}

// Track records a view of kind/slug for the requesting visitor. Bots,
// Do Not Track requests and rate-limited IPs are skipped. Errors are logged,
// never returned: a failed count must not fail the page.
func (h *Handler) Track(c echo.Context, kind, slug string) {
	req := c.Request()
	if !ValidKind(kind) || slug == "" {
		return
	}
	if req.Header.Get("DNT") == "1" || IsBot(req.UserAgent()) {
		return
	}
	ip := c.RealIP()
	if !h.limiter.allow(ip) {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), 2*time.Second)
	defer cancel()
	_, err := h.store.RecordView(ctx, View{
		Kind:        kind,
		Slug:        slug,
		VisitorHash: HashVisitor(ip, req.UserAgent()),
		Day:         h.now(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record view",
			slog.String("kind", kind),
			slog.String("slug", slug),
			slog.Any("err", err),
		)
	}
}

// PopularResponse is the JSON body of GET /api/popular.
type PopularResponse struct {
	Kind  string      `json:"kind"`
	Days  int         `json:"days"`
	Pages []PageViews `json:"pages"`
}

// Query parameter bounds for Popular.
const (
	defaultDays  = 30
	maxDays      = 365
	defaultLimit = 5
	maxLimit     = 50
)

func intParam(c echo.Context, name string, def, max int) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

// Popular serves the most viewed slugs: ?kind=event|post&days=N&limit=N.
func (h *Handler) Popular(c echo.Context) error {
	kind := c.QueryParam("kind")
	if kind == "" {
		kind = KindEvent
	}
	if !ValidKind(kind) {
		return echo.NewHTTPError(http.StatusBadRequest, "kind must be event or post")
	}
	days, ok := intParam(c, "days", defaultDays, maxDays)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "days must be between 1 and 365")
	}
	limit, ok := intParam(c, "limit", defaultLimit, maxLimit)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 50")
	}

	since := h.now().AddDate(0, 0, -(days - 1))
	pages, err := h.store.Popular(c.Request().Context(), kind, since, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PopularResponse{Kind: kind, Days: days, Pages: pages})
}

// RegisterRoutes mounts the public analytics endpoints.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/popular", h.Popular)
}
