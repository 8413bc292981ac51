package place2b

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.Any("err", v.Error))
			}
			a.Logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			if a.accessLog != nil {
				a.accessLog.LogAttrs(c.Request().Context(), slog.LevelInfo, "access",
					slog.String("ip", v.RemoteIP),
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Duration("latency", v.Latency),
					slog.String("user_agent", v.UserAgent),
				)
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "place2b",
		Registerer: a.registry,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/metrics" || path == "/healthz"
		},
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/placeholder/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' https://cdn.sanity.io data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper:      skipTrailingSlash,
	}))

	e.Use(a.cacheControlMiddleware)
}

func skipTrailingSlash(c echo.Context) bool {
	path := c.Request().URL.Path
	return strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/placeholder/") ||
		strings.HasPrefix(path, "/api/") ||
		path == "/sitemap.xml" || path == "/feed.xml" || path == "/events.xml" ||
		path == "/robots.txt" || path == "/metrics" || path == "/healthz"
}

// cacheControlMiddleware advertises the page cache lifetimes to browsers
// and proxies.
func (a *App) cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	home := maxAge(a.Config.HomeTTL)
	list := maxAge(a.Config.ListTTL)
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		h := c.Response().Header()
		switch {
		case strings.HasPrefix(path, "/static/"), strings.HasPrefix(path, "/placeholder/"):
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/events.xml" || path == "/robots.txt":
			h.Set("Cache-Control", "public, max-age=86400")
		case path == "/metrics" || path == "/healthz" || strings.HasPrefix(path, "/api/"):
			h.Set("Cache-Control", "no-store")
		case path == "/":
			h.Set("Cache-Control", home)
		default:
			h.Set("Cache-Control", list)
		}
		return next(c)
	}
}

func maxAge(ttl time.Duration) string {
	if ttl <= 0 {
		return "no-cache"
	}
	return "public, max-age=" + strconv.Itoa(int(ttl.Seconds()))
}
