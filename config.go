package place2b

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/place2b/content"
	"github.com/eringen/place2b/fallback"
)

// SiteConfig holds all configuration for a place2b site.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "The Place 2B")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `toml:"description"` // Site description for RSS and meta tags

	Addr string `toml:"addr"` // Listen address (default ":3000")

	Sanity content.SanityConfig `toml:"sanity"`

	// Page cache lifetimes. A negative value disables caching for the class.
	HomeTTL time.Duration `toml:"home_ttl"` // default 1h
	ListTTL time.Duration `toml:"list_ttl"` // lists and detail pages, default 30m

	AnalyticsEnabled      bool   `toml:"analytics_enabled"`
	AnalyticsDatabasePath string `toml:"analytics_database_path"` // default "data/analytics.db"

	AccessLog   string `toml:"access_log"`   // rotating access log file, empty for none
	FallbackDir string `toml:"fallback_dir"` // directory with events.json and posts.json
	Debug       bool   `toml:"debug"`
}

const (
	defaultHomeTTL = time.Hour
	defaultListTTL = 30 * time.Minute
)

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "The Place 2B"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Discover amazing events and read insightful articles about technology, design, and innovation."
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.HomeTTL == 0 {
		c.HomeTTL = defaultHomeTTL
	}
	if c.ListTTL == 0 {
		c.ListTTL = defaultListTTL
	}
}

// LoadConfigFile decodes a TOML config file. Durations are written as
// strings such as "30m".
func LoadConfigFile(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("place2b: load config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any of the supported environment variables
// that are set.
func ApplyEnv(cfg *SiteConfig) error {
	setString(&cfg.Name, "SITE_NAME")
	setString(&cfg.URL, "SITE_URL")
	setString(&cfg.Description, "SITE_DESCRIPTION")
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.Sanity.ProjectID, "SANITY_PROJECT_ID")
	setString(&cfg.Sanity.Dataset, "SANITY_DATASET")
	setString(&cfg.Sanity.APIVersion, "SANITY_API_VERSION")
	setString(&cfg.Sanity.Token, "SANITY_READ_TOKEN")
	setString(&cfg.AnalyticsDatabasePath, "ANALYTICS_DATABASE_PATH")
	setString(&cfg.AccessLog, "ACCESS_LOG")
	setString(&cfg.FallbackDir, "FALLBACK_DIR")

	for key, dst := range map[string]*bool{
		"SANITY_USE_CDN":    &cfg.Sanity.UseCDN,
		"ANALYTICS_ENABLED": &cfg.AnalyticsEnabled,
	} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("place2b: %s: %w", key, err)
			}
			*dst = b
		}
	}
	for key, dst := range map[string]*time.Duration{
		"HOME_TTL": &cfg.HomeTTL,
		"LIST_TTL": &cfg.ListTTL,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("place2b: %s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the application logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithContentClient replaces the content client built from SiteConfig.Sanity.
func WithContentClient(c *content.Client) Option {
	return func(a *App) {
		a.Content = c
	}
}

// WithFallback replaces the embedded fallback dataset.
func WithFallback(d *fallback.Dataset) Option {
	return func(a *App) {
		a.Fallback = d
	}
}

// WithHTTPClient sets the HTTP client used for CMS queries.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.httpClient = c
	}
}

// WithRegistry sets the prometheus registry behind /metrics (default a new
// registry with the Go and process collectors).
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}
