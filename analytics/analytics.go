// Package analytics counts detail page views without storing anything that
// identifies a visitor.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Kinds of content a view can be recorded against.
const (
	KindEvent = "event"
	KindPost  = "post"
)

// ValidKind reports whether kind is one of the recorded content kinds.
func ValidKind(kind string) bool {
	return kind == KindEvent || kind == KindPost
}

// salt is the per-installation random salt for visitor hashing.
var salt struct {
	mu    sync.RWMutex
	value string
}

// InitSalt loads the persistent salt, generating and storing one on first
// run. Call it once at startup before serving requests.
func InitSalt(store *Store) error {
	ctx := context.Background()
	s, err := store.GetSetting(ctx, "hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if s == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		s = hex.EncodeToString(b)
		if err := store.SetSetting(ctx, "hash_salt", s); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	salt.mu.Lock()
	salt.value = s
	salt.mu.Unlock()
	return nil
}

func getSalt() string {
	salt.mu.RLock()
	defer salt.mu.RUnlock()
	return salt.value
}

// View is a single recorded detail page view.
type View struct {
	Kind        string
	Slug        string
	VisitorHash string
	Day         time.Time
}

// PageViews is the number of distinct daily visitors of one slug.
type PageViews struct {
	Slug  string `json:"slug"`
	Views int    `json:"views"`
}

// HashVisitor derives an anonymous visitor id from IP and User-Agent.
func HashVisitor(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

var botMarkers = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"googlebot", "bingbot", "yandex", "baidu", "duckduckbot",
	"facebookexternalhit", "twitterbot", "linkedinbot",
	"ahrefsbot", "semrushbot", "mj12bot", "dotbot",
	"curl", "wget", "python-requests", "go-http-client",
}

// IsBot reports whether the User-Agent looks like a crawler or script.
// An empty User-Agent counts as a bot.
func IsBot(ua string) bool {
	ua = strings.ToLower(strings.TrimSpace(ua))
	if ua == "" {
		return true
	}
	for _, m := range botMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
