package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrNotConfigured is reported by Client.Do when there is no store handle.
var ErrNotConfigured = errors.New("content: store not configured")

// Querier is a read-only handle to the content store. Query decodes the
// result of groq, evaluated with params, into out.
type Querier interface {
	Query(ctx context.Context, groq string, params map[string]any, out any) error
}

// QueryError wraps a failed catalog query with its name.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("content: query %s: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Outcome labels for the fetch counter.
const (
	OutcomeRemote       = "remote"
	OutcomeUnconfigured = "unconfigured"
	OutcomeFallback     = "fallback"
)

// Client runs catalog queries against a store handle. The handle is set
// once at construction and never changes, so a Client is safe to share.
type Client struct {
	q       Querier
	logger  *slog.Logger
	fetches *prometheus.CounterVec
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for fallback reports.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers a fetch outcome counter on reg.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "place2b",
			Subsystem: "content",
			Name:      "fetch_total",
			Help:      "Content fetches by query and outcome.",
		}, []string{"query", "outcome"})
		if err := reg.Register(vec); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				vec = are.ExistingCollector.(*prometheus.CounterVec)
			} else {
				return
			}
		}
		c.fetches = vec
	}
}

// NewClient returns a Client for q. A nil q yields an unconfigured client
// that always serves fallbacks.
func NewClient(q Querier, opts ...ClientOption) *Client {
	c := &Client{q: q, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has a store handle.
func (c *Client) Configured() bool {
	return c != nil && c.q != nil
}

// Do runs q once and decodes the result into out. Unlike Fetch it reports
// errors, for diagnostics such as the check command.
func (c *Client) Do(ctx context.Context, q Query, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := c.q.Query(ctx, q.Descriptor().GROQ(), q.Params(), out); err != nil {
		return &QueryError{Query: q.Name(), Err: err}
	}
	return nil
}

func (c *Client) count(q Query, outcome string) {
	if c.fetches != nil {
		c.fetches.WithLabelValues(q.Name(), outcome).Inc()
	}
}

// Fetch runs q against the store and returns the decoded result. It never
// fails: an unconfigured client returns fallback without touching the
// store, and any store error is logged and answered with fallback.
func Fetch[T any](ctx context.Context, c *Client, q Query, fallback T) T {
	if !c.Configured() {
		if c != nil {
			c.logger.DebugContext(ctx, "content store not configured, using fallback", slog.String("query", q.Name()))
			c.count(q, OutcomeUnconfigured)
		}
		return fallback
	}

	var out T
	if err := c.Do(ctx, q, &out); err != nil {
		c.logger.ErrorContext(ctx, "content fetch failed, using fallback",
			slog.String("query", q.Name()),
			slog.Any("err", err),
		)
		c.count(q, OutcomeFallback)
		return fallback
	}
	c.count(q, OutcomeRemote)
	return out
}
