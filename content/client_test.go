package content

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeQuerier answers every query with payload, or fails with err.
type fakeQuerier struct {
	calls   int
	payload string
	err     error
	groq    string
	params  map[string]any
}

func (f *fakeQuerier) Query(ctx context.Context, groq string, params map[string]any, out any) error {
	f.calls++
	f.groq = groq
	f.params = params
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchUnconfiguredReturnsFallback(t *testing.T) {
	c := NewClient(nil, WithLogger(quietLogger()))
	fallback := []Event{}
	got := Fetch(context.Background(), c, EventsList{}, fallback)
	if got == nil || len(got) != 0 {
		t.Errorf("Fetch = %v, want empty fallback", got)
	}
}

func TestFetchIncompleteConfig(t *testing.T) {
	c := ClientFromConfig(SanityConfig{ProjectID: "abc"}, nil, WithLogger(quietLogger()))
	if c.Configured() {
		t.Fatal("client without dataset should be unconfigured")
	}
	for _, q := range Catalog() {
		fallback := []Event{{Title: "Sample"}}
		got := Fetch(context.Background(), c, q, fallback)
		if len(got) != 1 || got[0].Title != "Sample" {
			t.Errorf("%s: Fetch = %v, want fallback", q.Name(), got)
		}
	}
}

func TestFetchNilClient(t *testing.T) {
	var c *Client
	got := Fetch(context.Background(), c, PostsList{}, []BlogPost{{Title: "x"}})
	if len(got) != 1 {
		t.Errorf("nil client should return fallback, got %v", got)
	}
}

func TestFetchRemoteResult(t *testing.T) {
	fq := &fakeQuerier{payload: `[{"_id":"e1","title":"AI Summit","slug":"ai-summit","startDate":"2025-03-01T09:00:00Z","published":true}]`}
	c := NewClient(fq, WithLogger(quietLogger()))
	got := Fetch(context.Background(), c, EventsList{}, []Event{{Title: "fallback"}})
	if fq.calls != 1 {
		t.Fatalf("store calls = %d, want 1", fq.calls)
	}
	if len(got) != 1 || got[0].Title != "AI Summit" || got[0].Slug.Current != "ai-summit" {
		t.Errorf("Fetch = %+v", got)
	}
	if fq.groq != (EventsList{}).Descriptor().GROQ() {
		t.Errorf("unexpected groq sent: %s", fq.groq)
	}
}

func TestFetchPassesParams(t *testing.T) {
	fq := &fakeQuerier{payload: `null`}
	c := NewClient(fq, WithLogger(quietLogger()))
	got := Fetch(context.Background(), c, PostBySlug{Slug: "hello"}, &BlogPost{Title: "fallback"})
	if got != nil {
		t.Errorf("null result should decode to nil, got %+v", got)
	}
	if fq.params["slug"] != "hello" {
		t.Errorf("params = %v", fq.params)
	}
}

func TestFetchFailSoft(t *testing.T) {
	failures := []struct {
		name string
		q    *fakeQuerier
	}{
		{"network", &fakeQuerier{err: errors.New("dial tcp: connection refused")}},
		{"remote", &fakeQuerier{err: &APIError{StatusCode: 500, Description: "boom"}}},
		{"decode", &fakeQuerier{payload: `{"not":"a list"}`}},
		{"canceled", &fakeQuerier{err: context.Canceled}},
	}
	for _, f := range failures {
		t.Run(f.name, func(t *testing.T) {
			c := NewClient(f.q, WithLogger(quietLogger()))
			fallback := []Event{{Title: "Sample"}}
			for _, q := range Catalog() {
				got := Fetch(context.Background(), c, q, fallback)
				if len(got) != 1 || got[0].Title != "Sample" {
					t.Errorf("%s: Fetch = %v, want fallback", q.Name(), got)
				}
			}
			if f.q.calls != len(Catalog()) {
				t.Errorf("calls = %d, want one attempt per query", f.q.calls)
			}
		})
	}
}

func TestDoReportsErrors(t *testing.T) {
	c := NewClient(nil)
	var out []Event
	if err := c.Do(context.Background(), EventsList{}, &out); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Do unconfigured = %v, want ErrNotConfigured", err)
	}

	cause := &APIError{StatusCode: 401, Type: "httpUnauthorized"}
	c = NewClient(&fakeQuerier{err: cause})
	err := c.Do(context.Background(), EventsList{}, &out)
	var qe *QueryError
	if !errors.As(err, &qe) || qe.Query != "events-list" {
		t.Fatalf("Do = %v, want QueryError for events-list", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Errorf("cause not preserved: %v", err)
	}
}

func TestFetchCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	ok := NewClient(&fakeQuerier{payload: `[]`}, WithLogger(quietLogger()), WithMetrics(reg))
	bad := NewClient(&fakeQuerier{err: errors.New("down")}, WithLogger(quietLogger()), WithMetrics(reg))
	none := NewClient(nil, WithLogger(quietLogger()), WithMetrics(reg))

	Fetch(context.Background(), ok, PostsList{}, []BlogPost(nil))
	Fetch(context.Background(), bad, PostsList{}, []BlogPost(nil))
	Fetch(context.Background(), bad, PostsList{}, []BlogPost(nil))
	Fetch(context.Background(), none, PostsList{}, []BlogPost(nil))

	vec := ok.fetches
	if got := testutil.ToFloat64(vec.WithLabelValues("posts-list", OutcomeRemote)); got != 1 {
		t.Errorf("remote = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vec.WithLabelValues("posts-list", OutcomeFallback)); got != 2 {
		t.Errorf("fallback = %v, want 2", got)
	}
	if got := testutil.ToFloat64(vec.WithLabelValues("posts-list", OutcomeUnconfigured)); got != 1 {
		t.Errorf("unconfigured = %v, want 1", got)
	}
}
