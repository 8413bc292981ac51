package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SanityConfig identifies a Sanity project and dataset.
type SanityConfig struct {
	ProjectID  string `toml:"project_id"`
	Dataset    string `toml:"dataset"`
	APIVersion string `toml:"api_version"`
	UseCDN     bool   `toml:"use_cdn"`
	Token      string `toml:"token"`
	// BaseURL overrides the API origin, e.g. for tests.
	BaseURL string `toml:"base_url"`
}

// Configured reports whether both required identifiers are present.
func (c SanityConfig) Configured() bool {
	return c.ProjectID != "" && c.Dataset != ""
}

const defaultAPIVersion = "2024-01-01"

// endpoint returns the query URL for the configured dataset.
func (c SanityConfig) endpoint() string {
	version := c.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	version = "v" + strings.TrimPrefix(version, "v")
	base := c.BaseURL
	if base == "" {
		host := "api.sanity.io"
		if c.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = "https://" + c.ProjectID + "." + host
	}
	return strings.TrimSuffix(base, "/") + "/" + version + "/data/query/" + url.PathEscape(c.Dataset)
}

// APIError is an error document returned by the query API.
type APIError struct {
	StatusCode  int
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("sanity: status %d", e.StatusCode)
	}
	return fmt.Sprintf("sanity: status %d: %s (%s)", e.StatusCode, e.Description, e.Type)
}

// SanityClient is a Querier over the Sanity HTTP query API.
type SanityClient struct {
	cfg  SanityConfig
	http *http.Client
}

// NewSanityClient returns a handle for cfg. httpClient may be nil.
func NewSanityClient(cfg SanityConfig, httpClient *http.Client) *SanityClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &SanityClient{cfg: cfg, http: httpClient}
}

// ClientFromConfig builds the shared content client. When cfg lacks a
// project or dataset the client has no handle and serves fallbacks only.
func ClientFromConfig(cfg SanityConfig, httpClient *http.Client, opts ...ClientOption) *Client {
	if !cfg.Configured() {
		return NewClient(nil, opts...)
	}
	return NewClient(NewSanityClient(cfg, httpClient), opts...)
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *APIError       `json:"error"`
}

// Query implements Querier.
func (s *SanityClient) Query(ctx context.Context, groq string, params map[string]any, out any) error {
	v := url.Values{}
	v.Set("query", groq)
	for k, p := range params {
		enc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode param %s: %w", k, err)
		}
		v.Set("$"+k, string(enc))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.endpoint()+"?"+v.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var qr queryResponse
	decodeErr := json.Unmarshal(body, &qr)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && qr.Error != nil {
			apiErr.Type = qr.Error.Type
			apiErr.Description = qr.Error.Description
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(qr.Result) == 0 {
		return fmt.Errorf("decode response: missing result")
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
