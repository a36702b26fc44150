package gtranslate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dubforge/internal/services"
)

// DefaultEndpoint is the free web translation endpoint.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// Client translates text via the gtx web endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithEndpoint overrides the translation endpoint (for testing or proxies).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if strings.TrimSpace(endpoint) != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Client using defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate returns text translated into target. An empty input translates to
// an empty output without a network call. Network and service failures are
// transient; HTTP 429 is additionally marked rate limited.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", services.Wrap(services.ErrValidation, "translate", "request", "empty target language", nil)
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrTransient, "translate", "request", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "translate", "response", "", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", services.Wrap(services.ErrRateLimited, "translate", "response", "HTTP 429", nil)
	case resp.StatusCode != http.StatusOK:
		return "", services.Wrap(services.ErrTransient, "translate", "response", fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	translated, err := parseResponse(body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "translate", "parse", "", err)
	}
	return translated, nil
}

// parseResponse walks the gtx payload: the first element is a list of
// translated chunks, each chunk a list whose first entry is the text.
func parseResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty payload")
	}

	var chunks [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &chunks); err != nil {
		return "", fmt.Errorf("decode chunk list: %w", err)
	}

	var builder strings.Builder
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(chunk[0], &piece); err != nil {
			continue
		}
		builder.WriteString(piece)
	}
	return strings.TrimSpace(builder.String()), nil
}
