package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 2 * time.Minute

// maxErrorBody caps how much of a failed response is kept for the error message
const maxErrorBody = 4 << 10

// Endpoints holds the webhook URLs of the automation service
type Endpoints struct {
	GenerateDrafts string
	ConnectAccount string
	PublishPost    string
}

// Client calls the workflow-automation webhooks that generate drafts,
// exchange OAuth codes and publish posts
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	timeout    *time.Duration
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout. Zero disables it.
// A client passed with WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = &d
	}
}

// New creates a new webhook client
func New(endpoints Endpoints, opts ...ClientOption) *Client {
	c := &Client{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.timeout != nil {
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}

	return c
}

// StatusError is returned when a webhook answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("webhook %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

// GenerateDraftsInput represents input for draft generation
type GenerateDraftsInput struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// GenerateDrafts asks the automation service to generate drafts for a topic.
// The drafts are written to the data store by the workflow; the response body is ignored.
func (c *Client) GenerateDrafts(ctx context.Context, in GenerateDraftsInput) error {
	return c.post(ctx, c.endpoints.GenerateDrafts, in)
}

// ConnectAccountInput represents the OAuth callback payload
type ConnectAccountInput struct {
	Code   string `json:"code"`
	State  string `json:"state"`
	UserID string `json:"userId"`
}

// ConnectAccount hands an OAuth authorization code to the automation service
func (c *Client) ConnectAccount(ctx context.Context, in ConnectAccountInput) error {
	return c.post(ctx, c.endpoints.ConnectAccount, in)
}

// PublishPostInput represents input for publishing a post
type PublishPostInput struct {
	PostID string `json:"postId"`
	PageID string `json:"page_id"`
	UserID string `json:"userId"`
}

// PublishPost asks the automation service to publish a post to the selected page
func (c *Client) PublishPost(ctx context.Context, in PublishPostInput) error {
	return c.post(ctx, c.endpoints.PublishPost, in)
}

// post sends a JSON body to a webhook and checks the status code
func (c *Client) post(ctx context.Context, endpoint string, body interface{}) error {
	if endpoint == "" {
		return fmt.Errorf("webhook endpoint is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// do executes an HTTP request; any 2xx status is a success
func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(body)),
		}
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
