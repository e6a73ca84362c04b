package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	restPath       = "/rest/v1"
	defaultTimeout = 30 * time.Second
)

// Client is a minimal PostgREST client for a Supabase project
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new Supabase REST client.
// baseURL is the project URL, e.g. https://xyz.supabase.co
func New(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error body returned by PostgREST
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase API error: %s (status: %d, code: %s)", e.Message, e.StatusCode, e.Code)
}

// Filter is a PostgREST horizontal filter, e.g. {Column: "user_id", Op: "eq", Value: "42"}
type Filter struct {
	Column string
	Op     string
	Value  string
}

// Eq builds an equality filter
func Eq(column, value string) Filter {
	return Filter{Column: column, Op: "eq", Value: value}
}

// Order describes result ordering
type Order struct {
	Column    string
	Ascending bool
}

// SelectInput represents input for reading rows
type SelectInput struct {
	Table   string
	Columns string // defaults to "*"
	Filters []Filter
	Order   *Order
}

// Select reads rows from a table and decodes them into out (a pointer to a slice)
func (c *Client) Select(ctx context.Context, in SelectInput, out interface{}) error {
	params := url.Values{}
	columns := in.Columns
	if columns == "" {
		columns = "*"
	}
	params.Set("select", columns)
	addFilters(params, in.Filters)

	if in.Order != nil {
		dir := "desc"
		if in.Order.Ascending {
			dir = "asc"
		}
		params.Set("order", in.Order.Column+"."+dir)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(in.Table, params), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	return c.do(req, out)
}

// UpdateInput represents input for updating rows
type UpdateInput struct {
	Table   string
	Filters []Filter
	Values  map[string]interface{}
}

// Update patches every row matching the filters and returns how many rows changed
func (c *Client) Update(ctx context.Context, in UpdateInput) (int, error) {
	if len(in.Filters) == 0 {
		return 0, fmt.Errorf("refusing to update %s without filters", in.Table)
	}

	body, err := json.Marshal(in.Values)
	if err != nil {
		return 0, fmt.Errorf("encoding request: %w", err)
	}

	params := url.Values{}
	addFilters(params, in.Filters)

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.tableURL(in.Table, params), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// PostgREST answers 200 with an empty array when no row matched
	req.Header.Set("Prefer", "return=representation")

	var rows []json.RawMessage
	if err := c.do(req, &rows); err != nil {
		return 0, err
	}

	return len(rows), nil
}

func (c *Client) tableURL(table string, params url.Values) string {
	return fmt.Sprintf("%s%s/%s?%s", c.baseURL, restPath, table, params.Encode())
}

func addFilters(params url.Values, filters []Filter) {
	for _, f := range filters {
		params.Add(f.Column, f.Op+"."+f.Value)
	}
}

// do executes an HTTP request and decodes the response
func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	// Check for error response
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
