// Package marketplace is the HTTP client for the freelance-marketplace
// backend. The backend is the sole owner of chat data; this client is
// strictly read-only and normalizes the backend's loose JSON shapes at
// this single boundary.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 30 * time.Second
)

// Client is a marketplace backend API client
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithAPIToken sets the bearer token sent with every request
func WithAPIToken(token string) ClientOption {
	return func(c *Client) {
		c.apiToken = token
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new marketplace API client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error response from the marketplace backend
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace API error: %s (status %d)", e.Message, e.StatusCode)
}

// GetInbox returns all chat events touching the subject user. The result
// is unpaginated and may contain duplicate or out-of-order entries; the
// aggregator tolerates both.
func (c *Client) GetInbox(ctx context.Context, subjectID string) ([]entity.ChatEvent, error) {
	endpoint := fmt.Sprintf("%s/api/admin/chats", c.baseURL)

	params := url.Values{}
	params.Set("user_id", subjectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out eventListResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return normalizeEvents(out.Data), nil
}

// GetConversation returns the full transcript between the subject and one
// counterpart.
func (c *Client) GetConversation(ctx context.Context, subjectID, counterpartID string) ([]entity.ChatEvent, error) {
	endpoint := fmt.Sprintf("%s/api/admin/chats/conversation", c.baseURL)

	params := url.Values{}
	params.Set("user_id", subjectID)
	params.Set("counterpart_id", counterpartID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out eventListResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return normalizeEvents(out.Data), nil
}

// GetProfile returns display data for one marketplace user
func (c *Client) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	endpoint := fmt.Sprintf("%s/api/admin/users/%s", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out profileResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	profile := out.Data.normalize()
	return &profile, nil
}

// do executes an HTTP request and decodes the response
func (c *Client) do(req *http.Request, out interface{}) error {
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
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

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
