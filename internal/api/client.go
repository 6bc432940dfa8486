package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the current bearer token. An empty string means no
// session; the request is sent without an Authorization header and the
// server rejects it if one was required.
type TokenSource interface {
	AccessToken() string
}

// Client is the single HTTP client for the Work Tracker API. It attaches the
// bearer token to every request, maps error responses onto the typed error
// set, and is the only place that reacts to a 401 globally (gateways must
// not duplicate that).
type Client struct {
	baseURL string
	httpc   *http.Client

	tokens         TokenSource
	onUnauthorized func()

	Auth          *AuthService
	Clients       *ClientsService
	Projects      *ProjectsService
	Tasks         *TasksService
	TimeEntries   *TimeEntriesService
	Team          *TeamService
	Categories    *CategoriesService
	Reports       *ReportsService
	Notifications *NotificationsService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// New creates a client for the API at baseURL (including the /api prefix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Auth = &AuthService{c}
	c.Clients = &ClientsService{c}
	c.Projects = &ProjectsService{c}
	c.Tasks = &TasksService{c}
	c.TimeEntries = &TimeEntriesService{c}
	c.Team = &TeamService{c}
	c.Categories = &CategoriesService{c}
	c.Reports = &ReportsService{c}
	c.Notifications = &NotificationsService{c}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetTokenSource registers the session's token supplier.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

// OnUnauthorized registers the handler invoked once per 401 response before
// the error is returned to the caller. The caller's own error handling still
// runs; the handler only performs the global sign-out.
func (c *Client) OnUnauthorized(fn func()) { c.onUnauthorized = fn }

// errorBody is the server's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) put(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// doJSON sends a JSON request and decodes a JSON response into out (when out
// is non-nil and the response has a body).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

// upload sends r as a multipart form file under the "file" field.
func (c *Client) upload(ctx context.Context, path, fileName string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalising multipart body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return c.mapError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// mapError converts an error response into the typed error set. A 401 also
// triggers the registered global sign-out handler; the error is still
// returned so the call site's local handling runs.
func (c *Client) mapError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	switch {
	case status == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &AuthError{Detail: eb.Detail}
	case status == http.StatusNotFound:
		return &NotFoundError{Detail: eb.Detail}
	case status == http.StatusConflict:
		return &ConflictError{Detail: eb.Detail}
	case status >= 500:
		return &ServerError{Status: status, Detail: eb.Detail}
	default:
		return &ValidationError{Status: status, Detail: eb.Detail}
	}
}
