// Package hub is a client for the Artifact Hub HTTP API used by the control
// panel: chart repositories, organizations and the user session.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"charthub/internal/domain"
)

const (
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 15 * time.Second

	// SessionCookieName is the cookie the hub keeps the session id in
	SessionCookieName = "sid"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
	userAgent       = "charthub/1.0"

	// maxResponseSize caps how much of a response body is read
	maxResponseSize = 4 << 20
)

// Client talks to a hub instance
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     zerolog.Logger
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithTimeout sets the timeout for HTTP requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger requests are traced to
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransport replaces the HTTP transport, mostly for tests
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithSessionCookie restores a session saved by a previous run
func WithSessionCookie(value string) ClientOption {
	return func(c *Client) {
		c.SetSessionCookie(value)
	}
}

// NewClient creates a new hub client
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid hub url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid hub url %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		baseURL: u,
		logger:  zerolog.Nop(),
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

// BaseURL returns the hub the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SessionCookie returns the current session cookie value, if any
func (c *Client) SessionCookie() string {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

// SetSessionCookie stores a session cookie value. An empty value clears it.
func (c *Client) SetSessionCookie(value string) {
	cookie := &http.Cookie{
		Name:  SessionCookieName,
		Value: value,
		Path:  "/",
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{cookie})
}

// ListChartRepositories returns the chart repositories of the scope in the
// order the hub returns them.
func (c *Client) ListChartRepositories(ctx context.Context, scope domain.Scope) ([]domain.ChartRepository, error) {
	body, err := c.do(ctx, http.MethodGet, chartRepositoriesPath(scope), nil, "")
	if err != nil {
		return nil, err
	}

	repos := []domain.ChartRepository{}
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("failed to decode chart repositories: %w", err)
	}
	return repos, nil
}

// AddChartRepository registers a chart repository in the scope
func (c *Client) AddChartRepository(ctx context.Context, scope domain.Scope, repo domain.ChartRepository) error {
	_, err := c.doJSON(ctx, http.MethodPost, chartRepositoriesPath(scope), repo)
	return err
}

// UpdateChartRepository updates the chart repository with repo.Name
func (c *Client) UpdateChartRepository(ctx context.Context, scope domain.Scope, repo domain.ChartRepository) error {
	p := chartRepositoriesPath(scope) + "/" + url.PathEscape(repo.Name)
	_, err := c.doJSON(ctx, http.MethodPut, p, repo)
	return err
}

// DeleteChartRepository removes the named chart repository
func (c *Client) DeleteChartRepository(ctx context.Context, scope domain.Scope, name string) error {
	p := chartRepositoriesPath(scope) + "/" + url.PathEscape(name)
	_, err := c.do(ctx, http.MethodDelete, p, nil, "")
	return err
}

// ListOrganizations returns the organizations the user belongs to
func (c *Client) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/user/orgs", nil, "")
	if err != nil {
		return nil, err
	}

	orgs := []domain.Organization{}
	if err := json.Unmarshal(body, &orgs); err != nil {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}
	return orgs, nil
}

// Login opens a session. The session cookie is kept in the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	_, err := c.do(ctx, http.MethodPost, "/api/v1/user/login", strings.NewReader(form.Encode()), contentTypeForm)
	return err
}

// Logout closes the session and forgets the cookie
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/v1/user/logout", nil, "")
	if err != nil && !IsLoginRedirect(err) {
		return err
	}
	c.SetSessionCookie("")
	return nil
}

// GetUserAlias returns the alias of the signed-in user
func (c *Client) GetUserAlias(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/user/alias", nil, "")
	if err != nil {
		return "", err
	}

	var user domain.User
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("failed to decode user alias: %w", err)
	}
	return user.Alias, nil
}

// RegisterUser signs up a new user. The hub sends a verification email; the
// new account cannot sign in until it is verified.
func (c *Client) RegisterUser(ctx context.Context, user domain.NewUser) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/v1/user", user)
	return err
}

func chartRepositoriesPath(scope domain.Scope) string {
	if scope.IsPersonal() {
		return "/api/v1/user/chart-repositories"
	}
	return "/api/v1/org/" + url.PathEscape(scope.Org) + "/chart-repositories"
}

func (c *Client) doJSON(ctx context.Context, method, urlPath string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}
	return c.do(ctx, method, urlPath, bytes.NewReader(payload), contentTypeJSON)
}

// do performs a request and returns the response body. Non-2xx responses
// are returned as *Error.
func (c *Client) do(ctx context.Context, method, urlPath string, body io.Reader, contentType string) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + urlPath

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", urlPath).Msg("request failed")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", urlPath).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request done")

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetworkError, err)
	}
	if len(data) > maxResponseSize {
		return nil, fmt.Errorf("%w: response from %s exceeds %d bytes", ErrNetworkError, urlPath, maxResponseSize)
	}

	if resp.StatusCode >= 400 {
		return nil, newError(resp.StatusCode, errorMessage(data))
	}
	return data, nil
}

// errorMessage extracts {"message": "..."} from an error body, falling back
// to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}
