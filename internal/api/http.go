package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// ErrUnauthorized is returned when the dashboard rejects the API token.
var ErrUnauthorized = errors.New("dashboard rejected the API token")

// StatusError is returned for non-2xx responses other than 401/403.
// Redirects are not followed and surface as a StatusError too.
type StatusError struct {
	Code   int
	URL    string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP error %d for %s: %s", e.Code, e.URL, e.Detail)
	}
	return fmt.Sprintf("HTTP error %d for %s", e.Code, e.URL)
}

// Client wraps resty.Client with bearer authentication and debug logging.
// Requests are sent once; there is no retry or redirect policy.
type Client struct {
	resty   *resty.Client
	timeout time.Duration
	logger  *slog.Logger
}

// ClientConfig holds configuration for the HTTP client
type ClientConfig struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	UserAgent string
	Debug     bool
	Logger    *slog.Logger
}

// DefaultClientConfig returns sensible defaults for HTTP client
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:   30 * time.Second,
		UserAgent: "mpctl/1.0",
	}
}

// NewClient creates a new HTTP client with the given configuration.
// A non-empty Token is sent as "Authorization: Bearer <token>".
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "mpctl/1.0"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	httpClient := &http.Client{}
	if config.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	restyClient := resty.NewWithClient(httpClient).
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "application/json")

	client := &Client{
		resty:   restyClient,
		timeout: config.Timeout,
		logger:  config.Logger,
	}

	if config.Debug {
		restyClient.OnBeforeRequest(func(c *resty.Client, r *resty.Request) error {
			client.logRequest(r)
			return nil
		})
		restyClient.OnAfterResponse(func(c *resty.Client, r *resty.Response) error {
			client.logResponse(r)
			return nil
		})
	}

	return client
}

// Get performs a GET request and decodes a JSON response into result.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, result any) (*resty.Response, error) {
	req := c.resty.R().SetContext(ctx).SetQueryParams(params)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("GET request failed for %s: %w", path, err)
	}
	return resp, checkStatus(resp)
}

// Post performs a POST request with a JSON body and decodes the response into result.
func (c *Client) Post(ctx context.Context, path string, body, result any) (*resty.Response, error) {
	req := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(path)
	if err != nil {
		return nil, fmt.Errorf("POST request failed for %s: %w", path, err)
	}
	return resp, checkStatus(resp)
}

// errorBody is the dashboard's error payload.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func checkStatus(resp *resty.Response) error {
	code := resp.StatusCode()
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d)", ErrUnauthorized, code)
	case code >= 300:
		var body errorBody
		_ = json.Unmarshal(resp.Body(), &body)
		detail := body.Detail
		if detail == "" {
			detail = body.Message
		}
		return &StatusError{Code: code, URL: resp.Request.URL, Detail: detail}
	}
	return nil
}

// GetTimeout returns the configured timeout
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

func (c *Client) logRequest(r *resty.Request) {
	c.logger.Debug("HTTP Request",
		"method", r.Method,
		"url", r.URL,
	)
	if r.Body != nil {
		c.logger.Debug("Request Body", "body", fmt.Sprintf("%v", r.Body))
	}
}

func (c *Client) logResponse(r *resty.Response) {
	bodyStr := r.String()
	if len(bodyStr) > 1000 {
		bodyStr = bodyStr[:1000] + "... (truncated)"
	}
	c.logger.Debug("HTTP Response",
		"status", r.StatusCode(),
		"url", r.Request.URL,
		"time", r.Time(),
		"body", bodyStr,
	)
}
