package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestClient is the part of resty.Client callers may tune through
// WithRestyConfig.
type RestClient interface {
	SetHeader(key, value string) RestClient
	SetHeaders(headers map[string]string) RestClient
	SetTimeout(d time.Duration) RestClient
	SetTransport(rt http.RoundTripper) RestClient
}

type restyAdapter struct{ *resty.Client }

func (a restyAdapter) SetHeader(key, value string) RestClient {
	a.Client.SetHeader(key, value)
	return a
}

func (a restyAdapter) SetHeaders(headers map[string]string) RestClient {
	a.Client.SetHeaders(headers)
	return a
}

func (a restyAdapter) SetTimeout(d time.Duration) RestClient {
	a.Client.SetTimeout(d)
	return a
}

func (a restyAdapter) SetTransport(rt http.RoundTripper) RestClient {
	if rt != nil {
		a.Client.SetTransport(rt)
	}
	return a
}

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.Path, StatusLine(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client is a JSON REST client over resty. It performs no retries and
// reports non-2xx responses as *StatusError.
type Client struct {
	rc *resty.Client
}

func NewClient(opts ...ClientOption) *Client {
	cfg := newClientConfig(opts)
	rc := resty.New().
		SetBaseURL(cfg.baseURL).
		SetHeaders(cfg.headers).
		SetTimeout(cfg.timeout)
	if cfg.log != nil {
		rc.SetLogger(restyLogger{l: *cfg.log})
	}
	if cfg.hook != nil {
		cfg.hook(restyAdapter{rc})
	}
	return &Client{rc: rc}
}

// BaseURL reports the URL requests are resolved against.
func (c *Client) BaseURL() string { return c.rc.BaseURL }

// RequestOption adjusts a single outgoing request.
type RequestOption func(*resty.Request)

func WithRequestHeaders(headers map[string]string) RequestOption {
	return func(r *resty.Request) { r.SetHeaders(headers) }
}

func WithQuery(params map[string]string) RequestOption {
	return func(r *resty.Request) { r.SetQueryParams(params) }
}

// WithBearer sends token as a bearer credential. A blank token sends nothing.
func WithBearer(token string) RequestOption {
	token = strings.TrimSpace(token)
	return func(r *resty.Request) {
		if token != "" {
			r.SetAuthScheme("Bearer").SetAuthToken(token)
		}
	}
}

func (c *Client) Get(ctx context.Context, path string, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, result, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, result, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, result, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, result, opts...)
}

// Do sends body as JSON (when non-nil) and decodes a successful response into
// result (when non-nil). A nil ctx means context.Background.
func (c *Client) Do(ctx context.Context, method, path string, body, result any, opts ...RequestOption) (*resty.Response, error) {
	resp, err := c.request(ctx, body, result, opts).Execute(method, path)
	if err != nil {
		return resp, err
	}
	if !resp.IsSuccess() {
		return resp, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}
	return resp, nil
}

func (c *Client) request(ctx context.Context, body, result any, opts []RequestOption) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.rc.R().SetContext(ctx)
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	return req
}
