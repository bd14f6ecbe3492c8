package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures a RestyTransport.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Headers Header
	Logger  Logger
}

const defaultTimeout = 10 * time.Second

// RestyTransport adapts resty.Client to the Transport interface.
type RestyTransport struct {
	client *resty.Client
	log    Logger
}

// NewRestyTransport creates a transport rooted at opts.BaseURL.
func NewRestyTransport(opts Options) (*RestyTransport, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("transport base url is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}

	c := NewRestyHTTPClient(opts.Timeout)
	c.SetBaseURL(strings.TrimRight(base, "/"))
	if len(opts.Headers) > 0 {
		c.SetHeaders(opts.Headers)
	}

	t := &RestyTransport{client: c, log: log}
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		t.log.DebugObj("transport call completed", "transport_call", map[string]any{
			"method":     resp.Request.Method,
			"url":        resp.Request.URL,
			"status":     resp.StatusCode(),
			"elapsed_ms": resp.Time().Milliseconds(),
		})
		return nil
	})
	return t, nil
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Head performs an HTTP HEAD request.
func (r *RestyTransport) Head(ctx context.Context, path string, headers Header) (*Response, error) {
	return r.execute(ctx, http.MethodHead, path, headers, nil, "")
}

// Get performs an HTTP GET request.
func (r *RestyTransport) Get(ctx context.Context, path string, headers Header) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path, headers, nil, "")
}

// Del performs an HTTP DELETE request.
func (r *RestyTransport) Del(ctx context.Context, path string, headers Header) (*Response, error) {
	return r.execute(ctx, http.MethodDelete, path, headers, nil, "")
}

// Post performs an HTTP POST request with a text payload.
func (r *RestyTransport) Post(ctx context.Context, path string, headers Header, data string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path, headers, data, "text/plain; charset=utf-8")
}

// Put performs an HTTP PUT request with a text payload.
func (r *RestyTransport) Put(ctx context.Context, path string, headers Header, data string) (*Response, error) {
	return r.execute(ctx, http.MethodPut, path, headers, data, "text/plain; charset=utf-8")
}

// PutBytes performs an HTTP PUT request with a binary payload.
func (r *RestyTransport) PutBytes(ctx context.Context, path string, headers Header, data []byte) (*Response, error) {
	return r.execute(ctx, http.MethodPut, path, headers, data, "application/octet-stream")
}

func (r *RestyTransport) execute(ctx context.Context, method, path string, headers Header, body any, contentType string) (*Response, error) {
	req := r.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
		req.SetHeader("Content-Type", contentType)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Execute(method, "/"+strings.TrimLeft(path, "/"))
	if err != nil {
		r.log.WarnObj("transport call failed", "transport_error", map[string]any{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return toResponse(resp), nil
}

func toResponse(resp *resty.Response) *Response {
	hdr := make(Header, len(resp.Header()))
	for k, v := range resp.Header() {
		if len(v) > 0 {
			hdr[k] = v[0]
		}
	}
	return &Response{
		Code:    resp.StatusCode(),
		Headers: hdr,
		Body:    resp.String(),
	}
}
