package httpclient

import "context"

// Header is a flat header mapping; multi-valued headers keep their first value.
type Header map[string]string

// Response is the record returned by every transport verb.
type Response struct {
	Code    int
	Headers Header
	Body    string
}

// OK reports whether the response carries status 200.
func (r *Response) OK() bool {
	return r != nil && r.Code == 200
}

// Transport abstracts the REST verbs so callers can inject mocks or different backends.
// Paths are relative to the backend root (no scheme or host).
// A non-nil error means the call did not complete; a Response may still be
// returned alongside it when a status code is known.
type Transport interface {
	Head(ctx context.Context, path string, headers Header) (*Response, error)
	Get(ctx context.Context, path string, headers Header) (*Response, error)
	Del(ctx context.Context, path string, headers Header) (*Response, error)
	Post(ctx context.Context, path string, headers Header, data string) (*Response, error)
	Put(ctx context.Context, path string, headers Header, data string) (*Response, error)
	PutBytes(ctx context.Context, path string, headers Header, data []byte) (*Response, error)
}

// Logger defines the logging surface the transport relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
