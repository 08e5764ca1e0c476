package http

import (
	"context"
	"io"
	"net/url"
)

// RequestFactory creates requests bound to a single transport implementation.
type RequestFactory interface {
	CreateRequest(u *url.URL, method Method) (Request, error)
}

// Request is a single-shot outgoing message. Headers and body are collected
// first, then Execute sends them exactly once.
type Request interface {
	Method() Method
	URL() *url.URL

	// Header returns the mutable request headers. After Execute succeeded the
	// returned value is a copy, so changes are no longer observed.
	Header() Header

	// Body returns a writer the request body can be written to. The body is
	// buffered in memory until Execute.
	Body() (io.Writer, error)

	Execute(ctx context.Context) (Response, error)
}

// Response is the result of an executed [Request]. It must be closed.
type Response interface {
	StatusCode() int
	StatusText() string
	Header() Header
	Body() io.Reader
	Close() error
}
