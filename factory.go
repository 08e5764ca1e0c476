package factories

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/frankli0324/go-http-factories/internal/client"
	"github.com/frankli0324/go-http-factories/internal/simple"
)

// Option configures the factory returned by [NewSimpleFactory].
type Option func(*simple.Factory)

// WithDialer sets the dialer used for every request, defaults to a zero
// [CoreDialer].
func WithDialer(d Dialer) Option {
	return func(f *simple.Factory) { f.Dialer = d }
}

// WithReadTimeout bounds every single read from the connection.
func WithReadTimeout(d time.Duration) Option {
	return func(f *simple.Factory) { f.ReadTimeout = d }
}

func WithLogger(l hclog.Logger) Option {
	return func(f *simple.Factory) { f.Logger = l }
}

// NewSimpleFactory returns a factory writing HTTP/1.1 directly onto a freshly
// dialed connection per request. It never pools, redirects or retries.
func NewSimpleFactory(opts ...Option) RequestFactory {
	f := &simple.Factory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type ClientOptions = client.Options

// ClientFactory is a [RequestFactory] backed by a pooling, retrying client
// library.
type ClientFactory = client.Factory

// NewClientFactory returns a factory executing requests through
// [github.com/hashicorp/go-retryablehttp]. Connection pooling, HTTP/2 and
// redirects are delegated to the library.
func NewClientFactory(opts ClientOptions) (*ClientFactory, error) {
	return client.New(opts)
}

// NewClientFactoryWithClient wraps an already configured client as is. Its
// retry policy and error handler are left untouched.
func NewClientFactoryWithClient(c *retryablehttp.Client, logger hclog.Logger) *ClientFactory {
	return client.NewWithClient(c, logger)
}
