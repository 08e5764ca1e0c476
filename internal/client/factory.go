package client

import (
	"crypto/tls"
	nethttp "net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"golang.org/x/net/http2"

	"github.com/frankli0324/go-http-factories/internal/http"
)

type Options struct {
	// Timeout bounds a whole exchange including reading the body, zero means
	// no timeout.
	Timeout   time.Duration
	TLSConfig *tls.Config
	// Proxy selects a proxy per request, defaults to [nethttp.ProxyFromEnvironment].
	Proxy        func(*nethttp.Request) (*url.URL, error)
	DisableHTTP2 bool

	// RetryMax is the number of additional attempts made by the client
	// library, zero sends every request exactly once.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	Logger hclog.Logger
}

// Factory creates requests executed by a [retryablehttp.Client]. Pooling,
// redirects, HTTP/2 and retries are all handled by the library.
type Factory struct {
	client *retryablehttp.Client
	logger hclog.Logger
}

var _ http.RequestFactory = (*Factory)(nil)

func New(opts Options) (*Factory, error) {
	transport := cleanhttp.DefaultPooledTransport()
	if opts.TLSConfig != nil {
		transport.TLSClientConfig = opts.TLSConfig.Clone()
	}
	if opts.Proxy != nil {
		transport.Proxy = opts.Proxy
	}
	if opts.DisableHTTP2 {
		transport.ForceAttemptHTTP2 = false
		transport.TLSNextProto = map[string]func(string, *tls.Conn) nethttp.RoundTripper{}
	} else if err := http2.ConfigureTransport(transport); err != nil {
		return nil, errors.Wrap(err, "configure http2")
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	c := retryablehttp.NewClient()
	c.HTTPClient = &nethttp.Client{Transport: transport, Timeout: opts.Timeout}
	c.Logger = logger
	c.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		c.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		c.RetryWaitMax = opts.RetryWaitMax
	}
	// server errors are results, not failures
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &Factory{client: c, logger: logger}, nil
}

// NewWithClient wraps an already configured client as is.
func NewWithClient(c *retryablehttp.Client, logger hclog.Logger) *Factory {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Factory{client: c, logger: logger}
}

// Client returns the underlying client library instance.
func (f *Factory) Client() *retryablehttp.Client { return f.client }

func (f *Factory) CreateRequest(u *url.URL, method http.Method) (http.Request, error) {
	if u == nil {
		return nil, errors.New("nil url")
	}
	if !u.IsAbs() {
		return nil, errors.Errorf("url %q is not absolute", u.Redacted())
	}
	if method == "" {
		return nil, errors.New("empty method")
	}
	ex := &executor{factory: f, method: method, u: u}
	return http.NewBufferedRequest(method, u, ex.execute), nil
}

// CloseIdleConnections releases pooled connections of the underlying client.
func (f *Factory) CloseIdleConnections() {
	f.client.HTTPClient.CloseIdleConnections()
}
