package simple

import (
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-http-factories/internal/dialer"
	"github.com/frankli0324/go-http-factories/internal/http"
)

var defaultDialer = &dialer.CoreDialer{}

// Factory creates requests that are sent over a freshly dialed connection each,
// speaking HTTP/1.1 directly. It is the zero-dependency counterpart of the
// client library backed factory.
type Factory struct {
	Dialer dialer.Dialer // nil means a zero [dialer.CoreDialer]

	// ReadTimeout bounds every single read from the connection, zero means no
	// timeout. Connect timeouts are configured on the dialer.
	ReadTimeout time.Duration

	Logger hclog.Logger
}

var _ http.RequestFactory = (*Factory)(nil)

func (f *Factory) CreateRequest(u *url.URL, method http.Method) (http.Request, error) {
	if u == nil {
		return nil, errors.New("nil url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, url.InvalidHostError("empty host")
	}
	if method == "" || !validMethod(string(method)) {
		return nil, errors.Errorf("invalid method %q", method)
	}
	ex := &executor{factory: f, method: method, u: u}
	return http.NewBufferedRequest(method, u, ex.execute), nil
}

func (f *Factory) getDialer() dialer.Dialer {
	if f.Dialer != nil {
		return f.Dialer
	}
	return defaultDialer
}

func (f *Factory) logger() hclog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return hclog.NewNullLogger()
}

func validMethod(m string) bool {
	for i := 0; i < len(m); i++ {
		if !httpguts.IsTokenRune(rune(m[i])) {
			return false
		}
	}
	return true
}
