package dialer

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"time"
)

// Dialers handle pretty much everything related to the actual connection,
// including setting a proxy for each request, setting resolvers, etc.
type Dialer interface {
	// Dial returns a connection ready for writing a request to u and reading
	// its response. TLS is already negotiated for https urls.
	Dial(ctx context.Context, u *url.URL) (net.Conn, error)
}

type CoreDialer struct {
	ResolveConfig *ResolveConfig

	TLSConfig *tls.Config // the config to use

	GetProxy    func(ctx context.Context, u *url.URL) (*url.URL, error)
	ProxyConfig *ProxyConfig

	Timeout   time.Duration // connect timeout, zero means no timeout
	KeepAlive time.Duration
}

func (d *CoreDialer) Clone() *CoreDialer {
	return &CoreDialer{
		ResolveConfig: d.ResolveConfig.Clone(),
		TLSConfig:     d.TLSConfig.Clone(),
		GetProxy:      d.GetProxy,
		ProxyConfig:   d.ProxyConfig.Clone(),
		Timeout:       d.Timeout,
		KeepAlive:     d.KeepAlive,
	}
}

func (d *CoreDialer) netDialer() *net.Dialer {
	return &net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
}
