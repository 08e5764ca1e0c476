package dialer

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"

	"github.com/pkg/errors"
)

var schemes = map[string]string{
	"http": "80", "https": "443",
}

var zeroDialer net.Dialer

// hostPort splits the authority of u, filling in the default port of its scheme.
func hostPort(u *url.URL) (host, port string) {
	host, port = u.Host, schemes[u.Scheme]
	if h, p, err := net.SplitHostPort(host); err == nil {
		host, port = h, p
	}
	return
}

func (d *CoreDialer) Dial(ctx context.Context, u *url.URL) (conn net.Conn, err error) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	addr, port := hostPort(u)

	conn, err = d.tryDialProxy(ctx, u)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		network, hp, dialctx := "tcp", net.JoinHostPort(addr, port), ctx
		dialer, cfg := d.netDialer(), d.ResolveConfig

		if cfg != nil {
			if cfg.Network == "ip4" {
				network = "tcp4"
			} else if cfg.Network == "ip6" {
				network = "tcp6"
			}
			if static, ok := cfg.StaticHosts[addr]; ok {
				hp = net.JoinHostPort(static, port)
			}
			if dns := cfg.CustomDNSServer; dns != "" {
				dialctx = dnsServerCtx{dialctx, dns}
				dialer.Resolver = &customServerResolver
			}
		}

		conn, err = dialer.DialContext(dialctx, network, hp)
		if err != nil {
			return nil, errors.Wrapf(err, "dial %s", hp)
		}
	}
	if u.Scheme == "https" {
		c, err := d.handshake(ctx, conn, u.Hostname())
		if err != nil {
			conn.Close()
			return nil, err
		}
		conn = c
	}
	return conn, nil
}

func (d *CoreDialer) handshake(ctx context.Context, conn net.Conn, serverName string) (*tls.Conn, error) {
	config := d.TLSConfig.Clone()
	if config == nil {
		config = &tls.Config{}
	}
	if config.ServerName == "" {
		config.ServerName = serverName
	}
	// the raw transport only speaks HTTP/1.1
	config.NextProtos = []string{"http/1.1"}
	c := tls.Client(conn, config)
	if err := c.HandshakeContext(ctx); err != nil {
		return nil, errors.Wrapf(err, "tls handshake with %s", serverName)
	}
	return c, nil
}
