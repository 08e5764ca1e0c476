package dialer

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"io"
	"math/rand"
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpproxy"

	"github.com/frankli0324/go-http-factories/internal/http"
	"github.com/frankli0324/go-http-factories/internal/transport"
)

type ProxyConfig struct {
	TLSConfig      *tls.Config // the [*tls.Config] to use with proxy, if nil, *[CoreDialer.TLSConfig] will be used
	ResolveLocally bool
	ResolveConfig  *ResolveConfig // overrides the resolver config for dialer for proxy
}

func (c *ProxyConfig) Clone() *ProxyConfig {
	if c == nil {
		return nil
	}
	return &ProxyConfig{
		TLSConfig:      c.TLSConfig.Clone(),
		ResolveLocally: c.ResolveLocally,
		ResolveConfig:  c.ResolveConfig.Clone(),
	}
}

// ProxyFromEnvironment picks a proxy from HTTP_PROXY, HTTPS_PROXY and NO_PROXY
// (or the lowercase versions), suitable for [CoreDialer.GetProxy].
func ProxyFromEnvironment() func(ctx context.Context, u *url.URL) (*url.URL, error) {
	pf := httpproxy.FromEnvironment().ProxyFunc()
	return func(_ context.Context, u *url.URL) (*url.URL, error) {
		return pf(u)
	}
}

// FixedProxy always routes through proxy.
func FixedProxy(proxy *url.URL) func(ctx context.Context, u *url.URL) (*url.URL, error) {
	return func(context.Context, *url.URL) (*url.URL, error) {
		return proxy, nil
	}
}

var (
	h1Transport = transport.HTTP1{}
)

func (d *CoreDialer) tryDialProxy(ctx context.Context, u *url.URL) (net.Conn, error) {
	if d.GetProxy == nil {
		return nil, nil
	}
	proxy, err := d.GetProxy(ctx, u)
	if err != nil {
		return nil, errors.Wrap(err, "get proxy")
	}
	if proxy == nil {
		return nil, nil
	}
	return d.DialContextOverProxy(ctx, u, proxy)
}

// DialContextOverProxy creates a tunnel to remote over an http(s) proxy with
// the CONNECT method. This part of logic may be reused when wrapping
// *[CoreDialer] into a new custom [Dialer]
func (d *CoreDialer) DialContextOverProxy(ctx context.Context, remote, proxy *url.URL) (net.Conn, error) {
	if proxy.Scheme != "http" && proxy.Scheme != "https" {
		return nil, errors.New("unsupported proxy scheme:" + proxy.Scheme)
	}
	pcfg := d.ProxyConfig
	if pcfg == nil {
		pcfg = &ProxyConfig{}
	}
	phost, pport := hostPort(proxy)
	hp := net.JoinHostPort(phost, pport)

	conn, err := d.netDialer().DialContext(ctx, "tcp", hp)
	if err != nil {
		return nil, errors.Wrapf(err, "dial proxy %s", hp)
	}
	return connectTunnel(ctx, conn, func(conn net.Conn) (net.Conn, error) {
		return d.establishTunnel(ctx, conn, remote, proxy, pcfg, phost)
	})
}

// connectTunnel runs establish on conn, bounded by ctx. Deadlines set for the
// exchange are cleared again once it succeeded, conn is closed on failure.
func connectTunnel(ctx context.Context, conn net.Conn, establish func(net.Conn) (net.Conn, error)) (net.Conn, error) {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Unix(1, 0))
	})
	tunnel, err := establish(conn)
	if !stop() && err == nil {
		err = errors.New("proxy tunnel aborted")
	}
	if err != nil {
		conn.Close()
		if ctxErr := contextErr(ctx); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, err.Error())
		}
		return nil, err
	}
	conn.SetDeadline(time.Time{})
	return tunnel, nil
}

// contextErr is ctx.Err, also reporting a deadline that passed before the
// context noticed it.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

func (d *CoreDialer) establishTunnel(ctx context.Context, conn net.Conn, remote, proxy *url.URL, pcfg *ProxyConfig, phost string) (net.Conn, error) {
	if proxy.Scheme == "https" {
		tlsCfg := pcfg.TLSConfig.Clone()
		if tlsCfg == nil {
			tlsCfg = d.TLSConfig.Clone()
		}
		if tlsCfg == nil {
			tlsCfg = &tls.Config{}
		}
		if tlsCfg.ServerName == "" {
			tlsCfg.ServerName = phost
		}
		c := tls.Client(conn, tlsCfg)
		if err := c.HandshakeContext(ctx); err != nil {
			return nil, errors.Wrap(err, "tls handshake with proxy")
		}
		conn = c
	}

	addr, port := hostPort(remote)

	if pcfg.ResolveLocally {
		dnsCfg := pcfg.ResolveConfig.Merge(d.ResolveConfig)
		if res, ok := dnsCfg.StaticHosts[addr]; ok {
			addr = res
		} else if net.ParseIP(addr) == nil {
			ips, err := d.lookup(ctx, dnsCfg, addr)
			if err != nil {
				return nil, errors.Wrapf(err, "resolve %s", addr)
			}
			if len(ips) == 0 {
				return nil, errors.Errorf("no address found for %s", addr)
			}
			addr = ips[rand.Intn(len(ips))].String()
		}
	}

	target := net.JoinHostPort(addr, port)
	connReq := &http.PreparedRequest{
		Method:        "CONNECT",
		HeaderHost:    target,
		U:             &url.URL{Host: target},
		Header:        http.Header{},
		ContentLength: -1,
		GetBody:       func() (io.ReadCloser, error) { return http.NoBody, nil },
	}
	if proxy.User != nil {
		pass, _ := proxy.User.Password()
		auth := proxy.User.Username() + ":" + pass
		connReq.Header.Set("Proxy-Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
	}
	if err := h1Transport.Write(ctx, conn, connReq); err != nil {
		return nil, err
	}
	resp := &http.RawResponse{}
	if err := h1Transport.Read(ctx, conn, connReq, resp); err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		s, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Errorf("proxy server returned error. status:%d, body:%s", resp.StatusCode, string(s))
	}
	return conn, nil
}
