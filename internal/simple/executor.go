package simple

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/frankli0324/go-http-factories/internal/http"
	"github.com/frankli0324/go-http-factories/internal/transport"
)

var h1 = transport.HTTP1{}

type executor struct {
	factory *Factory
	method  http.Method
	u       *url.URL
}

func (e *executor) execute(ctx context.Context, header http.Header, body []byte) (http.Response, error) {
	log := e.factory.logger().With("method", string(e.method), "url", e.u.Redacted())

	// the connection is fixed-length, framing headers are ours to decide
	h := http.Header{}
	http.CopyHeaders(header, h.Add, "Content-Length", "Transfer-Encoding")
	if h.Get("Connection") == "" {
		h.Set("Connection", "close")
	}
	if !e.method.PermitsBody() {
		body = nil
	}
	pr, err := http.Prepare(e.method, e.u, h, body)
	if err != nil {
		return nil, err
	}

	tr := traceFrom(ctx)
	log.Debug("dialing")
	tr.getConn(hostPort(e.u))
	conn, err := e.factory.getDialer().Dial(ctx, e.u)
	if err != nil {
		return nil, err
	}
	tr.gotConn(conn)
	deadline, _ := ctx.Deadline()
	if !deadline.IsZero() {
		conn.SetDeadline(deadline)
	}
	abort := func() { conn.SetDeadline(aborted) }
	if e.factory.ReadTimeout > 0 {
		rc := &readTimeoutConn{Conn: conn, timeout: e.factory.ReadTimeout, deadline: deadline}
		abort = rc.abort
		conn = rc
	}
	if tr.t != nil {
		conn = &firstByteConn{Conn: conn, trace: tr}
	}
	// abort blocked reads and writes once ctx is done, until the response is closed
	stop := context.AfterFunc(ctx, abort)
	fail := func(err error) (http.Response, error) {
		stop()
		conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, err.Error())
		}
		return nil, err
	}

	err = h1.Write(ctx, conn, pr)
	tr.wroteRequest(err)
	if err != nil {
		return fail(errors.Wrap(err, "write request"))
	}
	raw := &http.RawResponse{}
	if err := h1.Read(ctx, conn, pr, raw); err != nil {
		return fail(errors.Wrap(err, "read response"))
	}
	log.Debug("received response", "status", raw.StatusCode)
	return &response{raw: raw, stop: stop}, nil
}

// aborted is a deadline in the past, it fails pending and future I/O.
var aborted = time.Unix(1, 0)

type readTimeoutConn struct {
	net.Conn
	timeout  time.Duration
	deadline time.Time // from the request context, may be zero

	mu      sync.Mutex
	stopped bool // set once aborted, deadlines are no longer extended
}

func (c *readTimeoutConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	if !c.stopped {
		d := time.Now().Add(c.timeout)
		if !c.deadline.IsZero() && c.deadline.Before(d) {
			d = c.deadline
		}
		if err := c.Conn.SetReadDeadline(d); err != nil {
			c.mu.Unlock()
			return 0, err
		}
	}
	c.mu.Unlock()
	return c.Conn.Read(p)
}

func (c *readTimeoutConn) abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.Conn.SetDeadline(aborted)
}

// hostPort returns the authority of u with the default port of its scheme
// filled in.
func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
