package simple

import (
	"context"
	"net"
	"net/http/httptrace"
)

// trace fires the [httptrace.ClientTrace] hooks attached to the request
// context. DNS and connect hooks are fired by the net.Dialer itself.
type trace struct {
	t *httptrace.ClientTrace
}

func traceFrom(ctx context.Context) trace {
	return trace{httptrace.ContextClientTrace(ctx)}
}

func (t trace) getConn(hostPort string) {
	if t.t != nil && t.t.GetConn != nil {
		t.t.GetConn(hostPort)
	}
}

func (t trace) gotConn(c net.Conn) {
	if t.t != nil && t.t.GotConn != nil {
		t.t.GotConn(httptrace.GotConnInfo{Conn: c})
	}
}

func (t trace) wroteRequest(err error) {
	if t.t != nil && t.t.WroteRequest != nil {
		t.t.WroteRequest(httptrace.WroteRequestInfo{Err: err})
	}
}

func (t trace) gotFirstResponseByte() {
	if t.t != nil && t.t.GotFirstResponseByte != nil {
		t.t.GotFirstResponseByte()
	}
}

// firstByteConn reports the first successful read of the response.
type firstByteConn struct {
	net.Conn
	fired bool
	trace trace
}

func (c *firstByteConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 && !c.fired {
		c.fired = true
		c.trace.gotFirstResponseByte()
	}
	return n, err
}
