package simple_test

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/frankli0324/go-http-factories/internal/dialer"
	"github.com/frankli0324/go-http-factories/internal/http"
	"github.com/frankli0324/go-http-factories/internal/simple"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type captured struct {
	method string
	header nethttp.Header
	body   string
	length int64
	close  bool
}

func echoServer(t *testing.T) (*httptest.Server, <-chan captured) {
	seen := make(chan captured, 1)
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		b, _ := io.ReadAll(r.Body)
		seen <- captured{r.Method, r.Header, string(b), r.ContentLength, r.Close}
		w.Header().Set("X-Method", r.Method)
		w.WriteHeader(nethttp.StatusAccepted)
		io.WriteString(w, "echo:"+string(b))
	}))
	t.Cleanup(server.Close)
	return server, seen
}

func mustURL(t *testing.T, s string) *url.URL {
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestPostRoundTrip(t *testing.T) {
	server, seen := echoServer(t)
	f := &simple.Factory{}

	req, err := f.CreateRequest(mustURL(t, server.URL+"/submit"), http.MethodPost)
	require.NoError(t, err)
	req.Header().Add("Cookie", "a=1")
	req.Header().Add("Cookie", "b=2")
	req.Header().Set("Content-Type", "text/plain")
	w, err := req.Body()
	require.NoError(t, err)
	io.WriteString(w, "payload")

	resp, err := req.Execute(context.Background())
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, 202, resp.StatusCode())
	assert.Equal(t, "Accepted", resp.StatusText())
	assert.Equal(t, "POST", resp.Header().Get("X-Method"))
	b, err := io.ReadAll(resp.Body())
	require.NoError(t, err)
	assert.Equal(t, "echo:payload", string(b))

	c := <-seen
	assert.Equal(t, "payload", c.body)
	assert.Equal(t, int64(7), c.length)
	assert.Equal(t, "a=1; b=2", c.header.Get("Cookie"))
	assert.True(t, c.close)
}

func TestGetDropsBody(t *testing.T) {
	server, seen := echoServer(t)
	f := &simple.Factory{}

	req, err := f.CreateRequest(mustURL(t, server.URL), http.MethodGet)
	require.NoError(t, err)
	w, err := req.Body()
	require.NoError(t, err)
	io.WriteString(w, "ignored")

	resp, err := req.Execute(context.Background())
	require.NoError(t, err)
	require.NoError(t, resp.Close())
	require.NoError(t, resp.Close())

	c := <-seen
	assert.Equal(t, "GET", c.method)
	assert.Empty(t, c.body)
	assert.Equal(t, int64(0), c.length)
}

func TestHead(t *testing.T) {
	server, _ := echoServer(t)
	f := &simple.Factory{}

	req, err := f.CreateRequest(mustURL(t, server.URL), http.MethodHead)
	require.NoError(t, err)
	resp, err := req.Execute(context.Background())
	require.NoError(t, err)
	defer resp.Close()

	b, err := io.ReadAll(resp.Body())
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestWireFormat(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan string, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		r := bufio.NewReader(c)
		var sb strings.Builder
		for {
			line, err := r.ReadString('\n')
			sb.WriteString(line)
			if err != nil || line == "\r\n" {
				break
			}
		}
		body := make([]byte, 2)
		io.ReadFull(r, body)
		sb.Write(body)
		got <- sb.String()
		io.WriteString(c, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nok\r\n0\r\n\r\n")
	}()

	f := &simple.Factory{}
	req, err := f.CreateRequest(mustURL(t, "http://"+ln.Addr().String()+"/p?q=1#frag"), http.MethodPut)
	require.NoError(t, err)
	req.Header().Set("Content-Length", "999")
	req.Header().Set("X-A", "1")
	w, _ := req.Body()
	io.WriteString(w, "hi")

	resp, err := req.Execute(context.Background())
	require.NoError(t, err)
	defer resp.Close()
	b, err := io.ReadAll(resp.Body())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))

	assert.Equal(t, "PUT /p?q=1 HTTP/1.1\r\nHost: "+ln.Addr().String()+"\r\nContent-Length: 2\r\nConnection: close\r\nX-A: 1\r\n\r\nhi", <-got)
}

func TestReadTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	f := &simple.Factory{ReadTimeout: 50 * time.Millisecond}
	req, err := f.CreateRequest(mustURL(t, server.URL), http.MethodGet)
	require.NoError(t, err)
	_, err = req.Execute(context.Background())
	require.Error(t, err)
	var ne net.Error
	assert.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}

func TestContextCancel(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	f := &simple.Factory{}
	req, err := f.CreateRequest(mustURL(t, server.URL), http.MethodGet)
	require.NoError(t, err)
	_, err = req.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPS(t *testing.T) {
	server := httptest.NewTLSServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
	}))
	defer server.Close()

	pool := x509.NewCertPool()
	pool.AddCert(server.Certificate())
	f := &simple.Factory{Dialer: &dialer.CoreDialer{TLSConfig: &tls.Config{RootCAs: pool}}}

	req, err := f.CreateRequest(mustURL(t, server.URL), http.MethodGet)
	require.NoError(t, err)
	resp, err := req.Execute(context.Background())
	require.NoError(t, err)
	defer resp.Close()
	assert.Equal(t, 404, resp.StatusCode())
	assert.Equal(t, "Not Found", resp.StatusText())
}

func TestCreateRequestRejects(t *testing.T) {
	f := &simple.Factory{}
	cases := map[string]struct {
		u      string
		method http.Method
	}{
		"Scheme":      {"ftp://example.com", http.MethodGet},
		"NoHost":      {"http:///x", http.MethodGet},
		"EmptyMethod": {"http://example.com", ""},
		"BadMethod":   {"http://example.com", "GE T"},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			_, err := f.CreateRequest(mustURL(t, c.u), c.method)
			assert.Error(t, err)
		})
	}
	_, err := f.CreateRequest(nil, http.MethodGet)
	assert.Error(t, err)
}

func TestDialFailureAllowsRetry(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	f := &simple.Factory{}
	req, err := f.CreateRequest(mustURL(t, "http://"+addr), http.MethodGet)
	require.NoError(t, err)
	_, err = req.Execute(context.Background())
	require.Error(t, err)

	_, err = req.Body()
	assert.NoError(t, err, "failed execution must not mark the request executed")
}

func TestClientTrace(t *testing.T) {
	server, _ := echoServer(t)
	var events []string
	ctx := httptrace.WithClientTrace(context.Background(), &httptrace.ClientTrace{
		GetConn:              func(hp string) { events = append(events, "get "+hp) },
		GotConn:              func(httptrace.GotConnInfo) { events = append(events, "got") },
		WroteRequest:         func(i httptrace.WroteRequestInfo) { events = append(events, "wrote") },
		GotFirstResponseByte: func() { events = append(events, "first") },
	})

	f := &simple.Factory{}
	req, err := f.CreateRequest(mustURL(t, server.URL), http.MethodGet)
	require.NoError(t, err)
	resp, err := req.Execute(ctx)
	require.NoError(t, err)
	require.NoError(t, resp.Close())
	assert.Equal(t, []string{"get " + mustURL(t, server.URL).Host, "got", "wrote", "first"}, events)
}

func TestCancelAfterExecuteWithReadTimeout(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Length", "4")
		w.WriteHeader(200)
		w.(nethttp.Flusher).Flush()
		time.Sleep(100 * time.Millisecond)
		io.WriteString(w, "body")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := &simple.Factory{ReadTimeout: 2 * time.Second}
	req, err := f.CreateRequest(mustURL(t, server.URL), http.MethodGet)
	require.NoError(t, err)
	resp, err := req.Execute(ctx)
	require.NoError(t, err)
	defer resp.Close()

	cancel()
	_, err = io.ReadAll(resp.Body())
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestClientTraceDefaultPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		r := bufio.NewReader(c)
		for {
			line, err := r.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		io.WriteString(c, "HTTP/1.1 204 No Content\r\n\r\n")
	}()

	var got string
	ctx := httptrace.WithClientTrace(context.Background(), &httptrace.ClientTrace{
		GetConn: func(hp string) { got = hp },
	})
	// the url has no port, the dialer maps the host onto the listener
	d := &dialer.CoreDialer{ResolveConfig: &dialer.ResolveConfig{
		StaticHosts: map[string]string{"service.internal": "127.0.0.1"},
	}}
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	f := &simple.Factory{Dialer: portDialer{d, port}}
	req, err := f.CreateRequest(mustURL(t, "http://service.internal/"), http.MethodGet)
	require.NoError(t, err)
	resp, err := req.Execute(ctx)
	require.NoError(t, err)
	require.NoError(t, resp.Close())
	assert.Equal(t, "service.internal:80", got)
}

// portDialer dials u on a fixed port.
type portDialer struct {
	*dialer.CoreDialer
	port string
}

func (d portDialer) Dial(ctx context.Context, u *url.URL) (net.Conn, error) {
	c := *u
	c.Host = net.JoinHostPort(u.Hostname(), d.port)
	return d.CoreDialer.Dial(ctx, &c)
}
