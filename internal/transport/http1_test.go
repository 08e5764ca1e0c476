package transport_test

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-http-factories/internal/http"
	"github.com/frankli0324/go-http-factories/internal/transport"
)

type tCase struct {
	data   []byte
	method http.Method
	url    string
	header http.Header
	body   []byte
}

var reqShouldBe = map[string]tCase{
	"BasicRequest": {
		method: "GET", url: "http://www.example.com",
		data: []byte("GET / HTTP/1.1\r\nHost: www.example.com\r\n\r\n"),
	},
	"QueryNonStandard": {
		method: "GET", url: "http://www.example.com/test?1=33=1",
		data: []byte("GET /test?1=33=1 HTTP/1.1\r\nHost: www.example.com\r\n\r\n"),
	},
	"HeaderNotCanonicalized": {
		method: "GET", url: "http://www.example.com/",
		header: http.Header{"x-123-vv": {"1"}},
		data:   []byte("GET / HTTP/1.1\r\nHost: www.example.com\r\nx-123-vv: 1\r\n\r\n"),
	},
	"URIFragmentNotIncluded": {
		method: "GET", url: "http://www.example.com/?test=1#frag",
		data: []byte("GET /?test=1 HTTP/1.1\r\nHost: www.example.com\r\n\r\n"),
	},
	"HostOverride": {
		method: "GET", url: "http://127.0.0.1:8080/",
		header: http.Header{"Host": {"virtual.example.com"}},
		data:   []byte("GET / HTTP/1.1\r\nHost: virtual.example.com\r\n\r\n"),
	},
	"BodyWithLength": {
		method: "POST", url: "http://www.example.com/submit",
		header: http.Header{"Content-Type": {"text/plain"}, "Accept": {"*/*"}},
		body:   []byte("hello"),
		data:   []byte("POST /submit HTTP/1.1\r\nHost: www.example.com\r\nContent-Length: 5\r\nAccept: */*\r\nContent-Type: text/plain\r\n\r\nhello"),
	},
}

func TestRequestSerialize(t *testing.T) {
	for name, cas := range reqShouldBe {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			u, err := url.Parse(tCase.url)
			require.NoError(t, err)
			pr, err := http.Prepare(tCase.method, u, tCase.header, tCase.body)
			require.NoError(t, err)

			buf := &bytes.Buffer{}
			require.NoError(t, transport.HTTP1{}.Write(context.Background(), buf, pr))
			if err := iotest.TestReader(buf, tCase.data); err != nil {
				t.Error(err)
			}
		})
	}
}

type closeRecorder struct {
	io.Reader
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func readResponse(t *testing.T, method http.Method, raw string) (*http.RawResponse, *closeRecorder) {
	u, err := url.Parse("http://www.example.com/")
	require.NoError(t, err)
	pr, err := http.Prepare(method, u, nil, nil)
	require.NoError(t, err)

	conn := &closeRecorder{Reader: strings.NewReader(raw)}
	resp := &http.RawResponse{}
	require.NoError(t, transport.HTTP1{}.Read(context.Background(), conn, pr, resp))
	return resp, conn
}

func TestResponseContentLength(t *testing.T) {
	resp, conn := readResponse(t, "GET", "HTTP/1.1 201 Created\r\nContent-Length: 5\r\nX-A: b\r\n\r\nhello, trailing garbage")
	assert.Equal(t, "HTTP/1.1", resp.Proto)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "Created", resp.StatusText())
	assert.Equal(t, int64(5), resp.ContentLength)
	assert.Equal(t, "b", resp.Header.Get("X-A"))

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, 1, conn.closed)
}

func TestResponseTruncatedBody(t *testing.T) {
	resp, _ := readResponse(t, "GET", "HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n0123456789")
	b, err := io.ReadAll(resp.Body)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "0123456789", string(b))

	resp, _ = readResponse(t, "GET", "HTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\nabcd")
	b, err = io.ReadAll(iotest.OneByteReader(resp.Body))
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(b))
}

func TestResponseChunked(t *testing.T) {
	resp, _ := readResponse(t, "GET", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"+
		"5\r\nhello\r\n7;ext=1\r\n, world\r\n0\r\nX-Trailer: 1\r\n\r\n")
	assert.Equal(t, int64(-1), resp.ContentLength)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(b))
}

func TestResponseUntilClose(t *testing.T) {
	resp, _ := readResponse(t, "GET", "HTTP/1.0 200 OK\r\n\r\nall of it")
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "all of it", string(b))
}

func TestResponseWithoutBody(t *testing.T) {
	resp, _ := readResponse(t, "HEAD", "HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n")
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, b)

	resp, _ = readResponse(t, "GET", "HTTP/1.1 204 No Content\r\n\r\n")
	assert.Equal(t, int64(0), resp.ContentLength)
}

func TestResponseSkipsInterim(t *testing.T) {
	resp, _ := readResponse(t, "POST", "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")
	assert.Equal(t, 200, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))
}

func TestResponsePragmaNoCache(t *testing.T) {
	resp, _ := readResponse(t, "GET", "HTTP/1.1 200 OK\r\nPragma: no-cache\r\nContent-Length: 0\r\n\r\n")
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
}

func TestResponseMalformed(t *testing.T) {
	cases := map[string]string{
		"Empty":               "",
		"NoStatus":            "HTTP/1.1\r\n\r\n",
		"ShortCode":           "HTTP/1.1 20 OK\r\n\r\n",
		"NonNumericCode":      "HTTP/1.1 abc OK\r\n\r\n",
		"ConflictingLength":   "HTTP/1.1 200 OK\r\nContent-Length: 1\r\nContent-Length: 2\r\n\r\n",
		"BadLength":           "HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n",
		"TruncatedHeaderLine": "HTTP/1.1 200 OK\r\nX-A: b",
	}
	u, _ := url.Parse("http://www.example.com/")
	pr, _ := http.Prepare("GET", u, nil, nil)
	for name, raw := range cases {
		raw := raw
		t.Run(name, func(t *testing.T) {
			err := transport.HTTP1{}.Read(context.Background(), strings.NewReader(raw), pr, &http.RawResponse{})
			assert.Error(t, err)
		})
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u, _ := url.Parse("http://www.example.com/")
	pr, _ := http.Prepare("GET", u, nil, nil)
	assert.ErrorIs(t, transport.HTTP1{}.Write(ctx, io.Discard, pr), context.Canceled)
}
