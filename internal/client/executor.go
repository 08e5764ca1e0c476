package client

import (
	"context"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/frankli0324/go-http-factories/internal/http"
)

type executor struct {
	factory *Factory
	method  http.Method
	u       *url.URL
}

func (e *executor) execute(ctx context.Context, header http.Header, body []byte) (http.Response, error) {
	if err := http.ValidateHeader(header); err != nil {
		return nil, err
	}
	var raw interface{}
	if e.method.PermitsBody() {
		raw = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, string(e.method), e.u.String(), raw)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	// the library computes framing headers itself
	http.CopyHeaders(header, req.Header.Add, "Content-Length", "Transfer-Encoding")
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
		req.Header.Del("Host")
	}

	log := e.factory.logger.With("method", string(e.method), "url", e.u.Redacted())
	log.Debug("executing request")
	resp, err := e.factory.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, errors.Wrapf(err, "%s %s", e.method, e.u.Redacted())
	}
	log.Debug("received response", "status", resp.StatusCode, "proto", resp.Proto)
	return &response{resp: resp}, nil
}

// drained bytes before closing, larger remainders drop the connection
const maxDrain = 4 << 10

type response struct {
	resp *nethttp.Response
}

func (r *response) StatusCode() int { return r.resp.StatusCode }

func (r *response) StatusText() string {
	_, text, _ := strings.Cut(r.resp.Status, " ")
	return text
}

func (r *response) Header() http.Header { return r.resp.Header }
func (r *response) Body() io.Reader     { return r.resp.Body }

func (r *response) Close() error {
	io.CopyN(io.Discard, r.resp.Body, maxDrain)
	return r.resp.Body.Close()
}

// Raw exposes the library response.
func (r *response) Raw() *nethttp.Response { return r.resp }
