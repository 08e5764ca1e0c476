package http

import (
	"bytes"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

// PreparedRequest is the wire form of a request, consumed by transports that
// serialize requests themselves.
type PreparedRequest struct {
	Method     Method
	U          *url.URL
	Header     Header
	HeaderHost string

	ContentLength int64 // -1 if unknown
	GetBody       func() (io.ReadCloser, error)
}

// RawResponse is a parsed response head plus its framed body.
type RawResponse struct {
	Proto      string
	Status     string
	StatusCode int
	Header     Header

	ContentLength int64
	Body          io.ReadCloser
}

// StatusText returns the reason phrase part of the status line.
func (r *RawResponse) StatusText() string {
	_, text, _ := strings.Cut(r.Status, " ")
	return text
}

// Prepare builds the wire form of a request. Host and Content-Length are lifted
// out of headers; user defined headers have higher priority.
func Prepare(method Method, u *url.URL, header Header, body []byte) (*PreparedRequest, error) {
	if err := ValidateHeader(header); err != nil {
		return nil, err
	}
	headers := header.Clone()
	if headers == nil {
		headers = Header{}
	}
	host := u.Host
	cl := int64(-1)
	for k, v := range headers {
		if strings.EqualFold(k, "host") {
			if len(v) != 0 {
				host = v[0]
			}
			delete(headers, k)
		}

		if strings.EqualFold(k, "content-length") {
			if len(v) != 0 {
				if v, err := strconv.ParseInt(v[0], 10, 64); err == nil {
					cl = v
				}
			}
			delete(headers, k)
		}
	}
	if host == "" {
		return nil, url.InvalidHostError("empty host")
	}
	if !httpguts.ValidHostHeader(host) {
		return nil, errors.Errorf("invalid host header %q", host)
	}

	pr := &PreparedRequest{
		Method: method, U: u,
		Header: headers, HeaderHost: host,
		ContentLength: cl,
	}
	if body == nil {
		pr.GetBody = func() (io.ReadCloser, error) { return NoBody, nil }
		return pr, nil
	}
	if cl != -1 && cl != int64(len(body)) {
		return nil, errors.New("conflicting value between body size and content-length request header")
	}
	pr.ContentLength = int64(len(body))
	pr.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return pr, nil
}

// ValidateHeader rejects header names and values that must not be put on the
// wire.
func ValidateHeader(h Header) error {
	for k, vv := range h {
		if !httpguts.ValidHeaderFieldName(k) {
			return errors.Errorf("invalid header field name %q", k)
		}
		for _, v := range vv {
			if !httpguts.ValidHeaderFieldValue(v) {
				return errors.Errorf("invalid header field value for %q", k)
			}
		}
	}
	return nil
}
