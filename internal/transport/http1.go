package transport

import (
	"bufio"
	"context"
	"io"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/frankli0324/go-http-factories/internal/http"
	"github.com/frankli0324/go-http-factories/internal/transport/chunked"
)

// HTTP1 reads and writes HTTP/1.1 messages over a byte stream.
type HTTP1 struct{}

func (t HTTP1) Write(ctx context.Context, w io.Writer, r *http.PreparedRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := r.GetBody()
	if err != nil {
		return err
	}
	if body != nil {
		defer body.Close() // request body is ALWAYS closed
	}

	bw := bufio.NewWriter(w) // default bufsize is 4096
	if err := t.writeHeader(bw, r); err != nil {
		return err
	}
	if body != nil {
		if _, err := io.Copy(bw, body); err != nil {
			return errors.Wrap(err, "write request body")
		}
	}
	return errors.Wrap(bw.Flush(), "flush request")
}

// writeHeader writes the status and header part of an http 1.1 request
// e.g.:
//
//	GET / HTTP/1.1\r\n
//	Host: www.google.com\r\n
//	X-Xx-Yy: cccccc\r\n
//	\r\n
func (t HTTP1) writeHeader(header *bufio.Writer, r *http.PreparedRequest) error {
	if _, err := header.WriteString(string(r.Method)); err != nil {
		return err
	}
	header.WriteByte(' ')
	if r.Method == "CONNECT" {
		header.WriteString(r.HeaderHost)
	} else {
		header.WriteString(r.U.RequestURI())
	}
	header.WriteString(" HTTP/1.1\r\n")

	header.WriteString("Host: ")
	header.WriteString(r.HeaderHost)
	header.WriteString("\r\n")
	if r.ContentLength != -1 {
		header.WriteString("Content-Length: ")
		header.WriteString(strconv.FormatInt(r.ContentLength, 10))
		header.WriteString("\r\n")
	}
	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range r.Header[k] {
			header.WriteString(k)
			header.WriteString(": ")
			header.WriteString(v)
			if _, err := header.WriteString("\r\n"); err != nil {
				return err
			}
		}
	}
	_, err := header.WriteString("\r\n")
	return err
}

func (t HTTP1) Read(ctx context.Context, r io.Reader, req *http.PreparedRequest, resp *http.RawResponse) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	closer := io.NopCloser
	if cr, ok := r.(io.Closer); ok {
		closer = func(r io.Reader) io.ReadCloser { return bodyCloser{r, cr.Close} }
	}
	tp := textproto.NewReader(bufio.NewReader(r))

	for {
		if err := t.readHead(tp, resp); err != nil {
			return err
		}
		// interim responses carry no body, the final one follows
		if resp.StatusCode >= 100 && resp.StatusCode < 200 && resp.StatusCode != 101 {
			continue
		}
		break
	}
	return t.readTransfer(tp.R, req, resp, closer)
}

func (t HTTP1) readHead(tp *textproto.Reader, resp *http.RawResponse) error {
	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return errors.Wrap(err, "read status line")
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok {
		return errors.New("malformed HTTP response " + strconv.Quote(line))
	}
	resp.Proto = proto
	resp.Status = strings.TrimLeft(status, " ")

	statusCode, _, _ := strings.Cut(resp.Status, " ")
	if len(statusCode) != 3 {
		return errors.New("malformed HTTP status code " + statusCode)
	}
	resp.StatusCode, err = strconv.Atoi(statusCode)
	if err != nil || resp.StatusCode < 0 {
		return errors.New("malformed HTTP status code " + statusCode)
	}

	// Parse the response headers.
	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return errors.Wrap(err, "read response header")
	}
	if hp, ok := mimeHeader["Pragma"]; ok && len(hp) > 0 && hp[0] == "no-cache" {
		if _, presentcc := mimeHeader["Cache-Control"]; !presentcc {
			mimeHeader["Cache-Control"] = []string{"no-cache"}
		}
	}
	resp.Header = http.Header(mimeHeader)
	return nil
}

func (t HTTP1) readTransfer(r *bufio.Reader, req *http.PreparedRequest, resp *http.RawResponse, closer func(io.Reader) io.ReadCloser) error {
	contentLens := resp.Header["Content-Length"]

	// Hardening against HTTP request smuggling, taken from standard library
	if len(contentLens) > 1 {
		// Per RFC 7230 Section 3.3.2
		first := textproto.TrimString(contentLens[0])
		for _, ct := range contentLens[1:] {
			if first != textproto.TrimString(ct) {
				return errors.Errorf("http: message cannot contain multiple Content-Length headers; got %q", contentLens)
			}
		}

		// deduplicate Content-Length
		resp.Header.Del("Content-Length")
		resp.Header.Add("Content-Length", first)

		contentLens = resp.Header["Content-Length"]
	}

	cl := int64(-1)
	if len(contentLens) > 0 {
		n, err := strconv.ParseUint(textproto.TrimString(contentLens[0]), 10, 63)
		if err != nil {
			return errors.Errorf("bad Content-Length %q", contentLens[0])
		}
		cl = int64(n)
	}

	switch {
	case !bodyAllowed(req, resp.StatusCode):
		resp.ContentLength = 0
		resp.Body = closer(http.NoBody)
	case lastCoding(resp.Header["Transfer-Encoding"]) == "chunked":
		// Content-Length is ignored when chunked, RFC 9112 section 6.3
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
		resp.Body = closer(chunked.NewChunkedReader(r))
	case cl >= 0:
		resp.ContentLength = cl
		resp.Body = closer(&fixedLengthReader{r: r, remaining: cl})
	default:
		// delimited by connection close
		resp.ContentLength = -1
		resp.Body = closer(r)
	}
	return nil
}

func bodyAllowed(req *http.PreparedRequest, status int) bool {
	if req != nil && req.Method == http.MethodHead {
		return false
	}
	if req != nil && req.Method == "CONNECT" && status == 200 {
		return false
	}
	return !(status >= 100 && status < 200) && status != 204 && status != 304
}
