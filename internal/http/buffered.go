package http

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

var ErrAlreadyExecuted = errors.New("request already executed")

// Executor sends headers and the buffered body over a concrete transport.
type Executor func(ctx context.Context, header Header, body []byte) (Response, error)

// BufferedRequest implements [Request] by buffering the body in memory and
// delegating the actual exchange to an [Executor].
type BufferedRequest struct {
	method Method
	u      *url.URL
	exec   Executor

	mu       sync.Mutex
	header   Header
	body     *bytes.Buffer
	executed bool
}

func NewBufferedRequest(method Method, u *url.URL, exec Executor) *BufferedRequest {
	return &BufferedRequest{
		method: method, u: u, exec: exec,
		header: Header{},
		body:   bytes.NewBuffer(make([]byte, 0, 1024)),
	}
}

func (r *BufferedRequest) Method() Method { return r.method }
func (r *BufferedRequest) URL() *url.URL  { return r.u }

func (r *BufferedRequest) Header() Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.executed {
		return r.header.Clone()
	}
	return r.header
}

func (r *BufferedRequest) Body() (io.Writer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.executed {
		return nil, ErrAlreadyExecuted
	}
	return bodyWriter{r}, nil
}

func (r *BufferedRequest) Execute(ctx context.Context) (Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.executed {
		return nil, ErrAlreadyExecuted
	}
	b := r.body.Bytes()
	header := r.header
	if header.Get("Content-Length") == "" {
		// computed on a copy, the body may still grow if this attempt fails
		header = header.Clone()
		header.Set("Content-Length", strconv.Itoa(len(b)))
	}
	resp, err := r.exec(ctx, header, b)
	if err != nil {
		// the buffer is kept, the request may be executed again
		return nil, err
	}
	r.header = header
	r.executed = true
	r.body = nil
	return resp, nil
}

type bodyWriter struct{ r *BufferedRequest }

func (w bodyWriter) Write(p []byte) (int, error) {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	if w.r.executed {
		return 0, ErrAlreadyExecuted
	}
	return w.r.body.Write(p)
}
