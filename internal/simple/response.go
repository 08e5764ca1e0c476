package simple

import (
	"io"
	"sync"

	"github.com/frankli0324/go-http-factories/internal/http"
)

// response owns the connection it was read from, closing it closes the
// connection.
type response struct {
	raw  *http.RawResponse
	stop func() bool

	once     sync.Once
	closeErr error
}

func (r *response) StatusCode() int     { return r.raw.StatusCode }
func (r *response) StatusText() string  { return r.raw.StatusText() }
func (r *response) Header() http.Header { return r.raw.Header }
func (r *response) Body() io.Reader     { return r.raw.Body }

func (r *response) Close() error {
	r.once.Do(func() {
		r.stop()
		r.closeErr = r.raw.Body.Close()
	})
	return r.closeErr
}
