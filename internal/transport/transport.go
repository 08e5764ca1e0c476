package transport

import (
	"context"
	"io"

	"github.com/frankli0324/go-http-factories/internal/http"
)

type Transport interface {
	Write(ctx context.Context, w io.Writer, req *http.PreparedRequest) error
	Read(ctx context.Context, r io.Reader, req *http.PreparedRequest, resp *http.RawResponse) error
}

var _ Transport = HTTP1{}
