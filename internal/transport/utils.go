package transport

import (
	"io"
	"strings"
)

type bodyCloser struct {
	io.Reader
	close func() error
}

func (b bodyCloser) Close() error {
	return b.close()
}

// lastCoding returns the final transfer coding listed in a Transfer-Encoding
// header, which decides the message framing.
func lastCoding(values []string) string {
	if len(values) == 0 {
		return ""
	}
	v := values[len(values)-1]
	if i := strings.LastIndexByte(v, ','); i >= 0 {
		v = v[i+1:]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// fixedLengthReader reads exactly remaining bytes, a stream ending early is
// reported as [io.ErrUnexpectedEOF].
type fixedLengthReader struct {
	r         io.Reader
	remaining int64
}

func (f *fixedLengthReader) Read(p []byte) (int, error) {
	if f.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > f.remaining {
		p = p[:f.remaining]
	}
	n, err := f.r.Read(p)
	f.remaining -= int64(n)
	if err == io.EOF {
		if f.remaining > 0 {
			return n, io.ErrUnexpectedEOF
		}
		err = nil
	}
	return n, err
}
