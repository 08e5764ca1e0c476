package chunked

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const maxLineLength = 4096

var ErrLineTooLong = errors.New("header line too long")

func NewChunkedReader(r io.Reader) io.Reader {
	var br *bufio.Reader
	if v, ok := r.(*bufio.Reader); ok {
		br = v
	} else {
		br = bufio.NewReader(r)
	}
	return &chunkedReader{Reader: br}
}

type chunkedReader struct {
	*bufio.Reader
	currentChunk                   io.Reader
	currentCount, currentChunkSize int64
	done                           bool
}

func (c *chunkedReader) readLine() ([]byte, error) {
	line, err := c.ReadSlice('\n')
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		} else if err == bufio.ErrBufferFull {
			err = ErrLineTooLong
		}
		return nil, err
	}
	if len(line) >= maxLineLength {
		return nil, ErrLineTooLong
	}
	return bytes.TrimRight(line, " \t\r\n"), nil
}

func (c *chunkedReader) readChunkHeader() (size uint64, err error) {
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	// chunk extensions are ignored
	if i := bytes.IndexByte(line, ';'); i >= 0 {
		line = bytes.TrimRight(line[:i], " \t")
	}
	if len(line) == 0 {
		return 0, errors.New("empty chunk length")
	}
	if len(line) >= 16 {
		return 0, errors.New("http chunk length too large")
	}
	for _, b := range line {
		switch {
		case '0' <= b && b <= '9':
			b = b - '0'
		case 'a' <= b && b <= 'f':
			b = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			b = b - 'A' + 10
		default:
			return 0, errors.New("invalid byte in chunk length")
		}
		size <<= 4
		size |= uint64(b)
	}
	return size, nil
}

// skipTrailer consumes the trailer section following the last chunk.
func (c *chunkedReader) skipTrailer() error {
	for {
		line, err := c.readLine()
		if err != nil {
			return err
		}
		if len(line) == 0 {
			return nil
		}
	}
}

func (c *chunkedReader) Read(p []byte) (n int, err error) {
	if c.done {
		return 0, io.EOF
	}
	if c.currentChunk == nil {
		l, err := c.readChunkHeader()
		if err != nil {
			return n, err
		}
		if l == 0 {
			if err := c.skipTrailer(); err != nil {
				return 0, err
			}
			c.done = true
			return 0, io.EOF
		}
		c.currentChunk = io.LimitReader(c.Reader, int64(l))
		c.currentChunkSize = int64(l)
	}
	n, err = c.currentChunk.Read(p)
	c.currentCount += int64(n)
	if err == io.EOF {
		if c.currentCount != c.currentChunkSize {
			return n, io.ErrUnexpectedEOF
		}
		err = nil
		dr, _ := c.Reader.ReadByte()
		dn, err := c.Reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return n, err
		}
		if dr != '\r' || dn != '\n' {
			return n, errors.New("malformed chunked encoding")
		}
		c.currentChunk = nil
		c.currentCount = 0
	}
	return
}
