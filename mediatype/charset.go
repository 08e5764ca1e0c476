package mediatype

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

func checkCharset(name string) error {
	if _, err := ianaindex.IANA.Encoding(name); err != nil {
		return errors.Errorf("unsupported charset '%s'", name)
	}
	return nil
}

// canonicalCharset returns the IANA preferred name of charset, so that aliases
// and different spellings compare equal.
func canonicalCharset(name string) string {
	enc, err := ianaindex.IANA.Encoding(name)
	if err == nil && enc != nil {
		if n, err := ianaindex.IANA.Name(enc); err == nil {
			return n
		}
	}
	return strings.ToUpper(name)
}

func charsetEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Errorf("unsupported charset '%s'", name)
	}
	if enc == nil {
		return nil, errors.Errorf("charset '%s' is registered but not supported", name)
	}
	return enc, nil
}
