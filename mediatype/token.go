package mediatype

import "github.com/pkg/errors"

// token holds the characters allowed in a token, indexed by byte value.
// variable names refer to RFC 2616, section 2.2
var token [128]bool

func init() {
	for i := range token {
		token[i] = true
	}
	// CTL
	for i := 0; i <= 31; i++ {
		token[i] = false
	}
	token[127] = false
	for _, c := range []byte("()<>@,;:\\\"/[]?={} \t") {
		token[c] = false
	}
}

func isTokenChar(c byte) bool {
	return c < 128 && token[c]
}

func checkToken(s string) error {
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return errors.Errorf("invalid token character %q in token %q", s[i], s)
		}
	}
	return nil
}

func isQuotedString(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')
}

func unquote(s string) string {
	if isQuotedString(s) {
		return s[1 : len(s)-1]
	}
	return s
}
