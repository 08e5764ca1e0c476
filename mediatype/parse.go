package mediatype

import (
	"strings"
)

// Parse parses a single media type such as `text/html;charset=UTF-8`. A lone
// "*", as sent by some clients in Accept headers, is read as "*/*". Parameter
// segments without '=' are ignored.
func Parse(s string) (MediaType, error) {
	invalid := func(reason string) (MediaType, error) {
		return MediaType{}, &InvalidMediaTypeError{MediaType: s, Reason: reason}
	}
	if s == "" {
		return invalid("'mimeType' must not be empty")
	}
	parts := tokenize(s, ';')
	if len(parts) == 0 {
		return invalid("'mimeType' must not be empty")
	}

	fullType := parts[0]
	if fullType == wildcardType {
		fullType = "*/*"
	}
	subIndex := strings.IndexByte(fullType, '/')
	if subIndex == -1 {
		return invalid("does not contain '/'")
	}
	if subIndex == len(fullType)-1 {
		return invalid("does not contain subtype after '/'")
	}
	typ, subtype := fullType[:subIndex], fullType[subIndex+1:]
	if typ == wildcardType && subtype != wildcardType {
		return invalid("wildcard type is legal only in '*/*' (all mime types)")
	}

	var params []Param
	for _, p := range parts[1:] {
		if eq := strings.IndexByte(p, '='); eq != -1 {
			params = append(params, Param{Attribute: p[:eq], Value: p[eq+1:]})
		}
	}
	m, err := New(typ, subtype, params...)
	if err != nil {
		return invalid(err.Error())
	}
	return m, nil
}

// MustParse is like [Parse] but panics on error. It is meant for
// initializing package level values.
func MustParse(s string) MediaType {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseList parses a comma separated list of media types, as found in an
// Accept header. An empty string yields an empty list.
func ParseList(s string) ([]MediaType, error) {
	if s == "" {
		return nil, nil
	}
	tokens := tokenize(s, ',')
	result := make([]MediaType, 0, len(tokens))
	for _, t := range tokens {
		m, err := Parse(t)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

// ParseLists parses every header value with [ParseList] and concatenates the
// results.
func ParseLists(values []string) ([]MediaType, error) {
	var result []MediaType
	for _, v := range values {
		l, err := ParseList(v)
		if err != nil {
			return nil, err
		}
		result = append(result, l...)
	}
	return result, nil
}

// FormatList renders media types as a header value, separated by ", ".
func FormatList(list []MediaType) string {
	var sb strings.Builder
	for i, m := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		m.appendTo(&sb)
	}
	return sb.String()
}

// tokenize splits s on sep outside of double quoted strings, trims every
// segment and drops empty ones.
func tokenize(s string, sep byte) []string {
	var (
		tokens  []string
		start   int
		quoted  bool
		escaped bool
	)
	add := func(t string) {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == sep && !quoted:
			add(s[start:i])
			start = i + 1
		}
	}
	add(s[start:])
	return tokens
}
