package mediatype

import (
	"cmp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

const (
	wildcardType = "*"

	paramCharset = "charset"
	paramQuality = "q"
)

// Param is a single media type parameter.
type Param struct {
	Attribute string
	Value     string
}

// MediaType is an immutable media type value. The zero value is not a valid
// media type, use [New] or [Parse].
type MediaType struct {
	typ     string
	subtype string
	params  []Param
}

// New validates and builds a media type. Duplicate attributes (compared
// case-insensitively) replace the earlier value in place.
func New(typ, subtype string, params ...Param) (MediaType, error) {
	if typ == "" {
		return MediaType{}, errors.New("type must not be empty")
	}
	if subtype == "" {
		return MediaType{}, errors.New("subtype must not be empty")
	}
	if err := checkToken(typ); err != nil {
		return MediaType{}, err
	}
	if err := checkToken(subtype); err != nil {
		return MediaType{}, err
	}
	m := MediaType{typ: strings.ToLower(typ), subtype: strings.ToLower(subtype)}
	for _, p := range params {
		if err := checkParameter(p.Attribute, p.Value); err != nil {
			return MediaType{}, err
		}
		m.params = putParam(m.params, p)
	}
	return m, nil
}

// NewWildcardSubtype returns typ/*.
func NewWildcardSubtype(typ string) (MediaType, error) {
	return New(typ, wildcardType)
}

func NewWithCharset(typ, subtype, charset string) (MediaType, error) {
	return New(typ, subtype, Param{paramCharset, charset})
}

func NewWithQuality(typ, subtype string, q float64) (MediaType, error) {
	return New(typ, subtype, Param{paramQuality, strconv.FormatFloat(q, 'f', -1, 64)})
}

// WithParams returns a copy of m carrying params instead of its own parameters.
func (m MediaType) WithParams(params ...Param) (MediaType, error) {
	return New(m.typ, m.subtype, params...)
}

// WithCharset returns a copy of m with the charset parameter set, other
// parameters are kept.
func (m MediaType) WithCharset(charset string) (MediaType, error) {
	return New(m.typ, m.subtype, append(m.Params(), Param{paramCharset, charset})...)
}

// WithQuality returns a copy of m with the quality parameter set, other
// parameters are kept.
func (m MediaType) WithQuality(q float64) (MediaType, error) {
	return New(m.typ, m.subtype, append(m.Params(), Param{paramQuality, strconv.FormatFloat(q, 'f', -1, 64)})...)
}

func putParam(params []Param, p Param) []Param {
	for i := range params {
		if strings.EqualFold(params[i].Attribute, p.Attribute) {
			params[i] = p
			return params
		}
	}
	return append(params, p)
}

func checkParameter(attribute, value string) error {
	if attribute == "" {
		return errors.New("parameter attribute must not be empty")
	}
	if value == "" {
		return errors.New("parameter value must not be empty")
	}
	if err := checkToken(attribute); err != nil {
		return err
	}
	if strings.EqualFold(attribute, paramCharset) {
		if err := checkCharset(unquote(value)); err != nil {
			return err
		}
	} else if !isQuotedString(value) {
		if err := checkToken(value); err != nil {
			return err
		}
	}
	if strings.EqualFold(attribute, paramQuality) {
		v := unquote(value)
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Errorf("invalid quality value %q", v)
		}
		if !(d >= 0 && d <= 1) {
			return errors.Errorf("invalid quality value %q: should be between 0.0 and 1.0", v)
		}
	}
	return nil
}

func (m MediaType) Type() string    { return m.typ }
func (m MediaType) Subtype() string { return m.subtype }

// IsZero reports whether m is the zero value.
func (m MediaType) IsZero() bool { return m.typ == "" }

// IsWildcardType reports whether the type is "*".
func (m MediaType) IsWildcardType() bool { return m.typ == wildcardType }

// IsWildcardSubtype reports whether the subtype is "*" or of the form "*+suffix".
func (m MediaType) IsWildcardSubtype() bool {
	return m.subtype == wildcardType || strings.HasPrefix(m.subtype, "*+")
}

// IsConcrete reports whether neither type nor subtype is a wildcard.
func (m MediaType) IsConcrete() bool {
	return !m.IsWildcardType() && !m.IsWildcardSubtype()
}

// SubtypeSuffix returns the structured syntax suffix of the subtype, e.g.
// "json" for application/problem+json, or "" if there is none.
func (m MediaType) SubtypeSuffix() string {
	if i := strings.LastIndexByte(m.subtype, '+'); i != -1 && i < len(m.subtype)-1 {
		return m.subtype[i+1:]
	}
	return ""
}

// Param returns the raw value of the named parameter, looked up
// case-insensitively.
func (m MediaType) Param(name string) (string, bool) {
	for _, p := range m.params {
		if strings.EqualFold(p.Attribute, name) {
			return p.Value, true
		}
	}
	return "", false
}

// Params returns a copy of the parameters in their original order.
func (m MediaType) Params() []Param {
	if len(m.params) == 0 {
		return nil
	}
	return append([]Param(nil), m.params...)
}

// Charset returns the unquoted charset parameter, or "" if not present.
func (m MediaType) Charset() string {
	v, _ := m.Param(paramCharset)
	return unquote(v)
}

// CharsetEncoding returns the encoding named by the charset parameter, nil if
// there is none.
func (m MediaType) CharsetEncoding() (encoding.Encoding, error) {
	cs := m.Charset()
	if cs == "" {
		return nil, nil
	}
	return charsetEncoding(cs)
}

// Quality returns the q parameter, 1.0 when absent.
func (m MediaType) Quality() float64 {
	v, ok := m.Param(paramQuality)
	if !ok {
		return 1
	}
	d, err := strconv.ParseFloat(unquote(v), 64)
	if err != nil {
		return 1
	}
	return d
}

// Equal compares type, subtype and parameters. Charsets are compared by their
// canonical name, every other parameter value must match exactly.
func (m MediaType) Equal(other MediaType) bool {
	if !strings.EqualFold(m.typ, other.typ) || !strings.EqualFold(m.subtype, other.subtype) {
		return false
	}
	if len(m.params) != len(other.params) {
		return false
	}
	for _, p := range m.params {
		ov, ok := other.Param(p.Attribute)
		if !ok {
			return false
		}
		if strings.EqualFold(p.Attribute, paramCharset) {
			if canonicalCharset(unquote(p.Value)) != canonicalCharset(unquote(ov)) {
				return false
			}
		} else if p.Value != ov {
			return false
		}
	}
	return true
}

// Compare orders media types by type, subtype, number of parameters, then
// parameter attributes in case-insensitive order and their values. The result
// is -1, 0 or +1.
func (m MediaType) Compare(other MediaType) int {
	if c := strings.Compare(strings.ToLower(m.typ), strings.ToLower(other.typ)); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToLower(m.subtype), strings.ToLower(other.subtype)); c != 0 {
		return c
	}
	if c := cmp.Compare(len(m.params), len(other.params)); c != 0 {
		return c
	}
	ta, oa := sortedAttributes(m.params), sortedAttributes(other.params)
	for i := range ta {
		if c := strings.Compare(strings.ToLower(ta[i]), strings.ToLower(oa[i])); c != 0 {
			return c
		}
		tv, _ := m.Param(ta[i])
		ov, _ := other.Param(oa[i])
		if c := strings.Compare(tv, ov); c != 0 {
			return c
		}
	}
	return 0
}

func sortedAttributes(params []Param) []string {
	attrs := make([]string, len(params))
	for i, p := range params {
		attrs[i] = p.Attribute
	}
	sort.Slice(attrs, func(i, j int) bool {
		return strings.ToLower(attrs[i]) < strings.ToLower(attrs[j])
	})
	return attrs
}

func (m MediaType) String() string {
	var sb strings.Builder
	m.appendTo(&sb)
	return sb.String()
}

func (m MediaType) appendTo(sb *strings.Builder) {
	sb.WriteString(m.typ)
	sb.WriteByte('/')
	sb.WriteString(m.subtype)
	for _, p := range m.params {
		sb.WriteByte(';')
		sb.WriteString(p.Attribute)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
	}
}

func (m MediaType) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return nil, errors.New("zero media type")
	}
	return []byte(m.String()), nil
}

func (m *MediaType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
