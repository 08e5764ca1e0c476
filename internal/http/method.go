package http

type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

var knownMethods = map[string]Method{
	"GET": MethodGet, "HEAD": MethodHead, "POST": MethodPost, "PUT": MethodPut,
	"PATCH": MethodPatch, "DELETE": MethodDelete, "OPTIONS": MethodOptions, "TRACE": MethodTrace,
}

// ResolveMethod returns the well known method named s. Matching is case
// sensitive, as method names are on the wire.
func ResolveMethod(s string) (Method, bool) {
	m, ok := knownMethods[s]
	return m, ok
}

// PermitsBody reports whether a buffered body is sent along with m.
func (m Method) PermitsBody() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

func (m Method) String() string { return string(m) }
