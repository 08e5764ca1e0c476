package factories

import (
	"github.com/frankli0324/go-http-factories/internal/http"
)

type Header = http.Header
type Method = http.Method
type Request = http.Request
type Response = http.Response
type RequestFactory = http.RequestFactory

const (
	MethodGet     = http.MethodGet
	MethodHead    = http.MethodHead
	MethodPost    = http.MethodPost
	MethodPut     = http.MethodPut
	MethodPatch   = http.MethodPatch
	MethodDelete  = http.MethodDelete
	MethodOptions = http.MethodOptions
	MethodTrace   = http.MethodTrace
)

// ErrAlreadyExecuted is returned when a request is touched after it has been
// executed successfully.
var ErrAlreadyExecuted = http.ErrAlreadyExecuted

// ResolveMethod returns the well known method named s, matched case
// sensitively.
func ResolveMethod(s string) (Method, bool) { return http.ResolveMethod(s) }
