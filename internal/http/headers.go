package http

import "strings"

// CopyHeaders calls add for every header line in h, except those named in skip
// (case-insensitive). Cookie values are folded into a single line joined with
// "; " as RFC 6265 requires, every other value is passed on its own.
func CopyHeaders(h Header, add func(name, value string), skip ...string) {
outer:
	for name, values := range h {
		for _, s := range skip {
			if strings.EqualFold(name, s) {
				continue outer
			}
		}
		if strings.EqualFold(name, "Cookie") {
			add(name, strings.Join(values, "; "))
			continue
		}
		for _, v := range values {
			add(name, v)
		}
	}
}
