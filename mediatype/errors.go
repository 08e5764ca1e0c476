package mediatype

import "fmt"

// InvalidMediaTypeError is returned when a string cannot be parsed as a media
// type.
type InvalidMediaTypeError struct {
	MediaType string
	Reason    string
}

func (e *InvalidMediaTypeError) Error() string {
	return fmt.Sprintf("invalid media type %q: %s", e.MediaType, e.Reason)
}
