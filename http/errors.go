package http

import (
	"errors"
	"fmt"

	"github.com/wesleyorama2/bonkers/pkg/querystring"
	"github.com/wesleyorama2/bonkers/pkg/uri"
)

// Errors recorded on an Endpoint by its fluent methods and returned by the
// terminal calls. Transport failures are returned unchanged from the
// underlying *http.Client and are not wrapped.
var (
	// ErrInvalidURL is returned when a URL or fragment cannot be resolved to
	// an absolute URL.
	ErrInvalidURL = uri.ErrInvalidURL

	// ErrMalformedQuery is returned when a query string pair lacks "=".
	ErrMalformedQuery = querystring.ErrMalformedQuery

	// ErrDuplicateHeader is returned when a header name is set twice within
	// the same header set of one endpoint.
	ErrDuplicateHeader = errors.New("duplicate header")

	// ErrInvalidHeader is returned when a header value cannot be used, such
	// as a Content-Length that is not a number.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrBodyEncoding is returned when a body cannot be represented in the
	// requested character encoding.
	ErrBodyEncoding = errors.New("body encoding failed")
)

// StatusError is returned by RequireSuccess for responses outside the 2xx
// range.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status: %s: %s", e.Status, e.Body)
}
