package http

import (
	"net/http"
	"time"
)

// TimingInfo stores the time spent in each phase of a request.
type TimingInfo struct {
	// StartTime is when the request was handed to the transport
	StartTime time.Time

	// DNSLookupTime is the time spent resolving the host
	DNSLookupTime time.Duration

	// TCPConnectTime is the time spent establishing a TCP connection
	TCPConnectTime time.Duration

	// TLSHandshakeTime is the time spent in the TLS handshake (for HTTPS)
	TLSHandshakeTime time.Duration

	// TimeToFirstByte is the time from the last connection phase to the first response byte
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the response body
	ContentTransferTime time.Duration

	// TotalTime is the time from request start until the body was read
	TotalTime time.Duration
}

// Response is the raw response handed to a ProcessFunc. It embeds the
// transport's *http.Response; the body has already been read and Body is
// replaced with a reader over the buffered bytes.
type Response struct {
	*http.Response

	// Timing contains the per-phase timing of the request
	Timing TimingInfo

	body []byte
}

// Bytes returns the buffered response body.
func (r *Response) Bytes() []byte {
	return r.body
}

// Text returns the buffered response body as a string.
func (r *Response) Text() string {
	return string(r.body)
}

// IsSuccess returns true if the response status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError returns true if the response status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}
