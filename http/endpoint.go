package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"

	"github.com/wesleyorama2/bonkers/pkg/querystring"
	"github.com/wesleyorama2/bonkers/pkg/uri"
)

// Endpoint is a target URL plus the pending request state (headers and
// body) from which GET and POST requests are sent.
//
// Combine and Duplicate return new endpoints. Header, Body, BodyEncoded,
// Stream, Params and Reset modify the receiver and return it for chaining.
// The first error raised by a fluent call is kept and returned by every
// terminal call (Get, Post, GetAs, PostAs) without sending anything.
//
// An Endpoint is not safe for concurrent use. The *http.Client it sends
// through is shared with the Client and every endpoint derived from it.
type Endpoint struct {
	url            *url.URL
	httpClient     *http.Client
	defaults       []header
	headers        *headerSet
	contentHeaders *headerSet
	body           requestBody
	err            error
}

func newEndpoint(httpClient *http.Client, defaults []header, u *url.URL) *Endpoint {
	return &Endpoint{
		url:            u,
		httpClient:     httpClient,
		defaults:       defaults,
		headers:        newHeaderSet(),
		contentHeaders: newHeaderSet(),
	}
}

// NewEndpoint creates a standalone endpoint for an absolute URL. A nil
// httpClient uses http.DefaultClient.
func NewEndpoint(httpClient *http.Client, rawURL string) *Endpoint {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u, err := uri.Parse(rawURL)
	if err != nil {
		e := newEndpoint(httpClient, nil, &url.URL{})
		e.err = err
		return e
	}
	return newEndpoint(httpClient, nil, u)
}

// URL returns a copy of the endpoint's full URL.
func (e *Endpoint) URL() *url.URL {
	u := *e.url
	return &u
}

// String returns the full URL.
func (e *Endpoint) String() string {
	return e.url.String()
}

// Err returns the first error recorded by a fluent call.
func (e *Endpoint) Err() error {
	return e.err
}

// Headers returns a copy of the pending transport headers.
func (e *Endpoint) Headers() map[string]string {
	return e.headers.toMap()
}

// ContentHeaders returns a copy of the pending content headers.
func (e *Endpoint) ContentHeaders() map[string]string {
	return e.contentHeaders.toMap()
}

// HasBody reports whether a body or stream is pending.
func (e *Endpoint) HasBody() bool {
	return e.body != nil
}

func (e *Endpoint) setErr(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Combine returns a new endpoint whose URL is this endpoint's URL with the
// fragments appended (see uri.Combine). The new endpoint shares the
// *http.Client and the client's default headers and starts with no pending
// headers and no body.
//
// Example:
//
//	user := client.CreateEndpoint("user/")
//	alice := user.Combine("alice")
func (e *Endpoint) Combine(fragments ...string) *Endpoint {
	u, err := uri.Combine(e.url, fragments...)
	if err != nil {
		c := newEndpoint(e.httpClient, e.defaults, e.URL())
		c.err = err
		return c
	}

	c := newEndpoint(e.httpClient, e.defaults, u)
	c.err = e.err
	return c
}

// Duplicate returns a copy of the endpoint with the same URL, headers,
// pending body and recorded error. Header sets are copied, so headers added
// to the duplicate do not affect the original. A pending stream is shared
// and can only be read once.
func (e *Endpoint) Duplicate() *Endpoint {
	return &Endpoint{
		url:            e.URL(),
		httpClient:     e.httpClient,
		defaults:       e.defaults,
		headers:        e.headers.clone(),
		contentHeaders: e.contentHeaders.clone(),
		body:           e.body,
		err:            e.err,
	}
}

// Reset clears the pending body and content headers. The URL and transport
// headers are kept.
func (e *Endpoint) Reset() *Endpoint {
	e.body = nil
	e.contentHeaders.clear()
	return e
}

// Header adds a header. Names listed by IsContentHeader go to the content
// header set, everything else to the transport header set. Adding a name
// that is already present in its set records ErrDuplicateHeader, and a
// Content-Length that is not a non-negative integer records ErrInvalidHeader.
func (e *Endpoint) Header(name, value string) *Endpoint {
	set := e.headers
	if IsContentHeader(name) {
		set = e.contentHeaders
	}
	if name == "Content-Length" {
		if n, err := strconv.ParseInt(value, 10, 64); err != nil || n < 0 {
			e.setErr(fmt.Errorf("%w: Content-Length %q", ErrInvalidHeader, value))
		}
	}
	if err := set.add(name, value); err != nil {
		e.setErr(err)
	}
	return e
}

// Body sets the pending body to content encoded as UTF-8, replacing any
// previous body or stream.
func (e *Endpoint) Body(content string) *Endpoint {
	return e.BodyEncoded(content, nil)
}

// BodyEncoded sets the pending body to content encoded with enc. A nil enc
// means UTF-8. The body carries "Content-Type: text/plain; charset=<name>"
// unless a Content-Type header is set on the endpoint.
func (e *Endpoint) BodyEncoded(content string, enc encoding.Encoding) *Endpoint {
	body, err := newStringBody(content, enc)
	if err != nil {
		e.setErr(err)
		return e
	}
	e.body = body
	return e
}

// Stream sets the pending body to be read lazily from source, replacing any
// previous body. A positive bufferSize wraps source in a buffered reader of
// that size; otherwise the transport reads source directly.
func (e *Endpoint) Stream(source io.Reader, bufferSize int) *Endpoint {
	e.body = &streamBody{source: source, bufferSize: bufferSize}
	return e
}

// Params appends the encoded query string to the URL. Keys and values are
// percent-escaped. When the URL already has a query, the parameters are
// appended after it with "&".
func (e *Endpoint) Params(qs *querystring.Values) *Endpoint {
	if qs.Len() == 0 {
		return e
	}

	base := *e.url
	base.Fragment, base.RawFragment = "", ""

	raw := base.String()
	switch {
	case base.RawQuery != "":
		raw += "&"
	case !base.ForceQuery:
		raw += "?"
	}
	raw += qs.Encode()
	if e.url.Fragment != "" {
		raw += "#" + e.url.EscapedFragment()
	}

	u, err := uri.Parse(raw)
	if err != nil {
		e.setErr(err)
		return e
	}
	e.url = u
	return e
}

// Get sends a GET request and returns the response body as text. The
// status code is not checked.
func (e *Endpoint) Get(ctx context.Context) (string, error) {
	return GetAs(ctx, e, AsString)
}

// Post sends a POST request with the pending body and returns the response
// body as text. The status code is not checked.
func (e *Endpoint) Post(ctx context.Context) (string, error) {
	return PostAs(ctx, e, AsString)
}

// GetAs sends a GET request and returns process(request, response).
//
// Example:
//
//	user, err := http.GetAs(ctx, client.CreateEndpoint("user/").Combine("alice"),
//	    http.AsJSON[User]())
func GetAs[T any](ctx context.Context, e *Endpoint, process ProcessFunc[T]) (T, error) {
	return sendAs(ctx, e, http.MethodGet, process)
}

// PostAs sends a POST request with the pending body and returns
// process(request, response).
func PostAs[T any](ctx context.Context, e *Endpoint, process ProcessFunc[T]) (T, error) {
	return sendAs(ctx, e, http.MethodPost, process)
}

func sendAs[T any](ctx context.Context, e *Endpoint, method string, process ProcessFunc[T]) (T, error) {
	var zero T

	req, resp, err := e.send(ctx, method)
	if err != nil {
		return zero, err
	}
	return process(req, resp)
}

// buildRequest assembles the request for method. Only POST carries the
// pending body. Pending content headers need a body to describe, so an empty
// string body is used when none is set.
func (e *Endpoint) buildRequest(ctx context.Context, method string) (*http.Request, error) {
	var body requestBody
	if method != http.MethodGet {
		body = e.body
	}
	if body == nil && e.contentHeaders.len() > 0 {
		body, _ = newStringBody("", nil)
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = body.reader()
	}

	req, err := http.NewRequestWithContext(ctx, method, e.url.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	bodyKeys := make(map[string]bool)
	if body != nil {
		contentHeader := body.header()
		// Client defaults for content headers describe the body too, but the
		// endpoint's own content headers win
		for _, h := range e.defaults {
			if IsContentHeader(h.name) && h.name != "Content-Length" {
				contentHeader.Del(h.name)
				contentHeader[h.name] = []string{h.value}
			}
		}
		e.contentHeaders.each(func(name, value string) {
			// Replace whatever the body populated for this name
			contentHeader.Del(name)
			contentHeader[name] = []string{value}
		})
		for name, values := range contentHeader {
			if http.CanonicalHeaderKey(name) == "Content-Length" {
				n, err := strconv.ParseInt(values[0], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: Content-Length %q", ErrInvalidHeader, values[0])
				}
				req.ContentLength = n
				continue
			}
			req.Header[name] = values
			bodyKeys[name] = true
		}
	}

	// Transport headers are written as given, without canonicalising. A
	// transport header that matches a body header in another letter case
	// replaces it.
	e.headers.each(func(name, value string) {
		if strings.EqualFold(name, "Host") {
			req.Host = value
			return
		}
		for key := range bodyKeys {
			if key != name && strings.EqualFold(key, name) {
				delete(req.Header, key)
				delete(bodyKeys, key)
			}
		}
		req.Header[name] = append(req.Header[name], value)
	})

	// Client defaults only fill in names the request does not carry yet
	for _, h := range e.defaults {
		if hasHeader(req.Header, h.name) {
			continue
		}
		req.Header[h.name] = []string{h.value}
	}

	return req, nil
}

// send assembles and sends a request, reads the whole response body and
// records the timing of each phase. Transport errors are returned unchanged.
func (e *Endpoint) send(ctx context.Context, method string) (*http.Request, *Response, error) {
	if e.err != nil {
		return nil, nil, e.err
	}

	req, err := e.buildRequest(ctx, method)
	if err != nil {
		return nil, nil, err
	}

	timing := TimingInfo{
		StartTime: time.Now(),
	}

	var dnsStart, connectStart, tlsHandshakeStart time.Time
	lastPhaseEnd := timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			lastPhaseEnd = time.Now()
			timing.DNSLookupTime = lastPhaseEnd.Sub(dnsStart)
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TCPConnectTime = lastPhaseEnd.Sub(connectStart)
			}
		},
		TLSHandshakeStart: func() {
			tlsHandshakeStart = time.Now()
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TLSHandshakeTime = lastPhaseEnd.Sub(tlsHandshakeStart)
			}
		},
		GotFirstResponseByte: func() {
			// Measured from the end of the last connection phase
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	httpResp, err := e.httpClient.Do(req)
	if err != nil {
		return req, nil, err
	}
	defer httpResp.Body.Close()

	transferStart := time.Now()
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return req, nil, err
	}
	timing.ContentTransferTime = time.Since(transferStart)
	timing.TotalTime = time.Since(timing.StartTime)

	httpResp.Body = io.NopCloser(bytes.NewReader(data))

	return req, &Response{
		Response: httpResp,
		Timing:   timing,
		body:     data,
	}, nil
}

// hasHeader reports whether h carries name in any letter case.
func hasHeader(h http.Header, name string) bool {
	for key, values := range h {
		if len(values) > 0 && strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}
