package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/bonkers/pkg/querystring"
)

// capturedRequest is what the test server saw.
type capturedRequest struct {
	method        string
	path          string
	rawQuery      string
	host          string
	header        http.Header
	body          string
	contentLength int64
	chunked       bool
}

func newCaptureServer(t *testing.T, status int, responseBody string) (*httptest.Server, *capturedRequest, *int32) {
	t.Helper()

	captured := &capturedRequest{}
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		body, _ := io.ReadAll(r.Body)
		*captured = capturedRequest{
			method:        r.Method,
			path:          r.URL.Path,
			rawQuery:      r.URL.RawQuery,
			host:          r.Host,
			header:        r.Header.Clone(),
			body:          string(body),
			contentLength: r.ContentLength,
			chunked:       len(r.TransferEncoding) > 0 && r.TransferEncoding[0] == "chunked",
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(responseBody))
	}))
	t.Cleanup(server.Close)

	return server, captured, &hits
}

func newTestClient(t *testing.T, server *httptest.Server, options ...ClientOption) *Client {
	t.Helper()
	client, err := NewClient(server.URL+"/", options...)
	require.NoError(t, err)
	return client
}

func TestEndpoint_CombineScenario(t *testing.T) {
	client, err := NewClient("https://api.example.com/")
	require.NoError(t, err)

	user := client.CreateEndpoint("user/")
	alice := user.Combine("alice")

	assert.Equal(t, "https://api.example.com/user/", user.String())
	assert.Equal(t, "https://api.example.com/user/alice", alice.String())
}

func TestEndpoint_Get(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, `{"name":"alice"}`)
	client := newTestClient(t, server)

	body, err := client.CreateEndpoint("user/").Combine("alice").Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, `{"name":"alice"}`, body)
	assert.Equal(t, http.MethodGet, captured.method)
	assert.Equal(t, "/user/alice", captured.path)
	assert.Equal(t, "", captured.body)
}

func TestEndpoint_GetIgnoresPendingBody(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	_, err := client.CreateEndpoint("items").Body("payload").Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "", captured.body)
	assert.Equal(t, int64(0), captured.contentLength)
}

func TestEndpoint_GetDoesNotCheckStatus(t *testing.T) {
	server, _, _ := newCaptureServer(t, http.StatusInternalServerError, `{"error":"boom"}`)
	client := newTestClient(t, server)

	body, err := client.CreateEndpoint("fail").Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"error":"boom"}`, body)
}

func TestEndpoint_Params(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	e := client.CreateEndpoint("search").
		Params(querystring.New().Set("q", "cats").Set("limit", "10"))
	require.NoError(t, e.Err())
	assert.True(t, strings.HasSuffix(e.String(), "?q=cats&limit=10"), e.String())

	_, err := e.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "q=cats&limit=10", captured.rawQuery)
}

func TestEndpoint_ParamsEscapingAndExistingQuery(t *testing.T) {
	e := NewEndpoint(nil, "https://api.example.com/search?page=2#top").
		Params(querystring.New().Set("q", "a&b=c d"))
	require.NoError(t, e.Err())
	assert.Equal(t, "https://api.example.com/search?page=2&q=a%26b%3Dc+d#top", e.String())

	e = NewEndpoint(nil, "https://api.example.com/search").Params(querystring.New())
	assert.Equal(t, "https://api.example.com/search", e.String())

	e = NewEndpoint(nil, "https://api.example.com/search").Params(nil)
	assert.Equal(t, "https://api.example.com/search", e.String())
}

func TestEndpoint_CombineDoesNotMutate(t *testing.T) {
	original := NewEndpoint(nil, "https://api.example.com/v1/").
		Header("X-Api-Key", "secret").
		Header("Content-Type", "application/json").
		Body("{}")

	combined := original.Combine("users", "alice")

	assert.Equal(t, "https://api.example.com/v1/", original.String())
	assert.Equal(t, map[string]string{"X-Api-Key": "secret"}, original.Headers())
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, original.ContentHeaders())
	assert.True(t, original.HasBody())

	assert.Equal(t, "https://api.example.com/v1/users/alice", combined.String())
	assert.Empty(t, combined.Headers())
	assert.Empty(t, combined.ContentHeaders())
	assert.False(t, combined.HasBody())
	assert.NotSame(t, original, combined)
}

func TestEndpoint_CombineInvalidFragment(t *testing.T) {
	e := NewEndpoint(nil, "https://api.example.com/").Combine("%zz")
	assert.ErrorIs(t, e.Err(), ErrInvalidURL)

	_, err := e.Get(context.Background())
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestEndpoint_Duplicate(t *testing.T) {
	original := NewEndpoint(nil, "https://api.example.com/items").
		Header("Accept", "application/json").
		Header("Content-Type", "application/json").
		Body(`{"a":1}`)

	dup := original.Duplicate().Header("X-Variant", "b")

	assert.Equal(t, original.String(), dup.String())
	assert.True(t, dup.HasBody())
	assert.Equal(t, "application/json", dup.ContentHeaders()["Content-Type"])
	assert.Equal(t, "b", dup.Headers()["X-Variant"])
	assert.NotContains(t, original.Headers(), "X-Variant")

	dup.Reset()
	assert.True(t, original.HasBody())
	assert.Len(t, original.ContentHeaders(), 1)
}

func TestEndpoint_Reset(t *testing.T) {
	e := NewEndpoint(nil, "https://api.example.com/items").
		Header("X-Api-Key", "secret").
		Header("Content-Type", "application/json").
		Body(`{"a":1}`)

	same := e.Reset()

	assert.Same(t, e, same)
	assert.Equal(t, "https://api.example.com/items", e.String())
	assert.Equal(t, map[string]string{"X-Api-Key": "secret"}, e.Headers())
	assert.Empty(t, e.ContentHeaders())
	assert.False(t, e.HasBody())

	// The content header can be set again after a reset
	e.Header("Content-Type", "text/plain")
	assert.NoError(t, e.Err())
}

func TestEndpoint_DuplicateHeaderBlocksSending(t *testing.T) {
	server, _, hits := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	e := client.CreateEndpoint("items").
		Header("Content-Type", "application/json").
		Header("Content-Type", "text/plain")

	_, err := e.Post(context.Background())
	assert.ErrorIs(t, err, ErrDuplicateHeader)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestEndpoint_PostBody(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusCreated, `{"id":1}`)
	client := newTestClient(t, server)

	body, err := client.CreateEndpoint("items").
		Header("Content-Type", "application/json").
		Header("X-Request-Id", "abc").
		Body(`{"name":"widget"}`).
		Post(context.Background())
	require.NoError(t, err)

	assert.Equal(t, `{"id":1}`, body)
	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, `{"name":"widget"}`, captured.body)
	assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
	assert.Equal(t, []string{"application/json"}, captured.header.Values("Content-Type"))
	assert.Equal(t, "abc", captured.header.Get("X-Request-Id"))
	assert.Equal(t, int64(len(`{"name":"widget"}`)), captured.contentLength)
}

func TestEndpoint_PostDefaultContentType(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	_, err := client.CreateEndpoint("notes").Body("héllo").Post(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "text/plain; charset=utf-8", captured.header.Get("Content-Type"))
	assert.Equal(t, "héllo", captured.body)
}

func TestEndpoint_PostEncodedBody(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	enc, err := EncodingByName("windows-1252")
	require.NoError(t, err)

	_, err = client.CreateEndpoint("notes").BodyEncoded("café", enc).Post(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "text/plain; charset=windows-1252", captured.header.Get("Content-Type"))
	assert.Equal(t, "caf\xe9", captured.body)
	assert.Equal(t, int64(4), captured.contentLength)
}

func TestEndpoint_ContentHeadersWithoutBody(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	_, err := client.CreateEndpoint("items").
		Header("Content-Type", "application/json").
		Post(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "", captured.body)
	assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
}

func TestEndpoint_Stream(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	payload := strings.Repeat("0123456789", 1000)
	_, err := client.CreateEndpoint("upload").
		Header("Content-Type", "application/octet-stream").
		Stream(strings.NewReader(payload), 512).
		Post(context.Background())
	require.NoError(t, err)

	assert.Equal(t, payload, captured.body)
	assert.True(t, captured.chunked, "expected chunked transfer for a stream without length")
	assert.Equal(t, "application/octet-stream", captured.header.Get("Content-Type"))
}

func TestEndpoint_StreamWithContentLength(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	_, err := client.CreateEndpoint("upload").
		Header("Content-Length", "5").
		Stream(strings.NewReader("hello"), 0).
		Post(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "hello", captured.body)
	assert.Equal(t, int64(5), captured.contentLength)
	assert.False(t, captured.chunked)
}

func TestEndpoint_BodyReplacesStream(t *testing.T) {
	e := NewEndpoint(nil, "https://api.example.com/").
		Stream(strings.NewReader("stream"), 0).
		Body("text")

	_, ok := e.body.(*stringBody)
	assert.True(t, ok)
}

func TestEndpoint_TransportHeadersAsGiven(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	e := client.CreateEndpoint("items").
		Header("x-lowercase-name", "v1").
		Header("X-Weird-Value", "a,b;;c=").
		Header("Host", "virtual.example.com")

	req, err := e.buildRequest(context.Background(), http.MethodGet)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, req.Header["x-lowercase-name"])
	assert.Equal(t, "virtual.example.com", req.Host)

	_, err = e.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", captured.header.Get("X-Lowercase-Name"))
	assert.Equal(t, "a,b;;c=", captured.header.Get("X-Weird-Value"))
	assert.Equal(t, "virtual.example.com", captured.host)
}

func TestEndpoint_ContentHeaderReplacesBodyHeader(t *testing.T) {
	e := NewEndpoint(nil, "https://api.example.com/").
		Header("Content-Type", "application/xml").
		Header("Content-Language", "de").
		Body("<a/>")

	req, err := e.buildRequest(context.Background(), http.MethodPost)
	require.NoError(t, err)

	assert.Equal(t, []string{"application/xml"}, req.Header.Values("Content-Type"))
	assert.Equal(t, "de", req.Header.Get("Content-Language"))
	assert.Equal(t, int64(4), req.ContentLength)
}

func TestEndpoint_TransportHeaderReplacesBodyHeaderInOtherCase(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	e := client.CreateEndpoint("items").
		Header("content-type", "application/json").
		Body(`{"a":1}`)

	req, err := e.buildRequest(context.Background(), http.MethodPost)
	require.NoError(t, err)
	assert.Equal(t, []string{"application/json"}, req.Header["content-type"])
	assert.NotContains(t, req.Header, "Content-Type")

	_, err = e.Post(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"application/json"}, captured.header.Values("Content-Type"))
}

func TestEndpoint_InvalidContentLength(t *testing.T) {
	server, _, hits := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	for _, value := range []string{"five", "-1", ""} {
		e := client.CreateEndpoint("upload").
			Header("Content-Length", value).
			Stream(strings.NewReader("hello"), 0)

		assert.ErrorIs(t, e.Err(), ErrInvalidHeader, "Content-Length %q", value)
		_, err := e.Post(context.Background())
		assert.ErrorIs(t, err, ErrInvalidHeader)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestEndpoint_CombineColonSegment(t *testing.T) {
	server, captured, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	e := client.CreateEndpoint("user/").Combine("alice:bob")
	require.NoError(t, e.Err())

	_, err := e.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/user/alice:bob", captured.path)
}

func TestEndpoint_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server)
	server.Close()

	_, err := client.CreateEndpoint("items").Get(context.Background())
	require.Error(t, err)

	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr), "expected *url.Error, got %T", err)
}

func TestEndpoint_ContextCanceled(t *testing.T) {
	server, _, _ := newCaptureServer(t, http.StatusOK, "")
	client := newTestClient(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateEndpoint("items").Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEndpoint_InvalidURL(t *testing.T) {
	e := NewEndpoint(nil, "not a url")
	assert.ErrorIs(t, e.Err(), ErrInvalidURL)

	_, err := e.Post(context.Background())
	assert.ErrorIs(t, err, ErrInvalidURL)
}
