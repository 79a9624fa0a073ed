package output

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	bonkers "github.com/wesleyorama2/bonkers/http"
	"github.com/wesleyorama2/bonkers/internal/latency"
)

// fetch returns a real response from a test server.
func fetch(t *testing.T, status int, body string) *bonkers.Response {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := bonkers.NewClient(server.URL)
	require.NoError(t, err)

	resp, err := bonkers.GetAs(context.Background(), client.CreateEndpoint("x"), bonkers.AsResponse)
	require.NoError(t, err)
	return resp
}

func testRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "https://api.example.com/user/alice?q=1", nil)
	require.NoError(t, err)
	req.Header.Set("X-Api-Key", "secret")
	return req
}

func TestTextFormatter_FormatRequest(t *testing.T) {
	f := NewTextFormatter(false, true)

	out := f.FormatRequest(testRequest(t), `{"name":"alice"}`)

	assert.Contains(t, out, "▶ REQUEST: POST https://api.example.com/user/alice?q=1")
	assert.Contains(t, out, "X-Api-Key: secret")
	assert.Contains(t, out, `"name": "alice"`)
}

func TestTextFormatter_FormatResponse(t *testing.T) {
	resp := fetch(t, http.StatusOK, `{"ok":true}`)

	out := NewTextFormatter(false, true).FormatResponse(resp)
	assert.Contains(t, out, "◀ RESPONSE: 200 OK")
	assert.Contains(t, out, `"ok": true`)
	assert.NotContains(t, out, "Timing:")

	verbose := NewTextFormatter(true, true).FormatResponse(resp)
	assert.Contains(t, verbose, "Timing:")
	assert.Contains(t, verbose, "Time to First Byte:")
	assert.Contains(t, verbose, "Content-Type: application/json")
}

func TestTextFormatter_FormatLatency(t *testing.T) {
	r := latency.NewRecorder()
	r.Record(10 * time.Millisecond)
	r.RecordError()

	out := NewTextFormatter(false, true).FormatLatency(r.Summary())
	assert.Contains(t, out, "LATENCY: 2 requests, 1 errors")
	assert.Contains(t, out, "p99")

	empty := NewTextFormatter(false, true).FormatLatency(latency.Summary{})
	assert.NotContains(t, empty, "p99")
}

func TestStructuredFormatter_JSON(t *testing.T) {
	f := GetFormatter(FormatJSON, true, false)

	var req RequestData
	require.NoError(t, json.Unmarshal([]byte(f.FormatRequest(testRequest(t), `{"a":1}`)), &req))
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://api.example.com/user/alice?q=1", req.URL)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, req.Body)

	var resp ResponseData
	require.NoError(t, json.Unmarshal([]byte(f.FormatResponse(fetch(t, http.StatusTeapot, "plain"))), &resp))
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "plain", resp.Body)
	assert.NotNil(t, resp.Timing)
}

func TestStructuredFormatter_YAML(t *testing.T) {
	f := GetFormatter(FormatYAML, false, false)

	out := f.FormatResponse(fetch(t, http.StatusOK, `{"items":[1,2]}`))
	require.True(t, strings.HasPrefix(out, "---\n"))

	var resp ResponseData
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, resp.Timing)

	var summary LatencyData
	require.NoError(t, yaml.Unmarshal([]byte(f.FormatLatency(latency.Summary{Count: 3})), &summary))
	assert.Equal(t, int64(3), summary.Requests)
}

func TestParseOutputFormat(t *testing.T) {
	for _, name := range []string{"text", "json", "yaml"} {
		f, err := ParseOutputFormat(name)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(name), f)
	}

	_, err := ParseOutputFormat("xml")
	assert.Error(t, err)
}

func TestNoColorScheme(t *testing.T) {
	scheme := NoColorScheme()
	assert.Equal(t, "GET", scheme.Method.Sprint("GET"))
	assert.Equal(t, "Error:", ErrorPrefix(true))
}
