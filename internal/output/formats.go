package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	bonkers "github.com/wesleyorama2/bonkers/http"
	"github.com/wesleyorama2/bonkers/internal/latency"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs one JSON document per item
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs one YAML document per item
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use text, json or yaml)", s)
	}
}

// RequestData represents the structured data of an HTTP request
type RequestData struct {
	Method    string              `json:"method" yaml:"method"`
	URL       string              `json:"url" yaml:"url"`
	Headers   map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      interface{}         `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string              `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for an HTTP request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs" yaml:"dnsLookupMs"`
	TCPConnection   int64 `json:"tcpConnectionMs" yaml:"tcpConnectionMs"`
	TLSHandshake    int64 `json:"tlsHandshakeMs" yaml:"tlsHandshakeMs"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs" yaml:"timeToFirstByteMs"`
	ContentTransfer int64 `json:"contentTransferMs" yaml:"contentTransferMs"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of an HTTP response
type ResponseData struct {
	StatusCode int                 `json:"statusCode" yaml:"statusCode"`
	Status     string              `json:"status" yaml:"status"`
	Headers    map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       interface{}         `json:"body,omitempty" yaml:"body,omitempty"`
	Timing     *TimingData         `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp  string              `json:"timestamp" yaml:"timestamp"`
}

// LatencyData represents a latency summary in milliseconds
type LatencyData struct {
	Requests int64   `json:"requests" yaml:"requests"`
	Errors   int64   `json:"errors" yaml:"errors"`
	Min      float64 `json:"minMs" yaml:"minMs"`
	Mean     float64 `json:"meanMs" yaml:"meanMs"`
	Max      float64 `json:"maxMs" yaml:"maxMs"`
	StdDev   float64 `json:"stdDevMs" yaml:"stdDevMs"`
	P50      float64 `json:"p50Ms" yaml:"p50Ms"`
	P90      float64 `json:"p90Ms" yaml:"p90Ms"`
	P95      float64 `json:"p95Ms" yaml:"p95Ms"`
	P99      float64 `json:"p99Ms" yaml:"p99Ms"`
}

// StructuredFormatter renders JSON or YAML documents.
type StructuredFormatter struct {
	Format  OutputFormat
	Verbose bool
}

// GetFormatter returns the formatter for format.
func GetFormatter(format OutputFormat, verbose, noColor bool) Formatter {
	switch format {
	case FormatJSON, FormatYAML:
		return &StructuredFormatter{Format: format, Verbose: verbose}
	default:
		return NewTextFormatter(verbose, noColor)
	}
}

// FormatRequest formats a request as a JSON or YAML document
func (f *StructuredFormatter) FormatRequest(req *http.Request, body string) string {
	data := RequestData{
		Method:    req.Method,
		URL:       req.URL.String(),
		Headers:   req.Header,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if body != "" {
		data.Body = decodeBody(body)
	}
	return f.marshal(data)
}

// FormatResponse formats a response as a JSON or YAML document
func (f *StructuredFormatter) FormatResponse(resp *bonkers.Response) string {
	data := ResponseData{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if body := resp.Text(); body != "" {
		data.Body = decodeBody(body)
	}
	if f.Verbose {
		t := resp.Timing
		data.Timing = &TimingData{
			DNSLookup:       t.DNSLookupTime.Milliseconds(),
			TCPConnection:   t.TCPConnectTime.Milliseconds(),
			TLSHandshake:    t.TLSHandshakeTime.Milliseconds(),
			TimeToFirstByte: t.TimeToFirstByte.Milliseconds(),
			ContentTransfer: t.ContentTransferTime.Milliseconds(),
			Total:           t.TotalTime.Milliseconds(),
		}
	}
	return f.marshal(data)
}

// FormatLatency formats a latency summary as a JSON or YAML document
func (f *StructuredFormatter) FormatLatency(s latency.Summary) string {
	ms := func(d time.Duration) float64 {
		return float64(d) / float64(time.Millisecond)
	}
	return f.marshal(LatencyData{
		Requests: s.Count + s.Errors,
		Errors:   s.Errors,
		Min:      ms(s.Min),
		Mean:     ms(s.Mean),
		Max:      ms(s.Max),
		StdDev:   ms(s.StdDev),
		P50:      ms(s.P50),
		P90:      ms(s.P90),
		P95:      ms(s.P95),
		P99:      ms(s.P99),
	})
}

func (f *StructuredFormatter) marshal(v interface{}) string {
	if f.Format == FormatYAML {
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Sprintf("error: failed to marshal: %s\n", err)
		}
		return "---\n" + string(out)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal: %s"}`+"\n", err)
	}
	return buf.String()
}

// decodeBody returns JSON bodies as structured values and anything else as
// a string.
func decodeBody(body string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return body
	}
	return v
}
