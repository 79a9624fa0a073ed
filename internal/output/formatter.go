package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	bonkers "github.com/wesleyorama2/bonkers/http"
	"github.com/wesleyorama2/bonkers/internal/latency"
)

// Formatter renders requests, responses and latency summaries.
type Formatter interface {
	FormatRequest(req *http.Request, body string) string
	FormatResponse(resp *bonkers.Response) string
	FormatLatency(summary latency.Summary) string
}

// TextFormatter renders human-readable, optionally colored text.
type TextFormatter struct {
	Verbose bool
	colors  *ColorScheme
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(verbose, noColor bool) *TextFormatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &TextFormatter{Verbose: verbose, colors: colors}
}

// FormatRequest formats a request for display. body is the request payload
// when it is known; streamed bodies are not shown.
func (f *TextFormatter) FormatRequest(req *http.Request, body string) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s\n",
		f.colors.Method.Sprint(req.Method),
		f.colors.URL.Sprint(req.URL.String()))

	if f.Verbose || len(req.Header) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedHeaderKeys(req.Header) {
			for _, value := range req.Header[key] {
				fmt.Fprintf(&buf, "    %s: %s\n", f.colors.HeaderKey.Sprint(key), value)
			}
		}
	}

	if body != "" {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats a response for display
func (f *TextFormatter) FormatResponse(resp *bonkers.Response) string {
	var buf strings.Builder

	statusColor := f.colors.StatusError
	if resp.IsSuccess() {
		statusColor = f.colors.StatusOK
	} else if resp.IsRedirect() {
		statusColor = f.colors.StatusWarn
	}

	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms)\n",
		statusColor.Sprint(resp.Status),
		resp.Timing.TotalTime.Milliseconds())

	if f.Verbose {
		t := resp.Timing
		buf.WriteString("  Timing:\n")
		fmt.Fprintf(&buf, "    DNS Lookup:         %dms\n", t.DNSLookupTime.Milliseconds())
		fmt.Fprintf(&buf, "    TCP Connection:     %dms\n", t.TCPConnectTime.Milliseconds())
		fmt.Fprintf(&buf, "    TLS Handshake:      %dms\n", t.TLSHandshakeTime.Milliseconds())
		fmt.Fprintf(&buf, "    Time to First Byte: %dms\n", t.TimeToFirstByte.Milliseconds())
		fmt.Fprintf(&buf, "    Content Transfer:   %dms\n", t.ContentTransferTime.Milliseconds())
		fmt.Fprintf(&buf, "    Total:              %dms\n", t.TotalTime.Milliseconds())

		buf.WriteString("  Headers:\n")
		for _, key := range sortedHeaderKeys(resp.Header) {
			for _, value := range resp.Header[key] {
				fmt.Fprintf(&buf, "    %s: %s\n", f.colors.HeaderKey.Sprint(key), value)
			}
		}
	}

	if body := resp.Text(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatLatency formats a latency summary for display
func (f *TextFormatter) FormatLatency(s latency.Summary) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "%s %d requests, %d errors\n", f.colors.Label.Sprint("LATENCY:"), s.Count+s.Errors, s.Errors)
	if s.Count == 0 {
		return buf.String()
	}
	fmt.Fprintf(&buf, "  min %v  mean %v  max %v  stddev %v\n", s.Min, s.Mean, s.Max, s.StdDev)
	fmt.Fprintf(&buf, "  p50 %v  p90 %v  p95 %v  p99 %v\n", s.P50, s.P90, s.P95, s.P99)
	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, []byte(s), "  ", "  "); err != nil {
		return s
	}
	return prettyJSON.String()
}

func sortedHeaderKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
