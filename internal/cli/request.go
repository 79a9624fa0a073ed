package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	bonkers "github.com/wesleyorama2/bonkers/http"
	"github.com/wesleyorama2/bonkers/internal/config"
	"github.com/wesleyorama2/bonkers/internal/latency"
	"github.com/wesleyorama2/bonkers/internal/output"
	"github.com/wesleyorama2/bonkers/pkg/jsonschema"
	"github.com/wesleyorama2/bonkers/pkg/querystring"
	"github.com/wesleyorama2/bonkers/pkg/uri"
)

// requestFlags holds the flags shared by get and post.
type requestFlags struct {
	base       string
	configPath string
	env        string
	headers    []string
	queries    []string
	data       string
	dataFile   string
	bufferSize int
	charset    string
	requestID  bool
	extract    string
	schemaPath string
	format     string
	verbose    bool
	noColor    bool
	timeout    time.Duration
	repeat     int
}

func addRequestFlags(cmd *cobra.Command, f *requestFlags, withBody bool) {
	flags := cmd.Flags()
	flags.StringVar(&f.base, "base", "", "Base API URL (overrides the profile)")
	flags.StringVarP(&f.configPath, "config", "c", "", "Profile file (.json, .yaml, .yml or .toml)")
	flags.StringVar(&f.env, "env", "", "Profile environment to use")
	flags.StringArrayVarP(&f.headers, "header", "H", []string{}, "HTTP headers to include (can be used multiple times)")
	flags.StringArrayVarP(&f.queries, "query", "q", []string{}, "Query string such as 'q=cats&limit=10' (can be used multiple times)")
	flags.BoolVar(&f.requestID, "request-id", false, "Send a random X-Request-Id header")
	flags.StringVarP(&f.extract, "extract", "e", "", "Print only the value at this JSONPath in the response")
	flags.StringVar(&f.schemaPath, "schema", "", "Validate the response body against this JSON Schema file")
	flags.StringVarP(&f.format, "output", "o", string(output.FormatText), "Output format: text, json or yaml")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	flags.DurationVarP(&f.timeout, "timeout", "t", config.DefaultTimeout, "Request timeout")
	flags.IntVarP(&f.repeat, "repeat", "n", 1, "Send the request this many times and print a latency summary")

	if withBody {
		flags.StringVarP(&f.data, "data", "d", "", "Request body")
		flags.StringVar(&f.dataFile, "data-file", "", "Stream the request body from a file, or - for stdin")
		flags.IntVar(&f.bufferSize, "buffer-size", 0, "Read buffer size for --data-file (0 uses the transport default)")
		flags.StringVar(&f.charset, "charset", "", "Character encoding of --data (default utf-8)")
	}
}

// exchange is one completed request/response pair.
type exchange struct {
	req  *http.Request
	resp *bonkers.Response
}

func runRequest(cmd *cobra.Command, method string, f *requestFlags, args []string) error {
	if f.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}
	if f.data != "" && f.dataFile != "" {
		return fmt.Errorf("--data and --data-file cannot be used together")
	}
	if f.dataFile != "" && f.repeat > 1 {
		return fmt.Errorf("--data-file can only be sent once; drop --repeat")
	}

	format, err := output.ParseOutputFormat(f.format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	formatter := output.GetFormatter(format, f.verbose, f.noColor || !isTerminal(out))

	profile, err := loadProfile(f)
	if err != nil {
		return err
	}

	client, args, err := newClient(cmd, f, profile, args)
	if err != nil {
		return err
	}

	endpoint, err := buildEndpoint(client, profile, args, f)
	if err != nil {
		return err
	}

	body, closeBody, err := attachBody(cmd, endpoint, f)
	if err != nil {
		return err
	}
	defer closeBody()

	process, err := buildProcess(f)
	if err != nil {
		return err
	}

	recorder := latency.NewRecorder()
	var first *exchange
	var firstErr error

	for i := 0; i < f.repeat; i++ {
		e := endpoint.Duplicate()
		if f.requestID {
			e.Header("X-Request-Id", uuid.NewString())
		}

		ex, err := send(cmd.Context(), method, e, process)
		if err != nil {
			recorder.RecordError()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		recorder.Record(ex.resp.Timing.TotalTime)
		if first == nil {
			first = ex
		}
	}

	if first != nil {
		if err := printExchange(out, formatter, first, body, f); err != nil {
			return err
		}
	}
	if f.repeat > 1 {
		fmt.Fprint(out, formatter.FormatLatency(recorder.Summary()))
	}

	return firstErr
}

func send(ctx context.Context, method string, e *bonkers.Endpoint, process bonkers.ProcessFunc[*exchange]) (*exchange, error) {
	if method == http.MethodPost {
		return bonkers.PostAs(ctx, e, process)
	}
	return bonkers.GetAs(ctx, e, process)
}

func printExchange(out io.Writer, formatter output.Formatter, ex *exchange, body string, f *requestFlags) error {
	if f.extract != "" {
		value, err := bonkers.ExtractJSONPath(f.extract)(ex.req, ex.resp)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, value)
		return nil
	}

	fmt.Fprint(out, formatter.FormatRequest(ex.req, body))
	fmt.Fprint(out, formatter.FormatResponse(ex.resp))
	return nil
}

func loadProfile(f *requestFlags) (*config.Profile, error) {
	if f.configPath == "" {
		if f.env != "" {
			return nil, fmt.Errorf("--env requires --config")
		}
		return nil, nil
	}

	profile, err := config.LoadProfile(f.configPath)
	if err != nil {
		return nil, err
	}
	return profile.ForEnvironment(f.env)
}

// newClient resolves the base URL from --base, the profile, or an absolute
// URL given as the first argument, and returns the remaining arguments.
func newClient(cmd *cobra.Command, f *requestFlags, profile *config.Profile, args []string) (*bonkers.Client, []string, error) {
	base := f.base
	if base == "" && profile != nil {
		base = profile.BaseURL
	}
	if base == "" && len(args) > 0 {
		if _, err := uri.Parse(args[0]); err == nil {
			base, args = args[0], args[1:]
		}
	}
	if base == "" {
		return nil, nil, fmt.Errorf("no base URL: pass --base, --config or an absolute URL")
	}

	timeout := f.timeout
	if profile != nil && !cmd.Flags().Changed("timeout") {
		d, err := profile.TimeoutDuration()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid profile timeout: %w", err)
		}
		timeout = d
	}

	options := []bonkers.ClientOption{bonkers.WithTimeout(timeout)}
	if profile != nil {
		for _, name := range config.SortedKeys(profile.Headers) {
			options = append(options, bonkers.WithHeader(name, profile.Headers[name]))
		}
	}

	client, err := bonkers.NewClient(base, options...)
	if err != nil {
		return nil, nil, err
	}
	return client, args, nil
}

// buildEndpoint creates the endpoint for args. The first argument is a
// profile endpoint name or a path; the rest are combined onto it.
func buildEndpoint(client *bonkers.Client, profile *config.Profile, args []string, f *requestFlags) (*bonkers.Endpoint, error) {
	var first string
	var rest []string
	if len(args) > 0 {
		first, rest = args[0], args[1:]
	}

	var named *config.Endpoint
	if profile != nil {
		if ep, ok := profile.Endpoints[first]; ok {
			named = &ep
			first = ep.Path
		}
	}

	e := client.CreateEndpoint(first)
	if len(rest) > 0 {
		e = e.Combine(rest...)
	}

	if named != nil {
		for _, name := range config.SortedKeys(named.Headers) {
			e.Header(name, named.Headers[name])
		}
		if named.Query != "" {
			qs, err := querystring.Parse(named.Query)
			if err != nil {
				return nil, err
			}
			e.Params(qs)
		}
	}

	for _, raw := range f.queries {
		qs, err := querystring.Parse(raw)
		if err != nil {
			return nil, err
		}
		e.Params(qs)
	}

	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q: expected 'Name: value'", h)
		}
		e.Header(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	return e, e.Err()
}

// attachBody sets the request body from --data or --data-file and returns
// the text to display for it.
func attachBody(cmd *cobra.Command, e *bonkers.Endpoint, f *requestFlags) (string, func(), error) {
	noop := func() {}

	switch {
	case f.dataFile == "-":
		e.Stream(cmd.InOrStdin(), f.bufferSize)
		return "", noop, nil
	case f.dataFile != "":
		file, err := os.Open(f.dataFile)
		if err != nil {
			return "", noop, fmt.Errorf("error opening data file: %w", err)
		}
		e.Stream(file, f.bufferSize)
		return "", func() { file.Close() }, nil
	case f.data != "":
		if f.charset != "" {
			enc, err := bonkers.EncodingByName(f.charset)
			if err != nil {
				return "", noop, err
			}
			e.BodyEncoded(f.data, enc)
		} else {
			e.Body(f.data)
		}
		return f.data, noop, e.Err()
	}

	return "", noop, nil
}

// buildProcess returns the ProcessFunc that validates the response against
// --schema when given.
func buildProcess(f *requestFlags) (bonkers.ProcessFunc[*exchange], error) {
	var process bonkers.ProcessFunc[*exchange] = func(req *http.Request, resp *bonkers.Response) (*exchange, error) {
		return &exchange{req: req, resp: resp}, nil
	}

	if f.schemaPath == "" {
		return process, nil
	}

	data, err := os.ReadFile(f.schemaPath)
	if err != nil {
		return nil, fmt.Errorf("error reading schema file: %w", err)
	}
	schema, err := jsonschema.Compile(data)
	if err != nil {
		return nil, err
	}
	return bonkers.ValidateJSONSchema(schema, process), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && output.IsTerminal(f)
}
