package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/bonkers/pkg/jsonpath"
	"github.com/wesleyorama2/bonkers/pkg/jsonschema"
)

// ProcessFunc turns the raw request and response of a terminal call into a
// result. The response body is already buffered; the status code has not
// been checked.
type ProcessFunc[T any] func(req *http.Request, resp *Response) (T, error)

// AsString returns the response body as text.
func AsString(_ *http.Request, resp *Response) (string, error) {
	return resp.Text(), nil
}

// AsBytes returns the response body.
func AsBytes(_ *http.Request, resp *Response) ([]byte, error) {
	return resp.Bytes(), nil
}

// AsResponse returns the response itself.
func AsResponse(_ *http.Request, resp *Response) (*Response, error) {
	return resp, nil
}

// AsJSON decodes the response body as JSON into a T.
func AsJSON[T any]() ProcessFunc[T] {
	return func(_ *http.Request, resp *Response) (T, error) {
		var v T
		if err := json.Unmarshal(resp.Bytes(), &v); err != nil {
			return v, fmt.Errorf("decoding JSON response: %w", err)
		}
		return v, nil
	}
}

// AsYAML decodes the response body as YAML into a T.
func AsYAML[T any]() ProcessFunc[T] {
	return func(_ *http.Request, resp *Response) (T, error) {
		var v T
		if err := yaml.Unmarshal(resp.Bytes(), &v); err != nil {
			return v, fmt.Errorf("decoding YAML response: %w", err)
		}
		return v, nil
	}
}

// ExtractJSONPath returns the value at a JSONPath expression such as
// "$.data[0].id" in a JSON response body.
func ExtractJSONPath(path string) ProcessFunc[string] {
	return func(_ *http.Request, resp *Response) (string, error) {
		return jsonpath.Extract(resp.Bytes(), path)
	}
}

// ValidateJSONSchema validates the response body against schema before
// handing it to next. Violations are returned as jsonschema.ValidationErrors.
func ValidateJSONSchema[T any](schema *jsonschema.Schema, next ProcessFunc[T]) ProcessFunc[T] {
	return func(req *http.Request, resp *Response) (T, error) {
		if err := schema.Validate(resp.Bytes()); err != nil {
			var zero T
			return zero, fmt.Errorf("response does not match schema: %w", err)
		}
		return next(req, resp)
	}
}

// RequireSuccess returns a *StatusError for responses outside the 2xx range
// and otherwise hands the response to next.
func RequireSuccess[T any](next ProcessFunc[T]) ProcessFunc[T] {
	return func(req *http.Request, resp *Response) (T, error) {
		if !resp.IsSuccess() {
			var zero T
			return zero, &StatusError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       resp.Text(),
			}
		}
		return next(req, resp)
	}
}
