package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/wesleyorama2/bonkers/pkg/querystring"
	"github.com/wesleyorama2/bonkers/pkg/uri"
)

// ValidationError represents a profile validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Errors joins several validation errors into one error.
type Errors []ValidationError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// ValidateProfile checks a profile and returns every problem found.
func ValidateProfile(p *Profile) []ValidationError {
	var errors []ValidationError

	if p.BaseURL == "" {
		errors = append(errors, ValidationError{
			Path:    "baseUrl",
			Message: "baseUrl is required",
		})
	} else if _, err := uri.Parse(p.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Path:    "baseUrl",
			Message: err.Error(),
		})
	}

	if p.Timeout != "" {
		if d, err := time.ParseDuration(p.Timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    "timeout",
				Message: fmt.Sprintf("invalid duration %q", p.Timeout),
			})
		} else if d <= 0 {
			errors = append(errors, ValidationError{
				Path:    "timeout",
				Message: "timeout must be positive",
			})
		}
	}

	errors = append(errors, validateHeaders("headers", p.Headers)...)

	for _, name := range sortedEndpointNames(p.Endpoints) {
		ep := p.Endpoints[name]
		path := fmt.Sprintf("endpoints.%s", name)

		if strings.TrimSpace(ep.Path) == "" {
			errors = append(errors, ValidationError{
				Path:    path + ".path",
				Message: "path is required",
			})
		}
		if ep.Query != "" {
			if _, err := querystring.Parse(ep.Query); err != nil {
				errors = append(errors, ValidationError{
					Path:    path + ".query",
					Message: err.Error(),
				})
			}
		}
		errors = append(errors, validateHeaders(path+".headers", ep.Headers)...)
	}

	for name, env := range p.Environments {
		path := fmt.Sprintf("environments.%s", name)
		if env.BaseURL != "" {
			if _, err := uri.Parse(env.BaseURL); err != nil {
				errors = append(errors, ValidationError{
					Path:    path + ".baseUrl",
					Message: err.Error(),
				})
			}
		}
		errors = append(errors, validateHeaders(path+".headers", env.Headers)...)
	}

	return errors
}

func validateHeaders(path string, headers map[string]string) []ValidationError {
	var errors []ValidationError
	for _, name := range SortedKeys(headers) {
		if name == "" || strings.ContainsAny(name, ": \t\r\n") {
			errors = append(errors, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("invalid header name %q", name),
			})
		}
	}
	return errors
}

func sortedEndpointNames(endpoints map[string]Endpoint) []string {
	names := make(map[string]string, len(endpoints))
	for name := range endpoints {
		names[name] = ""
	}
	return SortedKeys(names)
}
