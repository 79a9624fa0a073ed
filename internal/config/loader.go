package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a profile file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DefaultTimeout is used when a profile does not set one.
const DefaultTimeout = 30 * time.Second

// Profile describes an API: its base URL, the headers every request carries
// and named endpoints relative to the base URL.
type Profile struct {
	BaseURL      string                 `json:"baseUrl" yaml:"baseUrl" toml:"baseUrl"`
	Timeout      string                 `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	Headers      map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
	Endpoints    map[string]Endpoint    `json:"endpoints,omitempty" yaml:"endpoints,omitempty" toml:"endpoints,omitempty"`
	Environments map[string]Environment `json:"environments,omitempty" yaml:"environments,omitempty" toml:"environments,omitempty"`
}

// Endpoint is a named path relative to the profile's base URL.
type Endpoint struct {
	Path    string            `json:"path" yaml:"path" toml:"path"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
	Query   string            `json:"query,omitempty" yaml:"query,omitempty" toml:"query,omitempty"`
}

// Environment overrides the base URL and headers of a profile.
type Environment struct {
	BaseURL string            `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" toml:"baseUrl,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config file extension: %q", filepath.Ext(path))
	}
}

// LoadProfile reads, parses and validates a profile file.
func LoadProfile(path string) (*Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	profile, err := ParseProfile(data, format)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if errs := ValidateProfile(profile); len(errs) > 0 {
		return nil, Errors(errs)
	}

	return profile, nil
}

// ParseProfile decodes a profile without validating it.
func ParseProfile(data []byte, format Format) (*Profile, error) {
	var profile Profile

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&profile); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&profile); err != nil {
			return nil, err
		}
	case FormatTOML:
		meta, err := toml.Decode(string(data), &profile)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown field %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}

	return &profile, nil
}

// TimeoutDuration returns the parsed timeout, or DefaultTimeout when unset.
func (p *Profile) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return DefaultTimeout, nil
	}
	return time.ParseDuration(p.Timeout)
}

// ForEnvironment returns a copy of the profile with the named environment's
// base URL and headers applied. An empty name returns the profile as is.
func (p *Profile) ForEnvironment(name string) (*Profile, error) {
	if name == "" {
		return p, nil
	}

	env, ok := p.Environments[name]
	if !ok {
		return nil, fmt.Errorf("environment not found: %s", name)
	}

	merged := *p
	if env.BaseURL != "" {
		merged.BaseURL = env.BaseURL
	}
	merged.Headers = make(map[string]string, len(p.Headers)+len(env.Headers))
	for k, v := range p.Headers {
		merged.Headers[k] = v
	}
	for k, v := range env.Headers {
		merged.Headers[k] = v
	}
	return &merged, nil
}

// SortedKeys returns the keys of m in sorted order, so headers are applied
// in a stable order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
