// Package querystring parses and encodes query strings while keeping the
// order in which keys were added.
package querystring

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrMalformedQuery is returned by Parse when a pair has no "=" separator.
var ErrMalformedQuery = errors.New("malformed query string")

// Values is an ordered mapping of query keys to single values.
// Values is not safe for concurrent use.
type Values struct {
	keys   []string
	values map[string]string
}

// New creates an empty Values.
func New() *Values {
	return &Values{values: make(map[string]string)}
}

// FromMap creates Values from a map. Keys are added in sorted order so the
// encoded form is deterministic.
func FromMap(m map[string]string) *Values {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	v := New()
	for _, key := range keys {
		v.Set(key, m[key])
	}
	return v
}

// Parse parses a query string of the form "a=b&c=d". A single leading "?" is
// ignored and blank input yields an empty Values. Only the first "=" of a pair
// separates the key from the value. Keys and values are percent-decoded.
// A repeated key keeps its first position and takes the last value.
func Parse(s string) (*Values, error) {
	v := New()

	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "?")
	if s == "" {
		return v, nil
	}

	for _, pair := range strings.Split(s, "&") {
		rawKey, rawValue, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: pair %q has no '='", ErrMalformedQuery, pair)
		}

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrMalformedQuery, rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q: %v", ErrMalformedQuery, rawValue, err)
		}

		v.Set(key, value)
	}

	return v, nil
}

// Set sets key to value. New keys are appended; existing keys keep their
// position.
// Returns the Values to allow method chaining.
func (v *Values) Set(key, value string) *Values {
	if _, ok := v.values[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.values[key] = value
	return v
}

// Get returns the value for key and whether it was present.
func (v *Values) Get(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	value, ok := v.values[key]
	return value, ok
}

// Has reports whether key is present.
func (v *Values) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Del removes key.
func (v *Values) Del(key string) {
	if _, ok := v.values[key]; !ok {
		return
	}
	delete(v.values, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (v *Values) Keys() []string {
	if v == nil {
		return nil
	}
	keys := make([]string, len(v.keys))
	copy(keys, v.keys)
	return keys
}

// Len returns the number of keys.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// Encode returns "k1=v1&k2=v2" in insertion order with keys and values
// percent-escaped.
func (v *Values) Encode() string {
	if v.Len() == 0 {
		return ""
	}

	var buf strings.Builder
	for i, key := range v.keys {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(key))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(v.values[key]))
	}
	return buf.String()
}

// String returns the encoded query with a leading "?", or "" when empty.
func (v *Values) String() string {
	if v.Len() == 0 {
		return ""
	}
	return "?" + v.Encode()
}
