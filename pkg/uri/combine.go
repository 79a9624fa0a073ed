// Package uri joins a base URL with relative path and query fragments.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a base is not an absolute URL or a fragment
// is not a valid URL reference.
var ErrInvalidURL = errors.New("invalid URL")

// Parse parses s and requires it to be an absolute URL with a host.
func Parse(s string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, s, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, s)
	}
	return u, nil
}

// Combine resolves each fragment against the result of the previous one.
//
// Path fragments are appended to the current path: the current path is
// treated as a directory and leading slashes of the fragment are dropped, so
// exactly one "/" separates the segments. Absolute URLs with a host replace
// the current URL. A fragment such as "alice:bob" that looks like a scheme
// but has no host is a path segment. Fragments starting with "?" or "#"
// resolve against the current URL as-is, and "." and ".." segments follow
// RFC 3986. Empty fragments are skipped. The base is never modified.
func Combine(base *url.URL, fragments ...string) (*url.URL, error) {
	if base == nil || !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("%w: base must be absolute", ErrInvalidURL)
	}

	result := clone(base)
	for _, fragment := range fragments {
		if fragment == "" {
			continue
		}

		ref, err := parseFragment(fragment)
		if err != nil {
			return nil, err
		}

		if ref.IsAbs() {
			result = ref
			continue
		}

		if ref.Path == "" {
			// Query or fragment only
			result = result.ResolveReference(ref)
			continue
		}

		dir := clone(result)
		if !strings.HasSuffix(dir.Path, "/") {
			dir.Path += "/"
			if dir.RawPath != "" {
				dir.RawPath += "/"
			}
		}
		result = dir.ResolveReference(ref)
	}

	return result, nil
}

// CombineString is Combine for string inputs.
func CombineString(base string, fragments ...string) (string, error) {
	u, err := Parse(base)
	if err != nil {
		return "", err
	}
	combined, err := Combine(u, fragments...)
	if err != nil {
		return "", err
	}
	return combined.String(), nil
}

// parseFragment parses a fragment as a URL reference. Leading slashes are
// trimmed from relative references so they append instead of replacing the
// path from the root.
func parseFragment(fragment string) (*url.URL, error) {
	ref, err := url.Parse(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: fragment %q: %v", ErrInvalidURL, fragment, err)
	}
	if ref.IsAbs() && ref.Host == "" {
		// "alice:bob" and "v1:beta" are path segments, not schemes
		ref, err = url.Parse("./" + fragment)
		if err != nil {
			return nil, fmt.Errorf("%w: fragment %q: %v", ErrInvalidURL, fragment, err)
		}
		return ref, nil
	}
	if ref.IsAbs() || !strings.HasPrefix(fragment, "/") {
		return ref, nil
	}

	ref, err = url.Parse(strings.TrimLeft(fragment, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: fragment %q: %v", ErrInvalidURL, fragment, err)
	}
	return ref, nil
}

func clone(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
