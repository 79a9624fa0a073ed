package http

import (
	"fmt"
)

// contentHeaderNames lists the headers that describe the body itself. The
// match is case-sensitive.
var contentHeaderNames = map[string]struct{}{
	"Content-Type":     {},
	"Content-Language": {},
	"Content-Length":   {},
	"Content-Location": {},
	"Content-MD5":      {},
	"Content-Range":    {},
	"Allow":            {},
	"Expires":          {},
	"LastModified":     {},
}

// IsContentHeader reports whether name is routed to the content header set
// rather than the transport header set.
func IsContentHeader(name string) bool {
	_, ok := contentHeaderNames[name]
	return ok
}

// headerSet is an insertion-ordered name to value mapping that rejects
// repeated names.
type headerSet struct {
	names  []string
	values map[string]string
}

func newHeaderSet() *headerSet {
	return &headerSet{values: make(map[string]string)}
}

func (h *headerSet) add(name, value string) error {
	if _, ok := h.values[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateHeader, name)
	}
	h.names = append(h.names, name)
	h.values[name] = value
	return nil
}

func (h *headerSet) each(fn func(name, value string)) {
	for _, name := range h.names {
		fn(name, h.values[name])
	}
}

func (h *headerSet) len() int {
	return len(h.names)
}

func (h *headerSet) clone() *headerSet {
	c := &headerSet{
		names:  make([]string, len(h.names)),
		values: make(map[string]string, len(h.values)),
	}
	copy(c.names, h.names)
	for name, value := range h.values {
		c.values[name] = value
	}
	return c
}

func (h *headerSet) clear() {
	h.names = nil
	h.values = make(map[string]string)
}

func (h *headerSet) toMap() map[string]string {
	m := make(map[string]string, len(h.values))
	for name, value := range h.values {
		m[name] = value
	}
	return m
}
