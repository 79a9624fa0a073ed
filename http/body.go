package http

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// requestBody is a pending request payload together with the content
// headers it populates on its own.
type requestBody interface {
	reader() io.Reader
	header() http.Header
}

// stringBody is a text payload already encoded into its character set.
type stringBody struct {
	data    []byte
	charset string
}

func newStringBody(content string, enc encoding.Encoding) (*stringBody, error) {
	if enc == nil {
		enc = unicode.UTF8
	}

	data, err := enc.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBodyEncoding, err)
	}

	charset, err := htmlindex.Name(enc)
	if err != nil {
		charset = ""
	}

	return &stringBody{data: data, charset: charset}, nil
}

func (b *stringBody) reader() io.Reader {
	return bytes.NewReader(b.data)
}

func (b *stringBody) header() http.Header {
	contentType := "text/plain"
	if b.charset != "" {
		contentType += "; charset=" + b.charset
	}
	return http.Header{
		"Content-Type":   {contentType},
		"Content-Length": {strconv.Itoa(len(b.data))},
	}
}

// streamBody reads its payload lazily from source.
type streamBody struct {
	source     io.Reader
	bufferSize int
}

func (b *streamBody) reader() io.Reader {
	if b.bufferSize <= 0 {
		return b.source
	}
	return bufio.NewReaderSize(b.source, b.bufferSize)
}

func (b *streamBody) header() http.Header {
	return http.Header{}
}

// EncodingByName looks up a character encoding by its WHATWG name or label,
// e.g. "utf-8", "iso-8859-1" or "shift_jis".
func EncodingByName(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown charset %q", ErrBodyEncoding, name)
	}
	return enc, nil
}
