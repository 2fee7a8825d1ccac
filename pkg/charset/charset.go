// Package charset resolves charset names and decodes source files to text.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Default is the charset used when none is given.
const Default = "UTF-8"

// ErrUnsupported indicates an unknown or unsupported charset name.
var ErrUnsupported = errors.New("unknown or unsupported charset")

// Charset is a resolved text encoding.
type Charset struct {
	Name     string
	Encoding encoding.Encoding
}

// Lookup resolves name through the IANA registry, falling back to the
// WHATWG index for common aliases such as "utf8" or "latin1".
// An empty name selects Default.
func Lookup(name string) (*Charset, error) {
	if strings.TrimSpace(name) == "" {
		name = Default
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(name)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
		}
	}

	return &Charset{Name: canonicalName(enc, name), Encoding: enc}, nil
}

// canonicalName prefers the MIME name ("ISO-8859-1"), then the IANA
// primary name, then the name as given.
func canonicalName(enc encoding.Encoding, name string) string {
	if n, err := ianaindex.MIME.Name(enc); err == nil && n != "" {
		return n
	}
	if n, err := ianaindex.IANA.Name(enc); err == nil && n != "" {
		return n
	}
	return name
}

// Decode converts raw file bytes into text. Line terminators ("\r\n", "\r"
// and "\n") are normalized to "\n" and every line, including the last,
// ends with "\n". Empty input decodes to an empty string.
func (c *Charset) Decode(data []byte) (string, error) {
	decoded, err := c.Encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", c.Name, err)
	}
	return normalizeLines(string(decoded)), nil
}

func normalizeLines(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
