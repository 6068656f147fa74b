package textcodec

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Attempt is the outcome of decoding with one candidate encoding.
type Attempt struct {
	Encoding string
	Text     string
	Err      error
}

// OK reports whether the candidate decoded cleanly.
func (a Attempt) OK() bool {
	return a.Err == nil
}

type candidate struct {
	name string
	enc  encoding.Encoding
}

// Decoder tries encodings in a fixed priority order. The first clean decode
// wins, so a given byte sequence always decodes the same way.
type Decoder struct {
	candidates []candidate
}

// NewDecoder resolves every name in priority up front. Aliases of an
// encoding already in the list are dropped.
func NewDecoder(priority []string) (*Decoder, error) {
	if len(priority) == 0 {
		return nil, fmt.Errorf("encoding priority list is empty")
	}
	d := &Decoder{}
	seen := make(map[string]bool)
	for _, name := range priority {
		canonical, enc, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		d.candidates = append(d.candidates, candidate{name: canonical, enc: enc})
	}
	return d, nil
}

// Priority returns the canonical encoding names in attempt order.
func (d *Decoder) Priority() []string {
	names := make([]string, len(d.candidates))
	for i, c := range d.candidates {
		names[i] = c.name
	}
	return names
}

// Decode returns the text and the name of the first encoding that decodes
// data without error.
func (d *Decoder) Decode(data []byte) (string, string, error) {
	tried := make([]string, 0, len(d.candidates))
	for _, c := range d.candidates {
		a := attempt(c, data)
		if a.OK() {
			return a.Text, a.Encoding, nil
		}
		tried = append(tried, c.name)
	}
	return "", "", failure.New(failure.DecodeFailed,
		"content is not valid in any supported encoding (%s)", strings.Join(tried, ", "))
}

// Attempts runs every candidate and reports each outcome, in priority order.
func (d *Decoder) Attempts(data []byte) []Attempt {
	out := make([]Attempt, 0, len(d.candidates))
	for _, c := range d.candidates {
		out = append(out, attempt(c, data))
	}
	return out
}

// The x/text decoders substitute U+FFFD for malformed input instead of
// failing, so a replacement rune in the output counts as a failed decode.
func attempt(c candidate, data []byte) Attempt {
	a := Attempt{Encoding: c.name}
	if c.name == UTF8 {
		if !utf8.Valid(data) {
			a.Err = fmt.Errorf("invalid %s byte sequence", c.name)
			return a
		}
		a.Text = string(data)
		return a
	}

	out, _, err := transform.Bytes(c.enc.NewDecoder(), data)
	if err != nil {
		a.Err = err
		return a
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		a.Err = fmt.Errorf("invalid %s byte sequence", c.name)
		return a
	}
	a.Text = string(out)
	return a
}
