package textcodec

import (
	"unicode/utf8"

	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"github.com/saintfish/chardet"
	"golang.org/x/text/transform"
)

// Encode converts text into the named encoding. There is no fallback: content
// the target cannot represent is an error.
func Encode(text, name string) ([]byte, string, error) {
	if name == "" {
		name = UTF8
	}
	canonical, enc, err := Lookup(name)
	if err != nil {
		return nil, "", failure.Wrap(failure.InvalidArgument, err, "unsupported encoding %q", name)
	}

	if canonical == UTF8 {
		if !utf8.ValidString(text) {
			return nil, "", failure.New(failure.EncodeFailed, "content is not valid UTF-8")
		}
		return []byte(text), canonical, nil
	}

	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(text))
	if err != nil {
		return nil, "", failure.Wrap(failure.EncodeFailed, err, "content cannot be encoded as %s", canonical)
	}
	return out, canonical, nil
}

// Guess reports the most likely charset of sample. It is a hint for
// reports only and never decides how content is decoded.
func Guess(sample []byte) (string, int, bool) {
	if len(sample) == 0 {
		return "", 0, false
	}
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil {
		return "", 0, false
	}
	return result.Charset, result.Confidence, true
}
