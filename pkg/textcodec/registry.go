// Package textcodec decodes file content by trying a prioritized list of
// text encodings and encodes outgoing content into a single target encoding.
package textcodec

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// UTF8 is the canonical name of the default encoding.
const UTF8 = "utf-8"

type entry struct {
	name string
	enc  encoding.Encoding
}

// gb2312 and euc-cn resolve to gbk: the GBK table is a strict superset, so
// a priority list naming both is tried once.
var aliases = map[string]entry{
	"utf-8":        {UTF8, unicode.UTF8},
	"utf8":         {UTF8, unicode.UTF8},
	"gbk":          {"gbk", simplifiedchinese.GBK},
	"cp936":        {"gbk", simplifiedchinese.GBK},
	"gb2312":       {"gbk", simplifiedchinese.GBK},
	"euc-cn":       {"gbk", simplifiedchinese.GBK},
	"gb18030":      {"gb18030", simplifiedchinese.GB18030},
	"latin-1":      {"latin-1", charmap.ISO8859_1},
	"latin1":       {"latin-1", charmap.ISO8859_1},
	"iso-8859-1":   {"latin-1", charmap.ISO8859_1},
	"iso8859-1":    {"latin-1", charmap.ISO8859_1},
	"cp1252":       {"cp1252", charmap.Windows1252},
	"windows-1252": {"cp1252", charmap.Windows1252},
}

// Normalize lowercases an encoding name and folds underscores into dashes.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// Lookup resolves an encoding name to its canonical name and codec.
// Names outside the built-in table are resolved through the IANA registry.
func Lookup(name string) (string, encoding.Encoding, error) {
	key := Normalize(name)
	if key == "" {
		return "", nil, fmt.Errorf("empty encoding name")
	}
	if e, ok := aliases[key]; ok {
		return e.name, e.enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return "", nil, fmt.Errorf("unknown encoding: %s", name)
	}
	return key, enc, nil
}
