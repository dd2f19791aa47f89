package table

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported input encodings. Croatian bank exports are often still in a
// legacy Central European code page.
var encodings = map[string]encoding.Encoding{
	"":             xunicode.UTF8BOM,
	"utf-8":        xunicode.UTF8BOM,
	"utf8":         xunicode.UTF8BOM,
	"windows-1250": charmap.Windows1250,
	"cp1250":       charmap.Windows1250,
	"iso-8859-2":   charmap.ISO8859_2,
	"latin2":       charmap.ISO8859_2,
}

// DecodeReader wraps r so that it yields UTF-8 text. A UTF-8 BOM is dropped.
func DecodeReader(r io.Reader, name string) (io.Reader, error) {
	enc, ok := encodings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
