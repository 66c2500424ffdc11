package textreport

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Supported legacy encodings
const (
	EncodingLatin1      = "latin1"
	EncodingWindows1252 = "windows1252"
)

// LookupEncoding maps a configured encoding name to a decoder
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "")) {
	case "", "latin1", "iso88591":
		return charmap.ISO8859_1, nil
	case "windows1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns raw file bytes into text. A leading UTF-8 byte order mark is
// dropped. Valid UTF-8 is returned as is; anything else is decoded from the
// named single-byte encoding, with undecodable bytes replaced by U+FFFD.
// Decode never fails: an unknown encoding name falls back to latin1.
func Decode(raw []byte, name string) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw)
	}

	enc, err := LookupEncoding(name)
	if err != nil {
		enc = charmap.ISO8859_1
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	return string(out)
}

// Lines splits text into lines, tolerating CRLF endings
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
