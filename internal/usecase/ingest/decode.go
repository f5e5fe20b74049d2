package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

type candidate struct {
	name string
	// wide encodings only apply to input that looks like one (BOM or NUL bytes)
	wide bool
	enc  encoding.Encoding
}

// candidates are tried in order; the first strict decode wins.
var candidates = []candidate{
	{name: "utf-8"},
	{name: "utf-16", wide: true, enc: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{name: "utf-32", wide: true, enc: utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)},
	{name: "windows-1251", enc: charmap.Windows1251},
	{name: "latin-1", enc: charmap.ISO8859_1},
}

var boms = [][]byte{
	{0xFF, 0xFE},
	{0xFE, 0xFF},
	{0x00, 0x00, 0xFE, 0xFF},
}

// DecodeText turns raw upload bytes into text and reports the encoding used.
// It never fails: undecodable input degrades to UTF-8 with U+FFFD substitutions.
// Byte order marks are removed wherever they appear.
func DecodeText(data []byte) (string, string) {
	for _, c := range candidates {
		if s, ok := c.decode(data); ok {
			return stripBOM(s), c.name
		}
	}
	return stripBOM(strings.ToValidUTF8(string(data), "\uFFFD")), "utf-8-replace"
}

// decode is strict: any substitution rejects the candidate. Valid UTF-8 is
// taken as is, NULs included; the other candidates also reject embedded NULs.
func (c candidate) decode(data []byte) (string, bool) {
	if c.enc == nil {
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}

	if c.wide && !looksWide(data) {
		return "", false
	}
	if c.name == "utf-16" && len(data)%2 != 0 {
		return "", false
	}
	if c.name == "utf-32" && len(data)%4 != 0 {
		return "", false
	}

	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return plausible(string(out))
}

func plausible(s string) (string, bool) {
	if strings.ContainsRune(s, 0) {
		return "", false
	}
	return s, true
}

func looksWide(data []byte) bool {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom) {
			return true
		}
	}
	return bytes.IndexByte(data, 0) >= 0
}

func stripBOM(s string) string {
	return strings.ReplaceAll(s, "\uFEFF", "")
}
