// Package textenc reads plain-text .strings files, which Xcode projects commonly
// store as UTF-16 with a byte order mark, and hands them on as UTF-8.
package textenc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/loopcontext/stringsconv"
)

type Encoding string

const (
	// Auto honors a UTF-8 or UTF-16 byte order mark and otherwise passes bytes through.
	Auto    Encoding = "auto"
	UTF8    Encoding = "utf-8"
	UTF16   Encoding = "utf-16" // BOM required
	UTF16LE Encoding = "utf-16le"
	UTF16BE Encoding = "utf-16be"
)

// ParseEncoding normalizes an encoding name. Empty means Auto.
func ParseEncoding(name string) (Encoding, error) {
	switch e := Encoding(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")); e {
	case "":
		return Auto, nil
	case "utf8":
		return UTF8, nil
	case "utf16":
		return UTF16, nil
	case Auto, UTF8, UTF16, UTF16LE, UTF16BE:
		return e, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q (want auto, utf-8, utf-16, utf-16le or utf-16be)", name)
	}
}

func (e Encoding) transformer() transform.Transformer {
	switch e {
	case UTF8:
		return unicode.UTF8BOM.NewDecoder()
	case UTF16:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	default:
		return unicode.BOMOverride(transform.Nop)
	}
}

// NewReader wraps r so that it yields UTF-8.
func NewReader(r io.Reader, enc Encoding) io.Reader {
	return transform.NewReader(r, enc.transformer())
}

// Decode converts data to a UTF-8 string.
func Decode(data []byte, enc Encoding) (string, error) {
	out, _, err := transform.Bytes(enc.transformer(), data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}

// ReadLines reads a master file and splits it into lines, terminators kept.
func ReadLines(path string, enc Encoding) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := Decode(data, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stringsconv.SplitLines(text), nil
}
