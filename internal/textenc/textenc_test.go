package textenc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sample = "/* Título */\n\"KEY\" = \"Añadir\";\n"

func encode(t *testing.T, tr transform.Transformer, s string) []byte {
	t.Helper()
	out, _, err := transform.Bytes(tr, []byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestDecode(t *testing.T) {
	utf16LEBOM := encode(t, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), sample)
	utf16BEBOM := encode(t, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder(), sample)
	utf16LENoBOM := encode(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder(), sample)

	tests := []struct {
		name string
		data []byte
		enc  Encoding
	}{
		{"auto_plain_utf8", []byte(sample), Auto},
		{"auto_utf8_bom", append([]byte("\xef\xbb\xbf"), sample...), Auto},
		{"auto_utf16le_bom", utf16LEBOM, Auto},
		{"auto_utf16be_bom", utf16BEBOM, Auto},
		{"utf8_strips_bom", append([]byte("\xef\xbb\xbf"), sample...), UTF8},
		{"utf16_with_bom", utf16BEBOM, UTF16},
		{"utf16le_without_bom", utf16LENoBOM, UTF16LE},
		{"utf16le_bom_wins", utf16BEBOM, UTF16LE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, tt.enc)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sample, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_utf16RequiresBOM(t *testing.T) {
	noBOM := encode(t, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder(), sample)
	if _, err := Decode(noBOM, UTF16); err == nil {
		t.Error("Decode(utf-16) without BOM should fail")
	}
}

func TestNewReader(t *testing.T) {
	data := encode(t, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), sample)
	var b strings.Builder
	buf := make([]byte, 7)
	r := NewReader(strings.NewReader(string(data)), Auto)
	for {
		n, err := r.Read(buf)
		b.Write(buf[:n])
		if err != nil {
			break
		}
	}
	if b.String() != sample {
		t.Errorf("NewReader() = %q, want %q", b.String(), sample)
	}
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.strings")
	data := encode(t, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), sample)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err := ReadLines(path, Auto)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/* Título */\n", "\"KEY\" = \"Añadir\";\n"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("ReadLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{"", Auto, false},
		{"auto", Auto, false},
		{"UTF-8", UTF8, false},
		{"utf8", UTF8, false},
		{"UTF_16LE", UTF16LE, false},
		{"utf16", UTF16, false},
		{" utf-16be ", UTF16BE, false},
		{"latin1", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEncoding(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEncoding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
