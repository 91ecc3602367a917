// Package plistsrc decodes compiled .strings resources (property lists) into a
// stringsconv.Table.
package plistsrc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"howett.net/plist"

	"github.com/loopcontext/stringsconv"
	"github.com/loopcontext/stringsconv/internal/atomicfile"
)

//go:generate mockgen -source=$GOFILE -package mock_plistsrc -destination=../../test/mock/$GOFILE

// ErrNotStringTable is returned when a property list is not a dictionary of strings.
var ErrNotStringTable = errors.New("property list is not a string table")

// Decoder reads a .strings resource from disk.
type Decoder interface {
	Decode(ctx context.Context, path string) (stringsconv.Table, error)
}

// PlistDecoder decodes binary, XML, OpenStep and GNUStep property lists in process.
type PlistDecoder struct{}

func NewPlistDecoder() *PlistDecoder {
	return &PlistDecoder{}
}

func (PlistDecoder) Decode(ctx context.Context, path string) (stringsconv.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	table, _, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return table, nil
}

// Unmarshal decodes a property list and returns it with its detected format name
// as reported by plist.FormatNames ("Binary", "XML", "OpenStep", "GNUStep").
func Unmarshal(data []byte) (stringsconv.Table, string, error) {
	var root interface{}
	format, err := plist.Unmarshal(data, &root)
	if err != nil {
		return nil, "", err
	}
	dict, ok := root.(map[string]interface{})
	if !ok {
		return nil, "", fmt.Errorf("%w: root is %T", ErrNotStringTable, root)
	}
	table := make(stringsconv.Table, len(dict))
	for key, value := range dict {
		s, ok := value.(string)
		if !ok {
			return nil, "", fmt.Errorf("%w: key %q holds %T", ErrNotStringTable, key, value)
		}
		table[key] = s
	}
	return table, plist.FormatNames[format], nil
}

// Marshal encodes a table as a property list. format is one of the plist package
// format constants, e.g. plist.BinaryFormat.
func Marshal(table stringsconv.Table, format int) ([]byte, error) {
	return plist.Marshal(map[string]string(table), format)
}

// CommandRunner runs an external program and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// PlutilDecoder converts a private copy of the resource to XML with Apple's plutil
// before decoding it. The original file is never modified.
type PlutilDecoder struct {
	bin string
	run CommandRunner
}

func NewPlutilDecoder(bin string) *PlutilDecoder {
	if bin == "" {
		bin = "plutil"
	}
	return &PlutilDecoder{bin: bin, run: execRunner}
}

// WithRunner replaces the process runner. Used by tests on hosts without plutil.
func (d *PlutilDecoder) WithRunner(run CommandRunner) *PlutilDecoder {
	d.run = run
	return d
}

func (d *PlutilDecoder) Decode(ctx context.Context, path string) (stringsconv.Table, error) {
	tmp := atomicfile.TempName(path, ".strings.plist")
	if err := atomicfile.CopyFile(path, tmp); err != nil {
		return nil, fmt.Errorf("copy %s: %w", path, err)
	}
	defer os.Remove(tmp)

	if out, err := d.run(ctx, d.bin, "-convert", "xml1", tmp); err != nil {
		return nil, fmt.Errorf("%s -convert xml1 %s: %w: %s", d.bin, tmp, err, out)
	}
	return PlistDecoder{}.Decode(ctx, tmp)
}
