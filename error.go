package stringsconv

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedLine = errors.New("malformed line")
	ErrMissingKey    = errors.New("string key not found in target")
)

// Error is a non-fatal merge diagnostic tied to a master line.
type Error interface {
	Error() string
	Unwrap() error
	Line() int   // 1-based line number in the master file
	Key() string // Empty for malformed lines.
	Text() string
}

type LineError struct {
	err  error
	line int
	key  string
	text string
}

func (le *LineError) Error() string {
	if le.key != "" {
		return fmt.Sprintf("line %d: %v: %s", le.line, le.err, le.key)
	}
	return fmt.Sprintf("line %d: %v: %s", le.line, le.err, le.text)
}

func (le *LineError) Unwrap() error {
	return le.err
}

func (le *LineError) Line() int {
	return le.line
}

func (le *LineError) Key() string {
	return le.key
}

func (le *LineError) Text() string {
	return le.text
}

func newLineError(err error, line int, key string, text string) error {
	return &LineError{err: err, line: line, key: key, text: text}
}
