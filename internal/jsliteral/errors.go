package jsliteral

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the marker or a balanced closing delimiter is missing.
	ErrNotFound = errors.New("jsliteral: no literal found")
	// ErrConversion is the sentinel every *ConversionError unwraps to.
	ErrConversion = errors.New("jsliteral: literal is not valid JSON after rewriting")
)

// snippetRadius is how much context a ConversionError keeps on each side.
const snippetRadius = 50

// ConversionError reports rewritten text that still fails strict JSON parsing.
type ConversionError struct {
	Offset  int64  // byte offset reported by the JSON parser
	Snippet string // up to snippetRadius bytes either side of Offset
	Text    string // full rewritten text
	Err     error  // underlying parse error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("jsliteral: invalid JSON at offset %d: %v (near %q)", e.Offset, e.Err, e.Snippet)
}

func (e *ConversionError) Unwrap() []error { return []error{ErrConversion, e.Err} }

func newConversionError(text string, offset int64, err error) *ConversionError {
	start := max(0, int(offset)-snippetRadius)
	end := min(len(text), int(offset)+snippetRadius)
	if start > end {
		start = end
	}
	return &ConversionError{
		Offset:  offset,
		Snippet: text[start:end],
		Text:    text,
		Err:     err,
	}
}
