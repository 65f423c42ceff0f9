package compose

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNotMapping is returned by [Load] when the document root is any node
	// other than a mapping.
	ErrNotMapping = errors.New("document root is not a mapping")

	// ErrEmpty is returned by [Load] for text with no document content, or
	// whose root is null. It matches [ErrNotMapping] under errors.Is.
	ErrEmpty = fmt.Errorf("%w: document is empty", ErrNotMapping)
)

// SyntaxError reports text that could not be deserialized.
type SyntaxError struct {
	Line int    // 1-based source line, 0 when the decoder did not report one
	Msg  string // decoder message without the "yaml:" prefix
	Err  error  // underlying decoder error, if any
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Unwrap returns the underlying decoder error.
func (e *SyntaxError) Unwrap() error { return e.Err }

var lineRe = regexp.MustCompile(`line (\d+): `)

// newSyntaxError converts a yaml.v3 error, lifting the line number out of
// messages of the form "yaml: line 3: mapping values are not allowed".
func newSyntaxError(err error) *SyntaxError {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	se := &SyntaxError{Msg: msg, Err: err}
	if m := lineRe.FindStringSubmatchIndex(msg); m != nil {
		se.Line, _ = strconv.Atoi(msg[m[2]:m[3]])
		se.Msg = msg[:m[0]] + msg[m[1]:]
	}
	return se
}
