package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies failures raised by the tree engine.
type ErrorCode string

const (
	// ErrProtocol indicates builder events arrived out of order.
	ErrProtocol ErrorCode = "tree-protocol"
	// ErrClosed indicates a node was appended after the tree was closed.
	ErrClosed ErrorCode = "tree-closed"
	// ErrDepth indicates the configured maximum nesting depth was exceeded.
	ErrDepth ErrorCode = "tree-depth"
	// ErrXMLParse indicates the XML input could not be parsed.
	ErrXMLParse ErrorCode = "xml-parse"
	// ErrIO indicates an underlying resource failed while being read.
	ErrIO ErrorCode = "io-error"
	// ErrTextResource indicates an unparsed text resource could not be opened.
	ErrTextResource ErrorCode = "XTDE1170"
	// ErrTextEncoding indicates an unknown text encoding, or text holding a
	// character not allowed in XML.
	ErrTextEncoding ErrorCode = "XTDE1190"
	// ErrTextMalformed indicates text input could not be decoded.
	ErrTextMalformed ErrorCode = "XTDE1200"
	// ErrOptionInvalid indicates an option value is out of range.
	ErrOptionInvalid ErrorCode = "option-invalid"
)

// Error is the single error type surfaced by the engine. Resource, Line and
// Column are optional context used in diagnostics.
type Error struct {
	Err      error
	Code     ErrorCode
	Message  string
	Resource string
	Line     int
	Column   int
}

// Error formats the error with its code and any location context.
func (e *Error) Error() string {
	if e == nil {
		return "error <nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Resource != "" {
		fmt.Fprintf(&b, " in %s", e.Resource)
	}
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&b, " at line %d", e.Line)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an Error with a code and message.
func New(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf formats a message and builds an Error.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to an underlying cause.
// A cause that is already an *Error is returned unchanged.
func Wrap(code ErrorCode, err error, msg string) error {
	if err == nil {
		return nil
	}
	if existing, ok := AsError(err); ok {
		return existing
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// WithResource returns a copy of e naming the resource involved.
func (e *Error) WithResource(resource string) *Error {
	if e == nil {
		return nil
	}
	out := *e
	out.Resource = resource
	return &out
}

// WithPosition returns a copy of e carrying a line and column.
func (e *Error) WithPosition(line, column int) *Error {
	if e == nil {
		return nil
	}
	out := *e
	out.Line = line
	out.Column = column
	return &out
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

// HasCode reports whether err's chain carries an *Error with code.
func HasCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}
