// Package textlines reads an external text resource as a sequence of lines.
package textlines

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	xdmerrors "github.com/jacoelho/xdm/errors"
	"github.com/jacoelho/xdm/internal/seq"
)

// Opener opens the resource. It is called once per pass over the lines.
type Opener func() (io.ReadCloser, error)

// Options configures line reading.
type Options struct {
	// Resource names the resource in errors.
	Resource string
	// Encoding is an encoding label such as "utf-8" or "iso-8859-1".
	// Empty means UTF-8, or UTF-16 when the input starts with a byte order
	// mark.
	Encoding string
}

// FS opens name in fsys.
func FS(fsys fs.FS, name string) Opener {
	return func() (io.ReadCloser, error) {
		return fsys.Open(name)
	}
}

// Lines returns the lines of the resource, without their terminators. LF,
// CR and CRLF all end a line; a terminator at the end of input does not
// start an empty last line. A leading byte order mark is dropped.
//
// Read failures end the sequence with an error carrying code XTDE1170,
// undecodable input XTDE1200, and unknown encodings or characters not
// allowed in XML XTDE1190. The resource is closed before the error is
// reported. Another reads the resource again from the start.
func Lines(open Opener, opts Options) seq.Iterator[string] {
	return seq.Wrap(func() (seq.Source[string], error) {
		src, err := openLines(open, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	}, func(s string) (string, error) {
		return s, nil
	}, nil)
}

// Available reports whether the resource can be read to the end as text.
func Available(open Opener, opts Options) bool {
	it := Lines(open, opts)
	defer it.Close()
	for {
		if _, ok := it.Next(); !ok {
			return it.Err() == nil
		}
	}
}

// utf8Decoder drops a leading byte order mark, switching to UTF-16 when the
// mark says so, and validates what follows as UTF-8.
func utf8Decoder() transform.Transformer {
	return transform.Chain(unicode.BOMOverride(transform.Nop), encoding.UTF8Validator)
}

func decoder(label string) (transform.Transformer, error) {
	if label == "" {
		return utf8Decoder(), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, err
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return utf8Decoder(), nil
	}
	return enc.NewDecoder(), nil
}

func openLines(open Opener, opts Options) (*lineSource, error) {
	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, xdmerrors.Newf(xdmerrors.ErrTextEncoding, "unknown encoding %q", opts.Encoding).WithResource(opts.Resource)
	}
	rc, err := open()
	if err != nil {
		return nil, &xdmerrors.Error{Code: xdmerrors.ErrTextResource, Message: "cannot open text resource", Resource: opts.Resource, Err: err}
	}
	src := &lineSource{rc: rc, in: &sourceReader{r: rc}, resource: opts.Resource}
	src.r = bufio.NewReader(transform.NewReader(src.in, dec))
	return src, nil
}

// sourceReader remembers the last read error of the raw resource, so that
// decoding failures can be told apart from I/O failures.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

type lineSource struct {
	rc       io.ReadCloser
	in       *sourceReader
	r        *bufio.Reader
	err      error
	resource string
	pending  []string
	line     int
	eof      bool
}

func (s *lineSource) Next() (string, bool) {
	for len(s.pending) == 0 {
		if s.eof || s.err != nil {
			return "", false
		}
		s.fill()
	}
	line := s.pending[0]
	s.pending = s.pending[1:]
	s.line++
	if s.line == 1 {
		line = strings.TrimPrefix(line, "\ufeff")
	}
	if col := invalidXMLChar(line); col > 0 {
		s.err = xdmerrors.Newf(xdmerrors.ErrTextEncoding, "text contains a character not allowed in XML").
			WithResource(s.resource).WithPosition(s.line, col)
		s.pending = nil
		return "", false
	}
	return line, true
}

// fill reads up to the next LF and splits the chunk on CR.
func (s *lineSource) fill() {
	chunk, err := s.r.ReadString('\n')
	if err != nil && err != io.EOF {
		s.fail(err)
		return
	}
	if err == io.EOF {
		s.eof = true
		if chunk == "" {
			return
		}
		parts := strings.Split(chunk, "\r")
		if parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
		s.pending = parts
		return
	}
	chunk = strings.TrimSuffix(chunk, "\n")
	chunk = strings.TrimSuffix(chunk, "\r")
	s.pending = strings.Split(chunk, "\r")
}

func (s *lineSource) fail(err error) {
	code, msg := xdmerrors.ErrTextMalformed, "text is not valid in its encoding"
	if s.in.err != nil && errors.Is(err, s.in.err) {
		code, msg = xdmerrors.ErrTextResource, "cannot read text resource"
	}
	s.err = &xdmerrors.Error{Code: code, Message: msg, Resource: s.resource, Line: s.line + 1, Err: err}
}

func (s *lineSource) Err() error { return s.err }

func (s *lineSource) Close() error { return s.rc.Close() }

// invalidXMLChar returns the 1-based column of the first character of line
// that XML does not allow, or 0.
func invalidXMLChar(line string) int {
	col := 0
	for _, r := range line {
		col++
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= utf8.MaxRune:
		default:
			return col
		}
	}
	return 0
}
