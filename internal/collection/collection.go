// Package collection exposes the files of a file system as a sequence of
// document nodes.
package collection

import (
	"archive/zip"
	"bytes"
	"cmp"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	xdmerrors "github.com/jacoelho/xdm/errors"
	"github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/builder"
	"github.com/jacoelho/xdm/internal/event"
	"github.com/jacoelho/xdm/internal/seq"
	"github.com/jacoelho/xdm/internal/textlines"
	"github.com/jacoelho/xdm/internal/tree"
	"github.com/jacoelho/xdm/internal/xmlsource"
)

// DefaultXMLExtensions are the file extensions parsed as XML.
var DefaultXMLExtensions = []string{".xml", ".xsd", ".xsl", ".xslt", ".xhtml", ".svg"}

// Options configures a collection.
type Options struct {
	// Pattern selects entries with path.Match syntax. Empty selects every
	// file of the root directory.
	Pattern string
	// BaseURI prefixes entry names to form document system IDs.
	BaseURI string
	// XMLExtensions overrides DefaultXMLExtensions.
	XMLExtensions []string
	// Encoding is the encoding label of non-XML entries.
	Encoding string
	// KeepBlank keeps entries holding only whitespace.
	KeepBlank bool
	// Build and Parse configure the documents built from entries. The
	// system ID of each document is derived from its entry name.
	Build builder.Options
	Parse xmlsource.Options
	// Logger receives one debug record per document built. Nil discards.
	Logger *slog.Logger
}

type entry struct {
	name string
	dir  bool
	data []byte
}

// Open returns the documents for the entries of fsys matching
// opts.Pattern, in lexical name order. XML entries are parsed; other
// entries become a document holding one text node. Directories and, unless
// KeepBlank is set, whitespace-only entries are skipped. Another lists the
// entries again.
func Open(fsys fs.FS, opts Options) seq.Iterator[tree.Node] {
	c := &collection{fsys: fsys, opts: opts}
	if c.opts.Logger == nil {
		c.opts.Logger = slog.New(slog.DiscardHandler)
	}
	if len(c.opts.XMLExtensions) == 0 {
		c.opts.XMLExtensions = DefaultXMLExtensions
	}
	return seq.Wrap(c.open, c.document, c.ignorable)
}

// OpenZip is Open over the entries of a zip archive.
func OpenZip(r io.ReaderAt, size int64, opts Options) (seq.Iterator[tree.Node], error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, xdmerrors.Wrap(xdmerrors.ErrIO, err, "open zip archive")
	}
	return Open(zr, opts), nil
}

type collection struct {
	fsys fs.FS
	opts Options
}

func (c *collection) open() (seq.Source[entry], error) {
	pattern := cmp.Or(c.opts.Pattern, "*")
	matches, err := fs.Glob(c.fsys, pattern)
	if err != nil {
		return nil, xdmerrors.Wrap(xdmerrors.ErrIO, err, fmt.Sprintf("list collection %q", pattern))
	}
	slices.Sort(matches)
	return &entrySource{fsys: c.fsys, names: matches}, nil
}

func (c *collection) ignorable(e entry) bool {
	return e.dir || (!c.opts.KeepBlank && atomic.IsAllWhitespace(string(e.data)))
}

func (c *collection) isXML(name string) bool {
	return slices.Contains(c.opts.XMLExtensions, strings.ToLower(path.Ext(name)))
}

func (c *collection) document(e entry) (tree.Node, error) {
	systemID := c.opts.BaseURI + e.name
	bopts := c.opts.Build
	bopts.SystemID = systemID
	b := builder.New(bopts)

	var err error
	kind := "text"
	if c.isXML(e.name) {
		kind = "xml"
		popts := c.opts.Parse
		popts.SystemID = systemID
		err = xmlsource.Parse(bytes.NewReader(e.data), b, popts)
	} else {
		err = c.textDocument(b, e, systemID)
	}
	if err != nil {
		return tree.Node{}, err
	}
	t, err := b.Result()
	if err != nil {
		return tree.Node{}, err
	}
	c.opts.Logger.Debug("collection document",
		slog.String("entry", e.name),
		slog.String("kind", kind),
		slog.Int("nodes", t.Len()))
	return t.Document(), nil
}

// textDocument builds a document whose only child is the entry text, with
// line endings normalized to LF.
func (c *collection) textDocument(b *builder.Builder, e entry, systemID string) error {
	open := func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(e.data)), nil
	}
	lines, err := seq.Collect(textlines.Lines(open, textlines.Options{Resource: systemID, Encoding: c.opts.Encoding}))
	if err != nil {
		return err
	}
	text := strings.Join(lines, "\n")
	if bytes.HasSuffix(e.data, []byte("\n")) || bytes.HasSuffix(e.data, []byte("\r")) {
		text += "\n"
	}
	if err := b.StartDocument(0); err != nil {
		return err
	}
	if text != "" {
		if err := b.Characters(text, event.Location{SystemID: systemID}, event.WholeTextNode); err != nil {
			return err
		}
	}
	if err := b.EndDocument(); err != nil {
		return err
	}
	return b.Close()
}

type entrySource struct {
	fsys  fs.FS
	names []string
	err   error
}

func (s *entrySource) Next() (entry, bool) {
	if s.err != nil || len(s.names) == 0 {
		return entry{}, false
	}
	name := s.names[0]
	s.names = s.names[1:]
	info, err := fs.Stat(s.fsys, name)
	if err != nil {
		s.err = xdmerrors.Wrap(xdmerrors.ErrIO, err, fmt.Sprintf("stat %s", name))
		return entry{}, false
	}
	if info.IsDir() {
		return entry{name: name, dir: true}, true
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		s.err = xdmerrors.Wrap(xdmerrors.ErrIO, err, fmt.Sprintf("read %s", name))
		return entry{}, false
	}
	return entry{name: name, data: data}, true
}

func (s *entrySource) Err() error   { return s.err }
func (s *entrySource) Close() error { return nil }
