// Package xdm builds compact read-only XML document trees and navigates
// them along the XPath axes.
//
// A tree stores every node as one record in a flat vector, in document
// order. Node handles are values naming a record, so navigation allocates
// nothing and a built tree is safe for concurrent readers.
package xdm

import (
	"fmt"
	"io"
	"io/fs"
	"iter"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jacoelho/xdm/internal/builder"
	"github.com/jacoelho/xdm/internal/collection"
	"github.com/jacoelho/xdm/internal/event"
	"github.com/jacoelho/xdm/internal/keys"
	"github.com/jacoelho/xdm/internal/names"
	"github.com/jacoelho/xdm/internal/seq"
	"github.com/jacoelho/xdm/internal/textlines"
	"github.com/jacoelho/xdm/internal/tree"
	"github.com/jacoelho/xdm/internal/xmlsource"
)

type (
	// Tree is a built document.
	Tree = tree.Tree
	// Node is a handle to a node of a tree.
	Node = tree.Node
	// Kind is a node kind.
	Kind = tree.Kind
	// Axis is an XPath axis.
	Axis = tree.Axis
	// NodeTest filters nodes on an axis.
	NodeTest = tree.NodeTest
	// NameTest matches nodes by kind and expanded name.
	NameTest = tree.NameTest
	// KindTest matches nodes by kind.
	KindTest = tree.KindTest
	// Iterator is a restartable pull sequence.
	Iterator[T any] = seq.Iterator[T]
	// Statistics presizes trees from the sizes of earlier ones.
	Statistics = tree.Statistics
	// NamePool interns expanded names.
	NamePool = names.Pool
	// Builder turns structural events into a tree.
	Builder = builder.Builder
	// Receiver consumes structural events.
	Receiver = event.Receiver
	// KeyDefinition declares a value index over a tree.
	KeyDefinition = keys.Definition
)

// Node kinds visible through Node.Kind.
const (
	DocumentNode              = tree.KindDocument
	ElementNode               = tree.KindElement
	AttributeNode             = tree.KindAttribute
	TextNode                  = tree.KindText
	CommentNode               = tree.KindComment
	ProcessingInstructionNode = tree.KindProcessingInstruction
	NamespaceNode             = tree.KindNamespace
)

// Axes.
const (
	Ancestor         = tree.AxisAncestor
	AncestorOrSelf   = tree.AxisAncestorOrSelf
	Attribute        = tree.AxisAttribute
	Child            = tree.AxisChild
	Descendant       = tree.AxisDescendant
	DescendantOrSelf = tree.AxisDescendantOrSelf
	Following        = tree.AxisFollowing
	FollowingSibling = tree.AxisFollowingSibling
	Namespace        = tree.AxisNamespace
	Parent           = tree.AxisParent
	Preceding        = tree.AxisPreceding
	PrecedingSibling = tree.AxisPrecedingSibling
	Self             = tree.AxisSelf
)

// NewNamePool returns an empty name pool.
func NewNamePool() *NamePool { return names.NewPool() }

// NewSystemID returns a fresh urn:uuid system ID.
func NewSystemID() string {
	return "urn:uuid:" + uuid.Must(uuid.NewV7()).String()
}

// NewBuilder returns a builder for one document. Feed it events, then call
// Result after Close.
func NewBuilder(opts BuildOptions) (*Builder, error) {
	bopts, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("build options: %w", err)
	}
	return builder.New(bopts), nil
}

// Parse reads one XML document from r.
func Parse(r io.Reader, opts ParseOptions) (*Tree, error) {
	bopts, popts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	b := builder.New(bopts)
	if err := xmlsource.Parse(r, b, popts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", popts.SystemID, err)
	}
	return b.Result()
}

// ParseString parses doc.
func ParseString(doc string, opts ParseOptions) (*Tree, error) {
	return Parse(strings.NewReader(doc), opts)
}

// ParseFS parses name from fsys. The system ID defaults to name.
func ParseFS(fsys fs.FS, name string, opts ParseOptions) (*Tree, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	defer f.Close()
	if opts.build.systemID == "" {
		opts.build.systemID = name
	}
	return Parse(f, opts)
}

// ParseFile parses the file at path. The system ID defaults to its file URL.
func ParseFile(path string, opts ParseOptions) (*Tree, error) {
	if opts.build.systemID == "" {
		opts.build.systemID = FileURI(path)
	}
	return ParseFS(os.DirFS(filepath.Dir(path)), filepath.Base(path), opts)
}

// FileURI returns the file URL of path, made absolute when possible.
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// Collection returns a document node for each entry of fsys matching
// pattern. XML entries are parsed; other entries become text documents.
func Collection(fsys fs.FS, pattern string, opts ParseOptions) (Iterator[Node], error) {
	bopts, popts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return collection.Open(fsys, collection.Options{
		Pattern: pattern,
		Build:   bopts,
		Parse:   popts,
		Logger:  bopts.Logger,
	}), nil
}

// UnparsedTextLines returns the lines of a text resource in fsys, decoded
// from encoding (empty means UTF-8).
func UnparsedTextLines(fsys fs.FS, name, encoding string) Iterator[string] {
	return textlines.Lines(textlines.FS(fsys, name), textlines.Options{Resource: name, Encoding: encoding})
}

// UnparsedTextAvailable reports whether UnparsedTextLines would succeed.
func UnparsedTextAvailable(fsys fs.FS, name, encoding string) bool {
	return textlines.Available(textlines.FS(fsys, name), textlines.Options{Resource: name, Encoding: encoding})
}

// ID returns the elements of t carrying an ID among the tokens of values,
// in document order.
func ID(t *Tree, values ...string) (Iterator[Node], error) {
	return keys.ID(t, seq.FromSlice(values))
}

// IDRef returns the ID references of t to any of the tokens of values.
func IDRef(t *Tree, values ...string) (Iterator[Node], error) {
	return keys.IDRef(t, seq.FromSlice(values))
}

// Key returns the nodes of t indexed by def under value.
func Key(t *Tree, def KeyDefinition, value string) Iterator[Node] {
	return keys.For(t, def).Lookup(value)
}

// All ranges over the items of it.
func All[T any](it Iterator[T]) iter.Seq[T] { return seq.All(it) }

// Collect drains it into a slice and closes it.
func Collect[T any](it Iterator[T]) ([]T, error) { return seq.Collect(it) }

// First returns the first item of it and closes it.
func First[T any](it Iterator[T]) (T, bool, error) { return seq.First(it) }

// Count returns the length of the sequence of it without consuming it.
func Count[T any](it Iterator[T]) (int, error) { return seq.Count(it) }

// ParseAxis resolves an axis from its XPath name.
func ParseAxis(name string) (Axis, bool) { return tree.ParseAxis(name) }

// ParseKind resolves a node kind from its kind-test spelling.
func ParseKind(name string) (Kind, bool) { return tree.ParseKind(name) }
