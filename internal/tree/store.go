// Package tree stores a whole document as a vector of compact node records
// and exposes navigation, axis iteration and indexing over it.
//
// A Tree is built by appending records in document order (see package
// builder). Once Close has been called it is immutable, apart from the lazily
// built indexes, and safe for concurrent readers.
package tree

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	xdmatomic "github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/event"
	"github.com/jacoelho/xdm/internal/names"
)

// Link is the next field of a record: either the following sibling or, on
// the last sibling of a level, the owning parent.
type Link struct {
	target int32
	owner  bool
}

// NoLink is the link of the document node.
var NoLink = Link{target: -1}

// Sibling links to the following sibling nr.
func Sibling(nr int32) Link { return Link{target: nr} }

// Owner links the last sibling of a level to its parent nr.
func Owner(nr int32) Link { return Link{target: nr, owner: true} }

// Target returns the linked node number, or -1.
func (l Link) Target() int32 { return l.target }

// IsOwner reports whether l points to the parent.
func (l Link) IsOwner() bool { return l.owner }

// Valid reports whether l points anywhere.
func (l Link) Valid() bool { return l.target >= 0 }

func (l Link) String() string {
	switch {
	case !l.Valid():
		return "-"
	case l.owner:
		return fmt.Sprintf("^%d", l.target)
	default:
		return fmt.Sprintf("%d", l.target)
	}
}

type record struct {
	alpha int32
	beta  int32
	next  Link
	name  names.NameID
	depth int32
	kind  Kind
}

type attribute struct {
	value string
	owner int32
	name  names.NameID
	typ   xdmatomic.Type
	props event.Properties
}

type namespace struct {
	binding names.Binding
	owner   int32
}

type position struct {
	line   int32
	column int32
}

type systemIDEntry struct {
	uri string
	nr  int32
}

type nodeFlag uint8

const (
	flagID nodeFlag = 1 << iota
	flagIDRef
	flagNilled
)

// Entity is an unparsed entity declared by the document.
type Entity struct {
	SystemID string
	PublicID string
}

// Config controls a new tree. The zero value is usable.
type Config struct {
	// Pool resolves name codes. Trees that are compared or copied between
	// must share a pool. Nil allocates a private pool.
	Pool *names.Pool
	// Statistics presizes the tree and is updated on Close. May be nil.
	Statistics *Statistics
	// Numbers allocates document numbers. Nil uses a process-wide counter.
	Numbers *DocumentNumbers
	// Logger receives index diagnostics. Nil discards them.
	Logger *slog.Logger
	// LineNumbering keeps the line and column of every node.
	LineNumbering bool
}

// DocumentNumbers hands out document numbers used for ordering nodes of
// different trees and for generated identifiers.
type DocumentNumbers struct {
	n atomic.Int64
}

// Next returns a fresh document number.
func (d *DocumentNumbers) Next() int64 {
	return d.n.Add(1)
}

var defaultNumbers DocumentNumbers

// Tree is the record store of one document.
type Tree struct {
	pool   *names.Pool
	stats  *Statistics
	logger *slog.Logger

	records    []record
	attrs      []attribute
	namespaces []namespace
	chars      []byte
	comments   []byte

	types     []xdmatomic.Type
	flags     []nodeFlag
	positions []position
	systemIDs []systemIDEntry
	entities  map[string]Entity

	docNumber     int64
	lineNumbering bool
	imaginary     bool
	closed        bool

	ids      idIndex
	elements elementIndex
	prior    priorIndex

	userMu   sync.Mutex
	userData map[string]any
}

// New returns an empty tree holding only the implicit xml namespace binding.
func New(cfg Config) *Tree {
	pool := cfg.Pool
	if pool == nil {
		pool = names.NewPool()
	}
	numbers := cfg.Numbers
	if numbers == nil {
		numbers = &defaultNumbers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	est := cfg.Statistics.Estimate()
	t := &Tree{
		pool:          pool,
		stats:         cfg.Statistics,
		logger:        logger,
		records:       make([]record, 0, est.Nodes),
		attrs:         make([]attribute, 0, est.Attributes),
		namespaces:    make([]namespace, 0, max(est.Namespaces, 1)),
		chars:         make([]byte, 0, est.Characters),
		docNumber:     numbers.Next(),
		lineNumbering: cfg.LineNumbering,
	}
	t.namespaces = append(t.namespaces, namespace{binding: names.XMLBinding, owner: 0})
	return t
}

func (t *Tree) mustBeOpen(op string) {
	if t.closed {
		panic(fmt.Sprintf("tree: %s after Close", op))
	}
}

func (t *Tree) check(nr int32) {
	if nr < 0 || int(nr) >= len(t.records) {
		panic(fmt.Sprintf("tree: node number %d out of range [0,%d)", nr, len(t.records)))
	}
}

// AddNode appends a record and returns its node number. The record is
// unlinked until SetNext is called.
func (t *Tree) AddNode(kind Kind, depth, alpha, beta int32, name names.NameID) int32 {
	t.mustBeOpen("AddNode")
	if len(t.records) >= math.MaxInt32 {
		panic("tree: node number overflow")
	}
	nr := int32(len(t.records))
	t.records = append(t.records, record{
		kind:  kind,
		depth: depth,
		alpha: alpha,
		beta:  beta,
		name:  name,
		next:  NoLink,
	})
	if t.types != nil {
		t.types = append(t.types, xdmatomic.Untyped)
	}
	if t.flags != nil {
		t.flags = append(t.flags, 0)
	}
	if t.positions != nil {
		t.positions = append(t.positions, position{})
	}
	return nr
}

// SetNext sets the sibling-or-owner link of nr.
func (t *Tree) SetNext(nr int32, l Link) {
	t.check(nr)
	t.records[nr].next = l
}

// NextLink returns the sibling-or-owner link of nr.
func (t *Tree) NextLink(nr int32) Link {
	t.check(nr)
	return t.records[nr].next
}

// RecordKind returns the storage kind of record nr.
func (t *Tree) RecordKind(nr int32) Kind {
	t.check(nr)
	return t.records[nr].kind
}

// Depth returns the depth of record nr.
func (t *Tree) Depth(nr int32) int32 {
	t.check(nr)
	return t.records[nr].depth
}

// NameCode returns the name code of record nr.
func (t *Tree) NameCode(nr int32) names.NameID {
	t.check(nr)
	return t.records[nr].name
}

// Len returns the number of records, excluding the stopper.
func (t *Tree) Len() int {
	if n := len(t.records); n > 0 && t.records[n-1].kind == KindStopper {
		return n - 1
	}
	return len(t.records)
}

// NumberOfAttributes returns the number of stored attributes.
func (t *Tree) NumberOfAttributes() int { return len(t.attrs) }

// NumberOfNamespaces returns the number of stored namespace bindings,
// including the implicit xml binding.
func (t *Tree) NumberOfNamespaces() int { return len(t.namespaces) }

// Pool returns the name pool of t.
func (t *Tree) Pool() *names.Pool { return t.pool }

// Logger returns the logger index builders report to.
func (t *Tree) Logger() *slog.Logger { return t.logger }

// DocumentNumber identifies t among trees built in the same process.
func (t *Tree) DocumentNumber() int64 { return t.docNumber }

// Closed reports whether construction has finished.
func (t *Tree) Closed() bool { return t.closed }

// MarkImaginary records that node 0 was synthesized for a parentless element.
func (t *Tree) MarkImaginary() {
	t.mustBeOpen("MarkImaginary")
	t.imaginary = true
}

// Imaginary reports whether node 0 was synthesized.
func (t *Tree) Imaginary() bool { return t.imaginary }

// appendCharacters appends s to the character buffer and returns its offset.
func (t *Tree) appendCharacters(s string) int32 {
	off := len(t.chars)
	if off+len(s) > math.MaxInt32 {
		panic("tree: character buffer overflow")
	}
	t.chars = append(t.chars, s...)
	return int32(off)
}

func (t *Tree) appendComment(s string) int32 {
	off := len(t.comments)
	if off+len(s) > math.MaxInt32 {
		panic("tree: comment buffer overflow")
	}
	t.comments = append(t.comments, s...)
	return int32(off)
}

// TextMergeable reports whether text added at depth would extend the last
// record rather than create a new one.
func (t *Tree) TextMergeable(depth int32) bool {
	n := len(t.records)
	if n == 0 {
		return false
	}
	last := &t.records[n-1]
	return last.depth == depth && (last.kind == KindText || last.kind == KindWhitespaceText)
}

// AddText appends text at depth, merging it into the preceding record when
// that record is a text node at the same depth. merged reports whether an
// existing record was extended, in which case no new record needs linking.
// A whole text node made of up to MaxCompressedWhitespace whitespace
// characters is stored compressed when compress is set.
func (t *Tree) AddText(depth int32, text string, whole, compress bool) (nr int32, merged bool) {
	t.mustBeOpen("AddText")
	if n := len(t.records); n > 0 {
		last := &t.records[n-1]
		if last.depth == depth && last.kind == KindText {
			if int(last.alpha)+int(last.beta) == len(t.chars) {
				t.appendCharacters(text)
				last.beta += int32(len(text))
				return int32(n - 1), true
			}
			off := t.appendCharacters(t.textOf(int32(n-1)) + text)
			last.alpha, last.beta = off, int32(len(t.chars))-off
			return int32(n - 1), true
		}
		if last.depth == depth && last.kind == KindWhitespaceText {
			prev := decodeWhitespace(last.alpha, last.beta)
			off := t.appendCharacters(prev + text)
			last.kind = KindText
			last.alpha, last.beta = off, int32(len(t.chars))-off
			return int32(n - 1), true
		}
	}
	if compress && whole {
		if alpha, beta, ok := encodeWhitespace(text); ok {
			return t.AddNode(KindWhitespaceText, depth, alpha, beta, names.NoName), false
		}
	}
	off := t.appendCharacters(text)
	return t.AddNode(KindText, depth, off, int32(len(text)), names.NoName), false
}

// AddComment appends a comment record.
func (t *Tree) AddComment(depth int32, text string) int32 {
	t.mustBeOpen("AddComment")
	off := t.appendComment(text)
	return t.AddNode(KindComment, depth, off, int32(len(text)), names.NoName)
}

// AddProcessingInstruction appends a processing instruction record named by
// target and carrying data.
func (t *Tree) AddProcessingInstruction(depth int32, target names.NameID, data string) int32 {
	t.mustBeOpen("AddProcessingInstruction")
	off := t.appendComment(data)
	return t.AddNode(KindProcessingInstruction, depth, off, int32(len(data)), target)
}

// AddAttribute appends an attribute of element owner. Attributes of one
// element must be added contiguously, in document order.
func (t *Tree) AddAttribute(owner int32, name names.NameID, typ xdmatomic.Type, value string, props event.Properties) int32 {
	t.mustBeOpen("AddAttribute")
	t.check(owner)
	idx := int32(len(t.attrs))
	if typ.IsID() {
		props |= event.IsID
	}
	if typ.IsIDRef() {
		props |= event.IsIDRef
	}
	t.attrs = append(t.attrs, attribute{owner: owner, name: name, typ: typ, value: value, props: props})
	if rec := &t.records[owner]; rec.alpha < 0 {
		rec.alpha = idx
	}
	return idx
}

// AddNamespace appends a namespace binding declared on element owner.
// Bindings of one element must be added contiguously.
func (t *Tree) AddNamespace(owner int32, binding names.Binding) int32 {
	t.mustBeOpen("AddNamespace")
	t.check(owner)
	idx := int32(len(t.namespaces))
	t.namespaces = append(t.namespaces, namespace{owner: owner, binding: binding})
	if rec := &t.records[owner]; rec.beta < 0 {
		rec.beta = idx
	}
	return idx
}

// SetTypeAnnotation records the type of element nr. The type array is only
// allocated once a typed node is seen.
func (t *Tree) SetTypeAnnotation(nr int32, typ xdmatomic.Type) {
	t.check(nr)
	if typ == xdmatomic.Untyped && t.types == nil {
		return
	}
	if t.types == nil {
		t.types = make([]xdmatomic.Type, len(t.records), cap(t.records))
	}
	t.types[nr] = typ
}

// SetElementProperties records the ID, IDREF and nilled properties of
// element nr.
func (t *Tree) SetElementProperties(nr int32, props event.Properties) {
	t.check(nr)
	var f nodeFlag
	if props.Has(event.IsID) {
		f |= flagID
	}
	if props.Has(event.IsIDRef) {
		f |= flagIDRef
	}
	if props.Has(event.Nilled) {
		f |= flagNilled
	}
	if f == 0 {
		return
	}
	if t.flags == nil {
		t.flags = make([]nodeFlag, len(t.records), cap(t.records))
	}
	t.flags[nr] |= f
}

func (t *Tree) hasFlag(nr int32, f nodeFlag) bool {
	if t.flags != nil && t.flags[nr]&f != 0 {
		return true
	}
	if t.types == nil {
		return false
	}
	switch f {
	case flagID:
		return t.types[nr].IsID()
	case flagIDRef:
		return t.types[nr].IsIDRef()
	}
	return false
}

// SetLocation records the source position of nr when line numbering is on.
func (t *Tree) SetLocation(nr int32, line, column int) {
	t.check(nr)
	if !t.lineNumbering || line <= 0 {
		return
	}
	if t.positions == nil {
		t.positions = make([]position, len(t.records), cap(t.records))
	}
	t.positions[nr] = position{line: clampInt32(line), column: clampInt32(column)}
}

func clampInt32(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(v)
}

// SetSystemID records that nodes from nr onwards originate from uri. Calls
// must be made in ascending node order.
func (t *Tree) SetSystemID(nr int32, uri string) {
	t.check(nr)
	if n := len(t.systemIDs); n > 0 {
		last := t.systemIDs[n-1]
		if last.uri == uri {
			return
		}
		if last.nr == nr {
			t.systemIDs[n-1].uri = uri
			return
		}
	}
	t.systemIDs = append(t.systemIDs, systemIDEntry{nr: nr, uri: uri})
}

// SystemID returns the system identifier of the entity containing nr.
func (t *Tree) SystemID(nr int32) string {
	uri := ""
	for _, e := range t.systemIDs {
		if e.nr > nr {
			break
		}
		uri = e.uri
	}
	return uri
}

// Line returns the line number recorded for nr or its nearest ancestor,
// or -1 when none is known.
func (t *Tree) Line(nr int32) int {
	line, _ := t.location(nr)
	return line
}

func (t *Tree) location(nr int32) (int, int) {
	if t.positions == nil {
		return -1, -1
	}
	for nr >= 0 {
		if p := t.positions[nr]; p.line > 0 {
			return int(p.line), int(p.column)
		}
		nr = t.parentOf(nr)
	}
	return -1, -1
}

// SetUnparsedEntity declares an unparsed entity. The first declaration of a
// name wins.
func (t *Tree) SetUnparsedEntity(name, systemID, publicID string) {
	t.mustBeOpen("SetUnparsedEntity")
	if t.entities == nil {
		t.entities = make(map[string]Entity)
	}
	if _, ok := t.entities[name]; ok {
		return
	}
	t.entities[name] = Entity{SystemID: systemID, PublicID: publicID}
}

// CollapseTextualElement replaces element nr and its only text child by a
// single textual element record. It reports whether the collapse happened:
// nr must be the second to last record, carry no attributes or namespace
// declarations, and be followed by a plain text record one level deeper.
func (t *Tree) CollapseTextualElement(nr int32) bool {
	t.mustBeOpen("CollapseTextualElement")
	n := int32(len(t.records))
	if nr != n-2 {
		return false
	}
	elem, text := &t.records[nr], &t.records[n-1]
	if elem.kind != KindElement || elem.alpha >= 0 || elem.beta >= 0 {
		return false
	}
	if text.kind != KindText || text.depth != elem.depth+1 {
		return false
	}
	elem.kind = KindTextualElement
	elem.alpha, elem.beta = text.alpha, text.beta
	t.records = t.records[:n-1]
	if t.types != nil {
		t.types = t.types[:n-1]
	}
	if t.flags != nil {
		t.flags = t.flags[:n-1]
	}
	if t.positions != nil {
		t.positions = t.positions[:n-1]
	}
	return true
}

// Close appends the stopper record, trims spare capacity and reports the
// tree size to the statistics sink. No records may be added afterwards.
func (t *Tree) Close() CondenseReport {
	if t.closed {
		return CondenseReport{}
	}
	t.AddNode(KindStopper, 0, 0, 0, names.NoName)
	t.closed = true
	report := t.condense()
	t.stats.Record(t)
	return report
}

// CondenseReport describes which stores Close trimmed.
type CondenseReport struct {
	Records    bool
	Attributes bool
	Namespaces bool
}

func (t *Tree) condense() CondenseReport {
	var r CondenseReport
	if n, c := len(t.records), cap(t.records); n < c/3 || c-n > 20000 {
		t.records = clip(t.records)
		t.types = clip(t.types)
		t.flags = clip(t.flags)
		t.positions = clip(t.positions)
		r.Records = true
	}
	if n, c := len(t.attrs), cap(t.attrs); c-n > 1000 {
		t.attrs = clip(t.attrs)
		r.Attributes = true
	}
	if n, c := len(t.namespaces), cap(t.namespaces); n < c/3 {
		t.namespaces = clip(t.namespaces)
		r.Namespaces = true
	}
	return r
}

func clip[T any](s []T) []T {
	if s == nil || len(s) == cap(s) {
		return s
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
