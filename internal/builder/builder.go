// Package builder turns a stream of structural events into a tree.
package builder

import (
	"log/slog"

	xdmerrors "github.com/jacoelho/xdm/errors"
	xdmatomic "github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/event"
	"github.com/jacoelho/xdm/internal/names"
	"github.com/jacoelho/xdm/internal/tree"
)

// DefaultParentPointerInterval is the number of siblings after which a
// parent pointer record is inserted into a sibling chain.
const DefaultParentPointerInterval = 10

// Options configures a Builder.
type Options struct {
	// Logger receives build diagnostics. Nil discards them.
	Logger *slog.Logger
	// SystemID is the system identifier of the document entity.
	SystemID string
	// Tree configures the tree being built.
	Tree tree.Config
	// ParentPointerInterval bounds parent lookups to this many sibling
	// steps. Zero selects DefaultParentPointerInterval, negative disables
	// parent pointers.
	ParentPointerInterval int
	// MaxDepth limits element nesting. Zero means unlimited.
	MaxDepth int
	// CollapseTextualElements stores elements holding a single text child
	// and nothing else as one record.
	CollapseTextualElements bool
	// CompressWhitespace stores short whitespace-only text inline.
	CompressWhitespace bool
}

type phase uint8

const (
	phaseIdle phase = iota
	phaseContent
	phaseStartTag
	phaseEnded
	phaseClosed
	phaseFailed
)

var phaseNames = [...]string{
	phaseIdle:     "idle",
	phaseContent:  "content",
	phaseStartTag: "start tag",
	phaseEnded:    "ended",
	phaseClosed:   "closed",
	phaseFailed:   "failed",
}

func (p phase) String() string { return phaseNames[p] }

type pendingAttribute struct {
	name  names.QName
	value string
	loc   event.Location
	typ   xdmatomic.Type
	props event.Properties
}

type pendingElement struct {
	name       names.QName
	loc        event.Location
	attrs      []pendingAttribute
	namespaces []names.Binding
	typ        xdmatomic.Type
	props      event.Properties
}

type frame struct {
	systemID  string
	nr        int32
	idElement bool
}

// Builder is an event.Receiver that appends records to a tree. It is not
// safe for concurrent use. After it reports an error it refuses every
// further event with the same error.
type Builder struct {
	logger   *slog.Logger
	tree     *tree.Tree
	pool     *names.Pool
	err      error
	systemID string

	pending pendingElement
	frames  []frame

	prevAtDepth     []int32
	siblingsAtDepth []int

	interval       int
	maxDepth       int
	depth          int32
	parentPointers int
	phase          phase
	collapse       bool
	compress       bool
}

// New returns a builder for one document.
func New(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := opts.Tree
	if cfg.Pool == nil {
		cfg.Pool = names.NewPool()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	interval := opts.ParentPointerInterval
	if interval == 0 {
		interval = DefaultParentPointerInterval
	}
	return &Builder{
		logger:   logger,
		tree:     tree.New(cfg),
		pool:     cfg.Pool,
		systemID: opts.SystemID,
		interval: interval,
		maxDepth: opts.MaxDepth,
		collapse: opts.CollapseTextualElements,
		compress: opts.CompressWhitespace,
	}
}

// Tree returns the tree under construction. It is complete once Close has
// returned nil.
func (b *Builder) Tree() *tree.Tree { return b.tree }

// Result returns the finished tree, or the error that stopped building.
func (b *Builder) Result() (*tree.Tree, error) {
	switch b.phase {
	case phaseClosed:
		return b.tree, nil
	case phaseFailed:
		return nil, b.err
	}
	return nil, xdmerrors.Newf(xdmerrors.ErrProtocol, "tree is not complete: builder is in %s state", b.phase)
}

// CurrentRoot returns the root built so far: the document node, or the top
// element when the document node was synthesized.
func (b *Builder) CurrentRoot() (tree.Node, bool) {
	if b.tree.Len() == 0 {
		return tree.Node{}, false
	}
	if b.tree.Imaginary() {
		if b.tree.Len() < 2 {
			return tree.Node{}, false
		}
		return b.tree.Node(1), true
	}
	return b.tree.Node(0), true
}

// fail records a protocol violation, making the builder unusable.
func (b *Builder) fail(code xdmerrors.ErrorCode, format string, args ...any) error {
	err := xdmerrors.Newf(code, format, args...)
	if b.systemID != "" {
		err = err.WithResource(b.systemID)
	}
	b.err = err
	b.phase = phaseFailed
	b.logger.Warn("tree building aborted",
		slog.String("code", string(code)),
		slog.String("error", err.Message),
		slog.Int("records", b.tree.Len()))
	return err
}

// usable returns the sticky error, or an error for events after Close.
func (b *Builder) usable(op string) error {
	switch b.phase {
	case phaseFailed:
		return b.err
	case phaseClosed:
		return xdmerrors.Newf(xdmerrors.ErrClosed, "%s after close", op)
	}
	return nil
}

func (b *Builder) expect(op string, want phase) error {
	if err := b.usable(op); err != nil {
		return err
	}
	if b.phase != want {
		return b.fail(xdmerrors.ErrProtocol, "%s not allowed in %s state", op, b.phase)
	}
	return nil
}

// link appends a record at depth d through add and chains it after its
// previous sibling, inserting a parent pointer once interval siblings have
// been chained since the last one. A new record is linked to its parent
// until a following sibling arrives.
func (b *Builder) link(d int32, add func() int32) int32 {
	b.ensureDepth(d)
	parent := b.prevAtDepth[d-1]
	prev := b.prevAtDepth[d]
	if prev >= 0 && b.interval > 0 && b.siblingsAtDepth[d] >= b.interval {
		pp := b.tree.AddNode(tree.KindParentPointer, d, parent, 0, names.NoName)
		b.tree.SetNext(prev, tree.Sibling(pp))
		prev = pp
		b.siblingsAtDepth[d] = 0
		b.parentPointers++
	}
	nr := add()
	if prev >= 0 {
		b.tree.SetNext(prev, tree.Sibling(nr))
	}
	b.tree.SetNext(nr, tree.Owner(parent))
	b.prevAtDepth[d] = nr
	b.siblingsAtDepth[d]++
	return nr
}

func (b *Builder) ensureDepth(d int32) {
	for int(d) >= len(b.prevAtDepth) {
		b.prevAtDepth = append(b.prevAtDepth, -1)
		b.siblingsAtDepth = append(b.siblingsAtDepth, 0)
	}
}

func (b *Builder) startDocumentNode() {
	nr := b.tree.AddNode(tree.KindDocument, 0, -1, -1, names.NoName)
	b.ensureDepth(1)
	b.prevAtDepth[0] = nr
	if b.systemID != "" {
		b.tree.SetSystemID(nr, b.systemID)
	}
	b.depth = 0
	b.phase = phaseContent
}

// StartDocument opens the document node.
func (b *Builder) StartDocument(event.Properties) error {
	if err := b.expect("startDocument", phaseIdle); err != nil {
		return err
	}
	b.startDocumentNode()
	return nil
}

// StartElement buffers an element until StartContent. Without a preceding
// StartDocument an imaginary document node is created first.
func (b *Builder) StartElement(name names.QName, typ xdmatomic.Type, loc event.Location, props event.Properties) error {
	if err := b.usable("startElement"); err != nil {
		return err
	}
	if b.phase == phaseIdle {
		b.startDocumentNode()
		b.tree.MarkImaginary()
		b.logger.Debug("synthesized document node", slog.String("element", name.String()))
	}
	if b.phase != phaseContent {
		return b.fail(xdmerrors.ErrProtocol, "startElement(%s) not allowed in %s state", name, b.phase)
	}
	if b.tree.Imaginary() && b.depth == 0 && b.tree.Len() > 1 {
		return b.fail(xdmerrors.ErrProtocol, "second top-level element %s without a document node", name)
	}
	if b.maxDepth > 0 && int(b.depth)+1 > b.maxDepth {
		return b.fail(xdmerrors.ErrDepth, "element %s exceeds maximum depth %d", name, b.maxDepth)
	}
	b.pending = pendingElement{
		name:       name,
		typ:        typ,
		loc:        loc,
		props:      props,
		attrs:      b.pending.attrs[:0],
		namespaces: b.pending.namespaces[:0],
	}
	b.phase = phaseStartTag
	return nil
}

// Namespace adds a namespace declaration to the pending element. A second
// declaration of the same prefix replaces the first.
func (b *Builder) Namespace(binding names.Binding, _ event.Properties) error {
	if err := b.expect("namespace", phaseStartTag); err != nil {
		return err
	}
	for i, existing := range b.pending.namespaces {
		if existing.Prefix == binding.Prefix {
			b.pending.namespaces[i] = binding
			return nil
		}
	}
	b.pending.namespaces = append(b.pending.namespaces, binding)
	return nil
}

// Attribute adds an attribute to the pending element.
func (b *Builder) Attribute(name names.QName, typ xdmatomic.Type, value string, loc event.Location, props event.Properties) error {
	if err := b.expect("attribute", phaseStartTag); err != nil {
		return err
	}
	b.pending.attrs = append(b.pending.attrs, pendingAttribute{name: name, typ: typ, value: value, loc: loc, props: props})
	return nil
}

// StartContent materializes the pending element with its namespaces and
// attributes and makes it the current parent.
func (b *Builder) StartContent() error {
	if err := b.expect("startContent", phaseStartTag); err != nil {
		return err
	}
	p := &b.pending
	d := b.depth + 1
	nameID := b.pool.Allocate(p.name.Prefix, p.name.Namespace, p.name.Local)
	nr := b.link(d, func() int32 {
		return b.tree.AddNode(tree.KindElement, d, -1, -1, nameID)
	})
	b.tree.SetTypeAnnotation(nr, p.typ)
	b.tree.SetElementProperties(nr, p.props)
	b.tree.SetLocation(nr, p.loc.Line, p.loc.Column)

	systemID := b.inheritedSystemID()
	if p.loc.SystemID != "" {
		systemID = p.loc.SystemID
	}
	if systemID != "" {
		b.tree.SetSystemID(nr, systemID)
	}

	for _, ns := range p.namespaces {
		b.tree.AddNamespace(nr, ns)
	}
	for _, a := range p.attrs {
		attrName := b.pool.Allocate(a.name.Prefix, a.name.Namespace, a.name.Local)
		idx := b.tree.AddAttribute(nr, attrName, a.typ, a.value, a.props)
		if a.props.Has(event.IsID) || a.typ.IsID() || isXMLID(a.name) {
			b.tree.RegisterID(a.value, nr, idx)
		}
	}

	b.frames = append(b.frames, frame{
		nr:        nr,
		systemID:  systemID,
		idElement: p.props.Has(event.IsID) || p.typ.IsID(),
	})
	b.depth = d
	b.ensureDepth(d + 1)
	b.prevAtDepth[d+1] = -1
	b.siblingsAtDepth[d+1] = 0
	b.phase = phaseContent
	return nil
}

func (b *Builder) inheritedSystemID() string {
	if n := len(b.frames); n > 0 {
		return b.frames[n-1].systemID
	}
	return b.systemID
}

// Characters appends text to the current parent, extending a directly
// preceding text node.
func (b *Builder) Characters(text string, _ event.Location, props event.Properties) error {
	if err := b.expect("characters", phaseContent); err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	d := b.depth + 1
	whole := props.Has(event.WholeTextNode)
	if b.tree.TextMergeable(d) {
		b.tree.AddText(d, text, whole, b.compress)
		return nil
	}
	b.link(d, func() int32 {
		nr, _ := b.tree.AddText(d, text, whole, b.compress)
		return nr
	})
	return nil
}

// Comment appends a comment to the current parent.
func (b *Builder) Comment(text string, loc event.Location, _ event.Properties) error {
	if err := b.expect("comment", phaseContent); err != nil {
		return err
	}
	d := b.depth + 1
	nr := b.link(d, func() int32 { return b.tree.AddComment(d, text) })
	b.tree.SetLocation(nr, loc.Line, loc.Column)
	return nil
}

// ProcessingInstruction appends a processing instruction to the current
// parent.
func (b *Builder) ProcessingInstruction(target, data string, loc event.Location, _ event.Properties) error {
	if err := b.expect("processingInstruction", phaseContent); err != nil {
		return err
	}
	d := b.depth + 1
	nameID := b.pool.Allocate("", "", target)
	nr := b.link(d, func() int32 { return b.tree.AddProcessingInstruction(d, nameID, data) })
	b.tree.SetLocation(nr, loc.Line, loc.Column)
	return nil
}

// EndElement closes the current element. An ID-typed element is indexed
// under its string value at this point.
func (b *Builder) EndElement() error {
	if err := b.expect("endElement", phaseContent); err != nil {
		return err
	}
	if len(b.frames) == 0 {
		return b.fail(xdmerrors.ErrProtocol, "endElement without an open element")
	}
	f := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]
	if b.collapse {
		b.tree.CollapseTextualElement(f.nr)
	}
	if f.idElement {
		b.tree.RegisterID(b.tree.Node(f.nr).StringValue(), f.nr, -1)
	}
	b.prevAtDepth[b.depth+1] = -1
	b.siblingsAtDepth[b.depth+1] = 0
	b.depth--
	return nil
}

// EndDocument closes the document node.
func (b *Builder) EndDocument() error {
	if err := b.expect("endDocument", phaseContent); err != nil {
		return err
	}
	if len(b.frames) > 0 {
		return b.fail(xdmerrors.ErrProtocol, "endDocument with %d open elements", len(b.frames))
	}
	b.phase = phaseEnded
	return nil
}

// Close finishes the tree: the stopper record is appended and spare
// capacity released. A tree built without StartDocument may be closed
// directly after its top element ends.
func (b *Builder) Close() error {
	if b.phase == phaseFailed {
		return b.err
	}
	if b.phase == phaseClosed {
		return nil
	}
	switch {
	case b.phase == phaseEnded:
	case b.phase == phaseContent && b.tree.Imaginary() && len(b.frames) == 0:
	default:
		return b.fail(xdmerrors.ErrProtocol, "close in %s state with %d open elements", b.phase, len(b.frames))
	}
	report := b.tree.Close()
	b.phase = phaseClosed
	b.logger.Debug("tree built",
		slog.Int64("document", b.tree.DocumentNumber()),
		slog.Int("records", b.tree.Len()),
		slog.Int("attributes", b.tree.NumberOfAttributes()),
		slog.Int("namespaces", b.tree.NumberOfNamespaces()),
		slog.Int("parent_pointers", b.parentPointers),
		slog.Bool("imaginary", b.tree.Imaginary()),
		slog.Bool("condensed", report.Records || report.Attributes || report.Namespaces))
	return nil
}

// SetUnparsedEntity records an unparsed entity declaration.
func (b *Builder) SetUnparsedEntity(name, systemID, publicID string) error {
	if err := b.usable("setUnparsedEntity"); err != nil {
		return err
	}
	b.tree.SetUnparsedEntity(name, systemID, publicID)
	return nil
}

// ParentPointers returns how many parent pointer records were inserted.
func (b *Builder) ParentPointers() int { return b.parentPointers }

func isXMLID(name names.QName) bool {
	return name.Local == "id" && name.Namespace == names.XMLNamespace
}

var (
	_ event.Receiver       = (*Builder)(nil)
	_ event.EntityReceiver = (*Builder)(nil)
)
