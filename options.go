package xdm

import (
	"cmp"
	"fmt"
	"log/slog"

	xdmerrors "github.com/jacoelho/xdm/errors"
	"github.com/jacoelho/xdm/internal/builder"
	"github.com/jacoelho/xdm/internal/names"
	"github.com/jacoelho/xdm/internal/tree"
	"github.com/jacoelho/xdm/internal/xmlsource"
)

// DefaultParentPointerInterval is the number of siblings after which a
// parent pointer is inserted into a sibling chain.
const DefaultParentPointerInterval = builder.DefaultParentPointerInterval

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

type boolOption struct {
	value bool
	set   bool
}

func (o boolOption) or(fallback bool) bool {
	if !o.set {
		return fallback
	}
	return o.value
}

// BuildOptions configures tree construction. The zero value selects the
// defaults: parent pointers every DefaultParentPointerInterval siblings,
// textual element collapsing and whitespace compression on, no depth
// limit, no line numbers.
type BuildOptions struct {
	logger                *slog.Logger
	pool                  *NamePool
	stats                 *Statistics
	systemID              string
	parentPointerInterval intOption
	maxDepth              intOption
	textualElements       boolOption
	compressWhitespace    boolOption
	lineNumbering         bool
	disableParentPointers bool
}

// NewBuildOptions returns a default, valid build options value.
func NewBuildOptions() BuildOptions {
	return BuildOptions{}
}

// WithParentPointerInterval sets the parent pointer interval (0 uses default).
func (o BuildOptions) WithParentPointerInterval(value int) BuildOptions {
	o.parentPointerInterval = intOption{value: value, set: true}
	return o
}

// WithoutParentPointers disables parent pointer records. Parent lookups then
// walk the whole sibling chain.
func (o BuildOptions) WithoutParentPointers() BuildOptions {
	o.disableParentPointers = true
	return o
}

// WithMaxDepth limits element nesting (0 means unlimited).
func (o BuildOptions) WithMaxDepth(value int) BuildOptions {
	o.maxDepth = intOption{value: value, set: true}
	return o
}

// WithLineNumbering controls whether node line and column numbers are kept.
func (o BuildOptions) WithLineNumbering(value bool) BuildOptions {
	o.lineNumbering = value
	return o
}

// WithTextualElements controls collapsing of elements holding only text.
func (o BuildOptions) WithTextualElements(value bool) BuildOptions {
	o.textualElements = boolOption{value: value, set: true}
	return o
}

// WithWhitespaceCompression controls inline storage of short whitespace text.
func (o BuildOptions) WithWhitespaceCompression(value bool) BuildOptions {
	o.compressWhitespace = boolOption{value: value, set: true}
	return o
}

// WithLogger sets the logger receiving build and index diagnostics.
func (o BuildOptions) WithLogger(value *slog.Logger) BuildOptions {
	o.logger = value
	return o
}

// WithNamePool shares a name pool. Trees compared or copied between must
// share one.
func (o BuildOptions) WithNamePool(value *NamePool) BuildOptions {
	o.pool = value
	return o
}

// WithStatistics sets the statistics used to presize trees.
func (o BuildOptions) WithStatistics(value *Statistics) BuildOptions {
	o.stats = value
	return o
}

// WithSystemID sets the system ID of the document entity. Trees built
// without one get a generated urn:uuid identifier.
func (o BuildOptions) WithSystemID(value string) BuildOptions {
	o.systemID = value
	return o
}

// Validate validates build options values.
func (o BuildOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

func (o BuildOptions) withDefaults() (builder.Options, error) {
	interval := o.parentPointerInterval.resolved()
	if interval < 0 {
		return builder.Options{}, xdmerrors.New(xdmerrors.ErrOptionInvalid, "parent pointer interval must be >= 0")
	}
	if o.disableParentPointers {
		interval = -1
	}
	depth := o.maxDepth.resolved()
	if depth < 0 {
		return builder.Options{}, xdmerrors.New(xdmerrors.ErrOptionInvalid, "max depth must be >= 0")
	}
	pool := o.pool
	if pool == nil {
		pool = names.NewPool()
	}
	return builder.Options{
		Logger:   o.logger,
		SystemID: cmp.Or(o.systemID, NewSystemID()),
		Tree: tree.Config{
			Pool:          pool,
			Statistics:    o.stats,
			Logger:        o.logger,
			LineNumbering: o.lineNumbering,
		},
		ParentPointerInterval:   cmp.Or(interval, DefaultParentPointerInterval),
		MaxDepth:                depth,
		CollapseTextualElements: o.textualElements.or(true),
		CompressWhitespace:      o.compressWhitespace.or(true),
	}, nil
}

// ParseOptions configures parsing XML into a tree.
type ParseOptions struct {
	build           BuildOptions
	idAttributes    []string
	idrefAttributes []string
	stripWhitespace bool
	skipComments    bool
	skipPIs         bool
}

// NewParseOptions returns a default, valid parse options value.
func NewParseOptions() ParseOptions {
	return ParseOptions{}
}

// BuildOptions returns the build options embedded in the parse options.
func (o ParseOptions) BuildOptions() BuildOptions {
	return o.build
}

// WithBuildOptions sets all build options in one call.
func (o ParseOptions) WithBuildOptions(value BuildOptions) ParseOptions {
	o.build = value
	return o
}

// WithIDAttributes names attributes, by lexical name, whose values are
// IDs. xml:id is always an ID.
func (o ParseOptions) WithIDAttributes(names ...string) ParseOptions {
	o.idAttributes = append([]string(nil), names...)
	return o
}

// WithIDRefAttributes names attributes whose values are ID references.
func (o ParseOptions) WithIDRefAttributes(names ...string) ParseOptions {
	o.idrefAttributes = append([]string(nil), names...)
	return o
}

// WithStripWhitespace controls dropping of whitespace-only text nodes.
func (o ParseOptions) WithStripWhitespace(value bool) ParseOptions {
	o.stripWhitespace = value
	return o
}

// WithComments controls whether comments are kept (the default).
func (o ParseOptions) WithComments(value bool) ParseOptions {
	o.skipComments = !value
	return o
}

// WithProcessingInstructions controls whether processing instructions are
// kept (the default).
func (o ParseOptions) WithProcessingInstructions(value bool) ParseOptions {
	o.skipPIs = !value
	return o
}

// Validate validates parse options values.
func (o ParseOptions) Validate() error {
	_, _, err := o.withDefaults()
	return err
}

func (o ParseOptions) withDefaults() (builder.Options, xmlsource.Options, error) {
	bopts, err := o.build.withDefaults()
	if err != nil {
		return builder.Options{}, xmlsource.Options{}, fmt.Errorf("build options: %w", err)
	}
	for _, name := range o.idAttributes {
		if name == "" {
			return builder.Options{}, xmlsource.Options{}, xdmerrors.New(xdmerrors.ErrOptionInvalid, "empty ID attribute name")
		}
	}
	return bopts, xmlsource.Options{
		SystemID:                   bopts.SystemID,
		IDAttributes:               o.idAttributes,
		IDRefAttributes:            o.idrefAttributes,
		StripWhitespace:            o.stripWhitespace,
		SkipComments:               o.skipComments,
		SkipProcessingInstructions: o.skipPIs,
	}, nil
}
