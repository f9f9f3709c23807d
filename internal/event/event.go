// Package event defines the push interface through which parsers and copy
// operations feed tree builders.
package event

import (
	"github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/names"
)

// Properties is a bit set qualifying a single event.
type Properties uint32

const (
	// IsID marks an element or attribute whose value is an ID.
	IsID Properties = 1 << iota
	// IsIDRef marks an element or attribute whose value holds ID references.
	IsIDRef
	// Nilled marks an element carrying xsi:nil="true".
	Nilled
	// WholeTextNode marks a characters event that is a complete text node.
	WholeTextNode
	// DefaultedAttribute marks an attribute supplied from a schema or DTD default.
	DefaultedAttribute
)

// Has reports whether all bits in q are set in p.
func (p Properties) Has(q Properties) bool {
	return p&q == q
}

// Location identifies where an event originated. The zero value means unknown.
type Location struct {
	SystemID string
	Line     int
	Column   int
}

// Receiver consumes the ordered event sequence
//
//	StartDocument {StartElement {Namespace|Attribute}* StartContent ... EndElement}* EndDocument Close
//
// Implementations report protocol violations as errors and must not be used
// after returning one.
type Receiver interface {
	StartDocument(props Properties) error
	StartElement(name names.QName, typ atomic.Type, loc Location, props Properties) error
	Namespace(binding names.Binding, props Properties) error
	Attribute(name names.QName, typ atomic.Type, value string, loc Location, props Properties) error
	StartContent() error
	Characters(text string, loc Location, props Properties) error
	Comment(text string, loc Location, props Properties) error
	ProcessingInstruction(target, data string, loc Location, props Properties) error
	EndElement() error
	EndDocument() error
	Close() error
}

// EntityReceiver is implemented by receivers that record unparsed entities.
type EntityReceiver interface {
	SetUnparsedEntity(name, systemID, publicID string) error
}
