// Package xmlsource parses XML documents into the event stream consumed by
// tree builders.
package xmlsource

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html/charset"

	xdmerrors "github.com/jacoelho/xdm/errors"
	"github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/event"
	"github.com/jacoelho/xdm/internal/names"
)

// Options configures parsing.
type Options struct {
	// SystemID identifies the document in locations and errors.
	SystemID string
	// IDAttributes lists lexical attribute names, such as "id", whose
	// values are IDs. xml:id is always an ID.
	IDAttributes []string
	// IDRefAttributes lists lexical attribute names whose values are
	// whitespace-separated ID references.
	IDRefAttributes []string
	// StripWhitespace drops whitespace-only text nodes.
	StripWhitespace bool
	// SkipComments drops comments.
	SkipComments bool
	// SkipProcessingInstructions drops processing instructions.
	SkipProcessingInstructions bool
}

type scope struct {
	bindings []names.Binding
	name     xml.Name
}

type parser struct {
	dst      event.Receiver
	decoder  *xml.Decoder
	opts     Options
	text     strings.Builder
	scopes   []scope
	seenRoot bool
}

// Parse reads one XML document from r and sends its events, including the
// final Close, to dst. Non-UTF-8 input is decoded according to its XML
// declaration.
func Parse(r io.Reader, dst event.Receiver, opts Options) error {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	p := &parser{dst: dst, decoder: decoder, opts: opts}
	if err := p.run(); err != nil {
		return err
	}
	return dst.Close()
}

func (p *parser) run() error {
	if err := p.dst.StartDocument(0); err != nil {
		return err
	}
	for {
		tok, err := p.decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p.syntaxError(err)
		}
		if err := p.token(tok); err != nil {
			return err
		}
	}
	if len(p.scopes) > 0 {
		return p.errorf("unexpected end of input inside element %s", lexical(p.scopes[len(p.scopes)-1].name))
	}
	if !p.seenRoot {
		return p.errorf("document has no root element")
	}
	if err := p.flushText(); err != nil {
		return err
	}
	return p.dst.EndDocument()
}

func (p *parser) token(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.CharData:
		p.text.Write(t)
		return nil
	case xml.StartElement:
		if err := p.flushText(); err != nil {
			return err
		}
		return p.startElement(t)
	case xml.EndElement:
		if err := p.flushText(); err != nil {
			return err
		}
		return p.endElement(t)
	case xml.Comment:
		if err := p.flushText(); err != nil {
			return err
		}
		if p.opts.SkipComments {
			return nil
		}
		return p.dst.Comment(string(t), p.location(), 0)
	case xml.ProcInst:
		if t.Target == "xml" {
			return nil
		}
		if err := p.flushText(); err != nil {
			return err
		}
		if p.opts.SkipProcessingInstructions {
			return nil
		}
		return p.dst.ProcessingInstruction(t.Target, strings.TrimLeft(string(t.Inst), " \t\r\n"), p.location(), 0)
	case xml.Directive:
		return p.directive(string(t))
	}
	return nil
}

// flushText emits the text gathered since the last markup as one whole text
// node. Whitespace outside the root element is not part of the tree.
func (p *parser) flushText() error {
	if p.text.Len() == 0 {
		return nil
	}
	s := p.text.String()
	p.text.Reset()
	if len(p.scopes) == 0 {
		if strings.TrimLeft(s, " \t\r\n\ufeff") != "" {
			return p.errorf("character data outside the root element")
		}
		return nil
	}
	if p.opts.StripWhitespace && atomic.IsAllWhitespace(s) {
		return nil
	}
	return p.dst.Characters(s, p.location(), event.WholeTextNode)
}

func (p *parser) startElement(t xml.StartElement) error {
	if len(p.scopes) == 0 && p.seenRoot {
		return p.errorf("element %s after the root element", lexical(t.Name))
	}
	p.seenRoot = true

	var declared []names.Binding
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "" && a.Name.Local == names.XMLNSPrefix:
			declared = append(declared, names.Binding{URI: a.Value})
		case a.Name.Space == names.XMLNSPrefix:
			if a.Name.Local == names.XMLPrefix || a.Name.Local == names.XMLNSPrefix {
				continue
			}
			if a.Value == "" {
				return p.errorf("prefix %s cannot be undeclared", a.Name.Local)
			}
			declared = append(declared, names.Binding{Prefix: a.Name.Local, URI: a.Value})
		}
	}
	p.scopes = append(p.scopes, scope{name: t.Name, bindings: declared})

	name, err := p.resolve(t.Name, true)
	if err != nil {
		return err
	}
	loc := p.location()
	if err := p.dst.StartElement(name, atomic.Untyped, loc, 0); err != nil {
		return err
	}
	for _, b := range declared {
		if err := p.dst.Namespace(b, 0); err != nil {
			return err
		}
	}
	for _, a := range t.Attr {
		if a.Name.Space == names.XMLNSPrefix || (a.Name.Space == "" && a.Name.Local == names.XMLNSPrefix) {
			continue
		}
		attrName, err := p.resolve(a.Name, false)
		if err != nil {
			return err
		}
		if err := p.dst.Attribute(attrName, atomic.Untyped, a.Value, loc, p.attributeProperties(a.Name)); err != nil {
			return err
		}
	}
	return p.dst.StartContent()
}

func (p *parser) attributeProperties(name xml.Name) event.Properties {
	lex := lexical(name)
	var props event.Properties
	if (name.Space == names.XMLPrefix && name.Local == "id") || slices.Contains(p.opts.IDAttributes, lex) {
		props |= event.IsID
	}
	if slices.Contains(p.opts.IDRefAttributes, lex) {
		props |= event.IsIDRef
	}
	return props
}

func (p *parser) endElement(t xml.EndElement) error {
	if len(p.scopes) == 0 {
		return p.errorf("unexpected end element %s", lexical(t.Name))
	}
	open := p.scopes[len(p.scopes)-1]
	if open.name != t.Name {
		return p.errorf("element %s closed by %s", lexical(open.name), lexical(t.Name))
	}
	p.scopes = p.scopes[:len(p.scopes)-1]
	return p.dst.EndElement()
}

// resolve maps a raw prefixed name to its namespace. Unprefixed attributes
// are in no namespace.
func (p *parser) resolve(n xml.Name, element bool) (names.QName, error) {
	if n.Space == names.XMLPrefix {
		return names.QName{Prefix: names.XMLPrefix, Namespace: names.XMLNamespace, Local: n.Local}, nil
	}
	if n.Space == "" && !element {
		return names.QName{Local: n.Local}, nil
	}
	for i := len(p.scopes) - 1; i >= 0; i-- {
		for _, b := range p.scopes[i].bindings {
			if b.Prefix == n.Space {
				return names.QName{Prefix: n.Space, Namespace: b.URI, Local: n.Local}, nil
			}
		}
	}
	if n.Space == "" {
		return names.QName{Local: n.Local}, nil
	}
	return names.QName{}, p.errorf("undeclared namespace prefix %s", n.Space)
}

var entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%]+)\s+(?:SYSTEM\s+(?:"([^"]*)"|'([^']*)')|PUBLIC\s+(?:"([^"]*)"|'([^']*)')\s+(?:"([^"]*)"|'([^']*)'))\s+NDATA\s+[^\s>]+\s*>`)

// directive records unparsed entity declarations of the internal DTD subset.
func (p *parser) directive(d string) error {
	er, ok := p.dst.(event.EntityReceiver)
	if !ok || !strings.HasPrefix(d, "DOCTYPE") {
		return nil
	}
	for _, m := range entityDecl.FindAllStringSubmatch(d, -1) {
		systemID := m[2] + m[3] + m[6] + m[7]
		publicID := m[4] + m[5]
		if err := er.SetUnparsedEntity(m[1], systemID, publicID); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) location() event.Location {
	line, col := p.decoder.InputPos()
	return event.Location{SystemID: p.opts.SystemID, Line: line, Column: col}
}

func (p *parser) errorf(format string, args ...any) error {
	line, col := p.decoder.InputPos()
	e := xdmerrors.Newf(xdmerrors.ErrXMLParse, format, args...).WithPosition(line, col)
	if p.opts.SystemID != "" {
		e = e.WithResource(p.opts.SystemID)
	}
	return e
}

func (p *parser) syntaxError(err error) error {
	e := &xdmerrors.Error{Code: xdmerrors.ErrXMLParse, Message: "malformed XML", Err: err, Resource: p.opts.SystemID}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		e.Message = se.Msg
		e.Err = nil
		e.Line = se.Line
	}
	return e
}

func lexical(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return fmt.Sprintf("%s:%s", n.Space, n.Local)
}

// ParseString is Parse over an in-memory document.
func ParseString(s string, dst event.Receiver, opts Options) error {
	return Parse(strings.NewReader(s), dst, opts)
}
