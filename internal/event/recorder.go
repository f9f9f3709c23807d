package event

import (
	"fmt"
	"strings"

	"github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/names"
)

// Kind identifies a recorded event.
type Kind uint8

const (
	KindStartDocument Kind = iota
	KindStartElement
	KindNamespace
	KindAttribute
	KindStartContent
	KindCharacters
	KindComment
	KindProcessingInstruction
	KindEndElement
	KindEndDocument
	KindClose
)

var kindNames = [...]string{
	KindStartDocument:         "startDocument",
	KindStartElement:          "startElement",
	KindNamespace:             "namespace",
	KindAttribute:             "attribute",
	KindStartContent:          "startContent",
	KindCharacters:            "characters",
	KindComment:               "comment",
	KindProcessingInstruction: "processingInstruction",
	KindEndElement:            "endElement",
	KindEndDocument:           "endDocument",
	KindClose:                 "close",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Event is one recorded call on a Receiver. Locations are not recorded.
type Event struct {
	Name    names.QName
	Binding names.Binding
	Text    string
	Target  string
	Kind    Kind
	Type    atomic.Type
	Props   Properties
}

// String renders e compactly for test diagnostics.
func (e Event) String() string {
	switch e.Kind {
	case KindStartElement:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Name)
	case KindNamespace:
		return fmt.Sprintf("%s(%s=%s)", e.Kind, e.Binding.Prefix, e.Binding.URI)
	case KindAttribute:
		return fmt.Sprintf("%s(%s=%q)", e.Kind, e.Name, e.Text)
	case KindCharacters, KindComment:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Text)
	case KindProcessingInstruction:
		return fmt.Sprintf("%s(%s %q)", e.Kind, e.Target, e.Text)
	default:
		return e.Kind.String()
	}
}

// Recorder is a Receiver that stores every event it sees. It performs no
// protocol checking. KeepProps controls whether event properties are kept.
type Recorder struct {
	Events    []Event
	KeepProps bool
}

func (r *Recorder) add(e Event) error {
	if !r.KeepProps {
		e.Props = 0
	}
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) StartDocument(props Properties) error {
	return r.add(Event{Kind: KindStartDocument, Props: props})
}

func (r *Recorder) StartElement(name names.QName, typ atomic.Type, _ Location, props Properties) error {
	return r.add(Event{Kind: KindStartElement, Name: name, Type: typ, Props: props})
}

func (r *Recorder) Namespace(binding names.Binding, props Properties) error {
	return r.add(Event{Kind: KindNamespace, Binding: binding, Props: props})
}

func (r *Recorder) Attribute(name names.QName, typ atomic.Type, value string, _ Location, props Properties) error {
	return r.add(Event{Kind: KindAttribute, Name: name, Type: typ, Text: value, Props: props})
}

func (r *Recorder) StartContent() error {
	return r.add(Event{Kind: KindStartContent})
}

// Characters merges adjacent character events so recordings compare equal
// regardless of how text was split.
func (r *Recorder) Characters(text string, _ Location, props Properties) error {
	if text == "" {
		return nil
	}
	if n := len(r.Events); n > 0 && r.Events[n-1].Kind == KindCharacters {
		r.Events[n-1].Text += text
		return nil
	}
	return r.add(Event{Kind: KindCharacters, Text: text, Props: props})
}

func (r *Recorder) Comment(text string, _ Location, props Properties) error {
	return r.add(Event{Kind: KindComment, Text: text, Props: props})
}

func (r *Recorder) ProcessingInstruction(target, data string, _ Location, props Properties) error {
	return r.add(Event{Kind: KindProcessingInstruction, Target: target, Text: data, Props: props})
}

func (r *Recorder) EndElement() error {
	return r.add(Event{Kind: KindEndElement})
}

func (r *Recorder) EndDocument() error {
	return r.add(Event{Kind: KindEndDocument})
}

func (r *Recorder) Close() error {
	return r.add(Event{Kind: KindClose})
}

// Replay sends the recorded events to dst in order.
func (r *Recorder) Replay(dst Receiver) error {
	for _, e := range r.Events {
		var err error
		switch e.Kind {
		case KindStartDocument:
			err = dst.StartDocument(e.Props)
		case KindStartElement:
			err = dst.StartElement(e.Name, e.Type, Location{}, e.Props)
		case KindNamespace:
			err = dst.Namespace(e.Binding, e.Props)
		case KindAttribute:
			err = dst.Attribute(e.Name, e.Type, e.Text, Location{}, e.Props)
		case KindStartContent:
			err = dst.StartContent()
		case KindCharacters:
			err = dst.Characters(e.Text, Location{}, e.Props)
		case KindComment:
			err = dst.Comment(e.Text, Location{}, e.Props)
		case KindProcessingInstruction:
			err = dst.ProcessingInstruction(e.Target, e.Text, Location{}, e.Props)
		case KindEndElement:
			err = dst.EndElement()
		case KindEndDocument:
			err = dst.EndDocument()
		case KindClose:
			err = dst.Close()
		}
		if err != nil {
			return fmt.Errorf("replay %s: %w", e, err)
		}
	}
	return nil
}

// String renders the recording one event per line.
func (r *Recorder) String() string {
	var b strings.Builder
	for _, e := range r.Events {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
