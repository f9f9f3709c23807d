package event

import (
	"testing"

	"github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/names"
)

func TestRecorderMergesCharacters(t *testing.T) {
	var r Recorder
	_ = r.StartDocument(0)
	_ = r.StartElement(names.QName{Local: "a"}, atomic.Untyped, Location{}, 0)
	_ = r.StartContent()
	_ = r.Characters("x", Location{}, 0)
	_ = r.Characters("", Location{}, 0)
	_ = r.Characters("y", Location{}, 0)
	_ = r.EndElement()
	_ = r.EndDocument()

	want := "startDocument\nstartElement(a)\nstartContent\ncharacters(\"xy\")\nendElement\nendDocument\n"
	if got := r.String(); got != want {
		t.Fatalf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestRecorderReplay(t *testing.T) {
	var src Recorder
	src.KeepProps = true
	_ = src.StartDocument(0)
	_ = src.StartElement(names.QName{Local: "a"}, atomic.Untyped, Location{}, 0)
	_ = src.Namespace(names.Binding{Prefix: "p", URI: "urn:p"}, 0)
	_ = src.Attribute(names.QName{Local: "id"}, atomic.ID, "k1", Location{}, IsID)
	_ = src.StartContent()
	_ = src.Comment("c", Location{}, 0)
	_ = src.ProcessingInstruction("pi", "data", Location{}, 0)
	_ = src.EndElement()
	_ = src.EndDocument()
	_ = src.Close()

	var dst Recorder
	dst.KeepProps = true
	if err := src.Replay(&dst); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if src.String() != dst.String() {
		t.Fatalf("replayed =\n%s\nwant\n%s", dst.String(), src.String())
	}
	if !dst.Events[3].Props.Has(IsID) {
		t.Fatal("attribute properties were not kept")
	}
}

func TestPropertiesHas(t *testing.T) {
	p := IsID | WholeTextNode
	if !p.Has(IsID) || !p.Has(WholeTextNode) || !p.Has(IsID|WholeTextNode) {
		t.Fatal("Has() missed a set bit")
	}
	if p.Has(Nilled) || p.Has(IsID|Nilled) {
		t.Fatal("Has() reported an unset bit")
	}
}
