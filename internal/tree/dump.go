package tree

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes a table of the records, attributes and namespace bindings of
// t for diagnostics.
func (t *Tree) Dump(w io.Writer) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(strings.TrimRight(fmt.Sprintf(format, args...), " "))
		b.WriteByte('\n')
	}
	line("document %d: %d records, %d attributes, %d namespaces", t.docNumber, t.Len(), len(t.attrs), len(t.namespaces))
	line("%4s %-22s %5s %6s %6s %6s %s", "nr", "kind", "depth", "next", "alpha", "beta", "name")
	for i := range t.records {
		r := &t.records[i]
		line("%4d %-22s %5d %6s %6d %6d %s", i, r.kind, r.depth, r.next, r.alpha, r.beta, t.dumpName(r))
	}
	if len(t.attrs) > 0 {
		line("attributes")
		line("%4s %6s %s", "nr", "owner", "name=value")
		for i := range t.attrs {
			a := &t.attrs[i]
			line("%4d %6d %s=%s", i, a.owner, t.pool.QName(a.name), strconv.Quote(a.value))
		}
	}
	line("namespaces")
	line("%4s %6s %s", "nr", "owner", "prefix=uri")
	for i := range t.namespaces {
		ns := &t.namespaces[i]
		line("%4d %6d %s=%s", i, ns.owner, ns.binding.Prefix, ns.binding.URI)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *Tree) dumpName(r *record) string {
	switch r.kind {
	case KindElement, KindTextualElement, KindProcessingInstruction:
		return t.pool.QName(r.name).String()
	case KindText, KindComment:
		return strconv.Quote(string(t.bufferFor(r.kind)[r.alpha : r.alpha+r.beta]))
	case KindWhitespaceText:
		return strconv.Quote(decodeWhitespace(r.alpha, r.beta))
	}
	return ""
}

func (t *Tree) bufferFor(k Kind) []byte {
	if k == KindComment || k == KindProcessingInstruction {
		return t.comments
	}
	return t.chars
}
