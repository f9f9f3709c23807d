package tree_test

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/jacoelho/xdm/internal/builder"
	"github.com/jacoelho/xdm/internal/tree"
	"github.com/jacoelho/xdm/internal/xmlsource"
)

func TestDump(t *testing.T) {
	t.Parallel()

	tr := parse(t, "<a x=\"1\" xmlns:p=\"urn:p\">\n <b>hi</b><!--c--><?pi data?></a>", builder.Options{
		Tree:                    tree.Config{Numbers: &tree.DocumentNumbers{}},
		CollapseTextualElements: true,
		CompressWhitespace:      true,
	}, xmlsource.Options{})

	var buf bytes.Buffer
	if err := tr.Dump(&buf); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "dump", buf.Bytes())
}
