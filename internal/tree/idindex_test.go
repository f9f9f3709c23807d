package tree_test

import (
	"sync"
	"testing"

	"github.com/jacoelho/xdm/internal/builder"
	"github.com/jacoelho/xdm/internal/xmlsource"
)

func TestSelectIDFirstInDocumentOrderWins(t *testing.T) {
	t.Parallel()

	tr := parse(t, `<a><b id="k1"/><c id="k1"/></a>`, builder.Options{}, xmlsource.Options{IDAttributes: []string{"id"}})
	n, ok := tr.SelectID("k1", false)
	if !ok || n.LocalName() != "b" {
		t.Fatalf("SelectID(k1) = %v, %v, want element b", n, ok)
	}
	tr.ResetIndexes()
	n, ok = tr.SelectID("k1", false)
	if !ok || n.LocalName() != "b" {
		t.Fatalf("SelectID(k1) after ResetIndexes = %v, %v, want element b", n, ok)
	}
}

func TestSelectIDXMLID(t *testing.T) {
	t.Parallel()

	tr := parse(t, `<a><b xml:id=" one "/><c id="two"/></a>`, builder.Options{}, xmlsource.Options{})
	n, ok := tr.SelectID("one", false)
	if !ok || n.LocalName() != "b" {
		t.Fatalf("SelectID(one) = %v, %v, want element b", n, ok)
	}
	if n, ok := tr.SelectID("two", false); ok {
		t.Fatalf("SelectID(two) = %v, want miss for a plain attribute", n)
	}
	if n, ok := tr.SelectID("not an id", false); ok {
		t.Fatalf("SelectID(not an id) = %v, want miss", n)
	}
}

func TestDeregister(t *testing.T) {
	t.Parallel()

	tr := parse(t, `<a><b id="k1"/><c id="k2"/></a>`, builder.Options{}, xmlsource.Options{IDAttributes: []string{"id"}})
	tr.Deregister("k1")
	if n, ok := tr.SelectID("k1", false); ok {
		t.Fatalf("SelectID(k1) after Deregister = %v, want miss", n)
	}
	if _, ok := tr.SelectID("k2", false); !ok {
		t.Fatalf("SelectID(k2) missed after deregistering k1")
	}
	tr.ResetIndexes()
	if n, ok := tr.SelectID("k1", false); !ok || n.LocalName() != "b" {
		t.Fatalf("SelectID(k1) after ResetIndexes = %v, %v, want element b", n, ok)
	}
}

func TestSelectIDConcurrent(t *testing.T) {
	t.Parallel()

	tr := parse(t, `<a><b id="k1"/><c id="k2"/><d xml:id="k3"/></a>`, builder.Options{}, xmlsource.Options{IDAttributes: []string{"id"}})
	tr.ResetIndexes()

	want := map[string]string{"k1": "b", "k2": "c", "k3": "d"}
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id, local := range want {
				n, ok := tr.SelectID(id, false)
				if !ok || n.LocalName() != local {
					errs <- id
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for id := range errs {
		t.Fatalf("SelectID(%s) returned the wrong node under concurrency", id)
	}
}
