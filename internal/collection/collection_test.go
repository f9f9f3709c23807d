package collection

import (
	"archive/zip"
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	xdmerrors "github.com/jacoelho/xdm/errors"
	"github.com/jacoelho/xdm/internal/seq"
	"github.com/jacoelho/xdm/internal/tree"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"b.xml":       {Data: []byte(`<b>two</b>`)},
		"a.xml":       {Data: []byte(`<a id="x">one</a>`)},
		"notes.txt":   {Data: []byte("line one\r\nline two\r\n")},
		"blank.txt":   {Data: []byte(" \n\t")},
		"sub/c.xml":   {Data: []byte(`<c/>`)},
		"UPPER.XML":   {Data: []byte(`<u/>`)},
		"broken.data": {Data: []byte("\x00")},
	}
}

func TestOpenBuildsDocuments(t *testing.T) {
	t.Parallel()

	docs, err := seq.Collect(Open(testFS(), Options{Pattern: "*.[tx]*", BaseURI: "mem:///"}))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	var roots []string
	for _, d := range docs {
		require.Equal(t, tree.KindDocument, d.Kind())
		first, ok := d.FirstChild()
		require.True(t, ok)
		if first.Kind() == tree.KindElement {
			roots = append(roots, first.LocalName())
		} else {
			roots = append(roots, first.Kind().String())
		}
	}
	require.Equal(t, []string{"a", "b", "text"}, roots)
	require.Equal(t, "mem:///a.xml", docs[0].BaseURI())
	require.Equal(t, "line one\nline two\n", docs[2].StringValue())
}

func TestOpenSkipsDirectoriesAndBlankEntries(t *testing.T) {
	t.Parallel()

	fsys := testFS()
	delete(fsys, "broken.data")
	all, err := seq.Collect(Open(fsys, Options{}))
	require.NoError(t, err)
	// sub is a directory and blank.txt is whitespace only.
	var names []string
	for _, d := range all {
		names = append(names, d.StringValue())
	}
	require.Equal(t, []string{"", "one", "two", "line one\nline two\n"}, names)

	kept, err := seq.Collect(Open(fsys, Options{Pattern: "blank.txt", KeepBlank: true}))
	require.NoError(t, err)
	require.Len(t, kept, 1)
	require.Equal(t, " \n\t", kept[0].StringValue())
}

func TestOpenXMLExtensions(t *testing.T) {
	t.Parallel()

	docs, err := seq.Collect(Open(testFS(), Options{Pattern: "notes.txt", XMLExtensions: []string{".txt"}}))
	require.Error(t, err)
	require.True(t, xdmerrors.HasCode(err, xdmerrors.ErrXMLParse))
	require.Empty(t, docs)
}

func TestOpenTextErrors(t *testing.T) {
	t.Parallel()

	_, err := seq.Collect(Open(testFS(), Options{Pattern: "broken.data"}))
	require.True(t, xdmerrors.HasCode(err, xdmerrors.ErrTextEncoding))

	_, err = seq.Collect(Open(testFS(), Options{Pattern: "["}))
	require.True(t, xdmerrors.HasCode(err, xdmerrors.ErrIO))
}

func TestOpenAnotherRelists(t *testing.T) {
	t.Parallel()

	fsys := testFS()
	it := Open(fsys, Options{Pattern: "[ab].xml"})
	first, err := seq.Collect(it)
	require.NoError(t, err)
	require.Len(t, first, 2)

	fsys["aa.xml"] = &fstest.MapFile{Data: []byte(`<aa/>`)}
	again, err := seq.Collect(it.Another())
	require.NoError(t, err)
	require.Len(t, again, 2)

	more, err := seq.Collect(Open(fsys, Options{Pattern: "a*.xml"}))
	require.NoError(t, err)
	require.Len(t, more, 2)
	require.NotEqual(t, first[0].Tree().DocumentNumber(), again[0].Tree().DocumentNumber())
}

func TestOpenZip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"doc/one.xml": `<one>1</one>`,
		"doc/two.txt": "2",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	it, err := OpenZip(bytes.NewReader(buf.Bytes()), int64(buf.Len()), Options{Pattern: "doc/*"})
	require.NoError(t, err)
	docs, err := seq.Collect(it)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "1", docs[0].StringValue())
	require.Equal(t, "2", docs[1].StringValue())

	_, err = OpenZip(bytes.NewReader([]byte("not a zip")), 9, Options{})
	require.True(t, xdmerrors.HasCode(err, xdmerrors.ErrIO))
}
