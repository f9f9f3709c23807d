package textlines

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	xdmerrors "github.com/jacoelho/xdm/errors"
	"github.com/jacoelho/xdm/internal/seq"
)

type trackedReader struct {
	*bytes.Reader
	closed *int
}

func (r trackedReader) Close() error {
	*r.closed++
	return nil
}

type tracker struct {
	data   []byte
	opens  int
	closes int
}

func (tr *tracker) open() (io.ReadCloser, error) {
	tr.opens++
	return trackedReader{Reader: bytes.NewReader(tr.data), closed: &tr.closes}, nil
}

func readAll(t *testing.T, open Opener, opts Options) ([]string, error) {
	t.Helper()
	return seq.Collect(Lines(open, opts))
}

func TestLineTerminators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "lf", in: "a\nb\nc", want: []string{"a", "b", "c"}},
		{name: "crlf", in: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "cr", in: "a\rb\r", want: []string{"a", "b"}},
		{name: "mixed", in: "a\r\rb\n\nc\r\n", want: []string{"a", "", "b", "", "c"}},
		{name: "empty", in: "", want: nil},
		{name: "single terminator", in: "\n", want: []string{""}},
		{name: "bom", in: "\ufeffx\ny", want: []string{"x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := &tracker{data: []byte(tt.in)}
			got, err := readAll(t, src.open, Options{})
			require.NoError(t, err)
			if len(tt.want) == 0 {
				require.Empty(t, got)
			} else {
				require.Equal(t, tt.want, got)
			}
			require.Equal(t, 1, src.closes)
		})
	}
}

func TestEncodingLabels(t *testing.T) {
	t.Parallel()

	latin1 := &tracker{data: []byte("caf\xe9\nna\xefve")}
	got, err := readAll(t, latin1.open, Options{Encoding: "iso-8859-1"})
	require.NoError(t, err)
	require.Equal(t, []string{"café", "naïve"}, got)

	utf16 := &tracker{data: []byte{0xFF, 0xFE, 'h', 0, 'i', 0, '\n', 0, '!', 0}}
	got, err = readAll(t, utf16.open, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"hi", "!"}, got)

	explicit := &tracker{data: []byte("\ufeffok")}
	got, err = readAll(t, explicit.open, Options{Encoding: "UTF-8"})
	require.NoError(t, err)
	require.Equal(t, []string{"ok"}, got)
}

func TestUnknownEncoding(t *testing.T) {
	t.Parallel()

	src := &tracker{data: []byte("x")}
	_, err := readAll(t, src.open, Options{Encoding: "no-such-charset", Resource: "r.txt"})
	require.Error(t, err)
	require.True(t, xdmerrors.HasCode(err, xdmerrors.ErrTextEncoding))
	e, ok := xdmerrors.AsError(err)
	require.True(t, ok)
	require.Equal(t, "r.txt", e.Resource)
	require.Zero(t, src.opens)
}

func TestMalformedInput(t *testing.T) {
	t.Parallel()

	src := &tracker{data: []byte("good\nbad \xff\xfe here\n")}
	it := Lines(src.open, Options{Resource: "m.txt"})
	var got []string
	for {
		line, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, line)
	}
	require.Equal(t, []string{"good"}, got)
	require.True(t, xdmerrors.HasCode(it.Err(), xdmerrors.ErrTextMalformed))
	e, _ := xdmerrors.AsError(it.Err())
	require.Equal(t, 2, e.Line)
	require.Equal(t, 1, src.closes)
	require.NoError(t, it.Close())
	require.Equal(t, 1, src.closes)
}

func TestMalformedAfterByteOrderMark(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"", "utf-8"} {
		src := &tracker{data: []byte("\xef\xbb\xbfab\xffc\n")}
		got, err := readAll(t, src.open, Options{Encoding: label})
		require.Empty(t, got, "encoding %q", label)
		require.True(t, xdmerrors.HasCode(err, xdmerrors.ErrTextMalformed), "encoding %q: %v", label, err)
		require.Equal(t, 1, src.closes)
	}
}

func TestCharacterNotAllowedInXML(t *testing.T) {
	t.Parallel()

	src := &tracker{data: []byte("ok\nab\x01c\n")}
	_, err := readAll(t, src.open, Options{})
	require.True(t, xdmerrors.HasCode(err, xdmerrors.ErrTextEncoding))
	e, _ := xdmerrors.AsError(err)
	require.Equal(t, 2, e.Line)
	require.Equal(t, 3, e.Column)
}

func TestOpenFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	open := func() (io.ReadCloser, error) { return nil, cause }
	_, err := readAll(t, open, Options{Resource: "gone.txt"})
	require.True(t, xdmerrors.HasCode(err, xdmerrors.ErrTextResource))
	require.ErrorIs(t, err, cause)
	require.False(t, Available(open, Options{}))
}

func TestAnotherReopens(t *testing.T) {
	t.Parallel()

	src := &tracker{data: []byte("1\n2\n3\n")}
	it := Lines(src.open, Options{})
	first, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, "1", first)

	again, err := seq.Collect(it.Another())
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, again)
	require.Equal(t, 2, src.opens)

	require.NoError(t, it.Close())
	require.Equal(t, 2, src.closes)
}

func TestFSAndAvailable(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"notes.txt": {Data: []byte("alpha\nbeta\n")},
		"bin.dat":   {Data: []byte("\x00\x01")},
	}
	got, err := readAll(t, FS(fsys, "notes.txt"), Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, got)

	require.True(t, Available(FS(fsys, "notes.txt"), Options{}))
	require.False(t, Available(FS(fsys, "bin.dat"), Options{}))
	require.False(t, Available(FS(fsys, "missing.txt"), Options{}))
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func (r *failingReader) Close() error { return nil }

func TestReadFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk gone")
	open := func() (io.ReadCloser, error) {
		return &failingReader{data: []byte("one\ntwo"), err: cause}, nil
	}
	it := Lines(open, Options{})
	line, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, "one", line)
	_, ok = it.Next()
	require.False(t, ok)
	require.True(t, xdmerrors.HasCode(it.Err(), xdmerrors.ErrTextResource))
	require.ErrorIs(t, it.Err(), cause)
}
