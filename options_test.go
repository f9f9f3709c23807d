package xdm_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/jacoelho/xdm"
	xdmerrors "github.com/jacoelho/xdm/errors"
)

func TestBuildOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts xdm.BuildOptions
		ok   bool
	}{
		{name: "default", opts: xdm.NewBuildOptions(), ok: true},
		{name: "interval", opts: xdm.NewBuildOptions().WithParentPointerInterval(3), ok: true},
		{name: "negative interval", opts: xdm.NewBuildOptions().WithParentPointerInterval(-1)},
		{name: "negative depth", opts: xdm.NewBuildOptions().WithMaxDepth(-2)},
		{name: "disabled pointers", opts: xdm.NewBuildOptions().WithoutParentPointers(), ok: true},
	}
	for _, tt := range tests {
		err := tt.opts.Validate()
		if tt.ok && err != nil {
			t.Fatalf("%s: Validate() error = %v", tt.name, err)
		}
		if !tt.ok && !xdmerrors.HasCode(err, xdmerrors.ErrOptionInvalid) {
			t.Fatalf("%s: Validate() error = %v, want %s", tt.name, err, xdmerrors.ErrOptionInvalid)
		}
	}

	popts := xdm.NewParseOptions().WithBuildOptions(xdm.NewBuildOptions().WithMaxDepth(-1))
	if err := popts.Validate(); !xdmerrors.HasCode(err, xdmerrors.ErrOptionInvalid) {
		t.Fatalf("ParseOptions.Validate() error = %v, want %s", err, xdmerrors.ErrOptionInvalid)
	}
	if err := xdm.NewParseOptions().WithIDAttributes("").Validate(); err == nil {
		t.Fatal("Validate() err = nil, want empty ID attribute error")
	}
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	tr, err := xdm.ParseString(`<a><b>text</b> <c/></a>`, xdm.NewParseOptions())
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got := tr.Document().BaseURI(); !strings.HasPrefix(got, "urn:uuid:") {
		t.Fatalf("BaseURI() = %q, want a urn:uuid system ID", got)
	}
	var dump bytes.Buffer
	if err := tr.Dump(&dump); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, kind := range []string{"textual-element", "whitespace-text"} {
		if !strings.Contains(dump.String(), kind) {
			t.Fatalf("Dump() has no %s record with default options:\n%s", kind, dump.String())
		}
	}

	plain := xdm.NewParseOptions().WithBuildOptions(
		xdm.NewBuildOptions().WithTextualElements(false).WithWhitespaceCompression(false).WithSystemID("urn:x"))
	tr, err = xdm.ParseString(`<a><b>text</b> <c/></a>`, plain)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	dump.Reset()
	if err := tr.Dump(&dump); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if strings.Contains(dump.String(), "textual-element") || strings.Contains(dump.String(), "whitespace-text") {
		t.Fatalf("Dump() has compact records with compaction off:\n%s", dump.String())
	}
	if got := tr.Document().BaseURI(); got != "urn:x" {
		t.Fatalf("BaseURI() = %q, want urn:x", got)
	}
}

func TestParseOptionFilters(t *testing.T) {
	t.Parallel()

	doc := "<a> <!--c--><?p d?><b/></a>"
	opts := xdm.NewParseOptions().WithStripWhitespace(true).WithComments(false).WithProcessingInstructions(false)
	tr, err := xdm.ParseString(doc, opts)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	a, _ := tr.Root().FirstChild()
	kids, err := xdm.Count(a.IterateAxis(xdm.Child, nil))
	if err != nil || kids != 1 {
		t.Fatalf("children = %d, %v, want 1", kids, err)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := xdm.ParseString(`<a>`, xdm.NewParseOptions())
	if !xdmerrors.HasCode(err, xdmerrors.ErrXMLParse) {
		t.Fatalf("ParseString() error = %v, want %s", err, xdmerrors.ErrXMLParse)
	}
	opts := xdm.NewParseOptions().WithBuildOptions(xdm.NewBuildOptions().WithMaxDepth(1))
	_, err = xdm.ParseString(`<a><b/></a>`, opts)
	if !xdmerrors.HasCode(err, xdmerrors.ErrDepth) {
		t.Fatalf("ParseString() error = %v, want %s", err, xdmerrors.ErrDepth)
	}
}

func TestSharedNamePoolAndLogger(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pool := xdm.NewNamePool()
	stats := &xdm.Statistics{}
	bopts := xdm.NewBuildOptions().WithNamePool(pool).WithLogger(logger).WithStatistics(stats)
	opts := xdm.NewParseOptions().WithBuildOptions(bopts)

	first, err := xdm.ParseString(`<a/>`, opts)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	second, err := xdm.ParseString(`<a/>`, opts)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if first.Pool() != second.Pool() {
		t.Fatal("trees do not share the configured name pool")
	}
	fa, _ := first.Root().FirstChild()
	sa, _ := second.Root().FirstChild()
	if fa.Fingerprint() < 0 || fa.Fingerprint() != sa.Fingerprint() {
		t.Fatal("same name has different fingerprints in a shared pool")
	}
	if c := first.Root().Compare(second.Root()); c >= 0 {
		t.Fatalf("Compare() across trees = %d, want the first tree first", c)
	}
	if stats.Trees() != 2 {
		t.Fatalf("Trees() = %d, want 2", stats.Trees())
	}
	if !strings.Contains(logs.String(), "tree built") {
		t.Fatalf("logs = %q, want a tree built record", logs.String())
	}
}
