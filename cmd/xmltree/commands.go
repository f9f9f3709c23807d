package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jacoelho/xdm"
)

type rootOptions struct {
	configPath    string
	idAttributes  []string
	lineNumbering bool
	verbose       bool

	cfg    config
	logger *slog.Logger
	prof   *profiler
}

// newRootCommand builds the command tree. The caller stops prof once the
// command has run, whether or not it failed.
func newRootCommand(stderr io.Writer, prof *profiler) *cobra.Command {
	opts := &rootOptions{prof: prof}
	cmd := &cobra.Command{
		Use:           "xmltree",
		Short:         "Inspect XML documents as compact node trees",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q", args[0])
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd, stderr)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML file with build and parse options")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log build and index diagnostics to stderr")
	flags.StringSliceVar(&opts.idAttributes, "id-attr", nil, "attribute names holding IDs (xml:id always does)")
	flags.BoolVar(&opts.lineNumbering, "line-numbers", false, "keep node line numbers")
	flags.StringVar(&prof.cpuPath, "cpuprofile", "", "write CPU profile to file")
	flags.StringVar(&prof.memPath, "memprofile", "", "write memory profile to file")

	cmd.AddCommand(newDumpCommand(opts))
	cmd.AddCommand(newSelectCommand(opts))
	cmd.AddCommand(newIDCommand(opts))
	cmd.AddCommand(newLinesCommand(opts))
	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("id-attr") {
		cfg.IDAttributes = o.idAttributes
	}
	if cmd.Flags().Changed("line-numbers") {
		cfg.LineNumbering = &o.lineNumbering
	}
	o.cfg = cfg
	o.logger = newLogger(stderr, o.verbose)
	return o.prof.start()
}

func (o *rootOptions) parse(path string) (*xdm.Tree, error) {
	opts := o.cfg.parseOptions(o.logger)
	if err := opts.Validate(); err != nil {
		return nil, usagef("invalid options: %w", err)
	}
	return xdm.ParseFile(path, opts)
}

func newDumpCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <document.xml>",
		Short: "Print the node records of a document",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.parse(args[0])
			if err != nil {
				return err
			}
			return t.Dump(cmd.OutOrStdout())
		},
	}
}

type selectOptions struct {
	axis string
	kind string
	name string
	from string
}

func newSelectCommand(opts *rootOptions) *cobra.Command {
	sel := &selectOptions{}
	cmd := &cobra.Command{
		Use:   "select <document.xml>",
		Short: "Print the nodes on an axis",
		Long: `Print the path and kind of the nodes on an axis, in axis order.

The axis starts at the document node, or at the element with the ID
given by --from.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, sel, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sel.axis, "axis", "descendant-or-self", "XPath axis name")
	cmd.Flags().StringVar(&sel.kind, "kind", "", "node kind test (element, attribute, text, comment, ...)")
	cmd.Flags().StringVar(&sel.name, "name", "", "local name test; implies --kind element unless set")
	cmd.Flags().StringVar(&sel.from, "from", "", "start at the element with this ID")
	return cmd
}

func (s *selectOptions) test() (xdm.NodeTest, error) {
	if s.kind == "" && s.name == "" {
		return nil, nil
	}
	kind := xdm.ElementNode
	if s.kind != "" {
		k, ok := xdm.ParseKind(s.kind)
		if !ok {
			return nil, usagef("unknown node kind %q", s.kind)
		}
		kind = k
	}
	if s.name == "" {
		return xdm.KindTest(kind), nil
	}
	return xdm.NameTest{Kind: kind, Namespace: "*", Local: s.name}, nil
}

func runSelect(opts *rootOptions, sel *selectOptions, path string, w io.Writer) error {
	axis, ok := xdm.ParseAxis(sel.axis)
	if !ok {
		return usagef("unknown axis %q", sel.axis)
	}
	test, err := sel.test()
	if err != nil {
		return err
	}
	t, err := opts.parse(path)
	if err != nil {
		return err
	}
	start := t.Document()
	if sel.from != "" {
		found, err := xdm.ID(t, sel.from)
		if err != nil {
			return err
		}
		n, ok, err := xdm.First(found)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no element with ID %q in %s", sel.from, path)
		}
		start = n
	}
	it := start.IterateAxis(axis, test)
	defer it.Close()
	for n := range xdm.All(it) {
		if err := writef(w, "%s\t%s\n", n.Path(), n.Kind()); err != nil {
			return err
		}
	}
	return nil
}

func newIDCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "id <document.xml> <value>...",
		Short: "Print the elements carrying the given IDs",
		Args:  minimumArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.parse(args[0])
			if err != nil {
				return err
			}
			found, err := xdm.ID(t, args[1:]...)
			if err != nil {
				return err
			}
			nodes, err := xdm.Collect(found)
			if err != nil {
				return err
			}
			for _, n := range nodes {
				if err := writeln(cmd.OutOrStdout(), n.Path()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newLinesCommand(opts *rootOptions) *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "lines <file>",
		Short: "Print a text file line by line as unparsed text",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := encoding
			if !cmd.Flags().Changed("encoding") {
				enc = opts.cfg.Encoding
			}
			path := args[0]
			it := xdm.UnparsedTextLines(os.DirFS(filepath.Dir(path)), filepath.Base(path), enc)
			defer it.Close()
			n := 0
			for line := range xdm.All(it) {
				n++
				if err := writeln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}
			if err := it.Err(); err != nil {
				return err
			}
			opts.logger.Debug("lines read", slog.String("file", path), slog.Int("lines", n))
			return nil
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", "", "encoding label (default UTF-8)")
	return cmd
}
