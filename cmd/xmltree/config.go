package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jacoelho/xdm"
)

// config mirrors the build and parse options. Unset fields keep the library
// defaults; command line flags override the file.
type config struct {
	ParentPointerInterval  *int     `yaml:"parent_pointer_interval"`
	MaxDepth               *int     `yaml:"max_depth"`
	LineNumbering          *bool    `yaml:"line_numbering"`
	TextualElements        *bool    `yaml:"textual_elements"`
	CompressWhitespace     *bool    `yaml:"compress_whitespace"`
	StripWhitespace        *bool    `yaml:"strip_whitespace"`
	Comments               *bool    `yaml:"comments"`
	ProcessingInstructions *bool    `yaml:"processing_instructions"`
	IDAttributes           []string `yaml:"id_attributes"`
	IDRefAttributes        []string `yaml:"idref_attributes"`
	Encoding               string   `yaml:"encoding"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, usagef("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) parseOptions(logger *slog.Logger) xdm.ParseOptions {
	b := xdm.NewBuildOptions().WithLogger(logger)
	if c.ParentPointerInterval != nil {
		if *c.ParentPointerInterval < 0 {
			b = b.WithoutParentPointers()
		} else {
			b = b.WithParentPointerInterval(*c.ParentPointerInterval)
		}
	}
	if c.MaxDepth != nil {
		b = b.WithMaxDepth(*c.MaxDepth)
	}
	if c.LineNumbering != nil {
		b = b.WithLineNumbering(*c.LineNumbering)
	}
	if c.TextualElements != nil {
		b = b.WithTextualElements(*c.TextualElements)
	}
	if c.CompressWhitespace != nil {
		b = b.WithWhitespaceCompression(*c.CompressWhitespace)
	}

	p := xdm.NewParseOptions().WithBuildOptions(b)
	if c.StripWhitespace != nil {
		p = p.WithStripWhitespace(*c.StripWhitespace)
	}
	if c.Comments != nil {
		p = p.WithComments(*c.Comments)
	}
	if c.ProcessingInstructions != nil {
		p = p.WithProcessingInstructions(*c.ProcessingInstructions)
	}
	if len(c.IDAttributes) > 0 {
		p = p.WithIDAttributes(c.IDAttributes...)
	}
	if len(c.IDRefAttributes) > 0 {
		p = p.WithIDRefAttributes(c.IDRefAttributes...)
	}
	return p
}
