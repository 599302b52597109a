package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jacoelho/jpath/internal/document"
	"github.com/jacoelho/jpath/internal/formatter"
)

var (
	ErrNoQuery            = errors.New("no query provided")
	ErrConflictingOptions = errors.New("--count cannot be combined with --first")
)

// Config represents the configuration of a query run.
type Config struct {
	Query string
	Files []string // empty means stdin

	Format  string
	Output  string
	Debug   bool
	Compact bool
	First   bool // stop after the first match
	Count   bool // print only the number of matches
}

// RegisterFlags binds the configuration to fs.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Format, "format", "f", string(document.FormatAuto), "Input format: "+joinFormats())
	fs.StringVarP(&c.Output, "output", "o", string(formatter.OutputJSON), "Output format: "+joinOutputs())
	fs.BoolVar(&c.Debug, "debug", false, "Log the compiled query and per-document match counts to stderr")
	fs.BoolVarP(&c.Compact, "compact", "c", false, "Print JSON on a single line")
	fs.BoolVar(&c.First, "first", false, "Stop after the first match")
	fs.BoolVar(&c.Count, "count", false, "Print only the number of matches")
}

// SetArgs assigns the positional arguments: the query followed by input files.
func (c *Config) SetArgs(args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return ErrNoQuery
	}
	c.Query = args[0]
	c.Files = args[1:]
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Query == "" {
		return ErrNoQuery
	}
	if _, err := document.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := formatter.ParseOutput(c.Output); err != nil {
		return err
	}
	if c.Count && c.First {
		return ErrConflictingOptions
	}

	for _, file := range c.Files {
		if file == "-" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("input file %s not found: %w", file, err)
		}
	}

	return nil
}

// InputFormat returns the format used to decode filename. An explicit
// --format wins; otherwise the extension decides.
func (c *Config) InputFormat(filename string) document.Format {
	format, err := document.ParseFormat(c.Format)
	if err != nil || format != document.FormatAuto {
		return format
	}
	if filename == "" || filename == "-" {
		return document.FormatAuto
	}
	return document.DetectFormat(filename)
}

// OutputFormat returns the parsed --output value.
func (c *Config) OutputFormat() formatter.Output {
	output, _ := formatter.ParseOutput(c.Output)
	return output
}

func joinFormats() string {
	names := make([]string, len(document.Formats))
	for i, f := range document.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

func joinOutputs() string {
	names := make([]string, len(formatter.Outputs))
	for i, o := range formatter.Outputs {
		names[i] = string(o)
	}
	return strings.Join(names, "|")
}

// Usage returns the long description of the CLI tool.
func Usage() string {
	return `jpath - evaluate RFC 9535 JSONPath queries

Reads JSON, JSON Lines or YAML documents from files or stdin, optionally
gzip or zstd compressed, and prints the nodes a query selects.

Examples:
  jpath query '$.store.book[*].author' books.json
  jpath query '$..price' -o values data.json.gz
  jpath query '$[?@.status == "failed"]' --count events.jsonl
  kubectl get pods -o yaml | jpath query '$.items[*].metadata.name' -o values
  jpath check '$[?length(@.tags) > 2]'
  jpath functions`
}
