package stdout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/jpath/internal/document"
	"github.com/jacoelho/jpath/internal/formatter"
	"github.com/jacoelho/jpath/internal/stream"
)

// Options controls how results are rendered.
type Options struct {
	Output  formatter.Output
	Compact bool // single-line JSON
	Count   bool // print only the number of results
}

// Formatter writes results to an io.Writer.
type Formatter struct {
	writer io.Writer
	opts   Options
}

// NewWithWriter creates a formatter with a custom writer.
func NewWithWriter(writer io.Writer, opts Options) formatter.Formatter {
	if opts.Output == "" {
		opts.Output = formatter.OutputJSON
	}
	return &Formatter{
		writer: writer,
		opts:   opts,
	}
}

func (f *Formatter) Format(results ...stream.Result) error {
	if f.opts.Count {
		_, err := fmt.Fprintln(f.writer, len(results))
		return err
	}

	switch f.opts.Output {
	case formatter.OutputJSON:
		return f.formatJSON(results)
	case formatter.OutputValues:
		return f.formatValues(results)
	case formatter.OutputPaths:
		return f.formatPaths(results)
	case formatter.OutputYAML:
		return f.formatYAML(results)
	}
	return fmt.Errorf("%w: %q", formatter.ErrUnsupportedOutput, f.opts.Output)
}

func (f *Formatter) formatJSON(results []stream.Result) error {
	enc := json.NewEncoder(f.writer)
	enc.SetEscapeHTML(false)
	if !f.opts.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(values(results))
}

func (f *Formatter) formatValues(results []stream.Result) error {
	enc := json.NewEncoder(f.writer)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(r.Value); err != nil {
			return fmt.Errorf("encode %s: %w", r.Path, err)
		}
	}
	return nil
}

// formatPaths prefixes each path with its document index once results span
// more than one document.
func (f *Formatter) formatPaths(results []stream.Result) error {
	multi := false
	for _, r := range results {
		if r.Document != results[0].Document {
			multi = true
			break
		}
	}

	var buf bytes.Buffer
	for _, r := range results {
		if multi {
			fmt.Fprintf(&buf, "%d\t", r.Document)
		}
		buf.WriteString(r.Path)
		buf.WriteByte('\n')
	}
	_, err := f.writer.Write(buf.Bytes())
	return err
}

func (f *Formatter) formatYAML(results []stream.Result) error {
	out, err := yaml.Marshal(document.ToYAML(values(results)))
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err = f.writer.Write(out)
	return err
}

func values(results []stream.Result) []any {
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}
