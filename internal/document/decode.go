package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/valyala/fastjson"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMalformed         = errors.New("malformed document")
)

// Format names an input encoding.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted input formats.
var Formats = []Format{FormatAuto, FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// DetectFormat guesses the format of a file from its extension, ignoring a
// trailing compression extension. Unknown extensions yield FormatAuto.
func DetectFormat(filename string) Format {
	name := strings.ToLower(filename)
	for _, ext := range []string{".gz", ".zst"} {
		name = strings.TrimSuffix(name, ext)
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// Decoder reads successive documents. Next returns io.EOF once the input
// is exhausted.
type Decoder interface {
	Next() (any, error)
}

// NewDecoder returns a decoder for format. FormatAuto sniffs the first
// significant byte: '{' or '[' selects JSON, anything else YAML.
func NewDecoder(r io.Reader, format Format) (Decoder, error) {
	br := bufio.NewReader(r)

	if format == FormatAuto {
		format = sniff(br)
	}

	switch format {
	case FormatJSON:
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("read json: %w", err)
		}
		d := &jsonDecoder{}
		d.scanner.InitBytes(data)
		return d, nil
	case FormatJSONL:
		return &jsonLinesDecoder{reader: br}, nil
	case FormatYAML:
		return &yamlDecoder{decoder: yaml.NewDecoder(br, yaml.UseOrderedMap())}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func sniff(br *bufio.Reader) Format {
	for n := 1; ; n++ {
		peek, err := br.Peek(n)
		if len(peek) < n || err != nil {
			return FormatYAML
		}
		switch peek[n-1] {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return FormatJSON
		}
		return FormatYAML
	}
}

// jsonDecoder reads a stream of whitespace separated JSON values.
type jsonDecoder struct {
	scanner fastjson.Scanner
	count   int
}

func (d *jsonDecoder) Next() (any, error) {
	if !d.scanner.Next() {
		if err := d.scanner.Error(); err != nil {
			return nil, fmt.Errorf("%w: json document %d: %v", ErrMalformed, d.count+1, err)
		}
		return nil, io.EOF
	}
	d.count++
	return FromFastJSON(d.scanner.Value())
}

// jsonLinesDecoder reads one JSON value per line, skipping blank lines.
type jsonLinesDecoder struct {
	reader *bufio.Reader
	parser fastjson.Parser
	line   int
}

func (d *jsonLinesDecoder) Next() (any, error) {
	for {
		line, err := d.reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read jsonl: %w", err)
		}
		d.line++

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		v, perr := d.parser.ParseBytes(line)
		if perr != nil {
			return nil, fmt.Errorf("%w: jsonl line %d: %v", ErrMalformed, d.line, perr)
		}
		return FromFastJSON(v)
	}
}

// yamlDecoder reads the documents of a YAML stream.
type yamlDecoder struct {
	decoder *yaml.Decoder
	count   int
}

func (d *yamlDecoder) Next() (any, error) {
	var v any
	if err := d.decoder.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: yaml document %d: %v", ErrMalformed, d.count+1, err)
	}
	d.count++
	return FromYAML(v), nil
}

// FromFastJSON converts a parsed value. Objects become *Object preserving
// member order and numbers become json.Number holding the source text.
func FromFastJSON(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil, nil
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	case fastjson.TypeNumber:
		return json.Number(v.MarshalTo(nil)), nil
	case fastjson.TypeString:
		s, err := v.StringBytes()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return string(s), nil
	case fastjson.TypeArray:
		elems, err := v.Array()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		out := make([]any, len(elems))
		for i, elem := range elems {
			if out[i], err = FromFastJSON(elem); err != nil {
				return nil, err
			}
		}
		return out, nil
	case fastjson.TypeObject:
		members, err := v.Object()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		obj := NewObject(members.Len())
		members.Visit(func(key []byte, member *fastjson.Value) {
			if err != nil {
				return
			}
			var value any
			if value, err = FromFastJSON(member); err == nil {
				obj.Set(string(key), value)
			}
		})
		if err != nil {
			return nil, err
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: unexpected json type %s", ErrMalformed, v.Type())
}

// FromYAML converts a value decoded with yaml.UseOrderedMap. Ordered maps
// become *Object; non-string keys are rendered with fmt.Sprint.
func FromYAML(value any) any {
	switch v := value.(type) {
	case yaml.MapSlice:
		obj := NewObject(len(v))
		for _, item := range v {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprint(item.Key)
			}
			obj.Set(key, FromYAML(item.Value))
		}
		return obj
	case map[string]any:
		obj := NewObject(len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			obj.Set(k, FromYAML(v[k]))
		}
		return obj
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = FromYAML(elem)
		}
		return out
	}
	return value
}
