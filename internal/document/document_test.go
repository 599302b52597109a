package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/jacoelho/jpath/internal/jsonpath"
)

func decodeAll(t *testing.T, r io.Reader, format Format) []any {
	t.Helper()

	dec, err := NewDecoder(r, format)
	if err != nil {
		t.Fatalf("NewDecoder() error: %v", err)
	}

	var docs []any
	for {
		doc, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return docs
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		docs = append(docs, doc)
	}
}

func TestDecodeJSONPreservesOrder(t *testing.T) {
	t.Parallel()

	docs := decodeAll(t, strings.NewReader(`{"z":1,"a":{"y":[true,null,"s"],"b":2.50}}`), FormatJSON)
	if len(docs) != 1 {
		t.Fatalf("documents = %d, want 1", len(docs))
	}

	obj, ok := docs[0].(*Object)
	if !ok {
		t.Fatalf("document = %T, want *Object", docs[0])
	}
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"z", "a"}) {
		t.Errorf("Keys() = %v, want [z a]", got)
	}
	if v, _ := obj.Lookup("z"); v != json.Number("1") {
		t.Errorf("z = %#v, want json.Number(1)", v)
	}

	inner, _ := obj.Lookup("a")
	if got := inner.(*Object).Keys(); !reflect.DeepEqual(got, []string{"y", "b"}) {
		t.Errorf("inner Keys() = %v, want [y b]", got)
	}
	if y, _ := inner.(*Object).Lookup("y"); !reflect.DeepEqual(y, []any{true, nil, "s"}) {
		t.Errorf("y = %#v", y)
	}

	out, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := `{"z":1,"a":{"y":[true,null,"s"],"b":2.50}}`; string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}
}

func TestDecodeJSONStream(t *testing.T) {
	t.Parallel()

	docs := decodeAll(t, strings.NewReader("1 \"two\"\n[3]\n"), FormatJSON)
	want := []any{json.Number("1"), "two", []any{json.Number("3")}}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("documents = %#v, want %#v", docs, want)
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	t.Parallel()

	dec, err := NewDecoder(strings.NewReader(`{"a":1} {"b":`), FormatJSON)
	if err != nil {
		t.Fatalf("NewDecoder() error: %v", err)
	}
	if _, err := dec.Next(); err != nil {
		t.Fatalf("first Next() error: %v", err)
	}
	if _, err := dec.Next(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("second Next() error = %v, want %v", err, ErrMalformed)
	}
}

func TestDecodeJSONLines(t *testing.T) {
	t.Parallel()

	docs := decodeAll(t, strings.NewReader("{\"a\":1}\n\n  [2]\n\"x\""), FormatJSONL)
	if len(docs) != 3 {
		t.Fatalf("documents = %d, want 3", len(docs))
	}
	if docs[2] != "x" {
		t.Errorf("last document = %#v, want x", docs[2])
	}

	dec, _ := NewDecoder(strings.NewReader("1\n{\n"), FormatJSONL)
	if _, err := dec.Next(); err != nil {
		t.Fatalf("first Next() error: %v", err)
	}
	_, err := dec.Next()
	if !errors.Is(err, ErrMalformed) || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Next() error = %v, want malformed line 2", err)
	}
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	input := "z: 1\na:\n  - x\n  - {y: true}\n1: one\n---\n- 2.5\n- null\n"
	docs := decodeAll(t, strings.NewReader(input), FormatYAML)
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}

	obj := docs[0].(*Object)
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"z", "a", "1"}) {
		t.Errorf("Keys() = %v, want [z a 1]", got)
	}

	nodes, err := jsonpath.Find("$.a[1].y", docs[0])
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if !reflect.DeepEqual(nodes.Values(), []any{true}) {
		t.Errorf("Find() = %v, want [true]", nodes.Values())
	}

	if got := docs[1]; !reflect.DeepEqual(got, []any{2.5, nil}) {
		t.Errorf("second document = %#v", got)
	}
}

func TestDecodeAutoFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "json_object", input: "  \n{\"a\":[1]}", want: []string{"$['a']"}},
		{name: "json_array", input: "[\"a\", 2]", want: []string{"$[0]", "$[1]"}},
		{name: "yaml_mapping", input: "a: [1]\nb: 2\n", want: []string{"$['a']", "$['b']"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			docs := decodeAll(t, strings.NewReader(tt.input), FormatAuto)
			nodes, err := jsonpath.Find("$.*", docs[0])
			if err != nil {
				t.Fatalf("Find() error: %v", err)
			}
			if got := nodes.Paths(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Find() paths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"auto", "json", "JSONL", "yaml"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) error: %v", name, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(xml) error = %v, want %v", err, ErrUnsupportedFormat)
	}
	if _, err := NewDecoder(strings.NewReader(""), Format("xml")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NewDecoder(xml) error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"data.json":        FormatJSON,
		"data.JSON.gz":     FormatJSON,
		"events.jsonl.zst": FormatJSONL,
		"events.ndjson":    FormatJSONL,
		"config.yml":       FormatYAML,
		"config.yaml.gz":   FormatYAML,
		"README":           FormatAuto,
	}
	for name, want := range tests {
		if got := DetectFormat(name); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestOpenDecompresses(t *testing.T) {
	t.Parallel()

	const payload = `{"compressed":true}`

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write([]byte(payload)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	zst := enc.EncodeAll([]byte(payload), nil)
	enc.Close()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "plain", input: []byte(payload)},
		{name: "gzip", input: gz.Bytes()},
		{name: "zstd", input: zst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rc, err := Open(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer rc.Close()

			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll() error: %v", err)
			}
			if string(got) != payload {
				t.Errorf("Open() content = %q, want %q", got, payload)
			}
		})
	}
}

func TestToYAML(t *testing.T) {
	t.Parallel()

	obj := NewObject(2)
	obj.Set("b", json.Number("2"))
	obj.Set("a", []any{json.Number("1.5"), "x"})
	obj.Set("b", json.Number("3"))

	out, err := yaml.Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := "b: 3\na:\n- 1.5\n- x\n"; string(out) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", out, want)
	}
}
