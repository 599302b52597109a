package jsonpath

import (
	"fmt"
)

// Mapping is implemented by ordered object representations. Members are
// visited in Keys order. Plain map[string]any values are visited in sorted
// key order instead.
type Mapping interface {
	Keys() []string
	Lookup(key string) (any, bool)
}

// AbsentValue is the type of Absent.
type AbsentValue struct{}

func (AbsentValue) String() string { return "Absent" }

// Absent denotes that no value was found, for example the result of
// length() on a number or value() on an empty node list. It is distinct
// from nil, which is JSON null.
var Absent = AbsentValue{}

// Node is a value selected by a query together with its location.
type Node struct {
	// Value references the selected part of the input, it is never copied.
	Value any
	// Location holds one string (member name) or int (element index) per
	// step from the root.
	Location []any
	// Root is the whole input the query was resolved against.
	Root any
}

// Path returns the normalized path of the node, such as $['a'][0].
func (n Node) Path() string {
	return CanonicalPath(n.Location)
}

// child returns the node for the member or element key of n.
func (n Node) child(value, key any) Node {
	location := make([]any, len(n.Location)+1)
	copy(location, n.Location)
	location[len(n.Location)] = key
	return Node{Value: value, Location: location, Root: n.Root}
}

// NodeList is the ordered result of resolving a query.
type NodeList []Node

// Values returns the value of every node.
func (l NodeList) Values() []any {
	values := make([]any, len(l))
	for i, n := range l {
		values[i] = n.Value
	}
	return values
}

// Paths returns the normalized path of every node.
func (l NodeList) Paths() []string {
	paths := make([]string, len(l))
	for i, n := range l {
		paths[i] = n.Path()
	}
	return paths
}

// Empty reports whether the list holds no node.
func (l NodeList) Empty() bool {
	return len(l) == 0
}

type options struct {
	funcs Registry
}

// Option configures compilation and resolution.
type Option func(*options)

// WithFunctions replaces the function registry. A query must be resolved
// with the registry it was compiled against, or one declaring the same
// signatures.
func WithFunctions(funcs Registry) Option {
	return func(o *options) {
		o.funcs = funcs
	}
}

// Query is a compiled JSONPath query. It is immutable and safe for
// concurrent use.
type Query struct {
	text     string
	segments []segment
	funcs    Registry
}

// Compile parses and type-checks query. Errors are of type *Error and wrap
// ErrSyntax, ErrType or ErrName.
func Compile(query string, opts ...Option) (*Query, error) {
	o := newOptions(nil, opts)

	segments, err := parse(query, o.funcs)
	if err != nil {
		return nil, err
	}
	return &Query{text: query, segments: segments, funcs: o.funcs}, nil
}

// MustCompile is like Compile but panics if the query cannot be compiled.
func MustCompile(query string, opts ...Option) *Query {
	q, err := Compile(query, opts...)
	if err != nil {
		panic(fmt.Sprintf("jsonpath: Compile(%q): %v", query, err))
	}
	return q
}

func (q *Query) String() string {
	return q.text
}

// Resolve applies the query to data. The input is only read. The result
// is fresh on every call. An error, wrapping ErrEvaluation, is only
// possible when WithFunctions supplies a registry that does not declare
// the functions the query was compiled against.
func (q *Query) Resolve(data any, opts ...Option) (NodeList, error) {
	o := newOptions(q.funcs, opts)

	ev := &evaluator{query: q.text, funcs: o.funcs}
	root := Node{Value: data, Location: []any{}, Root: data}
	return ev.resolve(q.segments, NodeList{root})
}

// Find compiles query and resolves it against data.
func Find(query string, data any, opts ...Option) (NodeList, error) {
	q, err := Compile(query, opts...)
	if err != nil {
		return nil, err
	}
	return q.Resolve(data, opts...)
}

// standardFunctions is shared by queries compiled without WithFunctions.
// The regular expression caches it holds are safe for concurrent use.
var standardFunctions = StandardFunctions()

func newOptions(funcs Registry, opts []Option) options {
	o := options{funcs: funcs}
	for _, opt := range opts {
		opt(&o)
	}
	if o.funcs == nil {
		o.funcs = standardFunctions
	}
	return o
}
