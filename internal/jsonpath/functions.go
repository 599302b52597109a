package jsonpath

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// Sort is the static type of a filter sub-expression or function parameter.
type Sort uint8

const (
	// SortValue is a single JSON value or Absent.
	SortValue Sort = iota + 1
	// SortLogical is a boolean test result.
	SortLogical
	// SortNodes is a NodeList.
	SortNodes
)

func (s Sort) String() string {
	switch s {
	case SortValue:
		return "ValueType"
	case SortLogical:
		return "LogicalType"
	case SortNodes:
		return "NodesType"
	}
	return "InvalidType"
}

// Function is a filter function extension. Call receives one argument per
// entry in Params. SortNodes parameters get the NodeList. SortValue and
// SortLogical parameters get a query result unpacked: Absent for no node,
// the value of a single node, the NodeList otherwise. Comparisons and
// logical operators pass their bool. Call must return a value or Absent for
// SortValue, a bool for SortLogical and a NodeList for SortNodes.
type Function struct {
	Params []Sort
	Result Sort
	Call   func(args ...any) any
}

// Signature renders f as name(ParamType, ...) ResultType.
func (f Function) Signature(name string) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s(%s) %s", name, strings.Join(params, ", "), f.Result)
}

// Registry maps function names to their definitions. The registry used to
// compile a query is used to resolve it unless WithFunctions overrides it.
type Registry map[string]Function

// Names returns the registered function names in lexical order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// StandardFunctions returns a new registry holding the built-in functions
// count, length, match, search and value. Callers may add or replace
// entries and pass the result to WithFunctions. Each call returns
// independent regular expression caches.
func StandardFunctions() Registry {
	return Registry{
		"count": {
			Params: []Sort{SortNodes},
			Result: SortValue,
			Call:   countFunc,
		},
		"length": {
			Params: []Sort{SortValue},
			Result: SortValue,
			Call:   lengthFunc,
		},
		"match": {
			Params: []Sort{SortValue, SortValue},
			Result: SortLogical,
			Call:   newRegexpCache(defaultRegexpCacheSize, true).call,
		},
		"search": {
			Params: []Sort{SortValue, SortValue},
			Result: SortLogical,
			Call:   newRegexpCache(defaultRegexpCacheSize, false).call,
		},
		"value": {
			Params: []Sort{SortNodes},
			Result: SortValue,
			Call:   valueFunc,
		},
	}
}

func countFunc(args ...any) any {
	nodes, _ := args[0].(NodeList)
	return len(nodes)
}

// lengthFunc counts code points of a string, elements of a sequence and
// members of a mapping. Any other value has no length.
func lengthFunc(args ...any) any {
	switch v := args[0].(type) {
	case string:
		return utf8.RuneCountInString(v)
	case []any:
		return len(v)
	}
	if obj, ok := asMapping(args[0]); ok {
		return len(obj.Keys())
	}
	return Absent
}

func valueFunc(args ...any) any {
	nodes, _ := args[0].(NodeList)
	if len(nodes) == 1 {
		return nodes[0].Value
	}
	return Absent
}
