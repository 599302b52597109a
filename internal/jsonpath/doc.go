// Package jsonpath compiles and evaluates RFC 9535 JSONPath queries.
//
// Queries are compiled once with Compile, which tokenizes, parses and
// type-checks the query, then resolved any number of times against decoded
// JSON values:
//
//	q, err := jsonpath.Compile(`$.store.book[?@.price < 10].title`)
//	if err != nil {
//		return err
//	}
//	nodes, err := q.Resolve(data)
//
// Input values are nil, bool, string, numbers of any Go numeric type or
// json.Number, []any, map[string]any and any type implementing Mapping.
// Members of a map[string]any are visited in sorted key order.
//
// Supported selectors (RFC 9535 terminology):
//   - Child `.name`, `[...]` and descendant `..` segments
//   - Name, index, wildcard `*`, slice `start:end:step` and filter `?expr`
//   - Filter expressions with `== != < <= > >=`, `&& || !`, grouping and
//     the function extensions count, length, match, search and value
//
// Descendant segments walk the input with an explicit work stack, so input
// depth does not grow the call stack there. Call stack use is bounded by the
// nesting depth of the query (filters, groups, nested queries and function
// arguments) plus, for == and != on arrays or objects, the nesting depth of
// the compared values. Deeply nested inputs are also decoded recursively by
// the document package.
//
// Compilation errors are of type *Error and wrap ErrSyntax, ErrType or
// ErrName. Selecting something that does not exist is not an error: it
// simply yields no node.
package jsonpath
