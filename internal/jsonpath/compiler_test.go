package jsonpath

import (
	"errors"
	"testing"
)

func TestCompileValid(t *testing.T) {
	t.Parallel()

	queries := []string{
		"$",
		"$.a",
		"$.a.b.c",
		"$..a",
		"$..*",
		"$..[0]",
		"$.*",
		"$['a']",
		`$["a"]`,
		"$['a','b']",
		"$[0]",
		"$[-1]",
		"$[1:2]",
		"$[::-1]",
		"$[:]",
		"$[1:]",
		"$[:2:]",
		"$[ 1 : 2 : 3 ]",
		"$[ 'a' , 0 ]",
		"$ .a",
		"$.a [0]",
		"$[*]",
		"$.true",
		"$.null",
		"$[9007199254740991]",
		"$[-9007199254740991]",
		"$[?@.a]",
		"$[?(@.a)]",
		"$[?!@.a]",
		"$[?@.a == 1]",
		"$[?@.a == -0]",
		"$[?@.a == 1.5e3]",
		"$[?@.a == 'x' && @.b != null]",
		"$[?@.a < 1 || @.b >= 2]",
		"$[?@.a == $.b]",
		"$[?@[0] == @['x']]",
		"$[?@.a == true]",
		"$[?@.*]",
		"$[?@..a]",
		"$[?!(@.a == 1)]",
		"$[? @.a ]",
		"$[?length(@) < 3]",
		"$[?count(@.*) == 1]",
		"$[?match(@.timezone, 'Europe/.*')]",
		"$[?search(@.b, '[jk]')]",
		"$[?value(@..color) == 'red']",
		"$[?length(@.a) == length(@.b)]",
		"$..book[?@.price < 10].title",
		"$[?@.a[?@.b]]",
	}

	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			t.Parallel()

			q, err := Compile(query)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", query, err)
			}
			if q.String() != query {
				t.Errorf("String() = %q, want %q", q.String(), query)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		kind    error
		message string
	}{
		{name: "empty", query: "", kind: ErrSyntax, message: "unexpected end of query"},
		{name: "missing_root", query: "a.b", kind: ErrSyntax, message: "expected '$', found name"},
		{name: "leading_whitespace", query: " $", kind: ErrSyntax},
		{name: "trailing_whitespace", query: "$.a ", kind: ErrSyntax, message: "unexpected trailing whitespace"},
		{name: "space_after_dot", query: "$. a", kind: ErrSyntax, message: "expected a name or '*', found whitespace"},
		{name: "dot_index", query: "$.1", kind: ErrSyntax},
		{name: "trailing_dot", query: "$.a.", kind: ErrSyntax, message: "unexpected end of query"},
		{name: "trailing_double_dot", query: "$..", kind: ErrSyntax},
		{name: "empty_brackets", query: "$[]", kind: ErrSyntax, message: "empty bracketed segment"},
		{name: "trailing_comma", query: "$['a',]", kind: ErrSyntax, message: "unexpected trailing comma"},
		{name: "unclosed_bracket", query: "$['a'", kind: ErrSyntax, message: "unclosed bracketed segment"},
		{name: "missing_comma", query: "$[0 1]", kind: ErrSyntax, message: "expected ',' or ']', found integer"},
		{name: "leading_zero_index", query: "$[01]", kind: ErrSyntax, message: `invalid index "01"`},
		{name: "negative_zero_index", query: "$[-0]", kind: ErrSyntax, message: `invalid index "-0"`},
		{name: "index_too_large", query: "$[9007199254740992]", kind: ErrSyntax, message: "index out of range"},
		{name: "slice_bound_too_small", query: "$[:-9007199254740992]", kind: ErrSyntax, message: "index out of range"},
		{name: "float_index", query: "$[1.5]", kind: ErrSyntax},
		{name: "unknown_token", query: "$[?@.a = 1]", kind: ErrSyntax, message: "unknown token '=', did you mean '=='?"},
		{name: "unclosed_string", query: "$['a]", kind: ErrSyntax, message: "unclosed string literal"},
		{name: "invalid_escape", query: `$['\a']`, kind: ErrSyntax, message: `invalid escape sequence "\\a"`},
		{name: "wrong_quote_escape", query: `$['\"']`, kind: ErrSyntax},
		{name: "lone_low_surrogate", query: `$['\uDC00']`, kind: ErrSyntax, message: "unexpected low surrogate"},
		{name: "unpaired_high_surrogate", query: `$['\uD800x']`, kind: ErrSyntax, message: "unpaired high surrogate"},
		{name: "bad_low_surrogate", query: `$['\uD800\u0041']`, kind: ErrSyntax, message: "invalid low surrogate"},
		{name: "short_unicode_escape", query: `$['\u12']`, kind: ErrSyntax, message: `invalid \u escape sequence`},
		{name: "unbalanced_parentheses", query: "$[?(@.a", kind: ErrSyntax, message: "unbalanced parentheses"},
		{name: "missing_right_paren", query: "$[?(@.a]", kind: ErrSyntax, message: "expected ')', found ']'"},
		{name: "chained_comparison", query: "$[?@.a == @.b == @.c]", kind: ErrSyntax, message: "comparison operators are non-associative, use parentheses"},
		{name: "leading_zero_number", query: "$[?@.a == 01]", kind: ErrSyntax, message: `invalid number literal "01"`},
		{name: "bare_name", query: "$[?foo]", kind: ErrSyntax, message: `unexpected name "foo", expected a literal, query or function call`},
		{name: "filter_without_expression", query: "$[?]", kind: ErrSyntax},

		{name: "bare_literal", query: "$[?1]", kind: ErrType, message: "filter expression literals must be compared"},
		{name: "bare_literal_in_and", query: "$[?@.a && true]", kind: ErrType, message: "filter expression literals must be compared"},
		{name: "bare_literal_negated", query: "$[?!'x']", kind: ErrType, message: "filter expression literals must be compared"},
		{name: "parenthesized_literal", query: "$[?(1)]", kind: ErrType, message: "filter expression literals must be compared"},
		{name: "non_singular_comparison", query: "$[?@.* == 1]", kind: ErrType, message: "non-singular query is not comparable"},
		{name: "descendant_comparison", query: "$[?@..a == 1]", kind: ErrType, message: "non-singular query is not comparable"},
		{name: "comparison_of_logical", query: "$[?(@.a == 1) == true]", kind: ErrType, message: "logical expression is not comparable"},
		{name: "length_non_singular", query: "$[?length(@.*) < 3]", kind: ErrType, message: "length() argument 1 must be of ValueType"},
		{name: "count_literal", query: "$[?count(1) == 1]", kind: ErrType, message: "count() argument 1 must be of NodesType"},
		{name: "match_compared", query: "$[?match(@.a, 'x') == true]", kind: ErrType, message: "result of match() is not comparable"},
		{name: "value_not_compared", query: "$[?value(@..color)]", kind: ErrType, message: "result of value() must be compared"},
		{name: "too_few_arguments", query: "$[?length() == 1]", kind: ErrType, message: "length() takes 1 argument (0 given)"},
		{name: "too_many_arguments", query: "$[?match(@.a, 'a', 'b')]", kind: ErrType, message: "match() takes 2 arguments (3 given)"},

		{name: "unknown_function", query: "$[?nope(@.a)]", kind: ErrName, message: "unknown function nope()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.query)
			if err == nil {
				t.Fatalf("Compile(%q) expected error", tt.query)
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Compile(%q) error = %v, want %v", tt.query, err, tt.kind)
			}

			var pathErr *Error
			if !errors.As(err, &pathErr) {
				t.Fatalf("Compile(%q) error type = %T, want *Error", tt.query, err)
			}
			if tt.message != "" && pathErr.Message != tt.message {
				t.Errorf("Compile(%q) message = %q, want %q", tt.query, pathErr.Message, tt.message)
			}
			if pathErr.Query != tt.query {
				t.Errorf("Compile(%q) error query = %q", tt.query, pathErr.Query)
			}
		})
	}
}

// testFunctions extends the standard registry with functions of every
// parameter and result sort.
func testFunctions() Registry {
	funcs := StandardFunctions()
	funcs["nn"] = Function{
		Params: []Sort{SortNodes},
		Result: SortNodes,
		Call:   func(args ...any) any { return args[0] },
	}
	funcs["vl"] = Function{
		Params: []Sort{SortValue},
		Result: SortLogical,
		Call:   func(args ...any) any { return args[0] != Absent },
	}
	funcs["nl"] = Function{
		Params: []Sort{SortNodes},
		Result: SortLogical,
		Call: func(args ...any) any {
			nodes, _ := args[0].(NodeList)
			return len(nodes) > 1
		},
	}
	funcs["ll"] = Function{
		Params: []Sort{SortLogical},
		Result: SortLogical,
		Call: func(args ...any) any {
			switch v := args[0].(type) {
			case bool:
				return v
			case NodeList:
				return len(v) > 0
			case AbsentValue:
				return false
			}
			return true
		},
	}
	return funcs
}

func TestFunctionWellTypedness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		kind  error
	}{
		{name: "length_singular_query", query: "$[?length(@) < 3]"},
		{name: "length_non_singular_query", query: "$[?length(@.*) < 3]", kind: ErrType},
		{name: "count_non_singular_query", query: "$[?count(@.*) == 1]"},
		{name: "count_int_literal", query: "$[?count(1) == 1]", kind: ErrType},
		{name: "count_nodes_function", query: "$[?count(nn(@.*)) == 1]"},
		{name: "match_singular_query_and_literal", query: "$[?match(@.timezone, 'Europe/.*')]"},
		{name: "match_compared_to_true", query: "$[?match(@.timezone, 'Europe/.*') == true]", kind: ErrType},
		{name: "value_compared", query: "$[?value(@..color) == 'red']"},
		{name: "value_not_compared", query: "$[?value(@..color)]", kind: ErrType},
		{name: "value_logical_singular_query", query: "$[?vl(@.a)]"},
		{name: "value_logical_non_singular_query", query: "$[?vl(@.*)]", kind: ErrType},
		{name: "value_logical_literal", query: "$[?vl(1)]"},
		{name: "nodes_logical", query: "$[?nl(@.*)]"},
		{name: "logical_query", query: "$[?ll(@.*)]"},
		{name: "logical_comparison", query: "$[?ll(1==1)]"},
		{name: "logical_literal", query: "$[?ll(1)]", kind: ErrType},
		{name: "logical_value_function", query: "$[?ll(length(@))]", kind: ErrType},
		{name: "nodes_function_as_test", query: "$[?nn(@.*)]"},
		{name: "nodes_function_compared", query: "$[?nn(@.a) == 1]", kind: ErrType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.query, WithFunctions(testFunctions()))
			if tt.kind == nil {
				if err != nil {
					t.Fatalf("Compile(%q) error: %v", tt.query, err)
				}
				return
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Compile(%q) error = %v, want %v", tt.query, err, tt.kind)
			}
		})
	}
}

func TestCompileLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  any
	}{
		{query: "$[?@ == 1]", want: int64(1)},
		{query: "$[?@ == -7]", want: int64(-7)},
		{query: "$[?@ == 1e2]", want: int64(100)},
		{query: "$[?@ == 1.5]", want: 1.5},
		{query: "$[?@ == 1e-1]", want: 0.1},
		{query: "$[?@ == 'a\\u00e9\\n']", want: "aé\n"},
		{query: `$[?@ == "😀"]`, want: "😀"},
		{query: `$[?@ == '\'']`, want: "'"},
		{query: `$[?@ == "'"]`, want: "'"},
		{query: "$[?@ == null]", want: nil},
		{query: "$[?@ == false]", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()

			q := MustCompile(tt.query)
			filter := q.segments[0].selectors[0].(filterSelector)
			cmp := filter.expr.(comparisonExpr)
			lit, ok := cmp.right.(literalExpr)
			if !ok {
				t.Fatalf("right operand = %T, want literalExpr", cmp.right)
			}
			if lit.value != tt.want {
				t.Errorf("literal = %#v, want %#v", lit.value, tt.want)
			}
		})
	}
}

func TestCompileSegments(t *testing.T) {
	t.Parallel()

	q := MustCompile(`$..a['b', 0][1:3:2]`)
	if len(q.segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(q.segments))
	}

	if q.segments[0].kind != segmentDescendant {
		t.Errorf("segment 0 kind = %v, want descendant", q.segments[0].kind)
	}
	if name := q.segments[0].selectors[0].(nameSelector).name; name != "a" {
		t.Errorf("segment 0 name = %q, want %q", name, "a")
	}

	union := q.segments[1].selectors
	if len(union) != 2 {
		t.Fatalf("segment 1 selectors = %d, want 2", len(union))
	}
	if idx := union[1].(indexSelector).index; idx != 0 {
		t.Errorf("segment 1 index = %d, want 0", idx)
	}

	slice := q.segments[2].selectors[0].(sliceSelector)
	if *slice.start != 1 || *slice.stop != 3 || *slice.step != 2 {
		t.Errorf("slice = %d:%d:%d, want 1:3:2", *slice.start, *slice.stop, *slice.step)
	}
}

func TestMustCompilePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustCompile() did not panic")
		}
	}()
	MustCompile("$[")
}
