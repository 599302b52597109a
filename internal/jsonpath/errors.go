package jsonpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrSyntax indicates a malformed query.
	ErrSyntax = errors.New("jsonpath: syntax error")

	// ErrType indicates a filter expression that is not well-typed.
	ErrType = errors.New("jsonpath: type error")

	// ErrName indicates a call to a function missing from the registry.
	ErrName = errors.New("jsonpath: name error")

	// ErrEvaluation indicates a query was resolved with a function registry
	// incompatible with the one it was compiled against.
	ErrEvaluation = errors.New("jsonpath: evaluation error")
)

// Error describes a problem found while compiling a query. It wraps one of
// ErrSyntax, ErrType or ErrName.
type Error struct {
	Kind    error
	Message string
	Token   Token
	Query   string
}

func newError(kind error, tok Token, query, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Token:   tok,
		Query:   query,
	}
}

func (e *Error) Error() string {
	line, col := e.Position()
	return fmt.Sprintf("%v: %s at %d:%d", e.Kind, e.Message, line, col)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Position returns the 1-indexed line and column of the offending token.
// Columns count runes, not bytes.
func (e *Error) Position() (line, col int) {
	offset := min(max(e.Token.Offset, 0), len(e.Query))
	prefix := e.Query[:offset]
	line = strings.Count(prefix, "\n") + 1
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		prefix = prefix[i+1:]
	}
	return line, utf8.RuneCountInString(prefix) + 1
}

// Detail renders a multi-line diagnostic with the offending line of the
// query and a caret underline below the offending token:
//
//	jsonpath: syntax error: unexpected trailing whitespace
//	 -> '$.a ' 1:4
//	  |
//	1 | $.a
//	  |    ^ unexpected trailing whitespace
func (e *Error) Detail() string {
	if strings.TrimSpace(e.Query) == "" {
		return fmt.Sprintf("%v: empty query", e.Kind)
	}

	line, col := e.Position()
	lines := strings.Split(e.Query, "\n")
	text := strings.TrimRight(lines[line-1], "\r")

	gutter := strconv.Itoa(line)
	pad := strings.Repeat(" ", len(gutter))
	start := min(max(e.Token.Offset, 0), len(e.Query))
	end := min(start+e.Token.width(), len(e.Query))
	width := utf8.RuneCountInString(e.Query[start:end])
	pointer := strings.Repeat(" ", col-1) + strings.Repeat("^", max(width, 1))

	var b strings.Builder
	fmt.Fprintf(&b, "%v: %s\n", e.Kind, e.Message)
	fmt.Fprintf(&b, "%s -> '%s' %d:%d\n", pad, e.Query, line, col)
	fmt.Fprintf(&b, "%s |\n", pad)
	fmt.Fprintf(&b, "%s | %s\n", gutter, text)
	fmt.Fprintf(&b, "%s | %s %s", pad, pointer, e.Message)
	return b.String()
}
