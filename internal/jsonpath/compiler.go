package jsonpath

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	maxIndex = 1<<53 - 1
	minIndex = -(1<<53 - 1)
)

// Binding powers of filter operators.
const (
	precLowest = iota + 1
	precOr
	precAnd
	precRelational
	precPrefix
)

var precedences = map[TokenKind]int{
	TokenOr:  precOr,
	TokenAnd: precAnd,
	TokenEQ:  precRelational,
	TokenNE:  precRelational,
	TokenLT:  precRelational,
	TokenLE:  precRelational,
	TokenGT:  precRelational,
	TokenGE:  precRelational,
}

func isComparison(kind TokenKind) bool {
	return precedences[kind] == precRelational
}

type parserState struct {
	tokens []Token
	pos    int
	query  string
	funcs  Registry
}

// parse compiles query into segments, type-checking every filter against
// funcs. The first problem found aborts compilation.
func parse(query string, funcs Registry) ([]segment, error) {
	p := &parserState{
		tokens: Tokenize(query),
		query:  query,
		funcs:  funcs,
	}

	if _, err := p.eat(TokenDollar); err != nil {
		return nil, err
	}

	segments, err := p.parseSegments()
	if err != nil {
		return nil, err
	}

	if _, err := p.eat(TokenEOF); err != nil {
		return nil, err
	}
	return segments, nil
}

func (p *parserState) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOF, Offset: len(p.query)}
	}
	return p.tokens[p.pos]
}

// lookahead returns the token n positions after the current one.
func (p *parserState) lookahead(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return Token{Kind: TokenEOF, Offset: len(p.query)}
	}
	return p.tokens[p.pos+n]
}

func (p *parserState) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parserState) skipTrivia() {
	if p.current().Kind == TokenTrivia {
		p.pos++
	}
}

func (p *parserState) eat(kind TokenKind) (Token, error) {
	tok := p.current()
	if tok.Kind != kind {
		return tok, p.unexpected(tok, "expected %s, found %s", kind, tok.Kind)
	}
	p.pos++
	return tok, nil
}

func (p *parserState) syntaxError(tok Token, format string, args ...any) error {
	return newError(ErrSyntax, tok, p.query, format, args...)
}

func (p *parserState) typeError(tok Token, format string, args ...any) error {
	return newError(ErrType, tok, p.query, format, args...)
}

// unexpected reports tok as a syntax error. Lexer error tokens carry their
// own message which takes precedence.
func (p *parserState) unexpected(tok Token, format string, args ...any) error {
	switch tok.Kind {
	case TokenError:
		return p.syntaxError(tok, "%s", tok.Text)
	case TokenEOF:
		return p.syntaxError(tok, "unexpected end of query")
	}
	return p.syntaxError(tok, format, args...)
}

func (p *parserState) parseSegments() ([]segment, error) {
	var segments []segment

	for {
		tok := p.current()
		switch tok.Kind {
		case TokenTrivia:
			switch p.lookahead(1).Kind {
			case TokenEOF:
				return nil, p.syntaxError(tok, "unexpected trailing whitespace")
			case TokenDot, TokenDoubleDot, TokenLeftBracket:
				p.advance()
			default:
				return segments, nil
			}
		case TokenDoubleDot:
			p.advance()
			selectors, err := p.parseDescendantSelectors()
			if err != nil {
				return nil, err
			}
			segments = append(segments, segment{kind: segmentDescendant, token: tok, selectors: selectors})
		case TokenDot:
			p.advance()
			sel, err := p.parseShorthandSelector()
			if err != nil {
				return nil, err
			}
			segments = append(segments, segment{kind: segmentChild, token: tok, selectors: []selector{sel}})
		case TokenLeftBracket:
			selectors, err := p.parseBracketedSelectors()
			if err != nil {
				return nil, err
			}
			segments = append(segments, segment{kind: segmentChild, token: tok, selectors: selectors})
		default:
			return segments, nil
		}
	}
}

func (p *parserState) parseDescendantSelectors() ([]selector, error) {
	switch p.current().Kind {
	case TokenName, TokenAsterisk:
		sel, err := p.parseShorthandSelector()
		if err != nil {
			return nil, err
		}
		return []selector{sel}, nil
	case TokenLeftBracket:
		return p.parseBracketedSelectors()
	}
	tok := p.current()
	return nil, p.unexpected(tok, "expected a name, '*' or '[' after '..', found %s", tok.Kind)
}

func (p *parserState) parseShorthandSelector() (selector, error) {
	tok := p.current()
	switch tok.Kind {
	case TokenName:
		p.advance()
		return nameSelector{token: tok, name: tok.Text}, nil
	case TokenAsterisk:
		p.advance()
		return wildcardSelector{token: tok}, nil
	}
	return nil, p.unexpected(tok, "expected a name or '*', found %s", tok.Kind)
}

func (p *parserState) parseBracketedSelectors() ([]selector, error) {
	open, err := p.eat(TokenLeftBracket)
	if err != nil {
		return nil, err
	}

	var selectors []selector
	for {
		p.skipTrivia()

		tok := p.current()
		var sel selector
		switch {
		case tok.Kind == TokenRightBracket:
			if len(selectors) == 0 {
				return nil, p.syntaxError(open, "empty bracketed segment")
			}
			p.advance()
			return selectors, nil
		case tok.Kind == TokenIndex:
			sel, err = p.parseIndexOrSlice()
		case tok.isString():
			p.advance()
			var name string
			name, err = p.decodeString(tok)
			sel = nameSelector{token: tok, name: name}
		case tok.Kind == TokenColon:
			sel, err = p.parseSlice(tok, nil)
		case tok.Kind == TokenAsterisk:
			p.advance()
			sel = wildcardSelector{token: tok}
		case tok.Kind == TokenQuestion:
			sel, err = p.parseFilterSelector()
		case tok.Kind == TokenEOF:
			return nil, p.syntaxError(open, "unclosed bracketed segment")
		default:
			return nil, p.unexpected(tok, "unexpected %s in bracketed segment", tok.Kind)
		}
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)

		p.skipTrivia()
		switch tok := p.current(); tok.Kind {
		case TokenRightBracket:
			p.advance()
			return selectors, nil
		case TokenComma:
			p.advance()
			p.skipTrivia()
			if next := p.current(); next.Kind == TokenRightBracket {
				return nil, p.syntaxError(tok, "unexpected trailing comma")
			}
		case TokenEOF:
			return nil, p.syntaxError(open, "unclosed bracketed segment")
		default:
			return nil, p.unexpected(tok, "expected ',' or ']', found %s", tok.Kind)
		}
	}
}

func (p *parserState) parseIndexOrSlice() (selector, error) {
	tok := p.advance()
	index, err := p.parseIndex(tok)
	if err != nil {
		return nil, err
	}

	p.skipTrivia()
	if p.current().Kind != TokenColon {
		return indexSelector{token: tok, index: index}, nil
	}
	return p.parseSlice(tok, &index)
}

// parseSlice parses the remainder of a slice selector from its first colon.
func (p *parserState) parseSlice(tok Token, start *int64) (selector, error) {
	sel := sliceSelector{token: tok, start: start}
	if _, err := p.eat(TokenColon); err != nil {
		return nil, err
	}
	p.skipTrivia()

	if p.current().Kind == TokenIndex {
		stop, err := p.parseIndex(p.advance())
		if err != nil {
			return nil, err
		}
		sel.stop = &stop
		p.skipTrivia()
	}

	if p.current().Kind == TokenColon {
		p.advance()
		p.skipTrivia()
		if p.current().Kind == TokenIndex {
			step, err := p.parseIndex(p.advance())
			if err != nil {
				return nil, err
			}
			sel.step = &step
		}
	}
	return sel, nil
}

// parseIndex validates an index or slice bound: no leading zeros, no
// negative zero and within the interoperable integer range.
func (p *parserState) parseIndex(tok Token) (int64, error) {
	digits := strings.TrimPrefix(tok.Text, "-")
	if len(digits) > 1 && digits[0] == '0' || tok.Text == "-0" {
		return 0, p.syntaxError(tok, "invalid index %q", tok.Text)
	}

	index, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil || index < minIndex || index > maxIndex {
		return 0, p.syntaxError(tok, "index out of range")
	}
	return index, nil
}

func (p *parserState) parseFilterSelector() (selector, error) {
	tok := p.advance()
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.mustBeLogical(expr); err != nil {
		return nil, err
	}
	return filterSelector{token: tok, expr: expr}, nil
}

func (p *parserState) parseExpression(prec int) (expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	compared := false
	for {
		p.skipTrivia()
		tok := p.current()
		opPrec, ok := precedences[tok.Kind]
		if !ok || opPrec < prec {
			return left, nil
		}
		if compared && isComparison(tok.Kind) {
			return nil, p.syntaxError(tok, "comparison operators are non-associative, use parentheses")
		}

		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
		compared = isComparison(tok.Kind)
	}
}

func (p *parserState) parseInfix(left expression) (expression, error) {
	tok := p.advance()

	if isComparison(tok.Kind) {
		right, err := p.parseExpression(precRelational + 1)
		if err != nil {
			return nil, err
		}
		if err := p.mustBeComparable(left); err != nil {
			return nil, err
		}
		if err := p.mustBeComparable(right); err != nil {
			return nil, err
		}
		return comparisonExpr{token: tok, op: tok.Kind, left: left, right: right}, nil
	}

	right, err := p.parseExpression(precedences[tok.Kind])
	if err != nil {
		return nil, err
	}
	if err := p.mustBeLogical(left); err != nil {
		return nil, err
	}
	if err := p.mustBeLogical(right); err != nil {
		return nil, err
	}
	return logicalExpr{token: tok, op: tok.Kind, left: left, right: right}, nil
}

func (p *parserState) parsePrimary() (expression, error) {
	p.skipTrivia()
	tok := p.current()

	switch {
	case tok.isString():
		p.advance()
		value, err := p.decodeString(tok)
		if err != nil {
			return nil, err
		}
		return literalExpr{token: tok, value: value}, nil
	case tok.isNumber():
		p.advance()
		return p.parseNumber(tok)
	}

	switch tok.Kind {
	case TokenName:
		switch tok.Text {
		case "null":
			p.advance()
			return literalExpr{token: tok, value: nil}, nil
		case "true":
			p.advance()
			return literalExpr{token: tok, value: true}, nil
		case "false":
			p.advance()
			return literalExpr{token: tok, value: false}, nil
		}
		return p.parseFunction()
	case TokenLeftParen:
		return p.parseGroup()
	case TokenDollar, TokenAt:
		p.advance()
		segments, err := p.parseSegments()
		if err != nil {
			return nil, err
		}
		return queryExpr{token: tok, absolute: tok.Kind == TokenDollar, segments: segments}, nil
	case TokenNot:
		p.advance()
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}
		if err := p.mustBeLogical(operand); err != nil {
			return nil, err
		}
		return notExpr{token: tok, operand: operand}, nil
	}

	return nil, p.unexpected(tok, "unexpected %s in filter expression", tok.Kind)
}

func (p *parserState) parseGroup() (expression, error) {
	open := p.advance()
	inner, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}

	p.skipTrivia()
	switch tok := p.current(); tok.Kind {
	case TokenRightParen:
		p.advance()
	case TokenEOF:
		return nil, p.syntaxError(open, "unbalanced parentheses")
	default:
		return nil, p.unexpected(tok, "expected ')', found %s", tok.Kind)
	}
	return parenExpr{token: open, inner: inner}, nil
}

func (p *parserState) parseFunction() (expression, error) {
	name := p.advance()
	if p.current().Kind != TokenLeftParen {
		return nil, p.syntaxError(name, "unexpected name %q, expected a literal, query or function call", name.Text)
	}
	p.advance()

	var args []expression
	p.skipTrivia()
	if p.current().Kind != TokenRightParen {
		for {
			arg, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			p.skipTrivia()
			tok := p.current()
			if tok.Kind == TokenRightParen {
				break
			}
			if tok.Kind != TokenComma {
				return nil, p.unexpected(tok, "expected ',' or ')', found %s", tok.Kind)
			}
			p.advance()
		}
	}
	p.advance()

	call := functionExpr{token: name, name: name.Text, args: args}
	if err := p.checkCall(call); err != nil {
		return nil, err
	}
	return call, nil
}

// checkCall verifies the call against the registry: the function exists,
// the arity matches and every argument conforms to its declared sort.
func (p *parserState) checkCall(call functionExpr) error {
	fn, ok := p.funcs[call.name]
	if !ok {
		return newError(ErrName, call.token, p.query, "unknown function %s()", call.name)
	}

	if len(call.args) != len(fn.Params) {
		noun := "arguments"
		if len(fn.Params) == 1 {
			noun = "argument"
		}
		return p.typeError(call.token, "%s() takes %d %s (%d given)", call.name, len(fn.Params), noun, len(call.args))
	}

	for i, arg := range call.args {
		if !p.conforms(arg, fn.Params[i]) {
			return p.typeError(arg.exprToken(), "%s() argument %d must be of %s", call.name, i+1, fn.Params[i])
		}
	}
	return nil
}

// conforms reports whether arg can be passed as a parameter of sort s.
func (p *parserState) conforms(arg expression, s Sort) bool {
	switch s {
	case SortValue:
		switch e := arg.(type) {
		case literalExpr:
			return true
		case queryExpr:
			return singular(e.segments)
		case functionExpr:
			return p.funcs[e.name].Result == SortValue
		}
	case SortLogical:
		switch e := arg.(type) {
		case queryExpr, logicalExpr, comparisonExpr, notExpr, parenExpr:
			return true
		case functionExpr:
			return p.funcs[e.name].Result != SortValue
		}
	case SortNodes:
		switch e := arg.(type) {
		case queryExpr:
			return true
		case functionExpr:
			return p.funcs[e.name].Result == SortNodes
		}
	}
	return false
}

// mustBeComparable enforces that comparison operands are literals,
// singular queries or calls returning a value.
func (p *parserState) mustBeComparable(expr expression) error {
	switch e := expr.(type) {
	case literalExpr:
		return nil
	case queryExpr:
		if !singular(e.segments) {
			return p.typeError(e.token, "non-singular query is not comparable")
		}
		return nil
	case functionExpr:
		if p.funcs[e.name].Result != SortValue {
			return p.typeError(e.token, "result of %s() is not comparable", e.name)
		}
		return nil
	}
	return p.typeError(expr.exprToken(), "logical expression is not comparable")
}

// mustBeLogical enforces that expressions used as tests are not bare
// literals or value-returning calls.
func (p *parserState) mustBeLogical(expr expression) error {
	switch e := expr.(type) {
	case literalExpr:
		return p.typeError(e.token, "filter expression literals must be compared")
	case functionExpr:
		if p.funcs[e.name].Result == SortValue {
			return p.typeError(e.token, "result of %s() must be compared", e.name)
		}
	case parenExpr:
		return p.mustBeLogical(e.inner)
	}
	return nil
}

// parseNumber converts a numeric literal of a filter expression into an
// int64 when it is integral and representable, otherwise a float64.
func (p *parserState) parseNumber(tok Token) (expression, error) {
	digits := strings.TrimPrefix(tok.Text, "-")
	if end := strings.IndexAny(digits, ".eE"); end >= 0 {
		digits = digits[:end]
	}
	if len(digits) > 1 && digits[0] == '0' {
		return nil, p.syntaxError(tok, "invalid number literal %q", tok.Text)
	}

	if tok.Kind == TokenIndex {
		if n, err := strconv.ParseInt(tok.Text, 10, 64); err == nil {
			if n == 0 && tok.Text == "-0" {
				return literalExpr{token: tok, value: math.Copysign(0, -1)}, nil
			}
			return literalExpr{token: tok, value: n}, nil
		}
	}

	f, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil && !isRangeError(err) {
		return nil, p.syntaxError(tok, "invalid number literal %q", tok.Text)
	}
	if tok.Kind == TokenInteger && f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return literalExpr{token: tok, value: int64(f)}, nil
	}
	return literalExpr{token: tok, value: f}, nil
}

func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

// decodeString returns the value of a string literal token, decoding
// escape sequences when the lexer flagged any.
func (p *parserState) decodeString(tok Token) (string, error) {
	switch tok.Kind {
	case TokenSingleQuoted, TokenDoubleQuoted:
		return tok.Text, nil
	case TokenSingleQuotedEsc:
		return p.unescape(tok, '\'')
	case TokenDoubleQuotedEsc:
		return p.unescape(tok, '"')
	}
	return "", p.unexpected(tok, "expected a string literal, found %s", tok.Kind)
}

func (p *parserState) unescape(tok Token, quote byte) (string, error) {
	text := tok.Text
	var b strings.Builder
	b.Grow(len(text))

	// at points diagnostics to the escape sequence starting at byte i of text.
	at := func(i, n int) Token {
		return Token{Kind: TokenError, Text: text[i:min(i+n, len(text))], Offset: tok.Offset + 1 + i}
	}

	for i := 0; i < len(text); {
		ch := text[i]
		if ch != '\\' {
			b.WriteByte(ch)
			i++
			continue
		}
		if i+1 >= len(text) {
			return "", p.syntaxError(at(i, 1), "incomplete escape sequence")
		}

		switch esc := text[i+1]; esc {
		case quote, '\\', '/':
			b.WriteByte(esc)
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			r, n, err := p.decodeUnicode(text, i, at)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += n
			continue
		default:
			return "", p.syntaxError(at(i, 2), "invalid escape sequence %q", text[i:i+2])
		}
		i += 2
	}
	return b.String(), nil
}

// decodeUnicode decodes a \uXXXX escape at text[i], combining a high
// surrogate with the low surrogate escape that must follow it. It returns
// the rune and the number of bytes consumed.
func (p *parserState) decodeUnicode(text string, i int, at func(i, n int) Token) (rune, int, error) {
	hi, ok := hex4(text, i+2)
	if !ok {
		return 0, 0, p.syntaxError(at(i, 6), "invalid \\u escape sequence")
	}

	switch {
	case utf16.IsSurrogate(hi) && hi >= 0xdc00:
		return 0, 0, p.syntaxError(at(i, 6), "unexpected low surrogate")
	case !utf16.IsSurrogate(hi):
		return hi, 6, nil
	}

	if !strings.HasPrefix(text[i+6:], `\u`) {
		return 0, 0, p.syntaxError(at(i, 6), "unpaired high surrogate")
	}
	lo, ok := hex4(text, i+8)
	if !ok || lo < 0xdc00 || lo > 0xdfff {
		return 0, 0, p.syntaxError(at(i, 12), "invalid low surrogate")
	}

	r := utf16.DecodeRune(hi, lo)
	if r == utf8.RuneError {
		return 0, 0, p.syntaxError(at(i, 12), "invalid surrogate pair")
	}
	return r, 12, nil
}

func hex4(text string, i int) (rune, bool) {
	if i+4 > len(text) {
		return 0, false
	}
	n, err := strconv.ParseUint(text[i:i+4], 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
