package jsonpath

import (
	"fmt"
	"unicode/utf8"
)

// Tokenize splits query into tokens. It never fails: unknown characters,
// unclosed strings and raw control characters inside strings are reported as
// TokenError tokens carrying a message, and the scan continues. The returned
// slice always ends with a TokenEOF token.
func Tokenize(query string) []Token {
	l := lexer{input: query, tokens: make([]Token, 0, len(query)/2+1)}
	l.run()
	return l.tokens
}

type lexer struct {
	input  string
	pos    int
	tokens []Token
}

func (l *lexer) emit(kind TokenKind, text string, offset int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Offset: offset})
}

func (l *lexer) errorf(offset int, format string, args ...any) {
	l.emit(TokenError, fmt.Sprintf(format, args...), offset)
}

func (l *lexer) peekByte(offset int) byte {
	if l.pos+offset < len(l.input) {
		return l.input[l.pos+offset]
	}
	return 0
}

// punct emits a fixed lexeme of the given width.
func (l *lexer) punct(kind TokenKind, width int) {
	l.emit(kind, l.input[l.pos:l.pos+width], l.pos)
	l.pos += width
}

func (l *lexer) run() {
	for l.pos < len(l.input) {
		switch ch := l.input[l.pos]; ch {
		case '$':
			l.punct(TokenDollar, 1)
		case '@':
			l.punct(TokenAt, 1)
		case '*':
			l.punct(TokenAsterisk, 1)
		case ':':
			l.punct(TokenColon, 1)
		case ',':
			l.punct(TokenComma, 1)
		case '?':
			l.punct(TokenQuestion, 1)
		case '(':
			l.punct(TokenLeftParen, 1)
		case ')':
			l.punct(TokenRightParen, 1)
		case '[':
			l.punct(TokenLeftBracket, 1)
		case ']':
			l.punct(TokenRightBracket, 1)
		case '.':
			if l.peekByte(1) == '.' {
				l.punct(TokenDoubleDot, 2)
			} else {
				l.punct(TokenDot, 1)
			}
		case '&':
			if l.peekByte(1) == '&' {
				l.punct(TokenAnd, 2)
			} else {
				l.errorf(l.pos, "unknown token '&', did you mean '&&'?")
				l.pos++
			}
		case '|':
			if l.peekByte(1) == '|' {
				l.punct(TokenOr, 2)
			} else {
				l.errorf(l.pos, "unknown token '|', did you mean '||'?")
				l.pos++
			}
		case '=':
			if l.peekByte(1) == '=' {
				l.punct(TokenEQ, 2)
			} else {
				l.errorf(l.pos, "unknown token '=', did you mean '=='?")
				l.pos++
			}
		case '!':
			if l.peekByte(1) == '=' {
				l.punct(TokenNE, 2)
			} else {
				l.punct(TokenNot, 1)
			}
		case '<':
			if l.peekByte(1) == '=' {
				l.punct(TokenLE, 2)
			} else {
				l.punct(TokenLT, 1)
			}
		case '>':
			if l.peekByte(1) == '=' {
				l.punct(TokenGE, 2)
			} else {
				l.punct(TokenGT, 1)
			}
		case '\'':
			l.scanString('\'', TokenSingleQuoted, TokenSingleQuotedEsc)
		case '"':
			l.scanString('"', TokenDoubleQuoted, TokenDoubleQuotedEsc)
		case ' ', '\t', '\n', '\r':
			l.scanTrivia()
		default:
			switch {
			case ch == '-' || isDigit(ch):
				l.scanNumber()
			case isNameFirst(ch):
				l.scanName()
			default:
				r, size := utf8.DecodeRuneInString(l.input[l.pos:])
				l.errorf(l.pos, "unknown token %q", r)
				l.pos += size
			}
		}
	}
	l.emit(TokenEOF, "", len(l.input))
}

func (l *lexer) scanTrivia() {
	start := l.pos
	for l.pos < len(l.input) && isTrivia(l.input[l.pos]) {
		l.pos++
	}
	l.emit(TokenTrivia, l.input[start:l.pos], start)
}

func (l *lexer) scanName() {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch < utf8.RuneSelf {
			if !isNameFirst(ch) && !isDigit(ch) {
				break
			}
			l.pos++
			continue
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		l.pos += size
	}
	if l.pos == start {
		l.errorf(start, "invalid UTF-8 in query")
		l.pos++
		return
	}
	l.emit(TokenName, l.input[start:l.pos], start)
}

// scanNumber classifies numeric lexemes: plain integers are TokenIndex,
// integers with a positive exponent are TokenInteger and anything with a
// fraction or negative exponent is TokenFloat.
func (l *lexer) scanNumber() {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
		l.errorf(start, "unknown token '-'")
		l.pos = start + 1
		return
	}
	l.skipDigits()

	kind := TokenIndex
	if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		l.pos++
		l.skipDigits()
		kind = TokenFloat
	}

	if e := l.peekByte(0); e == 'e' || e == 'E' {
		sign := l.peekByte(1)
		digits := 1
		if sign == '+' || sign == '-' {
			digits = 2
		}
		if isDigit(l.peekByte(digits)) {
			l.pos += digits
			l.skipDigits()
			switch {
			case kind == TokenFloat, sign == '-':
				kind = TokenFloat
			default:
				kind = TokenInteger
			}
		}
	}

	l.emit(kind, l.input[start:l.pos], start)
}

func (l *lexer) skipDigits() {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
}

// scanString scans a quoted string starting at the opening quote. Escape
// sequences are not decoded here, only noted, so that the parser pays the
// unescaping cost only for strings that need it.
func (l *lexer) scanString(quote byte, plain, escaped TokenKind) {
	start := l.pos
	kind := plain
	l.pos++
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\\':
			kind = escaped
			l.pos += 2
		case ch == quote:
			l.emit(kind, l.input[start+1:l.pos], start)
			l.pos++
			return
		case ch < 0x20:
			l.errorf(l.pos, "invalid character %#02x in string literal", ch)
			l.pos = l.skipToQuote(quote)
			return
		default:
			l.pos++
		}
	}
	l.errorf(start, "unclosed string literal")
	l.pos = len(l.input)
}

// skipToQuote resumes scanning after the closing quote of a rejected string.
func (l *lexer) skipToQuote(quote byte) int {
	for i := l.pos + 1; i < len(l.input); i++ {
		switch l.input[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(l.input)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isTrivia(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// isNameFirst reports whether ch may start a shorthand name. Bytes of
// multi-byte UTF-8 sequences are accepted and validated by scanName.
func isNameFirst(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch >= utf8.RuneSelf
}
