package jsonpath

// TokenKind identifies the lexical class of a Token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenTrivia

	TokenDollar
	TokenAt
	TokenDot
	TokenDoubleDot
	TokenLeftBracket
	TokenRightBracket
	TokenLeftParen
	TokenRightParen
	TokenQuestion
	TokenComma
	TokenColon
	TokenAsterisk

	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenAnd
	TokenOr
	TokenNot

	TokenName
	TokenSingleQuoted
	TokenSingleQuotedEsc
	TokenDoubleQuoted
	TokenDoubleQuotedEsc

	// TokenIndex is an integer without fraction or exponent. It is the only
	// numeric token allowed as an index or slice bound.
	TokenIndex
	// TokenInteger is an integer with a positive exponent, e.g. 1e2.
	TokenInteger
	TokenFloat
)

var tokenNames = [...]string{
	TokenEOF:             "end of query",
	TokenError:           "error",
	TokenTrivia:          "whitespace",
	TokenDollar:          "'$'",
	TokenAt:              "'@'",
	TokenDot:             "'.'",
	TokenDoubleDot:       "'..'",
	TokenLeftBracket:     "'['",
	TokenRightBracket:    "']'",
	TokenLeftParen:       "'('",
	TokenRightParen:      "')'",
	TokenQuestion:        "'?'",
	TokenComma:           "','",
	TokenColon:           "':'",
	TokenAsterisk:        "'*'",
	TokenEQ:              "'=='",
	TokenNE:              "'!='",
	TokenLT:              "'<'",
	TokenLE:              "'<='",
	TokenGT:              "'>'",
	TokenGE:              "'>='",
	TokenAnd:             "'&&'",
	TokenOr:              "'||'",
	TokenNot:             "'!'",
	TokenName:            "name",
	TokenSingleQuoted:    "string literal",
	TokenSingleQuotedEsc: "string literal",
	TokenDoubleQuoted:    "string literal",
	TokenDoubleQuotedEsc: "string literal",
	TokenIndex:           "integer",
	TokenInteger:         "integer",
	TokenFloat:           "float",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return "unknown"
}

// Token is a lexeme of a query. Offset is the byte offset of the first byte
// of the lexeme in the query text. For string tokens Text holds the raw
// contents between the quotes; for error tokens it holds the message.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

func (t Token) isString() bool {
	switch t.Kind {
	case TokenSingleQuoted, TokenSingleQuotedEsc, TokenDoubleQuoted, TokenDoubleQuotedEsc:
		return true
	}
	return false
}

func (t Token) isNumber() bool {
	return t.Kind == TokenIndex || t.Kind == TokenInteger || t.Kind == TokenFloat
}

// width is the number of bytes the token spans in the source, used to
// underline it in diagnostics.
func (t Token) width() int {
	switch {
	case t.Kind == TokenError, t.Kind == TokenEOF:
		return 1
	case t.isString():
		return len(t.Text) + 2
	case t.Text == "":
		return 1
	}
	return len(t.Text)
}
