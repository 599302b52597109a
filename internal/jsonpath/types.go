package jsonpath

const (
	segmentChild segmentKind = iota
	segmentDescendant
)

type segmentKind uint8

// segment is one step of a compiled query. A child segment applies its
// selectors to every current node; a descendant segment applies them to
// every node of the descendant closure of every current node.
type segment struct {
	kind      segmentKind
	token     Token
	selectors []selector
}

// selector is implemented by nameSelector, indexSelector, sliceSelector,
// wildcardSelector and filterSelector.
type selector interface {
	selectorToken() Token
}

type (
	nameSelector struct {
		token Token
		name  string
	}

	indexSelector struct {
		token Token
		index int64
	}

	// sliceSelector bounds are nil when omitted from the query.
	sliceSelector struct {
		token             Token
		start, stop, step *int64
	}

	wildcardSelector struct {
		token Token
	}

	filterSelector struct {
		token Token
		expr  expression
	}
)

func (s nameSelector) selectorToken() Token     { return s.token }
func (s indexSelector) selectorToken() Token    { return s.token }
func (s sliceSelector) selectorToken() Token    { return s.token }
func (s wildcardSelector) selectorToken() Token { return s.token }
func (s filterSelector) selectorToken() Token   { return s.token }

// expression is a node of a filter expression tree.
type expression interface {
	exprToken() Token
}

type (
	// literalExpr holds nil, bool, string, int64 or float64.
	literalExpr struct {
		token Token
		value any
	}

	notExpr struct {
		token   Token
		operand expression
	}

	// logicalExpr is && or ||, op holds TokenAnd or TokenOr.
	logicalExpr struct {
		token       Token
		op          TokenKind
		left, right expression
	}

	// comparisonExpr op is one of TokenEQ, TokenNE, TokenLT, TokenLE,
	// TokenGT or TokenGE.
	comparisonExpr struct {
		token       Token
		op          TokenKind
		left, right expression
	}

	// queryExpr is an embedded query rooted at $ (absolute) or @.
	queryExpr struct {
		token    Token
		absolute bool
		segments []segment
	}

	functionExpr struct {
		token Token
		name  string
		args  []expression
	}

	// parenExpr keeps track of explicit grouping, which turns any
	// expression into a logical one that can no longer be compared.
	parenExpr struct {
		token Token
		inner expression
	}
)

func (e literalExpr) exprToken() Token    { return e.token }
func (e notExpr) exprToken() Token        { return e.token }
func (e logicalExpr) exprToken() Token    { return e.token }
func (e comparisonExpr) exprToken() Token { return e.token }
func (e queryExpr) exprToken() Token      { return e.token }
func (e functionExpr) exprToken() Token   { return e.token }
func (e parenExpr) exprToken() Token      { return e.token }

// singular reports whether segments can never select more than one node:
// child segments holding exactly one name or index selector.
func singular(segments []segment) bool {
	for _, seg := range segments {
		if seg.kind != segmentChild || len(seg.selectors) != 1 {
			return false
		}
		switch seg.selectors[0].(type) {
		case nameSelector, indexSelector:
		default:
			return false
		}
	}
	return true
}
