package jsonpath

import (
	"reflect"

	"github.com/jacoelho/jpath/internal/number"
)

// evaluate computes expr with @ bound to current. Queries produce a
// NodeList, logical operators and comparisons a bool and function calls
// whatever the function returns.
func (ev *evaluator) evaluate(expr expression, current Node) (any, error) {
	switch e := expr.(type) {
	case literalExpr:
		return e.value, nil
	case parenExpr:
		return ev.evaluate(e.inner, current)
	case notExpr:
		v, err := ev.evaluate(e.operand, current)
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	case logicalExpr:
		left, right, err := ev.evaluatePair(e.left, e.right, current)
		if err != nil {
			return nil, err
		}
		if e.op == TokenAnd {
			return truthy(left) && truthy(right), nil
		}
		return truthy(left) || truthy(right), nil
	case comparisonExpr:
		left, right, err := ev.evaluatePair(e.left, e.right, current)
		if err != nil {
			return nil, err
		}
		return compare(e.op, unwrap(left), unwrap(right)), nil
	case queryExpr:
		start := current
		if e.absolute {
			start = Node{Value: current.Root, Location: []any{}, Root: current.Root}
		}
		return ev.resolve(e.segments, NodeList{start})
	case functionExpr:
		return ev.call(e, current)
	}
	return nil, newError(ErrEvaluation, expr.exprToken(), ev.query, "unexpected expression %T", expr)
}

func (ev *evaluator) evaluatePair(left, right expression, current Node) (any, any, error) {
	l, err := ev.evaluate(left, current)
	if err != nil {
		return nil, nil, err
	}
	r, err := ev.evaluate(right, current)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// call invokes a function extension. The registry in use at evaluation
// must declare the signature the query was checked against.
func (ev *evaluator) call(e functionExpr, current Node) (any, error) {
	fn, ok := ev.funcs[e.name]
	if !ok {
		return nil, newError(ErrEvaluation, e.token, ev.query, "function %s() is not registered", e.name)
	}
	if len(fn.Params) != len(e.args) {
		return nil, newError(ErrEvaluation, e.token, ev.query, "function %s() takes %d argument(s), query passes %d", e.name, len(fn.Params), len(e.args))
	}

	args := make([]any, len(e.args))
	for i, arg := range e.args {
		v, err := ev.evaluate(arg, current)
		if err != nil {
			return nil, err
		}
		if fn.Params[i] == SortNodes {
			args[i] = v
		} else {
			args[i] = unpack(v)
		}
	}
	return fn.Call(args...), nil
}

// unwrap replaces a NodeList holding exactly one node by that node's value.
func unwrap(v any) any {
	if nodes, ok := v.(NodeList); ok && len(nodes) == 1 {
		return nodes[0].Value
	}
	return v
}

// unpack converts a NodeList passed where a value is expected: empty
// becomes Absent, a single node its value.
func unpack(v any) any {
	nodes, ok := v.(NodeList)
	if !ok {
		return v
	}
	switch len(nodes) {
	case 0:
		return Absent
	case 1:
		return nodes[0].Value
	}
	return v
}

// truthy reports whether a filter result selects its node. Only false and
// the empty NodeList are falsy, a single-node list stands for its value.
func truthy(v any) bool {
	switch t := unwrap(v).(type) {
	case bool:
		return t
	case NodeList:
		return len(t) > 0
	}
	return true
}

func isAbsent(v any) bool {
	_, ok := v.(AbsentValue)
	return ok
}

func compare(op TokenKind, left, right any) bool {
	switch op {
	case TokenEQ:
		return equal(left, right)
	case TokenNE:
		return !equal(left, right)
	case TokenLT:
		return less(left, right)
	case TokenLE:
		return less(left, right) || equal(left, right)
	case TokenGT:
		return less(right, left)
	case TokenGE:
		return less(right, left) || equal(left, right)
	}
	return false
}

// equal compares comparison operands. A NodeList operand is moved to the
// left: an empty list equals only Absent or another empty list, a single
// node list compares by its value.
func equal(left, right any) bool {
	if _, ok := right.(NodeList); ok {
		left, right = right, left
	}

	if l, ok := left.(NodeList); ok {
		if r, ok := right.(NodeList); ok {
			switch {
			case len(l) == 0 && len(r) == 0:
				return true
			case len(l) == 1 && len(r) == 1:
				return deepEqual(l[0].Value, r[0].Value)
			}
		}
		switch len(l) {
		case 0:
			return isAbsent(right)
		case 1:
			return deepEqual(l[0].Value, right)
		}
		return false
	}

	return deepEqual(left, right)
}

// less orders two strings by code point or two numbers by value. Any other
// pair is unordered.
func less(left, right any) bool {
	if l, ok := left.(string); ok {
		r, ok := right.(string)
		return ok && l < r
	}
	cmp, ok := number.Compare(left, right)
	return ok && cmp < 0
}

// deepEqual compares values structurally. Numbers are equal when their
// values are, whatever their Go types.
func deepEqual(a, b any) bool {
	if isAbsent(a) || isAbsent(b) {
		return isAbsent(a) && isAbsent(b)
	}

	if number.IsNumber(a) || number.IsNumber(b) {
		return number.Equal(a, b)
	}

	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !deepEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}

	if x, ok := asMapping(a); ok {
		y, ok := asMapping(b)
		if !ok {
			return false
		}
		keys := x.Keys()
		if len(keys) != len(y.Keys()) {
			return false
		}
		for _, k := range keys {
			xv, _ := x.Lookup(k)
			yv, ok := y.Lookup(k)
			if !ok || !deepEqual(xv, yv) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}
