package jsonpath

import (
	"maps"
	"slices"

	"github.com/jacoelho/jpath/internal/stack"
)

type evaluator struct {
	query string
	funcs Registry
}

// resolve folds segments over nodes. Each segment replaces the node list
// with the concatenation of its results for every node, in order.
func (ev *evaluator) resolve(segments []segment, nodes NodeList) (NodeList, error) {
	for _, seg := range segments {
		var next NodeList
		for _, n := range nodes {
			var err error
			if seg.kind == segmentDescendant {
				for _, d := range descendants(n) {
					if next, err = ev.selectAll(next, seg.selectors, d); err != nil {
						return nil, err
					}
				}
				continue
			}
			if next, err = ev.selectAll(next, seg.selectors, n); err != nil {
				return nil, err
			}
		}
		nodes = next
	}
	if nodes == nil {
		nodes = NodeList{}
	}
	return nodes, nil
}

func (ev *evaluator) selectAll(dst NodeList, selectors []selector, n Node) (NodeList, error) {
	for _, sel := range selectors {
		var err error
		if dst, err = ev.apply(dst, sel, n); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// apply appends the nodes sel selects from n to dst. Selectors that do not
// apply to the type of n select nothing.
func (ev *evaluator) apply(dst NodeList, sel selector, n Node) (NodeList, error) {
	switch s := sel.(type) {
	case nameSelector:
		if v, ok := lookup(n.Value, s.name); ok {
			dst = append(dst, n.child(v, s.name))
		}
	case indexSelector:
		elems, ok := n.Value.([]any)
		if !ok {
			break
		}
		if i, ok := normalizeIndex(s.index, len(elems)); ok {
			dst = append(dst, n.child(elems[i], i))
		}
	case sliceSelector:
		elems, ok := n.Value.([]any)
		if !ok {
			break
		}
		for _, i := range sliceIndices(s, len(elems)) {
			dst = append(dst, n.child(elems[i], i))
		}
	case wildcardSelector:
		dst = append(dst, children(n)...)
	case filterSelector:
		for _, c := range children(n) {
			result, err := ev.evaluate(s.expr, c)
			if err != nil {
				return nil, err
			}
			if truthy(result) {
				dst = append(dst, c)
			}
		}
	}
	return dst, nil
}

// plainObject enumerates a map[string]any in sorted key order.
type plainObject map[string]any

func (o plainObject) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

func (o plainObject) Lookup(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

// asMapping reports whether value is an object and returns it as a Mapping.
func asMapping(value any) (Mapping, bool) {
	switch obj := value.(type) {
	case map[string]any:
		return plainObject(obj), true
	case Mapping:
		return obj, true
	}
	return nil, false
}

func lookup(value any, name string) (any, bool) {
	if obj, ok := asMapping(value); ok {
		return obj.Lookup(name)
	}
	return nil, false
}

// children returns the elements of an array or the members of an object,
// in enumeration order. Scalars have no children.
func children(n Node) NodeList {
	if elems, ok := n.Value.([]any); ok {
		nodes := make(NodeList, len(elems))
		for i, elem := range elems {
			nodes[i] = n.child(elem, i)
		}
		return nodes
	}

	obj, ok := asMapping(n.Value)
	if !ok {
		return nil
	}
	keys := obj.Keys()
	nodes := make(NodeList, 0, len(keys))
	for _, k := range keys {
		member, _ := obj.Lookup(k)
		nodes = append(nodes, n.child(member, k))
	}
	return nodes
}

// descendants returns n followed by every node below it in pre-order. The
// walk uses an explicit work stack so nesting depth never grows the call
// stack.
func descendants(n Node) NodeList {
	var nodes NodeList
	work := stack.New[Node]()
	work.Push(n)

	for !work.IsEmpty() {
		current, _ := work.Pop()
		nodes = append(nodes, current)

		kids := children(current)
		for i := len(kids) - 1; i >= 0; i-- {
			work.Push(kids[i])
		}
	}
	return nodes
}

// normalizeIndex resolves a possibly negative index against length.
func normalizeIndex(index int64, length int) (int, bool) {
	n := int64(length)
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return 0, false
	}
	return int(index), true
}

// sliceIndices returns the indices a slice selector visits on an array of
// the given length, in traversal order. Negative bounds count from the end.
// start is clamped to [0, length-1] and stop to [-1, length], so a start
// past either end still visits the nearest element.
func sliceIndices(s sliceSelector, length int) []int {
	n := int64(length)
	step := int64(1)
	if s.step != nil {
		step = *s.step
	}
	if n == 0 || step == 0 {
		return nil
	}

	bound := func(b *int64, def, lo, hi int64) int64 {
		if b == nil {
			return def
		}
		v := *b
		if v < 0 {
			v += n
		}
		return min(max(v, lo), hi)
	}

	var indices []int
	if step > 0 {
		start := bound(s.start, 0, 0, n-1)
		stop := bound(s.stop, n, -1, n)
		for i := start; i < stop; i += step {
			indices = append(indices, int(i))
		}
		return indices
	}

	start := bound(s.start, n-1, 0, n-1)
	stop := bound(s.stop, -1, -1, n)
	for i := start; i > stop; i += step {
		indices = append(indices, int(i))
	}
	return indices
}
