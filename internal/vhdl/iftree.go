package vhdl

import (
	"math"
	"sort"

	"rtlgen/internal/ir"
)

// guard is one normalised condition of an assignment: a base condition and
// whether the assignment fires when it is false.
type guard struct {
	cond *ir.Signal
	neg  bool
}

func normalizeGuard(c *ir.Signal) guard {
	neg := false
	for {
		op := c.Origin()
		if op == nil || op.Kind != ir.Not || len(op.Operands) != 1 {
			return guard{cond: c, neg: neg}
		}
		base, ok := op.Operands[0].(*ir.Signal)
		if !ok {
			return guard{cond: c, neg: neg}
		}
		c, neg = base, !neg
	}
}

func isEdge(c *ir.Signal) bool {
	op := c.Origin()
	return op != nil && op.Kind.IsEdge()
}

// ifNode is one condition of the decision trie. Statements in posSt fire when
// the path to the node holds and the node's condition is true, negSt when it
// is false.
type ifNode struct {
	cond         *ir.Signal
	posSt, negSt []ir.Statement
	pos, neg     children
}

// children keeps nodes in first insertion order.
type children struct {
	order []*ifNode
	index map[*ir.Signal]*ifNode
}

func (ch *children) get(cond *ir.Signal) *ifNode {
	if n, ok := ch.index[cond]; ok {
		return n
	}
	if ch.index == nil {
		ch.index = make(map[*ir.Signal]*ifNode)
	}
	n := &ifNode{cond: cond}
	ch.index[cond] = n
	ch.order = append(ch.order, n)
	return n
}

// BuildIfTree nests a flat list of guarded assignments into if statements.
//
// Every distinct base condition is weighted by the number of assignments
// using it; edge detectors weigh more than anything else. Each assignment's
// guards are ordered heaviest first and the assignment is inserted into a
// trie along that path, so conditions shared by many assignments are tested
// once and outermost. Assignments whose ordered paths diverge are placed in
// sibling branches, in first insertion order.
//
// Every input assignment appears exactly once in the result. Lists without
// any guard are returned unchanged.
func BuildIfTree(asgs []*ir.Assignment) []ir.Statement {
	guarded := false
	for _, a := range asgs {
		if len(a.Cond) > 0 {
			guarded = true
			break
		}
	}
	if !guarded {
		out := make([]ir.Statement, len(asgs))
		for i, a := range asgs {
			out[i] = a
		}
		return out
	}

	paths := make([][]guard, len(asgs))
	weight := make(map[*ir.Signal]int)
	var conds []*ir.Signal
	for i, a := range asgs {
		seen := make(map[*ir.Signal]bool)
		for _, c := range a.Cond {
			g := normalizeGuard(c)
			paths[i] = append(paths[i], g)
			if seen[g.cond] {
				continue
			}
			seen[g.cond] = true
			if _, ok := weight[g.cond]; !ok {
				conds = append(conds, g.cond)
			}
			if isEdge(g.cond) {
				weight[g.cond] = math.MaxInt
			} else {
				weight[g.cond]++
			}
		}
	}

	sort.SliceStable(conds, func(i, j int) bool { return weight[conds[i]] < weight[conds[j]] })
	rank := make(map[*ir.Signal]int, len(conds))
	for i, c := range conds {
		rank[c] = i
	}

	root := &ifNode{}
	for i, a := range asgs {
		path := orderPath(paths[i], rank)
		node, neg := root, false
		for _, g := range path {
			branch := &node.pos
			if neg {
				branch = &node.neg
			}
			node, neg = branch.get(g.cond), g.neg
		}
		if neg {
			node.negSt = append(node.negSt, a)
		} else {
			node.posSt = append(node.posSt, a)
		}
	}

	return append(root.posSt, renderIfNodes(root.pos)...)
}

// orderPath drops repeated guards and sorts the rest outermost first.
func orderPath(path []guard, rank map[*ir.Signal]int) []guard {
	seen := make(map[guard]bool, len(path))
	out := make([]guard, 0, len(path))
	for _, g := range path {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].cond] > rank[out[j].cond] })
	return out
}

func renderIfNodes(ch children) []ir.Statement {
	var out []ir.Statement
	for _, n := range ch.order {
		ifTrue := append(append([]ir.Statement(nil), n.posSt...), renderIfNodes(n.pos)...)
		ifFalse := append(append([]ir.Statement(nil), n.negSt...), renderIfNodes(n.neg)...)
		out = append(out, &ir.IfContainer{
			Cond:    []*ir.Signal{n.cond},
			IfTrue:  ifTrue,
			IfFalse: ifFalse,
		})
	}
	return out
}
