package passes

import (
	"rtlgen/internal/ir"
)

// LowerTernary rewrites assignments whose source is a conditional
// expression into if statements. VHDL-2002 has no conditional expression
// inside processes.
type LowerTernary struct{}

// NewLowerTernary constructs the pass.
func NewLowerTernary() *LowerTernary {
	return &LowerTernary{}
}

// Name implements Pass.
func (*LowerTernary) Name() string {
	return "lower-ternary"
}

// Run implements Pass.
func (t *LowerTernary) Run(design *ir.Design) error {
	return forEachProcess(design, func(p *ir.Process) error {
		p.Statements = t.lower(p.Statements)
		return nil
	})
}

func (t *LowerTernary) lower(stmts []ir.Statement) []ir.Statement {
	out := make([]ir.Statement, 0, len(stmts))
	for _, st := range stmts {
		switch s := st.(type) {
		case *ir.Assignment:
			out = append(out, t.assignment(s))
		case *ir.IfContainer:
			s.IfTrue = t.lower(s.IfTrue)
			for i := range s.ElIfs {
				s.ElIfs[i].Statements = t.lower(s.ElIfs[i].Statements)
			}
			s.IfFalse = t.lower(s.IfFalse)
			out = append(out, s)
		case *ir.SwitchContainer:
			for i := range s.Cases {
				s.Cases[i].Statements = t.lower(s.Cases[i].Statements)
			}
			out = append(out, s)
		case *ir.WhileContainer:
			s.Body = t.lower(s.Body)
			out = append(out, s)
		default:
			out = append(out, st)
		}
	}
	return out
}

func ternaryOf(e ir.Expr) *ir.Operator {
	s, ok := e.(*ir.Signal)
	if !ok || !s.Hidden {
		return nil
	}
	op := s.Origin()
	if op == nil || op.Kind != ir.Ternary || len(op.Operands) != 3 {
		return nil
	}
	return op
}

// assignment returns a unchanged unless its source is a ternary. The
// replacement keeps a's guards on an enclosing if and reuses a's ID so
// process ordering does not change.
func (t *LowerTernary) assignment(a *ir.Assignment) ir.Statement {
	if ternaryOf(a.Src) == nil {
		return a
	}
	disconnect(a)
	body := t.branch(a.ID, a.Dst, a.Src)
	if len(a.Cond) == 0 {
		return body
	}
	return &ir.IfContainer{Cond: a.Cond, IfTrue: []ir.Statement{body}}
}

func (t *LowerTernary) branch(id int, dst *ir.Signal, src ir.Expr) ir.Statement {
	op := ternaryOf(src)
	if op == nil {
		a := &ir.Assignment{ID: id, Dst: dst, Src: src}
		ir.ConnectAssignment(a)
		return a
	}
	switch c := op.Operands[0].(type) {
	case *ir.Value:
		if c.AnyValid() && c.Val.Sign() != 0 {
			return t.branch(id, dst, op.Operands[1])
		}
		return t.branch(id, dst, op.Operands[2])
	case *ir.Signal:
		return &ir.IfContainer{
			Cond:    []*ir.Signal{c},
			IfTrue:  []ir.Statement{t.branch(id, dst, op.Operands[1])},
			IfFalse: []ir.Statement{t.branch(id, dst, op.Operands[2])},
		}
	default:
		a := &ir.Assignment{ID: id, Dst: dst, Src: src}
		ir.ConnectAssignment(a)
		return a
	}
}

// disconnect detaches a from its target and source. Guards keep their
// endpoint since the enclosing if still reads them.
func disconnect(a *ir.Assignment) {
	if a.Dst != nil {
		a.Dst.Drivers = removeDriver(a.Dst.Drivers, a)
	}
	if s, ok := a.Src.(*ir.Signal); ok {
		s.Endpoints = removeNode(s.Endpoints, a)
	}
}

func removeDriver(ds []ir.Driver, a *ir.Assignment) []ir.Driver {
	out := ds[:0]
	for _, d := range ds {
		if d != ir.Driver(a) {
			out = append(out, d)
		}
	}
	return out
}

func removeNode(ns []ir.Node, a *ir.Assignment) []ir.Node {
	out := ns[:0]
	for _, n := range ns {
		if n != ir.Node(a) {
			out = append(out, n)
		}
	}
	return out
}
