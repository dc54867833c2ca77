package passes

import (
	"rtlgen/internal/ir"
)

// InferSensitivity fills empty sensitivity lists. Processes guarded by a
// clock edge become sensitive to the edge and to every signal read outside
// of it; other processes become sensitive to every signal they read,
// including the ones they drive themselves. Processes containing a wait
// statement keep an empty list.
type InferSensitivity struct{}

// NewInferSensitivity constructs the pass.
func NewInferSensitivity() *InferSensitivity {
	return &InferSensitivity{}
}

// Name implements Pass.
func (*InferSensitivity) Name() string {
	return "infer-sensitivity"
}

// Run implements Pass.
func (*InferSensitivity) Run(design *ir.Design) error {
	return forEachProcess(design, func(p *ir.Process) error {
		if len(p.Sensitivity) > 0 || hasWait(p.Statements) {
			return nil
		}
		p.Sensitivity = infer(p)
		return nil
	})
}

func hasWait(stmts []ir.Statement) bool {
	found := false
	ir.Walk(stmts, func(st ir.Statement) {
		if _, ok := st.(*ir.WaitStm); ok {
			found = true
		}
	})
	return found
}

type sensSet struct {
	order []*ir.Signal
	seen  map[*ir.Signal]bool
}

func (s *sensSet) add(sig *ir.Signal) {
	if sig == nil || s.seen[sig] || sig.Kind == ir.Param {
		return
	}
	s.seen[sig] = true
	s.order = append(s.order, sig)
}

// reads adds the named signals e depends on. Hidden signals stand for
// their operator and contribute its operands.
func (s *sensSet) reads(e ir.Expr) {
	sig, ok := e.(*ir.Signal)
	if !ok {
		return
	}
	op := sig.Origin()
	if !sig.Hidden || op == nil {
		s.add(sig)
		return
	}
	for _, o := range op.Operands {
		s.reads(o)
	}
}

func edgeOf(sig *ir.Signal) *ir.Signal {
	for sig != nil && sig.Hidden {
		op := sig.Origin()
		if op == nil {
			return nil
		}
		if op.Kind.IsEdge() {
			return sig
		}
		if op.Kind != ir.Not || len(op.Operands) != 1 {
			return nil
		}
		sig, _ = op.Operands[0].(*ir.Signal)
	}
	return nil
}

// guarded adds the edge detectors among conds and reports whether there
// were any.
func (s *sensSet) guarded(conds []*ir.Signal) bool {
	clocked := false
	for _, c := range conds {
		if e := edgeOf(c); e != nil {
			s.add(e)
			clocked = true
		}
	}
	return clocked
}

func (s *sensSet) statements(stmts []ir.Statement) {
	for _, st := range stmts {
		switch st := st.(type) {
		case *ir.Assignment:
			if s.guarded(st.Cond) {
				continue
			}
			for _, c := range st.Cond {
				s.reads(c)
			}
			s.reads(st.Src)
		case *ir.IfContainer:
			if s.guarded(st.Cond) {
				continue
			}
			for _, c := range st.Cond {
				s.reads(c)
			}
			s.statements(st.IfTrue)
			for _, elif := range st.ElIfs {
				if s.guarded(elif.Cond) {
					continue
				}
				for _, c := range elif.Cond {
					s.reads(c)
				}
				s.statements(elif.Statements)
			}
			s.statements(st.IfFalse)
		case *ir.SwitchContainer:
			s.reads(st.SwitchOn)
			for _, c := range st.Cases {
				s.statements(c.Statements)
			}
		case *ir.WhileContainer:
			s.reads(st.Cond)
			s.statements(st.Body)
		}
	}
}

func infer(p *ir.Process) []*ir.Signal {
	s := &sensSet{seen: make(map[*ir.Signal]bool)}
	s.statements(p.Statements)
	return s.order
}
