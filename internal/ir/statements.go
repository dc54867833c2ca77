package ir

// Statement is implemented by every node that can appear in a process body.
type Statement interface {
	isStatement()
}

// Assignment drives Dst with Src whenever every guard in Cond holds.
type Assignment struct {
	ID  int
	Dst *Signal
	Src Expr
	// Cond is a conjunction of guard conditions; empty means unconditional.
	Cond []*Signal
}

// IfContainer is a structured if/elsif/else statement.
type IfContainer struct {
	Cond    []*Signal
	IfTrue  []Statement
	ElIfs   []ElIf
	IfFalse []Statement
}

// ElIf is one elsif branch of an IfContainer.
type ElIf struct {
	Cond       []*Signal
	Statements []Statement
}

// SwitchContainer is a case statement over SwitchOn.
type SwitchContainer struct {
	SwitchOn *Signal
	Cases    []Case
}

// Case is one branch of a SwitchContainer; a nil Key is the default branch.
type Case struct {
	Key        *Value
	Statements []Statement
}

// WhileContainer loops over Body while Cond holds.
type WhileContainer struct {
	Cond *Signal
	Body []Statement
}

// WaitStm suspends a process, forever or for Ns nanoseconds when Timed.
type WaitStm struct {
	Timed bool
	Ns    uint64
}

func (*Assignment) isStatement()      {}
func (*IfContainer) isStatement()     {}
func (*SwitchContainer) isStatement() {}
func (*WhileContainer) isStatement()  {}
func (*WaitStm) isStatement()         {}

func (*Assignment) isDriver()    {}
func (*Assignment) isNode()      {}
func (*IfContainer) isNode()     {}
func (*SwitchContainer) isNode() {}
func (*WhileContainer) isNode()  {}

// IsStructured reports whether st is a control construct rather than a
// plain assignment.
func IsStructured(st Statement) bool {
	switch st.(type) {
	case *IfContainer, *SwitchContainer, *WhileContainer, *WaitStm:
		return true
	default:
		return false
	}
}

// Walk calls fn for every statement in stmts, descending into nested bodies.
func Walk(stmts []Statement, fn func(Statement)) {
	for _, st := range stmts {
		fn(st)
		switch s := st.(type) {
		case *IfContainer:
			Walk(s.IfTrue, fn)
			for _, elif := range s.ElIfs {
				Walk(elif.Statements, fn)
			}
			Walk(s.IfFalse, fn)
		case *SwitchContainer:
			for _, c := range s.Cases {
				Walk(c.Statements, fn)
			}
		case *WhileContainer:
			Walk(s.Body, fn)
		}
	}
}

// CountAssignments returns the number of assignments reachable from stmts.
func CountAssignments(stmts []Statement) int {
	n := 0
	Walk(stmts, func(st Statement) {
		if _, ok := st.(*Assignment); ok {
			n++
		}
	})
	return n
}

// MaxStatementID returns the highest assignment ID in stmts, or -1.
func MaxStatementID(stmts []Statement) int {
	maxID := -1
	Walk(stmts, func(st Statement) {
		if a, ok := st.(*Assignment); ok && a.ID > maxID {
			maxID = a.ID
		}
	})
	return maxID
}
