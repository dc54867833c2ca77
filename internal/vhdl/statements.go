package vhdl

import (
	"fmt"
	"sort"
	"strings"

	"rtlgen/internal/ir"
)

const indentUnit = "    "

func indent(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = indentUnit + l
		}
	}
	return strings.Join(lines, "\n")
}

// Statement renders one sequential or concurrent statement.
func (c *Context) Statement(st ir.Statement) (string, error) {
	switch s := st.(type) {
	case *ir.Assignment:
		return c.assignment(s)
	case *ir.IfContainer:
		return c.ifStatement(s)
	case *ir.SwitchContainer:
		return c.switchStatement(s)
	case *ir.WhileContainer:
		return c.whileStatement(s)
	case *ir.WaitStm:
		if s.Timed {
			return fmt.Sprintf("WAIT FOR %d ns;", s.Ns), nil
		}
		return "WAIT;", nil
	}
	return "", errorf(UnsupportedConstruct, fmt.Sprintf("%T", st), "unknown statement")
}

// Statements renders a statement list, one statement per line group. An
// empty list renders as NULL.
func (c *Context) Statements(sts []ir.Statement) (string, error) {
	if len(sts) == 0 {
		return "NULL;", nil
	}
	parts := make([]string, 0, len(sts))
	for _, st := range sts {
		text, err := c.Statement(st)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

func (c *Context) assignment(a *ir.Assignment) (string, error) {
	if a.Dst == nil || a.Src == nil {
		return "", errorf(UnsupportedConstruct, "assignment", "missing target or source")
	}
	if !ir.TypesEqual(a.Dst.Type, a.Src.ExprType()) {
		return "", errorf(TypeMismatch, a.Dst.Name, "cannot assign %s to %s",
			ir.Describe(a.Src.ExprType()), ir.Describe(a.Dst.Type))
	}
	var src string
	var err error
	if op := hiddenOrigin(a.Src); op != nil && op.Kind == ir.Ternary {
		src, err = c.ternary(op)
	} else {
		src, err = c.Expr(a.Src)
	}
	if err != nil {
		return "", err
	}
	symbol := "<="
	if a.Dst.Kind == ir.Variable {
		symbol = ":="
	}
	return c.Name(a.Dst) + " " + symbol + " " + src + ";", nil
}

func (c *Context) ifStatement(s *ir.IfContainer) (string, error) {
	var b strings.Builder
	cond, err := c.Cond(s.Cond, true)
	if err != nil {
		return "", err
	}
	body, err := c.Statements(s.IfTrue)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "IF %s THEN\n%s\n", cond, indent(body))
	for _, elif := range s.ElIfs {
		cond, err := c.Cond(elif.Cond, true)
		if err != nil {
			return "", err
		}
		body, err := c.Statements(elif.Statements)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "ELSIF %s THEN\n%s\n", cond, indent(body))
	}
	if len(s.IfFalse) > 0 {
		body, err := c.Statements(s.IfFalse)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "ELSE\n%s\n", indent(body))
	}
	b.WriteString("END IF;")
	return b.String(), nil
}

func (c *Context) switchStatement(s *ir.SwitchContainer) (string, error) {
	if s.SwitchOn == nil {
		return "", errorf(UnsupportedConstruct, "case", "missing selector")
	}
	on, err := c.Expr(s.SwitchOn)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s IS\n", on)
	hasOthers := false
	for _, cs := range s.Cases {
		key := "OTHERS"
		if cs.Key != nil {
			if !ir.TypesEqual(cs.Key.Type, s.SwitchOn.Type) {
				return "", errorf(TypeMismatch, on, "case key of type %s", ir.Describe(cs.Key.Type))
			}
			if key, err = c.Value(cs.Key); err != nil {
				return "", err
			}
		} else {
			hasOthers = true
		}
		body, err := c.Statements(cs.Statements)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%sWHEN %s =>\n%s\n", indentUnit, key, indent(indent(body)))
	}
	if !hasOthers {
		fmt.Fprintf(&b, "%sWHEN OTHERS =>\n%s%sNULL;\n", indentUnit, indentUnit, indentUnit)
	}
	b.WriteString("END CASE;")
	return b.String(), nil
}

func (c *Context) whileStatement(s *ir.WhileContainer) (string, error) {
	if s.Cond == nil {
		return "", errorf(UnsupportedConstruct, "while", "missing condition")
	}
	cond, err := c.Cond([]*ir.Signal{s.Cond}, true)
	if err != nil {
		return "", err
	}
	body, err := c.Statements(s.Body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("WHILE %s LOOP\n%s\nEND LOOP;", cond, indent(body)), nil
}

// Declaration renders the declaration of an architecture level signal or a
// process variable.
func (c *Context) Declaration(s *ir.Signal) (string, error) {
	var prefix string
	switch {
	case s.Kind == ir.Variable:
		prefix = "VARIABLE"
	case len(s.Drivers) > 0:
		prefix = "SIGNAL"
	case len(s.Endpoints) > 0:
		prefix = "CONSTANT"
	default:
		return "", errorf(UnusedSignalDeclared, s.Name, "declared signal has neither driver nor reader")
	}
	t, err := c.Type(s.Type, false)
	if err != nil {
		return "", err
	}
	decl := fmt.Sprintf("%s %s : %s", prefix, c.Name(s), t)
	def, err := c.defaultValue(s.Name, s.Type, s.Default)
	if err != nil {
		return "", err
	}
	return decl + def, nil
}

// defaultValue renders " := value" or nothing when no bit of the default is
// known.
func (c *Context) defaultValue(object string, t ir.HdlType, def ir.Expr) (string, error) {
	switch d := def.(type) {
	case nil:
		return "", nil
	case *ir.Value:
		if d == nil || !d.AnyValid() {
			return "", nil
		}
	case *ir.Signal:
		if d == nil {
			return "", nil
		}
	}
	if !ir.TypesEqual(t, def.ExprType()) {
		return "", errorf(TypeMismatch, object, "default of type %s for %s",
			ir.Describe(def.ExprType()), ir.Describe(t))
	}
	text, err := c.Expr(def)
	if err != nil {
		return "", err
	}
	return " := " + text, nil
}

// temporary is a process local variable synthesized during rendering.
type temporary struct {
	sig  *ir.Signal
	decl string
	init string
}

// Process renders p. Runs of top level assignments are first nested into
// if statements by BuildIfTree. A process frame is emitted when temporaries
// were needed or when the body holds a structured statement; otherwise the
// statements are rendered as concurrent assignments.
func (c *Context) Process(p *ir.Process) (string, error) {
	body := nestAssignments(p.Statements)

	c.Scope.Push()
	var temps []temporary
	var create TmpVarFn
	create = func(suggested string, t ir.HdlType, init ir.Expr) (*ir.Signal, error) {
		if !ir.TypesEqual(t, init.ExprType()) {
			return nil, errorf(TypeMismatch, suggested, "temporary of %s initialised with %s",
				ir.Describe(t), ir.Describe(init.ExprType()))
		}
		ctx := c.WithTmpVars(create)
		sig := &ir.Signal{ID: -1, Name: suggested, Type: t, Kind: ir.Variable}
		decl, err := ctx.Declaration(sig)
		if err != nil {
			return nil, err
		}
		idx := len(temps)
		temps = append(temps, temporary{sig: sig, decl: decl})
		text, err := ctx.Expr(init)
		if err != nil {
			return nil, err
		}
		temps[idx].init = ctx.Name(sig) + " := " + text + ";"
		return sig, nil
	}
	inner := c.WithTmpVars(create)

	stmts := make([]string, 0, len(body))
	for _, st := range body {
		text, err := inner.Statement(st)
		if err != nil {
			c.Scope.Pop()
			return "", err
		}
		stmts = append(stmts, text)
	}
	c.Scope.Pop()

	framed := len(temps) > 0
	for _, st := range body {
		if ir.IsStructured(st) {
			framed = true
			break
		}
	}

	decls := make([]string, len(temps))
	inits := make([]string, 0, len(temps))
	for i := range temps {
		decls[i] = temps[i].decl
	}
	// a temporary's initialiser can only refer to temporaries created after it
	for i := len(temps) - 1; i >= 0; i-- {
		inits = append(inits, temps[i].init)
	}

	name := p.Name
	if framed {
		name = c.Scope.CheckedName(p.Name, p, false)
	}
	if c.Renderer == nil {
		return "", fmt.Errorf("vhdl: process %s: no renderer configured", p.Name)
	}
	return c.Renderer.Render("process", map[string]any{
		"Name":            name,
		"HasToBeProcess":  framed,
		"SensitivityList": strings.Join(c.sensitivity(p), ", "),
		"ExtraVars":       decls,
		"Statements":      append(inits, stmts...),
	})
}

// sensitivity returns the sorted, unique names of the signals triggering p.
// Edge detectors contribute the clock they observe.
func (c *Context) sensitivity(p *ir.Process) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range p.Sensitivity {
		if op := hiddenOrigin(s); op != nil && op.Kind.IsEdge() && len(op.Operands) == 1 {
			if clk, ok := op.Operands[0].(*ir.Signal); ok {
				s = clk
			}
		}
		if s.Kind == ir.Param || s.Hidden {
			continue
		}
		text, err := c.Expr(s)
		if err != nil || seen[text] {
			continue
		}
		seen[text] = true
		names = append(names, text)
	}
	sort.Strings(names)
	return names
}

// nestAssignments applies BuildIfTree to every run of consecutive top level
// assignments.
func nestAssignments(sts []ir.Statement) []ir.Statement {
	var out []ir.Statement
	var run []*ir.Assignment
	flush := func() {
		if len(run) > 0 {
			out = append(out, BuildIfTree(run)...)
			run = nil
		}
	}
	for _, st := range sts {
		if a, ok := st.(*ir.Assignment); ok {
			run = append(run, a)
			continue
		}
		flush()
		out = append(out, st)
	}
	flush()
	return out
}
