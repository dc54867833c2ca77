// Package validate reports every structural problem of a design up front,
// before any VHDL is produced.
package validate

import (
	"fmt"
	"strings"

	"rtlgen/internal/diag"
	"rtlgen/internal/ir"
	"rtlgen/internal/vhdl"
)

// CheckDesign validates design for the given language profile. Every issue
// is reported through reporter; the returned error summarises them and wraps
// the first one as a *vhdl.Error.
func CheckDesign(design *ir.Design, version vhdl.Version, reporter *diag.Reporter) error {
	if design == nil {
		return fmt.Errorf("no design provided for validation")
	}
	if reporter == nil {
		return fmt.Errorf("no reporter provided for validation")
	}
	c := &checker{reporter: reporter, version: version}
	for _, u := range design.Units {
		c.checkUnit(u)
	}
	return c.result()
}

// CheckUnit validates a single unit. A failing unit does not affect the
// others, so callers may skip it and carry on.
func CheckUnit(u *ir.Unit, version vhdl.Version, reporter *diag.Reporter) error {
	if reporter == nil {
		return fmt.Errorf("no reporter provided for validation")
	}
	c := &checker{reporter: reporter, version: version}
	c.checkUnit(u)
	return c.result()
}

type checker struct {
	reporter *diag.Reporter
	version  vhdl.Version
	errCount int
	first    *vhdl.Error
}

func (c *checker) result() error {
	if c.errCount == 0 {
		return nil
	}
	return fmt.Errorf("validation failed with %d issue(s): %w", c.errCount, c.first)
}

func (c *checker) errorf(kind vhdl.ErrorKind, pos, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.errCount++
	if c.first == nil {
		c.first = &vhdl.Error{Kind: kind, Object: pos, Msg: msg}
	}
	c.reporter.Error(pos, msg)
}

func (c *checker) warnf(pos, format string, args ...any) {
	c.reporter.Warning(pos, fmt.Sprintf(format, args...))
}

func (c *checker) checkUnit(u *ir.Unit) {
	if u == nil || u.Entity == nil {
		c.errorf(vhdl.UnsupportedConstruct, "", "unit without entity")
		return
	}
	ent := u.Entity
	pos := ent.Name
	c.checkInterface(pos, ent)
	arch := u.Architecture
	if arch == nil {
		return
	}
	if arch.Name != "" {
		pos += "/" + arch.Name
	}
	bound := make(map[*ir.Signal]*ir.Port)
	for _, p := range ent.Ports {
		if p.Signal != nil {
			bound[p.Signal] = p
		}
	}
	for _, sig := range arch.Signals {
		c.checkSignal(pos, sig, bound[sig] != nil)
	}
	for _, p := range arch.Processes {
		c.checkProcess(pos+"/"+p.Name, p, bound)
	}
	seen := make(map[string]bool)
	for _, inst := range arch.Instances {
		key := strings.ToLower(inst.Name)
		if seen[key] {
			c.errorf(vhdl.UnsupportedConstruct, pos+"/"+inst.Name, "duplicate instance name %q", inst.Name)
		}
		seen[key] = true
		c.checkInstance(pos+"/"+inst.Name, inst)
	}
}

func (c *checker) checkInterface(pos string, ent *ir.Entity) {
	seen := make(map[string]string)
	claim := func(kind, name string) {
		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			c.errorf(vhdl.UnsupportedConstruct, pos+"/"+name, "%s %q clashes with %s of the same name", kind, name, prev)
			return
		}
		seen[key] = kind
	}
	for _, g := range ent.Generics {
		claim("generic", g.Name)
		if def := g.Effective(); def != nil && !ir.TypesEqual(g.Type, def.Type) {
			c.errorf(vhdl.TypeMismatch, pos+"/"+g.Name, "generic of type %s has value of type %s",
				ir.Describe(g.Type), ir.Describe(def.Type))
		}
	}
	for _, p := range ent.Ports {
		claim("port", p.Name)
		if p.Signal != nil && !ir.TypesEqual(p.Type, p.Signal.Type) {
			c.errorf(vhdl.TypeMismatch, pos+"/"+p.Name, "port of type %s bound to signal of type %s",
				ir.Describe(p.Type), ir.Describe(p.Signal.Type))
		}
	}
}

func (c *checker) checkSignal(pos string, sig *ir.Signal, isPort bool) {
	if sig.Hidden || sig.Kind == ir.Param || isPort {
		return
	}
	if sig.Kind != ir.Variable && len(sig.Drivers) == 0 && len(sig.Endpoints) == 0 {
		c.errorf(vhdl.UnusedSignalDeclared, pos+"/"+sig.Name, "signal is declared but never driven nor read")
	}
	if sig.Default != nil && !ir.TypesEqual(sig.Type, sig.Default.ExprType()) {
		c.errorf(vhdl.TypeMismatch, pos+"/"+sig.Name, "default of type %s for signal of type %s",
			ir.Describe(sig.Default.ExprType()), ir.Describe(sig.Type))
	}
	if arr, ok := sig.Type.(*ir.Array); ok && arr.Size <= 0 {
		c.errorf(vhdl.UnsupportedConstruct, pos+"/"+sig.Name, "array size is not statically known")
	}
}

func (c *checker) checkProcess(pos string, p *ir.Process, ports map[*ir.Signal]*ir.Port) {
	hasWait := false
	ir.Walk(p.Statements, func(st ir.Statement) {
		switch st := st.(type) {
		case *ir.Assignment:
			c.checkAssignment(pos, st, ports)
		case *ir.IfContainer:
			c.checkConds(pos, st.Cond)
			for _, elif := range st.ElIfs {
				c.checkConds(pos, elif.Cond)
			}
		case *ir.SwitchContainer:
			c.checkSwitch(pos, st)
		case *ir.WhileContainer:
			c.checkConds(pos, []*ir.Signal{st.Cond})
		case *ir.WaitStm:
			hasWait = true
		}
	})
	if hasWait && len(p.Sensitivity) > 0 {
		c.errorf(vhdl.UnsupportedConstruct, pos, "process with a sensitivity list cannot contain wait statements")
	}
}

func (c *checker) checkAssignment(pos string, a *ir.Assignment, ports map[*ir.Signal]*ir.Port) {
	if a.Dst == nil || a.Src == nil {
		c.errorf(vhdl.UnsupportedConstruct, pos, "incomplete assignment")
		return
	}
	pos += "/" + a.Dst.Name
	if p, ok := ports[a.Dst]; ok && p.Direction == ir.Input {
		c.errorf(vhdl.UnsupportedConstruct, pos, "assignment to input port")
	}
	if !ir.TypesEqual(a.Dst.Type, a.Src.ExprType()) {
		c.errorf(vhdl.TypeMismatch, pos, "assignment of %s to %s", ir.Describe(a.Src.ExprType()), ir.Describe(a.Dst.Type))
	}
	c.checkConds(pos, a.Cond)
	c.checkExpr(pos, a.Src, true)
}

func (c *checker) checkConds(pos string, conds []*ir.Signal) {
	for _, cond := range conds {
		if cond == nil {
			c.errorf(vhdl.UnsupportedConstruct, pos, "missing condition")
			continue
		}
		switch t := cond.Type.(type) {
		case *ir.Boolean:
		case *ir.Bits:
			if t.Unconstrained {
				c.errorf(vhdl.UnsupportedConstruct, pos, "condition %s has unconstrained type", cond.Name)
			}
		default:
			c.errorf(vhdl.TypeMismatch, pos, "condition %s of type %s is not boolean", cond.Name, ir.Describe(cond.Type))
		}
		c.checkExpr(pos, cond, false)
	}
}

func (c *checker) checkSwitch(pos string, sw *ir.SwitchContainer) {
	if sw.SwitchOn == nil {
		c.errorf(vhdl.UnsupportedConstruct, pos, "case statement without selector")
		return
	}
	defaults := 0
	for _, cs := range sw.Cases {
		if cs.Key == nil {
			defaults++
			continue
		}
		if !ir.TypesEqual(sw.SwitchOn.Type, cs.Key.Type) {
			c.errorf(vhdl.TypeMismatch, pos, "case key of type %s for selector %s of type %s",
				ir.Describe(cs.Key.Type), sw.SwitchOn.Name, ir.Describe(sw.SwitchOn.Type))
		}
	}
	if defaults > 1 {
		c.errorf(vhdl.UnsupportedConstruct, pos, "case statement on %s has %d default branches", sw.SwitchOn.Name, defaults)
	}
	c.checkExpr(pos, sw.SwitchOn, false)
}

// checkExpr inspects the operators behind hidden signals. A conditional
// expression may only be the whole source of an assignment, or the else
// value of such an expression.
func (c *checker) checkExpr(pos string, e ir.Expr, direct bool) {
	sig, ok := e.(*ir.Signal)
	if !ok || !sig.Hidden {
		return
	}
	op := sig.Origin()
	if op == nil {
		return
	}
	if op.Kind == ir.Ternary {
		switch {
		case !direct:
			c.errorf(vhdl.UnsupportedConstruct, pos, "conditional expression %s must be the whole source of an assignment", sig.Name)
		case c.version < vhdl.VHDL2008:
			c.errorf(vhdl.UnsupportedConstruct, pos, "conditional expression %s needs VHDL-2008 outside a plain assignment", sig.Name)
		}
	}
	for i, o := range op.Operands {
		c.checkExpr(pos, o, op.Kind == ir.Ternary && direct && i == 2)
	}
}

func (c *checker) checkInstance(pos string, inst *ir.ComponentInstance) {
	if inst.Entity == nil {
		c.errorf(vhdl.IncompleteComponentInstance, pos, "instance has no entity")
		return
	}
	if len(inst.PortMaps) == 0 {
		c.errorf(vhdl.IncompleteComponentInstance, pos, "instance of %s has no port connections", inst.Entity.Name)
		return
	}
	connected := make(map[*ir.Port]bool)
	for _, pm := range inst.PortMaps {
		if pm.Port == nil || pm.Signal == nil {
			c.errorf(vhdl.IncompleteComponentInstance, pos, "incomplete port map")
			continue
		}
		if !owns(inst.Entity, pm.Port) {
			c.errorf(vhdl.IncompleteComponentInstance, pos+"/"+pm.Port.Name, "port does not belong to %s", inst.Entity.Name)
		}
		if connected[pm.Port] {
			c.errorf(vhdl.IncompleteComponentInstance, pos+"/"+pm.Port.Name, "port connected twice")
		}
		connected[pm.Port] = true
		if !ir.TypesEqual(pm.Port.Type, pm.Signal.Type) {
			c.errorf(vhdl.TypeMismatch, pos+"/"+pm.Port.Name, "port of type %s mapped to %s of type %s",
				ir.Describe(pm.Port.Type), pm.Signal.Name, ir.Describe(pm.Signal.Type))
		}
	}
	for _, p := range inst.Entity.Ports {
		if !connected[p] && p.Direction == ir.Input {
			c.warnf(pos+"/"+p.Name, "input port left unconnected")
		}
	}
	for _, gm := range inst.GenericMaps {
		if gm.Generic == nil || gm.Value == nil {
			continue
		}
		if !ir.TypesEqual(gm.Generic.Type, gm.Value.ExprType()) {
			c.errorf(vhdl.TypeMismatch, pos+"/"+gm.Generic.Name, "generic of type %s mapped to %s",
				ir.Describe(gm.Generic.Type), ir.Describe(gm.Value.ExprType()))
		}
	}
}

func owns(ent *ir.Entity, p *ir.Port) bool {
	for _, q := range ent.Ports {
		if q == p {
			return true
		}
	}
	return false
}
