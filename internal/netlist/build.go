package netlist

import (
	"fmt"
	"math/big"
	"strings"

	"fortio.org/safecast"

	"rtlgen/internal/ir"
)

// Build turns a decoded document into a design. Every unit may only
// instantiate units listed before it.
func Build(doc *Document) (*ir.Design, error) {
	if doc == nil || len(doc.Units) == 0 {
		return nil, fmt.Errorf("netlist: document has no units")
	}
	l := &loader{b: ir.NewBuilder(), units: make(map[string]*ir.Unit)}
	design := &ir.Design{}
	for i := range doc.Units {
		u, err := l.unit(&doc.Units[i])
		if err != nil {
			return nil, fmt.Errorf("netlist: unit %s: %w", doc.Units[i].Name, err)
		}
		design.Units = append(design.Units, u)
	}
	if doc.Top == "" {
		design.Top = design.Units[len(design.Units)-1]
	} else if top, ok := l.units[doc.Top]; ok {
		design.Top = top
	} else {
		return nil, fmt.Errorf("netlist: top unit %q is not defined", doc.Top)
	}
	return design, nil
}

type loader struct {
	b     *ir.Builder
	units map[string]*ir.Unit

	// per unit
	names map[string]*ir.Signal
	arch  *ir.Architecture
}

func (l *loader) unit(d *UnitDoc) (*ir.Unit, error) {
	if _, dup := l.units[d.Name]; dup {
		return nil, fmt.Errorf("defined twice")
	}
	mode, err := parseMode(d.Mode)
	if err != nil {
		return nil, err
	}
	class := d.Class
	if class == "" {
		class = d.Name
	}
	ent := &ir.Entity{Name: d.Name, Doc: d.Doc}
	l.arch = &ir.Architecture{Name: d.Arch, Entity: ent}
	l.names = make(map[string]*ir.Signal)

	for _, g := range d.Generics {
		gen, err := l.generic(g)
		if err != nil {
			return nil, fmt.Errorf("generic %s: %w", g.Name, err)
		}
		ent.Generics = append(ent.Generics, gen)
	}
	for _, p := range d.Ports {
		port, err := l.port(p)
		if err != nil {
			return nil, fmt.Errorf("port %s: %w", p.Name, err)
		}
		ent.Ports = append(ent.Ports, port)
	}
	for _, s := range d.Signals {
		if err := l.signal(s); err != nil {
			return nil, fmt.Errorf("signal %s: %w", s.Name, err)
		}
	}
	// Defaults may refer to any declared signal.
	for _, s := range d.Signals {
		if s.Default == nil {
			continue
		}
		def, err := l.operand(*s.Default)
		if err != nil {
			return nil, fmt.Errorf("signal %s default: %w", s.Name, err)
		}
		l.names[s.Name].Default = def
	}
	for _, op := range d.Ops {
		if err := l.op(op); err != nil {
			return nil, fmt.Errorf("op %s: %w", op.Result, err)
		}
	}
	for _, p := range d.Processes {
		proc, err := l.process(p)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", p.Name, err)
		}
		l.arch.Processes = append(l.arch.Processes, proc)
	}
	for _, inst := range d.Instances {
		ci, err := l.instance(inst)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", inst.Name, err)
		}
		l.arch.Instances = append(l.arch.Instances, ci)
	}

	u := &ir.Unit{Class: class, Mode: mode, Entity: ent, Architecture: l.arch}
	l.units[d.Name] = u
	return u, nil
}

func parseMode(s string) (ir.SerializerMode, error) {
	switch s {
	case "", "always":
		return ir.Always, nil
	case "once":
		return ir.Once, nil
	case "params_uniq":
		return ir.ParamsUniq, nil
	case "exclude":
		return ir.Exclude, nil
	default:
		return ir.Always, fmt.Errorf("unknown serializer mode %q", s)
	}
}

func (l *loader) declare(name string, sig *ir.Signal) error {
	if _, dup := l.names[name]; dup {
		return fmt.Errorf("name %q already declared", name)
	}
	l.names[name] = sig
	return nil
}

func (l *loader) lookup(name string) (*ir.Signal, error) {
	sig, ok := l.names[name]
	if !ok {
		return nil, fmt.Errorf("unknown signal %q", name)
	}
	return sig, nil
}

func (l *loader) generic(d GenericDoc) (*ir.Generic, error) {
	t, err := hdlType(d.Type)
	if err != nil {
		return nil, err
	}
	gen := &ir.Generic{Name: d.Name, Type: t, Signal: l.b.Param(d.Name, t)}
	if d.Default != nil {
		if gen.Default, err = value(*d.Default); err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
	}
	if d.Value != nil {
		if gen.Value, err = value(*d.Value); err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
	}
	return gen, l.declare(d.Name, gen.Signal)
}

func (l *loader) port(d PortDoc) (*ir.Port, error) {
	t, err := hdlType(d.Type)
	if err != nil {
		return nil, err
	}
	dir, err := parseDirection(d.Dir)
	if err != nil {
		return nil, err
	}
	sig := l.b.Signal(d.Name, t)
	if err := l.declare(d.Name, sig); err != nil {
		return nil, err
	}
	l.arch.Signals = append(l.arch.Signals, sig)
	return &ir.Port{Name: d.Name, Direction: dir, Type: t, Signal: sig}, nil
}

func parseDirection(s string) (ir.PortDirection, error) {
	switch s {
	case "in":
		return ir.Input, nil
	case "out":
		return ir.Output, nil
	case "inout":
		return ir.InOut, nil
	default:
		return ir.Input, fmt.Errorf("unknown port direction %q", s)
	}
}

func (l *loader) signal(d SignalDoc) error {
	t, err := hdlType(d.Type)
	if err != nil {
		return err
	}
	sig := l.b.Signal(d.Name, t)
	switch d.Kind {
	case "", "wire":
	case "variable":
		sig.Kind = ir.Variable
	default:
		return fmt.Errorf("unknown signal kind %q", d.Kind)
	}
	if err := l.declare(d.Name, sig); err != nil {
		return err
	}
	l.arch.Signals = append(l.arch.Signals, sig)
	return nil
}

func (l *loader) op(d OpDoc) error {
	kind, ok := ir.ParseOpKind(d.Kind)
	if !ok {
		return fmt.Errorf("unknown operator %q", d.Kind)
	}
	if n := kind.Arity(); n >= 0 && n != len(d.Operands) {
		return fmt.Errorf("%s takes %d operand(s), got %d", kind, n, len(d.Operands))
	}
	if kind == ir.Call && d.Func == "" {
		return fmt.Errorf("call without function name")
	}
	t, err := hdlType(d.Type)
	if err != nil {
		return err
	}
	operands := make([]ir.Expr, 0, len(d.Operands))
	for _, o := range d.Operands {
		e, err := l.operand(o)
		if err != nil {
			return err
		}
		operands = append(operands, e)
	}
	var res *ir.Signal
	if kind == ir.Call {
		res = l.b.Call(d.Func, t, operands...)
	} else {
		res = l.b.Op(kind, t, operands...)
	}
	res.Name = d.Result
	return l.declare(d.Result, res)
}

func (l *loader) operand(d OperandDoc) (ir.Expr, error) {
	switch {
	case d.Ref != "" && d.Value != nil:
		return nil, fmt.Errorf("operand has both ref and value")
	case d.Ref != "":
		return l.lookup(d.Ref)
	case d.Value != nil:
		return value(*d.Value)
	default:
		return nil, fmt.Errorf("empty operand")
	}
}

func (l *loader) conds(names []string) ([]*ir.Signal, error) {
	out := make([]*ir.Signal, 0, len(names))
	for _, n := range names {
		sig, err := l.lookup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, nil
}

func (l *loader) process(d ProcessDoc) (*ir.Process, error) {
	sens, err := l.conds(d.Sensitivity)
	if err != nil {
		return nil, fmt.Errorf("sensitivity: %w", err)
	}
	stmts, err := l.statements(d.Statements)
	if err != nil {
		return nil, err
	}
	return &ir.Process{Name: d.Name, Sensitivity: sens, Statements: stmts}, nil
}

func (l *loader) statements(docs []StatementDoc) ([]ir.Statement, error) {
	out := make([]ir.Statement, 0, len(docs))
	for i, d := range docs {
		st, err := l.statement(d)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		out = append(out, st)
	}
	return out, nil
}

func (l *loader) statement(d StatementDoc) (ir.Statement, error) {
	set := 0
	for _, present := range []bool{d.Assign != nil, d.If != nil, d.Switch != nil, d.While != nil, d.Wait != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("expected exactly one statement variant, got %d", set)
	}
	switch {
	case d.Assign != nil:
		dst, err := l.lookup(d.Assign.Dst)
		if err != nil {
			return nil, err
		}
		if dst.Hidden {
			return nil, fmt.Errorf("cannot assign to operator result %q", d.Assign.Dst)
		}
		src, err := l.operand(d.Assign.Src)
		if err != nil {
			return nil, err
		}
		cond, err := l.conds(d.Assign.Cond)
		if err != nil {
			return nil, err
		}
		return l.b.Assign(dst, src, cond...), nil
	case d.If != nil:
		return l.ifStatement(d.If)
	case d.Switch != nil:
		on, err := l.lookup(d.Switch.On)
		if err != nil {
			return nil, err
		}
		sw := &ir.SwitchContainer{SwitchOn: on}
		ir.Reads(sw, on)
		for _, c := range d.Switch.Cases {
			var key *ir.Value
			if c.Key != nil {
				if key, err = value(*c.Key); err != nil {
					return nil, err
				}
			}
			body, err := l.statements(c.Body)
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, ir.Case{Key: key, Statements: body})
		}
		return sw, nil
	case d.While != nil:
		cond, err := l.lookup(d.While.Cond)
		if err != nil {
			return nil, err
		}
		body, err := l.statements(d.While.Body)
		if err != nil {
			return nil, err
		}
		loop := &ir.WhileContainer{Cond: cond, Body: body}
		ir.Reads(loop, cond)
		return loop, nil
	default:
		if d.Wait.Ns == nil {
			return &ir.WaitStm{}, nil
		}
		return &ir.WaitStm{Timed: true, Ns: *d.Wait.Ns}, nil
	}
}

func (l *loader) ifStatement(d *IfDoc) (ir.Statement, error) {
	cond, err := l.conds(d.Cond)
	if err != nil {
		return nil, err
	}
	then, err := l.statements(d.Then)
	if err != nil {
		return nil, err
	}
	st := &ir.IfContainer{Cond: cond, IfTrue: then}
	ir.Reads(st, cond...)
	for _, e := range d.Elifs {
		c, err := l.conds(e.Cond)
		if err != nil {
			return nil, err
		}
		body, err := l.statements(e.Body)
		if err != nil {
			return nil, err
		}
		ir.Reads(st, c...)
		st.ElIfs = append(st.ElIfs, ir.ElIf{Cond: c, Statements: body})
	}
	if st.IfFalse, err = l.statements(d.Else); err != nil {
		return nil, err
	}
	return st, nil
}

func (l *loader) instance(d InstanceDoc) (*ir.ComponentInstance, error) {
	child, ok := l.units[d.Unit]
	if !ok {
		return nil, fmt.Errorf("unit %q must be listed before its instances", d.Unit)
	}
	ent := child.Entity
	inst := &ir.ComponentInstance{Name: d.Name, Entity: ent}
	for _, pm := range d.Ports {
		port := findPort(ent, pm.Port)
		if port == nil {
			return nil, fmt.Errorf("%s has no port %q", ent.Name, pm.Port)
		}
		sig, err := l.lookup(pm.Signal)
		if err != nil {
			return nil, err
		}
		inst.PortMaps = append(inst.PortMaps, ir.PortMap{Port: port, Signal: sig})
	}
	for _, gm := range d.Generics {
		gen := findGeneric(ent, gm.Generic)
		if gen == nil {
			return nil, fmt.Errorf("%s has no generic %q", ent.Name, gm.Generic)
		}
		val, err := l.operand(gm.Value)
		if err != nil {
			return nil, err
		}
		inst.GenericMaps = append(inst.GenericMaps, ir.GenericMap{Generic: gen, Value: val})
	}
	ir.ConnectInstance(inst)
	listed := false
	for _, c := range l.arch.Components {
		listed = listed || c == ent
	}
	if !listed {
		l.arch.Components = append(l.arch.Components, ent)
	}
	return inst, nil
}

func findPort(ent *ir.Entity, name string) *ir.Port {
	for _, p := range ent.Ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func findGeneric(ent *ir.Entity, name string) *ir.Generic {
	for _, g := range ent.Generics {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func hdlType(d TypeDoc) (ir.HdlType, error) {
	switch d.Kind {
	case "bits":
		width := 1
		if d.Width > 0 {
			w, err := safecast.Conv[int](d.Width)
			if err != nil {
				return nil, fmt.Errorf("bit width %d: %w", d.Width, err)
			}
			width = w
		}
		t := &ir.Bits{Width: width, ForceVector: d.Vector, Unconstrained: d.Unconstrained}
		switch d.Sign {
		case "", "vector":
		case "signed":
			t.Sign = ir.Signed
		case "unsigned":
			t.Sign = ir.Unsigned
		default:
			return nil, fmt.Errorf("unknown signedness %q", d.Sign)
		}
		return t, nil
	case "enum":
		if d.Name == "" || len(d.Values) == 0 {
			return nil, fmt.Errorf("enum needs a name and values")
		}
		return &ir.Enum{Name: d.Name, Values: append([]string(nil), d.Values...)}, nil
	case "array":
		if d.Elem == nil {
			return nil, fmt.Errorf("array without element type")
		}
		elem, err := hdlType(*d.Elem)
		if err != nil {
			return nil, err
		}
		size, err := safecast.Conv[int](d.Size)
		if err != nil {
			return nil, fmt.Errorf("array size %d: %w", d.Size, err)
		}
		return &ir.Array{Elem: elem, Size: size}, nil
	case "bool":
		return ir.Bool, nil
	case "int":
		return ir.Int, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", d.Kind)
	}
}

func value(d ValueDoc) (*ir.Value, error) {
	t, err := hdlType(d.Type)
	if err != nil {
		return nil, err
	}
	switch t := t.(type) {
	case *ir.Enum:
		v := ir.EnumValue(t, d.Literal)
		if d.Vld != "" {
			vld, err := parseInt(d.Vld)
			if err != nil {
				return nil, err
			}
			if vld.Sign() == 0 {
				v.Vld = vld
			}
		}
		return v, nil
	case *ir.Array:
		return nil, fmt.Errorf("array literals are not supported")
	case *ir.Boolean:
		switch strings.ToLower(d.Val) {
		case "true":
			d.Val = "1"
		case "false":
			d.Val = "0"
		}
	}
	val, err := parseInt(d.Val)
	if err != nil {
		return nil, err
	}
	vld := big.NewInt(1)
	var mask *big.Int
	if b, ok := t.(*ir.Bits); ok {
		mask = ir.Mask(b.Width)
		vld = mask
		val.And(val, mask)
	}
	if d.Vld != "" {
		if vld, err = parseInt(d.Vld); err != nil {
			return nil, err
		}
		if mask != nil {
			vld.And(vld, mask)
		}
	}
	return ir.BigValue(t, val, vld), nil
}

func parseInt(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer literal %q", s)
	}
	return v, nil
}
