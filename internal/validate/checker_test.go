package validate

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"rtlgen/internal/diag"
	"rtlgen/internal/ir"
	"rtlgen/internal/vhdl"
)

func runValidation(t *testing.T, design *ir.Design, version vhdl.Version) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	reporter := diag.NewReporter(&buf, "text")
	err := CheckDesign(design, version, reporter)
	return buf.String(), err
}

type fixture struct {
	b    *ir.Builder
	ent  *ir.Entity
	arch *ir.Architecture
}

func newFixture(name string) *fixture {
	ent := &ir.Entity{Name: name}
	return &fixture{b: ir.NewBuilder(), ent: ent, arch: &ir.Architecture{Name: "rtl", Entity: ent}}
}

func (f *fixture) port(name string, dir ir.PortDirection, t ir.HdlType) *ir.Signal {
	sig := f.b.Signal(name, t)
	f.ent.Ports = append(f.ent.Ports, &ir.Port{Name: name, Direction: dir, Type: t, Signal: sig})
	f.arch.Signals = append(f.arch.Signals, sig)
	return sig
}

func (f *fixture) signal(name string, t ir.HdlType) *ir.Signal {
	sig := f.b.Signal(name, t)
	f.arch.Signals = append(f.arch.Signals, sig)
	return sig
}

func (f *fixture) process(name string, stmts ...ir.Statement) *ir.Process {
	p := &ir.Process{Name: name, Statements: stmts}
	f.arch.Processes = append(f.arch.Processes, p)
	return p
}

func (f *fixture) unit() *ir.Unit {
	return &ir.Unit{Class: f.ent.Name, Entity: f.ent, Architecture: f.arch}
}

func designOf(units ...*ir.Unit) *ir.Design {
	return &ir.Design{Units: units, Top: units[len(units)-1]}
}

func TestValidateAcceptsRegister(t *testing.T) {
	f := newFixture("reg")
	clk := f.port("clk", ir.Input, ir.Bit)
	d := f.port("d", ir.Input, ir.Vec(8))
	q := f.port("q", ir.Output, ir.Vec(8))
	f.process("seq", f.b.Assign(q, d, f.b.Rising(clk)))

	diagStr, err := runValidation(t, designOf(f.unit()), vhdl.VHDL2002)
	if err != nil {
		t.Fatalf("expected success, got error %v with diagnostics %s", err, diagStr)
	}
	if diagStr != "" {
		t.Fatalf("expected no diagnostics, got %q", diagStr)
	}
}

func TestValidateReportsEveryIssue(t *testing.T) {
	f := newFixture("bad")
	a := f.port("a", ir.Input, ir.Vec(4))
	f.port("A", ir.Output, ir.Vec(4))
	y := f.signal("y", ir.Vec(8))
	f.signal("dangling", ir.Bit)
	st := &ir.Enum{Name: "st", Values: []string{"idle", "run"}}
	state := f.signal("state", st)
	check := &ir.IfContainer{Cond: []*ir.Signal{state}}
	ir.Reads(check, state)
	f.process("p",
		f.b.Assign(y, a),
		f.b.Assign(a, ir.BitsValue(ir.Vec(4), 0)),
		check,
	)

	diagStr, err := runValidation(t, designOf(f.unit()), vhdl.VHDL2008)
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !strings.Contains(err.Error(), "validation failed with 5 issue(s)") {
		t.Fatalf("unexpected summary: %v\n%s", err, diagStr)
	}
	for _, want := range []string{
		`bad/A: error: port "A" clashes with port of the same name`,
		"bad/rtl/dangling: error: signal is declared but never driven nor read",
		"bad/rtl/p/y: error: assignment of bits[4] to bits[8]",
		"bad/rtl/p/a: error: assignment to input port",
		"condition state of type enum st is not boolean",
	} {
		if !strings.Contains(diagStr, want) {
			t.Fatalf("expected %q in diagnostics:\n%s", want, diagStr)
		}
	}
}

func TestValidateConditionalExpressions(t *testing.T) {
	f := newFixture("mux")
	sel := f.port("sel", ir.Input, ir.Bool)
	alt := f.port("alt", ir.Input, ir.Bool)
	a := f.port("a", ir.Input, ir.Vec(4))
	c := f.port("c", ir.Input, ir.Vec(4))
	y := f.port("y", ir.Output, ir.Vec(4))
	chain := f.b.Op(ir.Ternary, ir.Vec(4), sel, a, f.b.Op(ir.Ternary, ir.Vec(4), alt, c, a))
	f.process("p", f.b.Assign(y, chain))

	diagStr, err := runValidation(t, designOf(f.unit()), vhdl.VHDL2002)
	if err == nil || !strings.Contains(diagStr, "needs VHDL-2008") {
		t.Fatalf("expected ternary diagnostic, got %v / %q", err, diagStr)
	}
	if diagStr, err := runValidation(t, designOf(f.unit()), vhdl.VHDL2008); err != nil {
		t.Fatalf("an else chain is fine under 2008: %v\n%s", err, diagStr)
	}
}

func TestValidateNestedTernaryIsRejected(t *testing.T) {
	f := newFixture("mux")
	sel := f.port("sel", ir.Input, ir.Bool)
	a := f.port("a", ir.Input, ir.Vec(4))
	c := f.port("c", ir.Input, ir.Vec(4))
	y := f.port("y", ir.Output, ir.Vec(4))
	mux := f.b.Op(ir.Ternary, ir.Vec(4), sel, a, c)
	f.process("p", f.b.Assign(y, f.b.Op(ir.Add, ir.Vec(4), mux, a)))

	for _, version := range []vhdl.Version{vhdl.VHDL2002, vhdl.VHDL2008} {
		diagStr, err := runValidation(t, designOf(f.unit()), version)
		if !errors.Is(err, vhdl.ErrUnsupportedConstruct) {
			t.Fatalf("%s: expected unsupported construct, got %v", version, err)
		}
		if !strings.Contains(diagStr, "must be the whole source of an assignment") {
			t.Fatalf("%s: unexpected diagnostics %q", version, diagStr)
		}
	}
}

func TestCheckUnitReportsErrorKind(t *testing.T) {
	good := newFixture("good")
	i := good.port("i", ir.Input, ir.Bit)
	o := good.port("o", ir.Output, ir.Bit)
	good.process("p", good.b.Assign(o, i))

	bad := newFixture("bad")
	bad.signal("spare", ir.Vec(8))

	var buf bytes.Buffer
	reporter := diag.NewReporter(&buf, "text")
	if err := CheckUnit(good.unit(), vhdl.VHDL2002, reporter); err != nil {
		t.Fatalf("good unit rejected: %v\n%s", err, buf.String())
	}
	err := CheckUnit(bad.unit(), vhdl.VHDL2002, reporter)
	if !errors.Is(err, vhdl.ErrUnusedSignalDeclared) {
		t.Fatalf("expected unused signal error, got %v", err)
	}
	var verr *vhdl.Error
	if !errors.As(err, &verr) || verr.Object != "bad/rtl/spare" {
		t.Fatalf("error should name the signal, got %#v", verr)
	}
	if reporter.ErrorCount() != 1 {
		t.Fatalf("expected one reported error, got %d:\n%s", reporter.ErrorCount(), buf.String())
	}
}

func TestValidateInstances(t *testing.T) {
	child := newFixture("child")
	ci := child.port("i", ir.Input, ir.Vec(2))
	co := child.port("o", ir.Output, ir.Vec(2))
	child.process("p", child.b.Assign(co, ci))

	parent := newFixture("parent")
	w := parent.signal("w", ir.Vec(3))
	parent.arch.Components = []*ir.Entity{child.ent}
	parent.arch.Instances = []*ir.ComponentInstance{
		{Name: "u0", Entity: child.ent, PortMaps: []ir.PortMap{{Port: child.ent.Ports[1], Signal: w}}},
		{Name: "U0", Entity: child.ent},
	}
	ir.ConnectInstance(parent.arch.Instances[0])

	diagStr, err := runValidation(t, designOf(child.unit(), parent.unit()), vhdl.VHDL2002)
	if err == nil {
		t.Fatalf("expected instance failures")
	}
	for _, want := range []string{
		"parent/rtl/u0/o: error: port of type bits[2] mapped to w of type bits[3]",
		"parent/rtl/u0/i: warning: input port left unconnected",
		`parent/rtl/U0: error: duplicate instance name "U0"`,
		"parent/rtl/U0: error: instance of child has no port connections",
	} {
		if !strings.Contains(diagStr, want) {
			t.Fatalf("expected %q in diagnostics:\n%s", want, diagStr)
		}
	}
}

func TestValidateWaitWithSensitivity(t *testing.T) {
	f := newFixture("tb")
	clk := f.signal("clk", ir.Bit)
	p := f.process("gen", f.b.Assign(clk, ir.BitsValue(ir.Bit, 1)), &ir.WaitStm{Timed: true, Ns: 5})
	p.Sensitivity = []*ir.Signal{clk}

	diagStr, err := runValidation(t, designOf(f.unit()), vhdl.VHDL2002)
	if err == nil || !strings.Contains(diagStr, "cannot contain wait statements") {
		t.Fatalf("expected wait diagnostic, got %v / %q", err, diagStr)
	}
}
