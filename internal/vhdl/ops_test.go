package vhdl

import (
	"strings"
	"testing"

	"rtlgen/internal/ir"
)

func TestEveryOperatorHasPrecedence(t *testing.T) {
	for k := ir.OpKind(0); k < ir.NumOpKinds; k++ {
		if precedence[k] == 0 {
			t.Fatalf("operator %s has no precedence", k)
		}
	}
}

// operatorFixture builds a well-formed application of every operator kind.
func operatorFixture(b *ir.Builder, k ir.OpKind) *ir.Signal {
	a := b.Signal("a", ir.Vec(8))
	c := b.Signal("c", ir.Vec(8))
	clk := b.Signal("clk", ir.Bit)
	cond := b.Signal("sel", ir.Bool)
	n := b.Signal("n", ir.Int)
	switch k {
	case ir.Not:
		return b.Op(k, ir.Vec(8), a)
	case ir.Event, ir.RisingEdge, ir.FallingEdge:
		return b.Op(k, ir.Bool, clk)
	case ir.Eq, ir.Neq, ir.Lt, ir.Le, ir.Gt, ir.Ge:
		return b.Op(k, ir.Bool, a, c)
	case ir.Concat:
		return b.Op(k, ir.Vec(16), a, c)
	case ir.Downto:
		return b.Op(k, ir.Int, ir.IntValue(7), ir.IntValue(0))
	case ir.Index:
		return b.Op(k, ir.Bit, a, ir.IntValue(0))
	case ir.Ternary:
		return b.Op(k, ir.Vec(8), cond, a, c)
	case ir.Call:
		return b.Call("resize", ir.Vec(8), a, ir.IntValue(8))
	case ir.BitsAsSigned:
		return b.Op(k, ir.SignedVec(8), a)
	case ir.BitsAsUnsigned:
		return b.Op(k, ir.UnsignedVec(8), a)
	case ir.BitsAsVec:
		return b.Op(k, ir.Vec(8), b.Signal("s", ir.SignedVec(8)))
	case ir.BitsToInt:
		return b.Op(k, ir.Int, a)
	case ir.IntToBits:
		return b.Op(k, ir.Vec(8), n)
	}
	return b.Op(k, ir.Vec(8), a, c)
}

func TestEveryOperatorRenders(t *testing.T) {
	want := map[ir.OpKind]string{
		ir.Not:            "NOT a",
		ir.Event:          "clk'EVENT",
		ir.RisingEdge:     "RISING_EDGE(clk)",
		ir.FallingEdge:    "FALLING_EDGE(clk)",
		ir.And:            "a AND c",
		ir.Or:             "a OR c",
		ir.Xor:            "a XOR c",
		ir.Add:            "a + c",
		ir.Sub:            "a - c",
		ir.Mul:            "a * c",
		ir.Div:            "a / c",
		ir.Mod:            "a MOD c",
		ir.Pow:            "a ** c",
		ir.Eq:             "a = c",
		ir.Neq:            "a /= c",
		ir.Lt:             "a < c",
		ir.Le:             "a <= c",
		ir.Gt:             "a > c",
		ir.Ge:             "a >= c",
		ir.Concat:         "a & c",
		ir.Downto:         "7 DOWNTO 0",
		ir.Index:          "a(0)",
		ir.Call:           "resize(a, 8)",
		ir.BitsAsSigned:   "SIGNED(a)",
		ir.BitsAsUnsigned: "UNSIGNED(a)",
		ir.BitsAsVec:      "STD_LOGIC_VECTOR(s)",
		ir.BitsToInt:      "TO_INTEGER(UNSIGNED(a))",
		ir.IntToBits:      "STD_LOGIC_VECTOR(TO_UNSIGNED(n, 8))",
	}
	for k := ir.OpKind(0); k < ir.NumOpKinds; k++ {
		if k == ir.Ternary {
			// only renders as the source of an assignment
			continue
		}
		ctx := newContext(t, VHDL2008)
		got, err := ctx.Expr(operatorFixture(ir.NewBuilder(), k))
		if err != nil {
			t.Fatalf("%s: render failed: %v", k, err)
		}
		if got != want[k] {
			t.Fatalf("%s: got %q, want %q", k, got, want[k])
		}
	}
}

func TestOperandParenthesization(t *testing.T) {
	b := ir.NewBuilder()
	x := b.Signal("x", ir.Vec(8))
	y := b.Signal("y", ir.Vec(8))
	z := b.Signal("z", ir.Vec(8))
	cases := []struct {
		name string
		expr *ir.Signal
		want string
	}{
		{"tighter operand", b.Op(ir.Add, ir.Vec(8), x, b.Op(ir.Mul, ir.Vec(8), y, z)), "x + y * z"},
		{"looser operand", b.Op(ir.Mul, ir.Vec(8), b.Op(ir.Add, ir.Vec(8), x, y), z), "(x + y) * z"},
		{"equal rank", b.Op(ir.Sub, ir.Vec(8), x, b.Op(ir.Sub, ir.Vec(8), y, z)), "x - (y - z)"},
		{"mixed logic", b.Op(ir.Or, ir.Vec(8), b.Op(ir.And, ir.Vec(8), x, y), z), "(x AND y) OR z"},
		{"relational in logic", b.Op(ir.And, ir.Bool, b.Eq(x, y), b.Eq(y, z)), "x = y AND y = z"},
		{"not of expression", b.Op(ir.Not, ir.Vec(8), b.Op(ir.Xor, ir.Vec(8), x, y)), "NOT (x XOR y)"},
		{"literal operand", b.Op(ir.Add, ir.Vec(8), x, ir.BitsValue(ir.Vec(8), 1)), `x + X"01"`},
		{"chained", b.Op(ir.Concat, ir.Vec(24), x, y, z), "x & y & z"},
	}
	for _, tc := range cases {
		got, err := newContext(t, VHDL2002).Expr(tc.expr)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestTernaryNeedsVHDL2008(t *testing.T) {
	b := ir.NewBuilder()
	sel := b.Signal("sel", ir.Bit)
	x := b.Signal("x", ir.Vec(4))
	y := b.Signal("y", ir.Vec(4))
	out := b.Signal("out_v", ir.Vec(4))
	asg := b.Assign(out, b.Op(ir.Ternary, ir.Vec(4), sel, x, y))

	_, err := newContext(t, VHDL2002).Statement(asg)
	expectKind(t, err, ErrUnsupportedConstruct)

	got, err := newContext(t, VHDL2008).Statement(asg)
	if err != nil {
		t.Fatalf("2008 render failed: %v", err)
	}
	if got != "out_v <= x WHEN sel = '1' ELSE y;" {
		t.Fatalf("got %q", got)
	}
}

func TestTernaryElseChain(t *testing.T) {
	b := ir.NewBuilder()
	sel := b.Signal("sel", ir.Bool)
	alt := b.Signal("alt", ir.Bool)
	x := b.Signal("x", ir.Vec(4))
	y := b.Signal("y", ir.Vec(4))
	out := b.Signal("out_v", ir.Vec(4))
	chain := b.Op(ir.Ternary, ir.Vec(4), sel, x, b.Op(ir.Ternary, ir.Vec(4), alt, y, x))

	got, err := newContext(t, VHDL2008).Statement(b.Assign(out, chain))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if got != "out_v <= x WHEN sel ELSE y WHEN alt ELSE x;" {
		t.Fatalf("got %q", got)
	}
}

func TestNestedTernaryIsUnsupported(t *testing.T) {
	b := ir.NewBuilder()
	sel := b.Signal("sel", ir.Bool)
	x := b.Signal("x", ir.Vec(4))
	y := b.Signal("y", ir.Vec(4))
	out := b.Signal("out_v", ir.Vec(4))
	mux := b.Op(ir.Ternary, ir.Vec(4), sel, x, y)

	cases := map[string]*ir.Signal{
		"operand":     b.Op(ir.Add, ir.Vec(4), mux, x),
		"then branch": b.Op(ir.Ternary, ir.Vec(4), sel, mux, y),
	}
	for name, src := range cases {
		_, err := newContext(t, VHDL2008).Statement(b.Assign(out, src))
		expectKind(t, err, ErrUnsupportedConstruct)
		if !strings.Contains(err.Error(), "whole source of an assignment") {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
	}
	_, err := newContext(t, VHDL2008).Expr(mux)
	expectKind(t, err, ErrUnsupportedConstruct)
}

func TestWidthChangingCastsResize(t *testing.T) {
	b := ir.NewBuilder()
	a := b.Signal("a", ir.Vec(8))
	s := b.Signal("s", ir.SignedVec(4))
	u := b.Signal("u", ir.UnsignedVec(8))
	cases := []struct {
		expr *ir.Signal
		want string
	}{
		{b.Op(ir.BitsAsSigned, ir.SignedVec(4), a), "RESIZE(SIGNED(a), 4)"},
		{b.Op(ir.BitsAsUnsigned, ir.UnsignedVec(16), a), "RESIZE(UNSIGNED(a), 16)"},
		{b.Op(ir.BitsAsVec, ir.Vec(4), a), "STD_LOGIC_VECTOR(RESIZE(UNSIGNED(a), 4))"},
		{b.Op(ir.BitsAsVec, ir.Vec(8), s), "STD_LOGIC_VECTOR(RESIZE(s, 8))"},
		{b.Op(ir.BitsAsSigned, ir.SignedVec(16), u), "SIGNED(RESIZE(u, 16))"},
		{b.Op(ir.BitsAsUnsigned, ir.UnsignedVec(8), u), "UNSIGNED(u)"},
	}
	for _, tc := range cases {
		got, err := newContext(t, VHDL2002).Expr(tc.expr)
		if err != nil {
			t.Fatalf("%s: %v", tc.want, err)
		}
		if got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}

	_, err := newContext(t, VHDL2002).Expr(b.Op(ir.BitsAsVec, ir.Bit, a))
	expectKind(t, err, ErrTypeMismatch)
}

func TestConditionForms(t *testing.T) {
	b := ir.NewBuilder()
	en := b.Signal("en", ir.Bit)
	ok := b.Signal("ok", ir.Bool)
	v := b.Signal("v", ir.Vec(3))
	w := b.Signal("w", ir.Vec(8))
	either := b.Op(ir.Or, ir.Bool, ok, b.Signal("valid", ir.Bool))

	ctx := newContext(t, VHDL2002)
	cases := []struct {
		conds []*ir.Signal
		want  string
	}{
		{[]*ir.Signal{ok}, "ok"},
		{[]*ir.Signal{en}, "en = '1'"},
		{[]*ir.Signal{v}, `v /= "000"`},
		{[]*ir.Signal{w}, `w /= X"00"`},
		{[]*ir.Signal{en, ok}, "en = '1' AND ok"},
		{[]*ir.Signal{either, en}, "(ok OR valid) AND en = '1'"},
	}
	for _, tc := range cases {
		got, err := ctx.Cond(tc.conds, true)
		if err != nil {
			t.Fatalf("Cond failed: %v", err)
		}
		if got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}

func TestIndexOfExpressionOutsideProcess(t *testing.T) {
	b := ir.NewBuilder()
	x := b.Signal("x", ir.Vec(8))
	sum := b.Op(ir.Add, ir.Vec(8), x, x)
	_, err := newContext(t, VHDL2002).Expr(b.Op(ir.Index, ir.Bit, sum, ir.IntValue(0)))
	expectKind(t, err, ErrUnsupportedConstruct)
}

func TestOperatorArityIsChecked(t *testing.T) {
	b := ir.NewBuilder()
	x := b.Signal("x", ir.Vec(8))
	_, err := newContext(t, VHDL2002).Expr(b.Op(ir.Sub, ir.Vec(8), x))
	expectKind(t, err, ErrUnsupportedConstruct)
	_, err = newContext(t, VHDL2002).Expr(b.Op(ir.RisingEdge, ir.Bool))
	expectKind(t, err, ErrUnsupportedConstruct)
}
