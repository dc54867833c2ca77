package vhdl

import (
	"fmt"
	"strconv"
	"strings"

	"rtlgen/internal/ir"
)

// precedence ranks every operator; higher binds tighter. An operand produced
// by an operator of lower or equal rank is parenthesised.
var precedence = [ir.NumOpKinds]int{
	ir.Ternary:        1,
	ir.Downto:         1,
	ir.And:            2,
	ir.Or:             2,
	ir.Xor:            2,
	ir.Eq:             3,
	ir.Neq:            3,
	ir.Lt:             3,
	ir.Le:             3,
	ir.Gt:             3,
	ir.Ge:             3,
	ir.Add:            4,
	ir.Sub:            4,
	ir.Concat:         4,
	ir.Mul:            5,
	ir.Div:            5,
	ir.Mod:            5,
	ir.Not:            6,
	ir.Pow:            6,
	ir.Event:          8,
	ir.Index:          9,
	ir.Call:           9,
	ir.RisingEdge:     9,
	ir.FallingEdge:    9,
	ir.BitsAsSigned:   9,
	ir.BitsAsUnsigned: 9,
	ir.BitsAsVec:      9,
	ir.BitsToInt:      9,
	ir.IntToBits:      9,
}

var infixSymbols = map[ir.OpKind]string{
	ir.And:    "AND",
	ir.Or:     "OR",
	ir.Xor:    "XOR",
	ir.Add:    "+",
	ir.Sub:    "-",
	ir.Mul:    "*",
	ir.Div:    "/",
	ir.Mod:    "MOD",
	ir.Pow:    "**",
	ir.Eq:     "=",
	ir.Neq:    "/=",
	ir.Lt:     "<",
	ir.Le:     "<=",
	ir.Gt:     ">",
	ir.Ge:     ">=",
	ir.Concat: "&",
	ir.Downto: "DOWNTO",
}

// associative operators may chain more than two operands.
func associative(k ir.OpKind) bool {
	switch k {
	case ir.And, ir.Or, ir.Xor, ir.Add, ir.Mul, ir.Concat:
		return true
	}
	return false
}

// Expr renders a signal reference or literal. Hidden signals inline the
// operator that drives them.
func (c *Context) Expr(e ir.Expr) (string, error) {
	switch e := e.(type) {
	case *ir.Value:
		return c.Value(e)
	case *ir.Signal:
		if e == nil {
			break
		}
		if op := hiddenOrigin(e); op != nil {
			return c.Operator(op)
		}
		return c.Name(e), nil
	}
	return "", errorf(UnsupportedConstruct, fmt.Sprintf("%T", e), "not an expression")
}

func hiddenOrigin(e ir.Expr) *ir.Operator {
	s, ok := e.(*ir.Signal)
	if !ok || s == nil || !s.Hidden {
		return nil
	}
	return s.Origin()
}

func (c *Context) operand(e ir.Expr, consumer ir.OpKind) (string, error) {
	text, err := c.Expr(e)
	if err != nil {
		return "", err
	}
	if op := hiddenOrigin(e); op != nil && precedence[op.Kind] <= precedence[consumer] {
		return "(" + text + ")", nil
	}
	return text, nil
}

// Operator renders one operator application.
func (c *Context) Operator(op *ir.Operator) (string, error) {
	if op.Kind < 0 || op.Kind >= ir.NumOpKinds {
		return "", errorf(UnsupportedConstruct, op.Kind.String(), "unknown operator")
	}
	if sym, ok := infixSymbols[op.Kind]; ok {
		return c.infix(op, sym)
	}
	if n := op.Kind.Arity(); n >= 0 && len(op.Operands) != n {
		return "", errorf(UnsupportedConstruct, op.Kind.String(), "expects %d operand(s), got %d", n, len(op.Operands))
	}

	switch op.Kind {
	case ir.Not:
		x, err := c.operand(op.Operands[0], op.Kind)
		return "NOT " + x, err
	case ir.Event:
		x, err := c.operand(op.Operands[0], op.Kind)
		return x + "'EVENT", err
	case ir.RisingEdge:
		return c.call("RISING_EDGE", op.Operands)
	case ir.FallingEdge:
		return c.call("FALLING_EDGE", op.Operands)
	case ir.Index:
		return c.index(op)
	case ir.Ternary:
		return "", errorf(UnsupportedConstruct, "ternary", "conditional expression must be the whole source of an assignment")
	case ir.Call:
		if op.Func == "" {
			return "", errorf(UnsupportedConstruct, "call", "missing function name")
		}
		return c.call(op.Func, op.Operands)
	case ir.BitsAsSigned:
		return c.cast(op, "SIGNED")
	case ir.BitsAsUnsigned:
		return c.cast(op, "UNSIGNED")
	case ir.BitsAsVec:
		return c.cast(op, "STD_LOGIC_VECTOR")
	case ir.BitsToInt:
		x, err := c.Expr(op.Operands[0])
		if err != nil {
			return "", err
		}
		if b, ok := op.Operands[0].ExprType().(*ir.Bits); ok && b.Sign == ir.Vector {
			x = "UNSIGNED(" + x + ")"
		}
		return "TO_INTEGER(" + x + ")", nil
	case ir.IntToBits:
		return c.intToBits(op)
	}
	return "", errorf(UnsupportedConstruct, op.Kind.String(), "operator has no rendering")
}

func (c *Context) infix(op *ir.Operator, sym string) (string, error) {
	n := len(op.Operands)
	if n < 2 || (n > 2 && !associative(op.Kind)) {
		return "", errorf(UnsupportedConstruct, op.Kind.String(), "invalid operand count %d", n)
	}
	parts := make([]string, n)
	for i, o := range op.Operands {
		text, err := c.operand(o, op.Kind)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, " "+sym+" "), nil
}

func (c *Context) call(fn string, args []ir.Expr) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		text, err := c.Expr(a)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return fn + "(" + strings.Join(parts, ", ") + ")", nil
}

// index renders base(idx). Only names can be indexed, so an expression base
// is first stored in a temporary.
func (c *Context) index(op *ir.Operator) (string, error) {
	base := op.Operands[0]
	var baseText string
	switch {
	case hiddenOrigin(base) != nil:
		if c.tmpVar == nil {
			return "", errorf(UnsupportedConstruct, "index", "indexing an expression outside of a process")
		}
		tmp, err := c.tmpVar("tmp", base.ExprType(), base)
		if err != nil {
			return "", err
		}
		baseText = c.Name(tmp)
	default:
		if _, ok := base.(*ir.Signal); !ok {
			return "", errorf(UnsupportedConstruct, "index", "cannot index a literal")
		}
		text, err := c.Expr(base)
		if err != nil {
			return "", err
		}
		baseText = text
	}
	idx, err := c.Expr(op.Operands[1])
	if err != nil {
		return "", err
	}
	return baseText + "(" + idx + ")", nil
}

// cast converts between bit vector flavours. When the widths differ the
// operand is resized according to its own signedness; a plain vector takes
// the signedness of the target, or unsigned when the target is a vector.
func (c *Context) cast(op *ir.Operator, fn string) (string, error) {
	x, err := c.Expr(op.Operands[0])
	if err != nil {
		return "", err
	}
	src, _ := op.Operands[0].ExprType().(*ir.Bits)
	var dst *ir.Bits
	if op.Result != nil {
		dst, _ = op.Result.Type.(*ir.Bits)
	}
	if src == nil || dst == nil {
		return "", errorf(TypeMismatch, op.Kind.String(), "cast between non bit vector types")
	}
	if src.Unconstrained || dst.Unconstrained || src.Width == dst.Width {
		return fn + "(" + x + ")", nil
	}
	if src.IsScalar() || dst.IsScalar() {
		return "", errorf(TypeMismatch, op.Kind.String(), "cannot cast %s to %s", ir.Describe(src), ir.Describe(dst))
	}
	var from string
	switch {
	case src.Sign == ir.Signed:
		from = "SIGNED"
	case src.Sign == ir.Unsigned:
		from = "UNSIGNED"
	case fn == "SIGNED":
		from = "SIGNED"
		x = "SIGNED(" + x + ")"
	default:
		from = "UNSIGNED"
		x = "UNSIGNED(" + x + ")"
	}
	resized := "RESIZE(" + x + ", " + strconv.Itoa(dst.Width) + ")"
	if fn == from {
		return resized, nil
	}
	return fn + "(" + resized + ")", nil
}

// ternary renders a conditional expression. It is only legal as the whole
// source of an assignment; an else operand that is itself conditional
// continues the chain.
func (c *Context) ternary(op *ir.Operator) (string, error) {
	if c.Version < VHDL2008 {
		return "", errorf(UnsupportedConstruct, "ternary", "conditional expressions need VHDL-2008")
	}
	if len(op.Operands) != 3 {
		return "", errorf(UnsupportedConstruct, op.Kind.String(), "expects 3 operand(s), got %d", len(op.Operands))
	}
	cond, err := c.condItem(op.Operands[0], true, false)
	if err != nil {
		return "", err
	}
	a, err := c.operand(op.Operands[1], op.Kind)
	if err != nil {
		return "", err
	}
	var b string
	if next := hiddenOrigin(op.Operands[2]); next != nil && next.Kind == ir.Ternary {
		b, err = c.ternary(next)
	} else {
		b, err = c.operand(op.Operands[2], op.Kind)
	}
	if err != nil {
		return "", err
	}
	return a + " WHEN " + cond + " ELSE " + b, nil
}

func (c *Context) intToBits(op *ir.Operator) (string, error) {
	if op.Result == nil {
		return "", errorf(UnsupportedConstruct, op.Kind.String(), "conversion without result type")
	}
	t, ok := op.Result.Type.(*ir.Bits)
	if !ok || t.Unconstrained {
		return "", errorf(UnsupportedConstruct, op.Kind.String(), "cannot convert to %s", ir.Describe(op.Result.Type))
	}
	x, err := c.Expr(op.Operands[0])
	if err != nil {
		return "", err
	}
	w := strconv.Itoa(t.Width)
	switch t.Sign {
	case ir.Signed:
		return "TO_SIGNED(" + x + ", " + w + ")", nil
	case ir.Unsigned:
		return "TO_UNSIGNED(" + x + ", " + w + ")", nil
	}
	return "STD_LOGIC_VECTOR(TO_UNSIGNED(" + x + ", " + w + "))", nil
}

// Cond renders a conjunction of guard conditions. With forceBool set,
// bit and vector conditions are compared so that the result is BOOLEAN.
func (c *Context) Cond(conds []*ir.Signal, forceBool bool) (string, error) {
	if len(conds) == 0 {
		return "TRUE", nil
	}
	parts := make([]string, len(conds))
	for i, cond := range conds {
		text, err := c.condItem(cond, forceBool, len(conds) > 1)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, " AND "), nil
}

func (c *Context) condItem(e ir.Expr, forceBool, joined bool) (string, error) {
	text, err := c.Expr(e)
	if err != nil {
		return "", err
	}
	op := hiddenOrigin(e)
	wrap := func(rank int) string {
		if op != nil && precedence[op.Kind] <= rank {
			return "(" + text + ")"
		}
		return text
	}
	switch t := e.ExprType().(type) {
	case *ir.Boolean:
		if joined {
			return wrap(precedence[ir.And]), nil
		}
		return text, nil
	case *ir.Bits:
		if !forceBool {
			if joined {
				return wrap(precedence[ir.And]), nil
			}
			return text, nil
		}
		if t.IsScalar() {
			return wrap(precedence[ir.Eq]) + " = '1'", nil
		}
		if t.Unconstrained {
			break
		}
		zero := bitString(ir.Mask(0), ir.Mask(t.Width), t.Width)
		return wrap(precedence[ir.Neq]) + " /= " + zero, nil
	}
	return "", errorf(UnsupportedConstruct, text, "cannot use %s as a condition", ir.Describe(e.ExprType()))
}
