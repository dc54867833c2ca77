package vhdl

import (
	"math/big"
	"strconv"
	"strings"

	"rtlgen/internal/ir"
)

// Value renders a typed literal.
func (c *Context) Value(v *ir.Value) (string, error) {
	if v == nil || v.Val == nil || v.Vld == nil {
		return "", errorf(InvalidLiteral, "<nil>", "literal without payload")
	}
	switch t := v.Type.(type) {
	case *ir.Bits:
		return bitsValue(t, v)
	case *ir.Boolean:
		if !v.AnyValid() {
			return "", errorf(InvalidLiteral, v.String(), "boolean literal has no valid bit")
		}
		if v.Val.Sign() != 0 {
			return "TRUE", nil
		}
		return "FALSE", nil
	case *ir.Integer:
		if !v.AnyValid() {
			return "", errorf(InvalidLiteral, v.String(), "integer literal is not valid")
		}
		return v.Val.String(), nil
	case *ir.Enum:
		idx := int(v.Val.Int64())
		if !v.AnyValid() || idx < 0 || idx >= len(t.Values) {
			return "", errorf(InvalidLiteral, v.Literal, "not a member of %s", t.Name)
		}
		return c.enumLiteral(t, idx), nil
	}
	return "", errorf(UnsupportedConstruct, v.String(), "no literal syntax for %s", ir.Describe(v.Type))
}

func bitsValue(t *ir.Bits, v *ir.Value) (string, error) {
	if t.Unconstrained || t.Width <= 0 {
		return "", errorf(UnsupportedConstruct, v.String(), "literal of unconstrained width")
	}
	switch t.Sign {
	case ir.Signed, ir.Unsigned:
		if !v.FullyValid() {
			return "", errorf(InvalidLiteral, v.String(), "numeric literal needs every bit valid")
		}
		if t.Sign == ir.Signed {
			return "TO_SIGNED(" + twosComplement(v.Val, t.Width).String() + ", " + strconv.Itoa(t.Width) + ")", nil
		}
		return "TO_UNSIGNED(" + v.Val.String() + ", " + strconv.Itoa(t.Width) + ")", nil
	}
	if t.IsScalar() {
		return bitLiteral(v.Val, v.Vld), nil
	}
	return bitString(v.Val, v.Vld, t.Width), nil
}

func bitLiteral(val, vld *big.Int) string {
	switch {
	case vld.Bit(0) == 0:
		return "'X'"
	case val.Bit(0) == 1:
		return "'1'"
	}
	return "'0'"
}

// bitString renders a vector literal, in hex when the width allows it and
// every bit is known.
func bitString(val, vld *big.Int, width int) string {
	if width%4 == 0 && vld.Cmp(ir.Mask(width)) == 0 {
		digits := strings.ToUpper(val.Text(16))
		if pad := width/4 - len(digits); pad > 0 {
			digits = strings.Repeat("0", pad) + digits
		}
		return `X"` + digits + `"`
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := width - 1; i >= 0; i-- {
		switch {
		case vld.Bit(i) == 0:
			b.WriteByte('X')
		case val.Bit(i) == 1:
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
	}
	b.WriteByte('"')
	return b.String()
}

func twosComplement(v *big.Int, width int) *big.Int {
	if v.Bit(width-1) == 0 {
		return v
	}
	full := new(big.Int).Add(ir.Mask(width), big.NewInt(1))
	return new(big.Int).Sub(v, full)
}
