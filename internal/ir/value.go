package ir

import (
	"fmt"
	"math/big"

	"fortio.org/safecast"
)

// Value is a typed literal. Val carries the numeric payload and Vld the
// per-bit validity mask; bits whose mask bit is clear are unknown.
type Value struct {
	Type HdlType
	Val  *big.Int
	Vld  *big.Int
	// Literal holds the member name of enum values.
	Literal string
}

func (*Value) isExpr() {}

// ExprType implements Expr.
func (v *Value) ExprType() HdlType { return v.Type }

// Mask returns a mask with the low width bits set.
func Mask(width int) *big.Int {
	w, err := safecast.Conv[uint](width)
	if err != nil {
		return new(big.Int)
	}
	m := new(big.Int).Lsh(big.NewInt(1), w)
	return m.Sub(m, big.NewInt(1))
}

// BitsValue returns a fully valid value of type t.
func BitsValue(t *Bits, v uint64) *Value {
	return &Value{
		Type: t,
		Val:  new(big.Int).And(new(big.Int).SetUint64(v), Mask(t.Width)),
		Vld:  Mask(t.Width),
	}
}

// MaskedValue returns a value of type t whose validity is given by vld.
func MaskedValue(t *Bits, v, vld uint64) *Value {
	return &Value{
		Type: t,
		Val:  new(big.Int).And(new(big.Int).SetUint64(v), Mask(t.Width)),
		Vld:  new(big.Int).And(new(big.Int).SetUint64(vld), Mask(t.Width)),
	}
}

// BigValue returns a value of type t from arbitrary precision payload and mask.
func BigValue(t HdlType, v, vld *big.Int) *Value {
	return &Value{Type: t, Val: new(big.Int).Set(v), Vld: new(big.Int).Set(vld)}
}

// IntValue returns a valid integer literal.
func IntValue(v int64) *Value {
	return &Value{Type: Int, Val: big.NewInt(v), Vld: big.NewInt(1)}
}

// BoolValue returns a valid boolean literal.
func BoolValue(v bool) *Value {
	val := int64(0)
	if v {
		val = 1
	}
	return &Value{Type: Bool, Val: big.NewInt(val), Vld: big.NewInt(1)}
}

// EnumValue returns the enum member lit of t.
func EnumValue(t *Enum, lit string) *Value {
	idx := int64(-1)
	for i, name := range t.Values {
		if name == lit {
			idx = int64(i)
			break
		}
	}
	vld := int64(1)
	if idx < 0 {
		vld = 0
	}
	return &Value{Type: t, Val: big.NewInt(idx), Vld: big.NewInt(vld), Literal: lit}
}

// FullyValid reports whether every bit of v is known.
func (v *Value) FullyValid() bool {
	if v == nil || v.Vld == nil {
		return false
	}
	if b, ok := v.Type.(*Bits); ok {
		return v.Vld.Cmp(Mask(b.Width)) == 0
	}
	return v.Vld.Sign() != 0
}

// AnyValid reports whether at least one bit of v is known.
func (v *Value) AnyValid() bool {
	return v != nil && v.Vld != nil && v.Vld.Sign() != 0
}

// Key returns a canonical text form of v used to compare parameter tuples.
func (v *Value) Key() string {
	if v == nil {
		return "<nil>"
	}
	if _, ok := v.Type.(*Enum); ok {
		return v.Type.Key() + "=" + v.Literal
	}
	val, vld := "0", "0"
	if v.Val != nil {
		val = v.Val.Text(16)
	}
	if v.Vld != nil {
		vld = v.Vld.Text(16)
	}
	return fmt.Sprintf("%s=%s/%s", v.Type.Key(), val, vld)
}

// String implements fmt.Stringer for dumps and diagnostics.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Type.(type) {
	case *Enum:
		return v.Literal
	case *Boolean:
		if !v.AnyValid() {
			return "bool?"
		}
		return fmt.Sprint(v.Val.Sign() != 0)
	}
	if v.FullyValid() {
		return v.Val.String()
	}
	return fmt.Sprintf("%s (valid 0x%s)", v.Val.String(), v.Vld.Text(16))
}
