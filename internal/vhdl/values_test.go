package vhdl

import (
	"math/big"
	"testing"

	"rtlgen/internal/ir"
)

func TestValueLiterals(t *testing.T) {
	state := &ir.Enum{Name: "state", Values: []string{"idle", "busy"}}
	cases := []struct {
		name string
		val  *ir.Value
		want string
	}{
		{"hex", ir.BitsValue(ir.Vec(8), 0xAB), `X"AB"`},
		{"hex padded", ir.BitsValue(ir.Vec(8), 0x0A), `X"0A"`},
		{"partially valid", ir.MaskedValue(ir.Vec(3), 0b101, 0b011), `"X01"`},
		{"partial nibble", ir.MaskedValue(ir.Vec(4), 0xF, 0x7), `"X111"`},
		{"odd width", ir.BitsValue(ir.Vec(5), 0b10010), `"10010"`},
		{"bit one", ir.BitsValue(ir.Bit, 1), `'1'`},
		{"bit zero", ir.BitsValue(ir.Bit, 0), `'0'`},
		{"bit unknown", ir.MaskedValue(ir.Bit, 1, 0), `'X'`},
		{"signed", ir.BitsValue(ir.SignedVec(8), 0xFF), "TO_SIGNED(-1, 8)"},
		{"signed positive", ir.BitsValue(ir.SignedVec(8), 5), "TO_SIGNED(5, 8)"},
		{"unsigned", ir.BitsValue(ir.UnsignedVec(4), 9), "TO_UNSIGNED(9, 4)"},
		{"bool", ir.BoolValue(true), "TRUE"},
		{"int", ir.IntValue(-42), "-42"},
		{"enum", ir.EnumValue(state, "busy"), "busy"},
	}
	for _, tc := range cases {
		ctx := newContext(t, VHDL2002)
		got, err := ctx.Value(tc.val)
		if err != nil {
			t.Fatalf("%s: Value failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestWideHexLiteral(t *testing.T) {
	payload, _ := new(big.Int).SetString("DEADBEEFCAFEF00D1234", 16)
	v := ir.BigValue(ir.Vec(80), payload, ir.Mask(80))
	got, err := newContext(t, VHDL2008).Value(v)
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if got != `X"DEADBEEFCAFEF00D1234"` {
		t.Fatalf("got %s", got)
	}
}

func TestNumericLiteralNeedsFullValidity(t *testing.T) {
	ctx := newContext(t, VHDL2002)
	_, err := ctx.Value(ir.MaskedValue(ir.SignedVec(4), 3, 0b0111))
	expectKind(t, err, ErrInvalidLiteral)
	_, err = ctx.Value(ir.MaskedValue(ir.UnsignedVec(4), 3, 0))
	expectKind(t, err, ErrInvalidLiteral)
	_, err = ctx.Value(ir.EnumValue(&ir.Enum{Name: "e", Values: []string{"a"}}, "zz"))
	expectKind(t, err, ErrInvalidLiteral)
}
