package ir

// OpKind enumerates the closed set of operators the IR can express.
type OpKind int

const (
	Not OpKind = iota
	Event
	RisingEdge
	FallingEdge
	And
	Or
	Xor
	Add
	Sub
	Mul
	Div
	Mod
	Pow
	Eq
	Neq
	Lt
	Le
	Gt
	Ge
	Concat
	Downto
	Index
	Ternary
	Call
	BitsAsSigned
	BitsAsUnsigned
	BitsAsVec
	BitsToInt
	IntToBits

	// NumOpKinds is the number of operator kinds; keep it last.
	NumOpKinds
)

var opNames = [NumOpKinds]string{
	Not:            "not",
	Event:          "event",
	RisingEdge:     "rising_edge",
	FallingEdge:    "falling_edge",
	And:            "and",
	Or:             "or",
	Xor:            "xor",
	Add:            "add",
	Sub:            "sub",
	Mul:            "mul",
	Div:            "div",
	Mod:            "mod",
	Pow:            "pow",
	Eq:             "eq",
	Neq:            "neq",
	Lt:             "lt",
	Le:             "le",
	Gt:             "gt",
	Ge:             "ge",
	Concat:         "concat",
	Downto:         "downto",
	Index:          "index",
	Ternary:        "ternary",
	Call:           "call",
	BitsAsSigned:   "bits_as_signed",
	BitsAsUnsigned: "bits_as_unsigned",
	BitsAsVec:      "bits_as_vec",
	BitsToInt:      "bits_to_int",
	IntToBits:      "int_to_bits",
}

func (k OpKind) String() string {
	if k < 0 || k >= NumOpKinds {
		return "op?"
	}
	return opNames[k]
}

// ParseOpKind resolves an operator name as produced by String.
func ParseOpKind(name string) (OpKind, bool) {
	for k, n := range opNames {
		if n == name {
			return OpKind(k), true
		}
	}
	return 0, false
}

// IsEdge reports whether k detects a clock edge.
func (k OpKind) IsEdge() bool {
	return k == RisingEdge || k == FallingEdge || k == Event
}

// Arity returns the operand count k expects, or -1 when it is variadic.
func (k OpKind) Arity() int {
	switch k {
	case Not, Event, RisingEdge, FallingEdge,
		BitsAsSigned, BitsAsUnsigned, BitsAsVec, BitsToInt, IntToBits:
		return 1
	case Ternary:
		return 3
	case Call:
		return -1
	default:
		return 2
	}
}
