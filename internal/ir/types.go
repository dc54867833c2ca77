package ir

import (
	"fmt"
	"strings"
)

// HdlType is implemented by every IR type descriptor. Two types are the same
// type iff their keys are equal.
type HdlType interface {
	Key() string
	isHdlType()
}

// Signedness of a bit vector.
type Signedness int

const (
	// Vector is a plain bit vector without numeric interpretation.
	Vector Signedness = iota
	Signed
	Unsigned
)

// Bits is a vector (or scalar) of four-valued bits.
type Bits struct {
	Width int
	Sign  Signedness
	// ForceVector keeps a one bit wide type a vector instead of a scalar bit.
	ForceVector bool
	// Unconstrained types carry no range.
	Unconstrained bool
}

// Enum is an enumeration of ordered literal names.
type Enum struct {
	Name   string
	Values []string
}

// Array is a fixed size array of elements.
type Array struct {
	Elem HdlType
	// Size is the element count; values <= 0 mean the size is not statically known.
	Size int
}

// Boolean is the target language's boolean type.
type Boolean struct{}

// Integer is the target language's integer type.
type Integer struct{}

// Predefined types shared by the construction helpers.
var (
	Bit  = &Bits{Width: 1}
	Bool = &Boolean{}
	Int  = &Integer{}
)

func (*Bits) isHdlType()    {}
func (*Enum) isHdlType()    {}
func (*Array) isHdlType()   {}
func (*Boolean) isHdlType() {}
func (*Integer) isHdlType() {}

// Vec returns a plain bit vector type of the given width.
func Vec(width int) *Bits { return &Bits{Width: width, ForceVector: true} }

// SignedVec returns a signed vector type.
func SignedVec(width int) *Bits { return &Bits{Width: width, Sign: Signed} }

// UnsignedVec returns an unsigned vector type.
func UnsignedVec(width int) *Bits { return &Bits{Width: width, Sign: Unsigned} }

// IsScalar reports whether the type renders as a single bit.
func (b *Bits) IsScalar() bool {
	return b.Width == 1 && !b.ForceVector && b.Sign == Vector
}

func (b *Bits) Key() string {
	if b.Unconstrained {
		return "bits(?," + signKey(b.Sign) + ")"
	}
	if b.IsScalar() {
		return "bit"
	}
	return fmt.Sprintf("bits(%d,%s)", b.Width, signKey(b.Sign))
}

func (e *Enum) Key() string {
	return "enum(" + e.Name + ":" + strings.Join(e.Values, ",") + ")"
}

func (a *Array) Key() string {
	return fmt.Sprintf("array(%s,%d)", a.Elem.Key(), a.Size)
}

func (*Boolean) Key() string { return "bool" }
func (*Integer) Key() string { return "int" }

func signKey(s Signedness) string {
	switch s {
	case Signed:
		return "s"
	case Unsigned:
		return "u"
	default:
		return "v"
	}
}

// TypesEqual reports whether a and b describe the same type.
func TypesEqual(a, b HdlType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}

// Describe returns a short human readable form of t.
func Describe(t HdlType) string {
	if t == nil {
		return "<untyped>"
	}
	switch t := t.(type) {
	case *Bits:
		if t.IsScalar() {
			return "bit"
		}
		prefix := ""
		switch t.Sign {
		case Signed:
			prefix = "s"
		case Unsigned:
			prefix = "u"
		}
		if t.Unconstrained {
			return prefix + "bits[*]"
		}
		return fmt.Sprintf("%sbits[%d]", prefix, t.Width)
	case *Enum:
		return "enum " + t.Name
	case *Array:
		return fmt.Sprintf("%s[%d]", Describe(t.Elem), t.Size)
	default:
		return t.Key()
	}
}
